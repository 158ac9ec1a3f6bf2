// Package site hosts one plan: a single goroutine owns the model and every
// client's tool session, so the construction engine never sees concurrent
// access.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"plotcraft.ai/internal/persistence/indexdb"
	persistlog "plotcraft.ai/internal/persistence/log"
	"plotcraft.ai/internal/persistence/snapshot"
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/layout"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/plan/tools"
	"plotcraft.ai/internal/protocol"
	"plotcraft.ai/internal/tuning"
)

var ErrStopped = errors.New("site stopped")

// EntryWriter receives one entry per dispatched batch.
type EntryWriter interface {
	WriteEntry(persistlog.Entry) error
}

// Index is the secondary read model fed by the site.
type Index interface {
	RecordCheckpoint(indexdb.CheckpointRow)
	RecordRejections(planID, sessionID string, seq uint64, rejected []intent.Rejection)
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
}

type Config struct {
	Tuning tuning.Tuning
	// Dir is the plan's data directory. Empty disables snapshots.
	Dir    string
	Log    EntryWriter
	Index  Index
	Logger *log.Logger
	Now    func() time.Time
}

type JoinRequest struct {
	ClientName string
	Out        chan []byte
	Resp       chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// EventEnvelope is one EVENT message from a joined client.
type EventEnvelope struct {
	SessionID string
	Msg       protocol.EventMsg
}

type importReq struct {
	raw  []byte
	resp chan importResp
}

type importResp struct {
	report layout.Report
	err    error
}

type applyReq struct {
	batch []intent.Intent
	resp  chan intent.Outcome
}

type queryReq struct {
	fn   func(p *model.Plan)
	done chan struct{}
}

type client struct {
	id      string
	name    string
	out     chan []byte
	session tools.Session
	lastSeq uint64
}

type Site struct {
	id       string
	cfg      Config
	log      *log.Logger
	machine  *tools.Machine
	importer *layout.Importer
	plan     *model.Plan
	disp     *intent.Dispatcher

	clients map[string]*client

	// seq numbers dispatched batches; checkpoints counts hook calls.
	seq          uint64
	curSeq       uint64
	curSession   string
	checkpoints  uint64
	wantSnapshot bool

	join    chan JoinRequest
	leave   chan string
	inbox   chan EventEnvelope
	imports chan importReq
	applies chan applyReq
	queries chan queryReq
	stop    chan struct{}
	stopped chan struct{}
}

// New hosts p. seq is the last batch already reflected in p (from a snapshot
// plus log replay), so new entries continue the sequence.
func New(p *model.Plan, seq uint64, cfg Config) (*Site, error) {
	im, err := layout.NewImporter(cfg.Tuning.WeldTolerance)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[site] ", log.LstdFlags)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Site{
		id:       p.ID,
		cfg:      cfg,
		log:      cfg.Logger,
		machine:  tools.NewMachine(cfg.Tuning.Settings()),
		importer: im,
		plan:     p,
		clients:  map[string]*client{},
		seq:      seq,
		join:     make(chan JoinRequest, 16),
		leave:    make(chan string, 16),
		inbox:    make(chan EventEnvelope, 1024),
		imports:  make(chan importReq),
		applies:  make(chan applyReq),
		queries:  make(chan queryReq),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	s.disp = intent.NewDispatcher(p, s)
	return s, nil
}

func (s *Site) ID() string { return s.id }

func (s *Site) Join() chan<- JoinRequest    { return s.join }
func (s *Site) Leave() chan<- string        { return s.leave }
func (s *Site) Inbox() chan<- EventEnvelope { return s.inbox }
func (s *Site) Done() <-chan struct{}       { return s.stopped }
func (s *Site) Stop()                       { close(s.stop) }
func (s *Site) Tuning() tuning.Tuning       { return s.cfg.Tuning }

func (s *Site) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.flushSnapshot()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			req.Resp <- s.handleJoin(req)
		case id := <-s.leave:
			s.handleLeave(id)
		case env := <-s.inbox:
			s.handleEvent(env)
		case req := <-s.imports:
			req.resp <- s.handleImport(req.raw)
		case req := <-s.applies:
			req.resp <- s.dispatch("", req.batch)
		case req := <-s.queries:
			req.fn(s.plan)
			close(req.done)
		}
	}
}

func (s *Site) handleJoin(req JoinRequest) JoinResponse {
	name := req.ClientName
	if name == "" {
		name = "client"
	}
	c := &client{
		id:      uuid.NewString(),
		name:    name,
		out:     req.Out,
		session: tools.NewSession(tools.ToolSelect),
	}
	s.clients[c.id] = c
	s.log.Printf("plan=%s join session=%s name=%s", s.id, c.id, name)

	names := make([]string, 0, len(tools.AllTools()))
	for _, t := range tools.AllTools() {
		names = append(names, string(t))
	}
	return JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       c.id,
		PlanID:          s.id,
		TuningDigest:    s.cfg.Tuning.Digest(),
		Tools:           names,
	}}
}

func (s *Site) handleLeave(id string) {
	if _, ok := s.clients[id]; !ok {
		return
	}
	delete(s.clients, id)
	s.log.Printf("plan=%s leave session=%s", s.id, id)
}

// handleEvent runs one client event through the reducer and the dispatcher
// and answers with exactly one APPLIED or ERROR.
func (s *Site) handleEvent(env EventEnvelope) {
	c, ok := s.clients[env.SessionID]
	if !ok {
		return
	}
	if env.Msg.Seq != 0 && env.Msg.Seq <= c.lastSeq {
		s.send(c, protocol.NewError(protocol.ErrStale, "event seq already handled"))
		return
	}
	if env.Msg.Seq != 0 {
		c.lastSeq = env.Msg.Seq
	}
	ev, err := env.Msg.Event.ToolEvent()
	if err != nil {
		s.send(c, protocol.NewError(protocol.CodeFor(err), err.Error()))
		return
	}

	next, batch := s.machine.Reduce(c.session, ev, s.plan)
	c.session = next

	var res intent.Outcome
	if len(batch) > 0 {
		res = s.dispatch(c.id, batch)
	}
	s.send(c, s.applied(env.Msg.Seq, c.session, res))
}

// dispatch applies a batch, logs it and indexes its rejections.
func (s *Site) dispatch(sessionID string, batch []intent.Intent) intent.Outcome {
	s.curSeq = s.seq + 1
	s.curSession = sessionID
	res := s.disp.Apply(batch)
	if len(res.Applied) == 0 && len(res.Rejected) == 0 {
		return res
	}
	s.seq = s.curSeq

	if s.cfg.Log != nil {
		envs, err := intent.EncodeAll(batch)
		if err != nil {
			s.log.Printf("plan=%s seq=%d encode: %v", s.id, s.seq, err)
		} else if err := s.cfg.Log.WriteEntry(persistlog.Entry{
			Seq:       s.seq,
			PlanID:    s.id,
			SessionID: sessionID,
			UnixMS:    s.cfg.Now().UnixMilli(),
			Intents:   envs,
			Rejected:  len(res.Rejected),
		}); err != nil {
			s.log.Printf("plan=%s seq=%d intent log: %v", s.id, s.seq, err)
		}
	}
	if len(res.Rejected) > 0 {
		codes := make([]string, 0, len(res.Rejected))
		for _, r := range res.Rejected {
			codes = append(codes, r.Type+":"+r.Code)
		}
		s.log.Printf("plan=%s seq=%d session=%s rejected=%v", s.id, s.seq, sessionID, codes)
		if s.cfg.Index != nil {
			s.cfg.Index.RecordRejections(s.id, sessionID, s.seq, res.Rejected)
		}
	}
	if s.wantSnapshot {
		s.flushSnapshot()
	}
	return res
}

// CommitWallsToHistory is the dispatcher's checkpoint hook.
func (s *Site) CommitWallsToHistory(p *model.Plan, reason string) {
	s.checkpoints++
	if s.cfg.Index != nil {
		s.cfg.Index.RecordCheckpoint(indexdb.CheckpointRow{
			PlanID: s.id,
			Seq:    s.curSeq,
			Reason: reason,
			Stats:  p.Stats(),
		})
	}
	if every := s.cfg.Tuning.SnapshotEveryCheck; every > 0 && s.checkpoints%uint64(every) == 0 {
		s.wantSnapshot = true
	}
}

func (s *Site) handleImport(raw []byte) importResp {
	rep, err := s.importer.Import(s.plan, raw)
	if err != nil {
		return importResp{err: err}
	}
	s.log.Printf("plan=%s import walls=%d rooms=%d dropped_walls=%d dropped_openings=%d dropped_rooms=%d",
		s.id, len(rep.WallIDs), len(rep.RoomIDs), rep.DroppedWalls, rep.DroppedOpenings, rep.DroppedRooms)
	s.curSeq = s.seq
	s.CommitWallsToHistory(s.plan, "import")
	// Imports are not in the intent log; a snapshot makes them durable.
	s.wantSnapshot = true
	s.flushSnapshot()
	return importResp{report: rep}
}

func (s *Site) flushSnapshot() {
	if !s.wantSnapshot || s.cfg.Dir == "" {
		return
	}
	s.wantSnapshot = false
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			PlanID:       s.id,
			Seq:          s.seq,
			Checkpoints:  s.checkpoints,
			UnixMS:       s.cfg.Now().UnixMilli(),
			TuningDigest: s.cfg.Tuning.Digest(),
		},
		Layout: s.plan.Export(),
		Stats:  s.plan.Stats(),
	}
	path := filepath.Join(s.cfg.Dir, "snapshots", snapshot.Name(s.seq))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		s.log.Printf("plan=%s snapshot: %v", s.id, err)
		return
	}
	if s.cfg.Index != nil {
		s.cfg.Index.RecordSnapshot(path, snap)
	}
}

func (s *Site) send(c *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("plan=%s marshal %T: %v", s.id, v, err)
		return
	}
	select {
	case c.out <- b:
	default:
		// Slow client: drop rather than stall the plan.
	}
}
