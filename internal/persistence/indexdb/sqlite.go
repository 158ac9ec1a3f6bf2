package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"plotcraft.ai/internal/persistence/snapshot"
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

// SQLiteIndex is a secondary read model of checkpoints, rejections and
// snapshots. Writes are queued and applied by one goroutine; the intent log
// stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropCheckpoint atomic.Uint64
	dropRejection  atomic.Uint64
	dropSnapshot   atomic.Uint64
}

type reqKind int

const (
	reqCheckpoint reqKind = iota + 1
	reqRejection
	reqSnapshot
)

type req struct {
	kind reqKind

	checkpoint CheckpointRow
	rejection  RejectionRow
	snapshot   snapshotRow
}

type CheckpointRow struct {
	PlanID     string
	Seq        uint64
	Reason     string
	Stats      model.Stats
	RecordedAt string
}

type RejectionRow struct {
	PlanID     string
	SessionID  string
	Seq        uint64
	Index      int
	IntentType string
	Code       string
	Message    string
	RecordedAt string
}

type snapshotRow struct {
	PlanID string
	Seq    uint64
	Path   string
	Stats  model.Stats
}

type Stats struct {
	QueueDepth          int    `json:"queue_depth"`
	QueueCapacity       int    `json:"queue_capacity"`
	DropCheckpointTotal uint64 `json:"drop_checkpoint_total"`
	DropRejectionTotal  uint64 `json:"drop_rejection_total"`
	DropSnapshotTotal   uint64 `json:"drop_snapshot_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload of a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS plans (
			plan_id TEXT PRIMARY KEY,
			tuning_digest TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS checkpoints (
			plan_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			reason TEXT NOT NULL,
			walls INTEGER NOT NULL,
			openings INTEGER NOT NULL,
			rooms INTEGER NOT NULL,
			objects INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (plan_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS rejections (
			plan_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			intent_type TEXT NOT NULL,
			code TEXT NOT NULL,
			message TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (plan_id, seq, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_code ON rejections(plan_id, code);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			plan_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			walls INTEGER NOT NULL,
			rooms INTEGER NOT NULL,
			objects INTEGER NOT NULL,
			PRIMARY KEY (plan_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:          len(s.ch),
		QueueCapacity:       cap(s.ch),
		DropCheckpointTotal: s.dropCheckpoint.Load(),
		DropRejectionTotal:  s.dropRejection.Load(),
		DropSnapshotTotal:   s.dropSnapshot.Load(),
	}
}

// enqueue never blocks the caller; a full queue drops the row.
func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteIndex) RecordCheckpoint(row CheckpointRow) {
	if s == nil {
		return
	}
	if row.RecordedAt == "" {
		row.RecordedAt = now()
	}
	s.enqueue(req{kind: reqCheckpoint, checkpoint: row}, &s.dropCheckpoint)
}

func (s *SQLiteIndex) RecordRejections(planID, sessionID string, seq uint64, rejected []intent.Rejection) {
	if s == nil {
		return
	}
	at := now()
	for i, r := range rejected {
		s.enqueue(req{kind: reqRejection, rejection: RejectionRow{
			PlanID:     planID,
			SessionID:  sessionID,
			Seq:        seq,
			Index:      i,
			IntentType: r.Type,
			Code:       r.Code,
			Message:    r.Message,
			RecordedAt: at,
		}}, &s.dropRejection)
	}
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: snapshotRow{
		PlanID: snap.Header.PlanID,
		Seq:    snap.Header.Seq,
		Path:   path,
		Stats:  snap.Stats,
	}}, &s.dropSnapshot)
}

// UpsertPlan records the tuning a plan was opened with. It runs synchronously.
func (s *SQLiteIndex) UpsertPlan(planID, tuningDigest string) error {
	if s == nil {
		return nil
	}
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO plans(plan_id,tuning_digest,updated_at) VALUES(?,?,?)`, planID, tuningDigest, now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertCheckpoint, _ := s.db.Prepare(`INSERT OR REPLACE INTO checkpoints(plan_id,seq,reason,walls,openings,rooms,objects,recorded_at) VALUES(?,?,?,?,?,?,?,?)`)
	insertRejection, _ := s.db.Prepare(`INSERT OR REPLACE INTO rejections(plan_id,seq,idx,session_id,intent_type,code,message,recorded_at) VALUES(?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(plan_id,seq,path,walls,rooms,objects) VALUES(?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertCheckpoint, insertRejection, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqCheckpoint:
			c := r.checkpoint
			exec(insertCheckpoint, c.PlanID, int64(c.Seq), c.Reason, c.Stats.Walls, c.Stats.Openings, c.Stats.Rooms, c.Stats.Objects+c.Stats.Buildings, c.RecordedAt)
		case reqRejection:
			j := r.rejection
			exec(insertRejection, j.PlanID, int64(j.Seq), j.Index, j.SessionID, j.IntentType, j.Code, j.Message, j.RecordedAt)
		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, sn.PlanID, int64(sn.Seq), sn.Path, sn.Stats.Walls, sn.Stats.Rooms, sn.Stats.Objects+sn.Stats.Buildings)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
