package site

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"plotcraft.ai/internal/persistence/indexdb"
	persistlog "plotcraft.ai/internal/persistence/log"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/tuning"
)

var ErrPlanNotFound = errors.New("plan not found")

type ManagerConfig struct {
	// DataDir holds one directory per plan. Empty keeps plans in memory.
	DataDir string
	Tuning  tuning.Tuning
	Index   *indexdb.SQLiteIndex
	Logger  *log.Logger
}

// Manager starts one Site per plan on demand and owns their lifetimes.
type Manager struct {
	cfg ManagerConfig
	ctx context.Context

	mu    sync.Mutex
	sites map[string]*Site
	logs  []*persistlog.IntentLogger
	wg    sync.WaitGroup
}

func NewManager(ctx context.Context, cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[sites] ", log.LstdFlags)
	}
	return &Manager{cfg: cfg, ctx: ctx, sites: map[string]*Site{}}
}

func (m *Manager) planDir(id string) string {
	if m.cfg.DataDir == "" {
		return ""
	}
	return filepath.Join(m.cfg.DataDir, "plans", id)
}

// Create starts a site for a new, empty plan.
func (m *Manager) Create() (*Site, error) {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.NewPlan(id, m.cfg.Tuning.ModelConfig())
	if dir := m.planDir(id); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return m.startLocked(p, 0)
}

// Get returns the running site of a plan, resuming it from disk when needed.
func (m *Manager) Get(id string) (*Site, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPlanNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sites[id]; ok {
		return s, nil
	}
	dir := m.planDir(id)
	if dir == "" {
		return nil, ErrPlanNotFound
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, ErrPlanNotFound
	}
	p, info, err := Restore(dir, id, m.cfg.Tuning.ModelConfig())
	if err != nil {
		return nil, err
	}
	m.cfg.Logger.Printf("resumed plan=%s seq=%d entries=%d snapshot=%s", id, info.Seq, info.Entries, filepath.Base(info.Snapshot))
	return m.startLocked(p, info.Seq)
}

func (m *Manager) startLocked(p *model.Plan, seq uint64) (*Site, error) {
	cfg := Config{
		Tuning: m.cfg.Tuning,
		Dir:    m.planDir(p.ID),
		Logger: log.New(m.cfg.Logger.Writer(), "[site "+p.ID[:8]+"] ", m.cfg.Logger.Flags()),
	}
	if cfg.Dir != "" {
		l := persistlog.NewIntentLogger(cfg.Dir)
		m.logs = append(m.logs, l)
		cfg.Log = l
	}
	if m.cfg.Index != nil {
		cfg.Index = m.cfg.Index
		if err := m.cfg.Index.UpsertPlan(p.ID, m.cfg.Tuning.Digest()); err != nil {
			m.cfg.Logger.Printf("index: upsert plan %s: %v", p.ID, err)
		}
	}
	s, err := New(p, seq, cfg)
	if err != nil {
		return nil, err
	}
	m.sites[p.ID] = s
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := s.Run(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.cfg.Logger.Printf("plan=%s run: %v", p.ID, err)
		}
	}()
	return s, nil
}

// Close stops every site and flushes the intent logs.
func (m *Manager) Close() {
	m.mu.Lock()
	for id, s := range m.sites {
		s.Stop()
		delete(m.sites, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		_ = l.Close()
	}
	m.logs = nil
}

// Count is the number of running sites.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sites)
}
