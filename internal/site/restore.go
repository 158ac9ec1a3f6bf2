package site

import (
	"fmt"
	"path/filepath"

	persistlog "plotcraft.ai/internal/persistence/log"
	"plotcraft.ai/internal/persistence/snapshot"
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

type RestoreInfo struct {
	Snapshot string
	Seq      uint64
	Entries  int
	Rejected int
}

// Restore rebuilds a plan from the newest snapshot under dir and every
// intent log entry written after it. Batches are re-dispatched, so rejected
// intents are rejected again and the result matches the live plan.
func Restore(dir, planID string, cfg model.Config) (*model.Plan, RestoreInfo, error) {
	var info RestoreInfo
	p := model.NewPlan(planID, cfg)
	if path := snapshot.Latest(filepath.Join(dir, "snapshots")); path != "" {
		snap, err := snapshot.ReadSnapshot(path)
		if err != nil {
			return nil, info, fmt.Errorf("read snapshot %s: %w", filepath.Base(path), err)
		}
		if snap.Header.PlanID != "" && snap.Header.PlanID != planID {
			return nil, info, fmt.Errorf("snapshot plan id mismatch: want=%s snap=%s", planID, snap.Header.PlanID)
		}
		p, err = model.Restore(planID, cfg, snap.Layout)
		if err != nil {
			return nil, info, fmt.Errorf("restore snapshot: %w", err)
		}
		info.Snapshot = path
		info.Seq = snap.Header.Seq
	}

	d := intent.NewDispatcher(p, nil)
	err := persistlog.ReadAll(dir, info.Seq, func(e persistlog.Entry) error {
		batch := make([]intent.Intent, 0, len(e.Intents))
		for _, env := range e.Intents {
			in, err := intent.Decode(env)
			if err != nil {
				return fmt.Errorf("seq %d: %w", e.Seq, err)
			}
			batch = append(batch, in)
		}
		res := d.Apply(batch)
		info.Entries++
		info.Rejected += len(res.Rejected)
		info.Seq = e.Seq
		return nil
	})
	if err != nil {
		return nil, info, err
	}
	return p, info, nil
}
