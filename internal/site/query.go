package site

import (
	"context"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/layout"
	"plotcraft.ai/internal/plan/logic/collide"
	"plotcraft.ai/internal/plan/logic/setback"
	"plotcraft.ai/internal/plan/model"
)

// Query runs fn on the site goroutine. fn must not modify the plan.
func (s *Site) Query(ctx context.Context, fn func(p *model.Plan)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := queryReq{fn: fn, done: make(chan struct{})}
	select {
	case s.queries <- req:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// An accepted fn always runs to completion.
	<-req.done
	return nil
}

// Import validates and applies an externally produced layout.
func (s *Site) Import(ctx context.Context, raw []byte) (layout.Report, error) {
	req := importReq{raw: raw, resp: make(chan importResp, 1)}
	select {
	case s.imports <- req:
	case <-s.stopped:
		return layout.Report{}, ErrStopped
	case <-ctx.Done():
		return layout.Report{}, ctx.Err()
	}
	select {
	case r := <-req.resp:
		return r.report, r.err
	case <-ctx.Done():
		return layout.Report{}, ctx.Err()
	}
}

// Apply dispatches intents that do not come from a tool session, such as
// objects and buildings dropped from a catalog.
func (s *Site) Apply(ctx context.Context, batch []intent.Intent) (intent.Outcome, error) {
	req := applyReq{batch: batch, resp: make(chan intent.Outcome, 1)}
	select {
	case s.applies <- req:
	case <-s.stopped:
		return intent.Outcome{}, ErrStopped
	case <-ctx.Done():
		return intent.Outcome{}, ctx.Err()
	}
	select {
	case out := <-req.resp:
		return out, nil
	case <-ctx.Done():
		return intent.Outcome{}, ctx.Err()
	}
}

func (s *Site) Layout(ctx context.Context) (model.Layout, error) {
	var l model.Layout
	err := s.Query(ctx, func(p *model.Plan) { l = p.Export() })
	return l, err
}

type Summary struct {
	PlanID      string      `json:"plan_id"`
	Seq         uint64      `json:"seq"`
	Checkpoints uint64      `json:"checkpoints"`
	Sessions    int         `json:"sessions"`
	Stats       model.Stats `json:"stats"`
}

func (s *Site) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.Query(ctx, func(p *model.Plan) {
		sum = Summary{PlanID: s.id, Seq: s.seq, Checkpoints: s.checkpoints, Sessions: len(s.clients), Stats: p.Stats()}
	})
	return sum, err
}

type SetbackResult struct {
	Distance float64      `json:"distance"`
	Inner    []model.Vec2 `json:"inner"`
	Band     setback.Band `json:"band"`
}

// Setback insets the plan boundary by distance, or by the boundary's own
// setback when distance is negative.
func (s *Site) Setback(ctx context.Context, distance float64) (SetbackResult, error) {
	var (
		res  SetbackResult
		berr error
	)
	err := s.Query(ctx, func(p *model.Plan) {
		b := p.Boundary()
		if distance < 0 {
			distance = b.Setback
		}
		res.Distance = distance
		res.Inner, res.Band, berr = setback.Compute(b.Points, distance)
	})
	if err != nil {
		return SetbackResult{}, err
	}
	return res, berr
}

type OverlapResult struct {
	Pairs   []collide.Pair `json:"pairs"`
	Flagged []string       `json:"flagged"`
}

func (s *Site) Overlaps(ctx context.Context) (OverlapResult, error) {
	var res OverlapResult
	err := s.Query(ctx, func(p *model.Plan) {
		res.Pairs = collide.NewIndex(p.Footprints()).Overlapping()
		res.Flagged = collide.Flagged(res.Pairs)
	})
	return res, err
}
