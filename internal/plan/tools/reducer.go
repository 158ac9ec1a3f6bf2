// Package tools is the construction state machine. Reduce turns one
// pointer or keyboard event into the next tool session and the intents to
// apply, without touching the plan.
package tools

import (
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
)

// Machine binds the reducer to its settings.
type Machine struct {
	cfg Settings
}

func NewMachine(cfg Settings) *Machine {
	d := DefaultSettings()
	if cfg.CloseDistance <= 0 {
		cfg.CloseDistance = d.CloseDistance
	}
	if cfg.MinClosePoints < 3 {
		cfg.MinClosePoints = d.MinClosePoints
	}
	if cfg.MinSegment <= 0 {
		cfg.MinSegment = d.MinSegment
	}
	if cfg.MaxTypedLength <= 0 {
		cfg.MaxTypedLength = d.MaxTypedLength
	}
	if cfg.StairsSearchRadius <= 0 {
		cfg.StairsSearchRadius = d.StairsSearchRadius
	}
	if cfg.StairsDefaultTop <= 0 {
		cfg.StairsDefaultTop = d.StairsDefaultTop
	}
	if cfg.StairsWidth <= 0 {
		cfg.StairsWidth = d.StairsWidth
	}
	if cfg.StairsLength <= 0 {
		cfg.StairsLength = d.StairsLength
	}
	if cfg.RoofStyle == "" {
		cfg.RoofStyle = d.RoofStyle
	}
	if cfg.Door.Width <= 0 {
		cfg.Door = d.Door
	}
	if cfg.Window.Width <= 0 {
		cfg.Window = d.Window
	}
	if cfg.OpeningReach <= 0 {
		cfg.OpeningReach = d.OpeningReach
	}
	if cfg.DragEpsilon <= 0 {
		cfg.DragEpsilon = d.DragEpsilon
	}
	if cfg.ObjectSnap <= 0 {
		cfg.ObjectSnap = d.ObjectSnap
	}
	if cfg.WallPick <= 0 {
		cfg.WallPick = d.WallPick
	}
	return &Machine{cfg: cfg}
}

func (m *Machine) Settings() Settings { return m.cfg }

// Reduce is pure: the same session, event and view always give the same
// result, and neither the session nor the view is modified.
func (m *Machine) Reduce(s Session, ev Event, v View) (Session, []intent.Intent) {
	if s.State == nil {
		s.State = Idle{}
	}
	switch e := ev.(type) {
	case SelectTool:
		if _, ok := ParseTool(string(e.Tool)); !ok {
			return s, nil
		}
		// Switching cancels whatever the old tool had in progress.
		next := NewSession(e.Tool)
		next.Grid = s.Grid
		return next, nil
	case SetGrid:
		s.Grid = snap.Grid{Enabled: e.Enabled && e.Size > 0, Size: e.Size}
		return s, nil
	case PointerDown:
		if e.Button == ButtonRight {
			return m.cancel(s), nil
		}
		if e.Button != ButtonLeft {
			return s, nil
		}
	case PointerUp, PointerMove, Key:
	default:
		return s, nil
	}

	switch {
	case s.Tool.collects():
		return m.reduceChain(s, ev, v)
	case s.Tool == ToolRectRoom:
		return m.reduceRect(s, ev, v)
	case s.Tool == ToolSelect:
		return m.reduceSelect(s, ev, v)
	default:
		return m.reduceClick(s, ev, v)
	}
}

// cancel returns the tool to Idle without committing. It is idempotent.
func (m *Machine) cancel(s Session) Session {
	s.State = Idle{}
	s.Buffer = ""
	return s
}

func (m *Machine) snapCtx(s Session, v View, mods Mods) snap.Context {
	chain := s.Points()
	if r, ok := s.State.(RectAnchored); ok {
		chain = []model.Vec2{r.Start}
	}
	return snap.Context{
		Walls:      v.Walls(),
		Buildings:  v.Buildings(),
		Chain:      chain,
		Modifier:   mods.angle(),
		Grid:       s.Grid,
		Thresholds: m.cfg.Snap,
	}
}

func (m *Machine) resolve(s Session, v View, p model.Vec2, mods Mods) snap.Result {
	return snap.Resolve(p, m.snapCtx(s, v, mods))
}

// preview records the resolved cursor for Space confirms and typed lengths.
func (m *Machine) preview(s Session, v View, p model.Vec2, mods Mods) Session {
	s.Preview = m.resolve(s, v, p, mods)
	s.HasPreview = true
	return s
}

func checkpoint(reason string) intent.Intent { return intent.Checkpoint{Reason: reason} }
