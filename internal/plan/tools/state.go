package tools

import (
	"plotcraft.ai/internal/plan/logic/collide"
	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
)

// State is the explicit machine state. The set of implementations is closed.
type State interface {
	Name() string
	isState()
}

type Idle struct{}

// Collecting holds the chain of confirmed points of a point-collecting tool.
type Collecting struct {
	Points []model.Vec2 `json:"points"`
}

// RectAnchored is the rectangle room tool after its first click.
type RectAnchored struct {
	Start model.Vec2 `json:"start"`
}

// Dragging is a select-tool drag in progress. The plan is untouched until
// pointer-up; Offset is visual only.
type Dragging struct {
	Target Target     `json:"target"`
	Origin model.Vec2 `json:"origin"`
	Offset model.Vec2 `json:"offset"`
	// Snap is set for object drags that caught another object's edge.
	Snap *collide.DragSnap `json:"snap,omitempty"`

	start model.PlacedObject
}

func (Idle) Name() string         { return "idle" }
func (Collecting) Name() string   { return "collecting" }
func (RectAnchored) Name() string { return "rect_anchored" }
func (Dragging) Name() string     { return "dragging" }

func (Idle) isState()         {}
func (Collecting) isState()   {}
func (RectAnchored) isState() {}
func (Dragging) isState()     {}

// Target names a hit entity.
type Target struct {
	Kind model.Kind `json:"kind"`
	ID   string     `json:"id"`
}

func (t Target) Empty() bool { return t.ID == "" }

// Session is the complete per-client tool state. Reduce never mutates a
// Session in place.
type Session struct {
	Tool  Tool  `json:"tool"`
	State State `json:"-"`

	// Buffer is the typed length, digits and at most one dot.
	Buffer string `json:"buffer,omitempty"`
	// Preview is the last resolved cursor point.
	Preview    snap.Result `json:"preview"`
	HasPreview bool        `json:"has_preview"`
	Selection  Target      `json:"selection"`
	Grid       snap.Grid   `json:"grid"`
}

func NewSession(t Tool) Session {
	return Session{Tool: t, State: Idle{}}
}

// Points returns the collected chain, if any.
func (s Session) Points() []model.Vec2 {
	if c, ok := s.State.(Collecting); ok {
		return c.Points
	}
	return nil
}

// Idle reports whether the active tool has nothing in progress.
func (s Session) Idle() bool {
	_, ok := s.State.(Idle)
	return ok || s.State == nil
}

func appendPoint(pts []model.Vec2, p model.Vec2) []model.Vec2 {
	out := make([]model.Vec2, len(pts), len(pts)+1)
	copy(out, pts)
	return append(out, p)
}
