package tools

import "plotcraft.ai/internal/plan/model"

// Mouse buttons, DOM numbering.
const (
	ButtonLeft  = 0
	ButtonRight = 2
)

// Key names routed to the active tool.
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeySpace     = "Space"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyRotate    = "r"
)

type Mods struct {
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
}

// angle reports whether the angle-snap modifier is held.
func (m Mods) angle() bool { return m.Shift }

type Event interface {
	isEvent()
}

type PointerDown struct {
	Point  model.Vec2 `json:"point"`
	Button int        `json:"button"`
	Mods   Mods       `json:"mods"`
}

type PointerMove struct {
	Point model.Vec2 `json:"point"`
	Mods  Mods       `json:"mods"`
}

type PointerUp struct {
	Point  model.Vec2 `json:"point"`
	Button int        `json:"button"`
	Mods   Mods       `json:"mods"`
}

type Key struct {
	Key  string `json:"key"`
	Mods Mods   `json:"mods"`
}

type SelectTool struct {
	Tool Tool `json:"tool"`
}

type SetGrid struct {
	Enabled bool    `json:"enabled"`
	Size    float64 `json:"size"`
}

func (PointerDown) isEvent() {}
func (PointerMove) isEvent() {}
func (PointerUp) isEvent()   {}
func (Key) isEvent()         {}
func (SelectTool) isEvent()  {}
func (SetGrid) isEvent()     {}
