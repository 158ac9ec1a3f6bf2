package protocol

import (
	"errors"
	"fmt"

	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/plan/tools"
)

// Event kinds carried in EVENT.event.kind.
const (
	EventPointerDown = "pointer_down"
	EventPointerMove = "pointer_move"
	EventPointerUp   = "pointer_up"
	EventKey         = "key"
	EventSelectTool  = "select_tool"
	EventSetGrid     = "set_grid"
)

var ErrUnknownEvent = errors.New("unknown event")

// EventPayload is the flat wire form of a tools.Event.
type EventPayload struct {
	Kind        string      `json:"kind"`
	Point       *model.Vec2 `json:"point,omitempty"`
	Button      int         `json:"button,omitempty"`
	Key         string      `json:"key,omitempty"`
	Shift       bool        `json:"shift,omitempty"`
	Ctrl        bool        `json:"ctrl,omitempty"`
	Alt         bool        `json:"alt,omitempty"`
	Tool        string      `json:"tool,omitempty"`
	GridEnabled bool        `json:"grid_enabled,omitempty"`
	GridSize    float64     `json:"grid_size,omitempty"`
}

func (p EventPayload) mods() tools.Mods {
	return tools.Mods{Shift: p.Shift, Ctrl: p.Ctrl, Alt: p.Alt}
}

func (p EventPayload) point() (model.Vec2, error) {
	if p.Point == nil {
		return model.Vec2{}, fmt.Errorf("%w: %s without point", ErrUnknownEvent, p.Kind)
	}
	return *p.Point, nil
}

// ToolEvent converts the payload into the reducer's event type.
func (p EventPayload) ToolEvent() (tools.Event, error) {
	switch p.Kind {
	case EventPointerDown, EventPointerMove, EventPointerUp:
		pt, err := p.point()
		if err != nil {
			return nil, err
		}
		switch p.Kind {
		case EventPointerDown:
			return tools.PointerDown{Point: pt, Button: p.Button, Mods: p.mods()}, nil
		case EventPointerMove:
			return tools.PointerMove{Point: pt, Mods: p.mods()}, nil
		default:
			return tools.PointerUp{Point: pt, Button: p.Button, Mods: p.mods()}, nil
		}
	case EventKey:
		if p.Key == "" {
			return nil, fmt.Errorf("%w: key without name", ErrUnknownEvent)
		}
		return tools.Key{Key: p.Key, Mods: p.mods()}, nil
	case EventSelectTool:
		t, ok := tools.ParseTool(p.Tool)
		if !ok {
			return nil, fmt.Errorf("%w: tool %q", ErrUnknownEvent, p.Tool)
		}
		return tools.SelectTool{Tool: t}, nil
	case EventSetGrid:
		return tools.SetGrid{Enabled: p.GridEnabled, Size: p.GridSize}, nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrUnknownEvent, p.Kind)
}

// PayloadOf is the inverse of ToolEvent.
func PayloadOf(ev tools.Event) EventPayload {
	pt := func(v model.Vec2) *model.Vec2 { return &v }
	switch e := ev.(type) {
	case tools.PointerDown:
		return EventPayload{Kind: EventPointerDown, Point: pt(e.Point), Button: e.Button, Shift: e.Mods.Shift, Ctrl: e.Mods.Ctrl, Alt: e.Mods.Alt}
	case tools.PointerMove:
		return EventPayload{Kind: EventPointerMove, Point: pt(e.Point), Shift: e.Mods.Shift, Ctrl: e.Mods.Ctrl, Alt: e.Mods.Alt}
	case tools.PointerUp:
		return EventPayload{Kind: EventPointerUp, Point: pt(e.Point), Button: e.Button, Shift: e.Mods.Shift, Ctrl: e.Mods.Ctrl, Alt: e.Mods.Alt}
	case tools.Key:
		return EventPayload{Kind: EventKey, Key: e.Key, Shift: e.Mods.Shift, Ctrl: e.Mods.Ctrl, Alt: e.Mods.Alt}
	case tools.SelectTool:
		return EventPayload{Kind: EventSelectTool, Tool: string(e.Tool)}
	case tools.SetGrid:
		return EventPayload{Kind: EventSetGrid, GridEnabled: e.Enabled, GridSize: e.Size}
	}
	return EventPayload{}
}
