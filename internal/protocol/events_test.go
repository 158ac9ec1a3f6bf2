package protocol

import (
	"errors"
	"reflect"
	"testing"

	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/plan/tools"
)

func TestToolEventRoundTrip(t *testing.T) {
	p := model.Vec2{X: 1.5, Z: -2}
	evs := []tools.Event{
		tools.PointerDown{Point: p, Button: tools.ButtonRight},
		tools.PointerMove{Point: p, Mods: tools.Mods{Shift: true}},
		tools.PointerUp{Point: p},
		tools.Key{Key: tools.KeyEnter},
		tools.SelectTool{Tool: tools.ToolPool},
		tools.SetGrid{Enabled: true, Size: 0.25},
	}
	for _, ev := range evs {
		got, err := PayloadOf(ev).ToolEvent()
		if err != nil {
			t.Fatalf("%T: %v", ev, err)
		}
		if !reflect.DeepEqual(got, ev) {
			t.Fatalf("got %#v want %#v", got, ev)
		}
	}
}

func TestToolEventRejects(t *testing.T) {
	cases := []EventPayload{
		{Kind: "wheel"},
		{Kind: EventPointerDown},
		{Kind: EventKey},
		{Kind: EventSelectTool, Tool: "lasso"},
	}
	for _, c := range cases {
		if _, err := c.ToolEvent(); !errors.Is(err, ErrUnknownEvent) {
			t.Fatalf("%+v: err=%v", c, err)
		}
	}
}
