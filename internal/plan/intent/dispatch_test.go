package intent

import (
	"encoding/json"
	"testing"

	"plotcraft.ai/internal/plan/model"
)

type recordingHook struct {
	reasons []string
	walls   []int
}

func (h *recordingHook) CommitWallsToHistory(p *model.Plan, reason string) {
	h.reasons = append(h.reasons, reason)
	h.walls = append(h.walls, len(p.Walls()))
}

var squarePts = []model.Vec2{{X: 0, Z: 0}, {X: 4, Z: 0}, {X: 4, Z: 4}, {X: 0, Z: 4}, {X: 0, Z: 0}}

func TestDispatcher_CheckpointAfterBatch(t *testing.T) {
	hook := &recordingHook{}
	d := NewDispatcher(model.NewPlan("P1", model.DefaultConfig()), hook)

	out := d.Apply([]Intent{
		AddWalls{Points: squarePts},
		AddRoom{Points: squarePts[:4], Label: "Kitchen"},
		Checkpoint{Reason: "room"},
		Checkpoint{Reason: "noop"},
	})
	if len(out.Applied) != 2 || len(out.Rejected) != 0 {
		t.Fatalf("outcome: %+v", out)
	}
	if len(out.Applied[0].IDs) != 4 {
		t.Fatalf("wall ids: %v", out.Applied[0].IDs)
	}
	if out.Checkpoints != 1 || len(hook.reasons) != 1 || hook.reasons[0] != "room" || hook.walls[0] != 4 {
		t.Fatalf("hook calls: %+v checkpoints=%d", hook, out.Checkpoints)
	}
	if d.Dirty() {
		t.Fatalf("dispatcher should be clean after checkpoint")
	}
}

func TestDispatcher_RejectionsLeavePlanUnchanged(t *testing.T) {
	hook := &recordingHook{}
	d := NewDispatcher(model.NewPlan("P1", model.DefaultConfig()), hook)
	out := d.Apply([]Intent{AddWalls{Points: []model.Vec2{{X: 0}, {X: 4}}}})
	wid := out.Applied[0].IDs[0]
	before := d.Plan().Clone()

	out = d.Apply([]Intent{
		AddOpening{WallID: wid, Opening: model.Opening{Type: model.OpeningDoor, Position: 0.2, Width: 1}},
		AddRoom{Points: squarePts[:2]},
		ResizeWall{WallID: wid, Length: 250},
		AddPool{Points: []model.Vec2{{X: 0}, {X: 0.3}, {X: 0.3, Z: 3}}},
		Checkpoint{},
	})
	codes := []string{}
	for _, r := range out.Rejected {
		codes = append(codes, r.Code)
	}
	want := []string{"E_PLACEMENT_REJECTED", "E_INVALID_GEOMETRY", "E_OUT_OF_RANGE", "E_PLACEMENT_REJECTED"}
	if len(codes) != len(want) {
		t.Fatalf("codes=%v want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes=%v want %v", codes, want)
		}
	}
	// The first batch was never checkpointed, so this one still commits it.
	if len(hook.reasons) != 1 {
		t.Fatalf("hook calls=%d want 1", len(hook.reasons))
	}
	w, _ := d.Plan().Wall(wid)
	bw, _ := before.Wall(wid)
	if w.End != bw.End || len(w.Openings) != 0 || d.Plan().Stats() != before.Stats() {
		t.Fatalf("plan mutated by rejected intents")
	}
}

func TestDispatcher_SetRoomStylePaintsWalls(t *testing.T) {
	d := NewDispatcher(model.NewPlan("P1", model.DefaultConfig()), nil)
	out := d.Apply([]Intent{
		AddWalls{Points: squarePts},
		AddWalls{Points: []model.Vec2{{X: 10}, {X: 12}}},
		AddRoom{Points: squarePts},
	})
	roomID := out.Applied[2].IDs[0]
	out = d.Apply([]Intent{SetRoomStyle{RoomID: roomID, Style: model.RoomStyle{WallColor: "#c0ffee"}}})
	if len(out.Applied) != 1 || len(out.Applied[0].IDs) != 4 {
		t.Fatalf("painted: %+v", out)
	}
	for _, w := range d.Plan().Walls() {
		painted := w.Color == "#c0ffee"
		if painted == (w.Start.X == 10) {
			t.Fatalf("wall %s color=%q", w.ID, w.Color)
		}
	}
	r, _ := d.Plan().Room(roomID)
	if r.Style.WallColor != "#c0ffee" {
		t.Fatalf("style not stored: %+v", r.Style)
	}
}

func TestCodec_EnvelopeRoundTrip(t *testing.T) {
	in := []Intent{
		AddWalls{Points: squarePts, IsFence: true, FenceType: "picket"},
		MoveEntity{Kind: model.KindPool, ID: "P000001", Delta: model.Vec2{X: 1}},
		Checkpoint{Reason: "drag"},
	}
	envs, err := EncodeAll(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := json.Marshal(envs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back []Envelope
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, e := range back {
		got, err := Decode(e)
		if err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if got.Name() != in[i].Name() {
			t.Fatalf("decode %d: %s want %s", i, got.Name(), in[i].Name())
		}
	}
	aw, _ := Decode(back[0])
	if w := aw.(AddWalls); !w.IsFence || w.FenceType != "picket" || len(w.Points) != 5 {
		t.Fatalf("add walls: %+v", w)
	}
	if _, err := Decode(Envelope{Type: "TELEPORT"}); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
