package tools

import (
	"reflect"
	"testing"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

func up(x, z float64) PointerUp { return PointerUp{Point: pt(x, z), Button: ButtonLeft} }

func move(x, z float64) PointerMove { return PointerMove{Point: pt(x, z)} }

func TestDragCancelLeavesPlanUntouched(t *testing.T) {
	m := NewMachine(DefaultSettings())
	p := newPlan()
	oid, _ := p.AddObject(model.PlacedObject{Kind: "car", Width: 4, Length: 4})
	if _, err := p.AddWallsFromPoints([]model.Vec2{pt(-10, -10), pt(-10, 10)}, 0, false, ""); err != nil {
		t.Fatalf("wall: %v", err)
	}
	before := p.Export()

	for _, cancel := range []Event{key(KeyEscape), PointerDown{Point: pt(3, 3), Button: ButtonRight}} {
		s, out := feed(m, NewSession(ToolSelect), p, click(0.5, 0.5), move(3.5, 2.5), move(6, 1), cancel)
		if !s.Idle() || len(out) != 0 {
			t.Fatalf("after cancel: state=%s intents=%v", s.State.Name(), names(out))
		}
		if s.Selection.ID != oid {
			t.Fatalf("selection=%+v", s.Selection)
		}
		// A second cancel is a no-op.
		s2, out := m.Reduce(s, cancel, p)
		if len(out) != 0 || !s2.Idle() {
			t.Fatalf("second cancel emitted %v", names(out))
		}
	}
	if !reflect.DeepEqual(before, p.Export()) {
		t.Fatalf("plan changed during a cancelled drag")
	}
}

func TestDragCommitsOneMove(t *testing.T) {
	m := NewMachine(DefaultSettings())
	p := newPlan()
	oid, _ := p.AddObject(model.PlacedObject{Kind: "car", Width: 4, Length: 4})

	s, out := feed(m, NewSession(ToolSelect), p, click(0.5, 0.5), move(5.5, 0.5), move(10.5, 0.5))
	if len(out) != 0 {
		t.Fatalf("moves emitted intents: %v", names(out))
	}
	if d, ok := s.State.(Dragging); !ok || d.Offset != pt(10, 0) {
		t.Fatalf("state=%+v", s.State)
	}
	if o, _ := p.Object(oid); o.Position != (model.Vec2{}) {
		t.Fatalf("plan mutated mid-drag: %+v", o)
	}
	s, out = feed(m, s, p, up(10.5, 0.5))
	want := []intent.Intent{intent.MoveObject{ObjectID: oid, Position: pt(10, 0)}, intent.Checkpoint{Reason: "drag"}}
	if !s.Idle() || !reflect.DeepEqual(out, want) {
		t.Fatalf("intents=%+v", out)
	}
}

func TestDragBelowEpsilonIsNoop(t *testing.T) {
	m := NewMachine(DefaultSettings())
	p := newPlan()
	_, _ = p.AddObject(model.PlacedObject{Kind: "person", Width: 0.5, Length: 0.5})
	_, out := feed(m, NewSession(ToolSelect), p, click(0.1, 0.1), move(0.1001, 0.1), up(0.1001, 0.1))
	if len(out) != 0 {
		t.Fatalf("intents=%v", names(out))
	}
}

func TestDragSnapsToObjectEdge(t *testing.T) {
	m := NewMachine(DefaultSettings())
	p := newPlan()
	oid, _ := p.AddObject(model.PlacedObject{Kind: "shed", Width: 4, Length: 4})
	other, _ := p.AddObject(model.PlacedObject{Kind: "car", Position: pt(15, 0), Width: 4, Length: 4})

	s, _ := feed(m, NewSession(ToolSelect), p, click(0, 0), move(10, 0))
	d := s.State.(Dragging)
	if d.Snap == nil || d.Snap.TargetX != other || d.Snap.Position != pt(11, 0) {
		t.Fatalf("snap=%+v", d.Snap)
	}
	_, out := feed(m, s, p, up(10, 0))
	if mo := out[0].(intent.MoveObject); mo.ObjectID != oid || mo.Position != pt(11, 0) {
		t.Fatalf("move=%+v", mo)
	}
}

func TestRoomDragMovesBorderingWalls(t *testing.T) {
	m := NewMachine(DefaultSettings())
	p := newPlan()
	_, out := feed(m, NewSession(ToolRectRoom), p, click(0, 0), click(4, 3))
	d := intent.NewDispatcher(p, nil)
	d.Apply(out)
	if _, err := p.AddWallsFromPoints([]model.Vec2{pt(20, 0), pt(24, 0)}, 0, false, ""); err != nil {
		t.Fatalf("wall: %v", err)
	}

	_, out = feed(m, NewSession(ToolSelect), p, click(2, 1.5), move(3, 1.5), up(3, 1.5))
	if got := names(out); !reflect.DeepEqual(got, []string{intent.NameMoveRoom, intent.NameMoveWalls, intent.NameCheckpoint}) {
		t.Fatalf("intents=%v", got)
	}
	if n := len(out[1].(intent.MoveWalls).WallIDs); n != 4 {
		t.Fatalf("walls moved=%d want 4", n)
	}
	res := d.Apply(out)
	if len(res.Rejected) != 0 || res.Checkpoints != 1 {
		t.Fatalf("apply: %+v", res)
	}
	r := p.Rooms()[0]
	if r.Points[0] != pt(1, 0) {
		t.Fatalf("room=%+v", r.Points)
	}
	for _, w := range p.Walls() {
		if w.Start.X == 20 || w.Start.X == 24 {
			continue
		}
		if w.Start.X < 1 || w.End.X > 5 {
			t.Fatalf("wall %s not moved: %+v", w.ID, w)
		}
	}
}

func TestSelectRotateAndDelete(t *testing.T) {
	m := NewMachine(DefaultSettings())
	p := newPlan()
	oid, _ := p.AddObject(model.PlacedObject{Kind: "car", RotationDeg: 270, Width: 2, Length: 4})

	s, out := feed(m, NewSession(ToolSelect), p, click(0.5, 0.5), up(0.5, 0.5), key(KeyRotate))
	want := []intent.Intent{intent.RotateObject{ObjectID: oid, RotationDeg: 0}, intent.Checkpoint{Reason: "rotate"}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("rotate=%+v", out)
	}
	s, out = feed(m, s, p, key(KeyDelete))
	if len(out) != 2 || out[0] != (intent.Delete{Kind: model.KindObject, ID: oid}) || !s.Selection.Empty() {
		t.Fatalf("delete=%+v selection=%+v", out, s.Selection)
	}
	_, out = feed(m, s, p, key(KeyDelete))
	if len(out) != 0 {
		t.Fatalf("delete without selection: %v", names(out))
	}

	s, _ = feed(m, NewSession(ToolSelect), p, click(50, 50))
	if !s.Selection.Empty() || !s.Idle() {
		t.Fatalf("click on nothing: %+v", s)
	}
}
