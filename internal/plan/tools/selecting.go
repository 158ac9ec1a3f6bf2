package tools

import (
	"math"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/logic/collide"
	"plotcraft.ai/internal/plan/logic/rooms"
	"plotcraft.ai/internal/plan/model"
)

func (m *Machine) reduceSelect(s Session, ev Event, v View) (Session, []intent.Intent) {
	switch e := ev.(type) {
	case PointerDown:
		t, ok := m.hitTest(e.Point, v)
		if !ok {
			s.Selection = Target{}
			s.State = Idle{}
			return s, nil
		}
		d := Dragging{Target: t, Origin: e.Point}
		if fp, ok := footprint(t, v); ok {
			d.start = fp
		}
		s.Selection = t
		s.State = d
		return s, nil
	case PointerMove:
		d, ok := s.State.(Dragging)
		if !ok {
			return s, nil
		}
		d.Offset = e.Point.Sub(d.Origin)
		d.Snap = nil
		if d.Target.Kind == model.KindObject || d.Target.Kind == model.KindBuilding {
			moving := d.start
			moving.Position = moving.Position.Add(d.Offset)
			if ds := collide.SnapDrag(moving, v.Footprints(), v.Boundary().Points, m.cfg.ObjectSnap); ds.Snapped() {
				d.Snap = &ds
			}
		}
		s.State = d
		return s, nil
	case PointerUp:
		d, ok := s.State.(Dragging)
		if !ok || e.Button != ButtonLeft {
			return s, nil
		}
		s.State = Idle{}
		return s, m.commitDrag(d, v)
	case Key:
		return m.selectKey(s, e, v)
	}
	return s, nil
}

func (m *Machine) selectKey(s Session, e Key, v View) (Session, []intent.Intent) {
	if _, dragging := s.State.(Dragging); dragging {
		if e.Key == KeyEscape {
			// The plan was never touched; dropping the drag restores it.
			s.State = Idle{}
		}
		return s, nil
	}
	switch e.Key {
	case KeyEscape:
		s.Selection = Target{}
	case KeyDelete:
		if s.Selection.Empty() {
			return s, nil
		}
		t := s.Selection
		s.Selection = Target{}
		return s, []intent.Intent{intent.Delete{Kind: t.Kind, ID: t.ID}, checkpoint("delete")}
	case KeyRotate:
		fp, ok := footprint(s.Selection, v)
		if !ok || s.Selection.Kind == model.KindStairs {
			return s, nil
		}
		return s, []intent.Intent{
			intent.RotateObject{ObjectID: fp.ID, RotationDeg: model.NormalizeDegrees(fp.RotationDeg + 90)},
			checkpoint("rotate"),
		}
	}
	return s, nil
}

// commitDrag turns the accumulated offset into exactly one move, or nothing
// when the pointer barely moved.
func (m *Machine) commitDrag(d Dragging, v View) []intent.Intent {
	off := d.Offset
	if d.Snap != nil {
		off = d.Snap.Position.Sub(d.start.Position)
	}
	if off.Len() < m.cfg.DragEpsilon {
		return nil
	}
	var moves []intent.Intent
	switch d.Target.Kind {
	case model.KindObject, model.KindBuilding:
		moves = append(moves, intent.MoveObject{ObjectID: d.Target.ID, Position: d.start.Position.Add(off)})
	case model.KindWall:
		moves = append(moves, intent.MoveWalls{WallIDs: []string{d.Target.ID}, Delta: off})
	case model.KindRoom:
		moves = append(moves, intent.MoveRoom{RoomID: d.Target.ID, Delta: off})
		for _, r := range v.Rooms() {
			if r.ID != d.Target.ID {
				continue
			}
			if ids := rooms.FindWallsForRoom(r, v.Walls()); len(ids) > 0 {
				moves = append(moves, intent.MoveWalls{WallIDs: ids, Delta: off})
			}
		}
	case model.KindPool, model.KindFoundation, model.KindStairs:
		moves = append(moves, intent.MoveEntity{Kind: d.Target.Kind, ID: d.Target.ID, Delta: off})
	default:
		return nil
	}
	return append(moves, checkpoint("drag"))
}

// hitTest picks the entity under p: objects and buildings first, then stairs,
// walls, pools, foundations and rooms.
func (m *Machine) hitTest(p model.Vec2, v View) (Target, bool) {
	buildings := map[string]bool{}
	for _, b := range v.Buildings() {
		buildings[b.ID] = true
	}
	for _, o := range v.Footprints() {
		if insideFootprint(p, o.Position, o.Width, o.Length, o.RotationDeg) {
			k := model.KindObject
			if buildings[o.ID] {
				k = model.KindBuilding
			}
			return Target{Kind: k, ID: o.ID}, true
		}
	}
	for _, st := range v.Stairs() {
		if insideFootprint(p, st.Position, st.Width, st.Length, st.RotationDeg) {
			return Target{Kind: model.KindStairs, ID: st.ID}, true
		}
	}
	for _, w := range v.Walls() {
		_, _, d := model.ProjectOnSegment(p, w.Start, w.End)
		if d <= math.Max(w.Thickness/2, m.cfg.WallPick) {
			return Target{Kind: model.KindWall, ID: w.ID}, true
		}
	}
	for _, pl := range v.Pools() {
		if model.PolygonContains(pl.Points, p) {
			return Target{Kind: model.KindPool, ID: pl.ID}, true
		}
	}
	for _, f := range v.Foundations() {
		if model.PolygonContains(f.Points, p) {
			return Target{Kind: model.KindFoundation, ID: f.ID}, true
		}
	}
	for _, r := range v.Rooms() {
		if model.PolygonContains(r.Points, p) {
			return Target{Kind: model.KindRoom, ID: r.ID}, true
		}
	}
	return Target{}, false
}

// insideFootprint tests p against a rotated rectangle centred on c.
func insideFootprint(p, c model.Vec2, width, length, rotationDeg float64) bool {
	local := p.Sub(c).Rotate(-rotationDeg)
	return math.Abs(local.X) <= width/2 && math.Abs(local.Z) <= length/2
}

// footprint returns the placed-object view of an object, building or stairs
// target.
func footprint(t Target, v View) (model.PlacedObject, bool) {
	switch t.Kind {
	case model.KindObject, model.KindBuilding:
		for _, o := range v.Footprints() {
			if o.ID == t.ID {
				return o, true
			}
		}
	case model.KindStairs:
		for _, st := range v.Stairs() {
			if st.ID == t.ID {
				return model.PlacedObject{ID: st.ID, Kind: "stairs", Position: st.Position, RotationDeg: st.RotationDeg, Width: st.Width, Length: st.Length}, true
			}
		}
	}
	return model.PlacedObject{}, false
}
