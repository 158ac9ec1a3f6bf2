package tools

import (
	"math"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
)

// reduceRect is the two-click rectangle room: the first click anchors a
// corner, the second commits the closed 4-wall rectangle and its room.
func (m *Machine) reduceRect(s Session, ev Event, v View) (Session, []intent.Intent) {
	switch e := ev.(type) {
	case PointerMove:
		return m.preview(s, v, e.Point, e.Mods), nil
	case PointerDown:
		p := m.resolve(s, v, e.Point, e.Mods).Point
		a, ok := s.State.(RectAnchored)
		if !ok {
			s.State = RectAnchored{Start: p}
			return s, nil
		}
		if math.Abs(p.X-a.Start.X) < m.cfg.MinSegment || math.Abs(p.Z-a.Start.Z) < m.cfg.MinSegment {
			return s, nil
		}
		poly := []model.Vec2{
			a.Start,
			{X: p.X, Z: a.Start.Z},
			p,
			{X: a.Start.X, Z: p.Z},
		}
		out := []intent.Intent{
			intent.AddWalls{Points: appendPoint(poly, a.Start)},
			intent.AddRoom{Points: poly},
			checkpoint(string(ToolRectRoom)),
		}
		return m.cancel(s), out
	case Key:
		if e.Key == KeyEscape {
			return m.cancel(s), nil
		}
	}
	return s, nil
}

// reduceClick serves the single-click tools: stairs, roof, door, window and
// delete. They never leave Idle.
func (m *Machine) reduceClick(s Session, ev Event, v View) (Session, []intent.Intent) {
	switch e := ev.(type) {
	case PointerMove:
		return m.preview(s, v, e.Point, e.Mods), nil
	case PointerDown:
		switch s.Tool {
		case ToolStairs:
			p := m.resolve(s, v, e.Point, e.Mods).Point
			return s, m.placeStairs(p, v)
		case ToolRoof:
			return s, m.placeRoof(e.Point, v)
		case ToolDoor:
			return s, m.placeOpening(e.Point, v, model.OpeningDoor, m.cfg.Door)
		case ToolWindow:
			return s, m.placeOpening(e.Point, v, model.OpeningWindow, m.cfg.Window)
		case ToolDelete:
			t, ok := m.hitTest(e.Point, v)
			if !ok {
				return s, nil
			}
			return s, []intent.Intent{intent.Delete{Kind: t.Kind, ID: t.ID}, checkpoint("delete")}
		}
	case Key:
		if e.Key == KeyEscape {
			return m.cancel(s), nil
		}
	}
	return s, nil
}

// StairsTopHeight is the height of the nearest foundation within radius of p,
// measured to its outline (zero inside), or fallback when none is in reach.
func StairsTopHeight(p model.Vec2, foundations []model.Foundation, radius, fallback float64) float64 {
	best, top := math.Inf(1), fallback
	for _, f := range foundations {
		d := model.DistanceToPolygon(f.Points, p)
		if d <= radius && d < best {
			best, top = d, f.Height
		}
	}
	return top
}

func (m *Machine) placeStairs(p model.Vec2, v View) []intent.Intent {
	top := StairsTopHeight(p, v.Foundations(), m.cfg.StairsSearchRadius, m.cfg.StairsDefaultTop)
	return []intent.Intent{
		intent.AddStairs{Stairs: model.Stairs{
			Position:  p,
			Width:     m.cfg.StairsWidth,
			Length:    m.cfg.StairsLength,
			TopHeight: top,
		}},
		checkpoint(string(ToolStairs)),
	}
}

func (m *Machine) placeRoof(p model.Vec2, v View) []intent.Intent {
	for _, r := range v.Rooms() {
		if model.PolygonContains(r.Points, p) {
			return []intent.Intent{
				intent.AddRoof{RoomID: r.ID, Style: m.cfg.RoofStyle, PitchDeg: m.cfg.RoofPitchDeg},
				checkpoint(string(ToolRoof)),
			}
		}
	}
	return nil
}

// placeOpening puts an opening on the nearest wall at the projected position.
// Clearance and overlap are left to the model.
func (m *Machine) placeOpening(p model.Vec2, v View, typ model.OpeningType, d OpeningDefaults) []intent.Intent {
	h, ok := snap.NearestWall(p, v.Walls(), m.cfg.OpeningReach)
	if !ok {
		return nil
	}
	o := model.Opening{
		Type:       typ,
		Position:   h.Along,
		Width:      d.Width,
		Height:     d.Height,
		SillHeight: d.SillHeight,
		DoorType:   d.DoorType,
	}
	return []intent.Intent{intent.AddOpening{WallID: h.WallID, Opening: o}, checkpoint(string(typ))}
}
