package tools

import (
	"strconv"
	"strings"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

func (m *Machine) reduceChain(s Session, ev Event, v View) (Session, []intent.Intent) {
	switch e := ev.(type) {
	case PointerMove:
		return m.preview(s, v, e.Point, e.Mods), nil
	case PointerDown:
		r := m.resolve(s, v, e.Point, e.Mods)
		s.Preview, s.HasPreview = r, true
		return m.confirm(s, r.Point)
	case Key:
		return m.chainKey(s, e)
	}
	return s, nil
}

func (m *Machine) chainKey(s Session, e Key) (Session, []intent.Intent) {
	switch k := e.Key; {
	case k == KeyEscape:
		s.Buffer = ""
		return m.escape(s)
	case k == KeySpace:
		if !s.HasPreview {
			return s, nil
		}
		return m.confirm(s, s.Preview.Point)
	case k == KeyEnter:
		if s.Buffer == "" {
			return m.finish(s)
		}
		return m.typedLength(s)
	case k == KeyBackspace:
		if s.Buffer != "" {
			s.Buffer = s.Buffer[:len(s.Buffer)-1]
			return s, nil
		}
		pts := s.Points()
		switch {
		case len(pts) > 1:
			s.State = Collecting{Points: append([]model.Vec2(nil), pts[:len(pts)-1]...)}
		case len(pts) == 1:
			s.State = Idle{}
		}
		return s, nil
	case len(k) == 1 && k[0] >= '0' && k[0] <= '9':
		s.Buffer += k
		return s, nil
	case k == ".":
		if !strings.Contains(s.Buffer, ".") {
			s.Buffer += k
		}
		return s, nil
	}
	return s, nil
}

// typedLength places the next point at the typed distance from the last
// point, along the bearing towards the current preview. Out-of-range values
// and an undefined bearing are ignored; the buffer is cleared either way.
func (m *Machine) typedLength(s Session) (Session, []intent.Intent) {
	raw := s.Buffer
	s.Buffer = ""
	l, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(l > 0) || l > m.cfg.MaxTypedLength {
		return s, nil
	}
	pts := s.Points()
	if len(pts) == 0 || !s.HasPreview {
		return s, nil
	}
	last := pts[len(pts)-1]
	dir := s.Preview.Point.Sub(last).Unit()
	if dir == (model.Vec2{}) {
		return s, nil
	}
	return m.confirm(s, last.Add(dir.Scale(l)))
}

// confirm appends p to the chain, closing the loop when p lands near the
// first point.
func (m *Machine) confirm(s Session, p model.Vec2) (Session, []intent.Intent) {
	prm := m.cfg.ParamsFor(s.Tool)
	pts := s.Points()
	if len(pts) == 0 {
		s.State = Collecting{Points: []model.Vec2{p}}
		return s, nil
	}
	last := pts[len(pts)-1]
	if p.Dist(last) < model.Epsilon {
		return s, nil
	}
	if len(pts) >= prm.MinClosePoints && p.Dist(pts[0]) <= prm.CloseDistance {
		if prm.MinSegment > 0 && last.Dist(pts[0]) < prm.MinSegment {
			return s, nil
		}
		return m.commitClosed(s, pts)
	}
	if prm.MinSegment > 0 && p.Dist(last) < prm.MinSegment {
		return s, nil
	}
	s.State = Collecting{Points: appendPoint(pts, p)}
	return s, nil
}

func (m *Machine) escape(s Session) (Session, []intent.Intent) {
	pts := s.Points()
	if m.cfg.ParamsFor(s.Tool).EscapeCommits && len(pts) >= 2 {
		return m.commitOpen(s, pts)
	}
	return m.cancel(s), nil
}

// finish handles Enter with an empty buffer: open runs commit, polygon tools
// close when they have enough points.
func (m *Machine) finish(s Session) (Session, []intent.Intent) {
	pts := s.Points()
	if s.Tool.openRun() {
		if len(pts) >= 2 {
			return m.commitOpen(s, pts)
		}
		return s, nil
	}
	prm := m.cfg.ParamsFor(s.Tool)
	if len(pts) < prm.MinClosePoints {
		return s, nil
	}
	if prm.MinSegment > 0 && pts[len(pts)-1].Dist(pts[0]) < prm.MinSegment {
		return s, nil
	}
	return m.commitClosed(s, pts)
}

func (m *Machine) commitOpen(s Session, pts []model.Vec2) (Session, []intent.Intent) {
	out := []intent.Intent{
		intent.AddWalls{Points: append([]model.Vec2(nil), pts...), IsFence: s.Tool == ToolFence},
		checkpoint(string(s.Tool)),
	}
	return m.cancel(s), out
}

// commitClosed materializes a closed chain. pts is the open polygon; the
// wall run repeats pts[0] at the end. Area tools whose polygon would be
// rejected emit nothing and keep collecting.
func (m *Machine) commitClosed(s Session, pts []model.Vec2) (Session, []intent.Intent) {
	if s.Tool.areaTool() {
		if _, err := model.ValidatePolygon(pts, m.cfg.ParamsFor(s.Tool).MinSegment); err != nil {
			return s, nil
		}
	}
	poly := append([]model.Vec2(nil), pts...)
	ring := appendPoint(poly, pts[0])
	var out []intent.Intent
	switch s.Tool {
	case ToolWall, ToolFence:
		out = append(out, intent.AddWalls{Points: ring, IsFence: s.Tool == ToolFence})
	case ToolPolygonRoom:
		out = append(out,
			intent.AddWalls{Points: ring},
			intent.AddRoom{Points: poly},
		)
	case ToolPool:
		out = append(out, intent.AddPool{Points: poly})
	case ToolFoundation:
		out = append(out, intent.AddFoundation{Points: poly})
	}
	out = append(out, checkpoint(string(s.Tool)))
	return m.cancel(s), out
}
