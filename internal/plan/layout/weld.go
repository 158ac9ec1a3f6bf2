package layout

import "plotcraft.ai/internal/plan/model"

// Weld snaps every wall endpoint onto the first earlier endpoint within tol,
// then drops walls that collapsed to zero length or duplicate an earlier wall.
// It returns the surviving walls in input order and the number dropped.
func Weld(walls []model.Wall, tol float64) ([]model.Wall, int) {
	var vertices []model.Vec2
	weld := func(p model.Vec2) model.Vec2 {
		for _, v := range vertices {
			if v.Near(p, tol) {
				return v
			}
		}
		vertices = append(vertices, p)
		return p
	}

	type edge struct{ a, b model.Vec2 }
	seen := map[edge]bool{}
	out := make([]model.Wall, 0, len(walls))
	dropped := 0
	for _, w := range walls {
		w.Start = weld(w.Start)
		w.End = weld(w.End)
		if w.Length() < model.Epsilon {
			dropped++
			continue
		}
		k := edge{w.Start, w.End}
		if seen[k] || seen[edge{w.End, w.Start}] {
			dropped++
			continue
		}
		seen[k] = true
		out = append(out, w)
	}
	return out, dropped
}
