// Package rooms associates room polygons with the walls that border them.
package rooms

import "plotcraft.ai/internal/plan/model"

// DefaultTolerance is how far a wall endpoint may sit from a room edge and
// still count as lying on it.
const DefaultTolerance = 0.05

// FindWallsForRoom returns the ids of walls whose both endpoints lie on some
// edge of the room polygon, in wall order and without duplicates. Walls split
// along an edge and walls drawn in either direction both match. The scan is a
// single pass over edges x walls; degenerate edges are skipped.
func FindWallsForRoom(room model.Room, walls []model.Wall) []string {
	return FindWallsForPolygon(room.Points, walls, DefaultTolerance)
}

func FindWallsForPolygon(points []model.Vec2, walls []model.Wall, tol float64) []string {
	pts := model.OpenPolygon(points)
	n := len(pts)
	if n < 3 {
		return nil
	}
	matched := make([]bool, len(walls))
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if a.Dist(b) < tol {
			continue
		}
		for j, w := range walls {
			if matched[j] || w.Length() < model.Epsilon {
				continue
			}
			if onSegment(w.Start, a, b, tol) && onSegment(w.End, a, b, tol) {
				matched[j] = true
			}
		}
	}
	var ids []string
	for j, ok := range matched {
		if ok {
			ids = append(ids, walls[j].ID)
		}
	}
	return ids
}

func onSegment(p, a, b model.Vec2, tol float64) bool {
	_, _, d := model.ProjectOnSegment(p, a, b)
	return d <= tol
}

// RoomsForWall is the reverse lookup: every room the wall borders, at most two
// in a well-formed plan.
func RoomsForWall(w model.Wall, rooms []model.Room) []string {
	var ids []string
	for _, r := range rooms {
		for _, id := range FindWallsForRoom(r, []model.Wall{w}) {
			if id == w.ID {
				ids = append(ids, r.ID)
			}
		}
	}
	return ids
}
