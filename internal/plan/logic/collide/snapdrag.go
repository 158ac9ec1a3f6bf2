package collide

import (
	"math"

	"plotcraft.ai/internal/plan/model"
)

// DefaultSnapThreshold is the edge capture distance while dragging, in metres.
const DefaultSnapThreshold = 1.5

// BoundaryTarget is reported as the snap target when a drag snapped to the
// land boundary.
const BoundaryTarget = "boundary"

type DragSnap struct {
	Position model.Vec2 `json:"position"`
	// TargetX and TargetZ name what each axis snapped to, empty when it did not.
	TargetX string `json:"target_x,omitempty"`
	TargetZ string `json:"target_z,omitempty"`
}

func (d DragSnap) Snapped() bool { return d.TargetX != "" || d.TargetZ != "" }

// SnapDrag adjusts the position of a dragged object so that one of its edges
// coincides with an edge of another axis-aligned object within threshold.
// Each axis takes the first match in enumeration order. Axis-aligned land
// boundary edges are only tried when no object matched on either axis.
// Rotated objects neither snap nor serve as targets.
func SnapDrag(moving model.PlacedObject, others []model.PlacedObject, boundary []model.Vec2, threshold float64) DragSnap {
	out := DragSnap{Position: moving.Position}
	a, ok := ObjectBounds(moving)
	if !ok {
		return out
	}
	if threshold <= 0 {
		threshold = DefaultSnapThreshold
	}

	var dx, dz float64
	for _, o := range others {
		if o.ID == moving.ID {
			continue
		}
		b, ok := ObjectBounds(o)
		if !ok {
			continue
		}
		if out.TargetX == "" && gap(a.MinZ, a.MaxZ, b.MinZ, b.MaxZ) <= threshold {
			if d, ok := firstEdgeMatch(a.MinX, a.MaxX, b.MinX, b.MaxX, threshold); ok {
				dx, out.TargetX = d, o.ID
			}
		}
		if out.TargetZ == "" && gap(a.MinX, a.MaxX, b.MinX, b.MaxX) <= threshold {
			if d, ok := firstEdgeMatch(a.MinZ, a.MaxZ, b.MinZ, b.MaxZ, threshold); ok {
				dz, out.TargetZ = d, o.ID
			}
		}
		if out.TargetX != "" && out.TargetZ != "" {
			break
		}
	}
	if !out.Snapped() {
		dx, dz = snapBoundary(a, boundary, threshold, &out)
	}
	out.Position = model.Vec2{X: moving.Position.X + dx, Z: moving.Position.Z + dz}
	return out
}

// firstEdgeMatch tries, in order, aMin->bMax, aMax->bMin, aMin->bMin and
// aMax->bMax and returns the shift that makes the first pair within
// threshold coincide.
func firstEdgeMatch(aMin, aMax, bMin, bMax, threshold float64) (float64, bool) {
	for _, pair := range [4][2]float64{{aMin, bMax}, {aMax, bMin}, {aMin, bMin}, {aMax, bMax}} {
		if d := pair[1] - pair[0]; math.Abs(d) <= threshold {
			return d, true
		}
	}
	return 0, false
}

// gap is the distance between two intervals, zero when they overlap.
func gap(aMin, aMax, bMin, bMax float64) float64 {
	switch {
	case aMax < bMin:
		return bMin - aMax
	case bMax < aMin:
		return aMin - bMax
	default:
		return 0
	}
}

func snapBoundary(a Box, boundary []model.Vec2, threshold float64, out *DragSnap) (dx, dz float64) {
	pts := model.OpenPolygon(boundary)
	n := len(pts)
	if n < 3 {
		return 0, 0
	}
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		switch {
		case out.TargetX == "" && approx(p.X, q.X) && !approx(p.Z, q.Z):
			if gap(a.MinZ, a.MaxZ, math.Min(p.Z, q.Z), math.Max(p.Z, q.Z)) > threshold {
				continue
			}
			if d, ok := firstEdgeMatch(a.MinX, a.MaxX, p.X, p.X, threshold); ok {
				dx, out.TargetX = d, BoundaryTarget
			}
		case out.TargetZ == "" && approx(p.Z, q.Z) && !approx(p.X, q.X):
			if gap(a.MinX, a.MaxX, math.Min(p.X, q.X), math.Max(p.X, q.X)) > threshold {
				continue
			}
			if d, ok := firstEdgeMatch(a.MinZ, a.MaxZ, p.Z, p.Z, threshold); ok {
				dz, out.TargetZ = d, BoundaryTarget
			}
		}
	}
	return dx, dz
}
