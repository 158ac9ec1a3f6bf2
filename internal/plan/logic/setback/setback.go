// Package setback insets a land boundary by a required distance and builds
// the band between the two outlines.
package setback

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"plotcraft.ai/internal/plan/model"
)

// MinCosHalf floors cos(θ/2) in the miter scale so near-reflex corners do
// not shoot off. It is a lossy approximation, not a miter limit.
const MinCosHalf = 0.3

// degenerate is the edge length below which an edge has no usable normal.
const degenerate = 1e-6

// OffsetInward returns the boundary moved inward by distance, one vertex per
// input vertex. Each vertex moves along the bisector of the inward normals of
// its two edges, scaled by distance/max(cos(θ/2), MinCosHalf). When one of the
// edges is degenerate the other edge's normal is used unscaled.
func OffsetInward(boundary []model.Vec2, distance float64) ([]model.Vec2, error) {
	pts := model.OpenPolygon(boundary)
	n := len(pts)
	if n < 3 {
		return nil, fmt.Errorf("%w: boundary needs 3 points, got %d", model.ErrInvalidGeometry, n)
	}
	if distance < 0 || math.IsNaN(distance) {
		return nil, fmt.Errorf("%w: setback distance %.3f", model.ErrOutOfRange, distance)
	}

	var sign float64
	switch model.Ring(pts).Orientation() {
	case orb.CCW:
		sign = 1
	case orb.CW:
		sign = -1
	default:
		return nil, fmt.Errorf("%w: boundary has no area", model.ErrInvalidGeometry)
	}

	normals := make([]model.Vec2, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		d := pts[(i+1)%n].Sub(pts[i])
		if d.Len() < degenerate {
			continue
		}
		u := d.Unit()
		// Interior is left of a counter-clockwise edge.
		normals[i] = model.Vec2{X: -u.Z * sign, Z: u.X * sign}
		valid[i] = true
	}

	out := make([]model.Vec2, n)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		n1, ok1 := normals[prev], valid[prev]
		n2, ok2 := normals[i], valid[i]
		switch {
		case ok1 && ok2:
			out[i] = pts[i].Add(miter(n1, n2, distance))
		case ok1:
			out[i] = pts[i].Add(n1.Scale(distance))
		case ok2:
			out[i] = pts[i].Add(n2.Scale(distance))
		default:
			out[i] = pts[i]
		}
	}
	return out, nil
}

func miter(n1, n2 model.Vec2, distance float64) model.Vec2 {
	sum := n1.Add(n2)
	if sum.Len() < degenerate {
		// The edges fold back onto each other.
		return n1.Scale(distance)
	}
	cosHalf := math.Sqrt(math.Max(0, (1+n1.Dot(n2))/2))
	return sum.Unit().Scale(distance / math.Max(cosHalf, MinCosHalf))
}

// Band is the strip between the boundary and its inset. Vertices holds the
// outer ring followed by the inner ring, so outer vertex i pairs with inner
// vertex n+i.
type Band struct {
	Vertices  []model.Vec2 `json:"vertices"`
	Pairs     [][2]int     `json:"pairs"`
	Triangles [][3]int     `json:"triangles"`
}

// BuildBand triangulates the strip between outer and inner, two triangles per
// edge.
func BuildBand(outer, inner []model.Vec2) (Band, error) {
	outer = model.OpenPolygon(outer)
	n := len(outer)
	if n < 3 || len(inner) != n {
		return Band{}, fmt.Errorf("%w: band needs matching rings, got %d and %d points", model.ErrInvalidGeometry, n, len(inner))
	}
	b := Band{
		Vertices:  make([]model.Vec2, 0, 2*n),
		Pairs:     make([][2]int, n),
		Triangles: make([][3]int, 0, 2*n),
	}
	b.Vertices = append(b.Vertices, outer...)
	b.Vertices = append(b.Vertices, inner...)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b.Pairs[i] = [2]int{i, n + i}
		b.Triangles = append(b.Triangles,
			[3]int{i, j, n + i},
			[3]int{j, n + j, n + i},
		)
	}
	return b, nil
}

// Compute runs OffsetInward and BuildBand in one go.
func Compute(boundary []model.Vec2, distance float64) (inner []model.Vec2, band Band, err error) {
	inner, err = OffsetInward(boundary, distance)
	if err != nil {
		return nil, Band{}, err
	}
	band, err = BuildBand(boundary, inner)
	return inner, band, err
}
