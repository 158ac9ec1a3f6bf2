package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Vec2 is a point on the ground plane, in metres.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Z: v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Z: v.Z - o.Z} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Z: v.Z * k} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Z*o.Z }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Z) }
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) Orb() orb.Point { return orb.Point{v.X, v.Z} }
func FromOrb(p orb.Point) Vec2 { return Vec2{X: p[0], Z: p[1]} }
func (v Vec2) Near(o Vec2, tol float64) bool { return v.Dist(o) <= tol }

// Unit returns v scaled to length 1, or the zero vector when v is degenerate.
func (v Vec2) Unit() Vec2 {
	l := v.Len()
	if l < Epsilon {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Z: v.Z / l}
}

// Rotate turns v counter-clockwise (x towards z) by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec2{X: v.X*c - v.Z*s, Z: v.X*s + v.Z*c}
}

// Epsilon is the length below which a segment is treated as degenerate.
const Epsilon = 1e-9

// ProjectOnSegment returns the parameter t in [0,1] of the closest point on
// segment a-b to p, the closest point itself and its distance to p.
func ProjectOnSegment(p, a, b Vec2) (t float64, closest Vec2, dist float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon*Epsilon {
		return 0, a, p.Dist(a)
	}
	t = p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest = a.Add(ab.Scale(t))
	return t, closest, p.Dist(closest)
}

// Ring converts a polygon point list into a closed orb ring.
func Ring(points []Vec2) orb.Ring {
	r := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		r = append(r, p.Orb())
	}
	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// OpenPolygon drops a trailing point that repeats the first one.
func OpenPolygon(points []Vec2) []Vec2 {
	if len(points) > 1 && points[0].Near(points[len(points)-1], Epsilon) {
		return points[:len(points)-1]
	}
	return points
}

func clonePoints(points []Vec2) []Vec2 {
	if points == nil {
		return nil
	}
	out := make([]Vec2, len(points))
	copy(out, points)
	return out
}

func translate(points []Vec2, delta Vec2) []Vec2 {
	out := make([]Vec2, len(points))
	for i, p := range points {
		out[i] = p.Add(delta)
	}
	return out
}
