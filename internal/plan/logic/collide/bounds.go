// Package collide computes footprint bounds of placed objects, their pairwise
// overlaps and the edge-to-edge snap applied while an object is dragged.
package collide

import (
	"math"

	"github.com/paulmach/orb"

	"plotcraft.ai/internal/plan/model"
)

// Box is an axis-aligned rectangle on the ground plane.
type Box struct {
	MinX float64 `json:"min_x"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxZ float64 `json:"max_z"`
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Length() float64 { return b.MaxZ - b.MinZ }

func (b Box) Center() model.Vec2 {
	return model.Vec2{X: (b.MinX + b.MaxX) / 2, Z: (b.MinZ + b.MaxZ) / 2}
}

func (b Box) Translate(d model.Vec2) Box {
	return Box{MinX: b.MinX + d.X, MinZ: b.MinZ + d.Z, MaxX: b.MaxX + d.X, MaxZ: b.MaxZ + d.Z}
}

func (b Box) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinZ}, Max: orb.Point{b.MaxX, b.MaxZ}}
}

// BoundsOf returns the footprint box of an object centred on (x,z). Near
// 0/180 degrees width runs along x, near 90/270 it runs along z. Any other
// rotation yields the box enclosing the rotated corners and axisAligned=false.
func BoundsOf(x, z, width, length, rotationDeg float64) (box Box, axisAligned bool) {
	if q, ok := QuarterTurn(rotationDeg); ok {
		hw, hl := width/2, length/2
		if q%2 == 1 {
			hw, hl = hl, hw
		}
		return Box{MinX: x - hw, MinZ: z - hl, MaxX: x + hw, MaxZ: z + hl}, true
	}
	var mp orb.MultiPoint
	for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		rx, rz := RotateXZ(c[0]*width/2, c[1]*length/2, rotationDeg)
		mp = append(mp, orb.Point{x + rx, z + rz})
	}
	bd := mp.Bound()
	return Box{MinX: bd.Min[0], MinZ: bd.Min[1], MaxX: bd.Max[0], MaxZ: bd.Max[1]}, false
}

// ObjectBounds is BoundsOf for a placed object.
func ObjectBounds(o model.PlacedObject) (Box, bool) {
	return BoundsOf(o.Position.X, o.Position.Z, o.Width, o.Length, o.RotationDeg)
}

// Overlaps is the separating-axis test for two boxes. Boxes that only touch
// do not overlap.
func Overlaps(a, b Box) bool {
	return a.MinX < b.MaxX && b.MinX < a.MaxX && a.MinZ < b.MaxZ && b.MinZ < a.MaxZ
}

// PolygonBox returns the axis-aligned bounds of a polygon.
func PolygonBox(points []model.Vec2) Box {
	if len(points) == 0 {
		return Box{}
	}
	bd := model.Ring(points).Bound()
	return Box{MinX: bd.Min[0], MinZ: bd.Min[1], MaxX: bd.Max[0], MaxZ: bd.Max[1]}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
