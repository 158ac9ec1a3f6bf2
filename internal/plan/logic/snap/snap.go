// Package snap resolves a raw cursor position to the most meaningful nearby
// point: an existing corner, a point on a wall, a 45° bearing or the grid.
package snap

import (
	"math"

	"plotcraft.ai/internal/plan/model"
)

type Kind string

const (
	KindNone   Kind = "none"
	KindCorner Kind = "corner"
	KindEdge   Kind = "edge"
	KindAngle  Kind = "angle"
	KindGrid   Kind = "grid"
)

// Thresholds are the capture distances of each stage, in metres.
type Thresholds struct {
	Corner float64
	Edge   float64
	// EdgeMargin excludes the projection parameter range nearest either wall
	// end: an edge match needs t in (EdgeMargin, 1-EdgeMargin).
	EdgeMargin   float64
	AngleStepDeg float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Corner: 0.8, Edge: 0.5, EdgeMargin: 0.01, AngleStepDeg: 45}
}

type Grid struct {
	Enabled bool    `json:"enabled"`
	Size    float64 `json:"size"`
}

// Context is everything the resolver looks at besides the cursor.
type Context struct {
	Walls     []model.Wall
	Buildings []model.PlacedBuilding
	// Chain holds the points already placed by the active tool.
	Chain []model.Vec2
	// Prev is the point the angle stage measures the bearing from. When nil
	// the last chain point is used.
	Prev     *model.Vec2
	Modifier bool
	Grid     Grid

	Thresholds Thresholds
}

type Result struct {
	Point model.Vec2 `json:"point"`
	Kind  Kind       `json:"kind"`
}

func (c Context) prev() (model.Vec2, bool) {
	if c.Prev != nil {
		return *c.Prev, true
	}
	if n := len(c.Chain); n > 0 {
		return c.Chain[n-1], true
	}
	return model.Vec2{}, false
}

func (c Context) thresholds() Thresholds {
	t := c.Thresholds
	d := DefaultThresholds()
	if t.Corner <= 0 {
		t.Corner = d.Corner
	}
	if t.Edge <= 0 {
		t.Edge = d.Edge
	}
	if t.EdgeMargin <= 0 {
		t.EdgeMargin = d.EdgeMargin
	}
	if t.AngleStepDeg <= 0 {
		t.AngleStepDeg = d.AngleStepDeg
	}
	return t
}

// Resolve runs the stages corner, edge, angle, grid in that order and returns
// the first that matches. Touching existing geometry always wins over regular
// alignment.
func Resolve(cursor model.Vec2, ctx Context) Result {
	th := ctx.thresholds()
	if p, ok := Corner(cursor, ctx, th.Corner); ok {
		return Result{Point: p, Kind: KindCorner}
	}
	if h, ok := Edge(cursor, ctx.Walls, th.Edge, th.EdgeMargin); ok {
		return Result{Point: h.Point, Kind: KindEdge}
	}
	if ctx.Modifier {
		if prev, ok := ctx.prev(); ok {
			if p, ok := Angle(cursor, prev, th.AngleStepDeg); ok {
				return Result{Point: p, Kind: KindAngle}
			}
		}
	}
	if ctx.Grid.Enabled && ctx.Grid.Size > 0 {
		return Result{Point: GridRound(cursor, ctx.Grid.Size), Kind: KindGrid}
	}
	return Result{Point: cursor, Kind: KindNone}
}

// Corner returns the first endpoint within threshold. Walls are enumerated
// start then end, followed by building walls in world space, then the chain.
func Corner(cursor model.Vec2, ctx Context, threshold float64) (model.Vec2, bool) {
	for _, w := range ctx.Walls {
		if cursor.Dist(w.Start) <= threshold {
			return w.Start, true
		}
		if cursor.Dist(w.End) <= threshold {
			return w.End, true
		}
	}
	for _, b := range ctx.Buildings {
		for _, p := range b.WorldEndpoints() {
			if cursor.Dist(p) <= threshold {
				return p, true
			}
		}
	}
	for _, p := range ctx.Chain {
		if cursor.Dist(p) <= threshold {
			return p, true
		}
	}
	return model.Vec2{}, false
}

// WallHit is the projection of a point onto a wall.
type WallHit struct {
	WallID string
	Point  model.Vec2
	// T is the projection parameter along start->end, Along the distance
	// from the wall start.
	T        float64
	Along    float64
	Distance float64
}

// Edge returns the first wall, in wall order, whose perpendicular projection
// lies within threshold and strictly inside (margin, 1-margin).
func Edge(cursor model.Vec2, walls []model.Wall, threshold, margin float64) (WallHit, bool) {
	for _, w := range walls {
		t, p, d := model.ProjectOnSegment(cursor, w.Start, w.End)
		if d > threshold || t <= margin || t >= 1-margin {
			continue
		}
		return WallHit{WallID: w.ID, Point: p, T: t, Along: t * w.Length(), Distance: d}, true
	}
	return WallHit{}, false
}

// NearestWall returns the closest wall within maxDist regardless of where the
// projection falls. The door and window tools use it.
func NearestWall(cursor model.Vec2, walls []model.Wall, maxDist float64) (WallHit, bool) {
	best := WallHit{Distance: math.Inf(1)}
	found := false
	for _, w := range walls {
		if w.Length() < model.Epsilon {
			continue
		}
		t, p, d := model.ProjectOnSegment(cursor, w.Start, w.End)
		if d <= maxDist && d < best.Distance {
			best = WallHit{WallID: w.ID, Point: p, T: t, Along: t * w.Length(), Distance: d}
			found = true
		}
	}
	return best, found
}

// Angle snaps the bearing from prev to cursor to the nearest multiple of
// stepDeg, keeping the distance. Ties go to the first candidate in
// 0, step, 2*step, ... order. It fails when cursor and prev coincide.
func Angle(cursor, prev model.Vec2, stepDeg float64) (model.Vec2, bool) {
	d := cursor.Sub(prev)
	dist := d.Len()
	if dist < model.Epsilon || stepDeg <= 0 {
		return model.Vec2{}, false
	}
	bearing := math.Atan2(d.Z, d.X) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	n := int(math.Round(360 / stepDeg))
	bestDeg, bestDiff := 0.0, math.Inf(1)
	for i := 0; i < n; i++ {
		cand := float64(i) * stepDeg
		diff := math.Abs(bearing - cand)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff < bestDiff {
			bestDeg, bestDiff = cand, diff
		}
	}
	rad := bestDeg * math.Pi / 180
	return model.Vec2{X: prev.X + dist*math.Cos(rad), Z: prev.Z + dist*math.Sin(rad)}, true
}

// GridRound rounds both coordinates to the nearest multiple of size.
func GridRound(p model.Vec2, size float64) model.Vec2 {
	if size <= 0 {
		return p
	}
	return model.Vec2{X: math.Round(p.X/size) * size, Z: math.Round(p.Z/size) * size}
}
