package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"
)

// PolygonAreaCenter returns the absolute area and centroid of a simple
// polygon. The polygon may or may not repeat its first point.
func PolygonAreaCenter(points []Vec2) (float64, Vec2) {
	if len(points) < 3 {
		return 0, Vec2{}
	}
	c, a := planar.CentroidArea(Ring(points))
	return math.Abs(a), FromOrb(c)
}

// PolygonContains reports whether pt is inside (or on the edge of) the polygon.
func PolygonContains(points []Vec2, pt Vec2) bool {
	if len(points) < 3 {
		return false
	}
	return planar.RingContains(Ring(points), pt.Orb())
}

// DistanceToPolygon is zero inside the polygon and the distance to the nearest
// edge outside of it.
func DistanceToPolygon(points []Vec2, pt Vec2) float64 {
	if PolygonContains(points, pt) {
		return 0
	}
	best := math.Inf(1)
	n := len(points)
	for i := 0; i < n; i++ {
		_, _, d := ProjectOnSegment(pt, points[i], points[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

// ValidatePolygon checks the point count, edge lengths, area and simplicity
// of a closed capture polygon and returns it without a repeated closing
// point. minEdge <= 0 disables the edge length check.
func ValidatePolygon(points []Vec2, minEdge float64) ([]Vec2, error) {
	pts := OpenPolygon(clonePoints(points))
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: polygon needs 3 points, got %d", ErrInvalidGeometry, len(pts))
	}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		d := a.Dist(b)
		if d < Epsilon {
			return nil, fmt.Errorf("%w: polygon has a zero-length edge at %d", ErrInvalidGeometry, i)
		}
		if minEdge > 0 && d < minEdge {
			return nil, fmt.Errorf("%w: polygon edge %d is %.2f m, minimum %.2f m", ErrPlacementRejected, i, d, minEdge)
		}
	}
	if area, _ := PolygonAreaCenter(pts); area < Epsilon {
		return nil, fmt.Errorf("%w: polygon has no area", ErrInvalidGeometry)
	}
	if i, j, ok := selfIntersection(pts); ok {
		return nil, fmt.Errorf("%w: polygon edges %d and %d cross", ErrInvalidGeometry, i, j)
	}
	return pts, nil
}

// selfIntersection reports the first pair of non-adjacent edges that touch
// or cross.
func selfIntersection(pts []Vec2) (int, int, bool) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if SegmentsIntersect(a, b, pts[j], pts[(j+1)%n]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// SegmentsIntersect reports whether segments ab and cd share any point,
// endpoints and collinear overlap included.
func SegmentsIntersect(a, b, c, d Vec2) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	if ((d1 > Epsilon && d2 < -Epsilon) || (d1 < -Epsilon && d2 > Epsilon)) &&
		((d3 > Epsilon && d4 < -Epsilon) || (d3 < -Epsilon && d4 > Epsilon)) {
		return true
	}
	return (math.Abs(d1) <= Epsilon && onSegment(c, d, a)) ||
		(math.Abs(d2) <= Epsilon && onSegment(c, d, b)) ||
		(math.Abs(d3) <= Epsilon && onSegment(a, b, c)) ||
		(math.Abs(d4) <= Epsilon && onSegment(a, b, d))
}

func orient(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Z-a.Z) - (b.Z-a.Z)*(c.X-a.X)
}

// onSegment assumes p is collinear with ab.
func onSegment(a, b, p Vec2) bool {
	return p.X >= math.Min(a.X, b.X)-Epsilon && p.X <= math.Max(a.X, b.X)+Epsilon &&
		p.Z >= math.Min(a.Z, b.Z)-Epsilon && p.Z <= math.Max(a.Z, b.Z)+Epsilon
}

func (p *Plan) AddRoom(points []Vec2, label string, floorLevel int) (string, error) {
	pts, err := ValidatePolygon(points, 0)
	if err != nil {
		return "", err
	}
	r := Room{
		ID:         nextID(prefixRoom, &p.counters.NextRoom),
		Points:     pts,
		FloorLevel: floorLevel,
		Label:      label,
	}
	r.Area, r.Center = PolygonAreaCenter(pts)
	p.rooms.put(r.ID, r)
	return r.ID, nil
}

// ImportRoom inserts a room produced outside the tools (layout import,
// snapshot), keeping its id and recomputing area and centre.
func (p *Plan) ImportRoom(r Room) (string, error) {
	pts, err := ValidatePolygon(r.Points, 0)
	if err != nil {
		return "", err
	}
	if r.ID == "" {
		r.ID = nextID(prefixRoom, &p.counters.NextRoom)
	} else {
		if _, dup := p.rooms.get(r.ID); dup {
			return "", fmt.Errorf("%w: duplicate room id %s", ErrPlacementRejected, r.ID)
		}
		bumpPast(prefixRoom, r.ID, &p.counters.NextRoom)
	}
	r.Points = pts
	r.Area, r.Center = PolygonAreaCenter(pts)
	p.rooms.put(r.ID, r)
	return r.ID, nil
}

func (p *Plan) MoveRoom(id string, delta Vec2) error {
	r, ok := p.rooms.get(id)
	if !ok {
		return fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	r.Points = translate(r.Points, delta)
	r.Center = r.Center.Add(delta)
	p.rooms.put(id, r)
	return nil
}

func (p *Plan) SetRoomStyle(id string, style RoomStyle) error {
	r, ok := p.rooms.get(id)
	if !ok {
		return fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	r = cloneRoom(r)
	r.Style = style
	p.rooms.put(id, r)
	return nil
}

func (p *Plan) SetRoomLabel(id, label string) error {
	r, ok := p.rooms.get(id)
	if !ok {
		return fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	r = cloneRoom(r)
	r.Label = label
	p.rooms.put(id, r)
	return nil
}

// RoomAt returns the first room, in insertion order, containing pt.
func (p *Plan) RoomAt(pt Vec2) (Room, bool) {
	for _, r := range p.rooms.list(nil) {
		if PolygonContains(r.Points, pt) {
			return cloneRoom(r), true
		}
	}
	return Room{}, false
}

func (p *Plan) SetBoundary(points []Vec2, setback float64) error {
	pts, err := ValidatePolygon(points, 0)
	if err != nil {
		return err
	}
	if setback < 0 {
		return fmt.Errorf("%w: setback %.2f", ErrOutOfRange, setback)
	}
	p.boundary = Boundary{Points: pts, Setback: setback}
	return nil
}
