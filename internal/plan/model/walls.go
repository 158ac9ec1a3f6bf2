package model

import (
	"fmt"
	"math"
)

// openingSlack absorbs float noise in the clearance and overlap checks so that
// an opening exactly at the 0.3 m limit is accepted.
const openingSlack = 1e-9

// AddWallsFromPoints creates one wall per consecutive point pair. A chain whose
// last point repeats the first one is closed and yields len(points)-1 walls
// with the last end equal to the first start. Zero-length pairs are skipped.
func (p *Plan) AddWallsFromPoints(points []Vec2, height float64, isFence bool, fenceType string) ([]string, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: wall chain needs 2 points, got %d", ErrInvalidGeometry, len(points))
	}
	thickness := p.cfg.WallThickness
	if isFence {
		thickness = p.cfg.FenceThickness
		if fenceType == "" {
			fenceType = "wood"
		}
		if height <= 0 {
			height = p.cfg.FenceHeight
		}
	} else {
		fenceType = ""
	}
	if height <= 0 {
		height = p.cfg.WallHeight
	}

	var walls []Wall
	counter := p.counters.NextWall
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if a.Dist(b) < Epsilon {
			continue
		}
		walls = append(walls, Wall{
			ID:        nextID(prefixWall, &counter),
			Start:     a,
			End:       b,
			Height:    height,
			Thickness: thickness,
			FenceType: fenceType,
		})
	}
	if len(walls) == 0 {
		return nil, fmt.Errorf("%w: wall chain has no segment of non-zero length", ErrInvalidGeometry)
	}

	p.counters.NextWall = counter
	ids := make([]string, len(walls))
	for i, w := range walls {
		p.walls.put(w.ID, w)
		ids[i] = w.ID
	}
	return ids, nil
}

// AddWall inserts a fully specified wall, keeping its id when it has one.
func (p *Plan) AddWall(w Wall) (string, error) {
	if w.Length() < Epsilon {
		return "", fmt.Errorf("%w: zero-length wall", ErrInvalidGeometry)
	}
	openings := w.Openings
	w.Openings = nil
	if w.ID == "" {
		w.ID = nextID(prefixWall, &p.counters.NextWall)
	} else {
		if _, dup := p.walls.get(w.ID); dup {
			return "", fmt.Errorf("%w: duplicate wall id %s", ErrPlacementRejected, w.ID)
		}
		bumpPast(prefixWall, w.ID, &p.counters.NextWall)
	}
	if w.Height <= 0 {
		w.Height = p.cfg.WallHeight
	}
	if w.Thickness <= 0 {
		w.Thickness = p.cfg.WallThickness
	}
	for _, o := range openings {
		if err := p.validateOpening(w, o); err != nil {
			continue
		}
		w.Openings = append(w.Openings, p.assignOpeningID(o))
	}
	p.walls.put(w.ID, w)
	return w.ID, nil
}

// AddOpeningToWall validates edge clearance and overlap against the wall's
// existing openings before attaching the opening.
func (p *Plan) AddOpeningToWall(wallID string, o Opening) (string, error) {
	w, ok := p.walls.get(wallID)
	if !ok {
		return "", fmt.Errorf("%w: wall %s", ErrNotFound, wallID)
	}
	if err := p.validateOpening(w, o); err != nil {
		return "", err
	}
	o = p.assignOpeningID(o)
	w = w.clone()
	w.Openings = append(w.Openings, o)
	p.walls.put(w.ID, w)
	return o.ID, nil
}

func (p *Plan) assignOpeningID(o Opening) Opening {
	if o.ID == "" {
		o.ID = nextID(prefixOpening, &p.counters.NextOpening)
	} else {
		bumpPast(prefixOpening, o.ID, &p.counters.NextOpening)
	}
	return o
}

func (p *Plan) validateOpening(w Wall, o Opening) error {
	if o.Width <= 0 || math.IsNaN(o.Position) {
		return fmt.Errorf("%w: opening width %.3f", ErrInvalidGeometry, o.Width)
	}
	if o.Type != OpeningDoor && o.Type != OpeningWindow {
		return fmt.Errorf("%w: opening type %q", ErrInvalidGeometry, o.Type)
	}
	if err := fitsWall(w.Length(), o, p.cfg.EdgeClearance); err != nil {
		return err
	}
	lo, hi := o.Span()
	for _, other := range w.Openings {
		if other.ID != "" && other.ID == o.ID {
			continue
		}
		olo, ohi := other.Span()
		if lo < ohi-openingSlack && olo < hi-openingSlack {
			return fmt.Errorf("%w: opening [%.2f,%.2f] overlaps %s [%.2f,%.2f]", ErrPlacementRejected, lo, hi, other.ID, olo, ohi)
		}
	}
	return nil
}

func fitsWall(length float64, o Opening, clearance float64) error {
	lo, hi := o.Span()
	if lo < clearance-openingSlack || hi > length-clearance+openingSlack {
		return fmt.Errorf("%w: opening [%.2f,%.2f] needs %.2f m clearance on a %.2f m wall", ErrPlacementRejected, lo, hi, clearance, length)
	}
	return nil
}

// RemoveOpening detaches an opening from its wall.
func (p *Plan) RemoveOpening(wallID, openingID string) error {
	w, ok := p.walls.get(wallID)
	if !ok {
		return fmt.Errorf("%w: wall %s", ErrNotFound, wallID)
	}
	w = w.clone()
	for i, o := range w.Openings {
		if o.ID == openingID {
			w.Openings = append(w.Openings[:i], w.Openings[i+1:]...)
			p.walls.put(w.ID, w)
			return nil
		}
	}
	return fmt.Errorf("%w: opening %s on wall %s", ErrNotFound, openingID, wallID)
}

// ResizeWall keeps the endpoint nearer anchorHint fixed and moves the other
// one along the wall's bearing so the wall ends up newLength long.
func (p *Plan) ResizeWall(id string, newLength float64, anchorHint Vec2) error {
	w, ok := p.walls.get(id)
	if !ok {
		return fmt.Errorf("%w: wall %s", ErrNotFound, id)
	}
	if !(newLength > 0) || newLength > p.cfg.MaxLength {
		return fmt.Errorf("%w: wall length %.3f", ErrOutOfRange, newLength)
	}
	old := w.Length()
	dir := w.End.Sub(w.Start).Unit()
	w = w.clone()

	keepStart := anchorHint.Dist(w.Start) <= anchorHint.Dist(w.End)
	if keepStart {
		w.End = w.Start.Add(dir.Scale(newLength))
	} else {
		w.Start = w.End.Sub(dir.Scale(newLength))
		shift := newLength - old
		for i := range w.Openings {
			w.Openings[i].Position += shift
		}
	}
	for _, o := range w.Openings {
		if err := fitsWall(newLength, o, p.cfg.EdgeClearance); err != nil {
			return err
		}
	}
	p.walls.put(w.ID, w)
	return nil
}

func (p *Plan) DeleteWall(id string) error {
	return p.Delete(KindWall, id)
}

// MoveWalls translates every listed wall by delta. Unknown ids are skipped;
// the call fails only when none of them exists.
func (p *Plan) MoveWalls(ids []string, delta Vec2) error {
	moved := 0
	for _, id := range ids {
		w, ok := p.walls.get(id)
		if !ok {
			continue
		}
		w = w.clone()
		w.Start = w.Start.Add(delta)
		w.End = w.End.Add(delta)
		p.walls.put(id, w)
		moved++
	}
	if moved == 0 && len(ids) > 0 {
		return fmt.Errorf("%w: walls %v", ErrNotFound, ids)
	}
	return nil
}

// PaintWalls sets the colour of the listed walls.
func (p *Plan) PaintWalls(ids []string, color string) int {
	n := 0
	for _, id := range ids {
		w, ok := p.walls.get(id)
		if !ok {
			continue
		}
		w = w.clone()
		w.Color = color
		p.walls.put(id, w)
		n++
	}
	return n
}
