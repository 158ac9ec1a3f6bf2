package model

import (
	"fmt"
	"math"
)

// NormalizeDegrees folds any angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

func validFootprint(width, length float64) error {
	if !(width > 0) || !(length > 0) {
		return fmt.Errorf("%w: footprint %.2fx%.2f", ErrInvalidGeometry, width, length)
	}
	return nil
}

func (p *Plan) AddObject(o PlacedObject) (string, error) {
	if err := validFootprint(o.Width, o.Length); err != nil {
		return "", err
	}
	if o.ID == "" {
		o.ID = nextID(prefixObject, &p.counters.NextObject)
	} else if p.hasFootprint(o.ID) {
		return "", fmt.Errorf("%w: duplicate object id %s", ErrPlacementRejected, o.ID)
	} else {
		bumpPast(prefixObject, o.ID, &p.counters.NextObject)
	}
	o.RotationDeg = NormalizeDegrees(o.RotationDeg)
	p.objects.put(o.ID, o)
	return o.ID, nil
}

// AddBuilding places a prefabricated building. Building ids share the object
// counter so footprints stay unique across both tables.
func (p *Plan) AddBuilding(b PlacedBuilding) (string, error) {
	if err := validFootprint(b.Width, b.Length); err != nil {
		return "", err
	}
	if b.ID == "" {
		b.ID = nextID(prefixObject, &p.counters.NextObject)
	} else if p.hasFootprint(b.ID) {
		return "", fmt.Errorf("%w: duplicate building id %s", ErrPlacementRejected, b.ID)
	} else {
		bumpPast(prefixObject, b.ID, &p.counters.NextObject)
	}
	b.RotationDeg = NormalizeDegrees(b.RotationDeg)
	b = cloneBuilding(b)
	p.buildings.put(b.ID, b)
	return b.ID, nil
}

func (p *Plan) hasFootprint(id string) bool {
	if _, ok := p.objects.get(id); ok {
		return true
	}
	_, ok := p.buildings.get(id)
	return ok
}

// MoveObject sets the position of a comparison object or placed building.
func (p *Plan) MoveObject(id string, pos Vec2) error {
	if o, ok := p.objects.get(id); ok {
		o.Position = pos
		p.objects.put(id, o)
		return nil
	}
	if b, ok := p.buildings.get(id); ok {
		b = cloneBuilding(b)
		b.Position = pos
		p.buildings.put(id, b)
		return nil
	}
	return fmt.Errorf("%w: object %s", ErrNotFound, id)
}

func (p *Plan) RotateObject(id string, deg float64) error {
	if o, ok := p.objects.get(id); ok {
		o.RotationDeg = NormalizeDegrees(deg)
		p.objects.put(id, o)
		return nil
	}
	if b, ok := p.buildings.get(id); ok {
		b = cloneBuilding(b)
		b.RotationDeg = NormalizeDegrees(deg)
		p.buildings.put(id, b)
		return nil
	}
	return fmt.Errorf("%w: object %s", ErrNotFound, id)
}

// Footprint looks an id up in both the object and building tables.
func (p *Plan) Footprint(id string) (PlacedObject, bool) {
	if o, ok := p.objects.get(id); ok {
		return o, true
	}
	if b, ok := p.buildings.get(id); ok {
		return b.PlacedObject, true
	}
	return PlacedObject{}, false
}
