package model

import "fmt"

func (p *Plan) AddPool(points []Vec2, depth float64) (string, error) {
	pts, err := ValidatePolygon(points, p.cfg.MinSegment)
	if err != nil {
		return "", err
	}
	if depth <= 0 {
		depth = 1.5
	}
	pool := Pool{ID: nextID(prefixPool, &p.counters.NextPool), Points: pts, Depth: depth}
	p.pools.put(pool.ID, pool)
	return pool.ID, nil
}

func (p *Plan) AddFoundation(points []Vec2, height float64) (string, error) {
	pts, err := ValidatePolygon(points, p.cfg.MinSegment)
	if err != nil {
		return "", err
	}
	if height <= 0 {
		height = 0.3
	}
	f := Foundation{ID: nextID(prefixFoundation, &p.counters.NextFoundation), Points: pts, Height: height}
	p.foundations.put(f.ID, f)
	return f.ID, nil
}

func (p *Plan) AddStairs(s Stairs) (string, error) {
	if err := validFootprint(s.Width, s.Length); err != nil {
		return "", err
	}
	if !(s.TopHeight > 0) {
		return "", fmt.Errorf("%w: stairs top height %.2f", ErrInvalidGeometry, s.TopHeight)
	}
	s.ID = nextID(prefixStairs, &p.counters.NextStairs)
	s.RotationDeg = NormalizeDegrees(s.RotationDeg)
	p.stairs.put(s.ID, s)
	return s.ID, nil
}

func (p *Plan) AddRoof(roomID, style string, pitchDeg float64) (string, error) {
	if _, ok := p.rooms.get(roomID); !ok {
		return "", fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	for _, r := range p.roofs.list(nil) {
		if r.RoomID == roomID {
			return "", fmt.Errorf("%w: room %s already has roof %s", ErrPlacementRejected, roomID, r.ID)
		}
	}
	if pitchDeg < 0 || pitchDeg >= 90 {
		return "", fmt.Errorf("%w: roof pitch %.1f", ErrOutOfRange, pitchDeg)
	}
	if style == "" {
		style = "gable"
	}
	r := Roof{ID: nextID(prefixRoof, &p.counters.NextRoof), RoomID: roomID, Style: style, PitchDeg: pitchDeg}
	p.roofs.put(r.ID, r)
	return r.ID, nil
}

// MoveEntity translates a pool, foundation or stairs by delta.
func (p *Plan) MoveEntity(kind Kind, id string, delta Vec2) error {
	switch kind {
	case KindPool:
		if v, ok := p.pools.get(id); ok {
			v.Points = translate(v.Points, delta)
			p.pools.put(id, v)
			return nil
		}
	case KindFoundation:
		if v, ok := p.foundations.get(id); ok {
			v.Points = translate(v.Points, delta)
			p.foundations.put(id, v)
			return nil
		}
	case KindStairs:
		if v, ok := p.stairs.get(id); ok {
			v.Position = v.Position.Add(delta)
			p.stairs.put(id, v)
			return nil
		}
	case KindRoom:
		return p.MoveRoom(id, delta)
	case KindObject, KindBuilding:
		o, ok := p.Footprint(id)
		if !ok {
			break
		}
		return p.MoveObject(id, o.Position.Add(delta))
	case KindWall:
		return p.MoveWalls([]string{id}, delta)
	default:
		return fmt.Errorf("%w: cannot move %q", ErrInvalidGeometry, kind)
	}
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}
