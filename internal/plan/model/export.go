package model

import "fmt"

// Layout is the JSON-serializable form of a whole plan. Snapshots and the
// layout importer both use it.
type Layout struct {
	Walls       []Wall           `json:"walls"`
	Rooms       []Room           `json:"rooms"`
	Objects     []PlacedObject   `json:"objects"`
	Buildings   []PlacedBuilding `json:"buildings"`
	Pools       []Pool           `json:"pools"`
	Foundations []Foundation     `json:"foundations"`
	Stairs      []Stairs         `json:"stairs"`
	Roofs       []Roof           `json:"roofs"`
	Boundary    Boundary         `json:"boundary"`
	Counters    *Counters        `json:"counters,omitempty"`
}

func (p *Plan) Export() Layout {
	c := p.counters
	return Layout{
		Walls:       p.Walls(),
		Rooms:       p.Rooms(),
		Objects:     p.Objects(),
		Buildings:   p.Buildings(),
		Pools:       p.Pools(),
		Foundations: p.Foundations(),
		Stairs:      p.Stairs(),
		Roofs:       p.Roofs(),
		Boundary:    p.Boundary(),
		Counters:    &c,
	}
}

// Restore rebuilds a plan from a snapshot layout. Records are trusted: they
// are inserted as-is and the saved counters win over anything derived from ids.
func Restore(id string, cfg Config, l Layout) (*Plan, error) {
	p := NewPlan(id, cfg)
	for _, w := range l.Walls {
		if w.ID == "" {
			return nil, fmt.Errorf("%w: snapshot wall without id", ErrInvalidGeometry)
		}
		p.walls.put(w.ID, w.clone())
	}
	for _, r := range l.Rooms {
		p.rooms.put(r.ID, cloneRoom(r))
	}
	for _, o := range l.Objects {
		p.objects.put(o.ID, o)
	}
	for _, b := range l.Buildings {
		p.buildings.put(b.ID, cloneBuilding(b))
	}
	for _, v := range l.Pools {
		p.pools.put(v.ID, clonePool(v))
	}
	for _, v := range l.Foundations {
		p.foundations.put(v.ID, cloneFoundation(v))
	}
	for _, v := range l.Stairs {
		p.stairs.put(v.ID, v)
	}
	for _, v := range l.Roofs {
		p.roofs.put(v.ID, v)
	}
	p.boundary = Boundary{Points: clonePoints(l.Boundary.Points), Setback: l.Boundary.Setback}
	if l.Counters != nil {
		p.counters = *l.Counters
	} else {
		p.recount()
	}
	return p, nil
}

// recount derives counters from the numeric suffix of every stored id.
func (p *Plan) recount() {
	c := &p.counters
	for _, w := range p.walls.list(nil) {
		bumpPast(prefixWall, w.ID, &c.NextWall)
		for _, o := range w.Openings {
			bumpPast(prefixOpening, o.ID, &c.NextOpening)
		}
	}
	for _, id := range p.rooms.order {
		bumpPast(prefixRoom, id, &c.NextRoom)
	}
	for _, id := range p.objects.order {
		bumpPast(prefixObject, id, &c.NextObject)
	}
	for _, id := range p.buildings.order {
		bumpPast(prefixObject, id, &c.NextObject)
	}
	for _, id := range p.pools.order {
		bumpPast(prefixPool, id, &c.NextPool)
	}
	for _, id := range p.foundations.order {
		bumpPast(prefixFoundation, id, &c.NextFoundation)
	}
	for _, id := range p.stairs.order {
		bumpPast(prefixStairs, id, &c.NextStairs)
	}
	for _, id := range p.roofs.order {
		bumpPast(prefixRoof, id, &c.NextRoof)
	}
}
