package model

import "fmt"

// Config carries the construction defaults and limits applied by the plan.
type Config struct {
	WallHeight     float64
	WallThickness  float64
	FenceHeight    float64
	FenceThickness float64

	// EdgeClearance is the minimum distance between an opening and either wall end.
	EdgeClearance float64
	// MinSegment is the shortest accepted pool/foundation/room edge.
	MinSegment float64
	// MaxLength bounds typed and resized lengths.
	MaxLength float64
}

func DefaultConfig() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.WallHeight <= 0 {
		c.WallHeight = 2.7
	}
	if c.WallThickness <= 0 {
		c.WallThickness = 0.2
	}
	if c.FenceHeight <= 0 {
		c.FenceHeight = 1.2
	}
	if c.FenceThickness <= 0 {
		c.FenceThickness = 0.05
	}
	if c.EdgeClearance <= 0 {
		c.EdgeClearance = 0.3
	}
	if c.MinSegment <= 0 {
		c.MinSegment = 0.5
	}
	if c.MaxLength <= 0 {
		c.MaxLength = 100
	}
}

// table is an id-keyed arena that remembers insertion order so enumeration
// is deterministic.
type table[T any] struct {
	byID  map[string]T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{byID: map[string]T{}}
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.byID[id]; !ok {
		t.order = append(t.order, id)
	}
	t.byID[id] = v
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.byID[id]
	return v, ok
}

func (t *table[T]) del(id string) bool {
	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list(cp func(T) T) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		v := t.byID[id]
		if cp != nil {
			v = cp(v)
		}
		out = append(out, v)
	}
	return out
}

func (t *table[T]) clone(cp func(T) T) table[T] {
	c := table[T]{byID: make(map[string]T, len(t.byID)), order: append([]string(nil), t.order...)}
	for id, v := range t.byID {
		if cp != nil {
			v = cp(v)
		}
		c.byID[id] = v
	}
	return c
}

func (t *table[T]) len() int { return len(t.order) }

// Plan is the authoritative site model: every entity lives in a flat id-keyed
// table and entities refer to each other by id only.
type Plan struct {
	ID  string
	cfg Config

	walls       table[Wall]
	rooms       table[Room]
	objects     table[PlacedObject]
	buildings   table[PlacedBuilding]
	pools       table[Pool]
	foundations table[Foundation]
	stairs      table[Stairs]
	roofs       table[Roof]

	boundary Boundary
	counters Counters
}

func NewPlan(id string, cfg Config) *Plan {
	cfg.applyDefaults()
	return &Plan{
		ID:          id,
		cfg:         cfg,
		walls:       newTable[Wall](),
		rooms:       newTable[Room](),
		objects:     newTable[PlacedObject](),
		buildings:   newTable[PlacedBuilding](),
		pools:       newTable[Pool](),
		foundations: newTable[Foundation](),
		stairs:      newTable[Stairs](),
		roofs:       newTable[Roof](),
	}
}

func (p *Plan) Config() Config { return p.cfg }

func (p *Plan) Counters() Counters { return p.counters }

func (p *Plan) Walls() []Wall { return p.walls.list(Wall.clone) }

func (p *Plan) Wall(id string) (Wall, bool) {
	w, ok := p.walls.get(id)
	return w.clone(), ok
}

func (p *Plan) Rooms() []Room { return p.rooms.list(cloneRoom) }

func (p *Plan) Room(id string) (Room, bool) {
	r, ok := p.rooms.get(id)
	return cloneRoom(r), ok
}

func (p *Plan) Objects() []PlacedObject { return p.objects.list(nil) }

func (p *Plan) Object(id string) (PlacedObject, bool) { return p.objects.get(id) }

func (p *Plan) Buildings() []PlacedBuilding { return p.buildings.list(cloneBuilding) }

func (p *Plan) Pools() []Pool { return p.pools.list(clonePool) }

func (p *Plan) Foundations() []Foundation { return p.foundations.list(cloneFoundation) }

func (p *Plan) Stairs() []Stairs { return p.stairs.list(nil) }

func (p *Plan) Roofs() []Roof { return p.roofs.list(nil) }

func (p *Plan) Boundary() Boundary {
	b := p.boundary
	b.Points = clonePoints(b.Points)
	return b
}

// Footprints returns comparison objects followed by placed building
// footprints, the set the collision index works on.
func (p *Plan) Footprints() []PlacedObject {
	out := p.objects.list(nil)
	for _, b := range p.buildings.list(nil) {
		out = append(out, b.PlacedObject)
	}
	return out
}

type Stats struct {
	Walls       int `json:"walls"`
	Openings    int `json:"openings"`
	Rooms       int `json:"rooms"`
	Objects     int `json:"objects"`
	Buildings   int `json:"buildings"`
	Pools       int `json:"pools"`
	Foundations int `json:"foundations"`
	Stairs      int `json:"stairs"`
	Roofs       int `json:"roofs"`
}

func (p *Plan) Stats() Stats {
	s := Stats{
		Walls:       p.walls.len(),
		Rooms:       p.rooms.len(),
		Objects:     p.objects.len(),
		Buildings:   p.buildings.len(),
		Pools:       p.pools.len(),
		Foundations: p.foundations.len(),
		Stairs:      p.stairs.len(),
		Roofs:       p.roofs.len(),
	}
	for _, w := range p.walls.byID {
		s.Openings += len(w.Openings)
	}
	return s
}

// Clone returns a deep copy. Drags snapshot the plan this way and tests use
// it to compare before/after states.
func (p *Plan) Clone() *Plan {
	c := &Plan{
		ID:          p.ID,
		cfg:         p.cfg,
		walls:       p.walls.clone(Wall.clone),
		rooms:       p.rooms.clone(cloneRoom),
		objects:     p.objects.clone(nil),
		buildings:   p.buildings.clone(cloneBuilding),
		pools:       p.pools.clone(clonePool),
		foundations: p.foundations.clone(cloneFoundation),
		stairs:      p.stairs.clone(nil),
		roofs:       p.roofs.clone(nil),
		boundary:    p.Boundary(),
		counters:    p.counters,
	}
	return c
}

// Delete removes any entity by kind. Deleting a room also removes roofs that
// reference it.
func (p *Plan) Delete(kind Kind, id string) error {
	ok := false
	switch kind {
	case KindWall:
		ok = p.walls.del(id)
	case KindRoom:
		ok = p.rooms.del(id)
		if ok {
			for _, r := range p.roofs.list(nil) {
				if r.RoomID == id {
					p.roofs.del(r.ID)
				}
			}
		}
	case KindObject:
		ok = p.objects.del(id)
	case KindBuilding:
		ok = p.buildings.del(id)
	case KindPool:
		ok = p.pools.del(id)
	case KindFoundation:
		ok = p.foundations.del(id)
	case KindStairs:
		ok = p.stairs.del(id)
	case KindRoof:
		ok = p.roofs.del(id)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidGeometry, kind)
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}

func cloneRoom(r Room) Room {
	r.Points = clonePoints(r.Points)
	return r
}

func cloneBuilding(b PlacedBuilding) PlacedBuilding {
	if b.Walls != nil {
		ws := make([]Wall, len(b.Walls))
		for i, w := range b.Walls {
			ws[i] = w.clone()
		}
		b.Walls = ws
	}
	return b
}

func clonePool(p Pool) Pool {
	p.Points = clonePoints(p.Points)
	return p
}

func cloneFoundation(f Foundation) Foundation {
	f.Points = clonePoints(f.Points)
	return f
}
