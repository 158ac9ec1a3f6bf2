package model

type OpeningType string

const (
	OpeningDoor   OpeningType = "door"
	OpeningWindow OpeningType = "window"
)

type Opening struct {
	ID         string      `json:"id"`
	Type       OpeningType `json:"type"`
	Position   float64     `json:"position"` // distance along the wall from its start
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	SillHeight float64     `json:"sill_height"`
	DoorType   string      `json:"door_type,omitempty"`
}

// Span returns the interval the opening occupies along its wall.
func (o Opening) Span() (lo, hi float64) {
	return o.Position - o.Width/2, o.Position + o.Width/2
}

type Wall struct {
	ID         string    `json:"id"`
	Start      Vec2      `json:"start"`
	End        Vec2      `json:"end"`
	Height     float64   `json:"height"`
	Thickness  float64   `json:"thickness"`
	IsExterior bool      `json:"is_exterior"`
	Openings   []Opening `json:"openings"`
	FloorLevel int       `json:"floor_level"`
	FenceType  string    `json:"fence_type,omitempty"`
	Color      string    `json:"color,omitempty"`
}

func (w Wall) Length() float64 { return w.Start.Dist(w.End) }

// IsFence reports whether the wall was drawn with the fence tool.
func (w Wall) IsFence() bool { return w.FenceType != "" }

func (w Wall) clone() Wall {
	c := w
	if w.Openings != nil {
		c.Openings = make([]Opening, len(w.Openings))
		copy(c.Openings, w.Openings)
	}
	return c
}

type RoomStyle struct {
	FloorColor string `json:"floor_color,omitempty"`
	WallColor  string `json:"wall_color,omitempty"`
}

type Room struct {
	ID         string    `json:"id"`
	Points     []Vec2    `json:"points"`
	Area       float64   `json:"area"`
	Center     Vec2      `json:"center"`
	FloorLevel int       `json:"floor_level"`
	Label      string    `json:"label,omitempty"`
	Style      RoomStyle `json:"style"`
}

// PlacedObject is a comparison item (car, person, tree) or the footprint of
// a placed building. Position is the footprint centre.
type PlacedObject struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Position    Vec2    `json:"position"`
	RotationDeg float64 `json:"rotation_deg"`
	Width       float64 `json:"width"`
	Length      float64 `json:"length"`
}

// PlacedBuilding is a prefabricated building dropped onto the site. Its walls
// are stored in building-local coordinates around Position.
type PlacedBuilding struct {
	PlacedObject
	Walls []Wall `json:"walls"`
}

// WorldEndpoints returns the start and end of every building wall rotated and
// translated into site coordinates, in wall order.
func (b PlacedBuilding) WorldEndpoints() []Vec2 {
	out := make([]Vec2, 0, len(b.Walls)*2)
	for _, w := range b.Walls {
		out = append(out,
			w.Start.Rotate(b.RotationDeg).Add(b.Position),
			w.End.Rotate(b.RotationDeg).Add(b.Position),
		)
	}
	return out
}

type Pool struct {
	ID     string  `json:"id"`
	Points []Vec2  `json:"points"`
	Depth  float64 `json:"depth"`
}

type Foundation struct {
	ID     string  `json:"id"`
	Points []Vec2  `json:"points"`
	Height float64 `json:"height"`
}

type Stairs struct {
	ID          string  `json:"id"`
	Position    Vec2    `json:"position"`
	Width       float64 `json:"width"`
	Length      float64 `json:"length"`
	RotationDeg float64 `json:"rotation_deg"`
	TopHeight   float64 `json:"top_height"`
}

type Roof struct {
	ID       string  `json:"id"`
	RoomID   string  `json:"room_id"`
	Style    string  `json:"style"`
	PitchDeg float64 `json:"pitch_deg"`
}

type Boundary struct {
	Points  []Vec2  `json:"points"`
	Setback float64 `json:"setback"`
}

// Kind names an entity collection in the plan.
type Kind string

const (
	KindWall       Kind = "wall"
	KindRoom       Kind = "room"
	KindObject     Kind = "object"
	KindBuilding   Kind = "building"
	KindPool       Kind = "pool"
	KindFoundation Kind = "foundation"
	KindStairs     Kind = "stairs"
	KindRoof       Kind = "roof"
)
