// Package layout imports wall/room layouts produced outside the editor (the
// vision service, saved drafts) into a plan.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/schemas"
)

// DefaultWeldTolerance is the distance under which wall endpoints are merged.
const DefaultWeldTolerance = 0.05

var ErrInvalidDocument = errors.New("invalid layout document")

type Document struct {
	Walls    []model.Wall    `json:"walls"`
	Rooms    []model.Room    `json:"rooms,omitempty"`
	Boundary *model.Boundary `json:"boundary,omitempty"`
}

// Report summarizes what an import kept and what it dropped.
type Report struct {
	WallIDs         []string `json:"wall_ids"`
	RoomIDs         []string `json:"room_ids"`
	DroppedWalls    int      `json:"dropped_walls"`
	DroppedOpenings int      `json:"dropped_openings"`
	DroppedRooms    int      `json:"dropped_rooms"`
	Boundary        bool     `json:"boundary"`
}

type Importer struct {
	schema *jsonschema.Schema
	weld   float64
}

func NewImporter(weldTolerance float64) (*Importer, error) {
	s, err := schemas.Compile("layout.schema.json")
	if err != nil {
		return nil, fmt.Errorf("layout schema: %w", err)
	}
	if weldTolerance <= 0 {
		weldTolerance = DefaultWeldTolerance
	}
	return &Importer{schema: s, weld: weldTolerance}, nil
}

// Parse validates raw against the layout schema and decodes it.
func (im *Importer) Parse(raw []byte) (Document, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := im.schema.Validate(generic); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

// Import parses raw and applies it to p.
func (im *Importer) Import(p *model.Plan, raw []byte) (Report, error) {
	doc, err := im.Parse(raw)
	if err != nil {
		return Report{}, err
	}
	return im.Apply(p, doc), nil
}

// Apply welds the document's walls and inserts walls, rooms and boundary into
// p. Records the model rejects are counted and skipped; openings that do not
// fit their wall are dropped.
func (im *Importer) Apply(p *model.Plan, doc Document) Report {
	walls, dropped := Weld(doc.Walls, im.weld)
	rep := Report{DroppedWalls: dropped}
	for _, w := range walls {
		want := len(w.Openings)
		id, err := p.AddWall(w)
		if err != nil {
			rep.DroppedWalls++
			continue
		}
		rep.WallIDs = append(rep.WallIDs, id)
		if got, ok := p.Wall(id); ok {
			rep.DroppedOpenings += want - len(got.Openings)
		}
	}
	for _, r := range doc.Rooms {
		id, err := p.ImportRoom(r)
		if err != nil {
			rep.DroppedRooms++
			continue
		}
		rep.RoomIDs = append(rep.RoomIDs, id)
	}
	if doc.Boundary != nil {
		rep.Boundary = p.SetBoundary(doc.Boundary.Points, doc.Boundary.Setback) == nil
	}
	return rep
}
