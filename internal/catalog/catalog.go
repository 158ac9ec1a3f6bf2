// Package catalog loads the comparison objects and prefabricated buildings a
// user can drop onto a site.
package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

var ErrUnknownItem = errors.New("unknown catalog item")

type Catalog struct {
	Objects   ObjectCatalog
	Buildings BuildingCatalog
}

// ObjectDef is a scaled comparison item such as a car or a person.
type ObjectDef struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

type ObjectCatalog struct {
	Palette []string
	ByID    map[string]ObjectDef
	Digest  string
}

// BuildingDef is a prefabricated building. Walls are in building-local
// coordinates around the origin; an unset footprint is taken from their
// bounds.
type BuildingDef struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Width  float64      `json:"width"`
	Length float64      `json:"length"`
	Walls  []model.Wall `json:"walls"`
}

type BuildingCatalog struct {
	ByID   map[string]BuildingDef
	Digest string
}

// Item is the listing form of either kind.
type Item struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Building bool    `json:"building,omitempty"`
	Width    float64 `json:"width"`
	Length   float64 `json:"length"`
}

// Load reads objects.json and the optional buildings/ directory under dir.
func Load(dir string) (*Catalog, error) {
	var c Catalog
	if err := loadObjects(filepath.Join(dir, "objects.json"), &c.Objects); err != nil {
		return nil, err
	}
	if err := loadBuildings(filepath.Join(dir, "buildings"), &c.Buildings); err != nil {
		return nil, err
	}
	for id := range c.Buildings.ByID {
		if _, dup := c.Objects.ByID[id]; dup {
			return nil, fmt.Errorf("catalog: %s is both an object and a building", id)
		}
	}
	return &c, nil
}

func (c *Catalog) Digest() string {
	return sha256Hex([]byte(c.Objects.Digest + ":" + c.Buildings.Digest))
}

// Items lists objects in palette order, then buildings by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.Objects.ByID)+len(c.Buildings.ByID))
	for _, id := range c.Objects.Palette {
		d := c.Objects.ByID[id]
		out = append(out, Item{ID: d.ID, Label: d.Label, Width: d.Width, Length: d.Length})
	}
	ids := make([]string, 0, len(c.Buildings.ByID))
	for id := range c.Buildings.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := c.Buildings.ByID[id]
		out = append(out, Item{ID: d.ID, Label: d.Label, Building: true, Width: d.Width, Length: d.Length})
	}
	return out
}

// Drop returns the intents that place item id at pos, followed by a
// checkpoint.
func (c *Catalog) Drop(id string, pos model.Vec2, rotationDeg float64) ([]intent.Intent, error) {
	fp := model.PlacedObject{Kind: id, Position: pos, RotationDeg: model.NormalizeDegrees(rotationDeg)}
	if d, ok := c.Objects.ByID[id]; ok {
		fp.Width, fp.Length = d.Width, d.Length
		return []intent.Intent{intent.AddObject{Object: fp}, intent.Checkpoint{Reason: "drop"}}, nil
	}
	if d, ok := c.Buildings.ByID[id]; ok {
		fp.Width, fp.Length = d.Width, d.Length
		walls := make([]model.Wall, len(d.Walls))
		copy(walls, d.Walls)
		return []intent.Intent{
			intent.AddBuilding{Building: model.PlacedBuilding{PlacedObject: fp, Walls: walls}},
			intent.Checkpoint{Reason: "drop"},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadObjects(path string, out *ObjectCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ObjectDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("objects.json: %w", err)
	}
	out.ByID = map[string]ObjectDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("objects.json: empty id")
		}
		if !(d.Width > 0) || !(d.Length > 0) {
			return fmt.Errorf("objects.json: %s: footprint %.2fx%.2f", d.ID, d.Width, d.Length)
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("objects.json: duplicate id %s", d.ID)
		}
		if d.Label == "" {
			d.Label = d.ID
		}
		out.ByID[d.ID] = d
		out.Palette = append(out.Palette, d.ID)
	}
	return nil
}

func loadBuildings(dir string, out *BuildingCatalog) error {
	out.ByID = map[string]BuildingDef{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var concat bytes.Buffer
	for _, p := range files {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		concat.Write(b)
		concat.WriteByte('\n')

		var d BuildingDef
		if err := json.Unmarshal(b, &d); err != nil {
			return fmt.Errorf("building %s: %w", filepath.Base(p), err)
		}
		if d.ID == "" {
			return fmt.Errorf("building %s: missing id", filepath.Base(p))
		}
		if len(d.Walls) == 0 {
			return fmt.Errorf("building %s: no walls", d.ID)
		}
		if !(d.Width > 0) || !(d.Length > 0) {
			d.Width, d.Length = wallBounds(d.Walls)
		}
		if d.Label == "" {
			d.Label = d.ID
		}
		out.ByID[d.ID] = d
	}
	out.Digest = sha256Hex(concat.Bytes())
	return nil
}

func wallBounds(walls []model.Wall) (width, length float64) {
	mp := make(orb.MultiPoint, 0, len(walls)*2)
	for _, w := range walls {
		mp = append(mp, w.Start.Orb(), w.End.Orb())
	}
	b := mp.Bound()
	return b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]
}
