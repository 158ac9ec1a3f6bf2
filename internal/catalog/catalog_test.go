package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

func TestLoadShippedCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d := c.Objects.ByID["car"]; d.Width != 1.8 || d.Length != 4.5 {
		t.Fatalf("car=%+v", d)
	}
	if c.Objects.Palette[0] != "person" {
		t.Fatalf("palette order: %v", c.Objects.Palette)
	}
	shed := c.Buildings.ByID["shed"]
	if shed.Width != 3 || shed.Length != 2 {
		t.Fatalf("shed footprint from walls: %vx%v", shed.Width, shed.Length)
	}
	items := c.Items()
	if last := items[len(items)-1]; !last.Building || last.ID != "shed" {
		t.Fatalf("items=%+v", items)
	}
	if len(c.Digest()) != 64 {
		t.Fatalf("digest=%q", c.Digest())
	}
}

func TestDrop(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := model.NewPlan("P1", model.DefaultConfig())
	d := intent.NewDispatcher(p, nil)

	out, err := c.Drop("car", model.Vec2{X: 2, Z: 3}, 450)
	if err != nil {
		t.Fatalf("drop car: %v", err)
	}
	if o := out[0].(intent.AddObject).Object; o.RotationDeg != 90 || o.Width != 1.8 {
		t.Fatalf("car=%+v", o)
	}
	if res := d.Apply(out); len(res.Applied) != 1 || res.Checkpoints != 1 {
		t.Fatalf("apply car: %+v", res)
	}

	out, err = c.Drop("garage", model.Vec2{X: 20, Z: 0}, 0)
	if err != nil {
		t.Fatalf("drop garage: %v", err)
	}
	if res := d.Apply(out); len(res.Rejected) != 0 {
		t.Fatalf("apply garage: %+v", res.Rejected)
	}
	if len(p.Buildings()) != 1 || len(p.Buildings()[0].Walls) != 4 {
		t.Fatalf("buildings=%+v", p.Buildings())
	}

	if _, err := c.Drop("spaceship", model.Vec2{}, 0); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown item err=%v", err)
	}
}

func TestLoadRejectsBadDefs(t *testing.T) {
	cases := map[string]string{
		"empty id":  `[{"width": 1, "length": 1}]`,
		"no size":   `[{"id": "x"}]`,
		"duplicate": `[{"id": "x", "width": 1, "length": 1}, {"id": "x", "width": 2, "length": 2}]`,
		"not json":  `{`,
	}
	for name, body := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "objects.json"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	dir := t.TempDir()
	if _, err := Load(dir); !os.IsNotExist(err) {
		t.Fatalf("missing objects.json err=%v", err)
	}
}
