package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/plan/tools"
)

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	d := Defaults()
	if !reflect.DeepEqual(d.Settings(), tools.DefaultSettings()) {
		t.Fatalf("settings drifted:\n%+v\n%+v", d.Settings(), tools.DefaultSettings())
	}
	if d.ModelConfig() != model.DefaultConfig() {
		t.Fatalf("model config drifted: %+v", d.ModelConfig())
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverridesAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	raw := "snap:\n  corner: 1.2\ncapture:\n  max_length: 50\nroof:\n  style: hip\n"
	if err := os.WriteFile(p, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Snap.Corner != 1.2 || got.Snap.Edge != 0.5 {
		t.Fatalf("snap=%+v", got.Snap)
	}
	if got.Settings().MaxTypedLength != 50 || got.ModelConfig().MaxLength != 50 {
		t.Fatalf("max length not propagated")
	}
	if got.Roof.Style != "hip" || got.Roof.PitchDeg != 30 {
		t.Fatalf("roof=%+v", got.Roof)
	}
	if got.Digest() == Defaults().Digest() {
		t.Fatalf("digest should change with the thresholds")
	}
	if Defaults().Digest() != Defaults().Digest() {
		t.Fatalf("digest not stable")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax":     "snap: [",
		"angle step": "snap:\n  angle_step_deg: 7\n",
		"pitch":      "roof:\n  pitch_deg: 95\n",
	}
	for name, raw := range cases {
		p := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(p, []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(p); err == nil || !strings.HasPrefix(err.Error(), "tuning.yaml: ") {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
