package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/plan/tools"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Snap     Snap     `yaml:"snap"`
	Capture  Capture  `yaml:"capture"`
	Walls    Walls    `yaml:"walls"`
	Openings Openings `yaml:"openings"`
	Stairs   Stairs   `yaml:"stairs"`
	Roof     Roof     `yaml:"roof"`
	Select   Select   `yaml:"select"`

	WeldTolerance      float64 `yaml:"weld_tolerance"`
	SnapshotEveryCheck int     `yaml:"snapshot_every_checkpoints"`
}

type Snap struct {
	Corner       float64 `yaml:"corner"`
	Edge         float64 `yaml:"edge"`
	EdgeMargin   float64 `yaml:"edge_margin"`
	AngleStepDeg float64 `yaml:"angle_step_deg"`
}

type Capture struct {
	CloseDistance  float64 `yaml:"close_distance"`
	MinClosePoints int     `yaml:"min_close_points"`
	MinSegment     float64 `yaml:"min_segment"`
	MaxLength      float64 `yaml:"max_length"`
}

type Walls struct {
	Height         float64 `yaml:"height"`
	Thickness      float64 `yaml:"thickness"`
	FenceHeight    float64 `yaml:"fence_height"`
	FenceThickness float64 `yaml:"fence_thickness"`
}

type Openings struct {
	EdgeClearance float64 `yaml:"edge_clearance"`
	Reach         float64 `yaml:"reach"`
	DoorWidth     float64 `yaml:"door_width"`
	DoorHeight    float64 `yaml:"door_height"`
	DoorType      string  `yaml:"door_type"`
	WindowWidth   float64 `yaml:"window_width"`
	WindowHeight  float64 `yaml:"window_height"`
	WindowSill    float64 `yaml:"window_sill"`
}

type Stairs struct {
	SearchRadius float64 `yaml:"search_radius"`
	DefaultTop   float64 `yaml:"default_top"`
	Width        float64 `yaml:"width"`
	Length       float64 `yaml:"length"`
}

type Roof struct {
	Style    string  `yaml:"style"`
	PitchDeg float64 `yaml:"pitch_deg"`
}

type Select struct {
	DragEpsilon float64 `yaml:"drag_epsilon"`
	ObjectSnap  float64 `yaml:"object_snap"`
	WallPick    float64 `yaml:"wall_pick"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	var t Tuning
	t.applyDefaults()
	return t
}

func (t *Tuning) applyDefaults() {
	s := tools.DefaultSettings()
	c := model.DefaultConfig()
	setStr(&t.ProtocolVersion, "1.0")

	setF(&t.Snap.Corner, s.Snap.Corner)
	setF(&t.Snap.Edge, s.Snap.Edge)
	setF(&t.Snap.EdgeMargin, s.Snap.EdgeMargin)
	setF(&t.Snap.AngleStepDeg, s.Snap.AngleStepDeg)

	setF(&t.Capture.CloseDistance, s.CloseDistance)
	if t.Capture.MinClosePoints <= 0 {
		t.Capture.MinClosePoints = s.MinClosePoints
	}
	setF(&t.Capture.MinSegment, s.MinSegment)
	setF(&t.Capture.MaxLength, s.MaxTypedLength)

	setF(&t.Walls.Height, c.WallHeight)
	setF(&t.Walls.Thickness, c.WallThickness)
	setF(&t.Walls.FenceHeight, c.FenceHeight)
	setF(&t.Walls.FenceThickness, c.FenceThickness)

	setF(&t.Openings.EdgeClearance, c.EdgeClearance)
	setF(&t.Openings.Reach, s.OpeningReach)
	setF(&t.Openings.DoorWidth, s.Door.Width)
	setF(&t.Openings.DoorHeight, s.Door.Height)
	setStr(&t.Openings.DoorType, s.Door.DoorType)
	setF(&t.Openings.WindowWidth, s.Window.Width)
	setF(&t.Openings.WindowHeight, s.Window.Height)
	setF(&t.Openings.WindowSill, s.Window.SillHeight)

	setF(&t.Stairs.SearchRadius, s.StairsSearchRadius)
	setF(&t.Stairs.DefaultTop, s.StairsDefaultTop)
	setF(&t.Stairs.Width, s.StairsWidth)
	setF(&t.Stairs.Length, s.StairsLength)

	setStr(&t.Roof.Style, s.RoofStyle)
	setF(&t.Roof.PitchDeg, s.RoofPitchDeg)

	setF(&t.Select.DragEpsilon, s.DragEpsilon)
	setF(&t.Select.ObjectSnap, s.ObjectSnap)
	setF(&t.Select.WallPick, s.WallPick)

	setF(&t.WeldTolerance, 0.05)
	if t.SnapshotEveryCheck <= 0 {
		t.SnapshotEveryCheck = 20
	}
}

func setF(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

func setStr(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

// Validate rejects combinations the editor cannot honour.
func (t Tuning) Validate() error {
	if t.Snap.EdgeMargin >= 0.5 {
		return fmt.Errorf("snap.edge_margin must be < 0.5, got %v", t.Snap.EdgeMargin)
	}
	if t.Capture.MinClosePoints < 3 {
		return fmt.Errorf("capture.min_close_points must be >= 3, got %d", t.Capture.MinClosePoints)
	}
	if t.Roof.PitchDeg >= 90 {
		return fmt.Errorf("roof.pitch_deg must be < 90, got %v", t.Roof.PitchDeg)
	}
	if 360/t.Snap.AngleStepDeg != float64(int(360/t.Snap.AngleStepDeg)) {
		return fmt.Errorf("snap.angle_step_deg must divide 360, got %v", t.Snap.AngleStepDeg)
	}
	return nil
}

// Settings returns the reducer thresholds.
func (t Tuning) Settings() tools.Settings {
	return tools.Settings{
		Snap: snap.Thresholds{
			Corner:       t.Snap.Corner,
			Edge:         t.Snap.Edge,
			EdgeMargin:   t.Snap.EdgeMargin,
			AngleStepDeg: t.Snap.AngleStepDeg,
		},
		CloseDistance:      t.Capture.CloseDistance,
		MinClosePoints:     t.Capture.MinClosePoints,
		MinSegment:         t.Capture.MinSegment,
		MaxTypedLength:     t.Capture.MaxLength,
		StairsSearchRadius: t.Stairs.SearchRadius,
		StairsDefaultTop:   t.Stairs.DefaultTop,
		StairsWidth:        t.Stairs.Width,
		StairsLength:       t.Stairs.Length,
		RoofStyle:          t.Roof.Style,
		RoofPitchDeg:       t.Roof.PitchDeg,
		Door: tools.OpeningDefaults{
			Width:    t.Openings.DoorWidth,
			Height:   t.Openings.DoorHeight,
			DoorType: t.Openings.DoorType,
		},
		Window: tools.OpeningDefaults{
			Width:      t.Openings.WindowWidth,
			Height:     t.Openings.WindowHeight,
			SillHeight: t.Openings.WindowSill,
		},
		OpeningReach: t.Openings.Reach,
		DragEpsilon:  t.Select.DragEpsilon,
		ObjectSnap:   t.Select.ObjectSnap,
		WallPick:     t.Select.WallPick,
	}
}

// ModelConfig returns the plan construction defaults.
func (t Tuning) ModelConfig() model.Config {
	return model.Config{
		WallHeight:     t.Walls.Height,
		WallThickness:  t.Walls.Thickness,
		FenceHeight:    t.Walls.FenceHeight,
		FenceThickness: t.Walls.FenceThickness,
		EdgeClearance:  t.Openings.EdgeClearance,
		MinSegment:     t.Capture.MinSegment,
		MaxLength:      t.Capture.MaxLength,
	}
}

// Digest fingerprints the effective tuning so clients can tell when two
// sessions run with different thresholds.
func (t Tuning) Digest() string {
	b, err := yaml.Marshal(t)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
