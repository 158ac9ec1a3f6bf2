package tools

import (
	"plotcraft.ai/internal/plan/logic/collide"
	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
)

type Tool string

const (
	ToolSelect      Tool = "select"
	ToolWall        Tool = "wall"
	ToolFence       Tool = "fence"
	ToolRectRoom    Tool = "rect_room"
	ToolPolygonRoom Tool = "polygon_room"
	ToolPool        Tool = "pool"
	ToolFoundation  Tool = "foundation"
	ToolStairs      Tool = "stairs"
	ToolRoof        Tool = "roof"
	ToolDoor        Tool = "door"
	ToolWindow      Tool = "window"
	ToolDelete      Tool = "delete"
)

var allTools = []Tool{
	ToolSelect, ToolWall, ToolFence, ToolRectRoom, ToolPolygonRoom, ToolPool,
	ToolFoundation, ToolStairs, ToolRoof, ToolDoor, ToolWindow, ToolDelete,
}

// AllTools lists every tool in toolbar order.
func AllTools() []Tool { return append([]Tool(nil), allTools...) }

func ParseTool(s string) (Tool, bool) {
	for _, t := range allTools {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Params configure the generic point-collecting machine for one tool.
type Params struct {
	// CloseDistance is how near points[0] a confirmed point must land to
	// close the loop.
	CloseDistance float64
	// MinClosePoints is the chain length required before a close is allowed.
	MinClosePoints int
	// EscapeCommits makes Escape commit a partial chain of 2+ points as an
	// open run instead of discarding it.
	EscapeCommits bool
	// MinSegment drops confirmed points closer than this to the previous
	// one. Zero only drops exact repeats.
	MinSegment float64
}

// collects reports whether the tool uses the point-collecting machine.
func (t Tool) collects() bool {
	switch t {
	case ToolWall, ToolFence, ToolPolygonRoom, ToolPool, ToolFoundation:
		return true
	}
	return false
}

func (t Tool) openRun() bool { return t == ToolWall || t == ToolFence }

func (t Tool) areaTool() bool {
	return t == ToolPolygonRoom || t == ToolPool || t == ToolFoundation
}

type OpeningDefaults struct {
	Width      float64
	Height     float64
	SillHeight float64
	DoorType   string
}

// Settings carries every threshold and default the reducer uses.
type Settings struct {
	Snap snap.Thresholds

	CloseDistance  float64
	MinClosePoints int
	MinSegment     float64
	MaxTypedLength float64

	StairsSearchRadius float64
	StairsDefaultTop   float64
	StairsWidth        float64
	StairsLength       float64

	RoofStyle    string
	RoofPitchDeg float64

	Door   OpeningDefaults
	Window OpeningDefaults
	// OpeningReach is how far from a wall a door/window click may land.
	OpeningReach float64

	DragEpsilon float64
	ObjectSnap  float64
	// WallPick is the minimum hit distance for walls in select/delete.
	WallPick float64
}

func DefaultSettings() Settings {
	return Settings{
		Snap:               snap.DefaultThresholds(),
		CloseDistance:      0.5,
		MinClosePoints:     3,
		MinSegment:         0.5,
		MaxTypedLength:     100,
		StairsSearchRadius: 3,
		StairsDefaultTop:   1,
		StairsWidth:        1,
		StairsLength:       3,
		RoofStyle:          "gable",
		RoofPitchDeg:       30,
		Door:               OpeningDefaults{Width: 0.9, Height: 2.1, DoorType: "single"},
		Window:             OpeningDefaults{Width: 1.2, Height: 1.2, SillHeight: 0.9},
		OpeningReach:       0.5,
		DragEpsilon:        1e-3,
		ObjectSnap:         collide.DefaultSnapThreshold,
		WallPick:           0.25,
	}
}

// ParamsFor returns the machine parameters of a point-collecting tool.
func (s Settings) ParamsFor(t Tool) Params {
	p := Params{CloseDistance: s.CloseDistance, MinClosePoints: s.MinClosePoints}
	if t.openRun() {
		p.EscapeCommits = true
		return p
	}
	p.MinSegment = s.MinSegment
	return p
}

// View is the read-only plan surface the reducer inspects. *model.Plan
// satisfies it.
type View interface {
	Walls() []model.Wall
	Buildings() []model.PlacedBuilding
	Rooms() []model.Room
	Pools() []model.Pool
	Foundations() []model.Foundation
	Stairs() []model.Stairs
	Footprints() []model.PlacedObject
	Boundary() model.Boundary
}
