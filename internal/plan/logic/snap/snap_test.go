package snap

import (
	"math"
	"testing"

	"plotcraft.ai/internal/plan/model"
)

func near(a, b model.Vec2) bool { return a.Dist(b) < 1e-9 }

func lShape() []model.Wall {
	return []model.Wall{
		{ID: "W000001", Start: model.Vec2{X: 0, Z: 0}, End: model.Vec2{X: 5, Z: 0}},
		{ID: "W000002", Start: model.Vec2{X: 5, Z: 0}, End: model.Vec2{X: 5, Z: 5}},
	}
}

func TestResolve_SharedCornerWins(t *testing.T) {
	ctx := Context{Walls: lShape(), Grid: Grid{Enabled: true, Size: 1}, Modifier: true, Chain: []model.Vec2{{X: 2, Z: 2}}}
	for _, c := range []model.Vec2{{X: 5.3, Z: 0.3}, {X: 4.5, Z: -0.5}, {X: 5.79, Z: 0}, {X: 5, Z: 0.8}} {
		got := Resolve(c, ctx)
		if got.Kind != KindCorner || got.Point != (model.Vec2{X: 5, Z: 0}) {
			t.Fatalf("cursor %v: got %+v want corner (5,0)", c, got)
		}
	}
}

func TestResolve_CornerEnumerationOrder(t *testing.T) {
	walls := []model.Wall{
		{ID: "W000001", Start: model.Vec2{X: 0, Z: 0}, End: model.Vec2{X: 1, Z: 0}},
		{ID: "W000002", Start: model.Vec2{X: 1.4, Z: 0}, End: model.Vec2{X: 9, Z: 0}},
	}
	got := Resolve(model.Vec2{X: 1.3, Z: 0}, Context{Walls: walls})
	if got.Kind != KindCorner || got.Point != (model.Vec2{X: 1, Z: 0}) {
		t.Fatalf("got %+v, want first wall's end", got)
	}
}

func TestResolve_BuildingAndChainCorners(t *testing.T) {
	b := model.PlacedBuilding{
		PlacedObject: model.PlacedObject{Position: model.Vec2{X: 20, Z: 0}, RotationDeg: 90},
		Walls:        []model.Wall{{Start: model.Vec2{X: 2, Z: 0}, End: model.Vec2{X: 2, Z: 3}}},
	}
	ctx := Context{Buildings: []model.PlacedBuilding{b}, Chain: []model.Vec2{{X: 0, Z: 0}, {X: 4, Z: 0}}}

	got := Resolve(model.Vec2{X: 20.3, Z: 2.2}, ctx)
	if got.Kind != KindCorner || !near(got.Point, model.Vec2{X: 20, Z: 2}) {
		t.Fatalf("building corner: got %+v", got)
	}
	got = Resolve(model.Vec2{X: 0.4, Z: 0.4}, ctx)
	if got.Kind != KindCorner || got.Point != (model.Vec2{}) {
		t.Fatalf("chain corner: got %+v", got)
	}
}

func TestResolve_Edge(t *testing.T) {
	ctx := Context{Walls: lShape()}
	got := Resolve(model.Vec2{X: 2.5, Z: 0.4}, ctx)
	if got.Kind != KindEdge || !near(got.Point, model.Vec2{X: 2.5, Z: 0}) {
		t.Fatalf("got %+v", got)
	}
	got = Resolve(model.Vec2{X: 2.5, Z: 0.6}, ctx)
	if got.Kind != KindNone || got.Point != (model.Vec2{X: 2.5, Z: 0.6}) {
		t.Fatalf("outside edge threshold: got %+v", got)
	}
}

func TestEdge_ExcludesEndpoints(t *testing.T) {
	walls := []model.Wall{{ID: "W1", Start: model.Vec2{}, End: model.Vec2{X: 100}}}
	// t = 0.005 is inside the 1% margin at the start.
	if h, ok := Edge(model.Vec2{X: 0.5, Z: 0.2}, walls, 0.5, 0.01); ok {
		t.Fatalf("expected no edge match near the endpoint, got %+v", h)
	}
	h, ok := Edge(model.Vec2{X: 50, Z: -0.3}, walls, 0.5, 0.01)
	if !ok || h.WallID != "W1" || math.Abs(h.Along-50) > 1e-9 {
		t.Fatalf("edge hit: %+v ok=%v", h, ok)
	}
}

func TestResolve_Angle(t *testing.T) {
	prev := model.Vec2{X: 10, Z: 10}
	ctx := Context{Chain: []model.Vec2{prev}, Modifier: true, Grid: Grid{Enabled: true, Size: 1}}

	// Bearing ~40° snaps to 45° at the same distance.
	d := 4.0
	rad := 40 * math.Pi / 180
	cursor := model.Vec2{X: prev.X + d*math.Cos(rad), Z: prev.Z + d*math.Sin(rad)}
	got := Resolve(cursor, ctx)
	if got.Kind != KindAngle {
		t.Fatalf("kind=%s want angle", got.Kind)
	}
	if math.Abs(got.Point.Dist(prev)-d) > 1e-9 {
		t.Fatalf("distance not preserved: %v", got.Point.Dist(prev))
	}
	want := model.Vec2{X: prev.X + d*math.Sqrt2/2, Z: prev.Z + d*math.Sqrt2/2}
	if !near(got.Point, want) {
		t.Fatalf("got %v want %v", got.Point, want)
	}

	// Without the modifier the grid stage applies.
	ctx.Modifier = false
	got = Resolve(cursor, ctx)
	if got.Kind != KindGrid || got.Point != (model.Vec2{X: 13, Z: 13}) {
		t.Fatalf("grid: got %+v", got)
	}
}

func TestAngle_NearestDirection(t *testing.T) {
	prev := model.Vec2{}
	cases := []struct {
		name   string
		cursor model.Vec2
		want   model.Vec2
	}{
		{"20 degrees goes to 0", model.Vec2{X: math.Cos(20 * math.Pi / 180), Z: math.Sin(20 * math.Pi / 180)}, model.Vec2{X: 1}},
		{"just below 360 wraps to 0", model.Vec2{X: 2, Z: -0.1}, model.Vec2{X: math.Hypot(2, 0.1)}},
		{"straight down", model.Vec2{X: 0.1, Z: -3}, model.Vec2{Z: -math.Hypot(0.1, 3)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Angle(tc.cursor, prev, 45)
			if !ok || got.Dist(tc.want) > 1e-6 {
				t.Fatalf("got %v ok=%v want %v", got, ok, tc.want)
			}
		})
	}
	if _, ok := Angle(prev, prev, 45); ok {
		t.Fatalf("zero distance should not snap")
	}
}

func TestResolve_NoPrevNoAngle(t *testing.T) {
	got := Resolve(model.Vec2{X: 1.2, Z: 3.7}, Context{Modifier: true})
	if got.Kind != KindNone {
		t.Fatalf("got %+v", got)
	}
}

func TestGridRound(t *testing.T) {
	got := GridRound(model.Vec2{X: 1.26, Z: -0.74}, 0.5)
	if !near(got, model.Vec2{X: 1.5, Z: -0.5}) {
		t.Fatalf("got %v", got)
	}
}

func TestNearestWall(t *testing.T) {
	walls := lShape()
	h, ok := NearestWall(model.Vec2{X: 4.8, Z: 3}, walls, 0.5)
	if !ok || h.WallID != "W000002" || math.Abs(h.Along-3) > 1e-9 {
		t.Fatalf("got %+v ok=%v", h, ok)
	}
	if _, ok := NearestWall(model.Vec2{X: 2, Z: 2}, walls, 0.5); ok {
		t.Fatalf("expected no wall within 0.5")
	}
}
