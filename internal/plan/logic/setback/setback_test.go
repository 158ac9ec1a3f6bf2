package setback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotcraft.ai/internal/plan/model"
)

func assertRing(t *testing.T, want, got []model.Vec2) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-9, "vertex %d x", i)
		assert.InDelta(t, want[i].Z, got[i].Z, 1e-9, "vertex %d z", i)
	}
}

func TestOffsetInward_Square(t *testing.T) {
	square := []model.Vec2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}}
	got, err := OffsetInward(square, 1)
	require.NoError(t, err)
	assertRing(t, []model.Vec2{{X: 1, Z: 1}, {X: 9, Z: 1}, {X: 9, Z: 9}, {X: 1, Z: 9}}, got)
}

func TestOffsetInward_WindingIndependent(t *testing.T) {
	cw := []model.Vec2{{X: 0, Z: 0}, {X: 0, Z: 10}, {X: 10, Z: 10}, {X: 10, Z: 0}, {X: 0, Z: 0}}
	got, err := OffsetInward(cw, 2)
	require.NoError(t, err)
	assertRing(t, []model.Vec2{{X: 2, Z: 2}, {X: 2, Z: 8}, {X: 8, Z: 8}, {X: 8, Z: 2}}, got)
}

func TestOffsetInward_ReflexCornerClamped(t *testing.T) {
	// L-shape; the reflex vertex at (5,5) moves outward of the notch by the
	// plain miter factor, sqrt(2).
	l := []model.Vec2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 5}, {X: 5, Z: 5}, {X: 5, Z: 10}, {X: 0, Z: 10}}
	got, err := OffsetInward(l, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4, got[3].X, 1e-9)
	assert.InDelta(t, 4, got[3].Z, 1e-9)

	// A spike so sharp that cos(θ/2) falls under the floor.
	spike := []model.Vec2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 0, Z: 0.5}}
	got, err = OffsetInward(spike, 0.1)
	require.NoError(t, err)
	assert.LessOrEqual(t, got[1].Dist(spike[1]), 0.1/MinCosHalf+1e-9)
}

func TestOffsetInward_DegenerateEdge(t *testing.T) {
	pts := []model.Vec2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}}
	got, err := OffsetInward(pts, 1)
	require.NoError(t, err)
	// Vertex 1 only has the bottom edge, vertex 2 only the right edge.
	assert.InDelta(t, 10, got[1].X, 1e-9)
	assert.InDelta(t, 1, got[1].Z, 1e-9)
	assert.InDelta(t, 9, got[2].X, 1e-9)
	assert.InDelta(t, 0, got[2].Z, 1e-9)
}

func TestOffsetInward_Rejections(t *testing.T) {
	_, err := OffsetInward([]model.Vec2{{X: 0}, {X: 1}}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)
	_, err = OffsetInward([]model.Vec2{{X: 0}, {X: 1}, {X: 2}}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)
	_, err = OffsetInward([]model.Vec2{{X: 0}, {X: 1}, {Z: 1}}, -1)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestBuildBand(t *testing.T) {
	square := []model.Vec2{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}}
	inner, band, err := Compute(square, 1)
	require.NoError(t, err)
	require.Len(t, inner, 4)
	require.Len(t, band.Vertices, 8)
	assert.Equal(t, [][2]int{{0, 4}, {1, 5}, {2, 6}, {3, 7}}, band.Pairs)
	require.Len(t, band.Triangles, 8)
	assert.Equal(t, [3]int{3, 0, 7}, band.Triangles[6])
	assert.Equal(t, [3]int{0, 4, 7}, band.Triangles[7])

	_, err = BuildBand(square, inner[:3])
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)
}
