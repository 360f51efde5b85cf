package render

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec2InDelta(t *testing.T, want, got mgl32.Vec2) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], 1e-4)
	assert.InDelta(t, want[1], got[1], 1e-4)
}

func TestMinimapProjectFollowsHeading(t *testing.T) {
	m := Minimap{Radius: 90, WorldRadius: 60}
	require.InDelta(t, 1.5, m.Scale(), 1e-6)
	player := mgl32.Vec3{10, 0, 10}

	ahead, clamped := m.Project(player, player.Add(mgl32.Vec3{0, 0, -10}), 0)
	assert.False(t, clamped)
	vec2InDelta(t, mgl32.Vec2{0, -15}, ahead)

	right, _ := m.Project(player, player.Add(mgl32.Vec3{10, 0, 0}), 0)
	vec2InDelta(t, mgl32.Vec2{15, 0}, right)

	// Facing -X, a point further along -X is straight up the map.
	turned, _ := m.Project(player, player.Add(mgl32.Vec3{-10, 0, 0}), math.Pi/2)
	vec2InDelta(t, mgl32.Vec2{0, -15}, turned)
}

func TestMinimapProjectClampsToDisk(t *testing.T) {
	m := Minimap{Radius: 90, WorldRadius: 60}
	offset, clamped := m.Project(mgl32.Vec3{}, mgl32.Vec3{500, 0, 0}, 0)
	assert.True(t, clamped)
	assert.InDelta(t, 90-minimapMarkerSize, offset.Len(), 1e-3)
	assert.Greater(t, offset[0], float32(0))
}

func TestMinimapBuild(t *testing.T) {
	m := Minimap{Radius: 90, WorldRadius: 60}
	buildings := []world.BuildingData{
		{Position: mgl32.Vec3{10, 0, 0}, Width: 6, Depth: 6, Height: 10},
		{Position: mgl32.Vec3{200, 0, 0}, Width: 6, Depth: 6, Height: 10},
	}
	monsters := []mgl32.Vec3{{5, 0, 5}, {400, 0, 0}}

	shapes, labels := m.Build(mgl32.Vec3{}, 0, buildings, monsters, 1280, 720)
	// background, one building, two monsters, player, ring
	require.Len(t, shapes, 6)
	assert.Equal(t, ShapeDisk, shapes[0].Kind)
	assert.Equal(t, ShapeRect, shapes[1].Kind)
	assert.Equal(t, ShapeRing, shapes[5].Kind)

	require.Len(t, labels, 4)
	c := m.Center(1280, 720)
	assert.Equal(t, "N", labels[0].Text)
	assert.InDelta(t, c[0], labels[0].Position[0], 1e-3)
	assert.Less(t, labels[0].Position[1], c[1])
	assert.Greater(t, labels[1].Position[0], c[0], "east is to the right when facing north")
}
