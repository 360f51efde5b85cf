package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrustum() Frustum {
	proj := Perspective(Radians(60), 16.0/9.0, 0.1, 100)
	view := LookAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, Up)
	return ExtractFrustum(proj.Mul4(view))
}

func TestExtractFrustumPlanesAreUnitLength(t *testing.T) {
	f := testFrustum()
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestExtractFrustumInsidePointsAreNonNegative(t *testing.T) {
	f := testFrustum()
	inside := []mgl32.Vec3{
		{0, 0, -1},
		{0, 0, -50},
		{1, 1, -10},
		{-2, 0.5, -99},
	}
	for _, pt := range inside {
		for i, p := range f.Planes {
			assert.GreaterOrEqual(t, p.SignedDistance(pt), float32(0), "point %v plane %d", pt, i)
		}
		assert.True(t, f.ContainsPoint(pt))
	}
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, 5}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -150}))
}

func TestExtractFrustumNearPlaneMatchesZeroDepth(t *testing.T) {
	f := testFrustum()
	near := f.Planes[FrustumNear]
	assert.InDelta(t, 0, near.SignedDistance(mgl32.Vec3{0, 0, -0.1}), 1e-4)
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, -0.11}))
	// Between half the near distance and the near plane: clipped by the rasterizer.
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -0.07}))
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"ahead", AABBFromCenter(mgl32.Vec3{0, 0, -20}, mgl32.Vec3{1, 1, 1}), true},
		{"behind", AABBFromCenter(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{1, 1, 1}), false},
		{"far left", AABBFromCenter(mgl32.Vec3{-200, 0, -20}, mgl32.Vec3{1, 1, 1}), false},
		{"straddles near plane", AABBFromCenter(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), true},
		{"beyond far", AABBFromCenter(mgl32.Vec3{0, 0, -200}, mgl32.Vec3{1, 1, 1}), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, f.IntersectsAABB(tc.box))
		})
	}
}
