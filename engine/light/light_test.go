package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDirectionIsNormalized(t *testing.T) {
	l := NewLight(WithDirection(mgl32.Vec3{0.5, 1, 0.3}))
	assert.InDelta(t, 1, l.Direction().Len(), 1e-6)

	before := l.Direction()
	l.SetDirection(mgl32.Vec3{})
	assert.Equal(t, before, l.Direction())
}

func TestLightSpaceCentersFocus(t *testing.T) {
	s := ShadowCamera{Distance: 50, OrthoSize: 40, Near: 1, Far: 150, Resolution: 2048}
	dir := mgl32.Vec3{0.5, 1, 0.3}.Normalize()
	focus := mgl32.Vec3{12, 0, -7}

	clip := s.LightSpace(dir, focus).Mul4x1(focus.Vec4(1))
	assert.InDelta(t, 0, clip[0], 1e-4)
	assert.InDelta(t, 0, clip[1], 1e-4)
	// The focus sits Distance along the view axis: depth (50-1)/(150-1).
	assert.InDelta(t, 49.0/149.0, clip[2], 1e-4)

	// A point OrthoSize to the side along the light-space x axis lands on the clip edge.
	right := s.View(dir, focus).Inv().Mul4x1(mgl32.Vec4{40, 0, -50, 1}).Vec3()
	edge := s.LightSpace(dir, focus).Mul4x1(right.Vec4(1))
	assert.InDelta(t, 1, edge[0], 1e-3)
}

func TestGPULightLayout(t *testing.T) {
	l := NewLight(WithDirection(mgl32.Vec3{0, 1, 0}), WithIntensity(2))
	g := ToGPULight(l, DefaultShadowCamera(), mgl32.Ident4(), mgl32.Vec3{0.5, 0.5, 0.6}, 0.02)

	assert.Equal(t, 144, g.Size())
	assert.Len(t, g.Marshal(), 144)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 2}, g.Direction)
	assert.Equal(t, float32(0.02), g.Fog[3])
	assert.Equal(t, float32(1), g.Shadow[3])
	assert.InDelta(t, 2*40.0/2048*2, g.Shadow[1], 1e-7)
}
