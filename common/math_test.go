package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertQuat(t *testing.T, want, got mgl32.Quat) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, 1e-5)
	for i := range want.V {
		assert.InDelta(t, want.V[i], got.V[i], 1e-5, "want %v got %v", want, got)
	}
}

func TestSlerpTakesShortestArc(t *testing.T) {
	a := mgl32.QuatIdent()
	b := YawQuat(Radians(90))
	negB := b.Scale(-1)

	mid := Slerp(a, b, 0.5)
	midNeg := Slerp(a, negB, 0.5)

	// q and -q encode the same rotation, so both paths must land on the 45 degree rotation.
	want := YawQuat(Radians(45)).Mat4()
	gotMid, gotNeg := mid.Mat4(), midNeg.Mat4()
	for i := range want {
		assert.InDelta(t, want[i], gotMid[i], 1e-5)
		assert.InDelta(t, want[i], gotNeg[i], 1e-5)
	}
}

func TestSlerpEndpoints(t *testing.T) {
	a := YawQuat(0.3)
	b := YawQuat(1.7)
	assertQuat(t, a, Slerp(a, b, 0))
	assertQuat(t, b, Slerp(a, b, 1))
}

func TestTRSOrder(t *testing.T) {
	m := TRS(mgl32.Vec3{1, 2, 3}, YawQuat(Radians(90)), mgl32.Vec3{2, 2, 2})
	// Scale first, then rotate +X onto -Z, then translate.
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 1, p[2], 1e-5)
}

func TestYawForward(t *testing.T) {
	f := YawForward(0)
	assert.InDelta(t, 0, f[0], 1e-6)
	assert.InDelta(t, -1, f[2], 1e-6)

	f = YawForward(math.Pi / 2)
	assert.InDelta(t, -1, f[0], 1e-6)
	assert.InDelta(t, 0, f[2], 1e-6)
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(Radians(60), 1, 0.5, 50)
	near := p.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1})
	far := p.Mul4x1(mgl32.Vec4{0, 0, -50, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1, far[2]/far[3], 1e-5)
}

func TestOrthoDepthRange(t *testing.T) {
	o := Ortho(-10, 10, -10, 10, 1, 101)
	assert.InDelta(t, 0, o.Mul4x1(mgl32.Vec4{0, 0, -1, 1})[2], 1e-5)
	assert.InDelta(t, 1, o.Mul4x1(mgl32.Vec4{0, 0, -101, 1})[2], 1e-5)
	edge := o.Mul4x1(mgl32.Vec4{10, -10, -50, 1})
	assert.InDelta(t, 1, edge[0], 1e-5)
	assert.InDelta(t, -1, edge[1], 1e-5)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0, WrapAngle(2*math.Pi), 1e-5)
	assert.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-5)
	assert.InDelta(t, math.Pi/2, WrapAngle(-3*math.Pi/2), 1e-5)
}

func TestCoalesce(t *testing.T) {
	require.Equal(t, "b", Coalesce("", "b", "c"))
	require.Equal(t, 0, Coalesce[int]())
}
