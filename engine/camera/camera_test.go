package camera

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "want %v got %v", want, got)
	}
}

func TestCameraMatrices(t *testing.T) {
	c := NewCamera(WithAspect(2), WithPose(mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 2, 0}))
	assertVec(t, mgl32.Vec3{0, 2, 5}, c.Position())

	vp := c.ViewProjectionMatrix()
	assert.True(t, c.ProjectionMatrix().Mul4(c.ViewMatrix()).ApproxEqual(vp))

	assert.True(t, c.Frustum().ContainsPoint(mgl32.Vec3{0, 2, 0}))
	assert.False(t, c.Frustum().ContainsPoint(mgl32.Vec3{0, 2, 10}))

	u := c.Uniform()
	assert.Equal(t, 208, u.Size())
	assert.Equal(t, mgl32.Vec4{0, 2, 5, 1}, u.Position)
}

func TestCameraIgnoresDegeneratePose(t *testing.T) {
	c := NewCamera()
	c.SetPose(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})
	for _, v := range c.ViewMatrix() {
		assert.False(t, v != v, "view matrix has NaN")
	}
}

func TestFollowPose(t *testing.T) {
	f := &ecs.FollowTarget{Distance: 4, Height: 1.8, ShoulderOffset: 0.6, LookAhead: 3}
	pos, lookAt := FollowPose(mgl32.Vec3{}, f)
	assertVec(t, mgl32.Vec3{0.6, 1.8, 4}, pos)
	assertVec(t, mgl32.Vec3{0, 1, -3}, lookAt)

	f.Yaw = common.Radians(90)
	pos, _ = FollowPose(mgl32.Vec3{}, f)
	// Facing -X: the camera sits behind on +X with the shoulder toward -Z.
	assertVec(t, mgl32.Vec3{4, 1.8, -0.6}, pos)
}

func TestFollowPitchLowersLookAt(t *testing.T) {
	f := &ecs.FollowTarget{Distance: 4, LookAhead: 3, Pitch: common.Radians(45)}
	_, lookAt := FollowPose(mgl32.Vec3{}, f)
	assert.InDelta(t, 0.7, lookAt[1], 1e-4)
}

func TestOrbitClampsPitch(t *testing.T) {
	f := &ecs.FollowTarget{Sensitivity: 0.15}
	Orbit(f, 100, 0)
	assert.InDelta(t, -common.Radians(15), f.Yaw, 1e-5)
	Orbit(f, 0, 100000)
	assert.InDelta(t, MaxPitch, f.Pitch, 1e-5)
	Orbit(f, 0, -100000)
	assert.InDelta(t, MinPitch, f.Pitch, 1e-5)
}

func TestResolveCollision(t *testing.T) {
	tree := spatial.Build([]common.AABB{
		common.AABBFromCenter(mgl32.Vec3{0, 1, 5}, mgl32.Vec3{1, 1, 1}),
	})
	lookAt := mgl32.Vec3{0, 1, 0}
	desired := mgl32.Vec3{0, 1, 10}

	got := ResolveCollision(lookAt, desired, tree, nil, 0.2)
	assertVec(t, mgl32.Vec3{0, 1, 3.8}, got)

	extra := []common.AABB{common.AABBFromCenter(mgl32.Vec3{0, 1, 3}, mgl32.Vec3{0.5, 0.5, 0.5})}
	got = ResolveCollision(lookAt, desired, tree, extra, 0.2)
	assertVec(t, mgl32.Vec3{0, 1, 2.3}, got)

	got = ResolveCollision(lookAt, mgl32.Vec3{0, 1, -10}, tree, extra, 0.2)
	assertVec(t, mgl32.Vec3{0, 1, -10}, got)
}

func TestResolveCollisionKeepsMinimumDistance(t *testing.T) {
	extra := []common.AABB{common.AABBFromCenter(mgl32.Vec3{0, 0, 0.6}, mgl32.Vec3{0.5, 0.5, 0.5})}
	got := ResolveCollision(mgl32.Vec3{}, mgl32.Vec3{0, 0, 5}, nil, extra, 0.2)
	assertVec(t, mgl32.Vec3{0, 0, 0.1}, got)
}

func TestFreeCamera(t *testing.T) {
	c := NewFreeCamera(mgl32.Vec3{}, 0, 0, 10)
	c.Move(FreeMoveInput{Forward: true}, 0.5)
	assertVec(t, mgl32.Vec3{0, 0, -5}, c.Position)

	c.Move(FreeMoveInput{Forward: true, Boost: true}, 0.5)
	assertVec(t, mgl32.Vec3{0, 0, -20}, c.Position)

	c.Move(FreeMoveInput{Up: true}, 1)
	assertVec(t, mgl32.Vec3{0, 10, -20}, c.Position)

	c.Look(0, -100000)
	assert.Equal(t, float32(FreeCameraMaxPitch), c.Pitch)
	c.Look(0, 100000)
	assert.Equal(t, float32(-FreeCameraMaxPitch), c.Pitch)

	c.Look(100, 0)
	assert.InDelta(t, -15, c.Yaw, 1e-4)
}

func TestCatmullRom(t *testing.T) {
	two := []mgl32.Vec3{{0, 0, 0}, {10, 0, 0}}
	assertVec(t, mgl32.Vec3{2.5, 0, 0}, CatmullRom(two, 0.25))

	three := []mgl32.Vec3{{0, 0, 0}, {5, 10, 0}, {10, 0, 0}}
	assertVec(t, mgl32.Vec3{5, 5, 0}, CatmullRom(three, 0.5))

	four := []mgl32.Vec3{{0, 0, 0}, {1, 2, 0}, {4, 2, 1}, {6, 0, 3}, {9, 1, 1}}
	assert.Equal(t, four[0], CatmullRom(four, 0))
	assert.Equal(t, four[len(four)-1], CatmullRom(four, 1))
	assertVec(t, four[2], CatmullRom(four, 0.5))
	assertVec(t, four[1], CatmullRom(four, 0.25))

	line := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	for _, tt := range []float32{0.4, 0.5, 0.6} {
		p := CatmullRom(line, tt)
		assert.InDelta(t, 3*tt, p[0], 1e-4)
	}

	assert.Equal(t, mgl32.Vec3{}, CatmullRom(nil, 0.5))
}

func TestSepticInOut(t *testing.T) {
	assert.Equal(t, float32(0), SepticInOut(0))
	assert.Equal(t, float32(1), SepticInOut(1))
	assert.InDelta(t, 0.5, SepticInOut(0.5), 1e-6)
	assert.InDelta(t, 64*0.00006103515625, SepticInOut(0.25), 1e-6)
	for _, x := range []float32{0.1, 0.3, 0.45} {
		assert.InDelta(t, 1-SepticInOut(x), SepticInOut(1-x), 1e-5)
	}
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, float32(0), Smoothstep(0.7, 1, 0.5))
	assert.Equal(t, float32(1), Smoothstep(0.7, 1, 1.2))
	assert.InDelta(t, 0.5, Smoothstep(0, 1, 0.5), 1e-6)
}

func TestAppendPose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera_debug.txt")
	rec := PoseRecord{Time: time.Unix(0, 0).UTC(), Position: mgl32.Vec3{1, 2, 3}, Yaw: 45}
	require.NoError(t, AppendPose(path, rec))
	require.NoError(t, AppendPose(path, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "position=(1.000, 2.000, 3.000)")
}
