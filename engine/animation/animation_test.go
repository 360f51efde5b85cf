package animation

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoJointSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	s, err := NewSkeleton([]Joint{
		{Name: "root", ParentIndex: -1, InverseBind: mgl32.Ident4(), Local: mgl32.Ident4()},
		{Name: "child", ParentIndex: 0, InverseBind: mgl32.Translate3D(-1, 0, 0), Local: mgl32.Translate3D(1, 0, 0)},
	})
	require.NoError(t, err)
	return s
}

func assertMat4(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d: want %v got %v", i, want, got)
	}
}

func TestSkinningPaletteAtBindPoseIsIdentity(t *testing.T) {
	s := twoJointSkeleton(t)
	s.Update()
	assertMat4(t, mgl32.Ident4(), s.BoneMatrices[0])
	assertMat4(t, mgl32.Ident4(), s.BoneMatrices[1])
}

func TestUpdateComposesParentFirst(t *testing.T) {
	s, err := NewSkeleton([]Joint{
		{ParentIndex: -1, InverseBind: mgl32.Ident4(), Local: mgl32.HomogRotate3DY(0.5)},
		{ParentIndex: 0, InverseBind: mgl32.Ident4(), Local: mgl32.Translate3D(0, 2, 0)},
		{ParentIndex: 1, InverseBind: mgl32.Ident4(), Local: mgl32.Translate3D(1, 0, 0)},
	})
	require.NoError(t, err)
	s.Update()
	for i, j := range s.Joints {
		if j.ParentIndex < 0 {
			assertMat4(t, j.Local, s.Global(i))
			continue
		}
		assertMat4(t, s.Global(j.ParentIndex).Mul4(j.Local), s.Global(i))
	}
}

func TestNewSkeletonRejectsChildBeforeParent(t *testing.T) {
	_, err := NewSkeleton([]Joint{
		{ParentIndex: 1, Local: mgl32.Ident4()},
		{ParentIndex: -1, Local: mgl32.Ident4()},
	})
	assert.Error(t, err)
}

func TestResetToBindPoseIsExact(t *testing.T) {
	s := twoJointSkeleton(t)
	s.Joints[1].Local = mgl32.Translate3D(3, 2, 1)
	s.Joints[0].Local = mgl32.HomogRotate3DX(1)
	s.ResetToBindPose()
	for i := range s.Joints {
		assert.Equal(t, s.BindPose[i], s.Joints[i].Local)
	}
	s.Update()
	for i := range s.Joints {
		assertMat4(t, s.Global(i).Mul4(s.Joints[i].InverseBind), s.BoneMatrices[i])
	}
}

func TestSkinPosition(t *testing.T) {
	s := twoJointSkeleton(t)
	s.Joints[1].Local = mgl32.Translate3D(2, 0, 0)
	s.Update()

	p := s.SkinPosition(mgl32.Vec3{1, 0, 0}, [4]uint32{1, 0, 0, 0}, [4]float32{1, 0, 0, 0})
	assert.InDelta(t, 2.0, p[0], 1e-5)

	half := s.SkinPosition(mgl32.Vec3{1, 0, 0}, [4]uint32{0, 1, 0, 0}, [4]float32{0.5, 0.5, 0, 0})
	assert.InDelta(t, 1.5, half[0], 1e-5)
}

func TestNewClipValidatesTracks(t *testing.T) {
	_, err := NewClip("bad", []Channel{{
		TranslationTimes:  []float32{0, 1, 1},
		TranslationValues: []mgl32.Vec3{{}, {}, {}},
	}})
	assert.Error(t, err)

	_, err = NewClip("mismatch", []Channel{{
		ScaleTimes:  []float32{0, 1},
		ScaleValues: []mgl32.Vec3{{1, 1, 1}},
	}})
	assert.Error(t, err)

	clip, err := NewClip("ok", []Channel{
		{TranslationTimes: []float32{0, 0.5}, TranslationValues: []mgl32.Vec3{{}, {}}},
		{RotationTimes: []float32{0.25, 2}, RotationValues: []mgl32.Quat{mgl32.QuatIdent(), mgl32.QuatIdent()}},
	})
	require.NoError(t, err)
	assert.Equal(t, float32(2), clip.Duration)
}

func slideClip(t *testing.T) *Clip {
	t.Helper()
	clip, err := NewClip("slide", []Channel{{
		JointIndex:        1,
		TranslationTimes:  []float32{0, 1, 2},
		TranslationValues: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 4, 0}},
		RotationTimes:     []float32{0, 2},
		RotationValues:    []mgl32.Quat{mgl32.QuatIdent(), mgl32.QuatRotate(1, common.Up)},
	}})
	require.NoError(t, err)
	return clip
}

func TestSampleBoundaries(t *testing.T) {
	clip := slideClip(t)
	s := twoJointSkeleton(t)

	cases := []struct {
		name string
		t    float32
		want mgl32.Vec3
	}{
		{"before first key", -1, mgl32.Vec3{0, 0, 0}},
		{"at first key", 0, mgl32.Vec3{0, 0, 0}},
		{"midway", 0.5, mgl32.Vec3{0.5, 0, 0}},
		{"second interval", 1.5, mgl32.Vec3{1, 2, 0}},
		{"at end", 2, mgl32.Vec3{1, 4, 0}},
		{"past end", 5, mgl32.Vec3{1, 4, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			Sample(clip, tc.t, s)
			got := s.Joints[1].Local.Col(3).Vec3()
			for i := range tc.want {
				assert.InDelta(t, tc.want[i], got[i], 1e-5, "want %v got %v", tc.want, got)
			}
		})
	}
}

func TestSampleMissingTrackUsesDefaults(t *testing.T) {
	clip, err := NewClip("rot-only", []Channel{{
		JointIndex:     0,
		RotationTimes:  []float32{0},
		RotationValues: []mgl32.Quat{mgl32.QuatIdent()},
	}})
	require.NoError(t, err)
	s := twoJointSkeleton(t)
	s.Joints[0].Local = mgl32.Translate3D(9, 9, 9)
	Sample(clip, 0, s)
	assertMat4(t, mgl32.Ident4(), s.Joints[0].Local)
}

func TestSampleSkipsUnknownJoint(t *testing.T) {
	clip, err := NewClip("stray", []Channel{{
		JointIndex:        7,
		TranslationTimes:  []float32{0},
		TranslationValues: []mgl32.Vec3{{1, 1, 1}},
	}})
	require.NoError(t, err)
	s := twoJointSkeleton(t)
	assert.NotPanics(t, func() { Sample(clip, 0, s) })
}

func TestAdvanceLoops(t *testing.T) {
	a := NewAnimation([]*Clip{slideClip(t)})
	a.Advance(2.5)
	assert.InDelta(t, 0.5, a.Time, 1e-5)

	a.Time = 0
	a.SpeedMultiplier = 10
	a.Advance(0.3)
	assert.InDelta(t, 1.0, a.Time, 1e-5)
}

func TestAdvanceZeroDuration(t *testing.T) {
	clip, err := NewClip("still", []Channel{{
		TranslationTimes:  []float32{0},
		TranslationValues: []mgl32.Vec3{{1, 0, 0}},
	}})
	require.NoError(t, err)
	a := NewAnimation([]*Clip{clip})
	a.Advance(1)
	assert.Equal(t, float32(0), a.Time)
}

func TestPlaySelectsByName(t *testing.T) {
	walk, _ := NewClip("walk", nil)
	run, _ := NewClip("run", nil)
	a := NewAnimation([]*Clip{walk, run})
	a.Time = 0.3

	assert.True(t, a.Play("run"))
	assert.Equal(t, 1, a.ClipIndex)
	assert.Equal(t, float32(0), a.Time)
	assert.False(t, a.Play("swim"))
	assert.Equal(t, 1, a.ClipIndex)
}

func TestSystemsRunOverRegistry(t *testing.T) {
	r := ecs.NewRegistry()
	e := r.Create()
	ecs.Add(r, e, NewAnimation([]*Clip{slideClip(t)}))
	ecs.Add(r, e, *twoJointSkeleton(t))

	UpdateAnimations(r, 0.5)
	UpdateSkeletons(r)

	s, ok := ecs.Get[Skeleton](r, e)
	require.True(t, ok)
	got := s.Global(1).Col(3).Vec3()
	assert.InDelta(t, 0.5, got[0], 1e-5)
}

func TestCloneIsIndependent(t *testing.T) {
	s := twoJointSkeleton(t)
	s.Joints[1].Local = mgl32.Translate3D(5, 0, 0)
	c := s.Clone()

	assertMat4(t, s.BindPose[1], c.Joints[1].Local)
	c.Joints[0].Local = mgl32.Translate3D(0, 9, 0)
	assertMat4(t, mgl32.Ident4(), s.Joints[0].Local)
}
