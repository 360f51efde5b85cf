// Package animation samples keyframed clips into joint poses and composes skinning palettes.
package animation

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxJoints is the palette size the skinned shaders are compiled for.
const MaxJoints = 64

// Joint is one bone of a skeleton.
type Joint struct {
	// Name identifies the joint for clip targeting.
	Name string

	// ParentIndex is the parent joint, or -1 for a root. Always less than the joint's own index.
	ParentIndex int

	// InverseBind transforms from model space into the joint's bind space.
	InverseBind mgl32.Mat4

	// Local is the joint transform relative to its parent, rewritten by sampling.
	Local mgl32.Mat4
}

// Skeleton is a joint hierarchy stored parents-first plus its skinning palette.
type Skeleton struct {
	Joints []Joint

	// BoneMatrices is the palette uploaded for skinning: global·inverseBind per joint.
	BoneMatrices []mgl32.Mat4

	// BindPose holds the rest Local transform of every joint.
	BindPose []mgl32.Mat4

	global []mgl32.Mat4
	names  map[string]int
}

// NewSkeleton creates a skeleton from parents-first joints. The current Local transforms become
// the bind pose.
//
// Parameters:
//   - joints: the joints; each ParentIndex must be -1 or less than the joint's index
//
// Returns:
//   - *Skeleton: the skeleton with an identity-initialized palette
//   - error: an error if the hierarchy is not in parents-first order
func NewSkeleton(joints []Joint) (*Skeleton, error) {
	s := &Skeleton{
		Joints:       joints,
		BoneMatrices: make([]mgl32.Mat4, len(joints)),
		BindPose:     make([]mgl32.Mat4, len(joints)),
		global:       make([]mgl32.Mat4, len(joints)),
		names:        make(map[string]int, len(joints)),
	}
	for i, j := range joints {
		if j.ParentIndex >= i {
			return nil, fmt.Errorf("joint %d (%q): parent %d does not precede it", i, j.Name, j.ParentIndex)
		}
		s.BindPose[i] = j.Local
		s.BoneMatrices[i] = mgl32.Ident4()
		s.global[i] = mgl32.Ident4()
		if j.Name != "" {
			s.names[j.Name] = i
		}
	}
	return s, nil
}

// JointIndex looks up a joint by name.
func (s *Skeleton) JointIndex(name string) (int, bool) {
	i, ok := s.names[name]
	return i, ok
}

// Global returns the model-space transform of joint i computed by the last Update.
func (s *Skeleton) Global(i int) mgl32.Mat4 {
	return s.global[i]
}

// Update walks the joints in order composing global transforms and the skinning palette.
func (s *Skeleton) Update() {
	for i := range s.Joints {
		j := &s.Joints[i]
		if j.ParentIndex >= 0 {
			s.global[i] = s.global[j.ParentIndex].Mul4(j.Local)
		} else {
			s.global[i] = j.Local
		}
		s.BoneMatrices[i] = s.global[i].Mul4(j.InverseBind)
	}
}

// ResetToBindPose restores every Local transform from the bind pose.
func (s *Skeleton) ResetToBindPose() {
	for i := range s.Joints {
		s.Joints[i].Local = s.BindPose[i]
	}
}

// SkinPosition blends a model-space position through the palette the same way the skinned vertex
// shader does.
//
// Parameters:
//   - p: the bind-pose position
//   - joints: up to four joint indices
//   - weights: the matching weights
//
// Returns:
//   - mgl32.Vec3: the skinned position
func (s *Skeleton) SkinPosition(p mgl32.Vec3, joints [4]uint32, weights [4]float32) mgl32.Vec3 {
	var out mgl32.Vec3
	v := p.Vec4(1)
	for k := 0; k < 4; k++ {
		if weights[k] == 0 || int(joints[k]) >= len(s.BoneMatrices) {
			continue
		}
		out = out.Add(s.BoneMatrices[joints[k]].Mul4x1(v).Vec3().Mul(weights[k]))
	}
	return out
}

// Palette returns the bone matrices padded or truncated to MaxJoints for upload.
func (s *Skeleton) Palette() [MaxJoints]mgl32.Mat4 {
	var out [MaxJoints]mgl32.Mat4
	for i := range out {
		if i < len(s.BoneMatrices) {
			out[i] = s.BoneMatrices[i]
		} else {
			out[i] = mgl32.Ident4()
		}
	}
	return out
}

// Clone returns an independent copy of the skeleton in its bind pose, for giving each entity that
// shares a model its own pose.
func (s *Skeleton) Clone() *Skeleton {
	joints := make([]Joint, len(s.Joints))
	copy(joints, s.Joints)
	for i := range joints {
		joints[i].Local = s.BindPose[i]
	}
	c, _ := NewSkeleton(joints)
	return c
}
