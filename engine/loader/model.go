package loader

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is one triangle primitive ready for upload.
type MeshData struct {
	Name     string
	Vertices []gfx.SkinnedVertex
	Indices  []uint32

	// Skinned is set when the primitive is bound to the model's skeleton. Unskinned primitives are
	// already transformed into model space.
	Skinned bool

	BaseColor mgl32.Vec4

	// Texture is the encoded base color image, if any. Image holds it decoded once the loader has
	// run its decode step.
	Texture *common.ImageSource
	Image   *common.ImageData
}

// StaticVertices drops the skinning attributes for upload with gfx.LayoutMesh.
func (m *MeshData) StaticVertices() []gfx.MeshVertex {
	out := make([]gfx.MeshVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = gfx.MeshVertex{Position: v.Position, Normal: v.Normal, UV: v.UV}
	}
	return out
}

// Model is the CPU-side result of importing a glTF asset.
type Model struct {
	Name   string
	Meshes []MeshData

	// Skeleton is the rest-pose skeleton of the first skin, or nil for static models.
	Skeleton *animation.Skeleton
	Clips    []*animation.Clip

	// Bounds encloses every vertex in model space (bind pose for skinned meshes).
	Bounds common.AABB

	// Skipped counts primitives dropped because they are not triangle lists.
	Skipped int
}

// Skinned reports whether any mesh is bound to the skeleton.
func (m *Model) Skinned() bool {
	if m.Skeleton == nil {
		return false
	}
	for i := range m.Meshes {
		if m.Meshes[i].Skinned {
			return true
		}
	}
	return false
}

// Instantiate returns a fresh skeleton and animation state sharing this model's clips, so several
// entities can animate the same model independently.
//
// Returns:
//   - *animation.Skeleton: a bind-pose copy of the skeleton, or nil for static models
//   - animation.Animation: playback state over the model's clips
func (m *Model) Instantiate() (*animation.Skeleton, animation.Animation) {
	var skel *animation.Skeleton
	if m.Skeleton != nil {
		skel = m.Skeleton.Clone()
	}
	return skel, animation.NewAnimation(m.Clips)
}

// Clip finds a clip by name.
func (m *Model) Clip(name string) (*animation.Clip, bool) {
	for _, c := range m.Clips {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
