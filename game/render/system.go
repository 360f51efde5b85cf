package render

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

var white = mgl32.Vec4{1, 1, 1, 1}

// scenePrograms are the lit programs of one sample-count variant.
type scenePrograms struct {
	model   gfx.Program
	terrain gfx.Program
	skinned gfx.Program
}

// System draws every visible Renderable with a Transform and MeshGroup. Meshes flagged Skinned are
// drawn with the entity's Skeleton palette; entities without a Skeleton skip their skinned meshes.
type System struct {
	device gfx.Device
	white  gfx.Texture

	// TerrainTiling is the uv repeat count of ShaderTerrain meshes.
	TerrainTiling float32

	skinned       GPUSkinnedUniform
	shadowSkinned GPUShadowSkinnedUniform
	drawn         int
}

// NewSystem creates the render system. whiteTexture is bound for untextured meshes.
func NewSystem(device gfx.Device, whiteTexture gfx.Texture) *System {
	return &System{device: device, white: whiteTexture, TerrainTiling: 1}
}

// Drawn returns the number of mesh draws issued by the last Render call.
func (s *System) Drawn() int {
	return s.drawn
}

func modelMatrix(t *ecs.Transform, rd *ecs.Renderable) mgl32.Mat4 {
	m := t.Matrix()
	if rd.MeshOffset != (mgl32.Vec3{}) {
		m = m.Mul4(mgl32.Translate3D(rd.MeshOffset[0], rd.MeshOffset[1], rd.MeshOffset[2]))
	}
	return m
}

// Render draws the renderables into the open main pass.
func (s *System) Render(r *ecs.Registry, progs scenePrograms, scene *GPUSceneUniform, shadowMap gfx.Texture) {
	s.drawn = 0
	time := scene.Params[2]
	ecs.Each3(r, func(e ecs.Entity, t *ecs.Transform, rd *ecs.Renderable, group *ecs.MeshGroup) {
		if !rd.Visible {
			return
		}
		scene.Model = modelMatrix(t, rd)
		var skel *animation.Skeleton
		for i := range group.Meshes {
			m := &group.Meshes[i]
			if m.Handle == 0 {
				continue
			}
			tex, textured := m.Texture, float32(1)
			if tex == 0 || rd.Shader == ecs.ShaderColor {
				tex, textured = s.white, 0
			}
			scene.Color = m.Color
			scene.Params = mgl32.Vec4{1, textured, time, 0}

			call := gfx.DrawCall{Program: progs.model, Mesh: m.Handle, Textures: []gfx.Texture{tex, shadowMap}}
			switch {
			case m.Skinned:
				if skel == nil {
					sk, ok := ecs.Get[animation.Skeleton](r, e)
					if !ok {
						continue
					}
					skel = sk
				}
				s.skinned.Scene = *scene
				s.skinned.Bones = skel.Palette()
				call.Program = progs.skinned
				call.Uniforms = bytesOf(&s.skinned)
			case rd.Shader == ecs.ShaderTerrain:
				scene.Params[0] = s.TerrainTiling
				call.Program = progs.terrain
				call.Uniforms = bytesOf(scene)
			default:
				call.Uniforms = bytesOf(scene)
			}
			s.device.Draw(call)
			s.drawn++
		}
	})
	scene.Params[2] = time
}

// RenderShadow draws every visible renderable except terrain into the open shadow pass.
func (s *System) RenderShadow(r *ecs.Registry, static, skinned gfx.Program, lightVP mgl32.Mat4) {
	u := GPUShadowUniform{LightVP: lightVP}
	ecs.Each3(r, func(e ecs.Entity, t *ecs.Transform, rd *ecs.Renderable, group *ecs.MeshGroup) {
		if !rd.Visible || rd.Shader == ecs.ShaderTerrain {
			return
		}
		u.Model = modelMatrix(t, rd)
		skel, hasSkel := ecs.Get[animation.Skeleton](r, e)
		for i := range group.Meshes {
			m := &group.Meshes[i]
			if m.Handle == 0 {
				continue
			}
			if !m.Skinned {
				s.device.Draw(gfx.DrawCall{Program: static, Mesh: m.Handle, Uniforms: bytesOf(&u)})
				continue
			}
			if !hasSkel {
				continue
			}
			s.shadowSkinned.Shadow = u
			s.shadowSkinned.Bones = skel.Palette()
			s.device.Draw(gfx.DrawCall{Program: skinned, Mesh: m.Handle, Uniforms: bytesOf(&s.shadowSkinned)})
		}
	})
}
