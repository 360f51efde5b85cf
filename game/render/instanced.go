package render

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxInstances is the capacity of each instance list.
const MaxInstances = 4096

// InstancedRenderer draws the buildings as one instanced unit box per pass. The camera list is
// filled from a frustum query of the octree and the shadow list from a radius query around the
// camera.
type InstancedRenderer struct {
	device  gfx.Device
	box     gfx.Mesh
	texture gfx.Texture

	camera  []mgl32.Mat4
	shadow  []mgl32.Mat4
	scratch []int
	dropped int

	// Tiling is the facade texture repeat length in meters.
	Tiling float32
	Color  mgl32.Vec4
}

// NewInstancedRenderer creates the renderer around the unit box mesh and facade texture.
//
// Parameters:
//   - device: the device draws are issued on
//   - box: the unit box mesh (x and z in [-0.5, 0.5], y in [0, 1])
//   - texture: the facade texture
//
// Returns:
//   - *InstancedRenderer: the renderer with empty instance lists
func NewInstancedRenderer(device gfx.Device, box gfx.Mesh, texture gfx.Texture) *InstancedRenderer {
	return &InstancedRenderer{
		device:  device,
		box:     box,
		texture: texture,
		camera:  make([]mgl32.Mat4, 0, MaxInstances),
		shadow:  make([]mgl32.Mat4, 0, MaxInstances),
		Tiling:  4,
		Color:   mgl32.Vec4{1, 1, 1, 1},
	}
}

// BeginFrame clears both instance lists.
func (ir *InstancedRenderer) BeginFrame() {
	ir.camera = ir.camera[:0]
	ir.shadow = ir.shadow[:0]
	ir.dropped = 0
}

// AddCamera appends a building to the camera list.
//
// Returns:
//   - bool: false when the list is full and the building was dropped
func (ir *InstancedRenderer) AddCamera(b world.BuildingData) bool {
	if len(ir.camera) >= MaxInstances {
		ir.dropped++
		return false
	}
	ir.camera = append(ir.camera, b.Matrix())
	return true
}

// AddShadow appends a building to the shadow list.
//
// Returns:
//   - bool: false when the list is full and the building was dropped
func (ir *InstancedRenderer) AddShadow(b world.BuildingData) bool {
	if len(ir.shadow) >= MaxInstances {
		ir.dropped++
		return false
	}
	ir.shadow = append(ir.shadow, b.Matrix())
	return true
}

// Cull fills both lists for the frame: buildings inside the frustum go to the camera list and
// buildings within shadowDistance of center go to the shadow list. Octree indices are indices
// into buildings.
func (ir *InstancedRenderer) Cull(tree *spatial.Octree, buildings []world.BuildingData, frustum common.Frustum, center mgl32.Vec3, shadowDistance float32) {
	ir.BeginFrame()
	if tree == nil {
		return
	}
	ir.scratch = tree.QueryFrustum(frustum, ir.scratch[:0])
	for _, i := range ir.scratch {
		ir.AddCamera(buildings[i])
	}
	ir.scratch = tree.QueryRadius(center, shadowDistance, ir.scratch[:0])
	for _, i := range ir.scratch {
		ir.AddShadow(buildings[i])
	}
}

// CameraCount returns the number of buildings in the camera list.
func (ir *InstancedRenderer) CameraCount() int {
	return len(ir.camera)
}

// ShadowCount returns the number of buildings in the shadow list.
func (ir *InstancedRenderer) ShadowCount() int {
	return len(ir.shadow)
}

// Dropped returns how many buildings did not fit this frame.
func (ir *InstancedRenderer) Dropped() int {
	return ir.dropped
}

// Render issues one instanced draw of the camera list into the open pass.
//
// Parameters:
//   - program: the instanced lit program
//   - scene: the frame's scene uniform; Model, Color and Params are overwritten
//   - shadowMap: the shadow depth texture
func (ir *InstancedRenderer) Render(program gfx.Program, scene *GPUSceneUniform, shadowMap gfx.Texture) {
	if len(ir.camera) == 0 {
		return
	}
	scene.Model = mgl32.Ident4()
	scene.Color = ir.Color
	scene.Params = mgl32.Vec4{ir.Tiling, 1, scene.Params[2], 0}
	ir.device.Draw(gfx.DrawCall{
		Program:   program,
		Mesh:      ir.box,
		Uniforms:  bytesOf(scene),
		Textures:  []gfx.Texture{ir.texture, shadowMap},
		Instances: ir.camera,
	})
}

// RenderShadow issues one instanced depth-only draw of the shadow list into the open pass.
func (ir *InstancedRenderer) RenderShadow(program gfx.Program, lightVP mgl32.Mat4) {
	if len(ir.shadow) == 0 {
		return
	}
	u := GPUShadowUniform{LightVP: lightVP, Model: mgl32.Ident4()}
	ir.device.Draw(gfx.DrawCall{
		Program:   program,
		Mesh:      ir.box,
		Uniforms:  bytesOf(&u),
		Instances: ir.shadow,
	})
}
