package render

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/light"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// WGSL sources of the uniform records below, registered as shader includes.
var (
	//go:embed assets/scene_uniform.wgsl
	GPUSceneUniformSource string

	//go:embed assets/skinned_uniform.wgsl
	GPUSkinnedUniformSource string

	//go:embed assets/shadow_uniform.wgsl
	GPUShadowUniformSource string

	//go:embed assets/sky_uniform.wgsl
	GPUSkyUniformSource string

	//go:embed assets/snow_uniform.wgsl
	GPUSnowUniformSource string

	//go:embed assets/post_uniform.wgsl
	GPUPostUniformSource string

	//go:embed assets/lighting.wgsl
	LightingSource string
)

// NewPreProcessor returns a shader pre-processor with every render include registered.
func NewPreProcessor() shader.PreProcessor {
	return shader.NewPreProcessor(
		shader.WithInclude("scene", GPUSceneUniformSource, "SceneUniform"),
		shader.WithInclude("skinned", GPUSkinnedUniformSource, "SkinnedUniform"),
		shader.WithInclude("shadow", GPUShadowUniformSource, "ShadowUniform"),
		shader.WithInclude("shadow_skinned", GPUShadowUniformSource, "ShadowSkinnedUniform"),
		shader.WithInclude("sun", GPUSkyUniformSource, "SunUniform"),
		shader.WithInclude("comet", GPUSkyUniformSource, "CometUniform"),
		shader.WithInclude("snow", GPUSnowUniformSource, "SnowUniform"),
		shader.WithInclude("overlay", GPUSnowUniformSource, "OverlayUniform"),
		shader.WithInclude("post", GPUPostUniformSource, "PostUniform"),
		shader.WithInclude("quad", GPUPostUniformSource, "QuadUniform"),
		shader.WithInclude("lighting", LightingSource, ""),
	)
}

// GPUSceneUniform is the per-draw block of the lit scene programs.
// Size: 448 bytes.
type GPUSceneUniform struct {
	Camera camera.GPUCameraUniform
	Light  light.GPULight
	Model  mgl32.Mat4
	Color  mgl32.Vec4
	// Params: x uv tiling, y textured, z time, w unused.
	Params mgl32.Vec4
}

// GPUSkinnedUniform adds the joint palette to GPUSceneUniform.
// Size: 4544 bytes.
type GPUSkinnedUniform struct {
	Scene GPUSceneUniform
	Bones [animation.MaxJoints]mgl32.Mat4
}

// GPUShadowUniform is the depth-only block of the shadow programs.
// Size: 128 bytes.
type GPUShadowUniform struct {
	LightVP mgl32.Mat4
	Model   mgl32.Mat4
}

// GPUShadowSkinnedUniform adds the joint palette to GPUShadowUniform.
// Size: 4224 bytes.
type GPUShadowSkinnedUniform struct {
	Shadow GPUShadowUniform
	Bones  [animation.MaxJoints]mgl32.Mat4
}

// GPUSunUniform places the sun billboard.
// Size: 128 bytes.
type GPUSunUniform struct {
	ViewProj    mgl32.Mat4
	CameraRight mgl32.Vec4
	CameraUp    mgl32.Vec4
	Center      mgl32.Vec4
	Color       mgl32.Vec4
}

// GPUCometUniform animates the comet shower; each instance derives its comet from instance_index.
// Size: 160 bytes.
type GPUCometUniform struct {
	ViewProj      mgl32.Mat4
	CameraRight   mgl32.Vec4
	CameraUp      mgl32.Vec4
	Origin        mgl32.Vec4
	Time          float32
	FallSpeed     float32
	CycleTime     float32
	FallDistance  float32
	FallDirection mgl32.Vec3
	Scale         float32
	NumComets     float32
	_             [3]float32
}

// GPUSnowUniform drives the 3D snow particles around the player.
// Size: 144 bytes.
type GPUSnowUniform struct {
	ViewProj    mgl32.Mat4
	CameraRight mgl32.Vec4
	CameraUp    mgl32.Vec4
	Center      mgl32.Vec4
	Params      mgl32.Vec4
	Extra       mgl32.Vec4
}

// GPUOverlayUniform drives the screen-space snow overlay.
// Size: 32 bytes.
type GPUOverlayUniform struct {
	Params mgl32.Vec4
	Extra  mgl32.Vec4
}

// GPUPostUniform is shared by the toon, motion blur, radial blur and blit programs.
// Size: 96 bytes.
type GPUPostUniform struct {
	Reproject mgl32.Mat4
	Params    mgl32.Vec4
	Extra     mgl32.Vec4
}

// GPUQuadUniform places a screen quad for the overlay programs.
// Size: 96 bytes.
type GPUQuadUniform struct {
	Transform mgl32.Mat4
	Color     mgl32.Vec4
	Params    mgl32.Vec4
}

// uniformSize returns the byte size of a uniform record type.
func uniformSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// bytesOf views a uniform record as bytes. Devices copy uniforms when a draw is recorded, so the
// record may be reused for the next draw.
func bytesOf[T any](v *T) []byte {
	return common.StructToBytes(v)
}
