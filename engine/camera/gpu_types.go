package camera

import (
	_ "embed"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the WGSL definition of CameraUniform, matching GPUCameraUniform.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the camera block shared by the scene shaders.
// Size: 208 bytes (WGSL uniform aligned).
type GPUCameraUniform struct {
	ViewProj mgl32.Mat4 // offset   0
	View     mgl32.Mat4 // offset  64
	Proj     mgl32.Mat4 // offset 128
	Position mgl32.Vec4 // offset 192: xyz eye position, w = 1
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (208)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}
