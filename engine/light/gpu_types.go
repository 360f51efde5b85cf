package light

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPULightSource is the WGSL definition of Light, matching GPULight.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the lighting block shared by the lit scene shaders.
// Size: 144 bytes (WGSL uniform aligned).
//
// Layout:
//
//	mat4x4<f32> light_vp   (offset   0)
//	vec4<f32>   direction  (offset  64) xyz toward the light, w intensity
//	vec4<f32>   color      (offset  80) rgb, w unused
//	vec4<f32>   ambient    (offset  96) rgb, w unused
//	vec4<f32>   fog        (offset 112) rgb fog color, w density (0 disables fog)
//	vec4<f32>   shadow     (offset 128) x bias, y normal bias, z texel size, w enabled
type GPULight struct {
	LightVP   mgl32.Mat4
	Direction mgl32.Vec4
	Color     mgl32.Vec4
	Ambient   mgl32.Vec4
	Fog       mgl32.Vec4
	Shadow    mgl32.Vec4
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal returns a copy of the struct bytes suitable for GPU uniform upload.
func (g *GPULight) Marshal() []byte {
	return append([]byte(nil), common.StructToBytes(g)...)
}

// ToGPULight packs a light and its shadow camera for the frame.
//
// Parameters:
//   - l: the directional light
//   - shadow: the shadow camera
//   - lightVP: this frame's light-space matrix
//   - fogColor: fog color
//   - fogDensity: exponential fog density, 0 when fog is off
//
// Returns:
//   - GPULight: the uniform record
func ToGPULight(l Light, shadow ShadowCamera, lightVP mgl32.Mat4, fogColor mgl32.Vec3, fogDensity float32) GPULight {
	res := shadow.Resolution
	if res <= 0 {
		res = ShadowMapResolution
	}
	enabled := float32(0)
	if l.CastsShadows() {
		enabled = 1
	}
	return GPULight{
		LightVP:   lightVP,
		Direction: l.Direction().Vec4(l.Intensity()),
		Color:     l.Color().Vec4(1),
		Ambient:   l.Ambient().Vec4(1),
		Fog:       fogColor.Vec4(fogDensity),
		Shadow:    mgl32.Vec4{DefaultShadowBias, shadow.NormalBias(DefaultShadowNormalBiasScale), 1 / float32(res), enabled},
	}
}
