package light

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapResolution is the default width and height in texels of the shadow depth texture.
const ShadowMapResolution = 2048

// DefaultShadowBias is the constant depth bias applied to shadow comparisons to reduce acne.
const DefaultShadowBias float32 = 0.002

// DefaultShadowNormalBiasScale is the multiplier applied to the shadow map texel world-size to
// compute the normal-offset bias.
const DefaultShadowNormalBiasScale float32 = 2.0

// ShadowCamera is the orthographic light camera of the shadow pass. It is re-centered on a focus
// point (the player) every frame with a fixed extent, so casters near the extent edge can pop.
type ShadowCamera struct {
	// Distance places the eye at focus + lightDir·Distance.
	Distance float32
	// OrthoSize is the half-extent of the square projection.
	OrthoSize  float32
	Near       float32
	Far        float32
	Resolution int
}

// DefaultShadowCamera returns the shadow camera used when settings leave it unspecified.
func DefaultShadowCamera() ShadowCamera {
	return ShadowCamera{Distance: 50, OrthoSize: 40, Near: 1, Far: 150, Resolution: ShadowMapResolution}
}

// View returns lookAt(focus + lightDir·Distance, focus, up).
//
// Parameters:
//   - lightDir: unit direction toward the light
//   - focus: world-space point the shadow map is centered on
//
// Returns:
//   - mgl32.Mat4: the light view matrix
func (s ShadowCamera) View(lightDir, focus mgl32.Vec3) mgl32.Mat4 {
	eye := focus.Add(lightDir.Mul(s.Distance))
	return common.LookAt(eye, focus, common.Up)
}

// Projection returns the orthographic projection over [-OrthoSize, OrthoSize].
func (s ShadowCamera) Projection() mgl32.Mat4 {
	return common.Ortho(-s.OrthoSize, s.OrthoSize, -s.OrthoSize, s.OrthoSize, s.Near, s.Far)
}

// LightSpace returns P_light · V_light.
func (s ShadowCamera) LightSpace(lightDir, focus mgl32.Vec3) mgl32.Mat4 {
	return s.Projection().Mul4(s.View(lightDir, focus))
}

// NormalBias derives the world-space normal-offset bias: the texel world size times scale.
func (s ShadowCamera) NormalBias(scale float32) float32 {
	res := s.Resolution
	if res <= 0 {
		res = ShadowMapResolution
	}
	return 2 * s.OrthoSize / float32(res) * scale
}
