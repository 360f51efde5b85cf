package light

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	direction mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
	ambient   mgl32.Vec3
	shadows   bool
}

// Light is the scene's directional light (the sun). It has no position, only a direction pointing
// from the scene toward the light, a color and an ambient term. The shadow pass places its
// orthographic camera along this direction.
type Light interface {
	// Direction returns the normalized direction from the scene toward the light.
	//
	// Returns:
	//   - mgl32.Vec3: unit direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Ambient returns the ambient color added to every lit fragment.
	Ambient() mgl32.Vec3

	// CastsShadows reports whether the shadow pass runs for this light.
	CastsShadows() bool

	// SetDirection sets the light direction. A zero vector is ignored.
	//
	// Parameters:
	//   - dir: direction toward the light (will be normalized)
	SetDirection(dir mgl32.Vec3)

	// SetColor sets the RGB color of the light.
	SetColor(color mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetAmbient sets the ambient color.
	SetAmbient(ambient mgl32.Vec3)

	// SetCastsShadows enables or disables shadow mapping for the light.
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a directional light pointing straight down with white color, unit intensity
// and a dim ambient term, then applies the options.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		direction: common.Up,
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
		ambient:   mgl32.Vec3{0.25, 0.27, 0.32},
		shadows:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Ambient() mgl32.Vec3 {
	return l.ambient
}

func (l *lightImpl) CastsShadows() bool {
	return l.shadows
}

func (l *lightImpl) SetDirection(dir mgl32.Vec3) {
	if dir.Len() < 1e-6 {
		return
	}
	l.direction = dir.Normalize()
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetAmbient(ambient mgl32.Vec3) {
	l.ambient = ambient
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.shadows = castsShadows
}
