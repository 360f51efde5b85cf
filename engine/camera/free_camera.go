package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// FreeCameraSensitivity is the default mouse sensitivity in degrees per pixel.
	FreeCameraSensitivity = 0.15
	// FreeCameraMaxPitch is the pitch limit in degrees.
	FreeCameraMaxPitch = 89
	// FreeCameraBoost multiplies speed while the boost key is held.
	FreeCameraBoost = 3
)

// FreeMoveInput is the held movement keys of the free-fly rig.
type FreeMoveInput struct {
	Forward, Back bool
	Left, Right   bool
	Up, Down      bool
	Boost         bool
}

// FreeCamera is a fly-through rig with no collision. Angles are in degrees.
type FreeCamera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Speed       float32
	Sensitivity float32
}

// NewFreeCamera creates a free camera at position with the given yaw and pitch in degrees.
func NewFreeCamera(position mgl32.Vec3, yaw, pitch, speed float32) *FreeCamera {
	return &FreeCamera{
		Position:    position,
		Yaw:         yaw,
		Pitch:       common.Clamp(pitch, -FreeCameraMaxPitch, FreeCameraMaxPitch),
		Speed:       speed,
		Sensitivity: FreeCameraSensitivity,
	}
}

// Look accumulates mouse motion in pixels into yaw and pitch.
func (c *FreeCamera) Look(dx, dy float32) {
	c.Yaw -= dx * c.Sensitivity
	c.Pitch = common.Clamp(c.Pitch-dy*c.Sensitivity, -FreeCameraMaxPitch, FreeCameraMaxPitch)
}

// Forward returns the pitched view direction.
func (c *FreeCamera) Forward() mgl32.Vec3 {
	yaw := float64(common.Radians(c.Yaw))
	pitch := float64(common.Radians(c.Pitch))
	cp := math.Cos(pitch)
	return mgl32.Vec3{
		float32(-math.Sin(yaw) * cp),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * cp),
	}
}

// Right returns the horizontal right vector.
func (c *FreeCamera) Right() mgl32.Vec3 {
	return common.YawForward(common.Radians(c.Yaw)).Cross(common.Up)
}

// Target returns a point one unit ahead of the eye.
func (c *FreeCamera) Target() mgl32.Vec3 {
	return c.Position.Add(c.Forward())
}

// Move translates the rig along its pitched forward/right basis and world up.
func (c *FreeCamera) Move(in FreeMoveInput, dt float32) {
	var dir mgl32.Vec3
	fwd, right := c.Forward(), c.Right()
	if in.Forward {
		dir = dir.Add(fwd)
	}
	if in.Back {
		dir = dir.Sub(fwd)
	}
	if in.Right {
		dir = dir.Add(right)
	}
	if in.Left {
		dir = dir.Sub(right)
	}
	if in.Up {
		dir = dir.Add(common.Up)
	}
	if in.Down {
		dir = dir.Sub(common.Up)
	}
	if dir.Len() < 1e-6 {
		return
	}
	speed := c.Speed
	if in.Boost {
		speed *= FreeCameraBoost
	}
	c.Position = c.Position.Add(dir.Normalize().Mul(speed * dt))
}
