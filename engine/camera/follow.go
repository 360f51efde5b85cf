// Package camera provides the perspective lens and the rigs that pose it: the over-the-shoulder
// follow rig with collision, the free-fly rig, and spline paths for cinematics.
package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinPitch and MaxPitch bound the follow rig pitch in radians.
	MinPitch = -70 * math.Pi / 180
	MaxPitch = 70 * math.Pi / 180

	// minCollisionDistance is the closest the camera is pulled toward its look-at point.
	minCollisionDistance = 0.1
)

// Caster answers ray queries against static geometry.
type Caster interface {
	// Raycast returns whether the ray hits within maxDist and the hit distance.
	Raycast(origin, dir mgl32.Vec3, maxDist float32) (bool, float32)
}

// FollowPose computes the over-the-shoulder eye position and look-at point for a target.
//
// Parameters:
//   - target: the followed entity position
//   - f: the follow rig settings and orientation
//
// Returns:
//   - mgl32.Vec3: the desired eye position
//   - mgl32.Vec3: the look-at point
func FollowPose(target mgl32.Vec3, f *ecs.FollowTarget) (mgl32.Vec3, mgl32.Vec3) {
	forward := common.YawForward(f.Yaw)
	right := forward.Cross(common.Up)

	pos := target.
		Sub(forward.Mul(f.Distance)).
		Add(right.Mul(f.ShoulderOffset)).
		Add(mgl32.Vec3{0, f.Height, 0})

	lift := 1 - float32(math.Tan(float64(f.Pitch)))*f.LookAhead*0.1
	lookAt := target.Add(forward.Mul(f.LookAhead)).Add(mgl32.Vec3{0, lift, 0})
	return pos, lookAt
}

// Orbit applies relative mouse motion to the rig. Deltas are in pixels; the rig sensitivity is in
// degrees per pixel. Moving the mouse right turns right and moving it down looks down.
func Orbit(f *ecs.FollowTarget, dx, dy float32) {
	f.Yaw = common.WrapAngle(f.Yaw - common.Radians(dx*f.Sensitivity))
	f.Pitch = common.Clamp(f.Pitch+common.Radians(dy*f.Sensitivity), MinPitch, MaxPitch)
}

// ResolveCollision pulls the eye in front of the nearest obstruction between the look-at point and
// the desired eye position.
//
// Parameters:
//   - lookAt: the ray origin
//   - desired: the unobstructed eye position
//   - caster: static geometry, may be nil
//   - extra: additional boxes tested directly
//   - offset: distance kept between the eye and the obstruction
//
// Returns:
//   - mgl32.Vec3: the resolved eye position
func ResolveCollision(lookAt, desired mgl32.Vec3, caster Caster, extra []common.AABB, offset float32) mgl32.Vec3 {
	delta := desired.Sub(lookAt)
	dist := delta.Len()
	if dist < 1e-6 {
		return desired
	}
	dir := delta.Mul(1 / dist)

	nearest := dist
	hit := false
	if caster != nil {
		if ok, t := caster.Raycast(lookAt, dir, dist); ok && t < nearest {
			nearest, hit = t, true
		}
	}
	inv := common.InverseDirection(dir)
	for _, b := range extra {
		if t, ok := b.Raycast(lookAt, inv); ok && t <= dist && t < nearest {
			nearest, hit = t, true
		}
	}
	if !hit {
		return desired
	}
	return lookAt.Add(dir.Mul(max(nearest-offset, minCollisionDistance)))
}
