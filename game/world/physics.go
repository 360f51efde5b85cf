package world

import (
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
)

// GroundHeight returns the highest GroundPlane in the registry.
//
// Returns:
//   - float32: the ground height
//   - bool: false when there is no ground plane
func GroundHeight(r *ecs.Registry) (float32, bool) {
	h := float32(math.Inf(-1))
	found := false
	ecs.Each(r, func(_ ecs.Entity, g *ecs.GroundPlane) {
		h = max(h, g.Height)
		found = true
	})
	return h, found
}

// StepPhysics integrates gravity and velocity for every Transform+RigidBody and clamps bodies to
// the ground plane.
func StepPhysics(r *ecs.Registry, dt float32) {
	ground, hasGround := GroundHeight(r)
	ecs.Each2(r, func(_ ecs.Entity, tr *ecs.Transform, rb *ecs.RigidBody) {
		rb.Grounded = false
		rb.Velocity[1] += rb.Gravity * dt
		tr.Position = tr.Position.Add(rb.Velocity.Mul(dt))
		if hasGround && tr.Position[1] <= ground {
			tr.Position[1] = ground
			if rb.Velocity[1] < 0 {
				rb.Velocity[1] = 0
			}
			rb.Grounded = true
		}
	})
}

// LandOnBoxes snaps falling bodies onto box tops: when the body's XZ position is inside a box,
// it is not moving up, and its feet are at or below the top by no more than stepHeight.
func LandOnBoxes(r *ecs.Registry, colliders []common.AABB, stepHeight float32) {
	ecs.Each2(r, func(_ ecs.Entity, tr *ecs.Transform, rb *ecs.RigidBody) {
		if rb.Velocity[1] > 0 {
			return
		}
		p := tr.Position
		for _, c := range colliders {
			if p[0] < c.Min[0] || p[0] > c.Max[0] || p[2] < c.Min[2] || p[2] > c.Max[2] {
				continue
			}
			top := c.Max[1]
			if p[1] <= top && p[1] >= top-stepHeight {
				tr.Position[1] = top
				rb.Velocity[1] = 0
				rb.Grounded = true
				return
			}
		}
	})
}
