package world

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/go-gl/mathgl/mgl32"
)

// Speed scales applied to PlayerController.MoveSpeed.
const (
	BackwardScale float32 = 0.25
	WalkScale     float32 = 0.5
	SprintScale   float32 = 1.0
)

// DefaultPlayerRadius is the horizontal collision radius of the player.
const DefaultPlayerRadius float32 = 0.4

// resolvePasses bounds how many times overlapping colliders are re-checked after a push-out.
const resolvePasses = 4

// MoveInput is the held movement keys for one frame.
type MoveInput struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Sprint   bool
}

// Any reports whether any direction key is held.
func (in MoveInput) Any() bool {
	return in.Forward || in.Backward || in.Left || in.Right
}

// MoveDirection converts held keys into a unit horizontal direction relative to yaw and the speed
// scale for the gait: backward ×0.25, walk ×0.5, sprint ×1.
//
// Parameters:
//   - yaw: heading in radians; yaw 0 faces -Z
//   - in: held keys
//
// Returns:
//   - mgl32.Vec3: unit direction, zero when the keys cancel out
//   - float32: speed scale, zero when not moving
func MoveDirection(yaw float32, in MoveInput) (mgl32.Vec3, float32) {
	forward := common.YawForward(yaw)
	right := forward.Cross(common.Up)

	var dir mgl32.Vec3
	if in.Forward {
		dir = dir.Add(forward)
	}
	if in.Backward {
		dir = dir.Sub(forward)
	}
	if in.Right {
		dir = dir.Add(right)
	}
	if in.Left {
		dir = dir.Sub(right)
	}
	if dir.Len() < 1e-6 {
		return mgl32.Vec3{}, 0
	}

	scale := WalkScale
	switch {
	case in.Backward && !in.Forward:
		scale = BackwardScale
	case in.Sprint:
		scale = SprintScale
	}
	return dir.Normalize(), scale
}

// ResolveHorizontal pushes pos out of every collider expanded by radius in XZ, along the axis of
// least penetration only, so movement slides along walls. Colliders whose top is at or below the
// feet are skipped so the player can stand on them.
//
// Parameters:
//   - pos: candidate position (feet)
//   - colliders: world-space boxes
//   - radius: player radius
//
// Returns:
//   - mgl32.Vec3: the resolved position
func ResolveHorizontal(pos mgl32.Vec3, colliders []common.AABB, radius float32) mgl32.Vec3 {
	for pass := 0; pass < resolvePasses; pass++ {
		moved := false
		for _, c := range colliders {
			if c.Max[1] <= pos[1]+1e-3 {
				continue
			}
			minX, maxX := c.Min[0]-radius, c.Max[0]+radius
			minZ, maxZ := c.Min[2]-radius, c.Max[2]+radius
			if pos[0] <= minX || pos[0] >= maxX || pos[2] <= minZ || pos[2] >= maxZ {
				continue
			}

			left, right := pos[0]-minX, maxX-pos[0]
			back, front := pos[2]-minZ, maxZ-pos[2]
			smallest := min(left, right, back, front)
			switch smallest {
			case left:
				pos[0] = minX
			case right:
				pos[0] = maxX
			case back:
				pos[2] = minZ
			default:
				pos[2] = maxZ
			}
			moved = true
		}
		if !moved {
			break
		}
	}
	return pos
}

// Overlaps reports whether pos lies strictly inside any collider expanded by radius in XZ,
// ignoring colliders at or below the feet.
func Overlaps(pos mgl32.Vec3, colliders []common.AABB, radius float32) bool {
	for _, c := range colliders {
		if c.Max[1] <= pos[1]+1e-3 {
			continue
		}
		if pos[0] > c.Min[0]-radius && pos[0] < c.Max[0]+radius &&
			pos[2] > c.Min[2]-radius && pos[2] < c.Max[2]+radius {
			return true
		}
	}
	return false
}

// PlayerStep reports what the player did this frame.
type PlayerStep struct {
	Moving bool
	Scale  float32
}

// MovePlayer applies one frame of input to the player entity. While moving, the facing yaw
// follows the camera yaw; the visual rotation eases toward the facing at the controller's turn
// speed either way.
//
// Parameters:
//   - r: the registry
//   - player: entity with Transform, FacingDirection and PlayerController
//   - cameraYaw: the follow camera yaw in radians
//   - in: held keys
//   - dt: frame time in seconds
//   - colliders: nearby collision boxes
//   - radius: player radius
//
// Returns:
//   - PlayerStep: whether the player moved and at which gait scale
func MovePlayer(r *ecs.Registry, player ecs.Entity, cameraYaw float32, in MoveInput, dt float32, colliders []common.AABB, radius float32) PlayerStep {
	tr, ok := ecs.Get[ecs.Transform](r, player)
	if !ok {
		return PlayerStep{}
	}
	facing, ok := ecs.Get[ecs.FacingDirection](r, player)
	if !ok {
		return PlayerStep{}
	}
	ctrl, ok := ecs.Get[ecs.PlayerController](r, player)
	if !ok {
		return PlayerStep{}
	}

	dir, scale := MoveDirection(cameraYaw, in)
	step := PlayerStep{Moving: scale > 0, Scale: scale}
	if step.Moving {
		facing.Yaw = cameraYaw
		next := tr.Position.Add(dir.Mul(ctrl.MoveSpeed * dt * scale))
		next = ResolveHorizontal(next, colliders, radius)
		// A gap narrower than the player can trap the resolver between two boxes.
		if !Overlaps(next, colliders, radius) {
			tr.Position = next
		}
	}
	FaceToward(tr, facing.Yaw, ctrl.TurnSpeed, dt)
	return step
}

// FaceToward slerps the transform rotation toward yaw at turnSpeed.
func FaceToward(tr *ecs.Transform, yaw, turnSpeed, dt float32) {
	t := common.Clamp(turnSpeed*dt, 0, 1)
	tr.Rotation = common.Slerp(tr.Rotation, common.YawQuat(yaw), t).Normalize()
}

// CollectColliders gathers the building boxes within radius of center from the spatial index and
// every BoxCollider entity in the registry.
//
// Parameters:
//   - r: the registry
//   - tree: the building index, may be nil
//   - center: query center
//   - radius: query half-size
//   - scratch: reused index buffer, may be nil
//
// Returns:
//   - []common.AABB: the collider boxes
func CollectColliders(r *ecs.Registry, tree *spatial.Octree, center mgl32.Vec3, radius float32, scratch []int) []common.AABB {
	var out []common.AABB
	if tree != nil {
		for _, i := range tree.QueryRadius(center, radius, scratch[:0]) {
			out = append(out, tree.Box(i))
		}
	}
	ecs.Each2(r, func(_ ecs.Entity, tr *ecs.Transform, bc *ecs.BoxCollider) {
		out = append(out, bc.Bounds(tr.Position))
	})
	return out
}
