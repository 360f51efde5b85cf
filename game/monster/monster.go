// Package monster runs the patrol and chase behaviour of the monsters roaming the streets.
package monster

import (
	"math"
	"math/rand"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
)

// Behaviour constants. Distances are horizontal (XZ) meters, speeds meters per second.
const (
	PatrolSpeed       float32 = 1.5
	ChaseSpeed                = 10 * PatrolSpeed
	TurnSpeed         float32 = 6
	DetectionRadius   float32 = 8
	EscapeRadius      float32 = 15
	CatchRadius       float32 = 1.2
	EndpointTolerance float32 = 0.5

	// ChaseAnimationSpeed is the animation speed multiplier while chasing.
	ChaseAnimationSpeed float32 = 10
)

// State is the behaviour state of one monster.
type State int

const (
	Patrol State = iota
	Chase
)

func (s State) String() string {
	if s == Chase {
		return "Chase"
	}
	return "Patrol"
}

// Data is the monster component: its state and the street segment it patrols.
type Data struct {
	State       State
	PatrolStart mgl32.Vec3
	PatrolEnd   mgl32.Vec3
	MovingToEnd bool
	GridX       int
	GridZ       int
}

// Midpoint returns the center of the patrol segment.
func (d *Data) Midpoint() mgl32.Vec3 {
	return d.PatrolStart.Add(d.PatrolEnd).Mul(0.5)
}

// Result summarizes one Update.
type Result struct {
	// ChaseStarted is set when a patrolling monster detected the player this frame.
	ChaseStarted bool
	// PlayerCaught is set when a chasing monster reached the player.
	PlayerCaught bool
	// DistanceToPlayer is the distance of the monster that started the chase or caught the player,
	// otherwise of the nearest monster. It is +Inf when there are no monsters.
	DistanceToPlayer float32
	// Position is where the reporting monster stands.
	Position mgl32.Vec3
}

// yawToward returns the yaw whose forward vector points along (dx, dz).
func yawToward(dx, dz float32) float32 {
	return float32(math.Atan2(float64(-dx), float64(-dz)))
}

// PlanPatrols picks count distinct street segments for monsters, skipping segments whose midpoint
// is within clearance of avoid. Selection is deterministic for a seed.
//
// Parameters:
//   - segments: candidate street segments
//   - count: number of monsters wanted
//   - seed: generator seed
//   - avoid: a point to keep monsters away from (the spawn point)
//   - clearance: minimum midpoint distance from avoid
//
// Returns:
//   - []Data: patrol data, at most count entries
func PlanPatrols(segments []world.Segment, count int, seed int64, avoid mgl32.Vec3, clearance float32) []Data {
	var candidates []world.Segment
	for _, s := range segments {
		if common.DistanceXZ(s.Midpoint(), avoid) >= clearance {
			candidates = append(candidates, s)
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	n := min(count, len(candidates))
	out := make([]Data, n)
	for i := 0; i < n; i++ {
		s := candidates[i]
		out[i] = Data{
			State:       Patrol,
			PatrolStart: s.Start,
			PatrolEnd:   s.End,
			MovingToEnd: true,
			GridX:       s.GridX,
			GridZ:       s.GridZ,
		}
	}
	return out
}
