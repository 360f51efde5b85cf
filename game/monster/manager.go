package monster

import (
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/animation"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Manager owns the monster entities and advances their behaviour each frame.
type Manager struct {
	logger    *zap.Logger
	blockSize float32
	frenzy    bool
	monsters  []ecs.Entity
}

// NewManager creates an empty monster manager.
//
// Parameters:
//   - options: functional options for the manager
//
// Returns:
//   - *Manager: the manager
func NewManager(options ...ManagerBuilderOption) *Manager {
	m := &Manager{
		logger:    zap.NewNop(),
		blockSize: 20,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Spawn creates a monster entity with its Data, Transform and FacingDirection. Visual components
// (Renderable, MeshGroup, Skeleton, Animation) are added by the caller.
//
// Parameters:
//   - r: the registry
//   - data: patrol data
//   - tr: initial transform
//
// Returns:
//   - ecs.Entity: the monster entity
func (m *Manager) Spawn(r *ecs.Registry, data Data, tr ecs.Transform) ecs.Entity {
	e := r.Create()
	ecs.Add(r, e, data)
	ecs.Add(r, e, tr)
	ecs.Add(r, e, ecs.FacingDirection{})
	m.monsters = append(m.monsters, e)
	return e
}

// Monsters returns the spawned entities in spawn order.
func (m *Manager) Monsters() []ecs.Entity {
	return m.monsters
}

// Frenzy reports whether every monster is forced into chase.
func (m *Manager) Frenzy() bool {
	return m.frenzy
}

// Update advances every monster by dt toward its patrol endpoint or the player.
//
// A patrolling monster that comes within DetectionRadius switches to Chase and reports
// ChaseStarted without moving that frame. A chasing monster runs at ChaseSpeed, gives up beyond
// EscapeRadius (unless in frenzy) and reports PlayerCaught within CatchRadius. Monsters farther
// than two blocks from the player are hidden.
//
// Parameters:
//   - r: the registry
//   - player: player position
//   - dt: frame time in seconds
//
// Returns:
//   - Result: chase and catch events for this frame
func (m *Manager) Update(r *ecs.Registry, player mgl32.Vec3, dt float32) Result {
	res := Result{DistanceToPlayer: float32(math.Inf(1))}
	reported := false
	hideBeyond := 2 * m.blockSize

	for _, e := range m.monsters {
		data, ok := ecs.Get[Data](r, e)
		if !ok {
			continue
		}
		tr, ok := ecs.Get[ecs.Transform](r, e)
		if !ok {
			continue
		}
		dist := common.DistanceXZ(tr.Position, player)
		if rend, ok := ecs.Get[ecs.Renderable](r, e); ok {
			rend.Visible = dist <= hideBeyond
		}
		if !reported && dist < res.DistanceToPlayer {
			res.DistanceToPlayer = dist
			res.Position = tr.Position
		}

		switch data.State {
		case Patrol:
			if dist < DetectionRadius {
				m.enterChase(r, e, data)
				if !reported {
					res.ChaseStarted = true
					res.DistanceToPlayer = dist
					res.Position = tr.Position
					reported = true
				}
				m.logger.Debug("monster chase started", zap.Uint32("entity", uint32(e)), zap.Float32("distance", dist))
				continue
			}
			m.patrol(r, e, data, tr, dt)

		case Chase:
			if dist > EscapeRadius && !m.frenzy {
				m.enterPatrol(r, e, data)
				m.patrol(r, e, data, tr, dt)
				continue
			}
			if dist < CatchRadius {
				if !reported {
					res.PlayerCaught = true
					res.DistanceToPlayer = dist
					res.Position = tr.Position
					reported = true
				}
				continue
			}
			m.moveToward(r, e, tr, player, ChaseSpeed*dt, dist-CatchRadius*0.5, dt)
		}
	}
	return res
}

func (m *Manager) patrol(r *ecs.Registry, e ecs.Entity, data *Data, tr *ecs.Transform, dt float32) {
	target := data.PatrolStart
	if data.MovingToEnd {
		target = data.PatrolEnd
	}
	d := common.DistanceXZ(tr.Position, target)
	if d <= EndpointTolerance {
		data.MovingToEnd = !data.MovingToEnd
		target = data.PatrolStart
		if data.MovingToEnd {
			target = data.PatrolEnd
		}
		d = common.DistanceXZ(tr.Position, target)
	}
	m.moveToward(r, e, tr, target, PatrolSpeed*dt, d, dt)
}

// moveToward steps at most step (and never more than limit) toward target in XZ and turns to face
// the travel direction.
func (m *Manager) moveToward(r *ecs.Registry, e ecs.Entity, tr *ecs.Transform, target mgl32.Vec3, step, limit, dt float32) {
	dx := target[0] - tr.Position[0]
	dz := target[2] - tr.Position[2]
	d := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	if d < 1e-6 {
		return
	}
	step = min(step, max(limit, 0))
	tr.Position[0] += dx / d * step
	tr.Position[2] += dz / d * step

	yaw := yawToward(dx, dz)
	if facing, ok := ecs.Get[ecs.FacingDirection](r, e); ok {
		facing.Yaw = yaw
	}
	t := common.Clamp(TurnSpeed*dt, 0, 1)
	tr.Rotation = common.Slerp(tr.Rotation, common.YawQuat(yaw), t).Normalize()
}

func (m *Manager) enterChase(r *ecs.Registry, e ecs.Entity, data *Data) {
	data.State = Chase
	if anim, ok := ecs.Get[animation.Animation](r, e); ok {
		anim.SpeedMultiplier = ChaseAnimationSpeed
	}
}

func (m *Manager) enterPatrol(r *ecs.Registry, e ecs.Entity, data *Data) {
	data.State = Patrol
	if anim, ok := ecs.Get[animation.Animation](r, e); ok {
		anim.SpeedMultiplier = 1
	}
}

// ResetAll returns every monster to the midpoint of its patrol segment, heading for the end point
// in Patrol at normal animation speed. Calling it twice is the same as calling it once.
func (m *Manager) ResetAll(r *ecs.Registry) {
	for _, e := range m.monsters {
		data, ok := ecs.Get[Data](r, e)
		if !ok {
			continue
		}
		tr, ok := ecs.Get[ecs.Transform](r, e)
		if !ok {
			continue
		}
		m.enterPatrol(r, e, data)
		data.MovingToEnd = true
		tr.Position = data.Midpoint()

		dir := data.PatrolEnd.Sub(data.PatrolStart)
		yaw := yawToward(dir[0], dir[2])
		tr.Rotation = common.YawQuat(yaw)
		if facing, ok := ecs.Get[ecs.FacingDirection](r, e); ok {
			facing.Yaw = yaw
		}
	}
}

// SetFrenzy forces every monster into Chase (on) or back to Patrol (off). While frenzied monsters
// never give up the chase.
func (m *Manager) SetFrenzy(r *ecs.Registry, on bool) {
	m.frenzy = on
	for _, e := range m.monsters {
		data, ok := ecs.Get[Data](r, e)
		if !ok {
			continue
		}
		if on {
			m.enterChase(r, e, data)
		} else {
			m.enterPatrol(r, e, data)
		}
	}
	m.logger.Info("monster frenzy", zap.Bool("on", on), zap.Int("monsters", len(m.monsters)))
}
