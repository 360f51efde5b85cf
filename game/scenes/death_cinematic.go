package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/game/monster"
	"github.com/go-gl/mathgl/mgl32"
)

// Death cinematic timing.
const (
	SlowMoFactor        float32 = 0.2
	DeathMinDuration    float32 = 1.5
	DeathMaxDuration    float32 = 5.0
	deathHeadHeight     float32 = 1.5
	deathLookBlendSpeed float32 = 3
)

// DeathDuration returns how long the death cinematic lasts: the slowed-down time the monster
// needs to cover the chase distance, clamped to [DeathMinDuration, DeathMaxDuration].
func DeathDuration(chaseDistance float32) float32 {
	return common.Clamp((chaseDistance/monster.ChaseSpeed)/SlowMoFactor, DeathMinDuration, DeathMaxDuration)
}

// deathCinematic plays the monster's charge in slow motion under a radial blur while the player
// stands frozen and the camera turns toward the monster.
type deathCinematic struct {
	elapsed  float32
	duration float32
	eye      mgl32.Vec3
	look     mgl32.Vec3
}

func (s *deathCinematic) OnEnter(ctx *Context) {
	s.elapsed = 0
	s.duration = DeathDuration(ctx.State.ChaseDistance)
	s.eye = ctx.Level.Camera.Position()
	s.look = ctx.Level.Camera.Target()
	ctx.setRelativeMouse(false)
}

func (s *deathCinematic) Update(ctx *Context) {
	dt := ctx.DeltaTime
	slow := dt * SlowMoFactor
	level := ctx.Level

	player := level.PlayerPosition()
	level.Monsters.Update(level.Registry, player, slow)
	level.Animate(slow)

	if m, ok := level.NearestMonster(player); ok {
		focus := m.Add(mgl32.Vec3{0, deathHeadHeight, 0})
		s.look = common.LerpVec3(s.look, focus, common.Clamp(deathLookBlendSpeed*dt, 0, 1))
	}
	level.SetCameraPose(s.eye, s.look)

	s.elapsed += dt
	if s.elapsed >= s.duration {
		ctx.Manager.SwitchTo(scene.YouDied)
	}
}

func (s *deathCinematic) Render(ctx *Context) {
	in := ctx.worldFrame()
	in.RadialBlur = true
	ctx.render(in)
}

func (s *deathCinematic) OnExit(ctx *Context) {}
