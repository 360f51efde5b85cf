package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// lookBlendStart is the progress after which the camera turns to the terminal look-at point.
	lookBlendStart float32 = 0.7
	// lookAheadStep is how far along the curve the camera looks before the terminal blend.
	lookAheadStep   float32 = 0.05
	defaultDuration float32 = 3
)

// introCinematic flies the camera along the scripted spline onto the player's shoulder while the
// player turns from the start to the end yaw. Control points and the look-at point are relative to
// the player start.
type introCinematic struct {
	elapsed float32
	points  []mgl32.Vec3
	target  mgl32.Vec3
}

func (s *introCinematic) OnEnter(ctx *Context) {
	ctx.Level.Reset()
	origin := ctx.Settings.Player.Start
	s.points = s.points[:0]
	for _, p := range ctx.Intro.Cinematic.ControlPoints() {
		s.points = append(s.points, origin.Add(p))
	}
	s.target = origin.Add(ctx.Intro.Cinematic.Target())
	s.elapsed = 0
	ctx.setRelativeMouse(false)
	s.pose(ctx, 0)
}

func (s *introCinematic) duration(ctx *Context) float32 {
	if d := ctx.Settings.Cinematic.Duration; d > 0 {
		return d
	}
	return defaultDuration
}

func (s *introCinematic) Update(ctx *Context) {
	if ctx.Input.AnyPressed(common.KeyEnter, common.KeyKeypadEnter, common.KeyEsc) {
		ctx.Manager.SwitchTo(scene.PlayGame)
		return
	}
	s.elapsed += ctx.DeltaTime
	t := common.Clamp(s.elapsed/s.duration(ctx), 0, 1)
	s.pose(ctx, t)
	ctx.Level.Animate(ctx.DeltaTime)
	ctx.Level.UpdateLOD(ctx.State)
	if t >= 1 {
		ctx.Manager.SwitchTo(scene.PlayGame)
	}
}

// pose places the camera and turns the player for linear progress t.
func (s *introCinematic) pose(ctx *Context, t float32) {
	e := camera.SepticInOut(t)
	script := ctx.Intro.Cinematic
	ctx.Level.SetPlayerYaw(common.Radians(common.Lerp(script.StartYaw, script.EndYaw, e)))
	if len(s.points) == 0 {
		return
	}

	pos := camera.CatmullRom(s.points, e)
	ahead := camera.CatmullRom(s.points, min(e+lookAheadStep, 1))
	if ahead.Sub(pos).Len() < 1e-4 {
		ahead = s.target
	}
	blend := camera.Smoothstep(lookBlendStart, 1, t)
	lookAt := common.LerpVec3(ahead, s.target, blend)
	ctx.Level.SetCameraPose(pos, lookAt)
}

func (s *introCinematic) Render(ctx *Context) {
	in := ctx.worldFrame()
	in.MotionBlur = ctx.Settings.Cinematic.MotionBlur
	ctx.render(in)
}

func (s *introCinematic) OnExit(ctx *Context) {}
