package scenes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const hudHint = "WASD move   SHIFT sprint   MOUSE look   ESC pause"

// playGame is third-person play: the player walks the city under the follow camera while the
// monsters patrol. Being spotted ends the run.
type playGame struct {
	hud textSet
}

func (s *playGame) OnEnter(ctx *Context) {
	r := ctx.Level.Registry
	if s.hud.empty() {
		s.hud.add(r, ecs.UIText{
			Text:     hudHint,
			FontID:   text.FontRegular,
			FontSize: ctx.Settings.UI.FontSize * 0.75,
			Anchor:   ecs.AnchorBottomLeft,
			Offset:   mgl32.Vec2{20, -20},
			Color:    colorIdle,
			Layer:    layerHUD,
		})
		s.hud.add(r, ecs.UIText{
			FontID:   text.FontBold,
			FontSize: ctx.Settings.UI.FontSize * 0.75,
			Anchor:   ecs.AnchorTopLeft,
			Offset:   mgl32.Vec2{20, 20},
			Color:    colorSelected,
			Layer:    layerHUD,
		})
	}
	if ctx.Manager.Previous() != scene.PauseMenu {
		ctx.Level.Reset()
		ctx.State.Frenzy = false
	}
	s.hud.setVisible(r, ctx.Settings.UI.HUD)
	ctx.setRelativeMouse(true)
}

func (s *playGame) Update(ctx *Context) {
	in := ctx.Input
	if in.Pressed(common.KeyEsc) {
		ctx.Manager.SwitchTo(scene.PauseMenu)
		return
	}
	dt := ctx.DeltaTime
	level := ctx.Level

	if ft := level.Follow(); ft != nil {
		dx, dy := in.MouseDelta()
		camera.Orbit(ft, dx, dy)
	}
	level.MovePlayer(world.MoveInput{
		Forward:  in.Down(common.KeyW),
		Backward: in.Down(common.KeyS),
		Left:     in.Down(common.KeyA),
		Right:    in.Down(common.KeyD),
		Sprint:   in.AnyDown(common.KeyLeftShift, common.KeyRightShift),
	}, dt)
	level.UpdateFollowCamera()
	level.StepPhysics(dt)
	level.Animate(dt)

	res := level.Monsters.Update(level.Registry, level.PlayerPosition(), dt)
	if res.ChaseStarted || res.PlayerCaught {
		ctx.State.ChaseDistance = res.DistanceToPlayer
		ctx.State.DeathFocus = res.Position
		ctx.Logger.Info("player spotted",
			zap.Float32("distance", res.DistanceToPlayer),
			zap.Bool("caught", res.PlayerCaught),
		)
		ctx.Manager.SwitchTo(scene.DeathCinematic)
	}
	level.UpdateLOD(ctx.State)

	if ui := s.hud.at(level.Registry, 1); ui != nil {
		p := level.PlayerPosition()
		ui.Text = fmt.Sprintf("%.0f, %.0f", p[0], p[2])
	}
}

func (s *playGame) Render(ctx *Context) {
	in := ctx.worldFrame()
	in.Minimap = true
	in.Monsters = ctx.Level.MonsterPositions()
	in.ShadowDebug = ctx.Settings.Debug.ShowShadowMap
	ctx.render(in)
}

func (s *playGame) OnExit(ctx *Context) {
	s.hud.setVisible(ctx.Level.Registry, false)
	ctx.setRelativeMouse(false)
}
