package scenes

import (
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const godHint = "GOD MODE   WASD fly   E/SPACE up   Q/CTRL down   F frenzy   P save pose   ESC pause"

// godMode flies a free camera through the city without collision. The player stays where it is
// and cannot be caught; F toggles the monster frenzy and P appends the camera pose to the pose
// file.
type godMode struct {
	free  *camera.FreeCamera
	texts textSet
}

func (s *godMode) OnEnter(ctx *Context) {
	r := ctx.Level.Registry
	if s.texts.empty() {
		s.texts.add(r, ecs.UIText{
			Text:     godHint,
			FontID:   text.FontRegular,
			FontSize: ctx.Settings.UI.FontSize * 0.75,
			Anchor:   ecs.AnchorBottomLeft,
			Offset:   mgl32.Vec2{20, -20},
			Color:    colorIdle,
			Layer:    layerHUD,
		})
		s.texts.add(r, ecs.UIText{
			Text:     "FRENZY",
			FontID:   text.FontBold,
			FontSize: ctx.Settings.UI.FontSize,
			Anchor:   ecs.AnchorTopCenter,
			Align:    ecs.AlignCenter,
			Offset:   mgl32.Vec2{0, 20},
			Color:    colorDanger,
			Layer:    layerHUD,
		})
	}
	if ctx.Manager.Previous() != scene.PauseMenu || s.free == nil {
		ctx.Level.Reset()
		ctx.State.Frenzy = false
		pos := ctx.Level.Camera.Position()
		dir := ctx.Level.Camera.Target().Sub(pos)
		yaw, pitch := yawPitch(dir)
		s.free = camera.NewFreeCamera(pos, yaw, pitch, ctx.Settings.Camera.FreeSpeed)
	}
	s.texts.setVisible(r, true)
	s.texts.at(r, 1).Visible = ctx.State.Frenzy
	ctx.setRelativeMouse(true)
}

// yawPitch returns the free camera angles in degrees that look along dir.
func yawPitch(dir mgl32.Vec3) (float32, float32) {
	if dir.Len() < 1e-6 {
		return 0, 0
	}
	dir = dir.Normalize()
	yaw := math.Atan2(float64(-dir[0]), float64(-dir[2]))
	pitch := math.Asin(float64(common.Clamp(dir[1], -1, 1)))
	return float32(yaw * 180 / math.Pi), float32(pitch * 180 / math.Pi)
}

func (s *godMode) Update(ctx *Context) {
	in := ctx.Input
	if in.Pressed(common.KeyEsc) {
		ctx.Manager.SwitchTo(scene.PauseMenu)
		return
	}
	dt := ctx.DeltaTime
	level := ctx.Level

	dx, dy := in.MouseDelta()
	s.free.Look(dx, dy)
	s.free.Move(camera.FreeMoveInput{
		Forward: in.Down(common.KeyW),
		Back:    in.Down(common.KeyS),
		Left:    in.Down(common.KeyA),
		Right:   in.Down(common.KeyD),
		Up:      in.AnyDown(common.KeyE, common.KeySpace),
		Down:    in.AnyDown(common.KeyQ, common.KeyLeftControl, common.KeyRightControl),
		Boost:   in.AnyDown(common.KeyLeftShift, common.KeyRightShift),
	}, dt)
	level.SetCameraPose(s.free.Position, s.free.Target())

	if in.Pressed(common.KeyF) {
		ctx.State.Frenzy = !ctx.State.Frenzy
		level.Monsters.SetFrenzy(level.Registry, ctx.State.Frenzy)
		s.texts.at(level.Registry, 1).Visible = ctx.State.Frenzy
	}
	if in.Pressed(common.KeyP) {
		s.savePose(ctx)
	}

	level.Animate(dt)
	level.Monsters.Update(level.Registry, level.PlayerPosition(), dt)
	level.UpdateLOD(ctx.State)
}

func (s *godMode) savePose(ctx *Context) {
	rec := camera.PoseRecord{
		Time:     time.Now(),
		Position: s.free.Position,
		Target:   s.free.Target(),
		Yaw:      s.free.Yaw,
		Pitch:    s.free.Pitch,
	}
	path := ctx.Settings.Debug.PoseFile
	if err := camera.AppendPose(path, rec); err != nil {
		ctx.Logger.Warn("failed to save camera pose", zap.String("path", path), zap.Error(err))
		return
	}
	ctx.Logger.Info("camera pose saved", zap.String("path", path), zap.Stringer("pose", rec))
}

func (s *godMode) Render(ctx *Context) {
	in := ctx.worldFrame()
	in.Focus = s.free.Position
	ctx.render(in)
}

func (s *godMode) OnExit(ctx *Context) {
	s.texts.setVisible(ctx.Level.Registry, false)
	ctx.setRelativeMouse(false)
}
