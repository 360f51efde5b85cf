package scenes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
)

// Pause menu entries, in display order.
const (
	PauseFog = iota
	PauseSnow
	PauseToon
	PauseSnowSpeed
	PauseSnowAngle
	PauseSnowBlur
	PauseResume
	PauseMainMenu
	pauseEntries
)

// Slider steps per ←/→ press.
const (
	snowSpeedStep float32 = 0.1
	snowAngleStep float32 = 5
	snowBlurStep  float32 = 0.05

	pauseDim         float32 = 0.55
	pauseLineSpacing float32 = 40
)

// pauseMenu freezes the scene it interrupted behind a dimmed overlay with the render toggles and
// snow sliders. Resume and Escape return to that scene.
type pauseMenu struct {
	texts textSet
}

func (s *pauseMenu) OnEnter(ctx *Context) {
	r := ctx.Level.Registry
	if s.texts.empty() {
		ui := ctx.Settings.UI
		s.texts.add(r, ecs.UIText{
			Text:     "Paused",
			FontID:   text.FontBold,
			FontSize: ui.MenuFontSize,
			Anchor:   ecs.AnchorTopCenter,
			Align:    ecs.AlignCenter,
			Offset:   mgl32.Vec2{0, 100},
			Color:    colorTitle,
			Layer:    layerTitle,
		})
		top := -pauseLineSpacing * float32(pauseEntries-1) / 2
		for i := 0; i < pauseEntries; i++ {
			s.texts.add(r, ecs.UIText{
				FontID:   text.FontRegular,
				FontSize: ui.FontSize,
				Anchor:   ecs.AnchorCenter,
				Align:    ecs.AlignCenter,
				Offset:   mgl32.Vec2{0, top + float32(i)*pauseLineSpacing},
				Layer:    layerMenu,
			})
		}
	}
	ctx.State.PauseSelection = PauseFog
	s.refresh(ctx)
	s.texts.setVisible(r, true)
	ctx.setRelativeMouse(false)
}

func (s *pauseMenu) Update(ctx *Context) {
	in := ctx.Input
	st := ctx.State
	switch {
	case in.Pressed(common.KeyEsc):
		ctx.Manager.SwitchTo(ctx.Manager.Previous())
	case in.Pressed(common.KeyUp):
		st.PauseSelection = wrap(st.PauseSelection, -1, pauseEntries)
	case in.Pressed(common.KeyDown):
		st.PauseSelection = wrap(st.PauseSelection, 1, pauseEntries)
	case in.Pressed(common.KeyLeft):
		Adjust(st, st.PauseSelection, -1)
	case in.Pressed(common.KeyRight):
		Adjust(st, st.PauseSelection, 1)
	case in.AnyPressed(common.KeyEnter, common.KeyKeypadEnter):
		switch st.PauseSelection {
		case PauseResume:
			ctx.Manager.SwitchTo(ctx.Manager.Previous())
		case PauseMainMenu:
			ctx.Manager.SwitchTo(scene.MainMenu)
		default:
			Adjust(st, st.PauseSelection, 1)
		}
	}
	s.refresh(ctx)
}

// Adjust applies one ←/→ step to a pause menu entry: toggles flip, sliders move by their step and
// clamp to their range.
//
// Parameters:
//   - st: the state holding the toggles
//   - entry: the pause menu entry
//   - dir: -1 for left, +1 for right
func Adjust(st *world.GameState, entry, dir int) {
	d := float32(dir)
	switch entry {
	case PauseFog:
		st.FogEnabled = !st.FogEnabled
	case PauseSnow:
		st.SnowEnabled = !st.SnowEnabled
	case PauseToon:
		st.ToonEnabled = !st.ToonEnabled
	case PauseSnowSpeed:
		st.SnowSpeed = common.Clamp(st.SnowSpeed+d*snowSpeedStep, world.SnowSpeedMin, world.SnowSpeedMax)
	case PauseSnowAngle:
		st.SnowAngle = common.Clamp(st.SnowAngle+d*snowAngleStep, world.SnowAngleMin, world.SnowAngleMax)
	case PauseSnowBlur:
		st.SnowBlur = common.Clamp(st.SnowBlur+d*snowBlurStep, world.SnowBlurMin, world.SnowBlurMax)
	}
}

func onOff(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}

// pauseLabels returns the entry texts for the current state.
func pauseLabels(st *world.GameState) [pauseEntries]string {
	return [pauseEntries]string{
		PauseFog:       "Fog: " + onOff(st.FogEnabled),
		PauseSnow:      "Snow: " + onOff(st.SnowEnabled),
		PauseToon:      "Toon: " + onOff(st.ToonEnabled),
		PauseSnowSpeed: fmt.Sprintf("< Snow Speed: %.1f >", st.SnowSpeed),
		PauseSnowAngle: fmt.Sprintf("< Snow Angle: %.0f >", st.SnowAngle),
		PauseSnowBlur:  fmt.Sprintf("< Snow Blur: %.2f >", st.SnowBlur),
		PauseResume:    "Resume",
		PauseMainMenu:  "Main Menu",
	}
}

func (s *pauseMenu) refresh(ctx *Context) {
	r := ctx.Level.Registry
	for i, label := range pauseLabels(ctx.State) {
		s.texts.at(r, i+1).Text = label
	}
	s.texts.highlight(r, 1, ctx.State.PauseSelection)
}

func (s *pauseMenu) Render(ctx *Context) {
	in := ctx.worldFrame()
	in.Dim = pauseDim
	ctx.render(in)
}

func (s *pauseMenu) OnExit(ctx *Context) {
	s.texts.setVisible(ctx.Level.Registry, false)
}
