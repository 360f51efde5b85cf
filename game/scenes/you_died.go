package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/go-gl/mathgl/mgl32"
)

var deathBackground = mgl32.Vec4{0.08, 0, 0, 1}

// youDied shows the death screen until any key is pressed.
type youDied struct {
	texts textSet
}

func (s *youDied) OnEnter(ctx *Context) {
	r := ctx.Level.Registry
	if s.texts.empty() {
		ui := ctx.Settings.UI
		s.texts.add(r, ecs.UIText{
			Text:     "YOU DIED",
			FontID:   text.FontBold,
			FontSize: ui.TitleFontSize,
			Anchor:   ecs.AnchorCenter,
			Align:    ecs.AlignCenter,
			Color:    colorDanger,
			Layer:    layerTitle,
		})
		s.texts.add(r, ecs.UIText{
			Text:     "press any key",
			FontID:   text.FontRegular,
			FontSize: ui.FontSize,
			Anchor:   ecs.AnchorCenter,
			Align:    ecs.AlignCenter,
			Offset:   mgl32.Vec2{0, ui.TitleFontSize},
			Color:    colorIdle,
			Layer:    layerMenu,
		})
	}
	s.texts.setVisible(r, true)
	ctx.setRelativeMouse(false)
}

func (s *youDied) Update(ctx *Context) {
	if ctx.Input.AnyPressed() {
		ctx.Manager.SwitchTo(scene.MainMenu)
	}
}

func (s *youDied) Render(ctx *Context) {
	ctx.render(ctx.overlayFrame(deathBackground))
}

func (s *youDied) OnExit(ctx *Context) {
	s.texts.setVisible(ctx.Level.Registry, false)
}
