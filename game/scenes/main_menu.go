package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/go-gl/mathgl/mgl32"
)

// Main menu entries, in display order.
const (
	MenuPlay = iota
	MenuGodMode
	MenuExit
)

var menuLabels = [...]string{
	MenuPlay:    "Play",
	MenuGodMode: "God Mode",
	MenuExit:    "Exit",
}

const (
	menuBrightness  float32 = 0.45
	menuLineSpacing float32 = 56
)

// mainMenu shows the darkened city from a fixed camera under the title and three entries.
type mainMenu struct {
	texts textSet
}

func (m *mainMenu) OnEnter(ctx *Context) {
	r := ctx.Level.Registry
	if m.texts.empty() {
		ui := ctx.Settings.UI
		m.texts.add(r, ecs.UIText{
			Text:     ctx.Settings.Window.Title,
			FontID:   text.FontBold,
			FontSize: ui.TitleFontSize,
			Anchor:   ecs.AnchorTopCenter,
			Align:    ecs.AlignCenter,
			Offset:   mgl32.Vec2{0, 120},
			Color:    colorTitle,
			Layer:    layerTitle,
		})
		for i, label := range menuLabels {
			m.texts.add(r, ecs.UIText{
				Text:     label,
				FontID:   text.FontRegular,
				FontSize: ui.MenuFontSize,
				Anchor:   ecs.AnchorCenter,
				Align:    ecs.AlignCenter,
				Offset:   mgl32.Vec2{0, float32(i) * menuLineSpacing},
				Layer:    layerMenu,
			})
		}
	}
	ctx.State.MenuSelection = MenuPlay
	m.texts.setVisible(r, true)
	m.texts.highlight(r, 1, ctx.State.MenuSelection)

	ctx.setRelativeMouse(false)
	cs := ctx.Settings.Camera
	ctx.Level.SetCameraPose(cs.MenuPosition, cs.MenuTarget)
}

func (m *mainMenu) Update(ctx *Context) {
	in := ctx.Input
	s := ctx.State
	switch {
	case in.Pressed(common.KeyUp):
		s.MenuSelection = wrap(s.MenuSelection, -1, len(menuLabels))
	case in.Pressed(common.KeyDown):
		s.MenuSelection = wrap(s.MenuSelection, 1, len(menuLabels))
	case in.AnyPressed(common.KeyEnter, common.KeyKeypadEnter):
		switch s.MenuSelection {
		case MenuPlay:
			ctx.Manager.SwitchTo(scene.IntroText)
		case MenuGodMode:
			ctx.Manager.SwitchTo(scene.GodMode)
		case MenuExit:
			s.ShouldQuit = true
		}
	}
	m.texts.highlight(ctx.Level.Registry, 1, s.MenuSelection)
	ctx.Level.Animate(ctx.DeltaTime)
}

func (m *mainMenu) Render(ctx *Context) {
	in := ctx.worldFrame()
	in.Toon = false
	in.Brightness = menuBrightness
	ctx.render(in)
}

func (m *mainMenu) OnExit(ctx *Context) {
	m.texts.setVisible(ctx.Level.Registry, false)
}
