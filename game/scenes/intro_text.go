package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/go-gl/mathgl/mgl32"
)

// Typewriter timing in seconds.
const (
	TypewriterCharDelay float32 = 0.04
	TypewriterLineDelay float32 = 0.5
	TypewriterEndDelay  float32 = 2.0

	// timerSlack absorbs float rounding when comparing the accumulated timer to a delay.
	timerSlack float32 = 1e-5
	lineHeight float32 = 44
)

var black = mgl32.Vec4{0, 0, 0, 1}

// introText types the intro lines one character at a time on a black screen, then moves on to
// the intro cinematic.
type introText struct {
	lines [][]rune
	texts textSet
	line  int
	shown int
	timer float32
}

func (s *introText) OnEnter(ctx *Context) {
	r := ctx.Level.Registry
	if s.texts.empty() {
		n := len(ctx.Intro.Lines)
		top := -lineHeight * float32(n-1) / 2
		for i, l := range ctx.Intro.Lines {
			s.lines = append(s.lines, []rune(l))
			s.texts.add(r, ecs.UIText{
				FontID:   text.FontRegular,
				FontSize: ctx.Settings.UI.FontSize,
				Anchor:   ecs.AnchorCenter,
				Align:    ecs.AlignCenter,
				Offset:   mgl32.Vec2{0, top + float32(i)*lineHeight},
				Color:    colorTitle,
				Layer:    layerTitle,
			})
		}
	}
	s.line, s.shown, s.timer = 0, 0, 0
	for i := 0; i < s.texts.len(); i++ {
		s.texts.at(r, i).Text = ""
	}
	s.texts.setVisible(r, true)
	ctx.setRelativeMouse(false)
}

func (s *introText) Update(ctx *Context) {
	if ctx.Input.AnyPressed(common.KeyEnter, common.KeyKeypadEnter, common.KeyEsc) {
		ctx.Manager.SwitchTo(scene.IntroCinematic)
		return
	}
	s.timer += ctx.DeltaTime
	if s.advance() {
		ctx.Manager.SwitchTo(scene.IntroCinematic)
	}
	r := ctx.Level.Registry
	for i := range s.lines {
		ui := s.texts.at(r, i)
		switch {
		case i < s.line:
			ui.Text = string(s.lines[i])
		case i == s.line:
			ui.Text = string(s.lines[i][:s.shown])
		default:
			ui.Text = ""
		}
	}
}

// advance consumes the accumulated timer: one character per TypewriterCharDelay, a
// TypewriterLineDelay pause after each line but the last, and a TypewriterEndDelay pause at the
// end. It reports true once the final pause has elapsed.
func (s *introText) advance() bool {
	for {
		if s.line >= len(s.lines) {
			return true
		}
		var delay float32
		last := s.line == len(s.lines)-1
		switch {
		case s.shown < len(s.lines[s.line]):
			delay = TypewriterCharDelay
		case last:
			delay = TypewriterEndDelay
		default:
			delay = TypewriterLineDelay
		}
		if s.timer+timerSlack < delay {
			return false
		}
		s.timer = max(s.timer-delay, 0)
		switch {
		case s.shown < len(s.lines[s.line]):
			s.shown++
		case last:
			return true
		default:
			s.line++
			s.shown = 0
		}
	}
}

func (s *introText) Render(ctx *Context) {
	ctx.render(ctx.overlayFrame(black))
}

func (s *introText) OnExit(ctx *Context) {
	s.texts.setVisible(ctx.Level.Registry, false)
}
