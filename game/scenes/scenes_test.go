package scenes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/loader"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/monster"
	"github.com/Carmen-Shannon/oxy-snowfall/game/render"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame float32 = 1.0 / 60

type harness struct {
	ctx *Context
	rec *gfx.Recorder
}

func newHarness(t *testing.T, settings config.GameSettings, options ...ContextBuilderOption) *harness {
	t.Helper()
	rec := gfx.NewRecorder(1280, 720)
	assets := render.NewAssetStore(rec)
	texts, err := text.NewCache(rec)
	require.NoError(t, err)

	models, err := LoadModels(loader.NewLoader(), &settings, nil)
	require.NoError(t, err)

	ctx, err := NewContext(assets, texts, &settings, models, options...)
	require.NoError(t, err)
	require.NoError(t, ctx.Start())
	return &harness{ctx: ctx, rec: rec}
}

func (h *harness) tick(dt float32) {
	h.ctx.Tick(dt)
}

func (h *harness) press(k common.Key) {
	h.ctx.Input.KeyDown(k)
	h.ctx.Tick(frame)
	h.ctx.Input.KeyUp(k)
}

func (h *harness) switchTo(t *testing.T, to scene.Type) {
	t.Helper()
	h.ctx.Manager.SwitchTo(to)
	h.tick(frame)
	require.Equal(t, to, h.ctx.Manager.Current())
}

func (h *harness) uiTextDraws() int {
	n := 0
	for _, c := range h.rec.DrawsIn(render.PassOverlay) {
		if c.ProgramName == render.ProgUIText {
			n++
		}
	}
	return n
}

func TestStartupShowsMainMenuWithDefaults(t *testing.T) {
	settings := config.Load(filepath.Join(t.TempDir(), "missing.xml"), nil)
	assert.Equal(t, 1280, settings.Window.Width)
	assert.Equal(t, float32(3.0), settings.Player.MoveSpeed)
	assert.Equal(t, mgl32.Vec3{0.5, 1.0, 0.3}, settings.Light.Direction)

	h := newHarness(t, settings)
	h.tick(frame)
	require.Equal(t, scene.MainMenu, h.ctx.Manager.Current())

	s, ok := h.ctx.Manager.Scene(scene.MainMenu)
	require.True(t, ok)
	menu := s.(*mainMenu)
	r := h.ctx.Level.Registry
	require.Equal(t, 1+len(menuLabels), menu.texts.len())
	for i, label := range menuLabels {
		ui := menu.texts.at(r, i+1)
		assert.Equal(t, label, ui.Text)
		assert.True(t, ui.Visible)
		if i == 0 {
			assert.Equal(t, colorSelected, ui.Color)
		} else {
			assert.Equal(t, colorIdle, ui.Color)
		}
	}

	assert.Equal(t, []string{render.PassShadow, render.PassMain, render.PassBlit, render.PassOverlay}, h.rec.PassLabels())
	assert.Equal(t, 4, h.uiTextDraws())
}

func TestMenuNavigationAndExit(t *testing.T) {
	h := newHarness(t, config.Default())
	h.tick(frame)
	assert.Equal(t, 0, h.ctx.State.MenuSelection)

	h.press(common.KeyDown)
	h.press(common.KeyDown)
	assert.Equal(t, 2, h.ctx.State.MenuSelection)

	s, _ := h.ctx.Manager.Scene(scene.MainMenu)
	menu := s.(*mainMenu)
	assert.Equal(t, colorSelected, menu.texts.at(h.ctx.Level.Registry, 3).Color)
	assert.Equal(t, colorIdle, menu.texts.at(h.ctx.Level.Registry, 1).Color)

	h.press(common.KeyEnter)
	assert.True(t, h.ctx.State.ShouldQuit)
}

func TestMenuSelectionWraps(t *testing.T) {
	h := newHarness(t, config.Default())
	h.press(common.KeyUp)
	assert.Equal(t, MenuExit, h.ctx.State.MenuSelection)
	h.press(common.KeyDown)
	assert.Equal(t, MenuPlay, h.ctx.State.MenuSelection)

	h.press(common.KeyDown)
	h.press(common.KeyEnter)
	pending, ok := h.ctx.Manager.Pending()
	require.True(t, ok)
	assert.Equal(t, scene.GodMode, pending)
}

func TestChaseTriggersDeathCinematic(t *testing.T) {
	settings := config.Default()
	settings.Monsters.Count = 0
	h := newHarness(t, settings)
	h.switchTo(t, scene.PlayGame)

	level := h.ctx.Level
	m := level.Monsters.Spawn(level.Registry, monster.Data{
		State:       monster.Patrol,
		PatrolStart: mgl32.Vec3{5, 0, 0},
		PatrolEnd:   mgl32.Vec3{15, 0, 0},
		MovingToEnd: true,
	}, ecs.NewTransform(mgl32.Vec3{10, 0, 0}))
	level.SetPlayerPosition(mgl32.Vec3{13, 0, 0})

	h.tick(frame)

	pending, ok := h.ctx.Manager.Pending()
	require.True(t, ok)
	assert.Equal(t, scene.DeathCinematic, pending)
	assert.InDelta(t, 3.0, h.ctx.State.ChaseDistance, 1e-4)

	tr, _ := ecs.Get[ecs.Transform](level.Registry, m)
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, tr.Position)
	data, _ := ecs.Get[monster.Data](level.Registry, m)
	assert.Equal(t, monster.Chase, data.State)

	h.tick(frame)
	require.Equal(t, scene.DeathCinematic, h.ctx.Manager.Current())
	assert.Equal(t, render.PostRadialBlur, h.ctx.Renderer.Stats().Effect)
}

func TestDeathCinematicEndsOnYouDied(t *testing.T) {
	settings := config.Default()
	settings.Monsters.Count = 0
	h := newHarness(t, settings)
	h.ctx.State.ChaseDistance = 3
	h.switchTo(t, scene.DeathCinematic)

	// DeathDuration(3) clamps to the 1.5 s minimum; the switch frame already counted frame.
	for i := 0; i < 3; i++ {
		h.tick(0.5)
	}
	pending, ok := h.ctx.Manager.Pending()
	require.True(t, ok)
	assert.Equal(t, scene.YouDied, pending)

	h.tick(frame)
	require.Equal(t, scene.YouDied, h.ctx.Manager.Current())
	assert.Equal(t, []string{render.PassOverlay}, h.rec.PassLabels())

	h.press(common.KeyW)
	h.tick(frame)
	assert.Equal(t, scene.MainMenu, h.ctx.Manager.Current())
}

func TestDeathDuration(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		want     float32
	}{
		{"clamped low", 3, DeathMinDuration},
		{"proportional", 12, 4},
		{"clamped high", 100, DeathMaxDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DeathDuration(tt.distance), 1e-5)
		})
	}
}

func TestTypewriterThenCinematicThenPlay(t *testing.T) {
	script := config.DefaultIntro()
	script.Lines = []string{"Hello", "Snowing", "Run"}
	h := newHarness(t, config.Default(), WithIntro(script))
	h.ctx.Manager.SwitchTo(scene.IntroText)
	h.tick(0)
	require.Equal(t, scene.IntroText, h.ctx.Manager.Current())

	s, _ := h.ctx.Manager.Scene(scene.IntroText)
	intro := s.(*introText)
	r := h.ctx.Level.Registry

	for i := 0; i < 3; i++ {
		h.tick(TypewriterCharDelay)
	}
	assert.Equal(t, "Hel", intro.texts.at(r, 0).Text)

	for i := 0; i < 2; i++ {
		h.tick(TypewriterCharDelay)
	}
	h.tick(TypewriterLineDelay)
	for i := 0; i < 7; i++ {
		h.tick(TypewriterCharDelay)
	}
	h.tick(TypewriterLineDelay)
	for i := 0; i < 3; i++ {
		h.tick(TypewriterCharDelay)
	}
	assert.Equal(t, "Hello", intro.texts.at(r, 0).Text)
	assert.Equal(t, "Snowing", intro.texts.at(r, 1).Text)
	assert.Equal(t, "Run", intro.texts.at(r, 2).Text)
	_, pending := h.ctx.Manager.Pending()
	assert.False(t, pending)
	assert.Equal(t, []string{render.PassOverlay}, h.rec.PassLabels())

	h.tick(TypewriterEndDelay)
	next, ok := h.ctx.Manager.Pending()
	require.True(t, ok)
	assert.Equal(t, scene.IntroCinematic, next)

	// The default cinematic lasts 3 s.
	for i := 0; i < 5; i++ {
		h.tick(0.5)
		_, pending := h.ctx.Manager.Pending()
		require.False(t, pending, "cinematic ended early at step %d", i)
	}
	assert.Equal(t, render.PostMotionBlur, h.ctx.Renderer.Stats().Effect)
	h.tick(0.5)
	next, ok = h.ctx.Manager.Pending()
	require.True(t, ok)
	assert.Equal(t, scene.PlayGame, next)

	h.tick(frame)
	assert.Equal(t, scene.PlayGame, h.ctx.Manager.Current())
}

func TestIntroTextSkip(t *testing.T) {
	h := newHarness(t, config.Default())
	h.switchTo(t, scene.IntroText)
	h.press(common.KeyEsc)
	next, ok := h.ctx.Manager.Pending()
	require.True(t, ok)
	assert.Equal(t, scene.IntroCinematic, next)
}

func TestPauseTogglesAndResumesWithoutReset(t *testing.T) {
	h := newHarness(t, config.Default())
	h.switchTo(t, scene.PlayGame)
	moved := mgl32.Vec3{2, 0, 0}
	h.ctx.Level.SetPlayerPosition(moved)

	h.press(common.KeyEsc)
	h.tick(frame)
	require.Equal(t, scene.PauseMenu, h.ctx.Manager.Current())
	assert.Equal(t, scene.PlayGame, h.ctx.Manager.Previous())

	fog := h.ctx.State.FogEnabled
	h.press(common.KeyRight)
	assert.Equal(t, !fog, h.ctx.State.FogEnabled)

	for i := 0; i < PauseSnowSpeed; i++ {
		h.press(common.KeyDown)
	}
	speed := h.ctx.State.SnowSpeed
	h.press(common.KeyRight)
	assert.InDelta(t, speed+snowSpeedStep, h.ctx.State.SnowSpeed, 1e-5)

	h.press(common.KeyEsc)
	h.tick(frame)
	require.Equal(t, scene.PlayGame, h.ctx.Manager.Current())
	assert.InDelta(t, moved[0], h.ctx.Level.PlayerPosition()[0], 1e-4)
}

func TestPauseMainMenuEntry(t *testing.T) {
	h := newHarness(t, config.Default())
	h.switchTo(t, scene.PlayGame)
	h.press(common.KeyEsc)
	h.tick(frame)

	h.press(common.KeyUp)
	assert.Equal(t, PauseMainMenu, h.ctx.State.PauseSelection)
	h.press(common.KeyEnter)
	h.tick(frame)
	assert.Equal(t, scene.MainMenu, h.ctx.Manager.Current())
}

func TestAdjustClampsSliders(t *testing.T) {
	st := world.NewGameState(ptr(config.Default()))
	st.SnowAngle = world.SnowAngleMax
	Adjust(st, PauseSnowAngle, 1)
	assert.Equal(t, world.SnowAngleMax, st.SnowAngle)

	st.SnowBlur = world.SnowBlurMin
	Adjust(st, PauseSnowBlur, -1)
	assert.Equal(t, world.SnowBlurMin, st.SnowBlur)

	toon := st.ToonEnabled
	Adjust(st, PauseToon, -1)
	assert.Equal(t, !toon, st.ToonEnabled)
}

func ptr[T any](v T) *T {
	return &v
}

func TestGodModeFrenzyAndPose(t *testing.T) {
	settings := config.Default()
	settings.Monsters.Count = 3
	settings.Debug.PoseFile = filepath.Join(t.TempDir(), "camera_debug.txt")
	h := newHarness(t, settings)
	h.switchTo(t, scene.GodMode)

	h.press(common.KeyF)
	assert.True(t, h.ctx.State.Frenzy)
	for _, e := range h.ctx.Level.Monsters.Monsters() {
		data, ok := ecs.Get[monster.Data](h.ctx.Level.Registry, e)
		require.True(t, ok)
		assert.Equal(t, monster.Chase, data.State)
	}

	start := h.ctx.Level.Camera.Position()
	h.ctx.Input.KeyDown(common.KeyW)
	h.tick(0.1)
	h.ctx.Input.KeyUp(common.KeyW)
	assert.NotEqual(t, start, h.ctx.Level.Camera.Position())

	h.press(common.KeyP)
	data, err := os.ReadFile(settings.Debug.PoseFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "position=")

	// Frenzied monsters never end the run in god mode.
	for i := 0; i < 10; i++ {
		h.tick(0.1)
	}
	assert.Equal(t, scene.GodMode, h.ctx.Manager.Current())
}

func TestStandInModelsWhenPathsAreEmpty(t *testing.T) {
	settings := config.Default()
	models, err := LoadModels(loader.NewLoader(), &settings, nil)
	require.NoError(t, err)
	require.NotNil(t, models.Player)
	assert.False(t, models.Player.Skinned())
	assert.InDelta(t, 1.8, models.Player.Bounds.Max[1], 1e-5)

	settings.Player.Model = "no/such/model.glb"
	_, err = LoadModels(loader.NewLoader(), &settings, []string{t.TempDir()})
	assert.ErrorIs(t, err, common.ErrResourceNotFound)
}

func TestLandmarkSwapsDetailWithDistance(t *testing.T) {
	h := newHarness(t, config.Default())
	level := h.ctx.Level
	lm, ok := ecs.Get[ecs.Transform](level.Registry, level.Landmark)
	require.True(t, ok)

	far := lm.Position.Add(mgl32.Vec3{0, 10, 200})
	level.SetCameraPose(far, lm.Position)
	level.UpdateLOD(h.ctx.State)
	assert.False(t, h.ctx.State.FingHighDetail)
	group, _ := ecs.Get[ecs.MeshGroup](level.Registry, level.Landmark)
	assert.Equal(t, level.landmarkLow.Meshes[0].Handle, group.Meshes[0].Handle)

	near := lm.Position.Add(mgl32.Vec3{0, 10, 30})
	level.SetCameraPose(near, lm.Position)
	level.UpdateLOD(h.ctx.State)
	assert.True(t, h.ctx.State.FingHighDetail)
	group, _ = ecs.Get[ecs.MeshGroup](level.Registry, level.Landmark)
	assert.Equal(t, level.landmarkHigh.Meshes[0].Handle, group.Meshes[0].Handle)
}
