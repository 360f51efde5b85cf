// Package scenes implements the game's scenes (menus, intro, play, god mode, death) on top of the
// engine scene manager. Every scene receives the same *Context.
package scenes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/input"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/scene"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/render"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Cursor switches the mouse between captured (relative) and normal mode.
type Cursor interface {
	SetRelativeMouse(relative bool)
}

// Context is the state every scene reads and mutates during a frame.
type Context struct {
	Logger   *zap.Logger
	Settings *config.GameSettings
	State    *world.GameState
	Input    *input.State
	Cursor   Cursor
	Renderer *render.Orchestrator
	Manager  *scene.Manager[*Context]
	Level    *Level
	Intro    config.IntroScript

	// DeltaTime is the current frame time in seconds.
	DeltaTime float32
}

// NewContext builds the level and the render pipeline, then registers every scene.
//
// Parameters:
//   - assets: the asset store of the graphics device
//   - texts: the text cache, nil disables text
//   - settings: the game settings
//   - models: the actor geometry
//   - options: functional options for the context
//
// Returns:
//   - *Context: the context, not yet started
//   - error: an error if the level or the pipeline cannot be created
func NewContext(assets *render.AssetStore, texts *text.Cache, settings *config.GameSettings, models Models, options ...ContextBuilderOption) (*Context, error) {
	c := &Context{
		Logger:   zap.NewNop(),
		Settings: settings,
		State:    world.NewGameState(settings),
		Intro:    config.DefaultIntro(),
	}
	for _, option := range options {
		option(c)
	}
	if c.Input == nil {
		c.Input = input.NewState()
	}

	level, err := BuildLevel(settings, assets, models, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build level: %w", err)
	}
	c.Level = level

	c.Renderer, err = render.NewOrchestrator(assets, settings, texts,
		render.WithCity(level.Buildings, level.Tree),
		render.WithSamples(settings.Graphics.MSAASamples),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline: %w", err)
	}

	c.Manager = scene.NewManager[*Context](scene.WithLogger(c.Logger))
	Register(c)
	return c, nil
}

// Start enters the main menu.
func (c *Context) Start() error {
	return c.Manager.Start(scene.MainMenu, c)
}

// Tick runs one frame: pending transition, update and render of the current scene, then the input
// edges are cleared.
func (c *Context) Tick(dt float32) {
	c.DeltaTime = dt
	c.State.ElapsedTime += dt
	c.Manager.Frame(c)
	c.Input.EndFrame()
}

// Resize adapts the pipeline and the camera to a new surface size.
func (c *Context) Resize(width, height int) {
	c.Renderer.Resize(width, height)
	c.Level.SetAspect(width, height)
}

func (c *Context) setRelativeMouse(relative bool) {
	if c.Cursor != nil {
		c.Cursor.SetRelativeMouse(relative)
	}
	c.Input.ResetMouse()
}

func (c *Context) render(in render.FrameInput) {
	if err := c.Renderer.RenderFrame(in); err != nil {
		c.Logger.Error("frame failed", zap.Stringer("scene", c.Manager.Current()), zap.Error(err))
	}
}

// worldFrame returns the frame input shared by the scenes that show the city.
func (c *Context) worldFrame() render.FrameInput {
	s := c.State
	return render.FrameInput{
		Registry:  c.Level.Registry,
		Camera:    c.Level.Camera,
		World:     true,
		Focus:     c.Level.PlayerPosition(),
		PlayerYaw: c.Level.PlayerYaw(),
		Time:      s.ElapsedTime,
		Fog:       s.FogEnabled,
		Snow:      s.SnowEnabled,
		SnowSpeed: s.SnowSpeed,
		SnowAngle: s.SnowAngle,
		SnowBlur:  s.SnowBlur,
		Toon:      s.ToonEnabled,
	}
}

// Register binds every scene implementation to its type on the context's manager.
func Register(c *Context) {
	m := c.Manager
	m.Register(scene.MainMenu, &mainMenu{})
	m.Register(scene.IntroText, &introText{})
	m.Register(scene.IntroCinematic, &introCinematic{})
	m.Register(scene.PlayGame, &playGame{})
	m.Register(scene.GodMode, &godMode{})
	m.Register(scene.PauseMenu, &pauseMenu{})
	m.Register(scene.DeathCinematic, &deathCinematic{})
	m.Register(scene.YouDied, &youDied{})
}

// overlayFrame returns a frame input that skips the 3D passes and only draws UI text over background.
func (c *Context) overlayFrame(background mgl32.Vec4) render.FrameInput {
	return render.FrameInput{Registry: c.Level.Registry, ClearColor: background}
}
