// Command snowfall runs the snowy-city chase game.
package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/input"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/loader"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/profiler"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/window"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/render"
	"github.com/Carmen-Shannon/oxy-snowfall/game/scenes"
	"go.uber.org/zap"
)

const (
	defaultConfig  = "assets/config.xml"
	headlessDelta  = float32(1.0 / 60)
	headlessFrames = 600
)

func init() {
	// The window, the GPU device and every frame must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", defaultConfig, "path to the XML game configuration")
	frames := flag.Int("frames", headlessFrames, "frames to simulate when Debug.headless is set")
	flag.Parse()

	roots := common.SearchRoots()
	boot, err := common.NewLogger("info", false)
	if err != nil {
		os.Exit(1)
	}
	settings := config.Load(resolve(*configPath, roots), boot)

	logger, err := common.NewLogger(settings.Debug.LogLevel, settings.Debug.DevLogging)
	if err != nil {
		boot.Fatal("failed to create logger", zap.Error(err))
	}
	defer logger.Sync()

	if settings.Debug.Headless {
		runHeadless(logger, &settings, roots, *frames)
		return
	}
	run(logger, &settings, roots)
}

// resolve returns the first search-root match for path, or path itself so that the config loader
// reports the miss and falls back to defaults.
func resolve(path string, roots []string) string {
	if p, err := common.ResolvePath(path, roots); err == nil {
		return p
	}
	return path
}

func run(logger *zap.Logger, settings *config.GameSettings, roots []string) {
	ws := settings.Window
	keys := input.NewState()
	win := window.NewWindow(
		window.WithTitle(ws.Title),
		window.WithSize(ws.Width, ws.Height),
		window.WithFullscreen(ws.Fullscreen),
		window.WithInput(keys),
	)

	device, err := gfx.NewWGPUDevice(win.SurfaceDescriptor(), win.Width(), win.Height(), logger)
	if err != nil {
		logger.Fatal("failed to create graphics device", zap.Error(err))
	}

	ctx, assets := setup(logger, settings, roots, device,
		scenes.WithInput(keys),
		scenes.WithCursor(win),
	)

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithLogger(logger),
		engine.WithProfiling(settings.Debug.Profiler),
		engine.WithRenderFrameLimit(float64(ws.FrameLimit)),
	)
	eng.SetFrameCallback(func(dt float32) {
		ctx.Tick(dt)
		if ctx.State.ShouldQuit {
			eng.Quit()
		}
	})
	eng.SetResizeCallback(ctx.Resize)
	eng.Run()

	assets.Release()
	if err := win.Close(); err != nil {
		logger.Warn("failed to close window", zap.Error(err))
	}
}

// runHeadless drives the scenes at a fixed step against the recording device. It exercises the
// whole frame path without a window or GPU.
func runHeadless(logger *zap.Logger, settings *config.GameSettings, roots []string, frames int) {
	rec := gfx.NewRecorder(settings.Window.Width, settings.Window.Height)
	ctx, assets := setup(logger, settings, roots, rec)
	defer assets.Release()

	prof := profiler.NewProfiler(profiler.WithLogger(logger))
	for i := 0; i < frames && !ctx.State.ShouldQuit; i++ {
		ctx.Tick(headlessDelta)
		if settings.Debug.Profiler {
			prof.Tick()
		}
	}
	logger.Info("headless run finished",
		zap.Int("frames", rec.Frames()),
		zap.Stringer("scene", ctx.Manager.Current()),
	)
}

// setup loads models, fonts and the intro script and builds the scene context on device. Any
// failure is fatal.
func setup(logger *zap.Logger, settings *config.GameSettings, roots []string, device gfx.Device, options ...scenes.ContextBuilderOption) (*scenes.Context, *render.AssetStore) {
	assets := render.NewAssetStore(device,
		render.WithLogger(logger),
		render.WithSearchRoots(append([]string{settings.Graphics.ShadersDir}, roots...)),
	)
	texts, err := text.NewCache(device, text.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to create text cache", zap.Error(err))
	}
	if f := settings.UI.FontFile; f != "" {
		if err := texts.LoadFontFile(text.FontRegular, resolve(f, roots)); err != nil {
			logger.Warn("custom font unavailable, using built-in", zap.String("path", f), zap.Error(err))
		}
	}

	models, err := scenes.LoadModels(loader.NewLoader(loader.WithLogger(logger)), settings, roots)
	if err != nil {
		logger.Fatal("failed to load models", zap.Error(err))
	}

	intro := config.DefaultIntro()
	if settings.Cinematic.Script != "" {
		intro = config.LoadIntro(resolve(settings.Cinematic.Script, roots), logger)
	}

	options = append(options,
		scenes.WithLogger(logger),
		scenes.WithIntro(intro),
	)
	ctx, err := scenes.NewContext(assets, texts, settings, models, options...)
	if err != nil {
		logger.Fatal("failed to initialize game", zap.Error(err))
	}
	if err := ctx.Start(); err != nil {
		logger.Fatal("failed to start main menu", zap.Error(err))
	}
	return ctx, assets
}
