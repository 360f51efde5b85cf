package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/profiler"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/window"
	"go.uber.org/zap"
)

// DefaultMaxDelta caps the frame delta so a stall (window drag, breakpoint) does not teleport the
// simulation.
const DefaultMaxDelta float32 = 0.1

// engine implements the Engine interface.
// Everything runs on the thread that owns the window and the graphics device.
type engine struct {
	window window.Window
	logger *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback  func(deltaTime float32)
	resizeCallback func(width, height int)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxDelta         float32

	lastTime float64
	started  bool
	quit     bool
	frames   uint64
}

// Engine is the main entry point for the engine.
// It drives one frame per window message loop iteration: the window pumps events into the input
// state, then the frame callback updates and renders, then the profiler ticks.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called once per frame.
	// The callback updates the active scene and renders it.
	//
	// Parameters:
	//   - callback: function receiving the clamped delta time in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetResizeCallback registers the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of frames driven so far.
	Frames() uint64

	// Run starts the frame loop on the calling thread and blocks until the window closes.
	Run()

	// Quit asks the loop to stop after the current frame.
	// Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:   zap.NewNop(),
		maxDelta: DefaultMaxDelta,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if width <= 0 || height <= 0 {
				return
			}
			if e.resizeCallback != nil {
				e.resizeCallback(width, height)
			}
		})
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.logger.Info("engine started")
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
	e.logger.Info("engine stopped", zap.Uint64("frames", e.frames))
}

func (e *engine) Quit() {
	e.quit = true
}

func (e *engine) Frames() uint64 {
	return e.frames
}

// frame advances one tick: measures and clamps the delta, runs the frame callback, honours a quit
// request, ticks the profiler and applies the frame limit.
func (e *engine) frame() {
	start := time.Now()
	now := e.window.Time()
	var dt float32
	if e.started {
		dt = float32(now - e.lastTime)
	}
	e.started = true
	e.lastTime = now
	if dt < 0 {
		dt = 0
	}
	if dt > e.maxDelta {
		dt = e.maxDelta
	}

	if e.frameCallback != nil {
		e.frameCallback(dt)
	}
	e.frames++

	if e.quit {
		e.window.RequestClose()
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
