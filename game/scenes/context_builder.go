package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/input"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"go.uber.org/zap"
)

// ContextBuilderOption is a functional option for configuring a Context.
type ContextBuilderOption func(*Context)

// WithLogger sets the logger used by the level, the pipeline and the scenes.
func WithLogger(logger *zap.Logger) ContextBuilderOption {
	return func(c *Context) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithInput sets the input state the scenes read, normally the window's.
func WithInput(state *input.State) ContextBuilderOption {
	return func(c *Context) {
		c.Input = state
	}
}

// WithCursor sets the cursor switched to relative mode while playing.
func WithCursor(cursor Cursor) ContextBuilderOption {
	return func(c *Context) {
		c.Cursor = cursor
	}
}

// WithIntro replaces the built-in intro script.
func WithIntro(script config.IntroScript) ContextBuilderOption {
	return func(c *Context) {
		c.Intro = script
	}
}
