package scene

import "go.uber.org/zap"

type managerConfig struct {
	logger       *zap.Logger
	onTransition func(from, to Type)
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

// WithLogger sets the logger used for transition messages.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ManagerOption: a function that sets the logger
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTransitionHook registers a callback invoked after each transition, before OnEnter.
func WithTransitionHook(hook func(from, to Type)) ManagerOption {
	return func(c *managerConfig) {
		c.onTransition = hook
	}
}
