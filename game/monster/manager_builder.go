package monster

import "go.uber.org/zap"

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) ManagerBuilderOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithBlockSize sets the city block size; monsters beyond two blocks from the player are hidden.
func WithBlockSize(size float32) ManagerBuilderOption {
	return func(m *Manager) {
		if size > 0 {
			m.blockSize = size
		}
	}
}
