package loader

import "go.uber.org/zap"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*Loader)

// WithLogger sets the logger used to report loaded assets.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers sets the maximum number of concurrent decode workers.
//
// Parameters:
//   - n: worker count, ignored when not positive
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithModel pre-populates the cache, e.g. with procedurally built models.
func WithModel(key string, m *Model) LoaderBuilderOption {
	return func(l *Loader) {
		l.cache[key] = m
	}
}
