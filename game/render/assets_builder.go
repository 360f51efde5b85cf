package render

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/shader"
	"go.uber.org/zap"
)

// AssetStoreBuilderOption is a functional option for configuring an AssetStore.
type AssetStoreBuilderOption func(*AssetStore)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) AssetStoreBuilderOption {
	return func(a *AssetStore) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSearchRoots overrides the directories shader and texture files are resolved against.
func WithSearchRoots(roots []string) AssetStoreBuilderOption {
	return func(a *AssetStore) {
		a.roots = roots
	}
}

// WithPreProcessor replaces the shader pre-processor.
func WithPreProcessor(pp shader.PreProcessor) AssetStoreBuilderOption {
	return func(a *AssetStore) {
		if pp != nil {
			a.pp = pp
		}
	}
}
