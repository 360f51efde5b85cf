package render

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/spatial"
	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
)

// OrchestratorBuilderOption is a functional option for configuring an Orchestrator.
type OrchestratorBuilderOption func(*Orchestrator)

// WithCity sets the buildings drawn by the instanced renderer and the octree used to cull them.
// Octree indices must be indices into buildings.
func WithCity(buildings []world.BuildingData, tree *spatial.Octree) OrchestratorBuilderOption {
	return func(o *Orchestrator) {
		o.buildings = buildings
		o.tree = tree
	}
}

// WithSamples overrides the main pass sample count from the graphics settings.
func WithSamples(samples int) OrchestratorBuilderOption {
	return func(o *Orchestrator) {
		o.samples = max(samples, 1)
	}
}
