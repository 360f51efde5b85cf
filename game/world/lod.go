package world

import (
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/go-gl/mathgl/mgl32"
)

// UpdateLOD switches the landmark between its high and low detail meshes with hysteresis: it drops
// to low detail beyond Distance+Hysteresis and returns to high detail inside Distance-Hysteresis.
//
// Parameters:
//   - state: holds the current detail flag
//   - landmark: landmark position
//   - camera: camera position
//   - lod: thresholds
//
// Returns:
//   - bool: true when the high detail mesh should be drawn
func UpdateLOD(state *GameState, landmark, camera mgl32.Vec3, lod config.LODSettings) bool {
	d := camera.Sub(landmark).Len()
	switch {
	case state.FingHighDetail && d > lod.Distance+lod.Hysteresis:
		state.FingHighDetail = false
	case !state.FingHighDetail && d < lod.Distance-lod.Hysteresis:
		state.FingHighDetail = true
	}
	return state.FingHighDetail
}
