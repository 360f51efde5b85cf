package scenes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/loader"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/Carmen-Shannon/oxy-snowfall/game/render"
	"github.com/go-gl/mathgl/mgl32"
)

// Models is the CPU-side geometry of the level's actors.
type Models struct {
	Player       *loader.Model
	Monster      *loader.Model
	LandmarkHigh *loader.Model
	LandmarkLow  *loader.Model
}

// LoadModels imports every configured model on the loader's worker pool. An empty path selects a
// built-in stand-in box; a configured path that cannot be found or parsed is an error.
//
// Parameters:
//   - l: the model loader
//   - s: the game settings
//   - roots: directories searched for relative model paths
//
// Returns:
//   - Models: the imported or stand-in models
//   - error: the first failure, if any
func LoadModels(l *loader.Loader, s *config.GameSettings, roots []string) (Models, error) {
	out := Models{
		Player:       StandIn("player", mgl32.Vec3{0.6, 1.8, 0.4}, mgl32.Vec4{0.2, 0.35, 0.7, 1}),
		Monster:      StandIn("monster", mgl32.Vec3{0.9, 2.4, 0.9}, s.Monsters.Color.Vec4(1)),
		LandmarkHigh: StandIn("landmark_high", s.FingBuilding.HalfExtents.Mul(2), s.FingBuilding.Color.Vec4(1)),
		LandmarkLow:  StandIn("landmark_low", s.FingBuilding.HalfExtents.Mul(2), s.FingBuilding.Color.Vec4(1)),
	}

	slots := []struct {
		path string
		dst  **loader.Model
	}{
		{s.Player.Model, &out.Player},
		{s.Monsters.Model, &out.Monster},
		{s.FingBuilding.HighModel, &out.LandmarkHigh},
		{s.FingBuilding.LowModel, &out.LandmarkLow},
	}
	var paths []string
	resolved := make([]string, len(slots))
	for i, slot := range slots {
		if slot.path == "" {
			continue
		}
		p, err := common.ResolvePath(slot.path, roots)
		if err != nil {
			return Models{}, fmt.Errorf("model %q: %w", slot.path, err)
		}
		resolved[i] = p
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return out, nil
	}

	loaded, err := l.LoadAll(paths)
	if err != nil {
		return Models{}, fmt.Errorf("failed to load models: %w", err)
	}
	for i, slot := range slots {
		if resolved[i] != "" {
			*slot.dst = loaded[resolved[i]]
		}
	}
	return out, nil
}

// StandIn builds an unskinned box model standing on the origin with the given size and color.
func StandIn(name string, size mgl32.Vec3, color mgl32.Vec4) *loader.Model {
	verts, indices := render.UnitBox()
	out := make([]gfx.SkinnedVertex, len(verts))
	for i, v := range verts {
		out[i] = gfx.SkinnedVertex{
			Position: [3]float32{v.Position[0] * size[0], v.Position[1] * size[1], v.Position[2] * size[2]},
			Normal:   v.Normal,
			UV:       v.UV,
		}
	}
	half := size.Mul(0.5)
	return &loader.Model{
		Name: name,
		Meshes: []loader.MeshData{{
			Name:      "body",
			Vertices:  out,
			Indices:   indices,
			BaseColor: color,
		}},
		Bounds: common.AABB{Min: mgl32.Vec3{-half[0], 0, -half[2]}, Max: mgl32.Vec3{half[0], size[1], half[2]}},
	}
}
