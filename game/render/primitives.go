package render

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
)

// UnitBox returns the building box: x and z in [-0.5, 0.5], y in [0, 1], so
// translate(base) · scale(width, height, depth) places a building on its footprint.
func UnitBox() ([]gfx.MeshVertex, []uint32) {
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, 0, 0.5}, {0.5, 0, 0.5}, {0.5, 1, 0.5}, {-0.5, 1, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, 0, -0.5}, {-0.5, 0, -0.5}, {-0.5, 1, -0.5}, {0.5, 1, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, 0, 0.5}, {0.5, 0, -0.5}, {0.5, 1, -0.5}, {0.5, 1, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, 0, -0.5}, {-0.5, 0, 0.5}, {-0.5, 1, 0.5}, {-0.5, 1, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 1, 0.5}, {0.5, 1, 0.5}, {0.5, 1, -0.5}, {-0.5, 1, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, 0, -0.5}, {0.5, 0, -0.5}, {0.5, 0, 0.5}, {-0.5, 0, 0.5}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]gfx.MeshVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, c := range f.corners {
			vertices = append(vertices, gfx.MeshVertex{Position: c, Normal: f.normal, UV: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// Plane returns a square ground plane of the given side centered on the origin, facing +Y, with
// UVs spanning [0, 1] (the shader applies tiling).
func Plane(size float32) ([]gfx.MeshVertex, []uint32) {
	h := size / 2
	up := [3]float32{0, 1, 0}
	vertices := []gfx.MeshVertex{
		{Position: [3]float32{-h, 0, h}, Normal: up, UV: [2]float32{0, 1}},
		{Position: [3]float32{h, 0, h}, Normal: up, UV: [2]float32{1, 1}},
		{Position: [3]float32{h, 0, -h}, Normal: up, UV: [2]float32{1, 0}},
		{Position: [3]float32{-h, 0, -h}, Normal: up, UV: [2]float32{0, 0}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// Billboard returns a quad in the XY plane over [-1, 1]² used by camera-facing sprites.
func Billboard() ([]gfx.MeshVertex, []uint32) {
	n := [3]float32{0, 0, 1}
	vertices := []gfx.MeshVertex{
		{Position: [3]float32{-1, -1, 0}, Normal: n, UV: [2]float32{0, 1}},
		{Position: [3]float32{1, -1, 0}, Normal: n, UV: [2]float32{1, 1}},
		{Position: [3]float32{1, 1, 0}, Normal: n, UV: [2]float32{1, 0}},
		{Position: [3]float32{-1, 1, 0}, Normal: n, UV: [2]float32{0, 0}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// ScreenQuad returns the clip-space quad over [-1, 1]² with UV (0, 0) at the top-left.
func ScreenQuad() ([]gfx.ScreenVertex, []uint32) {
	vertices := []gfx.ScreenVertex{
		{Position: [2]float32{-1, -1}, UV: [2]float32{0, 1}},
		{Position: [2]float32{1, -1}, UV: [2]float32{1, 1}},
		{Position: [2]float32{1, 1}, UV: [2]float32{1, 0}},
		{Position: [2]float32{-1, 1}, UV: [2]float32{0, 0}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}
