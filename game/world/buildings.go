package world

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/game/config"
	"github.com/go-gl/mathgl/mgl32"
)

// lotMargin is the gap kept between a building and the edge of its lot.
const lotMargin float32 = 0.75

// BuildingData is one generated building. Position is the center of its footprint at ground level.
type BuildingData struct {
	Position mgl32.Vec3
	Width    float32
	Depth    float32
	Height   float32
	GridX    int
	GridZ    int
}

// Bounds returns the building box.
func (b BuildingData) Bounds() common.AABB {
	return common.AABB{
		Min: mgl32.Vec3{b.Position[0] - b.Width/2, b.Position[1], b.Position[2] - b.Depth/2},
		Max: mgl32.Vec3{b.Position[0] + b.Width/2, b.Position[1] + b.Height, b.Position[2] + b.Depth/2},
	}
}

// Matrix returns translate(pos) · scale(width, height, depth), placing the unit box (x and z in
// [-0.5, 0.5], y in [0, 1]) over the footprint.
func (b BuildingData) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(b.Position[0], b.Position[1], b.Position[2]).
		Mul4(mgl32.Scale3D(b.Width, b.Height, b.Depth))
}

// Grid describes the street layout: GridSize × GridSize square blocks separated by streets, centered
// on the origin. Street intersections sit on multiples of the pitch offset by half a block.
type Grid struct {
	Size        int
	BlockSize   float32
	StreetWidth float32
}

// GridFromSettings returns the grid of the building settings.
func GridFromSettings(b config.BuildingSettings) Grid {
	return Grid{Size: max(b.GridSize, 1), BlockSize: b.BlockSize, StreetWidth: b.StreetWidth}
}

// Pitch is the distance between neighbouring block centers.
func (g Grid) Pitch() float32 {
	return g.BlockSize + g.StreetWidth
}

// BlockCenter returns the center of block (x, z).
func (g Grid) BlockCenter(x, z int) mgl32.Vec3 {
	half := float32(g.Size-1) / 2
	return mgl32.Vec3{(float32(x) - half) * g.Pitch(), 0, (float32(z) - half) * g.Pitch()}
}

// Intersection returns street intersection (i, j) for i, j in [0, Size].
func (g Grid) Intersection(i, j int) mgl32.Vec3 {
	half := float32(g.Size) / 2
	return mgl32.Vec3{(float32(i) - half) * g.Pitch(), 0, (float32(j) - half) * g.Pitch()}
}

// Segment is a straight street stretch between two neighbouring intersections.
type Segment struct {
	Start mgl32.Vec3
	End   mgl32.Vec3
	GridX int
	GridZ int
}

// Midpoint returns the segment center.
func (s Segment) Midpoint() mgl32.Vec3 {
	return s.Start.Add(s.End).Mul(0.5)
}

// Segments lists every street segment, first those running along X then those along Z.
func (g Grid) Segments() []Segment {
	var out []Segment
	for j := 0; j <= g.Size; j++ {
		for i := 0; i < g.Size; i++ {
			out = append(out, Segment{Start: g.Intersection(i, j), End: g.Intersection(i+1, j), GridX: i, GridZ: j})
		}
	}
	for i := 0; i <= g.Size; i++ {
		for j := 0; j < g.Size; j++ {
			out = append(out, Segment{Start: g.Intersection(i, j), End: g.Intersection(i, j+1), GridX: i, GridZ: j})
		}
	}
	return out
}

// Extent returns the half-width of the whole grid including the outer streets.
func (g Grid) Extent() float32 {
	return float32(g.Size) / 2 * g.Pitch()
}

// GenerateBuildings fills every block with one to four buildings on a 2×2 lot split, with heights
// and footprints drawn from a generator seeded by the settings. Buildings overlapping any keep-out
// box are dropped. The same settings always produce the same sequence.
//
// Parameters:
//   - b: building settings
//   - keepOut: regions that must stay clear (the landmark, the spawn point)
//
// Returns:
//   - []BuildingData: the buildings in block order
func GenerateBuildings(b config.BuildingSettings, keepOut []common.AABB) []BuildingData {
	g := GridFromSettings(b)
	rng := rand.New(rand.NewSource(b.Seed))
	lot := g.BlockSize / 2
	minFoot := min(max(b.MinFootprint, 1), lot-2*lotMargin)
	maxFoot := lot - 2*lotMargin

	var out []BuildingData
	for z := 0; z < g.Size; z++ {
		for x := 0; x < g.Size; x++ {
			center := g.BlockCenter(x, z)
			// A block is either one large building or a 2×2 lot split.
			if rng.Float32() < 0.3 {
				foot := g.BlockSize - 2*lotMargin
				bd := BuildingData{
					Position: center,
					Width:    foot - rng.Float32()*foot*0.2,
					Depth:    foot - rng.Float32()*foot*0.2,
					Height:   b.MinHeight + rng.Float32()*(b.MaxHeight-b.MinHeight),
					GridX:    x,
					GridZ:    z,
				}
				out = appendClear(out, bd, keepOut)
				continue
			}
			for lz := 0; lz < 2; lz++ {
				for lx := 0; lx < 2; lx++ {
					if rng.Float32() < 0.15 {
						continue
					}
					lotCenter := center.Add(mgl32.Vec3{(float32(lx) - 0.5) * lot, 0, (float32(lz) - 0.5) * lot})
					bd := BuildingData{
						Position: lotCenter,
						Width:    minFoot + rng.Float32()*(maxFoot-minFoot),
						Depth:    minFoot + rng.Float32()*(maxFoot-minFoot),
						Height:   b.MinHeight + rng.Float32()*(b.MaxHeight-b.MinHeight),
						GridX:    x,
						GridZ:    z,
					}
					out = appendClear(out, bd, keepOut)
				}
			}
		}
	}
	return out
}

func appendClear(out []BuildingData, b BuildingData, keepOut []common.AABB) []BuildingData {
	box := b.Bounds()
	for _, k := range keepOut {
		if box.Intersects(k) {
			return out
		}
	}
	return append(out, b)
}

// BuildingBoxes returns the bounds of every building, in order, for the spatial index.
func BuildingBoxes(buildings []BuildingData) []common.AABB {
	out := make([]common.AABB, len(buildings))
	for i, b := range buildings {
		out[i] = b.Bounds()
	}
	return out
}
