package render

import (
	"math"

	"github.com/Carmen-Shannon/oxy-snowfall/game/world"
	"github.com/go-gl/mathgl/mgl32"
)

// Minimap colors.
var (
	minimapBackground = mgl32.Vec4{0.05, 0.07, 0.1, 0.65}
	minimapBorder     = mgl32.Vec4{0.85, 0.9, 1, 0.9}
	minimapBuilding   = mgl32.Vec4{0.55, 0.6, 0.68, 0.85}
	minimapMonster    = mgl32.Vec4{0.9, 0.15, 0.1, 1}
	minimapPlayer     = mgl32.Vec4{1, 1, 1, 1}
	minimapLetter     = mgl32.Vec4{0.9, 0.95, 1, 1}
)

const (
	minimapMargin     float32 = 20
	minimapMarkerSize float32 = 4
	minimapLetterPad  float32 = 12
	minimapRingInner  float32 = 0.96
)

// Shape is one flat overlay quad.
type Shape struct {
	Transform mgl32.Mat4
	Color     mgl32.Vec4
	Kind      float32
	Inner     float32
}

// Label is a string centered on a pixel position.
type Label struct {
	Text     string
	Position mgl32.Vec2
}

// Minimap is the top-down map in the top-right corner. The view is rotated so the player's
// heading points up.
type Minimap struct {
	// Radius of the map disk in pixels.
	Radius float32
	// WorldRadius is the world distance shown from the center to the edge.
	WorldRadius float32

	shapes []Shape
	labels []Label
}

// Scale returns pixels per world unit.
func (m *Minimap) Scale() float32 {
	if m.WorldRadius <= 0 {
		return 1
	}
	return m.Radius / m.WorldRadius
}

// Center returns the pixel center of the map disk.
func (m *Minimap) Center(width, height int) mgl32.Vec2 {
	return mgl32.Vec2{float32(width) - minimapMargin - m.Radius, minimapMargin + m.Radius}
}

// rotate expresses a world XZ offset in map axes: x along the player's right and up along the
// player's forward.
func rotate(rel mgl32.Vec3, yaw float32) mgl32.Vec2 {
	s, c := float32(math.Sin(float64(yaw))), float32(math.Cos(float64(yaw)))
	right := mgl32.Vec2{c, -s}
	forward := mgl32.Vec2{-s, -c}
	xz := mgl32.Vec2{rel[0], rel[2]}
	return mgl32.Vec2{xz.Dot(right), xz.Dot(forward)}
}

// Project returns the pixel offset from the map center of a world position, y down. Offsets
// beyond the disk are pulled back onto its edge.
//
// Returns:
//   - mgl32.Vec2: the pixel offset
//   - bool: true when the position had to be clamped
func (m *Minimap) Project(player, p mgl32.Vec3, yaw float32) (mgl32.Vec2, bool) {
	r := rotate(p.Sub(player), yaw).Mul(m.Scale())
	offset := mgl32.Vec2{r[0], -r[1]}
	limit := m.Radius - minimapMarkerSize
	if d := offset.Len(); d > limit && d > 0 {
		return offset.Mul(limit / d), true
	}
	return offset, false
}

// Build lays out the map for a frame.
//
// Parameters:
//   - player: player position
//   - yaw: player heading
//   - buildings: building footprints; those whose center is beyond WorldRadius are skipped
//   - monsters: monster positions, clamped to the disk
//   - width, height: surface size in pixels
//
// Returns:
//   - []Shape: flat quads in draw order
//   - []Label: cardinal letters
func (m *Minimap) Build(player mgl32.Vec3, yaw float32, buildings []world.BuildingData, monsters []mgl32.Vec3, width, height int) ([]Shape, []Label) {
	m.shapes = m.shapes[:0]
	m.labels = m.labels[:0]
	c := m.Center(width, height)
	scale := m.Scale()
	disk := func(center mgl32.Vec2, radius float32) mgl32.Mat4 {
		return quadTransform(center, mgl32.Vec2{radius, 0}, mgl32.Vec2{0, -radius}, width, height)
	}

	m.shapes = append(m.shapes, Shape{Transform: disk(c, m.Radius), Color: minimapBackground, Kind: ShapeDisk})

	// World +X and +Z in pixel axes (y down).
	ax := rotate(mgl32.Vec3{1, 0, 0}, yaw)
	az := rotate(mgl32.Vec3{0, 0, 1}, yaw)
	ax[1], az[1] = -ax[1], -az[1]
	for i := range buildings {
		b := &buildings[i]
		if b.Position.Sub(player).Len() > m.WorldRadius {
			continue
		}
		offset, clamped := m.Project(player, b.Position, yaw)
		if clamped {
			continue
		}
		m.shapes = append(m.shapes, Shape{
			Transform: quadTransform(c.Add(offset), ax.Mul(b.Width/2*scale), az.Mul(b.Depth/2*scale), width, height),
			Color:     minimapBuilding,
			Kind:      ShapeRect,
		})
	}
	for _, p := range monsters {
		offset, _ := m.Project(player, p, yaw)
		m.shapes = append(m.shapes, Shape{Transform: disk(c.Add(offset), minimapMarkerSize), Color: minimapMonster, Kind: ShapeDisk})
	}
	m.shapes = append(m.shapes,
		Shape{Transform: disk(c, minimapMarkerSize+1), Color: minimapPlayer, Kind: ShapeDisk},
		Shape{Transform: disk(c, m.Radius), Color: minimapBorder, Kind: ShapeRing, Inner: minimapRingInner},
	)

	cardinals := []struct {
		text string
		dir  mgl32.Vec3
	}{
		{"N", mgl32.Vec3{0, 0, -1}},
		{"E", mgl32.Vec3{1, 0, 0}},
		{"S", mgl32.Vec3{0, 0, 1}},
		{"W", mgl32.Vec3{-1, 0, 0}},
	}
	for _, card := range cardinals {
		d := rotate(card.dir, yaw)
		pos := c.Add(mgl32.Vec2{d[0], -d[1]}.Mul(m.Radius + minimapLetterPad))
		m.labels = append(m.labels, Label{Text: card.text, Position: pos})
	}
	return m.shapes, m.labels
}
