package render

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/text"
	"github.com/go-gl/mathgl/mgl32"
)

// Shapes drawn by the flat color overlay program.
const (
	ShapeRect float32 = 0
	ShapeDisk float32 = 1
	ShapeRing float32 = 2
)

// quadTransform maps the [-1, 1] screen quad onto pixel space. center is the quad center in
// pixels (origin top-left, y down); u and v are the half axes the quad's local +x and +y map to.
func quadTransform(center, u, v mgl32.Vec2, width, height int) mgl32.Mat4 {
	sx := 2 / float32(width)
	sy := -2 / float32(height)
	return mgl32.Mat4{
		u[0] * sx, u[1] * sy, 0, 0,
		v[0] * sx, v[1] * sy, 0, 0,
		0, 0, 1, 0,
		center[0]*sx - 1, center[1]*sy + 1, 0, 1,
	}
}

// rectTransform maps the screen quad onto an axis-aligned pixel rectangle with its top-left corner
// at (x, y).
func rectTransform(x, y, w, h float32, width, height int) mgl32.Mat4 {
	return quadTransform(mgl32.Vec2{x + w/2, y + h/2}, mgl32.Vec2{w / 2, 0}, mgl32.Vec2{0, -h / 2}, width, height)
}

// AnchorPoint returns the pixel position of a screen anchor.
func AnchorPoint(a ecs.Anchor, width, height int) mgl32.Vec2 {
	w, h := float32(width), float32(height)
	col := int(a) % 3
	row := int(a) / 3
	return mgl32.Vec2{w * float32(col) / 2, h * float32(row) / 2}
}

// TextRect returns the top-left pixel corner of a text element of the given size. The anchor row
// aligns the text vertically (top, middle, bottom); Align places it horizontally around the anchor
// point. Offset is added in pixels with y down.
func TextRect(t *ecs.UIText, w, h float32, width, height int) (float32, float32) {
	p := AnchorPoint(t.Anchor, width, height).Add(t.Offset)
	x, y := p[0], p[1]
	switch t.Align {
	case ecs.AlignCenter:
		x -= w / 2
	case ecs.AlignRight:
		x -= w
	}
	switch int(t.Anchor) / 3 {
	case 1:
		y -= h / 2
	case 2:
		y -= h
	}
	return x, y
}

// TextLayer draws UIText components and free strings through the text cache.
type TextLayer struct {
	device  gfx.Device
	cache   *text.Cache
	program gfx.Program
	quad    gfx.Mesh
	items   []*ecs.UIText
}

// NewTextLayer creates a text layer drawing with the ui_text program over the screen quad.
func NewTextLayer(device gfx.Device, cache *text.Cache, program gfx.Program, quad gfx.Mesh) *TextLayer {
	return &TextLayer{device: device, cache: cache, program: program, quad: quad}
}

// Collect returns the visible non-empty text elements sorted by Layer ascending. Elements on the
// same layer keep registry order.
func (l *TextLayer) Collect(r *ecs.Registry) []*ecs.UIText {
	l.items = l.items[:0]
	ecs.Each(r, func(_ ecs.Entity, t *ecs.UIText) {
		if t.Visible && t.Text != "" {
			l.items = append(l.items, t)
		}
	})
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].Layer < l.items[j].Layer
	})
	return l.items
}

// Render draws every visible UIText of r into the open overlay pass.
//
// Returns:
//   - int: the number of strings drawn
func (l *TextLayer) Render(r *ecs.Registry, width, height int) int {
	if l.cache == nil || r == nil {
		return 0
	}
	drawn := 0
	for _, t := range l.Collect(r) {
		entry, ok := l.cache.Get(t.Text, fontOr(t.FontID), t.FontSize)
		if !ok {
			continue
		}
		w, h := float32(entry.Width), float32(entry.Height)
		x, y := TextRect(t, w, h, width, height)
		l.draw(entry, rectTransform(x, y, w, h, width, height), t.Color)
		drawn++
	}
	return drawn
}

// DrawString draws s centered on a pixel position.
func (l *TextLayer) DrawString(s, fontID string, size float32, center mgl32.Vec2, color mgl32.Vec4, width, height int) {
	if l.cache == nil {
		return
	}
	entry, ok := l.cache.Get(s, fontOr(fontID), size)
	if !ok {
		return
	}
	w, h := float32(entry.Width), float32(entry.Height)
	l.draw(entry, rectTransform(center[0]-w/2, center[1]-h/2, w, h, width, height), color)
}

func (l *TextLayer) draw(entry text.Entry, transform mgl32.Mat4, color mgl32.Vec4) {
	u := GPUQuadUniform{Transform: transform, Color: color}
	l.device.Draw(gfx.DrawCall{
		Program:  l.program,
		Mesh:     l.quad,
		Uniforms: bytesOf(&u),
		Textures: []gfx.Texture{entry.Texture},
	})
}

func fontOr(id string) string {
	if id == "" {
		return text.FontRegular
	}
	return id
}
