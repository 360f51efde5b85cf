package render

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorPoint(t *testing.T) {
	tests := []struct {
		anchor ecs.Anchor
		want   mgl32.Vec2
	}{
		{ecs.AnchorTopLeft, mgl32.Vec2{0, 0}},
		{ecs.AnchorTopCenter, mgl32.Vec2{400, 0}},
		{ecs.AnchorTopRight, mgl32.Vec2{800, 0}},
		{ecs.AnchorCenterLeft, mgl32.Vec2{0, 300}},
		{ecs.AnchorCenter, mgl32.Vec2{400, 300}},
		{ecs.AnchorCenterRight, mgl32.Vec2{800, 300}},
		{ecs.AnchorBottomLeft, mgl32.Vec2{0, 600}},
		{ecs.AnchorBottomCenter, mgl32.Vec2{400, 600}},
		{ecs.AnchorBottomRight, mgl32.Vec2{800, 600}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnchorPoint(tt.anchor, 800, 600))
	}
}

func TestTextRect(t *testing.T) {
	centered := &ecs.UIText{Anchor: ecs.AnchorCenter, Align: ecs.AlignCenter, Offset: mgl32.Vec2{0, 40}}
	x, y := TextRect(centered, 100, 20, 800, 600)
	assert.Equal(t, float32(350), x)
	assert.Equal(t, float32(330), y)

	corner := &ecs.UIText{Anchor: ecs.AnchorBottomRight, Align: ecs.AlignRight, Offset: mgl32.Vec2{-10, -10}}
	x, y = TextRect(corner, 100, 20, 800, 600)
	assert.Equal(t, float32(690), x)
	assert.Equal(t, float32(570), y)
}

func TestCollectSortsByLayer(t *testing.T) {
	r := ecs.NewRegistry()
	add := func(text string, layer int, visible bool) {
		e := r.Create()
		ecs.Add(r, e, ecs.UIText{Text: text, Layer: layer, Visible: visible})
	}
	add("c", 2, true)
	add("a1", 0, true)
	add("b", 1, true)
	add("hidden", 0, false)
	add("a2", 0, true)
	add("", 0, true)

	l := &TextLayer{}
	var got []string
	for _, item := range l.Collect(r) {
		got = append(got, item.Text)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, got)
}

func TestRectTransformMapsPixelsToClip(t *testing.T) {
	m := rectTransform(0, 0, 800, 600, 800, 600)
	topLeft := m.Mul4x1(mgl32.Vec4{-1, 1, 0, 1})
	bottomRight := m.Mul4x1(mgl32.Vec4{1, -1, 0, 1})
	assert.InDelta(t, -1, topLeft[0], 1e-6)
	assert.InDelta(t, 1, topLeft[1], 1e-6)
	assert.InDelta(t, 1, bottomRight[0], 1e-6)
	assert.InDelta(t, -1, bottomRight[1], 1e-6)

	q := rectTransform(200, 150, 400, 300, 800, 600)
	center := q.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.InDelta(t, 0, center[0], 1e-6)
	require.InDelta(t, 0, center[1], 1e-6)
}
