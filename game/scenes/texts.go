package scenes

import (
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

// Menu colors.
var (
	colorSelected = mgl32.Vec4{1, 1, 1, 1}
	colorIdle     = mgl32.Vec4{0.55, 0.55, 0.55, 1}
	colorTitle    = mgl32.Vec4{0.9, 0.95, 1, 1}
	colorDanger   = mgl32.Vec4{0.8, 0.1, 0.1, 1}
)

// UI layers.
const (
	layerHUD = iota
	layerMenu
	layerTitle
)

// textSet is a group of UIText entities shown and hidden together by one scene.
type textSet struct {
	entities []ecs.Entity
}

func (t *textSet) add(r *ecs.Registry, ui ecs.UIText) ecs.Entity {
	e := r.Create()
	ecs.Add(r, e, ui)
	t.entities = append(t.entities, e)
	return e
}

func (t *textSet) empty() bool {
	return len(t.entities) == 0
}

func (t *textSet) len() int {
	return len(t.entities)
}

func (t *textSet) at(r *ecs.Registry, i int) *ecs.UIText {
	ui, _ := ecs.Get[ecs.UIText](r, t.entities[i])
	return ui
}

func (t *textSet) setVisible(r *ecs.Registry, visible bool) {
	for _, e := range t.entities {
		if ui, ok := ecs.Get[ecs.UIText](r, e); ok {
			ui.Visible = visible
		}
	}
}

// highlight colors entry selected white and the rest of [from, len) gray.
func (t *textSet) highlight(r *ecs.Registry, from, selected int) {
	for i := from; i < t.len(); i++ {
		ui := t.at(r, i)
		if ui == nil {
			continue
		}
		if i-from == selected {
			ui.Color = colorSelected
		} else {
			ui.Color = colorIdle
		}
	}
}

// wrap steps a cursor by delta over n entries.
func wrap(cursor, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((cursor+delta)%n + n) % n
}
