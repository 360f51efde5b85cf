package ecs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct{ hp int }
type tag struct{}

func TestCreateIsMonotonic(t *testing.T) {
	r := NewRegistry()
	a := r.Create()
	b := r.Create()
	r.Destroy(a)
	c := r.Create()

	assert.NotEqual(t, NoEntity, a)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.False(t, r.Alive(a))
	assert.True(t, r.Alive(c))
}

func TestAddReplacesAndGet(t *testing.T) {
	r := NewRegistry()
	e := r.Create()

	first := Add(r, e, health{hp: 10})
	second := Add(r, e, health{hp: 20})

	got, ok := Get[health](r, e)
	require.True(t, ok)
	assert.Equal(t, 20, got.hp)
	assert.Same(t, first, second, "replace keeps the stored reference")
	assert.Equal(t, 1, Count[health](r))

	_, ok = Get[tag](r, e)
	assert.False(t, ok)
}

func TestDestroyRemovesAllComponents(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	Add(r, e, health{hp: 1})
	Add(r, e, tag{})
	keep := r.Create()
	Add(r, keep, health{hp: 2})

	r.Destroy(e)

	assert.False(t, Has[health](r, e))
	assert.False(t, Has[tag](r, e))
	got, ok := Get[health](r, keep)
	require.True(t, ok)
	assert.Equal(t, 2, got.hp)
}

func TestEach2VisitsOnlyFullJoin(t *testing.T) {
	r := NewRegistry()
	var both []Entity
	for i := 0; i < 6; i++ {
		e := r.Create()
		Add(r, e, health{hp: i})
		if i%2 == 0 {
			Add(r, e, tag{})
			both = append(both, e)
		}
	}

	var seen []Entity
	Each2(r, func(e Entity, h *health, _ *tag) {
		h.hp += 100
		seen = append(seen, e)
	})
	assert.ElementsMatch(t, both, seen)

	for _, e := range both {
		h, _ := Get[health](r, e)
		assert.GreaterOrEqual(t, h.hp, 100)
	}
}

func TestEachIsStableAndVisitsOnce(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 50; i++ {
		e := r.Create()
		Add(r, e, health{hp: i})
		Add(r, e, NewTransform(mgl32.Vec3{float32(i), 0, 0}))
	}
	r.Destroy(Entity(7))
	Remove[health](r, Entity(20))

	collect := func() []Entity {
		var out []Entity
		Each2(r, func(e Entity, _ *health, _ *Transform) { out = append(out, e) })
		return out
	}
	first := collect()
	second := collect()
	assert.Equal(t, first, second)

	visits := make(map[Entity]int)
	for _, e := range first {
		visits[e]++
	}
	for e, n := range visits {
		assert.Equal(t, 1, n, "entity %d", e)
	}
	assert.Len(t, first, 48)
}

func TestEachToleratesRemovalDuringIteration(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		Add(r, r.Create(), health{hp: i})
	}
	count := 0
	Each(r, func(e Entity, _ *health) {
		count++
		Remove[health](r, e+1)
	})
	assert.Equal(t, 2, count)
}

func TestEach3AndEach4(t *testing.T) {
	r := NewRegistry()
	e := r.Create()
	Add(r, e, health{})
	Add(r, e, tag{})
	Add(r, e, FacingDirection{Yaw: 1})
	Add(r, r.Create(), health{})

	n3 := 0
	Each3(r, func(_ Entity, _ *health, _ *tag, f *FacingDirection) {
		n3++
		f.Yaw = 2
	})
	assert.Equal(t, 1, n3)

	n4 := 0
	Each4(r, func(Entity, *health, *tag, *FacingDirection, *Transform) { n4++ })
	assert.Equal(t, 0, n4)

	f, _ := Get[FacingDirection](r, e)
	assert.Equal(t, float32(2), f.Yaw)
}

func TestActiveCamera(t *testing.T) {
	r := NewRegistry()
	_, ok := ActiveCamera(r)
	assert.False(t, ok)

	Add(r, r.Create(), CameraComponent{FOV: 60})
	want := r.Create()
	Add(r, want, CameraComponent{FOV: 70, Active: true})

	got, ok := ActiveCamera(r)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{1, 2, 3})
	tr.Scale = mgl32.Vec3{2, 2, 2}
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{3, 4, 5, 1}, p)
}
