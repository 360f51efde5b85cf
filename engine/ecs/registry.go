// Package ecs provides the entity-component registry used by the game: a keyed store per component
// type with joined views over entities that own every requested component.
package ecs

import (
	"reflect"
)

// Entity is an opaque identifier. Ids are allocated monotonically and never reused.
type Entity uint32

// NoEntity is the zero value; Create never returns it.
const NoEntity Entity = 0

// storage is the type-erased view of a component store used by Registry.Destroy.
type storage interface {
	remove(e Entity)
	has(e Entity) bool
	len() int
	list() []Entity
}

// store keeps the components of one type in insertion order. Components are held by pointer so
// references handed to callers survive later insertions.
type store[C any] struct {
	entities []Entity
	items    []*C
	index    map[Entity]int
}

func newStore[C any]() *store[C] {
	return &store[C]{index: make(map[Entity]int)}
}

func (s *store[C]) set(e Entity, c C) *C {
	if i, ok := s.index[e]; ok {
		*s.items[i] = c
		return s.items[i]
	}
	ptr := new(C)
	*ptr = c
	s.index[e] = len(s.items)
	s.entities = append(s.entities, e)
	s.items = append(s.items, ptr)
	return ptr
}

func (s *store[C]) get(e Entity) (*C, bool) {
	i, ok := s.index[e]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// remove deletes e while keeping the remaining entities in insertion order.
func (s *store[C]) remove(e Entity) {
	i, ok := s.index[e]
	if !ok {
		return
	}
	delete(s.index, e)
	copy(s.entities[i:], s.entities[i+1:])
	copy(s.items[i:], s.items[i+1:])
	last := len(s.items) - 1
	s.items[last] = nil
	s.entities = s.entities[:last]
	s.items = s.items[:last]
	for j := i; j < len(s.entities); j++ {
		s.index[s.entities[j]] = j
	}
}

func (s *store[C]) has(e Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *store[C]) len() int {
	return len(s.entities)
}

// Registry owns every component store and the entity allocator.
type Registry struct {
	next   Entity
	alive  map[Entity]struct{}
	stores map[reflect.Type]storage
}

// NewRegistry creates an empty registry.
//
// Returns:
//   - *Registry: the new registry
func NewRegistry() *Registry {
	return &Registry{
		next:   1,
		alive:  make(map[Entity]struct{}),
		stores: make(map[reflect.Type]storage),
	}
}

// Create allocates a fresh entity id.
func (r *Registry) Create() Entity {
	e := r.next
	r.next++
	r.alive[e] = struct{}{}
	return e
}

// Destroy removes every component associated with e. The id is not reclaimed.
func (r *Registry) Destroy(e Entity) {
	for _, s := range r.stores {
		s.remove(e)
	}
	delete(r.alive, e)
}

// Alive reports whether e was created and not yet destroyed.
func (r *Registry) Alive(e Entity) bool {
	_, ok := r.alive[e]
	return ok
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.alive)
}

func storeOf[C any](r *Registry, create bool) *store[C] {
	key := reflect.TypeFor[C]()
	s, ok := r.stores[key]
	if !ok {
		if !create {
			return nil
		}
		typed := newStore[C]()
		r.stores[key] = typed
		return typed
	}
	return s.(*store[C])
}

// Add attaches c to e, replacing any existing component of the same type.
//
// Parameters:
//   - r: the registry
//   - e: the owning entity
//   - c: the component value (copied into the store)
//
// Returns:
//   - *C: a stable reference to the stored component
func Add[C any](r *Registry, e Entity, c C) *C {
	return storeOf[C](r, true).set(e, c)
}

// Get returns e's component of type C.
func Get[C any](r *Registry, e Entity) (*C, bool) {
	s := storeOf[C](r, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// Has reports whether e owns a component of type C.
func Has[C any](r *Registry, e Entity) bool {
	s := storeOf[C](r, false)
	return s != nil && s.has(e)
}

// Remove detaches e's component of type C, if any.
func Remove[C any](r *Registry, e Entity) {
	if s := storeOf[C](r, false); s != nil {
		s.remove(e)
	}
}

// Count returns how many entities own a component of type C.
func Count[C any](r *Registry) int {
	if s := storeOf[C](r, false); s != nil {
		return s.len()
	}
	return 0
}

// driver picks the smallest of the given stores to drive a joined iteration and returns a
// snapshot of its entities, so callbacks may add or remove components safely.
func driver(stores ...storage) []Entity {
	best := stores[0]
	for _, s := range stores[1:] {
		if s.len() < best.len() {
			best = s
		}
	}
	return entitiesOf(best)
}

func entitiesOf(s storage) []Entity {
	src := s.list()
	out := make([]Entity, len(src))
	copy(out, src)
	return out
}

func (s *store[C]) list() []Entity {
	return s.entities
}

// Each calls f for every entity owning an A, in insertion order.
func Each[A any](r *Registry, f func(Entity, *A)) {
	sa := storeOf[A](r, false)
	if sa == nil {
		return
	}
	for _, e := range entitiesOf(sa) {
		if a, ok := sa.get(e); ok {
			f(e, a)
		}
	}
}

// Each2 calls f for every entity owning both an A and a B. The smaller store drives the
// iteration; entities missing either component are skipped.
func Each2[A, B any](r *Registry, f func(Entity, *A, *B)) {
	sa, sb := storeOf[A](r, false), storeOf[B](r, false)
	if sa == nil || sb == nil {
		return
	}
	for _, e := range driver(sa, sb) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		if okA && okB {
			f(e, a, b)
		}
	}
}

// Each3 is Each2 over three component types.
func Each3[A, B, C any](r *Registry, f func(Entity, *A, *B, *C)) {
	sa, sb, sc := storeOf[A](r, false), storeOf[B](r, false), storeOf[C](r, false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, e := range driver(sa, sb, sc) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		c, okC := sc.get(e)
		if okA && okB && okC {
			f(e, a, b, c)
		}
	}
}

// Each4 is Each2 over four component types.
func Each4[A, B, C, D any](r *Registry, f func(Entity, *A, *B, *C, *D)) {
	sa, sb, sc, sd := storeOf[A](r, false), storeOf[B](r, false), storeOf[C](r, false), storeOf[D](r, false)
	if sa == nil || sb == nil || sc == nil || sd == nil {
		return
	}
	for _, e := range driver(sa, sb, sc, sd) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		c, okC := sc.get(e)
		d, okD := sd.get(e)
		if okA && okB && okC && okD {
			f(e, a, b, c, d)
		}
	}
}

// ActiveCamera returns the first entity whose CameraComponent is active.
func ActiveCamera(r *Registry) (Entity, bool) {
	s := storeOf[CameraComponent](r, false)
	if s == nil {
		return NoEntity, false
	}
	for i, e := range s.entities {
		if s.items[i].Active {
			return e, true
		}
	}
	return NoEntity, false
}
