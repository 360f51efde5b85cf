package scene

import (
	"fmt"

	"go.uber.org/zap"
)

// Manager owns the registered scenes and the current-scene pointer. Transitions requested with
// SwitchTo are deferred and applied once, at the start of the next frame; the last request in a
// frame wins.
type Manager[C any] struct {
	scenes     map[Type]Scene[C]
	current    Type
	previous   Type
	pending    Type
	hasPending bool
	cfg        managerConfig
}

// NewManager creates an empty manager.
//
// Parameters:
//   - options: functional options to configure the manager
//
// Returns:
//   - *Manager[C]: the manager with no current scene
func NewManager[C any](options ...ManagerOption) *Manager[C] {
	m := &Manager[C]{
		scenes:   make(map[Type]Scene[C]),
		current:  None,
		previous: None,
		pending:  None,
		cfg:      managerConfig{logger: zap.NewNop()},
	}
	for _, opt := range options {
		opt(&m.cfg)
	}
	return m
}

// Register binds a scene implementation to a type, replacing any earlier one.
func (m *Manager[C]) Register(t Type, s Scene[C]) {
	m.scenes[t] = s
}

// Start makes t current immediately and calls its OnEnter.
//
// Parameters:
//   - t: the initial scene
//   - ctx: the scene context
//
// Returns:
//   - error: an error if no scene is registered for t
func (m *Manager[C]) Start(t Type, ctx C) error {
	s, ok := m.scenes[t]
	if !ok {
		return fmt.Errorf("scene %s is not registered", t)
	}
	m.current = t
	m.cfg.logger.Info("scene started", zap.Stringer("scene", t))
	s.OnEnter(ctx)
	return nil
}

// SwitchTo requests a transition at the start of the next frame.
func (m *Manager[C]) SwitchTo(t Type) {
	m.pending = t
	m.hasPending = true
}

// ProcessPending applies the deferred transition, if any: OnExit of the current scene, swap,
// OnEnter of the new scene. Requests for unregistered scenes are dropped.
//
// Returns:
//   - bool: true if a transition happened
func (m *Manager[C]) ProcessPending(ctx C) bool {
	if !m.hasPending {
		return false
	}
	next := m.pending
	m.hasPending = false
	m.pending = None

	s, ok := m.scenes[next]
	if !ok {
		m.cfg.logger.Warn("dropping transition to unregistered scene", zap.Stringer("scene", next))
		return false
	}
	if cur, ok := m.scenes[m.current]; ok {
		cur.OnExit(ctx)
	}
	m.previous = m.current
	m.current = next
	m.cfg.logger.Info("scene transition", zap.Stringer("from", m.previous), zap.Stringer("to", next))
	if m.cfg.onTransition != nil {
		m.cfg.onTransition(m.previous, next)
	}
	s.OnEnter(ctx)
	return true
}

// Frame runs one tick: pending transition, then Update and Render of the current scene.
func (m *Manager[C]) Frame(ctx C) {
	m.ProcessPending(ctx)
	s, ok := m.scenes[m.current]
	if !ok {
		return
	}
	s.Update(ctx)
	s.Render(ctx)
}

// Current returns the current scene type.
func (m *Manager[C]) Current() Type {
	return m.current
}

// Previous returns the scene that was current before the last transition.
func (m *Manager[C]) Previous() Type {
	return m.previous
}

// Pending returns the requested transition, if any.
func (m *Manager[C]) Pending() (Type, bool) {
	return m.pending, m.hasPending
}

// Scene returns the implementation registered for t.
func (m *Manager[C]) Scene(t Type) (Scene[C], bool) {
	s, ok := m.scenes[t]
	return s, ok
}
