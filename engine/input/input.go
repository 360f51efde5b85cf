// Package input collects window events into a per-frame key and mouse snapshot.
package input

import "github.com/Carmen-Shannon/oxy-snowfall/common"

// State tracks held keys, keys pressed since the last EndFrame, and accumulated mouse motion.
// It is fed from window callbacks and read by scenes; all access happens on the main thread.
type State struct {
	down    map[common.Key]bool
	pressed map[common.Key]bool

	mouseX, mouseY float32
	hasMouse       bool
	dx, dy         float32
}

// NewState creates an empty input state.
//
// Returns:
//   - *State: the state with no keys held
func NewState() *State {
	return &State{
		down:    make(map[common.Key]bool),
		pressed: make(map[common.Key]bool),
	}
}

// KeyDown records a key press. Repeats of an already-held key do not count as new presses.
func (s *State) KeyDown(k common.Key) {
	if !s.down[k] {
		s.pressed[k] = true
	}
	s.down[k] = true
}

// KeyUp records a key release.
func (s *State) KeyUp(k common.Key) {
	delete(s.down, k)
}

// MouseMove records an absolute cursor position and accumulates the delta from the last one.
func (s *State) MouseMove(x, y float32) {
	if s.hasMouse {
		s.dx += x - s.mouseX
		s.dy += y - s.mouseY
	}
	s.mouseX, s.mouseY = x, y
	s.hasMouse = true
}

// ResetMouse forgets the last cursor position so the next move produces no jump.
// Call it when the cursor mode changes.
func (s *State) ResetMouse() {
	s.hasMouse = false
	s.dx, s.dy = 0, 0
}

// Down reports whether the key is currently held.
func (s *State) Down(k common.Key) bool {
	return s.down[k]
}

// Pressed reports whether the key went down during the current frame.
func (s *State) Pressed(k common.Key) bool {
	return s.pressed[k]
}

// AnyDown reports whether any of the given keys is held.
func (s *State) AnyDown(keys ...common.Key) bool {
	for _, k := range keys {
		if s.down[k] {
			return true
		}
	}
	return false
}

// AnyPressed reports whether any key went down during the current frame. With arguments it only
// considers those keys.
func (s *State) AnyPressed(keys ...common.Key) bool {
	if len(keys) == 0 {
		return len(s.pressed) > 0
	}
	for _, k := range keys {
		if s.pressed[k] {
			return true
		}
	}
	return false
}

// MouseDelta returns the cursor motion accumulated during the current frame, in pixels.
func (s *State) MouseDelta() (float32, float32) {
	return s.dx, s.dy
}

// EndFrame clears the per-frame edges and the mouse delta.
func (s *State) EndFrame() {
	clear(s.pressed)
	s.dx, s.dy = 0, 0
}

// Clear releases every key, e.g. when focus is lost or a scene wants a clean slate.
func (s *State) Clear() {
	clear(s.down)
	clear(s.pressed)
	s.dx, s.dy = 0, 0
}
