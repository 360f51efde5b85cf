package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/stretchr/testify/assert"
)

func TestPressedIsEdgeTriggered(t *testing.T) {
	s := NewState()
	s.KeyDown(common.KeyW)
	assert.True(t, s.Pressed(common.KeyW))
	assert.True(t, s.Down(common.KeyW))

	s.EndFrame()
	s.KeyDown(common.KeyW) // key repeat
	assert.False(t, s.Pressed(common.KeyW))
	assert.True(t, s.Down(common.KeyW))

	s.KeyUp(common.KeyW)
	assert.False(t, s.Down(common.KeyW))
	s.KeyDown(common.KeyW)
	assert.True(t, s.Pressed(common.KeyW))
}

func TestAnyPressed(t *testing.T) {
	s := NewState()
	assert.False(t, s.AnyPressed())
	s.KeyDown(common.KeyEnter)
	assert.True(t, s.AnyPressed())
	assert.True(t, s.AnyPressed(common.KeyEsc, common.KeyEnter))
	assert.False(t, s.AnyPressed(common.KeyEsc))
	s.EndFrame()
	assert.False(t, s.AnyPressed())
	assert.True(t, s.AnyDown(common.KeyEnter, common.KeyQ))
}

func TestMouseDelta(t *testing.T) {
	s := NewState()
	s.MouseMove(100, 100)
	dx, dy := s.MouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	s.MouseMove(110, 95)
	s.MouseMove(120, 90)
	dx, dy = s.MouseDelta()
	assert.Equal(t, float32(20), dx)
	assert.Equal(t, float32(-10), dy)

	s.EndFrame()
	dx, dy = s.MouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	s.ResetMouse()
	s.MouseMove(0, 0)
	dx, _ = s.MouseDelta()
	assert.Zero(t, dx)
}

func TestClear(t *testing.T) {
	s := NewState()
	s.KeyDown(common.KeyA)
	s.Clear()
	assert.False(t, s.Down(common.KeyA))
	assert.False(t, s.AnyPressed())
}
