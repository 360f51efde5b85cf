package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWindow replays a fixed list of timestamps, one per loop iteration.
type scriptedWindow struct {
	times    []float64
	i        int
	closed   bool
	onUpdate func()
	onResize func(int, int)
	in       *input.State
}

func (w *scriptedWindow) SetUpdateCallback(cb func())                { w.onUpdate = cb }
func (w *scriptedWindow) SetResizeCallback(cb func(int, int))        { w.onResize = cb }
func (w *scriptedWindow) Input() *input.State                        { return w.in }
func (w *scriptedWindow) SetRelativeMouse(bool)                      {}
func (w *scriptedWindow) Time() float64                              { return w.times[w.i] }
func (w *scriptedWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *scriptedWindow) IsRunning() bool                            { return !w.closed && w.i < len(w.times) }
func (w *scriptedWindow) RequestClose()                              { w.closed = true }
func (w *scriptedWindow) Close() error                               { return nil }
func (w *scriptedWindow) Width() int                                 { return 1280 }
func (w *scriptedWindow) Height() int                                { return 720 }
func (w *scriptedWindow) ProcessMessages() {
	for w.IsRunning() {
		w.onUpdate()
		w.i++
	}
}

func TestRunClampsDeltaAndStops(t *testing.T) {
	w := &scriptedWindow{times: []float64{10, 10.016, 10.032, 12}, in: input.NewState()}
	e := NewEngine(WithWindow(w))

	var deltas []float32
	e.SetFrameCallback(func(dt float32) { deltas = append(deltas, dt) })
	e.Run()

	require.Len(t, deltas, 4)
	assert.Equal(t, float32(0), deltas[0])
	assert.InDelta(t, 0.016, deltas[1], 1e-4)
	assert.InDelta(t, 0.016, deltas[2], 1e-4)
	assert.Equal(t, DefaultMaxDelta, deltas[3])
	assert.Equal(t, uint64(4), e.Frames())
}

func TestQuitClosesAfterCurrentFrame(t *testing.T) {
	w := &scriptedWindow{times: []float64{0, 1, 2, 3}, in: input.NewState()}
	e := NewEngine(WithWindow(w))

	e.SetFrameCallback(func(float32) {
		if e.Frames() == 1 {
			e.Quit()
		}
	})
	e.Run()

	assert.True(t, w.closed)
	assert.Equal(t, uint64(2), e.Frames())
}

func TestResizeIgnoresEmptyFramebuffer(t *testing.T) {
	w := &scriptedWindow{times: []float64{0}, in: input.NewState()}
	e := NewEngine(WithWindow(w))

	var got [][2]int
	e.SetResizeCallback(func(width, height int) { got = append(got, [2]int{width, height}) })
	w.onResize(0, 0)
	w.onResize(800, 600)

	assert.Equal(t, [][2]int{{800, 600}}, got)
}
