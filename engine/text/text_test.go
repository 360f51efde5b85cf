package text

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func newTestCache(t *testing.T, options ...CacheOption) *Cache {
	t.Helper()
	c, err := NewCache(gfx.NewRecorder(640, 480), options...)
	require.NoError(t, err)
	return c
}

func TestRasterizeProducesCoverage(t *testing.T) {
	img, baseline := Rasterize(basicfont.Face7x13, "Play")
	assert.Equal(t, 4*7, img.Width)
	assert.Equal(t, 13, img.Height)
	assert.Equal(t, 11, baseline)
	require.Len(t, img.Pixels, img.Width*img.Height*4)

	var covered int
	for i := 3; i < len(img.Pixels); i += 4 {
		if img.Pixels[i] > 0 {
			covered++
		}
	}
	assert.Positive(t, covered)
}

func TestGetCachesByContent(t *testing.T) {
	c := newTestCache(t)
	a, ok := c.Get("God Mode", FontRegular, 24)
	require.True(t, ok)
	b, ok := c.Get("God Mode", FontRegular, 24)
	require.True(t, ok)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, c.Len())

	big, ok := c.Get("God Mode", FontRegular, 48)
	require.True(t, ok)
	assert.NotEqual(t, a.Texture, big.Texture)
	assert.Greater(t, big.Width, a.Width)
}

func TestGetSkipsUndrawable(t *testing.T) {
	c := newTestCache(t)
	_, ok := c.Get("", FontRegular, 24)
	assert.False(t, ok)
	_, ok = c.Get("hello", "missing", 24)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestFixedFontIgnoresSize(t *testing.T) {
	c := newTestCache(t)
	a, ok := c.Get("N", FontFixed, 10)
	require.True(t, ok)
	assert.Equal(t, 7, a.Width)
	assert.Equal(t, 13, a.Height)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, WithCapacity(2))
	_, _ = c.Get("a", FontFixed, 0)
	_, _ = c.Get("b", FontFixed, 0)
	_, _ = c.Get("a", FontFixed, 0)
	_, _ = c.Get("c", FontFixed, 0)

	assert.Equal(t, 2, c.Len())
	_, hasA := c.entries[Key("a", FontFixed, 0)]
	_, hasB := c.entries[Key("b", FontFixed, 0)]
	assert.True(t, hasA)
	assert.False(t, hasB)
}

func TestKeyDistinguishesFields(t *testing.T) {
	assert.NotEqual(t, Key("ab", "c", 1), Key("a", "bc", 1))
	assert.NotEqual(t, Key("a", "b", 1), Key("a", "b", 2))
	assert.Equal(t, Key("a", "b", 1), Key("a", "b", 1))
}

func TestRegisterFontRejectsGarbage(t *testing.T) {
	c := newTestCache(t)
	assert.Error(t, c.RegisterFont("junk", []byte("not a font")))
}
