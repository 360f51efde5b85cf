// Package text rasterizes UI strings into GPU textures and caches them by content.
package text

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"strconv"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Built-in font ids.
const (
	FontRegular = "regular"
	FontBold    = "bold"
	// FontFixed is the 7x13 bitmap face; it ignores the requested size.
	FontFixed = "fixed"
)

// DefaultCapacity is the number of rasterized strings kept before the least recently used is evicted.
const DefaultCapacity = 256

// ErrUnknownFont is returned when a font id has not been registered.
var ErrUnknownFont = errors.New("text: unknown font")

// Entry is a rasterized string resident on the GPU. Pixels are white with coverage in alpha so
// the shader can tint them.
type Entry struct {
	Texture gfx.Texture
	Width   int
	Height  int
	// Baseline is the distance in pixels from the top of the texture to the text baseline.
	Baseline int
}

type cached struct {
	entry    Entry
	lastUsed uint64
}

type faceKey struct {
	font string
	size float32
}

// Cache owns the text textures it creates. It is not safe for concurrent use.
type Cache struct {
	device   gfx.Device
	logger   *zap.Logger
	capacity int

	fonts   map[string]*opentype.Font
	faces   map[faceKey]font.Face
	entries map[uint64]*cached
	clock   uint64
}

// CacheOption configures a Cache.
type CacheOption func(c *Cache)

// WithLogger sets the logger used for rasterization failures.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCapacity sets the maximum number of cached strings.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewCache creates a text cache uploading through device, with the Go fonts registered as
// FontRegular and FontBold.
//
// Parameters:
//   - device: the graphics device textures are created on
//   - options: functional options to configure the cache
//
// Returns:
//   - *Cache: the cache
//   - error: an error if a built-in font fails to parse
func NewCache(device gfx.Device, options ...CacheOption) (*Cache, error) {
	c := &Cache{
		device:   device,
		logger:   zap.NewNop(),
		capacity: DefaultCapacity,
		fonts:    make(map[string]*opentype.Font),
		faces:    make(map[faceKey]font.Face),
		entries:  make(map[uint64]*cached),
	}
	for _, opt := range options {
		opt(c)
	}
	if err := c.RegisterFont(FontRegular, goregular.TTF); err != nil {
		return nil, err
	}
	if err := c.RegisterFont(FontBold, gobold.TTF); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterFont parses TrueType or OpenType data and makes it available under id.
//
// Parameters:
//   - id: the font id used by UIText components
//   - data: the font file contents
//
// Returns:
//   - error: an error if the data cannot be parsed
func (c *Cache) RegisterFont(id string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %q: %w", id, err)
	}
	c.fonts[id] = f
	for k, face := range c.faces {
		if k.font == id {
			face.Close()
			delete(c.faces, k)
		}
	}
	return nil
}

// LoadFontFile reads a font file from disk and registers it under id.
func (c *Cache) LoadFontFile(id, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font %s: %w", path, err)
	}
	return c.RegisterFont(id, data)
}

// Face returns the face for a font id at a pixel size, creating it on first use.
func (c *Cache) Face(id string, size float32) (font.Face, error) {
	if id == FontFixed {
		return basicfont.Face7x13, nil
	}
	if size <= 0 {
		size = 16
	}
	key := faceKey{font: id, size: size}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	f, ok := c.fonts[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownFont)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face %q at %v: %w", id, size, err)
	}
	c.faces[key] = face
	return face, nil
}

// Get returns the texture for a string, rasterizing and uploading it on a miss. Empty strings and
// unknown fonts are reported with ok == false so the caller can skip the element.
//
// Parameters:
//   - s: the text
//   - fontID: a registered font id
//   - size: the font size in pixels
//
// Returns:
//   - Entry: the cached texture and its pixel size
//   - bool: false if nothing can be drawn
func (c *Cache) Get(s, fontID string, size float32) (Entry, bool) {
	if s == "" {
		return Entry{}, false
	}
	c.clock++
	key := Key(s, fontID, size)
	if e, ok := c.entries[key]; ok {
		e.lastUsed = c.clock
		return e.entry, true
	}

	face, err := c.Face(fontID, size)
	if err != nil {
		c.logger.Warn("skipping text", zap.String("font", fontID), zap.Error(err))
		return Entry{}, false
	}
	img, baseline := Rasterize(face, s)
	tex, err := c.device.CreateTexture("text:"+s, img)
	if err != nil {
		c.logger.Warn("failed to upload text", zap.String("text", s), zap.Error(err))
		return Entry{}, false
	}

	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	entry := Entry{Texture: tex, Width: img.Width, Height: img.Height, Baseline: baseline}
	c.entries[key] = &cached{entry: entry, lastUsed: c.clock}
	return entry, true
}

// Len returns the number of cached strings.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Release frees every cached texture.
func (c *Cache) Release() {
	for k, e := range c.entries {
		c.device.ReleaseTexture(e.entry.Texture)
		delete(c.entries, k)
	}
	for k, face := range c.faces {
		face.Close()
		delete(c.faces, k)
	}
}

func (c *Cache) evictOldest() {
	var oldestKey uint64
	oldest := uint64(math.MaxUint64)
	for k, e := range c.entries {
		if e.lastUsed < oldest {
			oldest = e.lastUsed
			oldestKey = k
		}
	}
	if e, ok := c.entries[oldestKey]; ok {
		c.device.ReleaseTexture(e.entry.Texture)
		delete(c.entries, oldestKey)
	}
}

// Key hashes the identity of a rasterized string.
func Key(s, fontID string, size float32) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(fontID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatFloat(float64(size), 'g', -1, 32))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(s)
	return d.Sum64()
}

// Measure returns the pixel size a string occupies when rasterized with face.
func Measure(face font.Face, s string) (int, int) {
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	return max(w, 1), max(h, 1)
}

// Rasterize draws a single line of text in white onto a transparent image sized to fit it.
//
// Returns:
//   - common.ImageData: the RGBA pixels
//   - int: the baseline offset from the top in pixels
func Rasterize(face font.Face, s string) (common.ImageData, int) {
	w, h := Measure(face, s)
	ascent := face.Metrics().Ascent.Ceil()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(s)
	return common.ImageData{Pixels: dst.Pix, Width: w, Height: h}, ascent
}
