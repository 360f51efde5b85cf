// Package loader imports glTF 2.0 / GLB assets into meshes, skeletons and animation clips.
// Decoding is CPU-only; uploading the result is the caller's job.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"go.uber.org/zap"
)

// Loader imports models and caches them by path. Batch methods spread work over a worker pool.
type Loader struct {
	mu     sync.RWMutex
	cache  map[string]*Model
	logger *zap.Logger

	workers int
	pool    worker.DynamicWorkerPool
}

// NewLoader creates a loader.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - *Loader: the loader
func NewLoader(options ...LoaderBuilderOption) *Loader {
	l := &Loader{
		cache:   make(map[string]*Model),
		logger:  zap.NewNop(),
		workers: 4,
	}
	for _, option := range options {
		option(l)
	}
	// Queue of 256 covers every asset the game loads at init in one batch.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

// Load imports a .gltf or .glb file and decodes its textures, returning the cached model on
// repeated calls.
//
// Parameters:
//   - path: the model file
//
// Returns:
//   - *Model: the imported model
//   - error: an error if the file cannot be read or is not a valid glTF 2.0 asset
func (l *Loader) Load(path string) (*Model, error) {
	if m, ok := l.Get(path); ok {
		return m, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".gltf" && ext != ".glb" {
		return nil, fmt.Errorf("unsupported model format: %s", ext)
	}

	start := time.Now()
	f, err := parseGLTFFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	m, err := f.importModel(path)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	if err := decodeTextures(m); err != nil {
		return nil, fmt.Errorf("failed to decode textures of %s: %w", path, err)
	}

	l.logger.Info("loaded model",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("clips", len(m.Clips)),
		zap.Bool("skinned", m.Skinned()),
		zap.Int("skippedPrimitives", m.Skipped),
		zap.Duration("took", time.Since(start)),
	)

	l.mu.Lock()
	l.cache[path] = m
	l.mu.Unlock()
	return m, nil
}

// LoadReader imports a model from a stream and caches it under name. External URIs resolve
// against the working directory.
func (l *Loader) LoadReader(name string, r io.Reader) (*Model, error) {
	if m, ok := l.Get(name); ok {
		return m, nil
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	f, err := parseGLTF(buf.Bytes(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}
	m, err := f.importModel(name)
	if err != nil {
		return nil, fmt.Errorf("failed to import %q: %w", name, err)
	}
	if err := decodeTextures(m); err != nil {
		return nil, fmt.Errorf("failed to decode textures of %q: %w", name, err)
	}
	l.mu.Lock()
	l.cache[name] = m
	l.mu.Unlock()
	return m, nil
}

// LoadAll imports several models concurrently on the worker pool and waits for all of them.
//
// Parameters:
//   - paths: model files
//
// Returns:
//   - map[string]*Model: the models keyed by path
//   - error: the first failure in path order, if any
func (l *Loader) LoadAll(paths []string) (map[string]*Model, error) {
	models := make([]*Model, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		idx, path := i, p
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				m, err := l.Load(path)
				models[idx], errs[idx] = m, err
				return m, err
			},
		})
	}
	wg.Wait()

	out := make(map[string]*Model, len(paths))
	for i, p := range paths {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out[p] = models[i]
	}
	return out, nil
}

// DecodeImages decodes encoded images concurrently on the worker pool.
//
// Parameters:
//   - sources: the images to decode
//
// Returns:
//   - []common.ImageData: decoded pixels in source order
//   - error: the first failure in source order, if any
func (l *Loader) DecodeImages(sources []common.ImageSource) ([]common.ImageData, error) {
	images := make([]common.ImageData, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i := range sources {
		wg.Add(1)
		idx := i
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := sources[idx].Decode()
				images[idx], errs[idx] = img, err
				return nil, err
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", sources[i].Name, err)
		}
	}
	return images, nil
}

// Get retrieves a cached model.
func (l *Loader) Get(name string) (*Model, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.cache[name]
	return m, ok
}

// importModel runs the extractors over a parsed file.
func (f *gltfFile) importModel(name string) (*Model, error) {
	parents := f.nodeParents()
	world, order := f.nodeWorld(parents)

	meshes, skipped, err := f.extractMeshes(world, order)
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}
	m := &Model{Name: name, Meshes: meshes, Skipped: skipped}

	if skin := f.skinOf(order); skin >= 0 {
		skel, remap, jointOf, err := f.extractSkeleton(skin, parents)
		if err != nil {
			return nil, fmt.Errorf("skeleton extraction failed: %w", err)
		}
		remapJoints(meshes, remap)
		clips, err := f.extractClips(jointOf)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
		m.Skeleton = skel
		m.Clips = clips
	}

	m.Bounds = meshBounds(meshes)
	return m, nil
}

// decodeTextures decodes each mesh's base color image, sharing results between meshes that use
// the same source.
func decodeTextures(m *Model) error {
	decoded := make(map[*common.ImageSource]*common.ImageData)
	for i := range m.Meshes {
		src := m.Meshes[i].Texture
		if src == nil {
			continue
		}
		if img, ok := decoded[src]; ok {
			m.Meshes[i].Image = img
			continue
		}
		img, err := src.Decode()
		if err != nil {
			return err
		}
		decoded[src] = &img
		m.Meshes[i].Image = &img
	}
	return nil
}
