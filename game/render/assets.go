package render

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/ecs"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/gfx"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/loader"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/shader"
	"go.uber.org/zap"
)

// ErrUniformLayout is returned when a shader's uniform block does not match the Go record bound
// to it.
var ErrUniformLayout = errors.New("uniform layout mismatch")

type resourceKind int

const (
	resourceProgram resourceKind = iota
	resourceMesh
	resourceTexture
)

type acquired struct {
	kind resourceKind
	name string
}

type meshEntry struct {
	handle     gfx.Mesh
	indexCount int
}

// AssetStore owns the GPU resources created at init: programs compiled from shader files, meshes
// and textures. Components keep non-owning handles. Everything is released once, at shutdown, in
// reverse acquisition order.
type AssetStore struct {
	device gfx.Device
	logger *zap.Logger
	roots  []string
	pp     shader.PreProcessor

	programs map[string]gfx.Program
	meshes   map[string]meshEntry
	textures map[string]gfx.Texture
	order    []acquired
	released bool
}

// NewAssetStore creates an empty store bound to a device.
//
// Parameters:
//   - device: the graphics device resources are created on
//   - options: functional options for the store
//
// Returns:
//   - *AssetStore: the store
func NewAssetStore(device gfx.Device, options ...AssetStoreBuilderOption) *AssetStore {
	a := &AssetStore{
		device:   device,
		logger:   zap.NewNop(),
		pp:       NewPreProcessor(),
		programs: make(map[string]gfx.Program),
		meshes:   make(map[string]meshEntry),
		textures: make(map[string]gfx.Texture),
	}
	for _, option := range options {
		option(a)
	}
	if a.roots == nil {
		a.roots = common.SearchRoots()
	}
	return a
}

// Device returns the device the store creates resources on.
func (a *AssetStore) Device() gfx.Device {
	return a.device
}

// LoadProgram reads a WGSL file through the resource search, checks its uniform block against
// desc.UniformSize and its texture count against desc.Textures, then compiles it. Entry points
// left empty in desc are taken from the shader. Programs are cached by desc.Name.
//
// Parameters:
//   - file: shader file name, e.g. "model.wgsl"
//   - desc: the program description; Source is filled in from the file
//
// Returns:
//   - gfx.Program: the program handle
//   - error: an error if the file is missing, the layout does not match or compilation fails
func (a *AssetStore) LoadProgram(file string, desc gfx.ProgramDesc) (gfx.Program, error) {
	if p, ok := a.programs[desc.Name]; ok {
		return p, nil
	}
	data, path, err := common.ReadResource(file, a.roots)
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", desc.Name, err)
	}
	sh, err := shader.NewShader(file, string(data), a.pp, desc.Format == gfx.FormatNone)
	if err != nil {
		return 0, err
	}
	if got := sh.UniformSize(); got != desc.UniformSize {
		return 0, fmt.Errorf("program %q: shader declares %d bytes, record has %d: %w", desc.Name, got, desc.UniformSize, ErrUniformLayout)
	}
	if got := sh.TextureCount(); got != len(desc.Textures) {
		return 0, fmt.Errorf("program %q: shader declares %d textures, program binds %d: %w", desc.Name, got, len(desc.Textures), ErrUniformLayout)
	}

	desc.Source = sh.Source()
	desc.VertexEntry = common.Coalesce(desc.VertexEntry, sh.VertexEntry())
	desc.FragmentEntry = common.Coalesce(desc.FragmentEntry, sh.FragmentEntry())
	p, err := a.device.CreateProgram(desc)
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", desc.Name, err)
	}
	a.programs[desc.Name] = p
	a.order = append(a.order, acquired{resourceProgram, desc.Name})
	a.logger.Debug("program loaded", zap.String("name", desc.Name), zap.String("path", path))
	return p, nil
}

// Program returns a loaded program, or 0.
func (a *AssetStore) Program(name string) gfx.Program {
	return a.programs[name]
}

// AddMesh uploads a mesh under name.
//
// Returns:
//   - ecs.Mesh: a mesh component referencing the upload, white and untextured
//   - error: an error if the upload fails
func (a *AssetStore) AddMesh(name string, layout gfx.VertexLayout, vertices []byte, indices []uint32) (ecs.Mesh, error) {
	if m, ok := a.meshes[name]; ok {
		return ecs.Mesh{Handle: m.handle, IndexCount: m.indexCount, Color: white}, nil
	}
	h, err := a.device.CreateMesh(name, layout, vertices, indices)
	if err != nil {
		return ecs.Mesh{}, fmt.Errorf("mesh %q: %w", name, err)
	}
	a.meshes[name] = meshEntry{handle: h, indexCount: len(indices)}
	a.order = append(a.order, acquired{resourceMesh, name})
	return ecs.Mesh{Handle: h, IndexCount: len(indices), Skinned: layout == gfx.LayoutSkinned, Color: white}, nil
}

// Mesh returns a loaded mesh handle and its index count.
func (a *AssetStore) Mesh(name string) (gfx.Mesh, int, bool) {
	m, ok := a.meshes[name]
	return m.handle, m.indexCount, ok
}

// AddTexture uploads decoded pixels under name.
func (a *AssetStore) AddTexture(name string, img common.ImageData) (gfx.Texture, error) {
	if t, ok := a.textures[name]; ok {
		return t, nil
	}
	t, err := a.device.CreateTexture(name, img)
	if err != nil {
		return 0, fmt.Errorf("texture %q: %w", name, err)
	}
	a.textures[name] = t
	a.order = append(a.order, acquired{resourceTexture, name})
	return t, nil
}

// LoadTexture resolves an image file through the resource search, decodes and uploads it.
func (a *AssetStore) LoadTexture(name, file string) (gfx.Texture, error) {
	if t, ok := a.textures[name]; ok {
		return t, nil
	}
	path, err := common.ResolvePath(file, a.roots)
	if err != nil {
		return 0, fmt.Errorf("texture %q: %w", name, err)
	}
	img, err := common.ImageSource{Name: name, Path: path}.Decode()
	if err != nil {
		return 0, fmt.Errorf("texture %q: %w", name, err)
	}
	return a.AddTexture(name, img)
}

// TextureOr loads an image file, falling back to a solid color when file is empty or missing.
func (a *AssetStore) TextureOr(name, file string, fallback [4]uint8) gfx.Texture {
	if file != "" {
		t, err := a.LoadTexture(name, file)
		if err == nil {
			return t
		}
		a.logger.Warn("texture unavailable, using solid color", zap.String("name", name), zap.Error(err))
	}
	t, err := a.AddTexture(name, common.SolidImage(1, 1, fallback))
	if err != nil {
		a.logger.Error("solid texture upload failed", zap.String("name", name), zap.Error(err))
	}
	return t
}

// Texture returns a loaded texture, or 0.
func (a *AssetStore) Texture(name string) gfx.Texture {
	return a.textures[name]
}

// UploadModel uploads every mesh of a loaded model and its decoded base-color images.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - ecs.MeshGroup: one mesh component per primitive, tinted with its base color
//   - error: an error if any upload fails
func (a *AssetStore) UploadModel(m *loader.Model) (ecs.MeshGroup, error) {
	group := ecs.MeshGroup{Meshes: make([]ecs.Mesh, 0, len(m.Meshes))}
	for i := range m.Meshes {
		md := &m.Meshes[i]
		name := fmt.Sprintf("%s/%d:%s", m.Name, i, md.Name)

		var mesh ecs.Mesh
		var err error
		if md.Skinned {
			mesh, err = a.AddMesh(name, gfx.LayoutSkinned, gfx.PackVertices(md.Vertices), md.Indices)
		} else {
			mesh, err = a.AddMesh(name, gfx.LayoutMesh, gfx.PackVertices(md.StaticVertices()), md.Indices)
		}
		if err != nil {
			return ecs.MeshGroup{}, err
		}
		mesh.Color = md.BaseColor
		if md.Image != nil {
			tex, err := a.AddTexture(name+"/albedo", *md.Image)
			if err != nil {
				return ecs.MeshGroup{}, err
			}
			mesh.Texture = tex
		}
		group.Meshes = append(group.Meshes, mesh)
	}
	a.logger.Info("model uploaded", zap.String("model", m.Name), zap.Int("meshes", len(group.Meshes)))
	return group, nil
}

// Release frees textures in reverse acquisition order and then the device, which drops every
// remaining resource. Calling it again does nothing.
func (a *AssetStore) Release() {
	if a.released {
		return
	}
	a.released = true
	for i := len(a.order) - 1; i >= 0; i-- {
		r := a.order[i]
		if r.kind == resourceTexture {
			a.device.ReleaseTexture(a.textures[r.name])
		}
	}
	a.device.Release()
	a.logger.Info("assets released", zap.Int("resources", len(a.order)))
}
