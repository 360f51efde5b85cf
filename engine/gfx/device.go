// Package gfx is the graphics binding consumed by the renderer: geometry, textures, programs and
// render targets are created up front and addressed by opaque handles, and each frame is a sequence
// of scoped passes containing draw calls.
package gfx

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Handles are non-owning references to device resources. The zero value is never issued.
type (
	Mesh    uint32
	Texture uint32
	Program uint32
	Target  uint32
)

// Screen addresses the presentation surface as a pass target.
const Screen Target = 0

var (
	// ErrUnknownHandle is returned when a handle does not name a live resource.
	ErrUnknownHandle = errors.New("gfx: unknown handle")

	// ErrNoFrame is returned when pass commands are issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("gfx: no frame in progress")
)

// VertexLayout selects the interleaved vertex format of a mesh and of the programs drawing it.
type VertexLayout int

const (
	// LayoutMesh is MeshVertex: position, normal, uv (locations 0..2).
	LayoutMesh VertexLayout = iota
	// LayoutSkinned is SkinnedVertex: LayoutMesh plus joints and weights (locations 3..4).
	LayoutSkinned
	// LayoutScreen is ScreenVertex: 2D position and uv (locations 0..1).
	LayoutScreen
)

// MeshVertex is the LayoutMesh vertex record.
type MeshVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// SkinnedVertex is the LayoutSkinned vertex record.
type SkinnedVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	Joints   [4]uint32
	Weights  [4]float32
}

// ScreenVertex is the LayoutScreen vertex record.
type ScreenVertex struct {
	Position [2]float32
	UV       [2]float32
}

// Stride returns the byte size of one vertex in the layout.
func (l VertexLayout) Stride() int {
	switch l {
	case LayoutSkinned:
		return 64
	case LayoutScreen:
		return 16
	default:
		return 32
	}
}

// TextureKind describes how a program samples a bound texture slot.
type TextureKind int

const (
	// TextureColor is a filterable color texture with a linear clamp sampler.
	TextureColor TextureKind = iota
	// TextureDepth is a depth texture read with textureLoad.
	TextureDepth
	// TextureShadow is a depth texture paired with a comparison sampler.
	TextureShadow
	// TextureRepeat is a filterable color texture with a linear repeat sampler.
	TextureRepeat
)

// ColorFormat is the color attachment format a program renders into.
type ColorFormat int

const (
	// FormatNone is a depth-only program.
	FormatNone ColorFormat = iota
	// FormatRGBA8 is an offscreen color target.
	FormatRGBA8
	// FormatSurface is the presentation surface.
	FormatSurface
)

// BlendMode selects the color blend equation.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// ProgramDesc describes a render program: shader source, vertex input, bindings and fixed state.
// Group 0 binding 0 is the per-draw uniform block of UniformSize bytes. Group 1 holds, for each
// texture slot i, the texture at binding 2i and its sampler at binding 2i+1.
type ProgramDesc struct {
	Name          string
	Source        string
	VertexEntry   string
	FragmentEntry string
	Layout        VertexLayout
	// Instanced adds a per-instance mat4 vertex buffer at locations 5..8.
	Instanced   bool
	UniformSize int
	Textures    []TextureKind
	Format      ColorFormat
	Samples     int
	// HasDepth must match whether the target pass has a depth attachment.
	HasDepth            bool
	DepthTest           bool
	DepthWrite          bool
	Blend               BlendMode
	Cull                CullMode
	DepthBias           int32
	DepthBiasSlopeScale float32
}

// TargetDesc describes an offscreen render target.
type TargetDesc struct {
	Name string
	// Width and Height of zero track the surface size across resizes.
	Width   int
	Height  int
	Samples int
	Color   bool
	Depth   bool
}

// PassDesc opens a render pass. Color is cleared to ClearColor unless LoadColor is set; depth is
// always cleared to 1. When ResolveTo is non-zero the multisampled color is resolved into it at
// the end of the pass.
type PassDesc struct {
	Label      string
	Target     Target
	ResolveTo  Target
	ClearColor mgl32.Vec4
	LoadColor  bool
}

// DrawCall is one indexed draw inside a pass.
type DrawCall struct {
	Program  Program
	Mesh     Mesh
	Uniforms []byte
	Textures []Texture
	// Instances feeds the per-instance matrix buffer of instanced programs.
	Instances []mgl32.Mat4
	// InstanceCount is used when Instances is empty; zero means one instance.
	InstanceCount int
}

// Device is the graphics binding. All methods must be called from the thread that created it.
type Device interface {
	// CreateMesh uploads interleaved vertices in the given layout and 32-bit indices.
	//
	// Parameters:
	//   - label: debug label
	//   - layout: the vertex layout of vertices
	//   - vertices: raw vertex bytes (see PackVertices)
	//   - indices: triangle list indices
	//
	// Returns:
	//   - Mesh: the new mesh handle
	//   - error: an error if buffer creation fails
	CreateMesh(label string, layout VertexLayout, vertices []byte, indices []uint32) (Mesh, error)

	// UpdateMesh replaces the contents of a mesh, growing its buffers when needed.
	UpdateMesh(m Mesh, vertices []byte, indices []uint32) error

	// CreateTexture uploads RGBA pixels as a sampled texture.
	CreateTexture(label string, img common.ImageData) (Texture, error)

	// ReleaseTexture frees a texture created with CreateTexture.
	ReleaseTexture(t Texture)

	// CreateProgram compiles a program.
	//
	// Returns:
	//   - Program: the program handle
	//   - error: an error if shader compilation or pipeline creation fails
	CreateProgram(desc ProgramDesc) (Program, error)

	// CreateTarget allocates an offscreen render target.
	CreateTarget(desc TargetDesc) (Target, error)

	// TargetColor returns the sampled color texture of a single-sampled target.
	TargetColor(t Target) Texture

	// TargetDepth returns the depth texture of a target.
	TargetDepth(t Target) Texture

	// Resize reconfigures the surface and re-creates surface-sized targets. Handles stay valid.
	Resize(width, height int)

	// Size returns the surface size in pixels.
	Size() (int, int)

	// BeginFrame acquires the next surface image and starts command recording.
	BeginFrame() error

	// BeginPass opens a render pass. Passes do not nest.
	BeginPass(desc PassDesc) error

	// Draw records a draw into the open pass. Draws with unknown handles are dropped.
	Draw(call DrawCall)

	// EndPass closes the open pass.
	EndPass()

	// EndFrame submits recorded work and presents the surface.
	EndFrame()

	// Release frees every resource in reverse creation order.
	Release()
}

// PackVertices reinterprets a vertex slice as bytes for CreateMesh.
func PackVertices[V MeshVertex | SkinnedVertex | ScreenVertex](vertices []V) []byte {
	return common.SliceToBytes(vertices)
}
