// Package shader loads WGSL program sources: it expands @oxy: annotations, finds the vertex and
// fragment entry points, and computes the byte layout of declared structs so Go-side uniform
// records can be checked against the shader before a pipeline is built.
package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVertexEntry is returned for sources without a @vertex function.
	ErrNoVertexEntry = errors.New("shader: no @vertex entry point")

	// ErrNoFragmentEntry is returned for sources without a @fragment function.
	ErrNoFragmentEntry = errors.New("shader: no @fragment entry point")
)

type shader struct {
	name          string
	source        string
	vertexEntry   string
	fragmentEntry string
	bindings      []Binding
	structs       map[string]wgslTypeLayout
}

// Shader is a pre-processed and parsed WGSL source.
type Shader interface {
	// Name returns the key the shader was loaded under.
	Name() string

	// Source returns the expanded WGSL.
	Source() string

	// VertexEntry returns the @vertex function name.
	VertexEntry() string

	// FragmentEntry returns the @fragment function name, empty for depth-only shaders.
	FragmentEntry() string

	// Bindings returns the resource declarations sorted by group and binding.
	Bindings() []Binding

	// StructSize returns the byte size of a declared struct.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - int: the size in bytes
	//   - bool: false if the struct is unknown or contains unresolvable fields
	StructSize(name string) (int, bool)

	// UniformSize returns the byte size of the uniform bound at group 0 binding 0, or 0 when there
	// is none.
	UniformSize() int

	// TextureCount returns the number of textures declared in group 1.
	TextureCount() int
}

var _ Shader = &shader{}

// NewShader pre-processes and parses a WGSL source. A fragment entry is required unless
// depthOnly is set.
//
// Parameters:
//   - name: the shader key used in diagnostics
//   - source: the raw WGSL source with annotations
//   - pp: the pre-processor; nil uses NewPreProcessor()
//   - depthOnly: whether the program has no fragment stage
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or an entry point is missing
func NewShader(name, source string, pp PreProcessor, depthOnly bool) (Shader, error) {
	if pp == nil {
		pp = NewPreProcessor()
	}
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	cleaned := stripComments(processed)

	s := &shader{
		name:          name,
		source:        processed,
		vertexEntry:   parseEntryPoint(cleaned, vertexEntryRegex),
		fragmentEntry: parseEntryPoint(cleaned, fragmentEntryRegex),
		bindings:      parseBindings(cleaned),
		structs:       computeStructSizes(parseStructBlocks(cleaned)),
	}
	if s.vertexEntry == "" {
		return nil, fmt.Errorf("shader %q: %w", name, ErrNoVertexEntry)
	}
	if s.fragmentEntry == "" && !depthOnly {
		return nil, fmt.Errorf("shader %q: %w", name, ErrNoFragmentEntry)
	}
	return s, nil
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntry() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntry() string {
	return s.fragmentEntry
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) StructSize(name string) (int, bool) {
	layout, ok := resolveTypeLayout(name, s.structs)
	if !ok {
		return 0, false
	}
	return layout.size, true
}

func (s *shader) UniformSize() int {
	for _, b := range s.bindings {
		if b.Group == 0 && b.Binding == 0 && b.AddressSpace == "uniform" {
			size, _ := s.StructSize(b.Type)
			return size
		}
	}
	return 0
}

func (s *shader) TextureCount() int {
	n := 0
	for _, b := range s.bindings {
		if b.Group == 1 && b.IsTexture() {
			n++
		}
	}
	return n
}
