package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-snowfall/engine/camera"
	"github.com/Carmen-Shannon/oxy-snowfall/engine/light"
)

// maxIncludeDepth bounds nested includes.
const maxIncludeDepth = 8

// Include is a registered WGSL struct source and the type name it declares.
type Include struct {
	Source string
	Type   string
}

type preProcessor struct {
	includes map[string]Include
}

// PreProcessor expands @oxy: annotations in WGSL source.
type PreProcessor interface {
	// Register adds or replaces an include.
	//
	// Parameters:
	//   - key: the annotation argument naming the include
	//   - include: the struct source and its type name
	Register(key string, include Include)

	// Process replaces include annotations with their sources (recursively, each at most once)
	// and group annotations with generated binding declarations. Includes sharing a source are
	// injected once.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: an error for malformed annotations or unknown keys
	Process(source string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor with the engine's shared structs registered: "camera"
// (CameraUniform) and "light" (Light).
//
// Parameters:
//   - options: functional options registering further includes
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		includes: map[string]Include{
			"camera": {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			"light":  {Source: light.GPULightSource, Type: "Light"},
		},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *preProcessor) Register(key string, include Include) {
	p.includes[key] = include
}

func (p *preProcessor) Process(source string) (string, error) {
	seen := make(map[string]bool)
	return p.process(source, seen, 0)
}

func (p *preProcessor) process(source string, seen map[string]bool, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			key := a.Args[0]
			inc, ok := p.includes[key]
			if !ok {
				return "", fmt.Errorf("line %d: unknown include %q", a.Line, key)
			}
			if seen[inc.Source] {
				continue
			}
			seen[inc.Source] = true
			expanded, err := p.process(inc.Source, seen, depth+1)
			if err != nil {
				return "", fmt.Errorf("include %q: %w", key, err)
			}
			out = append(out, expanded)
		case AnnotationTypeBindingGroup:
			addressSpace, name, key := a.Args[0], a.Args[1], a.Args[2]
			inc, ok := p.includes[key]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct %q", a.Line, key)
			}
			space := "var<uniform>"
			if addressSpace == "storage_read" {
				space = "var<storage, read>"
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", a.Group, a.Binding, space, name, inc.Type))
		}
	}
	return strings.Join(out, "\n"), nil
}
