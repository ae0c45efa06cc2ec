// pre_processor.go implements the WGSL shader pre-processor. It scans shader source for
// @sketch: annotations, replaces them with injected source or generated declarations, and
// collects the group declarations so the scene can find which group carries which struct.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps include keys to embedded WGSL source and the WGSL type name used in
//     generated declarations. Function libraries are registered with an empty type name.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/noise-spheres/engine/camera"
	"github.com/Carmen-Shannon/noise-spheres/engine/game_object"
	"github.com/Carmen-Shannon/noise-spheres/engine/model"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/material"
)

//go:embed assets/noise_common.wgsl
var noiseCommonSource string

//go:embed assets/simplex3d.wgsl
var simplex3DSource string

//go:embed assets/simplex4d.wgsl
var simplex4DSource string

// maxIncludeDepth bounds nested library includes.
const maxIncludeDepth = 8

// registryEntry pairs embedded WGSL source with the WGSL type name it declares.
type registryEntry struct {
	// Source is the raw WGSL text injected by @sketch:include.
	Source string

	// Type is the WGSL type name emitted in @sketch:group declarations, empty for function libraries.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations and included are reset at the start of each Process call.
	declarations []Annotation
	included     map[AnnotationArg]bool
}

// PreProcessor expands @sketch: annotations in WGSL source.
type PreProcessor interface {
	// Process expands every annotation in source. Include annotations are replaced with the
	// registered source (once per key, recursively), group annotations with a generated
	// @group/@binding declaration. The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if any annotation is malformed or references an unknown key
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every struct and library registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			annotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgMaterial:       {Source: material.GPUMaterialUniformSource, Type: "MaterialUniform"},
			AnnotationArgSphereInstance: {Source: game_object.GPUSphereInstanceSource, Type: "SphereInstance"},
			annotationArgNoiseCommon:    {Source: noiseCommonSource},
			AnnotationArgSimplex3D:      {Source: simplex3DSource},
			AnnotationArgSimplex4D:      {Source: simplex4DSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	p.included = make(map[AnnotationArg]bool)
	return p.expand(source, 0)
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// expand replaces the annotations of one source text, recursing into included sources.
func (p *preProcessor) expand(source string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("include depth exceeds %d", maxIncludeDepth)
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
		case annotationTypeInclude:
			key := a.Args[0]
			if p.included[key] {
				continue
			}
			entry, ok := p.structRegistry[key]
			if !ok {
				return "", fmt.Errorf("line %d: unregistered include %q", a.Line, key)
			}
			p.included[key] = true
			expanded, err := p.expand(entry.Source, depth+1)
			if err != nil {
				return "", fmt.Errorf("include %q: %w", key, err)
			}
			out = append(out, expanded)
		case AnnotationTypeBindingGroup:
			if depth > 0 {
				return "", fmt.Errorf("line %d: group annotations are not allowed inside included sources", a.Line)
			}
			key, isArray := a.StructKey()
			entry := p.structRegistry[key]
			wgslType := entry.Type
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, string(a.Args[1]), wgslType))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", a.Line, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}
