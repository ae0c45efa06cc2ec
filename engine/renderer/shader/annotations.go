// annotations.go defines the annotation grammar of the WGSL pre-processor. Annotations are
// single-line WGSL comments prefixed with @sketch: that either inject shared source (struct
// definitions and function libraries) or generate @group/@binding declarations whose types
// come from the Go GPU types that own them.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@sketch:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct or function library
	// at the annotation site. Each entry is injected at most once per shader, so libraries may
	// include their own dependencies.
	//
	// Syntax: //@sketch:include <key>
	//
	// Example: //@sketch:include simplex4d
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration and is
	// recorded in the PreProcessor's declarations so owners can locate their group by struct key.
	//
	// Syntax: //@sketch:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@sketch:group 1 0 storage_read instances array<sphere_instance>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is a single parsed @sketch: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = registry key (e.g. "camera", "simplex3d")
	//   - group:   [0] = address space, [1] = var name, [2] = type key, optionally wrapped in array<>
	Args []AnnotationArg

	// Line is the 1-based line number in the source the annotation came from.
	Line int

	// Group is the @group index for group annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group annotations. Nil for include annotations.
	Binding *int
}

// StructKey returns the struct key of a group annotation with any array<> wrapper removed.
//
// Returns:
//   - AnnotationArg: the element struct key, or "" for non-group annotations
//   - bool: true if the binding is a runtime-sized array of that struct
func (a Annotation) StructKey() (AnnotationArg, bool) {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return "", false
	}
	if inner, ok := strings.CutPrefix(string(a.Args[2]), "array<"); ok {
		return AnnotationArg(strings.TrimSuffix(inner, ">")), true
	}
	return a.Args[2], false
}

// AnnotationArg is a typed string used as an annotation argument.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type with an embedded .wgsl asset.
const (
	// AnnotationArgCamera identifies CameraUniform (engine/camera/assets/camera_uniform.wgsl).
	AnnotationArgCamera AnnotationArg = "camera"

	// annotationArgVertex identifies VertexInput (engine/model/assets/vertex.wgsl).
	annotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgMaterial identifies MaterialUniform (engine/renderer/material/assets/material_uniform.wgsl).
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgSphereInstance identifies SphereInstance (engine/game_object/assets/sphere_instance.wgsl).
	AnnotationArgSphereInstance AnnotationArg = "sphere_instance"
)

// Function library arguments. Libraries are include-only and cannot be bound.
const (
	// annotationArgNoiseCommon holds the mod289/permute/taylorInvSqrt helpers shared by the simplex libraries.
	annotationArgNoiseCommon AnnotationArg = "noise_common"

	// AnnotationArgSimplex3D provides snoise3(v: vec3<f32>) -> f32.
	AnnotationArgSimplex3D AnnotationArg = "simplex3d"

	// AnnotationArgSimplex4D provides snoise4(v: vec4<f32>) -> f32.
	AnnotationArgSimplex4D AnnotationArg = "simplex4d"
)

// Address space arguments for group annotations.
const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	annotationArgVertex,
	AnnotationArgMaterial,
	AnnotationArgSphereInstance,
}

var validLibraries = []AnnotationArg{
	annotationArgNoiseCommon,
	AnnotationArgSimplex3D,
	AnnotationArgSimplex4D,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @sketch: annotation.
// Lines without the prefix return nil and no error.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @sketch annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @sketch include annotation requires exactly one argument", lineNum)
		}
		key := AnnotationArg(args[1])
		if !slices.Contains(validStructTypes, key) && !slices.Contains(validLibraries, key) {
			return nil, fmt.Errorf("line %d: unknown include %q in @sketch include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{key},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @sketch group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil || groupInt < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @sketch group annotation", lineNum, args[1])
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil || bindingInt < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @sketch group annotation", lineNum, args[2])
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @sketch group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		isArray := false
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			if !strings.HasSuffix(inner, ">") {
				return nil, fmt.Errorf("line %d: unterminated array type %q in @sketch group annotation", lineNum, typeArg)
			}
			typeArg = strings.TrimSuffix(inner, ">")
			isArray = true
		}
		if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @sketch group annotation", lineNum, typeArg)
		}
		if isArray && AnnotationArg(args[3]) == annotationArgStorageTypeUniform {
			return nil, fmt.Errorf("line %d: runtime-sized array %q cannot live in the uniform address space", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @sketch annotation type %q", lineNum, args[0])
	}
}
