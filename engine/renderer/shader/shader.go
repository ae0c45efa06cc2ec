package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is written for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, paired with a vertex shader.
	ShaderTypeFragment
)

// String returns the WGSL attribute name for the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed and parsed WGSL shader. It exposes everything the renderer needs to
// build a pipeline: the final source, the entry point, vertex buffer layouts and bind group layout
// descriptors with their minimum binding sizes.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the layout descriptor parsed for a group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves every parsed layout descriptor keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// VertexLayout retrieves the vertex buffer layout at a slot.
	//
	// Parameters:
	//   - key: the vertex buffer slot
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layout, or nil if not set
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all vertex buffer layouts keyed by slot.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: the layouts
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// EntryPoint returns the entry point function name.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Module returns the shader module descriptor built from the pre-processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Declarations returns the group annotations found in the source, in source order.
	//
	// Returns:
	//   - []Annotation: the group declarations
	Declarations() []Annotation

	// GroupFor returns the group and binding that bind the given struct key.
	//
	// Parameters:
	//   - key: the struct key, e.g. AnnotationArgCamera
	//
	// Returns:
	//   - int: the group index
	//   - int: the binding index
	//   - bool: false if no declaration binds the key
	GroupFor(key AnnotationArg) (int, int, bool)
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source. Malformed annotations or a missing entry point
// are programming errors in embedded assets and panic.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source is written for
//   - source: the raw WGSL source, usually embedded with go:embed
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	s, err := ParseShader(key, shaderType, source)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseShader is NewShader with the failure returned instead of raised.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source is written for
//   - source: the raw WGSL source
//
// Returns:
//   - Shader: the parsed shader, or nil on error
//   - error: an error if pre-processing fails or no entry point is found for the stage
func ParseShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		pp:                         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) GroupFor(key AnnotationArg) (int, int, bool) {
	for _, d := range s.pp.Declarations() {
		if k, _ := d.StructKey(); k == key {
			return *d.Group, *d.Binding, true
		}
	}
	return 0, 0, false
}

// parseSource pre-processes the source, builds the module descriptor and extracts the entry
// point, vertex layouts (vertex stage only) and bind group layout descriptors.
func (s *shader) parseSource(raw string) error {
	source, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("pre-process: %w", err)
	}
	s.source = source
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	r, err := reflectWGSL(s.source, s.shaderType)
	if err != nil {
		return err
	}
	s.entryPoint = r.entryPoint
	s.vertexLayouts = r.vertexLayouts
	s.bindGroupLayoutDescriptors = r.groups
	s.bindingVarNames = r.varNames
	return nil
}
