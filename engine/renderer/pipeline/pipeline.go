package pipeline

import (
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPUObjects are the GPU handles the backend creates when a pipeline is registered.
// The pipeline owns them from then on and frees them in Release.
type GPUObjects struct {
	RenderPipeline   *wgpu.RenderPipeline
	Layout           *wgpu.PipelineLayout
	BindGroupLayouts []*wgpu.BindGroupLayout
	Modules          []*wgpu.ShaderModule
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// both shaders are required before the pipeline can be registered
	vertexShader, fragmentShader shader.Shader

	gpu      GPUObjects
	released bool

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a render pipeline: a vertex and fragment shader pair plus the primitive,
// depth and color target state used to create it. After registration it owns the created GPU objects.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for a stage, or nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the created render pipeline, or nil before registration and after Release.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// Registered reports whether the backend has created GPU objects for this pipeline.
	//
	// Returns:
	//   - bool: true between SetGPUObjects and Release
	Registered() bool

	// DepthTestEnabled returns whether depth testing is enabled.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled.
	DepthWriteEnabled() bool

	// BlendEnabled returns whether alpha blending is enabled.
	BlendEnabled() bool

	// CullMode returns the face culling mode. Defaults to wgpu.CullModeNone so that
	// negatively scaled (mirrored) meshes keep all of their faces.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state applied when blending is enabled.
	BlendState() *wgpu.BlendState

	// SetGPUObjects hands the created GPU objects to the pipeline.
	// Called by the renderer backend during registration.
	//
	// Parameters:
	//   - objects: the created pipeline, layouts and shader modules
	SetGPUObjects(objects GPUObjects)

	// Release frees the render pipeline, its layouts and shader modules.
	// Calling Release more than once is a no-op.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render Pipeline. Defaults: triangle list, counter-clockwise front faces,
// no culling, depth test and write enabled, blending disabled, all color channels written.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.gpu.RenderPipeline
}

func (p *pipeline) Registered() bool {
	return p.gpu.RenderPipeline != nil && !p.released
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetGPUObjects(objects GPUObjects) {
	p.gpu = objects
	p.released = false
}

func (p *pipeline) Release() {
	if p.released {
		return
	}
	p.released = true

	// reverse creation order
	if p.gpu.RenderPipeline != nil {
		p.gpu.RenderPipeline.Release()
	}
	if p.gpu.Layout != nil {
		p.gpu.Layout.Release()
	}
	for _, bgl := range p.gpu.BindGroupLayouts {
		if bgl != nil {
			bgl.Release()
		}
	}
	for _, m := range p.gpu.Modules {
		if m != nil {
			m.Release()
		}
	}
	p.gpu = GPUObjects{}
}
