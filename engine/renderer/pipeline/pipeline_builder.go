package pipeline

import (
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithShaders sets both stages.
//
// Parameters:
//   - vertex: a shader parsed as shader.ShaderTypeVertex
//   - fragment: a shader parsed as shader.ShaderTypeFragment
//
// Returns:
//   - PipelineBuilderOption: the option
func WithShaders(vertex, fragment shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader, p.fragmentShader = vertex, fragment
	}
}

// WithDepth sets the depth test and depth writes. With the test off every fragment passes.
func WithDepth(test, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled, p.depthWriteEnabled = test, write
	}
}

// WithBlend enables blending with state, or with the default source-over state when state is
// nil. Blending is off unless this option is given.
func WithBlend(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = true
		if state != nil {
			p.blendState = state
		}
	}
}

// WithPrimitive sets how vertices assemble into triangles and which faces are culled.
//
// Parameters:
//   - topology: the primitive topology
//   - frontFace: the winding that counts as front facing
//   - cull: wgpu.CullModeNone, wgpu.CullModeFront or wgpu.CullModeBack
//
// Returns:
//   - PipelineBuilderOption: the option
func WithPrimitive(topology wgpu.PrimitiveTopology, frontFace wgpu.FrontFace, cull wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology, p.frontFace, p.cullMode = topology, frontFace, cull
	}
}

// WithWriteMask limits the color channels the pipeline writes.
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}
