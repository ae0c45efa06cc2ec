package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption configures a provider in NewBindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout supplies a layout that InitBindGroup reuses instead of creating one.
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.bindGroupLayout = bgl }
}

// WithBuffer supplies the buffer for a binding, so InitBindGroup binds it instead of allocating.
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.buffers[binding] = buf }
}

// WithIndexCount sets the index count ahead of mesh upload.
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.indexCount = count }
}
