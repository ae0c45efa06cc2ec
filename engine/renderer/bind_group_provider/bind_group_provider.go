package bind_group_provider

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

type bindGroupProvider struct {
	mu    sync.Mutex
	label string

	// Set by the renderer, never by the owner.
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	vertexBuffer    *wgpu.Buffer
	indexBuffer     *wgpu.Buffer
	indexCount      int

	released bool
}

// BindGroupProvider holds the GPU objects one component needs at draw time: the camera's uniform
// bind group, the scene's instance storage bind group, or the sphere model's vertex and index
// buffers.
//
// The owner creates it, Renderer.InitBindGroup or Renderer.InitMeshBuffers fills it, per-frame
// BufferWrite values target it, DrawCall reads it, and Release frees it once.
type BindGroupProvider interface {
	// Release frees every GPU handle. Later calls do nothing.
	Release()
	Released() bool

	// Label prefixes the labels of GPU objects created for the provider.
	Label() string

	// BindGroup returns nil before InitBindGroup.
	BindGroup() *wgpu.BindGroup
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at binding, or nil.
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns a copy of the binding buffers keyed by binding index.
	Buffers() map[int]*wgpu.Buffer

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer

	// IndexCount is the number of uint32 indices drawn per instance.
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label prefix for GPU objects
//   - options: BindGroupProviderOption functions applied in order
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// locked runs fn with the provider mutex held.
func (p *bindGroupProvider) locked(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

func (p *bindGroupProvider) Label() string { return p.label }

func (p *bindGroupProvider) Released() (r bool) {
	p.locked(func() { r = p.released })
	return r
}

func (p *bindGroupProvider) BindGroup() (bg *wgpu.BindGroup) {
	p.locked(func() { bg = p.bindGroup })
	return bg
}

func (p *bindGroupProvider) BindGroupLayout() (bgl *wgpu.BindGroupLayout) {
	p.locked(func() { bgl = p.bindGroupLayout })
	return bgl
}

func (p *bindGroupProvider) Buffer(binding int) (buf *wgpu.Buffer) {
	p.locked(func() { buf = p.buffers[binding] })
	return buf
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	out := make(map[int]*wgpu.Buffer)
	p.locked(func() {
		for k, v := range p.buffers {
			out[k] = v
		}
	})
	return out
}

func (p *bindGroupProvider) VertexBuffer() (buf *wgpu.Buffer) {
	p.locked(func() { buf = p.vertexBuffer })
	return buf
}

func (p *bindGroupProvider) IndexBuffer() (buf *wgpu.Buffer) {
	p.locked(func() { buf = p.indexBuffer })
	return buf
}

func (p *bindGroupProvider) IndexCount() (n int) {
	p.locked(func() { n = p.indexCount })
	return n
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.locked(func() { p.bindGroup = bg })
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.locked(func() { p.bindGroupLayout = bgl })
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.locked(func() { p.buffers[binding] = buf })
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.locked(func() { p.vertexBuffer = buf })
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.locked(func() { p.indexBuffer = buf })
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.locked(func() { p.indexCount = count })
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true

	// the bind group references the buffers and the layout, so it goes first
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	for _, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
	}
	for _, buf := range []*wgpu.Buffer{p.vertexBuffer, p.indexBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
	}

	p.bindGroup, p.bindGroupLayout = nil, nil
	p.vertexBuffer, p.indexBuffer = nil, nil
	p.buffers = make(map[int]*wgpu.Buffer)
	p.indexCount = 0
}
