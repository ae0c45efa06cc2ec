package renderer

import (
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/noise-spheres/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	size       common.Size
	clearColor common.Color
	inFrame    bool
	released   bool
	once       sync.Once

	// pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	offscreenSize        *common.Size
}

// Renderer is the adapter between a scene and the GPU. It owns the device, the pipeline cache and the
// frame lifecycle: BeginFrame, any number of DrawCall, EndFrame, then Present.
// Every method returns ErrReleased once Release has run.
type Renderer interface {
	// Pipeline retrieves the registered Pipeline for a key, or nil if none is registered.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: pipeline keys to pipelines
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates GPU objects for each pipeline and caches it by key.
	// Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: the first registration error
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the color target for a new size in physical pixels.
	// Calling it with the current size is a no-op.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error for a non-positive size, a frame in progress, or a backend failure
	Resize(width, height int) error

	// Size returns the configured target size in physical pixels.
	Size() common.Size

	// SetPresentMode sets the present mode applied on the next Resize.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color the frame clears to.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color common.Color)

	// ClearColor returns the current clear color.
	ClearColor() common.Color

	// InitMeshBuffers uploads vertex and index data onto a provider.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers
	//   - vertexData: packed vertex bytes
	//   - indexData: packed uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers and bind group for a layout descriptor and stores them on
	// a provider. Buffer usage and size can be overridden per binding; both maps are nil safe.
	//
	// Parameters:
	//   - provider: the provider receiving the bind group
	//   - descriptor: the layout descriptor parsed from a shader
	//   - bufferUsageOverrides: extra usage flags per binding
	//   - bufferSizeOverrides: buffer sizes per binding
	//
	// Returns:
	//   - error: an error if creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues buffer writes for the next submission.
	//
	// Parameters:
	//   - writes: the writes to queue
	//
	// Returns:
	//   - error: the first write error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the color target and opens the frame's render pass.
	//
	// Returns:
	//   - error: ErrFrameInProgress if a frame is already open, or a backend error
	BeginFrame() error

	// DrawCall encodes one indexed, instanced draw with a registered pipeline.
	// bindGroups[i] is bound at group i.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the provider holding vertex and index buffers
	//   - instanceCount: the number of instances
	//   - bindGroups: the providers bound at groups 0..n-1
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame, or an error if the pipeline is unknown
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes the render pass and submits the frame.
	//
	// Returns:
	//   - error: ErrNoFrame if no frame is open, or a backend error
	EndFrame() error

	// Present shows the last submitted frame.
	Present()

	// Capture reads the last submitted frame back from an offscreen target.
	//
	// Returns:
	//   - *image.RGBA: the captured frame
	//   - error: ErrNotOffscreen, ErrNoFrame or a readback error
	Capture() (*image.RGBA, error)

	// Offscreen reports whether the renderer draws into an offscreen texture.
	Offscreen() bool

	// Release frees every pipeline and then the backend. Only the first call has any effect.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for a window surface, or for an offscreen target when WithOffscreen
// is given, in which case win may be nil. The target is configured to its initial size before returning.
// GPU initialization failures are fatal and panic.
//
// Parameters:
//   - backendType: the rendering backend to use
//   - win: the window providing the surface descriptor and framebuffer size
//   - options: RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := newRenderer(backendType, options...)

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var (
		surfaceDescriptor *wgpu.SurfaceDescriptor
		initial           common.Size
	)
	switch {
	case r.offscreenSize != nil:
		initial = *r.offscreenSize
	case win != nil:
		surfaceDescriptor = win.SurfaceDescriptor()
		initial = win.FramebufferSize()
	default:
		panic("renderer: a window or WithOffscreen is required")
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter, msaa)
	}
	r.applyPending()

	if err := r.Resize(initial.Width, initial.Height); err != nil {
		panic(err)
	}
	return r
}

// newRenderer applies options to an empty renderer. The caller attaches the backend.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    common.Color{R: 0.95, G: 0.95, B: 0.95},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// newRendererWithBackend builds a renderer around an existing backend without configuring it.
func newRendererWithBackend(backend RendererBackend, options ...RendererBuilderOption) *renderer {
	r := newRenderer(BackendTypeWGPU, options...)
	r.backend = backend
	r.applyPending()
	return r
}

func (r *renderer) applyPending() {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(toWGPUColor(r.clearColor))
}

func toWGPUColor(c common.Color) wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: 1}
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if r.inFrame {
		return ErrFrameInProgress
	}
	size := common.Size{Width: width, Height: height}
	if !size.Valid() {
		return fmt.Errorf("resize to %dx%d: size must be positive", width, height)
	}
	if size == r.size {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	r.size = size
	return nil
}

func (r *renderer) Size() common.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(color common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = color
	if r.released {
		return
	}
	r.backend.SetClearColor(toWGPUColor(color))
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if r.Released() {
		return ErrReleased
	}
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	if r.Released() {
		return ErrReleased
	}
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if r.inFrame {
		return ErrFrameInProgress
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if !r.inFrame {
		return ErrNoFrame
	}
	p, exists := r.pipelineCache[pipelineKey]
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released || r.inFrame {
		return
	}
	r.backend.Present()
}

func (r *renderer) Capture() (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}
	return r.backend.Capture()
}

func (r *renderer) Offscreen() bool {
	return r.backend.Offscreen()
}

func (r *renderer) Release() {
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.released = true
		r.inFrame = false
		for key, p := range r.pipelineCache {
			p.Release()
			delete(r.pipelineCache, key)
		}
		r.backend.Release()
		log.Printf("[Renderer] released")
	})
}

func (r *renderer) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}
