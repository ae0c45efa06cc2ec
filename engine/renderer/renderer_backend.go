package renderer

import (
	"errors"
	"image"

	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrReleased is returned by every Renderer operation after Release.
	ErrReleased = errors.New("renderer released")

	// ErrNoFrame is returned when a frame operation is issued outside BeginFrame/EndFrame,
	// or when Capture is called before any frame has been submitted.
	ErrNoFrame = errors.New("no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame while a previous frame is still open.
	ErrFrameInProgress = errors.New("previous frame not yet ended")

	// ErrNotOffscreen is returned by Capture on a renderer that presents to a window surface.
	ErrNotOffscreen = errors.New("capture requires an offscreen renderer")
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel used for multisample anti-aliasing.
// WebGPU guarantees support for 1 and 4; 8 and 16 are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default and what the antialias context attribute maps to.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8x multisample anti-aliasing.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16x multisample anti-aliasing.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the seam between the Renderer front and a GPU API. The front validates
// state (released, frame open) and the backend only talks to the device.
type RendererBackend interface {
	wgpuRendererBackend
}

type wgpuRendererBackend interface {
	// ConfigureSurface (re)creates every size-dependent GPU object: the surface configuration or
	// offscreen color target, the MSAA target, the depth texture and the readback buffer.
	// Objects from the previous size are released first.
	//
	// Parameters:
	//   - width: the new width in physical pixels
	//   - height: the new height in physical pixels
	//
	// Returns:
	//   - error: an error if the size is not positive or a texture could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the main render pass clears to.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color wgpu.Color)

	// RegisterRenderPipeline creates the shader modules, bind group layouts, pipeline layout and
	// render pipeline for p and hands them to p via SetGPUObjects.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data and stores the buffers on the provider.
	//
	// Parameters:
	//   - provider: the mesh provider receiving the buffers
	//   - vertexData: packed vertex bytes
	//   - indexData: packed uint32 index bytes
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if a buffer could not be created or written
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers and bind group described by descriptor and stores them on the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the GPU objects
	//   - descriptor: the layout descriptor parsed from a shader
	//   - bufferUsageOverrides: extra usage flags per binding
	//   - bufferSizeOverrides: buffer sizes per binding, replacing the parsed MinBindingSize
	//
	// Returns:
	//   - error: an error if a GPU object could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues every write on the device queue.
	//
	// Parameters:
	//   - writes: the writes to queue
	//
	// Returns:
	//   - error: the first write error, if any
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the color target and opens the main render pass.
	//
	// Returns:
	//   - error: an error if the color target or encoder could not be acquired
	BeginFrame() error

	// DrawCall encodes one indexed, instanced draw within the open render pass.
	// bindGroups[i] is bound at group i.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the provider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: the providers bound at group 0..n-1
	//
	// Returns:
	//   - error: an error if a required GPU object is missing
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits the command buffer.
	//
	// Returns:
	//   - error: an error if the pass could not be ended or the encoder finished
	EndFrame() error

	// Present shows the submitted frame on the surface and releases the frame's texture.
	// Offscreen backends keep the target for Capture.
	Present()

	// Capture copies the last submitted frame of an offscreen target into CPU memory.
	//
	// Returns:
	//   - *image.RGBA: the frame in straight RGBA, row-major from the top-left
	//   - error: ErrNotOffscreen for surface targets, ErrNoFrame before the first frame, or a mapping error
	Capture() (*image.RGBA, error)

	// Offscreen reports whether frames render into an offscreen texture instead of a window surface.
	Offscreen() bool

	// Release frees every GPU object owned by the backend in reverse creation order.
	Release()
}
