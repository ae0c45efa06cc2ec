package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the on-screen host for a sketch: it owns the platform window, reports its logical size and
// pixel ratio, and pumps platform events.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: function receiving the new logical size and pixel ratio
	SetResizeCallback(callback func(size common.Size, pixelRatio float64))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true until the window is closed, Escape is pressed, or RequestClose is called.
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window stops running. Calls the update callback each iteration.
	ProcessMessages()

	// Size returns the client area size in logical (screen coordinate) units.
	Size() common.Size

	// FramebufferSize returns the client area size in physical pixels.
	FramebufferSize() common.Size

	// PixelRatio returns physical pixels per logical unit.
	PixelRatio() float64
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// zero limits leave that bound to the platform
	minSize, maxSize common.Size
	resizable        bool

	// logical client size
	width, height int

	// physical framebuffer size
	fbWidth, fbHeight int

	// contentScale is the monitor scale reported by the platform, used when the logical size is unknown
	contentScale float64

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
	onResize func(size common.Size, pixelRatio float64)
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order. Platform failures panic.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:        "noise spheres",
		minSize:      common.Size{Width: 64, Height: 64},
		maxSize:      common.Size{Width: 4096, Height: 4096},
		width:        512,
		height:       512,
		resizable:    true,
		contentScale: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(size common.Size, pixelRatio float64)) {
	w.onResize = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Size() common.Size {
	return common.Size{Width: w.width, Height: w.height}
}

func (w *engineWindow) FramebufferSize() common.Size {
	return common.Size{Width: w.fbWidth, Height: w.fbHeight}
}

func (w *engineWindow) PixelRatio() float64 {
	return pixelRatio(w.fbWidth, w.width, w.contentScale)
}

// setSizes records a new logical and framebuffer size and notifies the resize callback.
func (w *engineWindow) setSizes(width, height, fbWidth, fbHeight int) {
	w.width, w.height = width, height
	w.fbWidth, w.fbHeight = fbWidth, fbHeight
	if w.onResize != nil && fbWidth > 0 && fbHeight > 0 {
		w.onResize(w.Size(), w.PixelRatio())
	}
}

// pixelRatio derives physical pixels per logical unit from the framebuffer and window widths,
// falling back to the platform content scale when either is unknown.
func pixelRatio(fbWidth, width int, contentScale float64) float64 {
	if fbWidth > 0 && width > 0 {
		return float64(fbWidth) / float64(width)
	}
	if contentScale > 0 {
		return contentScale
	}
	return 1
}
