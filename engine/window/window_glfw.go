package window

import (
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNoPlatformWindow = errors.New("window is not initialized")

// glfwWindow is the GLFW state behind an engineWindow.
type glfwWindow struct {
	window  *glfw.Window
	running bool
	closed  bool
}

// glfwOf returns the GLFW state of w, or nil before newPlatformWindow succeeds.
func glfwOf(w *engineWindow) *glfwWindow {
	gw, _ := w.internalWindow.(*glfwWindow)
	return gw
}

// limit maps an unset bound to glfw.DontCare.
func limit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// newPlatformWindow opens a GLFW window with no client API, since wgpu drives the surface.
// The calling goroutine is locked to its OS thread; GLFW must be driven from it from now on.
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(limit(w.minSize.Width), limit(w.minSize.Height), limit(w.maxSize.Width), limit(w.maxSize.Height))

	gw := &glfwWindow{window: win, running: true}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key != glfw.KeyEscape || action != glfw.Press {
			return
		}
		log.Printf("[Window] escape pressed, closing")
		platformRequestClose(w)
	})

	// framebuffer sizes are physical pixels; the logical size is re-read so the ratio stays
	// consistent when the window moves between monitors
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, fbWidth, fbHeight int) {
		width, height := win.GetSize()
		w.setSizes(width, height, fbWidth, fbHeight)
	})
	win.SetContentScaleCallback(func(_ *glfw.Window, x, _ float32) {
		w.contentScale = float64(x)
	})

	scale, _ := win.GetContentScale()
	w.contentScale = float64(scale)
	width, height := win.GetSize()
	fbWidth, fbHeight := win.GetFramebufferSize()
	w.setSizes(width, height, fbWidth, fbHeight)
	return nil
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw := glfwOf(w)
	if gw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw := glfwOf(w)
	return gw != nil && gw.running && !gw.closed && !gw.window.ShouldClose()
}

func platformRequestClose(w *engineWindow) {
	gw := glfwOf(w)
	if gw == nil {
		return
	}
	gw.running = false
	if !gw.closed {
		gw.window.SetShouldClose(true)
	}
}

// platformCloseWindow destroys the window and terminates GLFW. A second call does nothing.
func platformCloseWindow(w *engineWindow) error {
	gw := glfwOf(w)
	if gw == nil {
		return errNoPlatformWindow
	}
	if gw.closed {
		return nil
	}
	gw.running, gw.closed = false, true
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}

// platformProcessMessages polls pending events without blocking and reports whether the window
// is still open.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
