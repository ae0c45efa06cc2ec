package engine

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/exporter"
	"github.com/Carmen-Shannon/noise-spheres/engine/profiler"
	"github.com/Carmen-Shannon/noise-spheres/engine/window"
)

var (
	// ErrDone is returned by Step once the run has finished.
	ErrDone = errors.New("engine: run finished")

	// ErrNotCapturable is returned when exporting a drawable that cannot capture frames.
	ErrNotCapturable = errors.New("engine: drawable cannot capture frames")

	// ErrRenderPanic wraps a panic recovered from the render loop.
	ErrRenderPanic = errors.New("engine: render loop panicked")
)

// Drawable is a sketch the engine drives. Calls are strictly sequential.
type Drawable interface {
	// Resize is called before the first Render and before the first Render after any size change.
	Resize(width, height int, pixelRatio float64) error

	// Render draws the frame at playhead in [0, 1), time seconds into the loop.
	Render(playhead, time float64) error

	// Unload is called exactly once when the run ends.
	Unload()
}

// Capturer is implemented by drawables that can read back the last rendered frame.
type Capturer interface {
	Capture() (*image.RGBA, error)
}

// engine implements the Engine interface.
// Coordinates the render loop and the window message pump.
type engine struct {
	mu *sync.Mutex

	settings Settings

	window   window.Window
	exporter exporter.Exporter

	profiler         *profiler.Profiler
	profilingEnabled bool

	// loops is the number of loops to play before stopping; 0 plays until quit
	loops int

	frame    uint64
	viewport common.Size
	ratio    float64
	dirty    bool
	done     bool

	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once
	unloadOnce  sync.Once
}

// Engine drives a Drawable through a fixed-step animation loop, on a window or headless.
type Engine interface {
	// Settings returns the effective settings.
	Settings() Settings

	// Window returns the window, or nil when headless.
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Frame returns the number of frames rendered so far.
	Frame() uint64

	// Viewport returns the logical size and pixel ratio the next Resize will use.
	Viewport() (common.Size, float64)

	// Step renders one frame synchronously: a Resize if the viewport changed, then a Render at the
	// current frame's playhead, then a capture when exporting.
	//
	// Parameters:
	//   - d: the drawable
	//
	// Returns:
	//   - error: ErrDone after the run has finished, or the first drawable or export error
	Step(d Drawable) error

	// Run steps d until the window closes, Quit is called, the loop count is reached, or an export
	// completes. d is unloaded exactly once before Run returns. Render errors end the run and are returned.
	//
	// Parameters:
	//   - d: the drawable
	//
	// Returns:
	//   - error: the error that ended the run, if any
	Run(d Drawable) error

	// Done reports whether the run has finished.
	Done() bool

	// Quit signals the render loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with DefaultSettings and the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the resulting settings are invalid
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:          &sync.Mutex{},
		settings:    DefaultSettings(),
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	if err := e.settings.Validate(); err != nil {
		return nil, err
	}

	if e.window != nil {
		e.viewport, e.ratio = e.window.Size(), e.window.PixelRatio()
		e.window.SetResizeCallback(e.setViewport)
	} else {
		e.viewport = common.Size{Width: e.settings.Dimensions[0], Height: e.settings.Dimensions[1]}
		e.ratio = e.settings.PixelRatio
	}
	e.dirty = true
	return e, nil
}

func (e *engine) Settings() Settings {
	return e.settings
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) Frame() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

func (e *engine) Viewport() (common.Size, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport, e.ratio
}

func (e *engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// setViewport records a new logical size. It runs on the window thread; the render loop picks the
// change up before its next frame. Repeating the current viewport is a no-op.
func (e *engine) setViewport(size common.Size, pixelRatio float64) {
	if !size.Valid() || pixelRatio <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if size == e.viewport && pixelRatio == e.ratio {
		return
	}
	e.viewport, e.ratio = size, pixelRatio
	e.dirty = true
}

func (e *engine) Step(d Drawable) error {
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return ErrDone
	}
	dirty, viewport, ratio, frame := e.dirty, e.viewport, e.ratio, e.frame
	e.dirty = false
	e.mu.Unlock()

	if dirty {
		if err := d.Resize(viewport.Width, viewport.Height, ratio); err != nil {
			e.mu.Lock()
			e.dirty = true
			e.mu.Unlock()
			return fmt.Errorf("engine: resize to %dx%d: %w", viewport.Width, viewport.Height, err)
		}
	}

	playhead, t := e.settings.FrameTime(frame)
	if err := d.Render(playhead, t); err != nil {
		return fmt.Errorf("engine: render frame %d: %w", frame, err)
	}

	if e.exporter != nil {
		if err := e.capture(d); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.frame++
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return e.advance()
}

// capture hands the frame just rendered to the exporter.
func (e *engine) capture(d Drawable) error {
	c, ok := d.(Capturer)
	if !ok {
		return ErrNotCapturable
	}
	img, err := c.Capture()
	if err != nil {
		return fmt.Errorf("engine: capture: %w", err)
	}
	if err := e.exporter.Add(img); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// advance marks the run done when the frame just counted was the last one. Callers hold mu.
func (e *engine) advance() error {
	total := uint64(e.settings.TotalFrames())
	switch {
	case e.exporter != nil && (e.frame >= total || !e.settings.Animate):
		e.done = true
		if err := e.exporter.Save(); err != nil {
			return fmt.Errorf("engine: export: %w", err)
		}
	case !e.settings.Animate && e.window == nil:
		e.done = true
	case e.loops > 0 && e.frame >= total*uint64(e.loops):
		e.done = true
	}
	return nil
}

// needsFrame reports whether the loop should render now. A still sketch on a window redraws only
// after a resize.
func (e *engine) needsFrame() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Animate || e.frame == 0 || e.dirty
}

func (e *engine) Run(d Drawable) error {
	if d == nil {
		return errors.New("engine: Run requires a drawable")
	}
	defer e.unload(d)

	if e.window == nil {
		return e.handleRender(d)
	}

	var runErr error
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		runErr = e.handleRender(d)
		// the pump exits once the window is asked to close
		e.window.RequestClose()
	}()
	e.window.ProcessMessages()
	e.Quit()
	e.wg.Wait()
	return runErr
}

// unload releases d and then the window and exporter. Only the first call has any effect.
func (e *engine) unload(d Drawable) {
	e.unloadOnce.Do(func() {
		d.Unload()
		if e.exporter != nil {
			e.exporter.Close()
		}
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				log.Printf("[Engine] window close: %v", err)
			}
		}
		log.Printf("[Engine] stopped after %d frames", e.Frame())
	})
}

// handleRender runs the render loop until the run is done or quit is signalled. A window paces
// frames at the configured fps; headless runs go as fast as the drawable renders.
// Recovers from panics so the drawable is still unloaded.
func (e *engine) handleRender(d Drawable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render loop recovered from panic: %v", r)
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
			e.Quit()
		}
	}()

	var tick <-chan time.Time
	if e.window != nil {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / e.settings.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-e.quitChannel:
			return nil
		default:
		}
		if e.Done() {
			return nil
		}

		if e.needsFrame() {
			if err := e.Step(d); err != nil {
				log.Printf("[Engine] %v", err)
				e.Quit()
				return err
			}
		}

		if tick != nil {
			select {
			case <-e.quitChannel:
				return nil
			case <-tick:
			}
		}
	}
}

// Quit signals the render loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}
