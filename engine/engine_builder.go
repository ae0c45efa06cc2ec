package engine

import (
	"github.com/Carmen-Shannon/noise-spheres/engine/exporter"
	"github.com/Carmen-Shannon/noise-spheres/engine/profiler"
	"github.com/Carmen-Shannon/noise-spheres/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithSettings replaces every setting at once.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSettings(s Settings) EngineBuilderOption {
	return func(e *engine) {
		e.settings = s
	}
}

// WithDimensions sets the logical output size.
//
// Parameters:
//   - width: the logical width
//   - height: the logical height
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDimensions(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.settings.Dimensions = [2]int{width, height}
	}
}

// WithFPS sets the playback and export frame rate.
//
// Parameters:
//   - fps: frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFPS(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.settings.FPS = fps
	}
}

// WithDuration sets the loop length in seconds.
//
// Parameters:
//   - seconds: the loop duration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDuration(seconds float64) EngineBuilderOption {
	return func(e *engine) {
		e.settings.Duration = seconds
	}
}

// WithAnimate toggles continuous rendering. A still sketch renders once.
func WithAnimate(animate bool) EngineBuilderOption {
	return func(e *engine) {
		e.settings.Animate = animate
	}
}

// WithPixelRatio sets the pixel ratio used when no window supplies one.
func WithPixelRatio(ratio float64) EngineBuilderOption {
	return func(e *engine) {
		e.settings.PixelRatio = ratio
	}
}

// WithAntialias sets the antialias context attribute.
func WithAntialias(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.settings.Attributes.Antialias = enabled
	}
}

// WithContext sets the requested graphics context.
func WithContext(ctx ContextType) EngineBuilderOption {
	return func(e *engine) {
		e.settings.Context = ctx
	}
}

// WithWindow runs the loop on a window. The window's size and pixel ratio drive Resize, and closing
// it ends the run. Without a window the engine runs headless at the configured dimensions.
//
// Parameters:
//   - w: a configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//   - options: profiler options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		if len(options) > 0 {
			e.profiler = profiler.NewProfiler(options...)
		}
	}
}

// WithExporter captures every frame of one loop into x and saves it when the loop completes.
// The drawable must implement Capturer.
//
// Parameters:
//   - x: the exporter
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithExporter(x exporter.Exporter) EngineBuilderOption {
	return func(e *engine) {
		e.exporter = x
	}
}

// WithLoop stops the run after n loops. 0, the default, plays until quit.
func WithLoop(n int) EngineBuilderOption {
	return func(e *engine) {
		e.loops = max(n, 0)
	}
}
