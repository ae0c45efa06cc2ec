package scene

import (
	"github.com/Carmen-Shannon/noise-spheres/engine/easing"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithEasing replaces the curve that maps the sine-warped playhead to the root rotation.
// The default is easing.Sketch. A nil curve is ignored.
//
// Parameters:
//   - ease: the easing curve
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEasing(ease easing.Func) SceneBuilderOption {
	return func(s *scene) {
		if ease != nil {
			s.ease = ease
		}
	}
}

// WithWorkers sets the number of worker goroutines that pack instance data each frame.
// Defaults to runtime.NumCPU()-1, at least 1.
//
// Parameters:
//   - workers: the worker count; values below 1 are ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		if workers > 0 {
			s.workers = workers
		}
	}
}
