package engine

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer"
)

// ContextType names the graphics context a sketch asks for.
type ContextType string

const (
	// ContextWebGPU selects the WebGPU backend.
	ContextWebGPU ContextType = "webgpu"

	// ContextWebGL is accepted for sketches written against a WebGL canvas and also runs on WebGPU.
	ContextWebGL ContextType = "webgl"
)

// Attributes are the context creation attributes.
type Attributes struct {
	Antialias bool
}

// Settings describes the output surface and the animation loop.
type Settings struct {
	// Dimensions is the logical [width, height] of the output.
	Dimensions [2]int

	// FPS is the playback and export frame rate.
	FPS float64

	// Duration is the loop length in seconds.
	Duration float64

	// Animate renders continuously when true and a single frame when false.
	Animate bool

	Context    ContextType
	Attributes Attributes

	// PixelRatio scales logical dimensions to physical pixels when there is no window to ask.
	PixelRatio float64
}

// DefaultSettings returns a 512x512 four second loop at 24 fps.
func DefaultSettings() Settings {
	return Settings{
		Dimensions: [2]int{512, 512},
		FPS:        24,
		Duration:   4,
		Animate:    true,
		Context:    ContextWebGPU,
		Attributes: Attributes{Antialias: true},
		PixelRatio: 1,
	}
}

// Validate reports the first setting that cannot drive a loop.
func (s Settings) Validate() error {
	if s.Dimensions[0] <= 0 || s.Dimensions[1] <= 0 {
		return fmt.Errorf("settings: invalid dimensions %dx%d", s.Dimensions[0], s.Dimensions[1])
	}
	if !(s.FPS > 0) || math.IsInf(s.FPS, 0) {
		return fmt.Errorf("settings: invalid fps %v", s.FPS)
	}
	if !(s.Duration > 0) || math.IsInf(s.Duration, 0) {
		return fmt.Errorf("settings: invalid duration %v", s.Duration)
	}
	if !(s.PixelRatio > 0) || math.IsInf(s.PixelRatio, 0) {
		return fmt.Errorf("settings: invalid pixel ratio %v", s.PixelRatio)
	}
	if _, err := s.Backend(); err != nil {
		return err
	}
	return nil
}

// Backend maps the context type to a renderer backend.
//
// Returns:
//   - renderer.RendererBackendType: the backend to construct
//   - error: an error for an unknown context type
func (s Settings) Backend() (renderer.RendererBackendType, error) {
	switch common.Coalesce(s.Context, ContextWebGPU) {
	case ContextWebGPU, ContextWebGL:
		return renderer.BackendTypeWGPU, nil
	default:
		return 0, fmt.Errorf("settings: unsupported context %q", s.Context)
	}
}

// TotalFrames returns round(fps*duration), at least 1.
func (s Settings) TotalFrames() int {
	return max(int(math.Round(s.FPS*s.Duration)), 1)
}

// FrameTime returns the playhead in [0, 1) and the loop time in seconds for a frame number.
// Frames past the end of the loop wrap around.
//
// Parameters:
//   - frame: the zero-based frame number
//
// Returns:
//   - playhead: (frame mod total) / total
//   - t: playhead * duration
func (s Settings) FrameTime(frame uint64) (playhead, t float64) {
	if !s.Animate {
		return 0, 0
	}
	total := uint64(s.TotalFrames())
	playhead = float64(frame%total) / float64(total)
	return playhead, playhead * s.Duration
}
