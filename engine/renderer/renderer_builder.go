package renderer

import (
	"github.com/Carmen-Shannon/noise-spheres/common"
)

// RendererBuilderOption configures a renderer in NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode picks VSync or Uncapped presentation. Ignored for offscreen targets.
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the sample count, MSAA4x by default.
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithAntialias maps the boolean antialias context attribute onto a sample count: 4x when true, off otherwise.
func WithAntialias(enabled bool) RendererBuilderOption {
	if enabled {
		return WithMSAA(MSAA4x)
	}
	return WithMSAA(MSAAOff)
}

// WithOffscreen renders into a width x height texture instead of a window surface, so frames
// can be read back with Capture. NewRenderer then accepts a nil window.
func WithOffscreen(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.offscreenSize = &common.Size{Width: width, Height: height}
	}
}

// WithClearColor sets the initial background color.
func WithClearColor(color common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithForceSoftwareRenderer requests the fallback adapter, e.g. lavapipe or SwiftShader on a
// headless export machine.
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
