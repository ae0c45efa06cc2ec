package window

import "github.com/Carmen-Shannon/noise-spheres/common"

// WindowBuilderOption configures a window in NewWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial logical client size in screen coordinates. The framebuffer is
// larger on high density displays.
//
// Parameters:
//   - width: initial client width
//   - height: initial client height
//
// Returns:
//   - WindowBuilderOption: the option
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width, w.height = width, height
	}
}

// WithSizeLimits bounds interactive resizing. A zero dimension leaves that bound unset.
//
// Parameters:
//   - minSize: the smallest client size
//   - maxSize: the largest client size
//
// Returns:
//   - WindowBuilderOption: the option
func WithSizeLimits(minSize, maxSize common.Size) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minSize, w.maxSize = minSize, maxSize
	}
}

// WithResizable controls whether the user can resize the window.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}
