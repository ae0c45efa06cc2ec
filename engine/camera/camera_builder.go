package camera

import (
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
)

// CameraBuilderOption configures a camera in NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithZoom sets the half-height of the view volume, which is also the eye offset along each
// axis. Non-positive values keep DefaultZoom.
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithClipPlanes sets the near and far planes. Near may be negative so geometry behind the eye
// is still drawn.
//
// Parameters:
//   - near: near plane distance along the view direction
//   - far: far plane distance, greater than near
//
// Returns:
//   - CameraBuilderOption: the option
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near, c.far = near, far
	}
}

// WithLookAt sets the point the camera looks at and its up vector. The eye stays offset from
// target by (zoom, zoom, zoom).
//
// Parameters:
//   - target: world-space look-at point
//   - up: up direction, not parallel to the view direction
//
// Returns:
//   - CameraBuilderOption: the option
func WithLookAt(target, up [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target, c.up = target, up
	}
}

// WithBindGroupProvider replaces the provider NewCamera creates for the camera uniform.
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.bindGroupProvider = provider
	}
}
