package light

import "github.com/Carmen-Shannon/noise-spheres/common"

// LightBuilderOption configures a light in NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition places the light. A directional light shines from here towards the origin.
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) { l.position = [3]float32{x, y, z} }
}

// WithColor sets the unscaled light color.
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) { l.color = c }
}

// WithIntensity scales the color in Radiance. Negative values clamp to zero.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) { l.intensity = max(intensity, 0) }
}

// WithEnabled sets whether the light starts enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) { l.enabled = enabled }
}
