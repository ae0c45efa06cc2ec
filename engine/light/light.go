package light

import (
	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/chewxy/math32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient represents a light that reaches every surface equally, with no position or direction.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a distant light shining from its position towards the origin.
	LightTypeDirectional
)

// String returns a readable name for the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  [3]float32
	color     common.Color
	intensity float32
	enabled   bool
}

// Light defines the interface for a light source in the scene.
//
// The sphere shaders shade from the material color alone, so lights are scene description:
// they are built, owned and inspected by the scene but never uploaded.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (ambient or directional)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for ambient lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction the light travels, from its position towards the origin.
	// Zero for ambient lights and for a directional light placed at the origin.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the color of the light.
	//
	// Returns:
	//   - common.Color: the light color
	Color() common.Color

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Radiance returns the light color scaled by its intensity, or black when disabled.
	//
	// Returns:
	//   - common.Color: the effective color
	Radiance() common.Color

	// Enabled returns whether this light is active.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type. Defaults are a white, enabled light of
// intensity 1 at the origin.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		color:     common.Color{R: 1, G: 1, B: 1},
		intensity: 1,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	if l.lightType != LightTypeDirectional {
		return [3]float32{}
	}
	p := l.position
	n := math32.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	if n == 0 {
		return [3]float32{}
	}
	return [3]float32{-p[0] / n, -p[1] / n, -p[2] / n}
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Radiance() common.Color {
	if !l.enabled {
		return common.Color{}
	}
	return l.color.Scale(l.intensity)
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
