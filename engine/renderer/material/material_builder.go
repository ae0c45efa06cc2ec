package material

import (
	"github.com/Carmen-Shannon/noise-spheres/common"
)

// MaterialBuilderOption configures a material in NewMaterial.
type MaterialBuilderOption func(*material)

// WithName sets the debug name.
func WithName(name string) MaterialBuilderOption {
	return func(m *material) { m.name = name }
}

// WithColor sets the tint written to the color field of the instance slot.
func WithColor(c common.Color) MaterialBuilderOption {
	return func(m *material) { m.color = c }
}

// WithTime sets the animation time, in seconds, the material starts with.
func WithTime(t float32) MaterialBuilderOption {
	return func(m *material) { m.time = t }
}

// WithSlot sets the zero-based element index of the material in the instance storage buffer.
//
// Parameters:
//   - slot: index into the instance array; the slot's byte offset is slot times the slot size
//
// Returns:
//   - MaterialBuilderOption: the option
func WithSlot(slot int) MaterialBuilderOption {
	return func(m *material) { m.slot = slot }
}

// WithPipelineKey names the render pipeline the material draws with.
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) { m.pipelineKey = key }
}
