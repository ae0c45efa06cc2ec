package material

import (
	"sync"

	"github.com/Carmen-Shannon/noise-spheres/common"
)

// material is the implementation of the Material interface.
type material struct {
	mu          *sync.Mutex
	name        string
	color       common.Color
	time        float32
	slot        int
	pipelineKey string
}

// Material defines the interface for a per-mesh shader material. It owns the two values the
// sphere shaders read per mesh: a tint color and the animation time. Every mesh holds its own
// Material so each can be mutated independently; the GPU copy lives in the mesh's instance slot.
//
// All methods are safe for concurrent use.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Color retrieves the tint color of the material.
	//
	// Returns:
	//   - common.Color: the tint color
	Color() common.Color

	// SetColor replaces the tint color of the material.
	//
	// Parameters:
	//   - c: the new tint color
	SetColor(c common.Color)

	// Time retrieves the animation time in seconds last written to the material.
	//
	// Returns:
	//   - float32: the time value
	Time() float32

	// SetTime sets the animation time in seconds.
	//
	// Parameters:
	//   - t: the new time value
	SetTime(t float32)

	// Slot retrieves the index of this material's element in the instance storage buffer.
	//
	// Returns:
	//   - int: the slot index
	Slot() int

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// Uniform snapshots the material into its GPU representation.
	//
	// Returns:
	//   - GPUMaterialUniform: the color and time packed for upload
	Uniform() GPUMaterialUniform
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The default color is white and the default time is zero.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:    &sync.Mutex{},
		color: common.Color{R: 1, G: 1, B: 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() common.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

func (m *material) SetColor(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = c
}

func (m *material) Time() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.time
}

func (m *material) SetTime(t float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.time = t
}

func (m *material) Slot() int {
	return m.slot
}

func (m *material) PipelineKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipelineKey
}

func (m *material) SetPipelineKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelineKey = key
}

func (m *material) Uniform() GPUMaterialUniform {
	m.mu.Lock()
	defer m.mu.Unlock()
	return GPUMaterialUniform{
		Color: m.color.Vec3(),
		Time:  m.time,
	}
}
