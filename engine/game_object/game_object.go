package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/model"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/material"
)

type gameObject struct {
	mu      *sync.Mutex
	id      uint64
	enabled atomic.Bool
	mdl     model.Model
	mat     material.Material

	position [3]float32
	scale    [3]float32
}

// GameObject defines the interface for a mesh entity: a reference to shared geometry, its own
// material, and a position/scale transform. The scene applies one root rotation about z to
// every object when building instance data.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the shared Model this object draws, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Material returns the material owned by this object.
	//
	// Returns:
	//   - material.Material: the object's material or nil
	Material() material.Material

	// Position returns the object's translation relative to the scene root.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// SetPosition sets the object's translation relative to the scene root.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// Scale returns the object's per-axis scale. Components may be zero or negative.
	//
	// Returns:
	//   - [3]float32: the scale
	Scale() [3]float32

	// SetScale sets the object's per-axis scale. Zero or negative components are kept as given.
	//
	// Parameters:
	//   - x, y, z: new scale components
	SetScale(x, y, z float32)

	// ModelMatrix composes the world matrix Rz(rootRotationZ) * T(position) * S(scale).
	// The matrix is never inverted, so degenerate scales produce a finite, flattened transform.
	//
	// Parameters:
	//   - rootRotationZ: the scene root rotation about z in radians
	//
	// Returns:
	//   - [16]float32: the column-major world matrix
	ModelMatrix(rootRotationZ float32) [16]float32

	// Instance builds the object's element of the instance storage buffer.
	// A disabled object gets a zero world matrix, which collapses every vertex to a single point.
	//
	// Parameters:
	//   - rootRotationZ: the scene root rotation about z in radians
	//
	// Returns:
	//   - GPUSphereInstance: the world matrix and material uniform
	Instance(rootRotationZ float32) GPUSphereInstance
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new enabled GameObject at the origin with unit scale, then applies the options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:    &sync.Mutex{},
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Material() material.Material {
	return g.mat
}

func (g *gameObject) Position() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) Scale() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetScale(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [3]float32{x, y, z}
}

func (g *gameObject) ModelMatrix(rootRotationZ float32) [16]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return common.ModelMatrix(rootRotationZ, g.position, g.scale)
}

func (g *gameObject) Instance(rootRotationZ float32) GPUSphereInstance {
	var inst GPUSphereInstance
	if g.Enabled() {
		inst.Model = g.ModelMatrix(rootRotationZ)
	}
	if g.mat != nil {
		inst.Material = g.mat.Uniform()
	}
	return inst
}
