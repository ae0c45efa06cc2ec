package game_object

import (
	"github.com/Carmen-Shannon/noise-spheres/engine/model"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/material"
)

// GameObjectBuilderOption configures a game object in NewGameObject.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the object identifier. IDs are assigned by the caller and not checked for uniqueness.
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) { obj.id = id }
}

// WithEnabled sets whether the object draws. A disabled object still occupies its instance slot,
// collapsed to a zero model matrix.
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) { obj.enabled.Store(enabled) }
}

// WithModel shares m with the object. The model is aliased, not copied.
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) { obj.mdl = m }
}

// WithMaterial gives the object its own material. Materials must not be shared between objects,
// since each one addresses a single instance slot.
func WithMaterial(mat material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) { obj.mat = mat }
}

// WithPosition sets the initial translation.
func WithPosition(position [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) { obj.position = position }
}

// WithScale sets the initial per-axis scale. Zero or negative components are allowed; a zero
// component flattens the object.
func WithScale(scale [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) { obj.scale = scale }
}
