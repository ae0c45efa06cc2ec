package model

// ModelBuilderOption configures a model in NewModel.
type ModelBuilderOption func(*model)

// WithName sets the model identifier.
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithGeometry sets the geometry the model packs and draws. The bounding radius is derived from it.
//
// Parameters:
//   - g: indexed triangle geometry, e.g. from NewSphereGeometry
//
// Returns:
//   - ModelBuilderOption: the option
func WithGeometry(g Geometry) ModelBuilderOption {
	return func(m *model) {
		m.geometry = g
	}
}
