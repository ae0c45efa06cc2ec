package model

import (
	"sync"

	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/bind_group_provider"
)

type model struct {
	name     string
	geometry Geometry
	radius   float32
	mesh     bind_group_provider.BindGroupProvider

	pack                  sync.Once
	vertexData, indexData []byte
}

// Model is shared geometry drawn by any number of game objects. It packs its Geometry into
// vertex and index bytes on first use, and carries the BindGroupProvider that owns the
// uploaded buffers once the renderer has them.
type Model interface {
	// Name returns the model identifier.
	Name() string

	// Geometry returns the unpacked geometry the model was built from.
	Geometry() Geometry

	// MeshProvider returns the provider holding the uploaded vertex and index buffers, or nil
	// before upload.
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider records the provider returned by the renderer's mesh upload.
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// VertexData returns the vertices packed in GPUVertex layout.
	VertexData() []byte

	// IndexData returns the uint32 indices packed little-endian.
	IndexData() []byte

	VertexCount() int
	IndexCount() int

	// BoundingRadius returns the largest vertex distance from the model origin.
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a Model from the given options. Without WithGeometry the model is empty.
//
// Parameters:
//   - options: ModelBuilderOption functions applied in order
//
// Returns:
//   - Model: the configured model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	m.radius = m.geometry.BoundingRadius()
	return m
}

func (m *model) Name() string                                        { return m.name }
func (m *model) Geometry() Geometry                                  { return m.geometry }
func (m *model) MeshProvider() bind_group_provider.BindGroupProvider { return m.mesh }
func (m *model) VertexCount() int                                    { return len(m.geometry.Vertices) }
func (m *model) IndexCount() int                                     { return len(m.geometry.Indices) }
func (m *model) BoundingRadius() float32                             { return m.radius }

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.mesh = provider
}

func (m *model) VertexData() []byte {
	m.packOnce()
	return m.vertexData
}

func (m *model) IndexData() []byte {
	m.packOnce()
	return m.indexData
}

func (m *model) packOnce() {
	m.pack.Do(func() {
		m.vertexData = MarshalVertices(m.geometry.Vertices)
		m.indexData = MarshalIndices(m.geometry.Indices)
	})
}
