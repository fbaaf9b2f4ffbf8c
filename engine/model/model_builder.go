package model

import "github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"

// ModelBuilderOption is a functional option used to configure a Model during construction.
type ModelBuilderOption func(*model)

// WithName sets the model identifier.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that sets the name
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithVertices sets the model's vertices. The slice is copied.
//
// Parameters:
//   - vertices: the vertices in draw order
//
// Returns:
//   - ModelBuilderOption: a function that sets the vertices
func WithVertices(vertices []GPUVertex) ModelBuilderOption {
	return func(m *model) {
		m.vertices = append([]GPUVertex(nil), vertices...)
	}
}

// WithIndices sets the model's triangle list indices. The slice is copied.
//
// Parameters:
//   - indices: three indices per counter-clockwise triangle
//
// Returns:
//   - ModelBuilderOption: a function that sets the indices
func WithIndices(indices []uint16) ModelBuilderOption {
	return func(m *model) {
		m.indices = append([]uint16(nil), indices...)
	}
}

// WithMeshProvider sets the provider that will own the model's GPU buffers.
//
// Parameters:
//   - provider: the mesh provider
//
// Returns:
//   - ModelBuilderOption: a function that sets the mesh provider
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}
