package model

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-quad/common"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"
)

// ErrInvalidGeometry is returned by Validate when the vertex and index data cannot be drawn.
var ErrInvalidGeometry = errors.New("invalid geometry")

// model is the implementation of the Model interface.
type model struct {
	name         string
	vertices     []GPUVertex
	indices      []uint16
	meshProvider bind_group_provider.BindGroupProvider
}

// Model defines the interface for indexed, colored triangle geometry.
// The vertex and index data are fixed at creation; the Renderer uploads them once into the
// vertex and index buffers held by MeshProvider.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the model's vertices in draw order.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns the triangle list indices, three per counter-clockwise triangle.
	//
	// Returns:
	//   - []uint16: the indices
	Indices() []uint16

	// VertexData returns the little-endian vertex bytes, 24 bytes per vertex.
	//
	// Returns:
	//   - []byte: the packed vertex data
	VertexData() []byte

	// IndexData returns the little-endian uint16 index bytes, padded to a multiple of 4 bytes.
	//
	// Returns:
	//   - []byte: the packed index data
	IndexData() []byte

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// MeshProvider returns the provider that owns the model's GPU vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// Validate checks that the geometry forms complete triangles whose indices are in range.
	//
	// Returns:
	//   - error: ErrInvalidGeometry wrapped with detail, or nil
	Validate() error
}

var _ Model = &model{}

// NewModel creates a new Model from the given options.
// A mesh provider named after the model is created when none is supplied.
//
// Parameters:
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the new model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{name: "model"}
	for _, option := range options {
		option(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name + "_mesh")
	}
	return m
}

// NewQuad creates the colored unit quad: four vertices at +/-0.5 on X and Y and the indices 0,1,2, 0,2,3.
//
// Returns:
//   - Model: the quad model
func NewQuad() Model {
	return NewModel(
		WithName("quad"),
		WithVertices(QuadVertices),
		WithIndices(QuadIndices),
	)
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint16 {
	return m.indices
}

func (m *model) VertexData() []byte {
	var buf bytes.Buffer
	for i := range m.vertices {
		buf.Write(m.vertices[i].Marshal())
	}
	return buf.Bytes()
}

func (m *model) IndexData() []byte {
	return common.Uint16sToBytes(m.indices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) Validate() error {
	if len(m.vertices) == 0 {
		return fmt.Errorf("%w: %s has no vertices", ErrInvalidGeometry, m.name)
	}
	if len(m.vertices) > 1<<16 {
		return fmt.Errorf("%w: %s has %d vertices, more than uint16 indices can address", ErrInvalidGeometry, m.name, len(m.vertices))
	}
	if len(m.indices) == 0 || len(m.indices)%3 != 0 {
		return fmt.Errorf("%w: %s index count %d is not a positive multiple of 3", ErrInvalidGeometry, m.name, len(m.indices))
	}
	for i, idx := range m.indices {
		if int(idx) >= len(m.vertices) {
			return fmt.Errorf("%w: %s index %d at position %d is out of range for %d vertices", ErrInvalidGeometry, m.name, idx, i, len(m.vertices))
		}
	}
	return nil
}
