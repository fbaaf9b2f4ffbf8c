package bind_group_provider

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrBufferOverflow is returned when a write would run past the end of the provider's buffer.
	ErrBufferOverflow = errors.New("buffer write overflows buffer")

	// ErrUnalignedWrite is returned when a write's offset or length is not a multiple of 4 bytes.
	ErrUnalignedWrite = errors.New("buffer write is not 4-byte aligned")
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// binding is the @binding index of the uniform within group 0.
	binding int
	// visibility is the set of shader stages that read the uniform.
	visibility wgpu.ShaderStage
	// size is the uniform buffer size in bytes, or 0 for a provider that only carries geometry.
	size uint64

	// The following fields are GPU allocated resources and must be released when no longer needed.
	// They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the GPU bind group layout created for this provider, or nil if not initialized with the Renderer.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffer is the uniform buffer backing the binding.
	buffer *wgpu.Buffer

	// The following fields belong to geometry providers. They hold the vertex and index buffers
	// uploaded once at startup.

	// vertexBuffer is the GPU vertex buffer created for this provider, or nil if not initialized with the Renderer.
	vertexBuffer *wgpu.Buffer
	// indexBuffer is the GPU index buffer created for this provider, or nil if not initialized with the Renderer.
	indexBuffer *wgpu.Buffer
	// indexCount is the number of indices for draw calls.
	indexCount int
}

// BindGroupProvider describes one GPU binding and owns the GPU objects created for it.
// The camera holds a uniform provider (a single vertex-visible uniform buffer at group 0) and the
// quad geometry holds a geometry provider (vertex and index buffers). The Renderer creates the
// GPU resources and stores them back through the setters.
//
// Usage pattern:
//  1. Create a provider with NewBindGroupProvider and a uniform size
//  2. Renderer.InitBindGroup(provider, initialData) creates the buffer, layout and bind group
//  3. Renderer.WriteBuffers(BufferWrite{...}) updates the uniform in place
//  4. BindGroup() is bound for draw calls
//  5. Release() frees the GPU objects
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider and clears the references.
	// Safe to call more than once.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Binding returns the @binding index of the uniform.
	//
	// Returns:
	//   - int: the binding index
	Binding() int

	// Visibility returns the shader stages that can read the uniform.
	//
	// Returns:
	//   - wgpu.ShaderStage: the stage mask
	Visibility() wgpu.ShaderStage

	// Size returns the uniform buffer size in bytes.
	//
	// Returns:
	//   - uint64: the buffer size, 0 when the provider has no uniform
	Size() uint64

	// LayoutDescriptor builds the bind group layout descriptor for the uniform.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: one uniform buffer entry with MinBindingSize equal to Size
	LayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout for this provider.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the uniform buffer for data writes.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer() *wgpu.Buffer

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer or nil
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup sets the bind group after GPU initialization.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout after GPU initialization.
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer sets the uniform buffer after GPU initialization.
	//
	// Parameters:
	//   - buf: the created buffer
	SetBuffer(buf *wgpu.Buffer)

	// SetVertexBuffer sets the GPU vertex buffer.
	//
	// Parameters:
	//   - buf: the vertex buffer
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer sets the GPU index buffer and the number of indices it holds.
	//
	// Parameters:
	//   - buf: the index buffer
	//   - count: the number of indices
	SetIndexBuffer(buf *wgpu.Buffer, count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a provider bound at binding 0, visible to the vertex stage.
//
// Parameters:
//   - label: debug label used for the GPU objects
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider with no GPU resources yet
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:      label,
		binding:    0,
		visibility: wgpu.ShaderStageVertex,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *bindGroupProvider) Release() {
	// reverse creation order: bind group, layout, then buffers
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.buffer != nil {
		p.buffer.Release()
		p.buffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	p.indexCount = 0
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Binding() int {
	return p.binding
}

func (p *bindGroupProvider) Visibility() wgpu.ShaderStage {
	return p.visibility
}

func (p *bindGroupProvider) Size() uint64 {
	return p.size
}

func (p *bindGroupProvider) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: p.label + "_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    uint32(p.binding),
				Visibility: p.visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: p.size,
				},
			},
		},
	}
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer() *wgpu.Buffer {
	return p.buffer
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(buf *wgpu.Buffer) {
	p.buffer = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer, count int) {
	p.indexBuffer = buf
	p.indexCount = count
}
