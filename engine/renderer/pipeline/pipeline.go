package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidPipeline is returned by Validate when the configuration cannot produce a working render pipeline.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// ReplaceBlend writes the fragment color unchanged: src=One, dst=Zero, op=Add on color and alpha.
var ReplaceBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

// DefaultVertexLayout returns the colored vertex layout: position Float32x3 at offset 0 (location 0)
// and color Float32x3 at offset 12 (location 1), stride 24, stepping per vertex.
//
// Returns:
//   - wgpu.VertexBufferLayout: a fresh copy of the layout
func DefaultVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 24,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as the GPU label
	pipelineKey string

	// shader holds both stages; it must be set before the pipeline is registered
	shader shader.Shader

	// renderPipeline is the GPU pipeline, nil until registered with the Renderer
	renderPipeline *wgpu.RenderPipeline

	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	cullMode     wgpu.CullMode
	sampleCount  uint32
	writeMask    wgpu.ColorWriteMask
	blendState   wgpu.BlendState
	vertexLayout wgpu.VertexBufferLayout
	// bindingLayout is the group 0 layout the pipeline layout is built from
	bindingLayout wgpu.BindGroupLayoutDescriptor
}

// Pipeline defines the interface for the immutable render pipeline description. It holds the
// shader, the fixed-function state and the vertex and binding layouts; the Renderer turns it
// into a GPU pipeline once and stores the result back with SetRenderPipeline.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shader providing the vertex and fragment stages, or nil if not set.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// RenderPipeline returns the GPU render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order
	FrontFace() wgpu.FrontFace

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// SampleCount returns the multisample count.
	//
	// Returns:
	//   - uint32: the sample count
	SampleCount() uint32

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the color target blend state.
	//
	// Returns:
	//   - wgpu.BlendState: the blend state
	BlendState() wgpu.BlendState

	// VertexLayout returns the vertex buffer layout bound at slot 0.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the vertex layout
	VertexLayout() wgpu.VertexBufferLayout

	// BindingLayout returns the group 0 bind group layout descriptor.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	BindingLayout() wgpu.BindGroupLayoutDescriptor

	// Descriptor assembles the render pipeline descriptor for the given GPU objects.
	// Depth and stencil are disabled.
	//
	// Parameters:
	//   - layout: the pipeline layout holding the group 0 bind group layout
	//   - module: the shader module compiled from Shader().Module()
	//   - format: the surface texture format of the single color target
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor
	Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor

	// Validate checks the configuration against the shader's reflected interface.
	//
	// Returns:
	//   - error: ErrInvalidPipeline wrapped with detail, or nil
	Validate() error

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the GPU render pipeline if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description with triangle list topology, counter-clockwise
// front faces, back-face culling, one sample, replace blending, all color channels written and the
// colored vertex layout.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		cullMode:     wgpu.CullModeBack,
		sampleCount:  1,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState:   ReplaceBlend,
		vertexLayout: DefaultVertexLayout(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) VertexLayout() wgpu.VertexBufferLayout {
	return p.vertexLayout
}

func (p *pipeline) BindingLayout() wgpu.BindGroupLayoutDescriptor {
	return p.bindingLayout
}

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	var vsEntry, fsEntry string
	if p.shader != nil {
		vsEntry, fsEntry = p.shader.VertexEntryPoint(), p.shader.FragmentEntryPoint()
	}
	blend := p.blendState
	return &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vsEntry,
			Buffers:    []wgpu.VertexBufferLayout{p.vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fsEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					Blend:     &blend,
					WriteMask: p.writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: nil,
	}
}

func (p *pipeline) Validate() error {
	if p.shader == nil {
		return fmt.Errorf("%w: %s has no shader", ErrInvalidPipeline, p.pipelineKey)
	}
	if p.shader.VertexEntryPoint() == "" {
		return fmt.Errorf("%w: shader %s has no @vertex entry point", ErrInvalidPipeline, p.shader.Key())
	}
	if p.shader.FragmentEntryPoint() == "" {
		return fmt.Errorf("%w: shader %s has no @fragment entry point", ErrInvalidPipeline, p.shader.Key())
	}
	if p.sampleCount != 1 {
		return fmt.Errorf("%w: sample count must be 1, got %d", ErrInvalidPipeline, p.sampleCount)
	}
	if p.vertexLayout.ArrayStride == 0 {
		return fmt.Errorf("%w: vertex layout has zero stride", ErrInvalidPipeline)
	}
	if err := p.validateVertexInput(); err != nil {
		return err
	}
	return p.validateBindings()
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// vertexFormatSizes is the byte size of each vertex format the layout may use.
var vertexFormatSizes = map[wgpu.VertexFormat]uint64{
	wgpu.VertexFormatFloat32:   4,
	wgpu.VertexFormatFloat32x2: 8,
	wgpu.VertexFormatFloat32x3: 12,
	wgpu.VertexFormatFloat32x4: 16,
	wgpu.VertexFormatSint32:    4,
	wgpu.VertexFormatSint32x2:  8,
	wgpu.VertexFormatSint32x3:  12,
	wgpu.VertexFormatSint32x4:  16,
	wgpu.VertexFormatUint32:    4,
	wgpu.VertexFormatUint32x2:  8,
	wgpu.VertexFormatUint32x3:  12,
	wgpu.VertexFormatUint32x4:  16,
	wgpu.VertexFormatUnorm8x4:  4,
	wgpu.VertexFormatFloat16x2: 4,
	wgpu.VertexFormatFloat16x4: 8,
}

// validateVertexInput checks that every attribute the shader reads is supplied by the
// configured layout at the same location with the same format.
func (p *pipeline) validateVertexInput() error {
	configured := make(map[uint32]wgpu.VertexAttribute, len(p.vertexLayout.Attributes))
	for _, a := range p.vertexLayout.Attributes {
		size, ok := vertexFormatSizes[a.Format]
		if !ok {
			return fmt.Errorf("%w: attribute at location %d has unsupported format %v", ErrInvalidPipeline, a.ShaderLocation, a.Format)
		}
		if a.Offset+size > p.vertexLayout.ArrayStride {
			return fmt.Errorf("%w: attribute at location %d spans [%d, %d) past the stride %d",
				ErrInvalidPipeline, a.ShaderLocation, a.Offset, a.Offset+size, p.vertexLayout.ArrayStride)
		}
		configured[a.ShaderLocation] = a
	}

	reflected := p.shader.VertexLayouts()
	if len(reflected) > 1 {
		return fmt.Errorf("%w: shader %s declares %d vertex input structs, expected 1", ErrInvalidPipeline, p.shader.Key(), len(reflected))
	}
	for _, layout := range reflected {
		for _, want := range layout.Attributes {
			got, ok := configured[want.ShaderLocation]
			if !ok {
				return fmt.Errorf("%w: shader reads @location(%d) but the vertex layout does not supply it", ErrInvalidPipeline, want.ShaderLocation)
			}
			if got.Format != want.Format {
				return fmt.Errorf("%w: @location(%d) format mismatch: layout %v, shader %v", ErrInvalidPipeline, want.ShaderLocation, got.Format, want.Format)
			}
		}
	}
	return nil
}

// validateBindings checks that every group 0 binding the shader declares is present in the
// configured binding layout with a matching type, sufficient size and visibility.
func (p *pipeline) validateBindings() error {
	reflected, ok := p.shader.BindGroupLayoutDescriptor(0)
	if !ok {
		return nil
	}
	configured := make(map[uint32]wgpu.BindGroupLayoutEntry, len(p.bindingLayout.Entries))
	for _, e := range p.bindingLayout.Entries {
		configured[e.Binding] = e
	}

	for _, want := range reflected.Entries {
		got, ok := configured[want.Binding]
		switch {
		case !ok:
			return fmt.Errorf("%w: shader declares @group(0) @binding(%d) but the binding layout does not", ErrInvalidPipeline, want.Binding)
		case got.Buffer.Type != want.Buffer.Type:
			return fmt.Errorf("%w: @binding(%d) buffer type mismatch", ErrInvalidPipeline, want.Binding)
		case got.Buffer.MinBindingSize < want.Buffer.MinBindingSize:
			return fmt.Errorf("%w: @binding(%d) needs %d bytes, binding provides %d", ErrInvalidPipeline, want.Binding, want.Buffer.MinBindingSize, got.Buffer.MinBindingSize)
		case want.Visibility&^got.Visibility != 0:
			return fmt.Errorf("%w: @binding(%d) is used by stages the binding is not visible to", ErrInvalidPipeline, want.Binding)
		}
	}
	return nil
}
