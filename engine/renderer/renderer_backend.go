package renderer

import (
	"context"

	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// SurfaceCapabilities lists what the surface reports it can be configured with, in the order reported.
type SurfaceCapabilities struct {
	Formats      []wgpu.TextureFormat
	PresentModes []wgpu.PresentMode
	AlphaModes   []wgpu.CompositeAlphaMode
}

// SurfaceConfig is the negotiated surface configuration applied by ConfigureSurface.
type SurfaceConfig struct {
	Format      wgpu.TextureFormat
	PresentMode wgpu.PresentMode
	AlphaMode   wgpu.CompositeAlphaMode
	Width       uint32
	Height      uint32
}

// RendererBackend is the GPU API boundary of the Renderer. Each method is one step of the
// session lifecycle so that the Renderer's ordering and failure handling can be driven
// without a GPU.
type RendererBackend interface {
	// RequestAdapter acquires a GPU adapter compatible with the surface.
	//
	// Parameters:
	//   - ctx: cancels the request before it is issued
	//
	// Returns:
	//   - error: an error if no adapter is available
	RequestAdapter(ctx context.Context) error

	// RequestDevice acquires the logical device and its queue from the adapter with
	// baseline features and the default portable limits.
	//
	// Parameters:
	//   - ctx: cancels the request before it is issued
	//
	// Returns:
	//   - error: an error if the adapter denies the device
	RequestDevice(ctx context.Context) error

	// SurfaceCapabilities queries the formats, present modes and alpha modes the surface supports.
	//
	// Returns:
	//   - SurfaceCapabilities: the reported capabilities
	//   - error: an error if the device has not been acquired
	SurfaceCapabilities() (SurfaceCapabilities, error)

	// ConfigureSurface applies a surface configuration. Called at startup and after every resize.
	//
	// Parameters:
	//   - cfg: the negotiated configuration
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	ConfigureSurface(cfg SurfaceConfig) error

	// InitBindGroup creates the uniform buffer, its bind group layout and its bind group from the
	// provider's layout descriptor and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the binding
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider) error

	// InitMeshBuffers creates the vertex and index buffers, uploads the data and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint16 index bytes, padded to 4 bytes
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: an error if the buffers could not be created or written
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// RegisterRenderPipeline compiles the pipeline's shader, builds the pipeline layout from the given
	// bind groups in group order and creates the render pipeline targeting format. The result is
	// stored on the Pipeline via SetRenderPipeline.
	//
	// Parameters:
	//   - p: the pipeline description
	//   - format: the surface texture format
	//   - bindGroups: the providers whose layouts make up the pipeline layout, index = group
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterRenderPipeline(p pipeline.Pipeline, format wgpu.TextureFormat, bindGroups []bind_group_provider.BindGroupProvider) error

	// WriteBuffers copies each write into its provider's existing uniform buffer through the queue.
	//
	// Parameters:
	//   - writes: the writes to apply, in order
	//
	// Returns:
	//   - error: the first queue write error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the next surface image, creates a command encoder and begins a render
	// pass that clears the image to the clear color.
	//
	// Returns:
	//   - error: an error if the image could not be acquired; no frame state is held afterwards
	BeginFrame() error

	// DrawCall binds the pipeline, the bind groups in group order, the mesh's vertex buffer at slot 0
	// and its uint16 index buffer, then issues one indexed draw over all indices.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: the providers whose bind groups are set, index = group
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the render pass, finishes the encoder and submits the command buffer.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired image and releases the frame's references.
	Present()

	// Release frees the device, adapter, surface and instance in reverse creation order.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}
