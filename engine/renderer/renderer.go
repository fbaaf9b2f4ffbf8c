package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoAdapter is returned when no GPU adapter compatible with the surface exists.
	ErrNoAdapter = errors.New("no compatible GPU adapter")

	// ErrNoDevice is returned when the adapter denies the device request.
	ErrNoDevice = errors.New("GPU device request denied")

	// ErrSurfaceAcquire is returned by RenderFrame when the next surface image could not be
	// acquired. The frame was skipped and the surface should be reconfigured before the next one.
	ErrSurfaceAcquire = errors.New("surface image acquisition failed")

	// ErrInvalidSurfaceSize is returned by ConfigureSurface for a zero or negative size.
	ErrInvalidSurfaceSize = errors.New("invalid surface size")
)

// DefaultClearColor is the background the render pass clears to.
var DefaultClearColor = wgpu.Color{R: 0.0157, G: 0.0, B: 0.3607, A: 1.0}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	presentMode   PresentMode
	surfaceConfig SurfaceConfig

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	powerPreference      wgpu.PowerPreference
	clearColor           wgpu.Color
}

// Renderer is the high-level rendering API used by the session.
//
// It wraps a RendererBackend, adds surface negotiation, validation and error classification,
// and keeps the current surface configuration. It is not safe for concurrent use; all calls are
// made from the host event loop.
type Renderer interface {
	// RequestAdapter acquires the GPU adapter.
	//
	// Parameters:
	//   - ctx: cancels the request
	//
	// Returns:
	//   - error: ErrNoAdapter wrapping the cause, or the context error
	RequestAdapter(ctx context.Context) error

	// RequestDevice acquires the device and queue.
	//
	// Parameters:
	//   - ctx: cancels the request
	//
	// Returns:
	//   - error: ErrNoDevice wrapping the cause, or the context error
	RequestDevice(ctx context.Context) error

	// ConfigureSurface negotiates format, present mode and alpha mode and applies them at the given size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - SurfaceConfig: the applied configuration
	//   - error: ErrInvalidSurfaceSize, ErrNoSurfaceFormat or a backend error
	ConfigureSurface(width, height int) (SurfaceConfig, error)

	// SurfaceConfig returns the last applied surface configuration.
	//
	// Returns:
	//   - SurfaceConfig: the configuration, zero before the first ConfigureSurface
	SurfaceConfig() SurfaceConfig

	// InitBindGroup creates the GPU objects for a uniform binding and uploads its initial contents.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the binding
	//   - initial: the initial buffer contents, exactly provider.Size() bytes
	//
	// Returns:
	//   - error: an error if creation or the upload fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, initial []byte) error

	// InitMeshBuffers creates and fills static vertex and index buffers on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint16 index bytes
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// RegisterPipeline validates the pipeline and creates its GPU render pipeline against the
	// current surface format. A pipeline that already has a GPU object is left untouched.
	//
	// Parameters:
	//   - p: the pipeline description
	//   - bindGroups: the providers making up the pipeline layout, index = group
	//
	// Returns:
	//   - error: pipeline.ErrInvalidPipeline or a backend error
	RegisterPipeline(p pipeline.Pipeline, bindGroups ...bind_group_provider.BindGroupProvider) error

	// WriteBuffers validates and applies buffer writes to existing buffers.
	//
	// Parameters:
	//   - writes: the writes to apply, in order
	//
	// Returns:
	//   - error: a validation error (nothing is written) or the first backend error
	WriteBuffers(writes ...bind_group_provider.BufferWrite) error

	// RenderFrame encodes, submits and presents one frame: a cleared pass with one indexed draw.
	// If the surface image cannot be acquired nothing is submitted or presented.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - mesh: the provider holding the vertex and index buffers
	//   - bindGroups: the bind groups to set, index = group
	//
	// Returns:
	//   - error: ErrSurfaceAcquire wrapping the cause, or an encoding error
	RenderFrame(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups ...bind_group_provider.BindGroupProvider) error

	// PresentMode returns the requested present mode.
	//
	// Returns:
	//   - PresentMode: the requested mode
	PresentMode() PresentMode

	// SetPresentMode sets the requested present mode. Takes effect at the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to request
	SetPresentMode(mode PresentMode)

	// Release frees every GPU object owned by the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer. Unless WithBackend supplies one, the backend is created for
// backendType against the platform surface described by surfaceDescriptor. No GPU negotiation happens
// here; call RequestAdapter and RequestDevice next.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surfaceDescriptor: the platform-specific surface descriptor, typically from Window.SurfaceDescriptor()
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, surfaceDescriptor *wgpu.SurfaceDescriptor, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backendType: backendType,
		logger:      slog.Default(),
		presentMode: PresentModeAutoVsync,
		clearColor:  DefaultClearColor,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend is created.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter, r.powerPreference, r.clearColor)
		}
	}
	return r
}

func (r *renderer) RequestAdapter(ctx context.Context) error {
	if err := r.backend.RequestAdapter(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	r.logger.Info("gpu adapter acquired", "force_fallback", r.forceFallbackAdapter)
	return nil
}

func (r *renderer) RequestDevice(ctx context.Context) error {
	if err := r.backend.RequestDevice(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	r.logger.Info("gpu device acquired")
	return nil
}

func (r *renderer) ConfigureSurface(width, height int) (SurfaceConfig, error) {
	if width <= 0 || height <= 0 {
		return SurfaceConfig{}, fmt.Errorf("%w: %dx%d", ErrInvalidSurfaceSize, width, height)
	}

	caps, err := r.backend.SurfaceCapabilities()
	if err != nil {
		return SurfaceConfig{}, err
	}
	cfg, err := NegotiateSurface(caps, r.presentMode, uint32(width), uint32(height))
	if err != nil {
		return SurfaceConfig{}, err
	}
	if !IsSRGB(cfg.Format) {
		r.logger.Warn("surface reports no sRGB format, colors will not be gamma corrected", "format", cfg.Format)
	}

	if err := r.backend.ConfigureSurface(cfg); err != nil {
		return SurfaceConfig{}, fmt.Errorf("configure surface %dx%d: %w", width, height, err)
	}
	r.surfaceConfig = cfg
	r.logger.Debug("surface configured",
		"format", cfg.Format,
		"present_mode", cfg.PresentMode,
		"requested_present_mode", r.presentMode,
		"alpha_mode", cfg.AlphaMode,
		"width", cfg.Width,
		"height", cfg.Height,
	)
	return cfg, nil
}

func (r *renderer) SurfaceConfig() SurfaceConfig {
	return r.surfaceConfig
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, initial []byte) error {
	if err := r.backend.InitBindGroup(provider); err != nil {
		return fmt.Errorf("init bind group %s: %w", provider.Label(), err)
	}
	return r.WriteBuffers(bind_group_provider.BufferWrite{Provider: provider, Offset: 0, Data: initial})
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if len(vertexData) == 0 || len(indexData) == 0 || indexCount <= 0 {
		return fmt.Errorf("init mesh buffers %s: empty geometry", provider.Label())
	}
	if err := r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount); err != nil {
		return fmt.Errorf("init mesh buffers %s: %w", provider.Label(), err)
	}
	return nil
}

func (r *renderer) RegisterPipeline(p pipeline.Pipeline, bindGroups ...bind_group_provider.BindGroupProvider) error {
	if p.RenderPipeline() != nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if r.surfaceConfig.Format == wgpu.TextureFormatUndefined {
		return fmt.Errorf("register pipeline %s: surface not configured", p.PipelineKey())
	}
	if err := r.backend.RegisterRenderPipeline(p, r.surfaceConfig.Format, bindGroups); err != nil {
		return fmt.Errorf("%w: %s: %w", pipeline.ErrInvalidPipeline, p.PipelineKey(), err)
	}
	r.logger.Info("render pipeline created", "pipeline", p.PipelineKey(), "format", r.surfaceConfig.Format)
	return nil
}

func (r *renderer) WriteBuffers(writes ...bind_group_provider.BufferWrite) error {
	for _, w := range writes {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) RenderFrame(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups ...bind_group_provider.BindGroupProvider) error {
	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceAcquire, err)
	}
	r.backend.DrawCall(p, mesh, bindGroups)
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	r.backend.Present()
	return nil
}

func (r *renderer) PresentMode() PresentMode {
	return r.presentMode
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.presentMode = mode
}

func (r *renderer) Release() {
	r.backend.Release()
}
