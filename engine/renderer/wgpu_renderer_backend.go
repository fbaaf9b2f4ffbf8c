package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	// surfaceDescriptor and createInstance are consumed by RequestAdapter, which creates the instance and surface
	surfaceDescriptor *wgpu.SurfaceDescriptor
	createInstance    func(*wgpu.InstanceDescriptor) *wgpu.Instance

	forceFallbackAdapter bool
	powerPreference      wgpu.PowerPreference
	clearColor           wgpu.Color

	// Frame state between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, powerPreference wgpu.PowerPreference, clearColor wgpu.Color) *wgpuRendererBackendImpl {
	return &wgpuRendererBackendImpl{
		surfaceDescriptor:    surfaceDescriptor,
		createInstance:       wgpu.CreateInstance,
		forceFallbackAdapter: forceFallbackAdapter,
		powerPreference:      powerPreference,
		clearColor:           clearColor,
	}
}

// errWebGPUUnavailable is returned when the host exposes no WebGPU implementation (no navigator.gpu in the browser).
var errWebGPUUnavailable = errors.New("WebGPU is not available on this host")

// createSurface creates the instance and surface on first use.
func (b *wgpuRendererBackendImpl) createSurface() error {
	if b.instance == nil {
		b.instance = b.createInstance(nil)
		if b.instance == nil {
			return errWebGPUUnavailable
		}
	}
	if b.surface == nil {
		if b.surfaceDescriptor == nil {
			return errors.New("no surface descriptor; the window is not open")
		}
		b.surface = b.instance.CreateSurface(b.surfaceDescriptor)
		if b.surface == nil {
			return errors.New("surface creation failed")
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) RequestAdapter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.createSurface(); err != nil {
		return err
	}
	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		PowerPreference:      b.powerPreference,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return err
	}
	if a == nil {
		return errors.New("adapter request returned no adapter")
	}
	b.adapter = a
	return nil
}

func (b *wgpuRendererBackendImpl) RequestDevice(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.adapter == nil {
		return errors.New("device requested before adapter")
	}
	d, err := b.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return err
	}
	b.device = d
	b.queue = d.GetQueue()
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceCapabilities() (SurfaceCapabilities, error) {
	if b.adapter == nil {
		return SurfaceCapabilities{}, errors.New("surface capabilities queried before adapter")
	}
	caps := b.surface.GetCapabilities(b.adapter)
	return SurfaceCapabilities{
		Formats:      caps.Formats,
		PresentModes: caps.PresentModes,
		AlphaModes:   caps.AlphaModes,
	}, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(cfg SurfaceConfig) error {
	if b.device == nil {
		return errors.New("surface configured before device")
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      cfg.Format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: cfg.PresentMode,
		AlphaMode:   cfg.AlphaMode,
	})
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	descriptor := provider.LayoutDescriptor()

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("failed to create bind group layout %s: %w", descriptor.Label, err)
		}
		provider.SetBindGroupLayout(layout)
	}

	buf := provider.Buffer()
	if buf == nil {
		var err error
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Buffer",
			Size:  provider.Size(),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetBuffer(buf)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: uint32(provider.Binding()),
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	if err := b.queue.WriteBuffer(vb, 0, vertexData); err != nil {
		vb.Release()
		return err
	}

	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return err
	}
	if err := b.queue.WriteBuffer(ib, 0, indexData); err != nil {
		ib.Release()
		vb.Release()
		return err
	}

	provider.SetVertexBuffer(vb)
	provider.SetIndexBuffer(ib, indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline, format wgpu.TextureFormat, bindGroups []bind_group_provider.BindGroupProvider) error {
	s := p.Shader()
	if s == nil {
		return errors.New("a shader must be set to create a render pipeline")
	}

	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return err
	}
	defer module.Release()

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(bindGroups))
	for g, provider := range bindGroups {
		if provider.BindGroupLayout() == nil {
			return fmt.Errorf("bind group %d (%s) has no layout, call InitBindGroup first", g, provider.Label())
		}
		bindGroupLayouts[g] = provider.BindGroupLayout()
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(p.Descriptor(pipelineLayout, module, format))
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	for _, w := range writes {
		buf := w.Provider.Buffer()
		if buf == nil {
			return fmt.Errorf("buffer write to %s before InitBindGroup", w.Provider.Label())
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return err
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Quad Render Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
	})

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) {
	if b.framePass == nil {
		return
	}
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	if b.framePass == nil {
		return errors.New("EndFrame called without BeginFrame")
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameImage()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameImage()
}

func (b *wgpuRendererBackendImpl) Release() {
	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameImage()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseFrameImage() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}
