package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend is a GPU-free RendererBackend that records the calls it receives.
type recordingBackend struct {
	calls []string
	caps  SurfaceCapabilities

	adapterErr error
	deviceErr  error
	acquireErr error

	configured []SurfaceConfig
	writes     []bind_group_provider.BufferWrite
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		caps: SurfaceCapabilities{
			Formats:      []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb},
			PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox},
			AlphaModes:   []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
		},
	}
}

func (b *recordingBackend) RequestAdapter(context.Context) error {
	b.calls = append(b.calls, "adapter")
	return b.adapterErr
}

func (b *recordingBackend) RequestDevice(context.Context) error {
	b.calls = append(b.calls, "device")
	return b.deviceErr
}

func (b *recordingBackend) SurfaceCapabilities() (SurfaceCapabilities, error) {
	return b.caps, nil
}

func (b *recordingBackend) ConfigureSurface(cfg SurfaceConfig) error {
	b.calls = append(b.calls, "configure")
	b.configured = append(b.configured, cfg)
	return nil
}

func (b *recordingBackend) InitBindGroup(bind_group_provider.BindGroupProvider) error {
	b.calls = append(b.calls, "bind_group")
	return nil
}

func (b *recordingBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	b.calls = append(b.calls, "mesh")
	provider.SetIndexBuffer(nil, indexCount)
	return nil
}

func (b *recordingBackend) RegisterRenderPipeline(pipeline.Pipeline, wgpu.TextureFormat, []bind_group_provider.BindGroupProvider) error {
	b.calls = append(b.calls, "pipeline")
	return nil
}

func (b *recordingBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.calls = append(b.calls, "write")
	b.writes = append(b.writes, writes...)
	return nil
}

func (b *recordingBackend) BeginFrame() error {
	b.calls = append(b.calls, "begin")
	return b.acquireErr
}

func (b *recordingBackend) DrawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, []bind_group_provider.BindGroupProvider) {
	b.calls = append(b.calls, "draw")
}

func (b *recordingBackend) EndFrame() error {
	b.calls = append(b.calls, "submit")
	return nil
}

func (b *recordingBackend) Present() {
	b.calls = append(b.calls, "present")
}

func (b *recordingBackend) Release() {
	b.calls = append(b.calls, "release")
}

func quadPipeline(t *testing.T, camera bind_group_provider.BindGroupProvider) pipeline.Pipeline {
	t.Helper()
	s, err := shader.NewQuadShader()
	require.NoError(t, err)
	return pipeline.NewPipeline("quad", pipeline.WithShader(s), pipeline.WithBindingLayout(camera.LayoutDescriptor()))
}

func TestRequestErrorsAreClassified(t *testing.T) {
	b := newRecordingBackend()
	b.adapterErr = errors.New("none")
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	assert.ErrorIs(t, r.RequestAdapter(context.Background()), ErrNoAdapter)

	b.deviceErr = errors.New("denied")
	assert.ErrorIs(t, r.RequestDevice(context.Background()), ErrNoDevice)
}

func TestRequestAdapterWithoutWebGPU(t *testing.T) {
	b := newWGPURendererBackend(nil, false, wgpu.PowerPreferenceUndefined, DefaultClearColor)
	created := 0
	b.createInstance = func(*wgpu.InstanceDescriptor) *wgpu.Instance {
		created++
		return nil
	}
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))

	err := r.RequestAdapter(context.Background())
	assert.ErrorIs(t, err, ErrNoAdapter)
	assert.ErrorIs(t, err, errWebGPUUnavailable)
	assert.Equal(t, 1, created)
	assert.Nil(t, b.surface)
	assert.NotPanics(t, r.Release)
}

func TestRequestAdapterCancelled(t *testing.T) {
	b := newRecordingBackend()
	b.adapterErr = context.Canceled
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.RequestAdapter(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNoAdapter)
}

func TestConfigureSurfaceNegotiates(t *testing.T) {
	b := newRecordingBackend()
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b), WithPresentMode(PresentModeAutoNoVsync))

	cfg, err := r.ConfigureSurface(800, 450)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, cfg.Format)
	assert.Equal(t, wgpu.PresentModeMailbox, cfg.PresentMode)
	assert.Equal(t, wgpu.CompositeAlphaModeOpaque, cfg.AlphaMode)
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, uint32(450), cfg.Height)
	assert.Equal(t, cfg, r.SurfaceConfig())
	require.Len(t, b.configured, 1)
}

func TestConfigureSurfaceRejectsZeroArea(t *testing.T) {
	b := newRecordingBackend()
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	_, err := r.ConfigureSurface(0, 450)
	assert.ErrorIs(t, err, ErrInvalidSurfaceSize)
	assert.Empty(t, b.configured)
}

func TestConfigureSurfaceNoFormats(t *testing.T) {
	b := newRecordingBackend()
	b.caps.Formats = nil
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	_, err := r.ConfigureSurface(10, 10)
	assert.ErrorIs(t, err, ErrNoSurfaceFormat)
}

func TestInitBindGroupUploadsInitialContents(t *testing.T) {
	b := newRecordingBackend()
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	camera := bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithSize(64))

	require.NoError(t, r.InitBindGroup(camera, make([]byte, 64)))
	assert.Equal(t, []string{"bind_group", "write"}, b.calls)
	require.Len(t, b.writes, 1)
	assert.Equal(t, uint64(0), b.writes[0].Offset)
}

func TestWriteBuffersRejectsOverflowBeforeWriting(t *testing.T) {
	b := newRecordingBackend()
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	camera := bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithSize(64))

	err := r.WriteBuffers(
		bind_group_provider.BufferWrite{Provider: camera, Data: make([]byte, 64)},
		bind_group_provider.BufferWrite{Provider: camera, Offset: 4, Data: make([]byte, 64)},
	)
	assert.ErrorIs(t, err, bind_group_provider.ErrBufferOverflow)
	assert.Empty(t, b.writes)
}

func TestRegisterPipeline(t *testing.T) {
	b := newRecordingBackend()
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	camera := bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithSize(64))
	p := quadPipeline(t, camera)

	err := r.RegisterPipeline(p, camera)
	require.Error(t, err, "surface must be configured first")

	_, err = r.ConfigureSurface(4, 4)
	require.NoError(t, err)
	require.NoError(t, r.RegisterPipeline(p, camera))
	assert.Contains(t, b.calls, "pipeline")

	invalid := pipeline.NewPipeline("broken")
	assert.ErrorIs(t, r.RegisterPipeline(invalid), pipeline.ErrInvalidPipeline)
}

func TestRenderFrameOrder(t *testing.T) {
	b := newRecordingBackend()
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	camera := bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithSize(64))

	require.NoError(t, r.RenderFrame(quadPipeline(t, camera), mesh, camera))
	assert.Equal(t, []string{"begin", "draw", "submit", "present"}, b.calls)
}

func TestRenderFrameAcquireFailureSkipsFrame(t *testing.T) {
	b := newRecordingBackend()
	b.acquireErr = errors.New("outdated")
	r := NewRenderer(BackendTypeWGPU, nil, WithBackend(b))
	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	camera := bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithSize(64))

	var err error
	assert.NotPanics(t, func() { err = r.RenderFrame(quadPipeline(t, camera), mesh, camera) })
	assert.ErrorIs(t, err, ErrSurfaceAcquire)
	assert.Equal(t, []string{"begin"}, b.calls)
}
