package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-quad/common"
	"github.com/Carmen-Shannon/oxy-quad/engine/camera"
	"github.com/Carmen-Shannon/oxy-quad/engine/model"
	"github.com/Carmen-Shannon/oxy-quad/engine/profiler"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-quad/engine/window"
)

// ErrNoSurfaceSource is returned by Init when the session has neither a window nor a renderer to draw with.
var ErrNoSurfaceSource = errors.New("session has no window or renderer")

// cameraBindingLabel labels the camera uniform's GPU objects.
const cameraBindingLabel = "camera"

// session implements the Session interface.
// It exclusively owns the renderer and every GPU resource; all methods run on the host loop goroutine.
type session struct {
	logger *slog.Logger
	state  State

	window          window.Window
	renderer        renderer.Renderer
	rendererOptions []renderer.RendererBuilderOption

	camera camera.Camera
	drag   camera.DragController
	model  model.Model

	shader          shader.Shader
	pipeline        pipeline.Pipeline
	pipelineOptions []pipeline.PipelineBuilderOption
	cameraBinding   bind_group_provider.BindGroupProvider

	// width and height are the latest known drawable size
	width, height int
	sizeSet       bool

	resourcesBuilt   bool
	needsReconfigure bool
	cameraDirty      bool

	profiler         *profiler.Profiler
	profilingEnabled bool
	framesRendered   uint64
	framesSkipped    uint64

	onStateChange func(from, to State)
}

// Session is the rendering session: it drives GPU initialization, reacts to window events and
// renders the quad on every redraw request.
type Session interface {
	// Init runs the startup state machine: adapter, device, surface configuration, then the camera
	// binding, geometry buffers and render pipeline. A zero-area surface leaves the session in
	// StateResizing until a usable size arrives.
	//
	// Parameters:
	//   - ctx: cancels initialization between steps
	//
	// Returns:
	//   - error: a fatal initialization error (renderer.ErrNoAdapter, renderer.ErrNoDevice,
	//     renderer.ErrNoSurfaceFormat, pipeline.ErrInvalidPipeline, invalid camera or geometry)
	Init(ctx context.Context) error

	// HandleEvent processes one window event to completion.
	//
	// Parameters:
	//   - e: the event
	//
	// Returns:
	//   - error: a fatal error; transient surface acquisition failures are absorbed
	HandleEvent(e window.Event) error

	// Run initializes the session if needed, then runs the window loop until the window closes,
	// ctx ends or a fatal error occurs. It does not release resources; call Close afterwards.
	//
	// Parameters:
	//   - ctx: ends the loop when cancelled
	//
	// Returns:
	//   - error: the fatal error that stopped the loop, or nil
	Run(ctx context.Context) error

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Camera returns the session camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Dragging reports whether the primary button is held.
	//
	// Returns:
	//   - bool: true while dragging
	Dragging() bool

	// SurfaceConfig returns the current surface configuration.
	//
	// Returns:
	//   - renderer.SurfaceConfig: the last applied configuration
	SurfaceConfig() renderer.SurfaceConfig

	// FrameStats returns how many frames were presented and how many were skipped.
	//
	// Returns:
	//   - rendered: presented frames
	//   - skipped: frames skipped on surface acquisition failure or zero size
	FrameStats() (rendered, skipped uint64)

	// Close releases every GPU resource in reverse creation order and closes the window.
	// Safe to call multiple times.
	Close()
}

var _ Session = &session{}

// NewSession creates a new Session. Nothing touches the GPU until Init.
//
// Parameters:
//   - options: functional options for session configuration (window, camera, renderer, etc.)
//
// Returns:
//   - Session: the newly created session
func NewSession(options ...SessionBuilderOption) Session {
	s := &session{
		logger: slog.Default(),
		state:  StateUninitialized,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.drag == nil {
		s.drag = camera.NewDragController()
	}
	if s.model == nil {
		s.model = model.NewQuad()
	}
	if s.profiler == nil {
		s.profiler = profiler.NewProfiler(profiler.WithLogger(s.logger))
	}
	if s.window != nil && !s.sizeSet {
		s.width, s.height = s.window.Width(), s.window.Height()
	}
	uniform := camera.NewGPUCameraUniform(s.camera)
	s.cameraBinding = bind_group_provider.NewBindGroupProvider(cameraBindingLabel,
		bind_group_provider.WithSize(uint64(uniform.Size())),
	)
	return s
}

func (s *session) Init(ctx context.Context) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("init called in state %s", s.state)
	}
	if err := s.camera.Validate(); err != nil {
		return err
	}
	if err := s.model.Validate(); err != nil {
		return err
	}
	if s.renderer == nil {
		if s.window == nil {
			return ErrNoSurfaceSource
		}
		opts := append([]renderer.RendererBuilderOption{renderer.WithLogger(s.logger)}, s.rendererOptions...)
		s.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU, s.window.SurfaceDescriptor(), opts...)
	}

	if err := s.renderer.RequestAdapter(ctx); err != nil {
		return err
	}
	s.setState(StateAdapterAcquired)

	if err := s.renderer.RequestDevice(ctx); err != nil {
		return err
	}
	s.setState(StateDeviceAcquired)

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.width <= 0 || s.height <= 0 {
		s.logger.Info("surface has no area, waiting for a resize", "width", s.width, "height", s.height)
		s.needsReconfigure = true
		s.setState(StateResizing)
		return nil
	}
	return s.reconfigure()
}

func (s *session) HandleEvent(e window.Event) error {
	switch ev := e.(type) {
	case window.Resized:
		s.resize(ev.Width, ev.Height)
	case window.MouseButton:
		if ev.Button != common.MouseButtonPrimary {
			return nil
		}
		if ev.Pressed {
			s.drag.Press()
		} else {
			s.drag.Release()
		}
	case window.MouseMotion:
		if yaw, pitch, ok := s.drag.Motion(ev.DX, ev.DY); ok {
			s.camera.ApplyRotation(yaw, pitch)
			s.cameraDirty = true
		}
	case window.RedrawRequested:
		return s.redraw()
	case window.CloseRequested:
		s.setState(StateTerminated)
	}
	return nil
}

func (s *session) Run(ctx context.Context) error {
	if s.window == nil {
		return ErrNoSurfaceSource
	}
	if s.state == StateUninitialized {
		if err := s.Init(ctx); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fatal error
	s.window.SetEventHandler(func(e window.Event) {
		if fatal != nil {
			return
		}
		if err := s.HandleEvent(e); err != nil {
			fatal = err
			cancel()
		}
	})
	s.window.ProcessMessages(runCtx)
	s.window.SetEventHandler(nil)

	rendered, skipped := s.FrameStats()
	s.logger.Info("session loop ended", "state", s.state, "frames", rendered, "skipped", skipped)
	return fatal
}

func (s *session) State() State {
	return s.state
}

func (s *session) Camera() camera.Camera {
	return s.camera
}

func (s *session) Dragging() bool {
	return s.drag.Dragging()
}

func (s *session) SurfaceConfig() renderer.SurfaceConfig {
	if s.renderer == nil {
		return renderer.SurfaceConfig{}
	}
	return s.renderer.SurfaceConfig()
}

func (s *session) FrameStats() (rendered, skipped uint64) {
	return s.framesRendered, s.framesSkipped
}

func (s *session) Close() {
	if s.pipeline != nil {
		s.pipeline.Release()
	}
	s.model.MeshProvider().Release()
	s.cameraBinding.Release()
	if s.renderer != nil {
		s.renderer.Release()
		s.renderer = nil
	}
	if s.window != nil {
		if err := s.window.Close(); err != nil {
			s.logger.Debug("window close", "err", err)
		}
		s.window = nil
	}
	s.setState(StateTerminated)
}

// resize records the new size and schedules reconfiguration before the next frame.
func (s *session) resize(width, height int) {
	s.width, s.height = width, height
	if width > 0 && height > 0 {
		s.camera.SetAspect(float32(width) / float32(height))
		s.cameraDirty = true
	}
	if !s.state.hasDevice() {
		return
	}
	s.needsReconfigure = true
	if s.state == StateReady || s.state == StateSurfaceConfigured {
		s.setState(StateResizing)
	}
}

// reconfigure applies the current size to the surface and, the first time, builds the GPU resources.
func (s *session) reconfigure() error {
	cfg, err := s.renderer.ConfigureSurface(s.width, s.height)
	if err != nil {
		return err
	}
	s.needsReconfigure = false
	s.camera.SetAspect(float32(s.width) / float32(s.height))
	s.cameraDirty = true
	s.setState(StateSurfaceConfigured)
	s.logger.Info("surface configured", "format", cfg.Format, "width", cfg.Width, "height", cfg.Height)

	if !s.resourcesBuilt {
		if err := s.buildResources(); err != nil {
			return err
		}
	}
	s.setState(StateReady)
	return nil
}

// buildResources creates the camera binding, the static geometry buffers and the render pipeline.
func (s *session) buildResources() error {
	uniform := camera.NewGPUCameraUniform(s.camera)
	if err := s.renderer.InitBindGroup(s.cameraBinding, uniform.Marshal()); err != nil {
		return err
	}
	s.cameraDirty = false

	m := s.model
	if err := s.renderer.InitMeshBuffers(m.MeshProvider(), m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return err
	}

	if s.shader == nil {
		sh, err := shader.NewQuadShader()
		if err != nil {
			return err
		}
		s.shader = sh
	}
	opts := append([]pipeline.PipelineBuilderOption{
		pipeline.WithShader(s.shader),
		pipeline.WithBindingLayout(s.cameraBinding.LayoutDescriptor()),
	}, s.pipelineOptions...)
	s.pipeline = pipeline.NewPipeline(m.Name(), opts...)
	if err := s.renderer.RegisterPipeline(s.pipeline, s.cameraBinding); err != nil {
		return err
	}

	s.checkVisibility()
	s.resourcesBuilt = true
	return nil
}

// checkVisibility warns when no vertex of the model lies inside the camera frustum.
func (s *session) checkVisibility() {
	f := s.camera.Frustum()
	for _, v := range s.model.Vertices() {
		if f.ContainsPoint(common.Vec3(v.Position)) {
			return
		}
	}
	s.logger.Warn("no vertex of the model is inside the camera frustum", "model", s.model.Name(), "eye", s.camera.Eye())
}

// redraw renders one frame, first reconfiguring the surface when a resize or lost image asked for it.
func (s *session) redraw() error {
	if s.needsReconfigure && s.state.hasDevice() {
		if s.width <= 0 || s.height <= 0 {
			s.skip()
			return nil
		}
		if err := s.reconfigure(); err != nil {
			return err
		}
	}
	if s.state != StateReady {
		return nil
	}

	if s.cameraDirty {
		uniform := camera.NewGPUCameraUniform(s.camera)
		write := bind_group_provider.BufferWrite{Provider: s.cameraBinding, Offset: 0, Data: uniform.Marshal()}
		if err := s.renderer.WriteBuffers(write); err != nil {
			return err
		}
		s.cameraDirty = false
	}

	err := s.renderer.RenderFrame(s.pipeline, s.model.MeshProvider(), s.cameraBinding)
	if errors.Is(err, renderer.ErrSurfaceAcquire) {
		s.logger.Warn("frame skipped", "err", err)
		s.needsReconfigure = true
		s.setState(StateResizing)
		s.skip()
		return nil
	}
	if err != nil {
		return err
	}

	s.framesRendered++
	if s.profilingEnabled {
		s.profiler.Tick()
	}
	return nil
}

func (s *session) skip() {
	s.framesSkipped++
	if s.profilingEnabled {
		s.profiler.Skip()
	}
}

func (s *session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.logger.Debug("session state", "from", from, "to", to)
	if s.onStateChange != nil {
		s.onStateChange(from, to)
	}
}
