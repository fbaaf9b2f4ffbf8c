package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-quad/engine/camera"
	"github.com/Carmen-Shannon/oxy-quad/engine/model"
	"github.com/Carmen-Shannon/oxy-quad/engine/profiler"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-quad/engine/window"
)

// SessionBuilderOption is a functional option for configuring a Session.
type SessionBuilderOption func(*session)

// WithWindow sets the window that provides the surface and the event stream.
// The initial drawable size is read from the window.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - SessionBuilderOption: functional option to set the window
func WithWindow(w window.Window) SessionBuilderOption {
	return func(s *session) {
		s.window = w
	}
}

// WithRenderer sets an already built renderer. When omitted, Init builds a WGPU renderer on the
// window's surface.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - SessionBuilderOption: functional option to set the renderer
func WithRenderer(r renderer.Renderer) SessionBuilderOption {
	return func(s *session) {
		s.renderer = r
	}
}

// WithRendererOptions sets the options used when Init builds the renderer.
//
// Parameters:
//   - options: renderer options (present mode, clear color, power preference)
//
// Returns:
//   - SessionBuilderOption: functional option to set the renderer options
func WithRendererOptions(options ...renderer.RendererBuilderOption) SessionBuilderOption {
	return func(s *session) {
		s.rendererOptions = append(s.rendererOptions, options...)
	}
}

// WithCamera sets the orbit camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - SessionBuilderOption: functional option to set the camera
func WithCamera(c camera.Camera) SessionBuilderOption {
	return func(s *session) {
		s.camera = c
	}
}

// WithDragController sets the controller that turns drags into rotations.
//
// Parameters:
//   - dc: the drag controller
//
// Returns:
//   - SessionBuilderOption: functional option to set the drag controller
func WithDragController(dc camera.DragController) SessionBuilderOption {
	return func(s *session) {
		s.drag = dc
	}
}

// WithModel sets the geometry to draw. Defaults to model.NewQuad().
//
// Parameters:
//   - m: the model
//
// Returns:
//   - SessionBuilderOption: functional option to set the model
func WithModel(m model.Model) SessionBuilderOption {
	return func(s *session) {
		s.model = m
	}
}

// WithShader sets the shader program. Defaults to shader.NewQuadShader().
//
// Parameters:
//   - sh: the shader
//
// Returns:
//   - SessionBuilderOption: functional option to set the shader
func WithShader(sh shader.Shader) SessionBuilderOption {
	return func(s *session) {
		s.shader = sh
	}
}

// WithPipelineOptions adds options applied when the render pipeline is built.
//
// Parameters:
//   - options: pipeline options (cull mode, topology, blend state)
//
// Returns:
//   - SessionBuilderOption: functional option to set the pipeline options
func WithPipelineOptions(options ...pipeline.PipelineBuilderOption) SessionBuilderOption {
	return func(s *session) {
		s.pipelineOptions = append(s.pipelineOptions, options...)
	}
}

// WithSize sets the initial drawable size, overriding the window's.
//
// Parameters:
//   - width: drawable width in pixels
//   - height: drawable height in pixels
//
// Returns:
//   - SessionBuilderOption: functional option to set the size
func WithSize(width, height int) SessionBuilderOption {
	return func(s *session) {
		s.width, s.height = width, height
		s.sizeSet = true
	}
}

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - SessionBuilderOption: functional option to set the logger
func WithLogger(logger *slog.Logger) SessionBuilderOption {
	return func(s *session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProfiling enables the frame profiler.
//
// Parameters:
//   - enabled: whether frames are reported to the profiler
//
// Returns:
//   - SessionBuilderOption: functional option to toggle profiling
func WithProfiling(enabled bool) SessionBuilderOption {
	return func(s *session) {
		s.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler used when profiling is enabled.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - SessionBuilderOption: functional option to set the profiler
func WithProfiler(p *profiler.Profiler) SessionBuilderOption {
	return func(s *session) {
		s.profiler = p
	}
}

// WithStateListener registers a callback invoked on every lifecycle transition.
//
// Parameters:
//   - fn: called with the previous and the new state
//
// Returns:
//   - SessionBuilderOption: functional option to set the listener
func WithStateListener(fn func(from, to State)) SessionBuilderOption {
	return func(s *session) {
		s.onStateChange = fn
	}
}
