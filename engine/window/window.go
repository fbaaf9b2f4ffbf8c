package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrCanvasNotFound is returned in the browser when no element with the configured canvas id exists.
var ErrCanvasNotFound = errors.New("canvas element not found")

// Window provides the platform window or canvas and turns its input into Events.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetEventHandler sets the function every event is delivered to.
	//
	// Parameters:
	//   - handler: the event handler (or nil to drop events)
	SetEventHandler(handler EventHandler)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// On desktop it is created by the wgpuglfw bridge from the GLFW window; in the browser it
	// carries the bound canvas element.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop, delivering input events followed by a
	// RedrawRequested each iteration. Blocks until the window closes or ctx is done.
	//
	// Parameters:
	//   - ctx: ends the loop when cancelled
	ProcessMessages(ctx context.Context)

	// Width returns the current drawable width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current drawable height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and the event handler.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// canvasID is the id of the canvas element bound in the browser.
	canvasID string

	// resize limits of the desktop window
	minWidth, minHeight int
	maxWidth, maxHeight int

	// width is the current drawable width in pixels.
	width int

	// height is the current drawable height in pixels.
	height int

	// internalWindow holds the platform-specific window data.
	internalWindow any

	// handler receives every event.
	handler EventHandler

	// last cursor position, for turning absolute positions into motion
	cursorX, cursorY float64
	cursorKnown      bool
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options and panics if the platform window
// cannot be created. Use TryNewWindow to receive the error instead.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
func NewWindow(options ...WindowBuilderOption) Window {
	w, err := TryNewWindow(options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// TryNewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window or canvas is unavailable (ErrCanvasNotFound in the browser)
func TryNewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-quad",
		canvasID:  "webgpu-canvas",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  1,
		minHeight: 1,
		width:     800,
		height:    450,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetEventHandler(handler EventHandler) {
	w.handler = handler
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages(ctx context.Context) {
	platformProcessMessages(ctx, w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) emit(e Event) {
	if w.handler != nil {
		w.handler(e)
	}
}

// resized records the new drawable size and emits Resized when it changed.
func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width = width
	w.height = height
	w.emit(Resized{Width: width, Height: height})
}

// cursorMoved converts an absolute cursor position into a MouseMotion event.
// The first position after creation only establishes the reference point.
func (w *engineWindow) cursorMoved(x, y float64) {
	if !w.cursorKnown {
		w.cursorX, w.cursorY = x, y
		w.cursorKnown = true
		return
	}
	dx, dy := x-w.cursorX, y-w.cursorY
	w.cursorX, w.cursorY = x, y
	if dx == 0 && dy == 0 {
		return
	}
	w.emit(MouseMotion{DX: float32(dx), DY: float32(dy)})
}
