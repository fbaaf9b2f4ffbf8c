//go:build js

package window

import (
	"context"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-quad/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// jsEventQueueSize bounds the events buffered between JS callbacks and the Go loop. Past it only
// pointer motion is coalesced or dropped.
const jsEventQueueSize = 256

// canvasWindow holds the browser canvas state. JS callbacks never call the handler directly:
// they queue events that ProcessMessages delivers on the Go loop goroutine.
type canvasWindow struct {
	canvas  js.Value
	events  *eventQueue
	funcs   []js.Func
	running bool

	// frame is the requestAnimationFrame callback; a redraw is pending while framePending is set
	frame        js.Func
	framePending bool
}

// newPlatformWindow binds the canvas element with the configured id, sizes it, and installs the
// pointer and resize listeners.
func newPlatformWindow(w *engineWindow) error {
	doc := js.Global().Get("document")
	canvas := doc.Call("getElementById", w.canvasID)
	if canvas.IsNull() || canvas.IsUndefined() {
		return ErrCanvasNotFound
	}
	canvas.Set("width", w.width)
	canvas.Set("height", w.height)

	cw := &canvasWindow{
		canvas:  canvas,
		events:  newEventQueue(jsEventQueueSize),
		running: true,
	}
	w.internalWindow = cw

	cw.listen(canvas, "mousedown", func(e js.Value) {
		cw.queue(MouseButton{Button: domButton(e.Get("button").Int()), Pressed: true})
	})
	// release anywhere so a drag that leaves the canvas still ends
	cw.listen(js.Global(), "mouseup", func(e js.Value) {
		cw.queue(MouseButton{Button: domButton(e.Get("button").Int()), Pressed: false})
	})
	cw.listen(canvas, "mousemove", func(e js.Value) {
		dx, dy := e.Get("movementX").Float(), e.Get("movementY").Float()
		if dx != 0 || dy != 0 {
			cw.queue(MouseMotion{DX: float32(dx), DY: float32(dy)})
		}
	})
	cw.listen(canvas, "contextmenu", func(e js.Value) {
		e.Call("preventDefault")
	})
	cw.listen(js.Global(), "resize", func(js.Value) {
		width, height := canvas.Get("clientWidth").Int(), canvas.Get("clientHeight").Int()
		if width > 0 && height > 0 {
			canvas.Set("width", width)
			canvas.Set("height", height)
		}
		cw.queue(Resized{Width: width, Height: height})
	})
	cw.listen(js.Global(), "beforeunload", func(js.Value) {
		cw.queue(CloseRequested{})
	})

	cw.frame = js.FuncOf(func(js.Value, []js.Value) any {
		cw.framePending = false
		cw.queue(RedrawRequested{})
		return nil
	})
	return nil
}

// domButton maps the DOM button numbering (0 primary, 1 middle, 2 secondary) onto common.MouseButton*.
func domButton(b int) int {
	switch b {
	case 1:
		return common.MouseButtonMiddle
	case 2:
		return common.MouseButtonSecondary
	}
	return b
}

func (cw *canvasWindow) listen(target js.Value, event string, fn func(js.Value)) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		} else {
			fn(js.Undefined())
		}
		return nil
	})
	target.Call("addEventListener", event, f)
	cw.funcs = append(cw.funcs, f)
}

// queue hands an event to the Go loop without blocking the browser.
func (cw *canvasWindow) queue(e Event) {
	cw.events.push(e)
}

func (cw *canvasWindow) requestFrame() {
	if cw.framePending || !cw.running {
		return
	}
	cw.framePending = true
	js.Global().Call("requestAnimationFrame", cw.frame)
}

// platformGetSurfaceDescriptor returns a descriptor carrying the bound canvas element.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	return &wgpu.SurfaceDescriptor{Canvas: w.internalWindow.(*canvasWindow).canvas}
}

func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	return w.internalWindow.(*canvasWindow).running
}

// platformCloseWindow stops the loop and releases the JS callbacks. The canvas itself stays on the page.
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return nil
	}
	cw := w.internalWindow.(*canvasWindow)
	cw.running = false
	for _, f := range cw.funcs {
		f.Release()
	}
	cw.funcs = nil
	cw.frame.Release()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages delivers queued events on the calling goroutine, one animation frame at a time.
func platformProcessMessages(ctx context.Context, w *engineWindow) {
	cw, ok := w.internalWindow.(*canvasWindow)
	if !ok {
		return
	}
	cw.requestFrame()
	for cw.running {
		select {
		case <-ctx.Done():
			w.emit(CloseRequested{})
			return
		case <-cw.events.wait():
		}
		for _, e := range cw.events.drain() {
			if !cw.running {
				return
			}
			switch ev := e.(type) {
			case Resized:
				w.resized(ev.Width, ev.Height)
			case CloseRequested:
				cw.running = false
				w.emit(ev)
			case RedrawRequested:
				w.emit(ev)
				cw.requestFrame()
			default:
				w.emit(ev)
			}
		}
	}
}
