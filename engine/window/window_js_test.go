//go:build js

package window

import (
	"syscall/js"
	"testing"

	"github.com/Carmen-Shannon/oxy-quad/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget is a stand-in DOM event target that records its listeners.
type fakeTarget struct {
	value     js.Value
	listeners map[string]js.Value
	add       js.Func
}

func newFakeTarget(value js.Value) *fakeTarget {
	ft := &fakeTarget{value: value, listeners: map[string]js.Value{}}
	ft.add = js.FuncOf(func(_ js.Value, args []js.Value) any {
		ft.listeners[args[0].String()] = args[1]
		return nil
	})
	value.Set("addEventListener", ft.add)
	return ft
}

func (ft *fakeTarget) dispatch(event string, props map[string]any) {
	e := js.Global().Get("Object").New()
	for k, v := range props {
		e.Set(k, v)
	}
	if l, ok := ft.listeners[event]; ok {
		l.Invoke(e)
	}
}

// installFakeDocument puts a document on the global object whose getElementById returns canvas
// for id and null otherwise. The previous globals are restored when the test ends.
func installFakeDocument(t *testing.T, id string) (canvas *fakeTarget, global *fakeTarget) {
	t.Helper()
	g := js.Global()
	prevDoc := g.Get("document")
	prevAdd := g.Get("addEventListener")

	canvas = newFakeTarget(js.Global().Get("Object").New())
	global = newFakeTarget(g)

	getElementByID := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if args[0].String() == id {
			return canvas.value
		}
		return js.Null()
	})
	doc := js.Global().Get("Object").New()
	doc.Set("getElementById", getElementByID)
	g.Set("document", doc)

	t.Cleanup(func() {
		g.Set("document", prevDoc)
		g.Set("addEventListener", prevAdd)
		getElementByID.Release()
		canvas.add.Release()
		global.add.Release()
	})
	return canvas, global
}

func TestSurfaceDescriptorCarriesCanvas(t *testing.T) {
	canvas, _ := installFakeDocument(t, "webgpu-canvas")

	w, err := TryNewWindow(WithSize(320, 200))
	require.NoError(t, err)
	defer w.Close()

	desc := w.SurfaceDescriptor()
	require.NotNil(t, desc)
	assert.True(t, desc.Canvas.Equal(canvas.value))
	assert.Equal(t, 320, canvas.value.Get("width").Int())
	assert.Equal(t, 200, canvas.value.Get("height").Int())
	assert.True(t, w.IsRunning())
}

func TestMissingCanvas(t *testing.T) {
	installFakeDocument(t, "webgpu-canvas")

	_, err := TryNewWindow(WithCanvasID("elsewhere"))
	assert.ErrorIs(t, err, ErrCanvasNotFound)
}

func TestCanvasListenersQueueEvents(t *testing.T) {
	canvas, global := installFakeDocument(t, "webgpu-canvas")

	w, err := TryNewWindow()
	require.NoError(t, err)
	defer w.Close()

	canvas.dispatch("mousedown", map[string]any{"button": 2})
	canvas.dispatch("mousemove", map[string]any{"movementX": 3, "movementY": -2})
	canvas.dispatch("mousemove", map[string]any{"movementX": 0, "movementY": 0})
	global.dispatch("mouseup", map[string]any{"button": 2})
	global.dispatch("beforeunload", nil)

	cw := w.(*engineWindow).internalWindow.(*canvasWindow)
	assert.Equal(t, []Event{
		MouseButton{Button: common.MouseButtonSecondary, Pressed: true},
		MouseMotion{DX: 3, DY: -2},
		MouseButton{Button: common.MouseButtonSecondary, Pressed: false},
		CloseRequested{},
	}, cw.events.drain())
}
