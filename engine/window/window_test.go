package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(w *engineWindow) *[]Event {
	var events []Event
	w.SetEventHandler(func(e Event) { events = append(events, e) })
	return &events
}

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow(WithSize(640, 480), WithTitle("t"), WithCanvasID("view"))
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
	assert.Equal(t, "t", w.title)
	assert.Equal(t, "view", w.canvasID)
	assert.False(t, w.IsRunning(), "no platform window yet")
	assert.Nil(t, w.SurfaceDescriptor())
}

func TestNewEngineWindowDefaultCanvas(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "webgpu-canvas", w.canvasID)
}

func TestResizedEmitsOnlyOnChange(t *testing.T) {
	w := newEngineWindow(WithSize(800, 450))
	events := collect(w)

	w.resized(800, 450)
	w.resized(400, 400)
	w.resized(400, 400)
	w.resized(0, 0)

	assert.Equal(t, []Event{Resized{Width: 400, Height: 400}, Resized{Width: 0, Height: 0}}, *events)
	assert.Equal(t, 0, w.Width())
}

func TestCursorMovedEmitsRelativeMotion(t *testing.T) {
	w := newEngineWindow()
	events := collect(w)

	w.cursorMoved(100, 100)
	w.cursorMoved(110, 95)
	w.cursorMoved(110, 95)
	w.cursorMoved(105, 100)

	assert.Equal(t, []Event{
		MouseMotion{DX: 10, DY: -5},
		MouseMotion{DX: -5, DY: 5},
	}, *events)
}

func TestEmitWithoutHandler(t *testing.T) {
	w := newEngineWindow()
	assert.NotPanics(t, func() { w.emit(RedrawRequested{}) })
}

func TestEventQueueDrainsInOrder(t *testing.T) {
	q := newEventQueue(8)
	assert.Nil(t, q.drain())

	q.push(MouseButton{Button: 0, Pressed: true})
	q.push(MouseMotion{DX: 1})
	q.push(MouseButton{Button: 0, Pressed: false})

	select {
	case <-q.wait():
	default:
		t.Fatal("push did not signal the consumer")
	}
	assert.Equal(t, []Event{
		MouseButton{Button: 0, Pressed: true},
		MouseMotion{DX: 1},
		MouseButton{Button: 0, Pressed: false},
	}, q.drain())
	assert.Nil(t, q.drain())
}

func TestEventQueueFullKeepsReleaseAndClose(t *testing.T) {
	q := newEventQueue(3)
	require.True(t, q.push(MouseButton{Button: 0, Pressed: true}))
	require.True(t, q.push(MouseMotion{DX: 1, DY: 1}))
	require.True(t, q.push(MouseMotion{DX: 2, DY: -1}))

	// full with motion at the tail: merged, not dropped
	assert.True(t, q.push(MouseMotion{DX: 3, DY: 4}))
	assert.True(t, q.push(MouseButton{Button: 0, Pressed: false}))
	// full with a button at the tail: motion has nowhere to merge
	assert.False(t, q.push(MouseMotion{DX: 9, DY: 9}))
	assert.True(t, q.push(CloseRequested{}))

	assert.Equal(t, []Event{
		MouseButton{Button: 0, Pressed: true},
		MouseMotion{DX: 1, DY: 1},
		MouseMotion{DX: 5, DY: 3},
		MouseButton{Button: 0, Pressed: false},
		CloseRequested{},
	}, q.drain())
}

func TestEventQueueConcurrentPush(t *testing.T) {
	q := newEventQueue(4)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.push(MouseMotion{DX: 1})
				q.push(RedrawRequested{})
			}
		}()
	}
	wg.Wait()

	redraws := 0
	for _, e := range q.drain() {
		if _, ok := e.(RedrawRequested); ok {
			redraws++
		}
	}
	assert.Equal(t, 400, redraws)
}
