package window

// Event is a host event delivered to the window's EventHandler in arrival order.
type Event interface {
	isEvent()
}

// Resized reports a new drawable size in pixels. Either dimension may be zero while minimized.
type Resized struct {
	Width  int
	Height int
}

// MouseButton reports a button transition. Button uses common.MouseButtonPrimary and friends.
type MouseButton struct {
	Button  int
	Pressed bool
}

// MouseMotion reports relative pointer motion in pixels, positive DY downward.
type MouseMotion struct {
	DX float32
	DY float32
}

// RedrawRequested asks the handler to render a frame.
type RedrawRequested struct{}

// CloseRequested reports that the user or host wants the window closed.
type CloseRequested struct{}

func (Resized) isEvent()         {}
func (MouseButton) isEvent()     {}
func (MouseMotion) isEvent()     {}
func (RedrawRequested) isEvent() {}
func (CloseRequested) isEvent()  {}

// EventHandler receives every event the window produces. It runs to completion on the loop goroutine.
type EventHandler func(Event)
