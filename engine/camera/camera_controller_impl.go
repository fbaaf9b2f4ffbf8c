package camera

import "math"

// DefaultMouseSensitivity is the angular step per pixel of drag motion: an eighth of pi every 128 pixels.
const DefaultMouseSensitivity float32 = math.Pi / 8 / 128

// dragControllerImpl is the single implementation of DragController.
// Not safe for concurrent use: events are handled on the host loop goroutine.
type dragControllerImpl struct {
	dragging bool

	mouseSensitivity float32
	invertY          bool
}

// Compile-time interface compliance check
var _ DragController = &dragControllerImpl{}

// NewDragController creates a new drag controller with the default sensitivity and no drag in progress.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - DragController: the newly created controller
func NewDragController(options ...DragControllerOption) DragController {
	dc := &dragControllerImpl{
		mouseSensitivity: DefaultMouseSensitivity,
	}
	for _, option := range options {
		option(dc)
	}
	return dc
}

func (dc *dragControllerImpl) Press() {
	dc.dragging = true
}

func (dc *dragControllerImpl) Release() {
	dc.dragging = false
}

func (dc *dragControllerImpl) Dragging() bool {
	return dc.dragging
}

func (dc *dragControllerImpl) Motion(dx, dy float32) (yaw, pitch float32, ok bool) {
	if !dc.dragging {
		return 0, 0, false
	}
	// dragging right swings the eye left so the quad follows the pointer; dragging down raises the eye
	yaw = -dx * dc.mouseSensitivity
	pitch = dy * dc.mouseSensitivity
	if dc.invertY {
		pitch = -pitch
	}
	return yaw, pitch, true
}

func (dc *dragControllerImpl) MouseSensitivity() float32 {
	return dc.mouseSensitivity
}
