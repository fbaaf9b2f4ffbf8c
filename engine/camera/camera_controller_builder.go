package camera

// DragControllerOption is a functional option for configuring a DragController.
type DragControllerOption func(*dragControllerImpl)

// WithMouseSensitivity sets the angular step applied per pixel of pointer motion.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - DragControllerOption: functional option to set the sensitivity
func WithMouseSensitivity(sensitivity float32) DragControllerOption {
	return func(dc *dragControllerImpl) {
		dc.mouseSensitivity = sensitivity
	}
}

// WithInvertY flips the sign of the pitch produced by vertical motion.
//
// Parameters:
//   - invert: true to lower the eye when dragging down
//
// Returns:
//   - DragControllerOption: functional option to set Y inversion
func WithInvertY(invert bool) DragControllerOption {
	return func(dc *dragControllerImpl) {
		dc.invertY = invert
	}
}
