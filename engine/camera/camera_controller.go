package camera

// DragController turns primary-button drags into orbit rotations.
// It owns the dragging flag and converts relative pointer motion into yaw and pitch
// deltas that the caller feeds to Camera.ApplyRotation.
type DragController interface {
	// Press marks the primary button as held and starts a drag.
	Press()

	// Release marks the primary button as released and ends the drag.
	Release()

	// Dragging reports whether a drag is in progress.
	//
	// Returns:
	//   - bool: true between Press and Release
	Dragging() bool

	// Motion converts relative pointer motion into rotation deltas.
	// Horizontal motion becomes yaw (dragging right swings the eye left), vertical motion becomes
	// pitch (dragging down raises the eye unless the controller inverts Y).
	//
	// Parameters:
	//   - dx: horizontal motion in pixels
	//   - dy: vertical motion in pixels, positive downward
	//
	// Returns:
	//   - yaw: rotation about the up axis in radians
	//   - pitch: rotation about the right axis in radians
	//   - ok: false when no drag is in progress (yaw and pitch are then zero)
	Motion(dx, dy float32) (yaw, pitch float32, ok bool)

	// MouseSensitivity returns the angular step per pixel of pointer motion.
	//
	// Returns:
	//   - float32: radians per pixel
	MouseSensitivity() float32
}
