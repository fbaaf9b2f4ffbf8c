package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyEsc = 256 // Escape key (GLFW)
)

// Mouse buttons, numbered the way GLFW numbers them.
// The browser reports the middle and secondary buttons swapped; the js window remaps them.
const (
	MouseButtonPrimary   = 0
	MouseButtonSecondary = 1
	MouseButtonMiddle    = 2
)
