package renderer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurfaceFormat is returned when the surface reports no texture formats.
var ErrNoSurfaceFormat = errors.New("surface reports no formats")

// ErrUnknownPresentMode is returned by ParsePresentMode for an unrecognized name.
var ErrUnknownPresentMode = errors.New("unknown present mode")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeAutoVsync waits for vertical blank. FifoRelaxed when reported, otherwise Fifo.
	PresentModeAutoVsync PresentMode = iota

	// PresentModeAutoNoVsync presents as soon as possible. Immediate, then Mailbox, then Fifo.
	PresentModeAutoNoVsync

	// PresentModeFifo always waits for vertical blank. Every surface supports it.
	PresentModeFifo

	// PresentModeImmediate presents without waiting, possibly tearing. Falls back to Fifo.
	PresentModeImmediate

	// PresentModeMailbox replaces the queued image each vertical blank. Falls back to Fifo.
	PresentModeMailbox
)

var presentModeNames = map[PresentMode]string{
	PresentModeAutoVsync:   "auto_vsync",
	PresentModeAutoNoVsync: "auto_no_vsync",
	PresentModeFifo:        "fifo",
	PresentModeImmediate:   "immediate",
	PresentModeMailbox:     "mailbox",
}

func (m PresentMode) String() string {
	if name, ok := presentModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

// ParsePresentMode resolves a config name such as "auto_vsync" or "mailbox" to a PresentMode.
// Matching ignores case and treats '-' like '_'.
//
// Parameters:
//   - name: the present mode name
//
// Returns:
//   - PresentMode: the matching mode
//   - error: ErrUnknownPresentMode wrapped with the name
func ParsePresentMode(name string) (PresentMode, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for mode, n := range presentModeNames {
		if n == normalized {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPresentMode, name)
}

// IsSRGB reports whether the format encodes color in sRGB.
func IsSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// ChooseSurfaceFormat picks the first sRGB format in reported order, otherwise the first reported format.
//
// Parameters:
//   - formats: the formats reported by the surface
//
// Returns:
//   - wgpu.TextureFormat: the chosen format
//   - error: ErrNoSurfaceFormat when formats is empty
func ChooseSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, ErrNoSurfaceFormat
	}
	if i := slices.IndexFunc(formats, IsSRGB); i >= 0 {
		return formats[i], nil
	}
	return formats[0], nil
}

// ChoosePresentMode maps the requested mode onto what the surface supports. Fifo is the floor.
//
// Parameters:
//   - mode: the requested mode
//   - supported: the present modes reported by the surface
//
// Returns:
//   - wgpu.PresentMode: the mode to configure
func ChoosePresentMode(mode PresentMode, supported []wgpu.PresentMode) wgpu.PresentMode {
	var preference []wgpu.PresentMode
	switch mode {
	case PresentModeAutoVsync:
		preference = []wgpu.PresentMode{wgpu.PresentModeFifoRelaxed}
	case PresentModeAutoNoVsync:
		preference = []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeMailbox}
	case PresentModeImmediate:
		preference = []wgpu.PresentMode{wgpu.PresentModeImmediate}
	case PresentModeMailbox:
		preference = []wgpu.PresentMode{wgpu.PresentModeMailbox}
	}
	for _, want := range preference {
		if slices.Contains(supported, want) {
			return want
		}
	}
	return wgpu.PresentModeFifo
}

// ChooseAlphaMode returns the first reported alpha mode, or Auto when none are reported.
func ChooseAlphaMode(modes []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	if len(modes) == 0 {
		return wgpu.CompositeAlphaModeAuto
	}
	return modes[0]
}

// NegotiateSurface builds the surface configuration for the given size from the reported capabilities.
//
// Parameters:
//   - caps: the surface capabilities
//   - mode: the requested present mode
//   - width, height: the surface size in pixels
//
// Returns:
//   - SurfaceConfig: the configuration to apply
//   - error: ErrNoSurfaceFormat when no format is reported
func NegotiateSurface(caps SurfaceCapabilities, mode PresentMode, width, height uint32) (SurfaceConfig, error) {
	format, err := ChooseSurfaceFormat(caps.Formats)
	if err != nil {
		return SurfaceConfig{}, err
	}
	return SurfaceConfig{
		Format:      format,
		PresentMode: ChoosePresentMode(mode, caps.PresentModes),
		AlphaMode:   ChooseAlphaMode(caps.AlphaModes),
		Width:       width,
		Height:      height,
	}, nil
}
