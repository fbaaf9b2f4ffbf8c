package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormat(t *testing.T) {
	f, err := ChooseSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, f, "first sRGB in reported order")

	f, err = ChooseSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, f, "falls back to the first format")

	_, err = ChooseSurfaceFormat(nil)
	assert.ErrorIs(t, err, ErrNoSurfaceFormat)
}

func TestChoosePresentMode(t *testing.T) {
	all := []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeFifoRelaxed, wgpu.PresentModeImmediate, wgpu.PresentModeMailbox}
	fifoOnly := []wgpu.PresentMode{wgpu.PresentModeFifo}

	cases := []struct {
		mode      PresentMode
		supported []wgpu.PresentMode
		want      wgpu.PresentMode
	}{
		{PresentModeAutoVsync, all, wgpu.PresentModeFifoRelaxed},
		{PresentModeAutoVsync, fifoOnly, wgpu.PresentModeFifo},
		{PresentModeAutoNoVsync, all, wgpu.PresentModeImmediate},
		{PresentModeAutoNoVsync, []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox}, wgpu.PresentModeMailbox},
		{PresentModeAutoNoVsync, fifoOnly, wgpu.PresentModeFifo},
		{PresentModeFifo, all, wgpu.PresentModeFifo},
		{PresentModeImmediate, fifoOnly, wgpu.PresentModeFifo},
		{PresentModeMailbox, all, wgpu.PresentModeMailbox},
		{PresentModeAutoVsync, nil, wgpu.PresentModeFifo},
	}
	for _, c := range cases {
		t.Run(c.mode.String(), func(t *testing.T) {
			assert.Equal(t, c.want, ChoosePresentMode(c.mode, c.supported))
		})
	}
}

func TestChooseAlphaMode(t *testing.T) {
	assert.Equal(t, wgpu.CompositeAlphaModeAuto, ChooseAlphaMode(nil))
	assert.Equal(t, wgpu.CompositeAlphaModePremultiplied,
		ChooseAlphaMode([]wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModePremultiplied, wgpu.CompositeAlphaModeOpaque}))
}

func TestParsePresentMode(t *testing.T) {
	for mode, name := range presentModeNames {
		got, err := ParsePresentMode(name)
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	got, err := ParsePresentMode(" Auto-VSync ")
	require.NoError(t, err)
	assert.Equal(t, PresentModeAutoVsync, got)

	_, err = ParsePresentMode("triple")
	assert.ErrorIs(t, err, ErrUnknownPresentMode)
}
