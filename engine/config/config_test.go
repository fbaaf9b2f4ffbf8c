package config

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-quad/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	mode, err := cfg.PresentMode()
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeAutoVsync, mode)
	assert.Equal(t, renderer.DefaultClearColor, cfg.ClearColor())
	assert.Equal(t, "webgpu-canvas", cfg.Window.CanvasID)
	assert.Equal(t, [3]float32{0, 1, 1.5}, cfg.Camera.Eye)
	assert.InDelta(t, math.Pi/8/128, cfg.Camera.Sensitivity, 1e-9)

	cull, err := cfg.CullMode()
	require.NoError(t, err)
	assert.Equal(t, wgpu.CullModeBack, cull)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load("testdata/quad.toml")
	require.NoError(t, err)

	assert.Equal(t, "quad", cfg.Window.Title)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, "webgpu-canvas", cfg.Window.CanvasID, "unset keys keep defaults")
	assert.Equal(t, [3]float32{0, 1, 3}, cfg.Camera.Eye)
	assert.Equal(t, float32(60), cfg.Camera.FovY)
	assert.True(t, cfg.Camera.InvertY)

	mode, err := cfg.PresentMode()
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeMailbox, mode)

	pref, err := cfg.PowerPreference()
	require.NoError(t, err)
	assert.Equal(t, wgpu.PowerPreferenceHighPerformance, pref)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load("testdata/quad.yaml")
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Window.Width)
	assert.Equal(t, "view", cfg.Window.CanvasID)
	assert.Equal(t, float32(0.01), cfg.Camera.Sensitivity)
	assert.Equal(t, wgpu.Color{R: 0, G: 0, B: 0, A: 1}, cfg.ClearColor())
	assert.True(t, cfg.Profiler.Enabled)

	cull, err := cfg.CullMode()
	require.NoError(t, err)
	assert.Equal(t, wgpu.CullModeNone, cull)

	d, err := cfg.ProfilerInterval()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(".toml", []byte("[window]\ncolour = 3\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse("yaml", []byte("window:\n  colour: 3\n"))
	assert.Error(t, err)
}

func TestParseEmptyYAMLUsesDefaults(t *testing.T) {
	cfg, err := Parse("yml", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(".json", []byte("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero width":          func(c *Config) { c.Window.Width = 0 },
		"empty canvas":        func(c *Config) { c.Window.CanvasID = "" },
		"eye equals target":   func(c *Config) { c.Camera.Eye = c.Camera.Target },
		"zero up":             func(c *Config) { c.Camera.Up = [3]float32{} },
		"fov too wide":        func(c *Config) { c.Camera.FovY = 180 },
		"far before near":     func(c *Config) { c.Camera.Far = 0.05 },
		"negative near":       func(c *Config) { c.Camera.Near = -1 },
		"zero sensitivity":    func(c *Config) { c.Camera.Sensitivity = 0 },
		"unknown present":     func(c *Config) { c.Renderer.PresentMode = "triple" },
		"unknown power":       func(c *Config) { c.Renderer.PowerPreference = "turbo" },
		"unknown cull mode":   func(c *Config) { c.Renderer.CullMode = "sideways" },
		"clear out of range":  func(c *Config) { c.Renderer.ClearColor[0] = 2 },
		"unknown log level":   func(c *Config) { c.Log.Level = "loud" },
		"bad interval":        func(c *Config) { c.Profiler.Interval = "soon" },
		"non-positive period": func(c *Config) { c.Profiler.Interval = "0s" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
