package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-quad/engine/camera"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when a loaded or constructed Config fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnsupportedFormat is returned by Load for a file extension other than .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Config is the full runtime configuration of the quad viewer.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Profiler ProfilerConfig `toml:"profiler" yaml:"profiler"`
}

// WindowConfig describes the desktop window or browser canvas.
type WindowConfig struct {
	Title    string `toml:"title" yaml:"title"`
	Width    int    `toml:"width" yaml:"width"`
	Height   int    `toml:"height" yaml:"height"`
	CanvasID string `toml:"canvas_id" yaml:"canvas_id"`
}

// CameraConfig holds the initial camera pose, projection and drag behavior.
type CameraConfig struct {
	Eye         [3]float32 `toml:"eye" yaml:"eye"`
	Target      [3]float32 `toml:"target" yaml:"target"`
	Up          [3]float32 `toml:"up" yaml:"up"`
	FovY        float32    `toml:"fovy" yaml:"fovy"`
	Near        float32    `toml:"near" yaml:"near"`
	Far         float32    `toml:"far" yaml:"far"`
	Sensitivity float32    `toml:"sensitivity" yaml:"sensitivity"`
	InvertY     bool       `toml:"invert_y" yaml:"invert_y"`
}

// RendererConfig selects presentation and adapter behavior.
type RendererConfig struct {
	PresentMode          string     `toml:"present_mode" yaml:"present_mode"`
	PowerPreference      string     `toml:"power_preference" yaml:"power_preference"`
	ForceFallbackAdapter bool       `toml:"force_fallback_adapter" yaml:"force_fallback_adapter"`
	ClearColor           [4]float64 `toml:"clear_color" yaml:"clear_color"`
	CullMode             string     `toml:"cull_mode" yaml:"cull_mode"`
}

// LogConfig sets the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// ProfilerConfig enables periodic frame statistics. Interval is a Go duration string such as "1s".
type ProfilerConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	Interval string `toml:"interval" yaml:"interval"`
}

// Default returns the built-in configuration: an 800x450 canvas with id "webgpu-canvas", a camera at
// (0,1,1.5) looking at the origin with a 45 degree field of view, vsync presentation, back-face
// culling and the dark blue clear color.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	cc := renderer.DefaultClearColor
	return Config{
		Window: WindowConfig{
			Title:    "oxy-quad",
			Width:    800,
			Height:   450,
			CanvasID: "webgpu-canvas",
		},
		Camera: CameraConfig{
			Eye:         [3]float32{0, 1, 1.5},
			Target:      [3]float32{0, 0, 0},
			Up:          [3]float32{0, 1, 0},
			FovY:        45,
			Near:        0.1,
			Far:         100,
			Sensitivity: camera.DefaultMouseSensitivity,
		},
		Renderer: RendererConfig{
			PresentMode:     renderer.PresentModeAutoVsync.String(),
			PowerPreference: "default",
			ClearColor:      [4]float64{cc.R, cc.G, cc.B, cc.A},
			CullMode:        "back",
		},
		Log: LogConfig{
			Level: "info",
		},
		Profiler: ProfilerConfig{
			Enabled:  false,
			Interval: "1s",
		},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults and validates the result.
// Unknown keys are rejected.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, decode or ErrInvalidConfig error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes config data in the format named by ext (".toml", ".yaml" or ".yml") over the
// defaults and validates the result.
//
// Parameters:
//   - ext: the format extension, with or without the leading dot
//   - data: the raw config bytes
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode error, ErrUnsupportedFormat or ErrInvalidConfig
func Parse(ext string, data []byte) (Config, error) {
	cfg := Default()

	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
			}
			return Config{}, fmt.Errorf("decode toml config: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and returns the first problem found.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the offending field, or nil
func (c Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window", "size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.CanvasID == "" {
		return invalid("window.canvas_id", "must not be empty")
	}

	cam := c.Camera
	for name, v := range map[string][3]float32{"camera.eye": cam.Eye, "camera.target": cam.Target, "camera.up": cam.Up} {
		for _, x := range v {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return invalid(name, "must be finite")
			}
		}
	}
	if cam.Eye == cam.Target {
		return invalid("camera.eye", "must differ from camera.target")
	}
	if cam.Up == [3]float32{} {
		return invalid("camera.up", "must not be zero")
	}
	if cam.FovY <= 0 || cam.FovY >= 180 {
		return invalid("camera.fovy", "must be in (0, 180), got %v", cam.FovY)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return invalid("camera.near", "need 0 < near < far, got near=%v far=%v", cam.Near, cam.Far)
	}
	if cam.Sensitivity <= 0 {
		return invalid("camera.sensitivity", "must be positive, got %v", cam.Sensitivity)
	}

	if _, err := c.PresentMode(); err != nil {
		return invalid("renderer.present_mode", "%v", err)
	}
	if _, err := c.PowerPreference(); err != nil {
		return invalid("renderer.power_preference", "%v", err)
	}
	if _, err := c.CullMode(); err != nil {
		return invalid("renderer.cull_mode", "%v", err)
	}
	for _, ch := range c.Renderer.ClearColor {
		if ch < 0 || ch > 1 {
			return invalid("renderer.clear_color", "channels must be in [0, 1], got %v", c.Renderer.ClearColor)
		}
	}

	if _, err := c.LogLevel(); err != nil {
		return invalid("log.level", "%v", err)
	}
	if _, err := c.ProfilerInterval(); err != nil {
		return invalid("profiler.interval", "%v", err)
	}
	return nil
}

// PresentMode resolves the configured present mode name.
func (c Config) PresentMode() (renderer.PresentMode, error) {
	return renderer.ParsePresentMode(c.Renderer.PresentMode)
}

// PowerPreference resolves "default", "low_power" or "high_performance" to the wgpu value.
func (c Config) PowerPreference() (wgpu.PowerPreference, error) {
	switch strings.ReplaceAll(strings.ToLower(c.Renderer.PowerPreference), "-", "_") {
	case "", "default":
		return wgpu.PowerPreferenceUndefined, nil
	case "low_power":
		return wgpu.PowerPreferenceLowPower, nil
	case "high_performance":
		return wgpu.PowerPreferenceHighPerformance, nil
	}
	return wgpu.PowerPreferenceUndefined, fmt.Errorf("unknown power preference %q", c.Renderer.PowerPreference)
}

// CullMode resolves "back", "front" or "none" to the wgpu value.
func (c Config) CullMode() (wgpu.CullMode, error) {
	switch strings.ToLower(c.Renderer.CullMode) {
	case "", "back":
		return wgpu.CullModeBack, nil
	case "front":
		return wgpu.CullModeFront, nil
	case "none":
		return wgpu.CullModeNone, nil
	}
	return wgpu.CullModeBack, fmt.Errorf("unknown cull mode %q", c.Renderer.CullMode)
}

// ClearColor returns the configured clear color.
func (c Config) ClearColor() wgpu.Color {
	cc := c.Renderer.ClearColor
	return wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// LogLevel parses the configured slog level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// ProfilerInterval parses the profiler interval.
func (c Config) ProfilerInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Profiler.Interval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
