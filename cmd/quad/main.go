// Command quad opens a window (or binds a browser canvas under js/wasm) and renders a colored quad
// that can be orbited by dragging with the primary mouse button.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-quad/engine"
	"github.com/Carmen-Shannon/oxy-quad/engine/camera"
	"github.com/Carmen-Shannon/oxy-quad/engine/config"
	"github.com/Carmen-Shannon/oxy-quad/engine/profiler"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer"
	"github.com/Carmen-Shannon/oxy-quad/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-quad/engine/window"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("quad exited", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sessionOpts, err := sessionOptions(cfg, logger)
	if err != nil {
		return err
	}

	w, err := window.TryNewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithCanvasID(cfg.Window.CanvasID),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := engine.NewSession(append(sessionOpts, engine.WithWindow(w))...)
	defer s.Close()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// sessionOptions translates the configuration into session, camera, renderer and pipeline options.
func sessionOptions(cfg config.Config, logger *slog.Logger) ([]engine.SessionBuilderOption, error) {
	presentMode, err := cfg.PresentMode()
	if err != nil {
		return nil, err
	}
	power, err := cfg.PowerPreference()
	if err != nil {
		return nil, err
	}
	cull, err := cfg.CullMode()
	if err != nil {
		return nil, err
	}

	c := cfg.Camera
	cam := camera.NewCamera(
		camera.WithEye(c.Eye[0], c.Eye[1], c.Eye[2]),
		camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
		camera.WithUp(c.Up[0], c.Up[1], c.Up[2]),
		camera.WithFovY(c.FovY),
		camera.WithNear(c.Near),
		camera.WithFar(c.Far),
	)
	drag := camera.NewDragController(camera.WithMouseSensitivity(c.Sensitivity), camera.WithInvertY(c.InvertY))

	opts := []engine.SessionBuilderOption{
		engine.WithLogger(logger),
		engine.WithCamera(cam),
		engine.WithDragController(drag),
		engine.WithRendererOptions(
			renderer.WithPresentMode(presentMode),
			renderer.WithPowerPreference(power),
			renderer.WithForceFallbackAdapter(cfg.Renderer.ForceFallbackAdapter),
			renderer.WithClearColor(cfg.ClearColor()),
		),
		engine.WithPipelineOptions(pipeline.WithCullMode(cull)),
	}

	if cfg.Profiler.Enabled {
		interval, err := cfg.ProfilerInterval()
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			engine.WithProfiling(true),
			engine.WithProfiler(profiler.NewProfiler(profiler.WithInterval(interval), profiler.WithLogger(logger))),
		)
	}
	return opts, nil
}
