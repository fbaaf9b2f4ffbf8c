package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-quad/engine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionOptionsFromDefaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts, err := sessionOptions(config.Default(), logger)
	require.NoError(t, err)
	assert.Len(t, opts, 5)
}

func TestSessionOptionsWithProfiler(t *testing.T) {
	cfg := config.Default()
	cfg.Profiler.Enabled = true
	cfg.Profiler.Interval = "2s"

	opts, err := sessionOptions(cfg, slog.Default())
	require.NoError(t, err)
	assert.Len(t, opts, 7)
}

func TestSessionOptionsRejectsBadPresentMode(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.PresentMode = "sometimes"

	_, err := sessionOptions(cfg, slog.Default())
	assert.Error(t, err)
}

func TestSessionOptionsRejectsBadCullMode(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.CullMode = "sideways"

	_, err := sessionOptions(cfg, slog.Default())
	assert.Error(t, err)
}

func TestRunRejectsMissingConfig(t *testing.T) {
	err := run("testdata/does-not-exist.toml")
	assert.Error(t, err)
}
