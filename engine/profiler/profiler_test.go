package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickLogsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	clock := time.Unix(0, 0)
	p := NewProfiler(WithLogger(logger), WithInterval(time.Second))
	p.now = func() time.Time { return clock }
	p.lastTime = clock

	clock = clock.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
	p.Skip()
	p.Skip()

	clock = clock.Add(500 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.Contains(t, buf.String(), "fps=2")
	assert.Contains(t, buf.String(), "skipped=2")

	buf.Reset()
	clock = clock.Add(time.Second)
	assert.True(t, p.Tick())
	assert.Contains(t, buf.String(), "skipped=0")
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
