package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/report"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, SessionDefaults(), cfg.Session)
	assert.Equal(t, 100, cfg.Session.Warmup)
	assert.Equal(t, int64(100_000), cfg.Session.MinEpochIterations)
	assert.True(t, cfg.Session.PerformanceCounters)
	assert.Equal(t, report.DefaultOptions(), cfg.Report)
	assert.Equal(t, Log{Level: "warn", Format: "text"}, cfg.Log)
	assert.Empty(t, cfg.Output)
	assert.Empty(t, cfg.Filter)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchviolin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
session:
  warmup: 5
  epochs: 21
  min_epoch_iterations: 1000
  min_epoch_time: 5ms
  performance_counters: true
report:
  output: out.html
  plot_type: box
  show_epochs: true
  range_mode: ""
log:
  level: debug
  format: json
run:
  filter: "mult/*"
`), 0o644))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Session.Warmup)
	assert.Equal(t, 21, cfg.Session.Epochs)
	assert.Equal(t, int64(1000), cfg.Session.MinEpochIterations)
	assert.Equal(t, 5*time.Millisecond, cfg.Session.MinEpochTime)
	assert.True(t, cfg.Session.PerformanceCounters)
	assert.Equal(t, "out.html", cfg.Output)
	assert.Equal(t, report.PlotBox, cfg.Report.PlotType)
	assert.True(t, cfg.Report.ShowEpochs)
	assert.True(t, cfg.Report.ShowLegend)
	assert.Empty(t, cfg.Report.RangeMode)
	assert.Equal(t, "mult/*", cfg.Filter)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("BENCHVIOLIN_SESSION_EPOCHS", "3")
	t.Setenv("BENCHVIOLIN_SESSION_WARMUP", "0")
	t.Setenv("BENCHVIOLIN_SESSION_MIN_EPOCH_ITERATIONS", "10")
	t.Setenv("BENCHVIOLIN_SESSION_PERFORMANCE_COUNTERS", "false")
	t.Setenv("BENCHVIOLIN_REPORT_PLOT_TYPE", "BOX")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Session.Epochs)
	assert.Equal(t, 0, cfg.Session.Warmup)
	assert.Equal(t, int64(10), cfg.Session.MinEpochIterations)
	assert.False(t, cfg.Session.PerformanceCounters)
	assert.Equal(t, report.PlotBox, cfg.Report.PlotType)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		key   string
		value any
		is    error
	}{
		"zero epochs":     {"session.epochs", 0, bench.ErrInvalidConfig},
		"negative warmup": {"session.warmup", -1, bench.ErrInvalidConfig},
		"plot type":       {"report.plot_type", "pie", ErrInvalid},
		"log level":       {"log.level", "loud", ErrInvalid},
		"log format":      {"log.format", "xml", ErrInvalid},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := New("")
			require.NoError(t, err)
			v.Set(tt.key, tt.value)
			_, err = Load(v)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLog_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	Log{Level: "info", Format: "json"}.NewLogger(&buf).Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	l := Log{Level: "error", Format: "text"}.NewLogger(&buf)
	l.Info("hidden")
	l.Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
