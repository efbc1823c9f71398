package bench

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_IterationsFor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		perCall time.Duration
		want    int64
	}{
		{
			name:    "minimum iterations dominate",
			cfg:     DefaultConfig().WithMinEpochIterations(5000).WithMinEpochTime(time.Millisecond),
			perCall: time.Microsecond,
			want:    5000,
		},
		{
			name:    "min epoch time dominates",
			cfg:     DefaultConfig().WithMinEpochIterations(10).WithMinEpochTime(time.Millisecond),
			perCall: time.Microsecond,
			want:    1000,
		},
		{
			name:    "time calibration disabled",
			cfg:     DefaultConfig().WithMinEpochIterations(200).WithMinEpochTime(0),
			perCall: time.Nanosecond,
			want:    200,
		},
		{
			name:    "rounds up partial iterations",
			cfg:     DefaultConfig().WithMinEpochIterations(1).WithMinEpochTime(time.Millisecond),
			perCall: 300 * time.Microsecond,
			want:    4,
		},
		{
			name:    "below timer resolution",
			cfg:     DefaultConfig().WithMinEpochIterations(1).WithMinEpochTime(time.Microsecond),
			perCall: 0,
			want:    1000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := collector{cfg: tt.cfg}
			got, err := c.iterationsFor(tt.perCall)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollector_IterationsForRejectsPathologicalCost(t *testing.T) {
	c := collector{cfg: DefaultConfig().WithMinEpochTime(time.Duration(1 << 62))}

	_, err := c.iterationsFor(0)
	assert.ErrorIs(t, err, ErrCalibration)

	_, err = c.iterationsFor(-time.Nanosecond)
	assert.ErrorIs(t, err, ErrCalibration)
}

func TestCollector_WarmupFailure(t *testing.T) {
	c := collector{
		cfg:          fixedIterations(1, 1).WithWarmup(3),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		openCounters: OpenPerfCounters,
	}
	calls := 0
	_, err := c.collect("warm", func() error {
		calls++
		panic("during warm-up")
	})
	assert.ErrorIs(t, err, ErrWorkload)
	assert.Equal(t, 1, calls)
}

func TestDoNotOptimizeAway(t *testing.T) {
	assert.NotPanics(t, func() {
		DoNotOptimizeAway([]float32{1, 2, 3})
		DoNotOptimizeAway(42)
	})
}
