// internal/bench/config.go
// Package: bench
package bench

import (
	"fmt"
	"time"
)

// Config holds the parameters shared by every case of a Session.
//
// The With* methods have value receivers and return a modified copy, so a
// Config can be built in one chained expression or kept in a variable and
// reassigned step by step.
type Config struct {
	// Chart heading and console table title.
	Title string `json:"title"`

	// Label of one unit of work, e.g. "op", "byte", "int".
	Unit string `json:"unit"`

	// Untimed invocations before the first epoch.
	Warmup int `json:"warmup"`

	// Lower bound on iterations per epoch.
	MinEpochIterations int64 `json:"min_epoch_iterations"`

	// Number of epochs, i.e. samples per case.
	Epochs int `json:"epochs"`

	// Calibration target: iterations are raised until an epoch is expected
	// to last at least this long. Zero disables time-based calibration.
	MinEpochTime time.Duration `json:"min_epoch_time"`

	// Report timings relative to the first case.
	Relative bool `json:"relative"`

	// Sample hardware performance counters alongside wall-clock time.
	PerformanceCounters bool `json:"performance_counters"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Title:              "benchmark",
		Unit:               "op",
		Warmup:             0,
		MinEpochIterations: 1,
		Epochs:             11,
		MinEpochTime:       time.Millisecond,
	}
}

func (c Config) WithTitle(title string) Config { c.Title = title; return c }

func (c Config) WithUnit(unit string) Config { c.Unit = unit; return c }

func (c Config) WithWarmup(n int) Config { c.Warmup = n; return c }

func (c Config) WithMinEpochIterations(n int64) Config { c.MinEpochIterations = n; return c }

func (c Config) WithEpochs(n int) Config { c.Epochs = n; return c }

func (c Config) WithMinEpochTime(d time.Duration) Config { c.MinEpochTime = d; return c }

func (c Config) WithRelative(relative bool) Config { c.Relative = relative; return c }

func (c Config) WithPerformanceCounters(enabled bool) Config {
	c.PerformanceCounters = enabled
	return c
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Unit == "":
		return fmt.Errorf("%w: unit must not be empty", ErrInvalidConfig)
	case c.Warmup < 0:
		return fmt.Errorf("%w: warmup must be >= 0, got %d", ErrInvalidConfig, c.Warmup)
	case c.MinEpochIterations < 1:
		return fmt.Errorf("%w: min epoch iterations must be >= 1, got %d", ErrInvalidConfig, c.MinEpochIterations)
	case c.Epochs < 1:
		return fmt.Errorf("%w: epochs must be >= 1, got %d", ErrInvalidConfig, c.Epochs)
	case c.MinEpochTime < 0:
		return fmt.Errorf("%w: min epoch time must be >= 0, got %s", ErrInvalidConfig, c.MinEpochTime)
	}
	return nil
}
