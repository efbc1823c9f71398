// internal/bench/collector.go
// Package: bench
package bench

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"
)

// maxIterations bounds a calibrated epoch so the count stays exact in float64.
const maxIterations = 1 << 53

// collector runs a single case: warm-up, calibration and the timed epochs.
type collector struct {
	cfg          Config
	log          *slog.Logger
	now          func() time.Time
	openCounters CounterFactory
}

// collect produces a Case with exactly cfg.Epochs samples, or an error. The
// goroutine stays on one OS thread for the whole case so that per-thread
// counters observe every epoch.
func (c *collector) collect(name string, fn Workload) (Case, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := c.log.With("case", name)

	for i := 0; i < c.cfg.Warmup; i++ {
		if err := invoke(fn); err != nil {
			return Case{}, fmt.Errorf("warm-up of %q: %w", name, err)
		}
	}
	log.Debug("warm-up done", "invocations", c.cfg.Warmup)

	var counters CounterSource
	if c.cfg.PerformanceCounters {
		src, err := c.openCounters()
		if err != nil {
			log.Warn("continuing without performance counters", "error", err)
		} else {
			counters = src
			defer func() {
				if err := src.Close(); err != nil {
					log.Warn("closing performance counters", "error", err)
				}
			}()
		}
	}

	perCall, err := c.measureOnce(fn)
	if err != nil {
		return Case{}, fmt.Errorf("calibrating %q: %w", name, err)
	}
	iters, err := c.iterationsFor(perCall)
	if err != nil {
		return Case{}, fmt.Errorf("calibrating %q: %w", name, err)
	}
	log.Debug("calibrated", "per_call", perCall, "iterations", iters)

	out := Case{Name: name, Samples: make([]Sample, 0, c.cfg.Epochs)}
	if counters != nil {
		out.Counters = make([]Counters, 0, c.cfg.Epochs)
	}

	for e := 0; e < c.cfg.Epochs; e++ {
		elapsed, raw, err := c.epoch(fn, iters, counters)
		if err != nil {
			return Case{}, fmt.Errorf("epoch %d of %q: %w", e, name, err)
		}
		if elapsed < 0 {
			return Case{}, fmt.Errorf("epoch %d of %q: %w: negative elapsed time %s", e, name, ErrCalibration, elapsed)
		}
		out.Samples = append(out.Samples, Sample{Elapsed: elapsed, Iterations: iters})
		if counters != nil {
			out.Counters = append(out.Counters, raw.perUnit(iters))
		}

		// Later epochs follow the observed cost rather than the single-call guess.
		if next, err := c.iterationsFor(time.Duration(float64(elapsed) / float64(iters))); err == nil {
			iters = next
		}
	}
	return out, nil
}

// measureOnce times a single invocation to estimate the per-call cost.
func (c *collector) measureOnce(fn Workload) (time.Duration, error) {
	start := c.now()
	if err := invoke(fn); err != nil {
		return 0, err
	}
	return c.now().Sub(start), nil
}

// iterationsFor converts a per-call cost into the smallest iteration count
// that fills MinEpochTime, never below MinEpochIterations.
func (c *collector) iterationsFor(perCall time.Duration) (int64, error) {
	if perCall < 0 {
		return 0, fmt.Errorf("%w: negative per-call cost %s", ErrCalibration, perCall)
	}
	// Below timer resolution: assume the smallest measurable cost.
	cost := math.Max(float64(perCall), 1)

	n := float64(c.cfg.MinEpochIterations)
	if c.cfg.MinEpochTime > 0 {
		n = math.Max(n, math.Ceil(float64(c.cfg.MinEpochTime)/cost))
	}
	if math.IsNaN(n) || n < 1 || n > maxIterations {
		return 0, fmt.Errorf("%w: derived iteration count %.0f from per-call cost %s", ErrCalibration, n, perCall)
	}
	return int64(n), nil
}

// epoch runs the timed region. Panics raised by the workload are turned into
// ErrWorkload errors.
func (c *collector) epoch(fn Workload, iters int64, counters CounterSource) (elapsed time.Duration, raw RawCounters, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrWorkload, r)
		}
	}()

	if counters != nil {
		if err := counters.Start(); err != nil {
			return 0, RawCounters{}, err
		}
	}
	start := c.now()
	for i := int64(0); i < iters; i++ {
		if werr := fn(); werr != nil {
			return 0, RawCounters{}, fmt.Errorf("%w: %w", ErrWorkload, werr)
		}
	}
	elapsed = c.now().Sub(start)
	if counters != nil {
		raw, err = counters.Stop()
		if err != nil {
			return 0, RawCounters{}, err
		}
	}
	return elapsed, raw, nil
}

// invoke runs fn once outside the timed region.
func invoke(fn Workload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrWorkload, r)
		}
	}()
	if werr := fn(); werr != nil {
		return fmt.Errorf("%w: %w", ErrWorkload, werr)
	}
	return nil
}
