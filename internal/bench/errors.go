package bench

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid benchmark configuration")

	// ErrConfigFrozen is returned by Configure once a case has executed.
	ErrConfigFrozen = errors.New("configuration is fixed once a case has run")

	// ErrCalibration means no usable iteration count could be derived.
	ErrCalibration = errors.New("calibration failed")

	// ErrWorkload wraps an error returned, or a panic raised, by a workload.
	ErrWorkload = errors.New("workload failed")

	// ErrCountersUnsupported is returned when hardware counters cannot be opened.
	ErrCountersUnsupported = errors.New("performance counters unavailable")
)
