//go:build !linux

package bench

import (
	"fmt"
	"runtime"
)

// OpenPerfCounters is only implemented on Linux.
func OpenPerfCounters() (CounterSource, error) {
	return nil, fmt.Errorf("%w on %s", ErrCountersUnsupported, runtime.GOOS)
}
