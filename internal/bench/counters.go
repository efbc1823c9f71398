package bench

// CounterSource reads hardware performance counters over a measurement
// window. Implementations are used from a single goroutine locked to its OS
// thread.
type CounterSource interface {
	// Start resets and enables the counters.
	Start() error
	// Stop disables the counters and returns the totals since Start.
	Stop() (RawCounters, error)
	Close() error
}

// CounterFactory opens a CounterSource for the calling thread.
type CounterFactory func() (CounterSource, error)
