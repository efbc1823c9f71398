package bench

import "runtime"

// DoNotOptimizeAway marks v as used so the compiler cannot drop the
// computation that produced it.
func DoNotOptimizeAway[T any](v T) {
	runtime.KeepAlive(v)
}
