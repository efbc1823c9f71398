//go:build linux

package bench

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfCounters_CountBusyLoop(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	src, err := OpenPerfCounters()
	if errors.Is(err, ErrCountersUnsupported) {
		t.Skipf("hardware counters unavailable: %v", err)
	}
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Start())
	var sum uint64
	for i := uint64(0); i < 1_000_000; i++ {
		sum += i ^ (sum >> 3)
	}
	DoNotOptimizeAway(sum)
	raw, err := src.Stop()
	require.NoError(t, err)

	assert.Greater(t, raw.Instructions, uint64(0))

	require.NoError(t, src.Close())
	assert.NoError(t, src.Close(), "second close is a no-op")
}
