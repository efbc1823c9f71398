package hostinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:         "512 B",
		32 * 1024:   "32.0 KiB",
		1536 * 1024: "1.5 MiB",
		8 << 30:     "8.0 GiB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBytes(in))
	}
}

func TestCacheSizes_Positive(t *testing.T) {
	l1d, l2 := CacheSizes()
	assert.Greater(t, l1d, 0)
	assert.Greater(t, l2, 0)
}

func TestDescribe_NeverEmpty(t *testing.T) {
	h := Describe()
	assert.NotEmpty(t, h.CPUModel)
	assert.Greater(t, h.L1DataCache, 0)
	assert.Contains(t, h.String(), "L1d")
}

func TestHostString(t *testing.T) {
	h := Host{CPUModel: "Test CPU", CPUNumLogical: 8, CPUMHz: 3000, MemoryTotal: 16 << 30, L1DataCache: 48 * 1024, L2Cache: 2 << 20}
	assert.Equal(t, "Test CPU, 8 logical CPUs @ 3000 MHz, 16.0 GiB RAM, L1d 48.0 KiB, L2 2.0 MiB", h.String())
}
