// Package hostinfo describes the machine benchmarks run on: CPU model,
// logical core count, memory and data cache sizes.
package hostinfo

import (
	"fmt"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Fallback cache sizes used when the CPU does not report them.
const (
	DefaultL1D = 32 * 1024
	DefaultL2  = 256 * 1024
)

// Host holds the relevant parameters of the benchmarking machine. Lookup
// failures are recorded in the string fields as "[ERR:...]" rather than
// aborting.
type Host struct {
	CPUModel      string  `json:"cpu_model"`
	CPUNumLogical int     `json:"cpu_num_logical"`
	CPUMHz        float64 `json:"cpu_mhz"`
	MemoryTotal   uint64  `json:"memory_total"`
	MemoryError   string  `json:"memory_error,omitempty"`
	L1DataCache   int     `json:"l1d_cache"`
	L2Cache       int     `json:"l2_cache"`
}

// Describe queries the host. It never fails.
func Describe() Host {
	h := Host{}
	applyCPUInfo(&h)
	applyMemInfo(&h)
	h.L1DataCache, h.L2Cache = CacheSizes()
	return h
}

func applyCPUInfo(h *Host) {
	raw, err := cpu.Info()
	if err != nil || len(raw) == 0 {
		h.CPUModel = cpuid.CPU.BrandName
		if h.CPUModel == "" {
			h.CPUModel = fmt.Sprintf("[ERR:%v]", err)
		}
		h.CPUNumLogical = cpuid.CPU.LogicalCores
		return
	}
	h.CPUModel = strings.TrimSpace(raw[0].ModelName)
	h.CPUMHz = raw[0].Mhz
	if n, err := cpu.Counts(true); err == nil {
		h.CPUNumLogical = n
	} else {
		h.CPUNumLogical = len(raw)
	}
}

func applyMemInfo(h *Host) {
	vms, err := mem.VirtualMemory()
	if err != nil {
		h.MemoryError = fmt.Sprintf("[ERR:%s]", err)
		return
	}
	h.MemoryTotal = vms.Total
}

// CacheSizes returns the L1 data and L2 cache sizes in bytes, falling back
// to DefaultL1D and DefaultL2 when unknown.
func CacheSizes() (l1d, l2 int) {
	l1d, l2 = cpuid.CPU.Cache.L1D, cpuid.CPU.Cache.L2
	if l1d <= 0 {
		l1d = DefaultL1D
	}
	if l2 <= 0 {
		l2 = DefaultL2
	}
	return l1d, l2
}

// String renders a one-line description for report headings.
func (h Host) String() string {
	var b strings.Builder
	b.WriteString(h.CPUModel)
	if h.CPUNumLogical > 0 {
		fmt.Fprintf(&b, ", %d logical CPUs", h.CPUNumLogical)
	}
	if h.CPUMHz > 0 {
		fmt.Fprintf(&b, " @ %.0f MHz", h.CPUMHz)
	}
	if h.MemoryTotal > 0 {
		fmt.Fprintf(&b, ", %s RAM", FormatBytes(h.MemoryTotal))
	}
	fmt.Fprintf(&b, ", L1d %s, L2 %s", FormatBytes(uint64(h.L1DataCache)), FormatBytes(uint64(h.L2Cache)))
	return b.String()
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
