// internal/bench/types.go
// Package: bench
package bench

import (
	"slices"
	"time"

	"github.com/mwiater/benchviolin/internal/stats"
)

// Workload is one unit of work measured by a Session. A non-nil error aborts
// the case.
type Workload func() error

// Sample is one epoch's measurement.
type Sample struct {
	Elapsed    time.Duration `json:"elapsed"`    // wall-clock time of the whole epoch
	Iterations int64         `json:"iterations"` // workload invocations in the epoch
}

// PerUnit returns the elapsed seconds per iteration.
func (s Sample) PerUnit() float64 {
	if s.Iterations <= 0 {
		return 0
	}
	return s.Elapsed.Seconds() / float64(s.Iterations)
}

// Counters are hardware counter readings for one epoch, normalized per
// iteration.
type Counters struct {
	Instructions float64 `json:"instructions"`
	BranchMisses float64 `json:"branch_misses"`
	CacheMisses  float64 `json:"cache_misses"`
}

// RawCounters are the totals read from the counter source for one window.
type RawCounters struct {
	Instructions uint64
	BranchMisses uint64
	CacheMisses  uint64
}

func (r RawCounters) perUnit(iterations int64) Counters {
	n := float64(iterations)
	return Counters{
		Instructions: float64(r.Instructions) / n,
		BranchMisses: float64(r.BranchMisses) / n,
		CacheMisses:  float64(r.CacheMisses) / n,
	}
}

// Case is the completed result of one named run. Cases returned by a Session
// are copies; mutating them does not affect the Session.
type Case struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`

	// One entry per epoch, or nil when counters were not recorded.
	Counters []Counters `json:"counters,omitempty"`
}

// Epochs returns the number of samples.
func (c Case) Epochs() int { return len(c.Samples) }

// Elapsed returns per-unit elapsed seconds for each epoch, in epoch order.
func (c Case) Elapsed() []float64 {
	out := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.PerUnit()
	}
	return out
}

// Summary computes the statistics of the per-unit elapsed samples.
func (c Case) Summary() stats.Summary {
	return stats.Summarize(c.Elapsed())
}

// CounterSummary returns the median per-unit counter values, and false when
// the case has no counter samples.
func (c Case) CounterSummary() (Counters, bool) {
	if len(c.Counters) == 0 {
		return Counters{}, false
	}
	ins := make([]float64, len(c.Counters))
	bra := make([]float64, len(c.Counters))
	cache := make([]float64, len(c.Counters))
	for i, ctr := range c.Counters {
		ins[i], bra[i], cache[i] = ctr.Instructions, ctr.BranchMisses, ctr.CacheMisses
	}
	return Counters{
		Instructions: stats.Median(ins),
		BranchMisses: stats.Median(bra),
		CacheMisses:  stats.Median(cache),
	}, true
}

func (c Case) clone() Case {
	c.Samples = slices.Clone(c.Samples)
	c.Counters = slices.Clone(c.Counters)
	return c
}
