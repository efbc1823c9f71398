// internal/report/json.go
// Package: report
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/hostinfo"
)

// Export is the JSON artifact of a run: every session with its cases, raw
// samples and derived statistics.
type Export struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Host        hostinfo.Host   `json:"host"`
	Sessions    []SessionExport `json:"sessions"`
}

// SessionExport is one session of an Export.
type SessionExport struct {
	Config bench.Config `json:"config"`
	Cases  []CaseExport `json:"cases"`
}

// CaseExport flattens a case and its summary. Undefined values (NaN) are
// encoded as null.
type CaseExport struct {
	Name     string           `json:"name"`
	Samples  []bench.Sample   `json:"samples"`
	Counters []bench.Counters `json:"counters,omitempty"`

	// Per-unit elapsed seconds, one per epoch.
	Elapsed []float64 `json:"elapsed"`

	Median          *float64 `json:"median"`
	Mean            *float64 `json:"mean"`
	StdDev          *float64 `json:"std_dev"`
	Min             *float64 `json:"min"`
	Max             *float64 `json:"max"`
	PercentageError *float64 `json:"percentage_error"`
	Ratio           *float64 `json:"ratio,omitempty"`
}

// NewExport snapshots sessions. Ratios are included for relative sessions.
func NewExport(host hostinfo.Host, sessions []*bench.Session) Export {
	out := Export{GeneratedAt: time.Now(), Host: host, Sessions: make([]SessionExport, 0, len(sessions))}
	for _, s := range sessions {
		cfg := s.Config()
		ratios := s.Ratios()
		se := SessionExport{Config: cfg, Cases: []CaseExport{}}
		for i, c := range s.Cases() {
			sum := c.Summary()
			ce := CaseExport{
				Name:            c.Name,
				Samples:         c.Samples,
				Counters:        c.Counters,
				Elapsed:         c.Elapsed(),
				Median:          finite(sum.Median),
				Mean:            finite(sum.Mean),
				StdDev:          finite(sum.StdDev),
				Min:             finite(sum.Min),
				Max:             finite(sum.Max),
				PercentageError: finite(sum.PercentageError),
			}
			if cfg.Relative {
				ce.Ratio = finite(ratios[i])
			}
			se.Cases = append(se.Cases, ce)
		}
		out.Sessions = append(out.Sessions, se)
	}
	return out
}

// WriteJSON encodes e with indentation.
func WriteJSON(w io.Writer, e Export) error {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}

// ReadJSON decodes an Export written by WriteJSON.
func ReadJSON(r io.Reader) (Export, error) {
	var e Export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return Export{}, fmt.Errorf("decode results: %w", err)
	}
	return e, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
