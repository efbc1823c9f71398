// Package bench runs timed trials of small workloads and keeps their raw
// per-epoch samples.
//
// A Session holds one Config and the ordered list of completed cases:
//
//	s, err := bench.New(bench.DefaultConfig().
//		WithTitle("mult/div float").
//		WithWarmup(100).
//		WithMinEpochIterations(100_000).
//		WithRelative(true))
//	if err != nil { ... }
//	err = s.Run("/ L1", func() { div(x, y, z); bench.DoNotOptimizeAway(z) })
//
// Cases run one after another on the calling goroutine. A Session is not safe
// for concurrent use.
package bench

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/mwiater/benchviolin/internal/stats"
)

// Session is the shared configuration and ordered collection of cases for
// one comparative report.
type Session struct {
	cfg   Config
	cases []Case
	ran   bool

	log          *slog.Logger
	now          func() time.Time
	openCounters CounterFactory
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the monotonic clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCounterFactory replaces the hardware counter source used when
// Config.PerformanceCounters is set.
func WithCounterFactory(f CounterFactory) Option {
	return func(s *Session) {
		if f != nil {
			s.openCounters = f
		}
	}
}

// New validates cfg and returns an empty Session.
func New(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:          cfg,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		openCounters: OpenPerfCounters,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Configure replaces the configuration. It fails with ErrConfigFrozen once
// any case has started, since mixed configurations make the cases
// incomparable.
func (s *Session) Configure(cfg Config) error {
	if s.ran {
		return ErrConfigFrozen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Title returns the configured title.
func (s *Session) Title() string { return s.cfg.Title }

// Run measures fn under the session configuration and appends the case.
// A panic inside fn fails the case with ErrWorkload.
func (s *Session) Run(name string, fn func()) error {
	return s.RunE(name, func() error {
		fn()
		return nil
	})
}

// RunE is Run for workloads that can fail. The first error aborts the case;
// it is not retried and the case is not recorded. Previously recorded cases
// are kept.
func (s *Session) RunE(name string, fn Workload) error {
	if fn == nil {
		return fmt.Errorf("%w: nil workload for %q", ErrWorkload, name)
	}
	s.ran = true
	if s.has(name) {
		s.log.Warn("duplicate case name, report labels will be ambiguous", "title", s.cfg.Title, "case", name)
	}

	c := collector{cfg: s.cfg, log: s.log, now: s.now, openCounters: s.openCounters}
	start := s.now()
	res, err := c.collect(name, fn)
	if err != nil {
		s.log.Error("case failed", "title", s.cfg.Title, "case", name, "error", err)
		return err
	}
	s.cases = append(s.cases, res)

	sum := res.Summary()
	s.log.Info("case done",
		"title", s.cfg.Title,
		"case", name,
		"epochs", res.Epochs(),
		"median", time.Duration(sum.Median*float64(time.Second)),
		"error_pct", 100*sum.PercentageError,
		"took", s.now().Sub(start),
	)
	return nil
}

// Cases returns a copy of the completed cases in execution order.
func (s *Session) Cases() []Case {
	out := make([]Case, len(s.cases))
	for i, c := range s.cases {
		out[i] = c.clone()
	}
	return out
}

// Len returns the number of completed cases.
func (s *Session) Len() int { return len(s.cases) }

// Baseline returns the first recorded case, the 1.0 reference of a relative
// comparison.
func (s *Session) Baseline() (Case, bool) {
	if len(s.cases) == 0 {
		return Case{}, false
	}
	return s.cases[0].clone(), true
}

// Ratios returns median(case i) / median(first case) for every case. The
// first entry is 1 unless the baseline median is zero, in which case every
// ratio is NaN. The result is computed on each call and not stored.
func (s *Session) Ratios() []float64 {
	if len(s.cases) == 0 {
		return nil
	}
	base := s.cases[0].Summary().Median
	out := make([]float64, len(s.cases))
	for i, c := range s.cases {
		out[i] = stats.Ratio(c.Summary().Median, base)
	}
	return out
}

func (s *Session) has(name string) bool {
	return slices.ContainsFunc(s.cases, func(c Case) bool { return c.Name == name })
}
