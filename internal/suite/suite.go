// Package suite registers named benchmark entry points and runs them one
// after another. Each suite builds its own bench.Session through an Env and
// may hand it to the report sink carried by that Env.
package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"time"

	"github.com/mwiater/benchviolin/internal/bench"
)

// ErrNoSuites is returned by RunAll when nothing is registered or the filter
// matches no suite.
var ErrNoSuites = errors.New("no benchmark suites to run")

// Func is a parameterless, run-to-completion benchmark entry point.
type Func func(env *Env) error

// Sink receives completed sessions, one chart per call. A *report.HTMLRenderer
// satisfies it.
type Sink interface {
	Render(s *bench.Session, id string) error
}

type entry struct {
	name string
	fn   Func
}

// Registry holds suites in registration order.
type Registry struct {
	suites []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a suite. It panics on an empty name, a nil fn or a name that
// is already registered.
func (r *Registry) Register(name string, fn Func) {
	if name == "" {
		panic("suite: Register with empty name")
	}
	if fn == nil {
		panic("suite: Register " + name + " with nil func")
	}
	if slices.ContainsFunc(r.suites, func(e entry) bool { return e.name == name }) {
		panic("suite: Register called twice for " + name)
	}
	r.suites = append(r.suites, entry{name: name, fn: fn})
}

// Names returns the registered suite names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.suites))
	for i, e := range r.suites {
		out[i] = e.name
	}
	return out
}

// Match returns the names accepted by filter, a path.Match pattern. An
// empty filter matches everything.
func (r *Registry) Match(filter string) ([]string, error) {
	var out []string
	for _, e := range r.suites {
		ok, err := matches(filter, e.name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e.name)
		}
	}
	return out, nil
}

// Result describes one executed suite.
type Result struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// RunAll runs every suite accepted by filter, in registration order, on the
// calling goroutine. A failing suite does not stop the others; all failures
// are returned joined. Cancellation of ctx is observed between suites only.
func (r *Registry) RunAll(ctx context.Context, env *Env, filter string) ([]Result, error) {
	if env == nil {
		env = &Env{}
	}
	log := env.logger()

	var selected []entry
	for _, e := range r.suites {
		ok, err := matches(filter, e.name)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, e)
		}
	}
	if len(selected) == 0 {
		if filter != "" {
			return nil, fmt.Errorf("%w: filter %q", ErrNoSuites, filter)
		}
		return nil, ErrNoSuites
	}

	results := make([]Result, 0, len(selected))
	var errs []error
	for _, e := range selected {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		log.Info("running suite", "suite", e.name)
		start := time.Now()
		err := e.fn(env)
		res := Result{Name: e.name, Duration: time.Since(start), Err: err}
		results = append(results, res)
		if err != nil {
			log.Error("suite failed", "suite", e.name, "error", err)
			errs = append(errs, fmt.Errorf("suite %q: %w", e.name, err))
			continue
		}
		log.Info("suite done", "suite", e.name, "took", res.Duration)
	}
	return results, errors.Join(errs...)
}

func matches(filter, name string) (bool, error) {
	if filter == "" {
		return true, nil
	}
	ok, err := path.Match(filter, name)
	if err != nil {
		return false, fmt.Errorf("bad filter %q: %w", filter, err)
	}
	return ok, nil
}

// Env is handed to every suite. Sink is nil when no report was requested.
type Env struct {
	Sink     Sink
	Defaults bench.Config
	Logger   *slog.Logger

	sessions []*bench.Session
	charts   int
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// NewSession creates a session sharing the Env logger and keeps it for
// later console and JSON output.
func (e *Env) NewSession(cfg bench.Config) (*bench.Session, error) {
	s, err := bench.New(cfg, bench.WithLogger(e.logger()))
	if err != nil {
		return nil, err
	}
	e.sessions = append(e.sessions, s)
	return s, nil
}

// Render passes s to the sink under id, or under a generated id when id is
// empty. Without a sink it does nothing.
func (e *Env) Render(s *bench.Session, id string) error {
	if e.Sink == nil {
		return nil
	}
	if id == "" {
		id = fmt.Sprintf("plot%d", e.charts)
	}
	e.charts++
	return e.Sink.Render(s, id)
}

// Sessions returns the sessions created through NewSession, in order.
func (e *Env) Sessions() []*bench.Session {
	return slices.Clone(e.sessions)
}

// Default is the process-wide registry used by Register.
var Default = NewRegistry()

// Register adds a suite to Default.
func Register(name string, fn Func) { Default.Register(name, fn) }
