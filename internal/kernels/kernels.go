// Package kernels holds example workloads: element-wise arithmetic over
// operand vectors sized to fit the L1 or L2 data cache.
package kernels

import (
	"fmt"
	"unsafe"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/hostinfo"
	"github.com/mwiater/benchviolin/internal/inputs"
	"github.com/mwiater/benchviolin/internal/suite"
)

// Element is a vector element type usable by the kernels.
type Element interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// Compute writes op(a[i], b[i]) into out[i] for every index of a.
func Compute[T Element](a, b, out []T, op func(T, T) T) {
	for i := range a {
		out[i] = op(a[i], b[i])
	}
}

// Operators used by the suites.
func Div[T Element](l, r T) T { return l / r }
func Mul[T Element](l, r T) T { return l * r }
func Add[T Element](l, r T) T { return l + r }
func Sub[T Element](l, r T) T { return l - r }

// Params overrides the session defaults handed to the suites through
// suite.Env. Zero fields inherit the defaults.
type Params struct {
	Warmup             int
	MinEpochIterations int64
	Epochs             int
	Seed               uint64 // zero picks a random seed
	L1, L2             int    // cache sizes in bytes, zero to query the CPU
}

// Avail returns the bytes per operand vector for a cache of size bytes.
// Three vectors are live at once, so each gets an eighth of the cache.
func Avail(cache int) int { return cache / 8 }

// Count returns how many T fit in bytes, at least one.
func Count[T Element](bytes int) int {
	var zero T
	n := bytes / int(unsafe.Sizeof(zero))
	return max(n, 1)
}

// Register adds the arithmetic suites to r.
func Register(r *suite.Registry, p Params) {
	r.Register("mult/div float L1", func(env *suite.Env) error {
		l1, l2 := p.caches()
		return runSuite(env, p, "mult/div float L1", "int", true, []kernel{
			arith[float32]("/ L1", Avail(l1), Div[float32]),
			arith[float32]("/ L2", Avail(l2), Div[float32]),
			arith[float32]("* L1", Avail(l1), Mul[float32]),
			arith[float32]("* L2", Avail(l2), Mul[float32]),
		})
	})
	r.Register("add/sub int L1", func(env *suite.Env) error {
		l1, _ := p.caches()
		return runSuite(env, p, "add/sub int L1", "int", true, []kernel{
			arith[int64]("+ int64", Avail(l1), Add[int64]),
			arith[int64]("- int64", Avail(l1), Sub[int64]),
			arith[int32]("+ int32", Avail(l1), Add[int32]),
			arith[int32]("- int32", Avail(l1), Sub[int32]),
		})
	})
}

func (p Params) caches() (l1, l2 int) {
	l1, l2 = hostinfo.CacheSizes()
	if p.L1 > 0 {
		l1 = p.L1
	}
	if p.L2 > 0 {
		l2 = p.L2
	}
	return l1, l2
}

// kernel prepares its operands from a seed and returns the measured body.
type kernel struct {
	name  string
	setup func(seed uint64) (func(), error)
}

func arith[T Element](name string, bytes int, op func(T, T) T) kernel {
	return kernel{name: name, setup: func(seed uint64) (func(), error) {
		n := Count[T](bytes)
		src := inputs.NewSource(seed)
		x, err := inputs.Uniform(src, T(1), T(1_000_000), n)
		if err != nil {
			return nil, err
		}
		y, err := inputs.Uniform(src, T(1), T(1_000_000), n)
		if err != nil {
			return nil, err
		}
		z := make([]T, n)
		return func() {
			Compute(x, y, z, op)
			bench.DoNotOptimizeAway(z)
		}, nil
	}}
}

func runSuite(env *suite.Env, p Params, title, unit string, relative bool, ks []kernel) error {
	cfg := env.Defaults
	if cfg.Unit == "" {
		cfg = bench.DefaultConfig()
	}
	cfg = cfg.
		WithTitle(title).
		WithUnit(unit).
		WithRelative(relative)
	if p.Warmup > 0 {
		cfg = cfg.WithWarmup(p.Warmup)
	}
	if p.MinEpochIterations > 0 {
		cfg = cfg.WithMinEpochIterations(p.MinEpochIterations)
	}
	if p.Epochs > 0 {
		cfg = cfg.WithEpochs(p.Epochs)
	}

	s, err := env.NewSession(cfg)
	if err != nil {
		return err
	}
	for _, k := range ks {
		body, err := k.setup(p.Seed)
		if err != nil {
			return fmt.Errorf("preparing %q: %w", k.name, err)
		}
		if err := s.Run(k.name, body); err != nil {
			return err
		}
	}
	return env.Render(s, "")
}
