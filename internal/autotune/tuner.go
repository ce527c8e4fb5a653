// Package autotune selects the fastest kernel variant for a fused operation
// at runtime. Candidate variants are built in probe mode (no caller state is
// mutated), cloned and dispatched repeatedly to measure steady-state
// latency, and the winner is cached per shape/stride signature so the same
// layout never benchmarks twice.
package autotune

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/weld-ml/weld/internal/compute"
	"github.com/weld-ml/weld/internal/fusion"
	"github.com/weld-ml/weld/internal/tensor"
)

// Variant is one candidate kernel strategy under a stable name. The name is
// what the winner cache stores, so it must be unique within one tuning call.
type Variant struct {
	Name    string
	Factory fusion.KernelFactory
}

// Timer measures one dispatch. The default is wall-clock; tests inject a
// deterministic one.
type Timer func(run func() error) (float64, error)

// Tuner benchmarks kernel variants and caches the winner per shape/stride
// signature.
type Tuner struct {
	mu      sync.RWMutex
	cache   map[string]string
	samples int
	timer   Timer
}

// Option configures a Tuner.
type Option func(*Tuner)

// WithSamples sets how many timed dispatches each variant gets.
func WithSamples(n int) Option {
	return func(t *Tuner) { t.samples = n }
}

// WithTimer replaces the wall-clock timer.
func WithTimer(timer Timer) Option {
	return func(t *Tuner) { t.timer = timer }
}

// NewTuner creates a tuner with an empty winner cache.
func NewTuner(opts ...Option) *Tuner {
	t := &Tuner{
		cache:   make(map[string]string),
		samples: 10,
		timer:   wallClock,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func wallClock(run func() error) (float64, error) {
	start := time.Now()
	err := run()
	return time.Since(start).Seconds(), err
}

// Signature keys the winner cache: the shapes and registered strides of the
// trace's inputs, the output shapes, and the scalar counts. Tensor ids do
// not participate, so traces differing only in ids share a winner.
func Signature(trace *fusion.Trace, ctx *fusion.Context) string {
	var b strings.Builder
	for _, in := range trace.Inputs {
		fmt.Fprintf(&b, "i%v", []int(in.Shape))
		if h, ok := ctx.Handles.Lookup(in.ID); ok {
			fmt.Fprintf(&b, "s%v", h.Strides)
		}
		b.WriteByte(';')
	}
	for _, out := range trace.Outputs {
		fmt.Fprintf(&b, "o%v;", []int(out.Shape))
	}
	fmt.Fprintf(&b, "f%d-n%d", trace.Scalars.Float, trace.Scalars.Int)
	return b.String()
}

// Execute resolves the fastest variant for the trace's layout and dispatches
// it statefully. On a cache miss every variant is benchmarked first; the
// winner's handle registrations are the ones committed by the final
// stateful build.
func (t *Tuner) Execute(variants []Variant, trace *fusion.Trace, ctx *fusion.Context, device tensor.Device, client compute.Client) error {
	if len(variants) == 0 {
		return errors.New("autotune: no variants")
	}

	key := Signature(trace, ctx)
	name, cached := t.lookup(key)
	if cached {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
		best, err := t.benchmark(variants, trace, ctx, device, client)
		if err != nil {
			return err
		}
		name = best
		t.store(key, name)
	}

	chosen := variants[0]
	for _, v := range variants {
		if v.Name == name {
			chosen = v
			break
		}
	}

	executable, err := fusion.Build(chosen.Factory, trace, ctx, device, client, true)
	if err != nil {
		return fmt.Errorf("autotune: build winner %s: %w", chosen.Name, err)
	}
	return executable.Execute()
}

// benchmark probes every variant in read-only mode and returns the name of
// the one with the lowest median latency. A variant whose compilation or
// dispatch fails is skipped; falling back to a non-fused baseline instead is
// the caller's policy, not this layer's.
func (t *Tuner) benchmark(variants []Variant, trace *fusion.Trace, ctx *fusion.Context, device tensor.Device, client compute.Client) (string, error) {
	bestName := ""
	bestScore := math.Inf(1)

	for _, v := range variants {
		executable, err := fusion.Build(v.Factory, trace, ctx, device, client, false)
		if err != nil {
			return "", fmt.Errorf("autotune: probe %s: %w", v.Name, err)
		}
		unit := fusion.ToAutotunable(executable)

		durations := make([]float64, 0, t.samples)
		var dispatchErr error
		for i := 0; i < t.samples; i++ {
			run := unit.Clone()
			d, err := t.timer(run.Execute)
			if err != nil {
				dispatchErr = err
				break
			}
			durations = append(durations, d)
		}
		unit.Release()

		if dispatchErr != nil {
			log.Warn().Str("variant", v.Name).Err(dispatchErr).Msg("variant failed, skipping")
			continue
		}

		score := median(durations)
		log.Debug().Str("variant", v.Name).Float64("median_seconds", score).Msg("benchmarked")
		if score < bestScore {
			bestScore = score
			bestName = v.Name
		}
	}

	if bestName == "" {
		return "", errors.New("autotune: every variant failed")
	}
	log.Debug().Str("variant", bestName).Msg("selected")
	return bestName, nil
}

func (t *Tuner) lookup(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	name, ok := t.cache[key]
	return name, ok
}

func (t *Tuner) store(key, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache[key] = name
}

// CacheSize returns the number of cached winners.
func (t *Tuner) CacheSize() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cache)
}

func median(durations []float64) float64 {
	if len(durations) == 0 {
		return math.Inf(1)
	}
	sorted := append([]float64(nil), durations...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
