package bootstrap

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/experiment"
)

const (
	// Sequential runs every replicate in the calling goroutine with a single
	// random source.
	Sequential = -1
	// AllCPUs runs one worker per available CPU.
	AllCPUs = 0
)

// RunOptions configure Engine.Run.
type RunOptions struct {
	// Replicates is the number of bootstrap replicates; 1000 is the usual
	// minimum for a 95% interval and 5000 for 99%.
	Replicates int
	// Workers is Sequential, AllCPUs or an exact worker count.
	Workers int
	// Distribution is ignored when Workers is Sequential.
	Distribution Distribution
	// Seed seeds the random sources when SeedSet is true. Per-replicate runs
	// always seed from the replicate index and use Seed as the stream.
	Seed    uint64
	SeedSet bool
	// Progress, when set, is called from a single goroutine after each
	// completed replicate.
	Progress func(done, total int)
}

func (o RunOptions) validate() error {
	if o.Replicates <= 0 {
		return fmt.Errorf("%w: replicates must be positive, got %d", domain.ErrConfiguration, o.Replicates)
	}
	if o.Workers < Sequential {
		return fmt.Errorf("%w: invalid worker count %d", domain.ErrConfiguration, o.Workers)
	}
	switch o.Distribution {
	case DistributionDefault, DistributionPerReplicate, DistributionShared:
	default:
		return fmt.Errorf("%w: unknown distribution %d", domain.ErrConfiguration, int(o.Distribution))
	}
	return nil
}

// Engine runs bootstrap replicates of one sampling strategy. An Engine is
// not safe for concurrent calls to Run.
type Engine struct {
	kind    Kind
	sampler Sampler
	timing  domain.PhaseTiming
	logger  *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine validates exp and builds the caches of the kind strategy. Cache
// construction is recorded as the cache init phase.
func NewEngine(kind Kind, exp *experiment.Experiment, opts ...Option) (*Engine, error) {
	e := &Engine{kind: kind, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if err := exp.Check(); err != nil {
		return nil, fmt.Errorf("checking experiment: %w", err)
	}

	e.logger.Debug("initializing caches", "strategy", kind)
	start := time.Now()
	s, err := NewSampler(kind, exp)
	if err != nil {
		return nil, err
	}
	e.timing.CacheInit = time.Since(start)
	e.sampler = s
	return e, nil
}

func (e *Engine) Kind() Kind { return e.kind }

func (e *Engine) Sampler() Sampler { return e.sampler }

// Timing returns the phase timing of construction and the last run.
func (e *Engine) Timing() domain.PhaseTiming { return e.timing }

// Run draws opts.Replicates replicates and returns them in replicate order.
// A failing replicate fails the whole run; no partial results are returned.
func (e *Engine) Run(opts RunOptions) (*Results, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	e.timing.RNGInit, e.timing.PoolStartup, e.timing.Sampling = 0, 0, 0

	var (
		counts []int
		err    error
	)
	if opts.Workers == Sequential {
		counts, err = e.runSequential(opts)
	} else {
		dist := opts.Distribution
		if dist == DistributionDefault {
			dist = e.sampler.Distribution()
		}
		workers := resolveWorkers(opts.Workers)
		e.logger.Debug("dispatching replicates",
			"replicates", opts.Replicates,
			"workers", workers,
			"distribution", dist.String())

		if dist == DistributionPerReplicate {
			counts, err = e.runPerReplicate(opts, workers)
		} else {
			counts, err = e.runShared(opts, workers)
		}
	}
	if err != nil {
		return nil, err
	}

	e.LogTiming()
	return NewResults(counts), nil
}

func (e *Engine) runSequential(opts RunOptions) ([]int, error) {
	e.logger.Debug("initializing random source")
	start := time.Now()
	var src Source
	if opts.SeedSet {
		src = rand.New(rand.NewPCG(opts.Seed, 0))
	} else {
		src = entropySource()
	}
	e.timing.RNGInit = time.Since(start)

	e.logger.Debug("starting replicates", "replicates", opts.Replicates)
	start = time.Now()
	counts := make([]int, opts.Replicates)
	for i := range counts {
		n, err := safeSample(e.sampler, src)
		if err != nil {
			return nil, fmt.Errorf("replicate %d: %w", i, err)
		}
		counts[i] = n
		if opts.Progress != nil {
			opts.Progress(i+1, opts.Replicates)
		}
	}
	e.timing.Sampling = time.Since(start)
	return counts, nil
}

// runPerReplicate builds one source per replicate, seeded by the replicate
// index, so replicate i draws the same values on every run and worker count.
func (e *Engine) runPerReplicate(opts RunOptions, workers int) ([]int, error) {
	start := time.Now()
	p := startPool(workers, func(w *worker) {
		w.sampler = e.sampler
	})
	e.timing.PoolStartup = time.Since(start)

	e.logger.Debug("initializing random sources", "count", opts.Replicates)
	start = time.Now()
	sources := make([]Source, opts.Replicates)
	for i := range sources {
		sources[i] = ReplicateSource(i, opts.Seed)
	}
	e.timing.RNGInit = time.Since(start)

	start = time.Now()
	counts, err := p.run(opts.Replicates, func(w *worker, i int) (int, error) {
		return safeSample(w.sampler, sources[i])
	}, opts.Progress)
	e.timing.Sampling = time.Since(start)
	return counts, err
}

// runShared installs the sampler and a private source in every worker at
// startup. Only replicate indices cross to the workers afterwards.
func (e *Engine) runShared(opts RunOptions, workers int) ([]int, error) {
	rngInit := make([]time.Duration, workers)

	start := time.Now()
	p := startPool(workers, func(w *worker) {
		t0 := time.Now()
		if opts.SeedSet {
			w.src = rand.New(rand.NewPCG(opts.Seed, uint64(w.id)+1))
		} else {
			w.src = entropySource()
		}
		rngInit[w.id] = time.Since(t0)
		w.sampler = e.sampler
	})
	e.timing.PoolStartup = time.Since(start)
	// Pool startup includes the workers' source construction; the slowest
	// worker's share is reported on its own.
	for _, d := range rngInit {
		e.timing.RNGInit = max(e.timing.RNGInit, d)
	}

	start = time.Now()
	counts, err := p.run(opts.Replicates, func(w *worker, _ int) (int, error) {
		return safeSample(w.sampler, w.src)
	}, opts.Progress)
	e.timing.Sampling = time.Since(start)
	return counts, err
}

// LogTiming writes the phase timing of the last run at info level.
func (e *Engine) LogTiming() {
	t := e.timing
	e.logger.Info("bootstrap timing",
		"strategy", e.kind,
		"cache_init", t.CacheInit,
		"rng_init", t.RNGInit,
		"pool_startup", t.PoolStartup,
		"sampling", t.Sampling,
		"total", t.Total())
}

// ReplicateSource returns the source replicate i uses under the
// per-replicate distribution.
func ReplicateSource(i int, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(i), stream))
}

func entropySource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func resolveWorkers(requested int) int {
	if requested == AllCPUs {
		return max(runtime.NumCPU(), 1)
	}
	return requested
}

func safeSample(s Sampler, src Source) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sampler panic: %v", r)
		}
	}()
	return s.Sample(src), nil
}
