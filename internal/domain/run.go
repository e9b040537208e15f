package domain

import "time"

// PhaseTiming records how long each phase of a bootstrap run took.
type PhaseTiming struct {
	CacheInit   time.Duration
	RNGInit     time.Duration
	PoolStartup time.Duration
	Sampling    time.Duration
}

func (t PhaseTiming) Total() time.Duration {
	return t.CacheInit + t.RNGInit + t.PoolStartup + t.Sampling
}

// Phases returns the timing as ordered (name, duration) pairs.
func (t PhaseTiming) Phases() []Phase {
	return []Phase{
		{Name: "cache_init", Duration: t.CacheInit},
		{Name: "rng_init", Duration: t.RNGInit},
		{Name: "pool_startup", Duration: t.PoolStartup},
		{Name: "sampling", Duration: t.Sampling},
	}
}

type Phase struct {
	Name     string
	Duration time.Duration
}

// BootstrapRun is the stored summary of one bootstrap run.
type BootstrapRun struct {
	ID           string
	Strategy     string
	Distribution string
	Workers      int
	Replicates   int
	Seed         *uint64
	Confidence   float64
	Lower        float64
	Upper        float64
	Mean         float64
	StdDev       float64
	Attempts     int
	Positives    int
	Samples      []int
	Timing       PhaseTiming
	FARPath      *string
	FRRPath      *string
	CreatedAt    time.Time
}

// Rate converts a replicate count into a rate over the run's attempts.
func (r *BootstrapRun) Rate(count float64) float64 {
	if r.Attempts == 0 {
		return 0
	}
	return count / float64(r.Attempts)
}
