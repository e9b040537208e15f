// Package bootstrap estimates the sampling distribution of false-accept and
// false-reject counts by resampling a fingerprint study with replacement.
//
// A Sampler draws one bootstrap replicate from caches it builds once from an
// Experiment. An Engine runs many replicates, sequentially or on a pool of
// worker goroutines, and collects them into Results.
package bootstrap

import (
	"fmt"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/experiment"
)

// Source is the random source a Sampler draws indices from. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// Sampler draws independent bootstrap replicates. Sample must only read the
// sampler's caches so that one Sampler can serve every worker of a run.
type Sampler interface {
	// Sample draws one replicate using src and returns the number of
	// positive outcomes (false accepts or false rejects) it contains.
	Sample(src Source) int
	// Distribution is the data-distribution strategy the sampler prefers.
	Distribution() Distribution
}

// Kind selects one of the sampling strategies.
type Kind string

const (
	// FARFlat resamples individual FAR attempts, ignoring the study hierarchy.
	FARFlat Kind = "far-flat"
	// FARHierarchy resamples verify users, template users, verify fingers,
	// template fingers and verify samples.
	FARHierarchy Kind = "far-hierarchy"
	// FRRHierarchy resamples users, fingers and verify samples.
	FRRHierarchy Kind = "frr-hierarchy"
)

// Kinds lists every strategy.
var Kinds = []Kind{FARFlat, FARHierarchy, FRRHierarchy}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown bootstrap strategy %q", domain.ErrConfiguration, s)
}

// CountsFalseAccepts reports whether the strategy counts false accepts
// rather than false rejects.
func (k Kind) CountsFalseAccepts() bool {
	return k == FARFlat || k == FARHierarchy
}

// NewSampler builds the caches for kind from exp. It does not validate exp;
// use NewEngine for a checked construction.
func NewSampler(kind Kind, exp *experiment.Experiment) (Sampler, error) {
	switch kind {
	case FARFlat:
		return newFARFlat(exp)
	case FARHierarchy:
		return newFARHierarchy(exp)
	case FRRHierarchy:
		return newFRRHierarchy(exp)
	default:
		return nil, fmt.Errorf("%w: unknown bootstrap strategy %q", domain.ErrConfiguration, kind)
	}
}

// Distribution selects how a parallel run hands caches and random sources to
// its workers.
type Distribution int

const (
	// DistributionDefault defers to the sampler's preference.
	DistributionDefault Distribution = iota
	// DistributionPerReplicate seeds one source per replicate from the
	// replicate index before dispatch. Runs are reproducible.
	DistributionPerReplicate
	// DistributionShared installs the sampler in each worker at startup and
	// gives every worker its own source. Only replicate indices are sent to
	// workers, which favors throughput over reproducibility.
	DistributionShared
)

func (d Distribution) String() string {
	switch d {
	case DistributionDefault:
		return "default"
	case DistributionPerReplicate:
		return "per-replicate"
	case DistributionShared:
		return "shared"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

func ParseDistribution(s string) (Distribution, error) {
	switch s {
	case "", "default":
		return DistributionDefault, nil
	case "per-replicate":
		return DistributionPerReplicate, nil
	case "shared":
		return DistributionShared, nil
	default:
		return DistributionDefault, fmt.Errorf("%w: unknown distribution %q", domain.ErrConfiguration, s)
	}
}

func requireTable(kind Kind, name string, present bool) error {
	if !present {
		return fmt.Errorf("%w: strategy %s requires a %s table", domain.ErrConfiguration, kind, name)
	}
	return nil
}
