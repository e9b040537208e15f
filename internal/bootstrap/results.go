package bootstrap

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// Results holds the per-replicate counts of a run in replicate order.
type Results struct {
	samples []int

	sortOnce sync.Once
	sorted   []int
}

// NewResults wraps a copy of samples.
func NewResults(samples []int) *Results {
	return &Results{samples: slices.Clone(samples)}
}

// Samples returns a copy of the replicate counts.
func (r *Results) Samples() []int {
	return slices.Clone(r.samples)
}

func (r *Results) NumSamples() int {
	return len(r.samples)
}

func (r *Results) sortedSamples() []int {
	r.sortOnce.Do(func() {
		r.sorted = slices.Clone(r.samples)
		slices.Sort(r.sorted)
	})
	return r.sorted
}

// Percentile returns the p-th percentile (0 <= p <= 100) of the replicate
// counts, interpolating linearly between the two closest ranks.
func (r *Results) Percentile(p float64) (float64, error) {
	if len(r.samples) == 0 {
		return 0, fmt.Errorf("%w: percentile of empty results", domain.ErrConfiguration)
	}
	if p < 0 || p > 100 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: percentile %v outside [0, 100]", domain.ErrConfiguration, p)
	}
	s := r.sortedSamples()
	pos := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return float64(s[lo]), nil
	}
	frac := pos - float64(lo)
	return float64(s[lo]) + (float64(s[hi])-float64(s[lo]))*frac, nil
}

// ConfidenceInterval returns the two-sided percentile interval covering
// confidencePercent of the replicate distribution. The interval is not bias
// corrected and understates coverage for skewed distributions.
func (r *Results) ConfidenceInterval(confidencePercent float64) (lower, upper float64, err error) {
	if confidencePercent <= 0 || confidencePercent > 100 || math.IsNaN(confidencePercent) {
		return 0, 0, fmt.Errorf("%w: confidence %v%% outside (0, 100]", domain.ErrConfiguration, confidencePercent)
	}
	lowerPercent := (100 - confidencePercent) / 2
	upperPercent := 100 - lowerPercent

	if lower, err = r.Percentile(lowerPercent); err != nil {
		return 0, 0, err
	}
	if upper, err = r.Percentile(upperPercent); err != nil {
		return 0, 0, err
	}
	return lower, upper, nil
}

// Mean returns the mean replicate count, or 0 for empty results.
func (r *Results) Mean() float64 {
	if len(r.samples) == 0 {
		return 0
	}
	sum := 0
	for _, v := range r.samples {
		sum += v
	}
	return float64(sum) / float64(len(r.samples))
}

// StdDev returns the sample standard deviation of the replicate counts.
func (r *Results) StdDev() float64 {
	n := len(r.samples)
	if n < 2 {
		return 0
	}
	mean := r.Mean()
	var ss float64
	for _, v := range r.samples {
		d := float64(v) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
