package bootstrap

import (
	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/experiment"
)

// farFlat resamples the FAR attempts as one flat population. It ignores the
// resampling units of the study and serves as a baseline for the
// hierarchical strategies.
type farFlat struct {
	outcomes []bool
}

func newFARFlat(exp *experiment.Experiment) (*farFlat, error) {
	if err := requireTable(FARFlat, "FAR", exp.HasFAR()); err != nil {
		return nil, err
	}
	rows := exp.FAR().Rows()
	outcomes := make([]bool, len(rows))
	for i, r := range rows {
		outcomes[i] = r.Decision == domain.Accept
	}
	return &farFlat{outcomes: outcomes}, nil
}

func (s *farFlat) Sample(src Source) int {
	n := len(s.outcomes)
	sum := 0
	for range n {
		if s.outcomes[src.IntN(n)] {
			sum++
		}
	}
	return sum
}

func (s *farFlat) Distribution() Distribution {
	return DistributionShared
}
