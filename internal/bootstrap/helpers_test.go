package bootstrap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/experiment"
	"github.com/emiliopalmerini/fpstudy/internal/simulate"
)

// scriptedSource replays fixed draws and fails the test when it runs out or
// a draw is out of range.
type scriptedSource struct {
	t     *testing.T
	draws []int
	next  int
}

func script(t *testing.T, draws ...int) *scriptedSource {
	return &scriptedSource{t: t, draws: draws}
}

func (s *scriptedSource) IntN(n int) int {
	s.t.Helper()
	require.Less(s.t, s.next, len(s.draws), "script exhausted")
	v := s.draws[s.next]
	require.Less(s.t, v, n, "draw %d out of range", s.next)
	s.next++
	return v
}

func (s *scriptedSource) consumed() int { return s.next }

// twoUserFAR has both cross-user directions for one finger and three
// samples. The only false accept is template 10001, verify 10002, sample 2,
// which is row 2.
func twoUserFAR() *domain.DecisionTable {
	var rows []domain.DecisionRow
	for _, pair := range [][2]int{{10001, 10002}, {10002, 10001}} {
		for s := range 3 {
			d := domain.Reject
			if pair[0] == 10001 && s == 2 {
				d = domain.Accept
			}
			rows = append(rows, domain.DecisionRow{
				EnrollUser:   pair[0],
				EnrollFinger: 1,
				VerifyUser:   pair[1],
				VerifyFinger: 1,
				VerifySample: s,
				Decision:     d,
			})
		}
	}
	return domain.NewDecisionTable(nil, rows)
}

// twoUserFRR has users 10001 and 10002, fingers 1 and 2, samples 25 and 26.
// The only false reject is user 10001, finger 1, sample 26.
func twoUserFRR() *domain.DecisionTable {
	var rows []domain.DecisionRow
	for _, u := range []int{10001, 10002} {
		for _, f := range []int{1, 2} {
			for _, s := range []int{25, 26} {
				d := domain.Accept
				if u == 10001 && f == 1 && s == 26 {
					d = domain.Reject
				}
				rows = append(rows, domain.DecisionRow{
					EnrollUser:   u,
					EnrollFinger: f,
					VerifyUser:   u,
					VerifyFinger: f,
					VerifySample: s,
					Decision:     d,
				})
			}
		}
	}
	return domain.NewDecisionTable(nil, rows)
}

func farExperiment(t *testing.T) *experiment.Experiment {
	t.Helper()
	exp := experiment.New()
	exp.AddFAR(twoUserFAR())
	return exp
}

func frrExperiment(t *testing.T) *experiment.Experiment {
	t.Helper()
	exp := experiment.New()
	exp.AddFRR(twoUserFRR())
	return exp
}

func simulatedExperiment(t testing.TB) *experiment.Experiment {
	t.Helper()
	p := simulate.Params{
		Users:       6,
		Fingers:     2,
		Samples:     4,
		FirstUserID: 10000,
		FARate:      0.05,
		FRRate:      0.1,
		Seed:        7,
	}
	far, err := simulate.FAR(p)
	require.NoError(t, err)
	frr, err := simulate.FRR(p)
	require.NoError(t, err)

	exp := experiment.New()
	exp.AddFAR(far)
	exp.AddFRR(frr)
	return exp
}

func newTestEngine(t testing.TB, kind Kind, exp *experiment.Experiment) *Engine {
	t.Helper()
	e, err := NewEngine(kind, exp)
	require.NoError(t, err)
	return e
}

type panicSampler struct{ after int }

func (s *panicSampler) Sample(src Source) int {
	if src.IntN(10) >= s.after {
		panic(fmt.Sprintf("boom after %d", s.after))
	}
	return 1
}

func (s *panicSampler) Distribution() Distribution { return DistributionPerReplicate }
