package bootstrap

import (
	"github.com/emiliopalmerini/fpstudy/internal/experiment"
	"github.com/emiliopalmerini/fpstudy/internal/index"
)

// frrHierarchy resamples users, fingers and verify samples of the genuine
// study and counts the false rejects drawn.
type frrHierarchy struct {
	set     *index.Set[index.FRRKey]
	trie    *index.Trie
	users   []int
	fingers []int
	samples []int
}

func newFRRHierarchy(exp *experiment.Experiment) (*frrHierarchy, error) {
	if err := requireTable(FRRHierarchy, "FRR", exp.HasFRR()); err != nil {
		return nil, err
	}
	fr := exp.FRTable()
	return &frrHierarchy{
		set:     index.NewSet(fr, index.FRRKeyOf),
		trie:    index.NewTrie(fr, index.FRRKeyOf),
		users:   exp.Users(),
		fingers: exp.Fingers(),
		samples: exp.Samples(),
	}, nil
}

func (s *frrHierarchy) Sample(src Source) int {
	users, fingers, samples := s.users, s.fingers, s.samples
	nu, nf, ns := len(users), len(fingers), len(samples)
	root := s.trie.Root()

	sum := 0
	for range nu {
		u := users[src.IntN(nu)]
		un := root.Child(u)
		if un == nil {
			continue
		}
		for range nf {
			f := fingers[src.IntN(nf)]
			if un.Child(f) == nil {
				continue
			}
			for range ns {
				key := index.FRRKey{User: u, Finger: f, Sample: samples[src.IntN(ns)]}
				if s.set.Contains(key) {
					sum++
				}
			}
		}
	}
	return sum
}

func (s *frrHierarchy) Distribution() Distribution {
	return DistributionShared
}
