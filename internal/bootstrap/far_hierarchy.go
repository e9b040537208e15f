package bootstrap

import (
	"github.com/emiliopalmerini/fpstudy/internal/experiment"
	"github.com/emiliopalmerini/fpstudy/internal/index"
)

// farHierarchy resamples every level of the impostor study. Only the
// indices over the false accepts and the three axes are kept, since this
// cache is handed to every worker.
type farHierarchy struct {
	set     *index.Set[index.FARKey]
	trie    *index.Trie
	users   []int
	fingers []int
	samples []int
}

func newFARHierarchy(exp *experiment.Experiment) (*farHierarchy, error) {
	if err := requireTable(FARHierarchy, "FAR", exp.HasFAR()); err != nil {
		return nil, err
	}
	fa := exp.FATable()
	return &farHierarchy{
		set:     index.NewSet(fa, index.FARKeyOf),
		trie:    index.NewTrie(fa, index.FARKeyOf),
		users:   exp.Users(),
		fingers: exp.Fingers(),
		samples: exp.Samples(),
	}, nil
}

// Sample draws verify users, then for each a set of template users, verify
// fingers, template fingers and verify samples, each level with replacement
// and as many draws as its axis has values. A branch is dropped as soon as
// the trie shows no false accept below it.
//
// Draws where the template is the verify finger itself are not excluded.
// They are never present in the FAR table and so never add to the count.
func (s *farHierarchy) Sample(src Source) int {
	users, fingers, samples := s.users, s.fingers, s.samples
	nu, nf, ns := len(users), len(fingers), len(samples)
	root := s.trie.Root()

	sum := 0
	for range nu {
		v := users[src.IntN(nu)]
		vn := root.Child(v)
		if vn == nil {
			continue
		}
		for range nu {
			t := users[src.IntN(nu)]
			tn := vn.Child(t)
			if tn == nil {
				continue
			}
			for range nf {
				fv := fingers[src.IntN(nf)]
				fvn := tn.Child(fv)
				if fvn == nil {
					continue
				}
				for range nf {
					ft := fingers[src.IntN(nf)]
					if fvn.Child(ft) == nil {
						continue
					}
					for range ns {
						a := samples[src.IntN(ns)]
						key := index.FARKey{
							VerifyUser:   v,
							EnrollUser:   t,
							VerifyFinger: fv,
							EnrollFinger: ft,
							VerifySample: a,
						}
						if s.set.Contains(key) {
							sum++
						}
					}
				}
			}
		}
	}
	return sum
}

func (s *farHierarchy) Distribution() Distribution {
	return DistributionShared
}
