package experiment

import "github.com/emiliopalmerini/fpstudy/internal/domain"

// TableSummary holds the descriptive counts of one decision table.
type TableSummary struct {
	Attempts  int
	Positives int
}

// Rate returns Positives / Attempts, or 0 for an empty table.
func (s TableSummary) Rate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Positives) / float64(s.Attempts)
}

// Summary describes an experiment. FAR positives are false accepts and FRR
// positives are false rejects.
type Summary struct {
	FAR     *TableSummary
	FRR     *TableSummary
	Users   int
	Fingers int
	Samples int
	Groups  int
}

func (e *Experiment) Summary() Summary {
	s := Summary{
		Users:   len(e.Users()),
		Fingers: len(e.Fingers()),
		Samples: len(e.Samples()),
	}
	if e.far != nil {
		s.FAR = &TableSummary{Attempts: e.far.Len(), Positives: e.far.CountDecision(domain.Accept)}
	}
	if e.frr != nil {
		s.FRR = &TableSummary{Attempts: e.frr.Len(), Positives: e.frr.CountDecision(domain.Reject)}
	}
	if g, err := e.UserGroupsTable(); err == nil {
		s.Groups = len(g.Groups())
	}
	return s
}
