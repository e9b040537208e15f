package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/emiliopalmerini/fpstudy/internal/experiment"
	"github.com/emiliopalmerini/fpstudy/internal/util"
)

// tablePaths locates the tables of one experiment. Empty paths are skipped.
type tablePaths struct {
	FAR    string
	FRR    string
	Groups string
}

func (p tablePaths) empty() bool {
	return p.FAR == "" && p.FRR == ""
}

// loadExperiment reads the tables named by p into an experiment. It does not
// check the experiment.
func loadExperiment(ctx context.Context, p tablePaths) (*experiment.Experiment, error) {
	if p.empty() {
		return nil, fmt.Errorf("at least one of --far or --frr is required")
	}
	store := newTableStorage()
	exp := experiment.New()

	if p.FAR != "" {
		t, err := store.LoadDecisionTable(ctx, p.FAR)
		if err != nil {
			return nil, fmt.Errorf("loading FAR table: %w", err)
		}
		exp.AddFAR(t)
	}
	if p.FRR != "" {
		t, err := store.LoadDecisionTable(ctx, p.FRR)
		if err != nil {
			return nil, fmt.Errorf("loading FRR table: %w", err)
		}
		exp.AddFRR(t)
	}
	if p.Groups != "" {
		g, err := store.LoadUserGroups(ctx, p.Groups)
		if err != nil {
			return nil, fmt.Errorf("loading user groups: %w", err)
		}
		exp.AddGroups(g)
	}
	return exp, nil
}

func printSummary(out io.Writer, s experiment.Summary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Users:\t%d\n", s.Users)
	fmt.Fprintf(w, "Fingers:\t%d\n", s.Fingers)
	fmt.Fprintf(w, "Samples:\t%d\n", s.Samples)
	if s.Groups > 0 {
		fmt.Fprintf(w, "Groups:\t%d\n", s.Groups)
	}
	if s.FAR != nil {
		fmt.Fprintf(w, "FAR attempts:\t%s\n", util.FormatNumber(int64(s.FAR.Attempts)))
		fmt.Fprintf(w, "False accepts:\t%s\n", util.FormatNumber(int64(s.FAR.Positives)))
		fmt.Fprintf(w, "FAR:\t%s\n", util.FormatRate(s.FAR.Rate()))
	}
	if s.FRR != nil {
		fmt.Fprintf(w, "FRR attempts:\t%s\n", util.FormatNumber(int64(s.FRR.Attempts)))
		fmt.Fprintf(w, "False rejects:\t%s\n", util.FormatNumber(int64(s.FRR.Positives)))
		fmt.Fprintf(w, "FRR:\t%s\n", util.FormatRate(s.FRR.Rate()))
	}
	return w.Flush()
}
