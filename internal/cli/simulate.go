package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write synthetic decision tables",
	Long: `Generate a synthetic study with known error rates and write its FAR and FRR
decision tables. Tables ending in .gz are compressed.

Examples:
  fpstudy simulate --far-out far.csv --frr-out frr.csv
  fpstudy simulate --users 20 --fingers 2 --samples 10 --groups A,B --seed 7 --far-out far.csv.gz`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(cmd.Context(), cmd.OutOrStdout(), simParams, simFAROut, simFRROut)
	},
}

var (
	simParams = simulate.DefaultParams()
	simFAROut string
	simFRROut string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.IntVar(&simParams.Users, "users", simParams.Users, "Number of users")
	f.IntVar(&simParams.Fingers, "fingers", simParams.Fingers, "Fingers enrolled per user")
	f.IntVar(&simParams.Samples, "samples", simParams.Samples, "Verify samples per finger")
	f.IntVar(&simParams.FirstUserID, "first-user", simParams.FirstUserID, "ID of the first user")
	f.Float64Var(&simParams.FARate, "far-rate", simParams.FARate, "Probability that an impostor attempt is accepted")
	f.Float64Var(&simParams.FRRate, "frr-rate", simParams.FRRate, "Probability that a genuine attempt is rejected")
	f.StringSliceVar(&simParams.Groups, "groups", nil, "Groups assigned to users round robin (e.g. A,B)")
	f.Uint64Var(&simParams.Seed, "seed", 1, "Random seed")
	f.StringVar(&simFAROut, "far-out", "", "FAR table output path")
	f.StringVar(&simFRROut, "frr-out", "", "FRR table output path")
}

func runSimulate(ctx context.Context, out io.Writer, p simulate.Params, farOut, frrOut string) error {
	if farOut == "" && frrOut == "" {
		return fmt.Errorf("at least one of --far-out or --frr-out is required")
	}
	store := newTableStorage()

	if farOut != "" {
		t, err := simulate.FAR(p)
		if err != nil {
			return err
		}
		if err := store.SaveDecisionTable(ctx, farOut, t); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d FAR attempts (%d false accepts) to %s\n", t.Len(), t.CountDecision(domain.Accept), farOut)
	}
	if frrOut != "" {
		t, err := simulate.FRR(p)
		if err != nil {
			return err
		}
		if err := store.SaveDecisionTable(ctx, frrOut, t); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d FRR attempts (%d false rejects) to %s\n", t.Len(), t.CountDecision(domain.Reject), frrOut)
	}
	return nil
}
