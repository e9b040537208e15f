package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a study and print its summary",
	Long: `Load the decision tables of a study, validate them and print the number of
users, fingers, samples and errors they contain.

Examples:
  fpstudy check --far far.csv --frr frr.csv
  fpstudy check --far far.csv.gz --groups groups.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), cmd.OutOrStdout(), checkPaths)
	},
}

var checkPaths tablePaths

func init() {
	rootCmd.AddCommand(checkCmd)
	addTableFlags(checkCmd.Flags(), &checkPaths)
}

func addTableFlags(f *pflag.FlagSet, p *tablePaths) {
	f.StringVar(&p.FAR, "far", "", "FAR decision table (.csv or .csv.gz)")
	f.StringVar(&p.FRR, "frr", "", "FRR decision table (.csv or .csv.gz)")
	f.StringVar(&p.Groups, "groups", "", "User group table")
}

func runCheck(ctx context.Context, out io.Writer, p tablePaths) error {
	exp, err := loadExperiment(ctx, p)
	if err != nil {
		return err
	}
	if err := exp.Check(); err != nil {
		return fmt.Errorf("study is invalid: %w", err)
	}
	slog.Debug("study is valid", "far", p.FAR, "frr", p.FRR)

	fmt.Fprintln(out, "Study is valid.")
	fmt.Fprintln(out)
	return printSummary(out, exp.Summary())
}
