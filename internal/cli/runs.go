package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
	"github.com/emiliopalmerini/fpstudy/internal/util"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved bootstrap runs",
	Long:  `List, show and delete the bootstrap run summaries stored with --save.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *AppContext) error {
			return runRunsList(ctx, cmd.OutOrStdout(), app.Runs, ports.ListRunsOptions{
				Strategy: runsStrategy,
				Limit:    runsLimit,
			})
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *AppContext) error {
			return runRunsShow(ctx, cmd.OutOrStdout(), app.Runs, args[0])
		})
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *AppContext) error {
			return runRunsDelete(ctx, cmd.OutOrStdout(), app.Runs, args[0])
		})
	},
}

// Flags
var (
	runsStrategy string
	runsLimit    int
)

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	runsListCmd.Flags().StringVarP(&runsStrategy, "strategy", "s", "", "Only list runs of this strategy")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "l", 20, "Maximum number of runs to list")
}

func withApp(cmd *cobra.Command, fn func(context.Context, *AppContext) error) error {
	ctx := cmd.Context()
	app, err := NewAppContext(ctx, databaseConfig())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}

func runRunsList(ctx context.Context, out io.Writer, repo ports.RunRepository, opts ports.ListRunsOptions) error {
	runs, err := repo.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No saved runs.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTRATEGY\tREPLICATES\tCONFIDENCE\tCI")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g%%\t[%.3f, %.3f]\n",
			r.ID, util.FormatDateTime(r.CreatedAt), r.Strategy, r.Replicates, r.Confidence, r.Lower, r.Upper)
	}
	return w.Flush()
}

func runRunsShow(ctx context.Context, out io.Writer, repo ports.RunRepository, id string) error {
	run, err := getRun(ctx, repo, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s (%s)\n", run.ID, util.FormatDateTime(run.CreatedAt))
	if run.FARPath != nil {
		fmt.Fprintf(out, "FAR table: %s\n", *run.FARPath)
	}
	if run.FRRPath != nil {
		fmt.Fprintf(out, "FRR table: %s\n", *run.FRRPath)
	}
	fmt.Fprintln(out)
	return printRun(out, run, true)
}

func runRunsDelete(ctx context.Context, out io.Writer, repo ports.RunRepository, id string) error {
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return fmt.Errorf("run %q not found", id)
		}
		return fmt.Errorf("failed to delete run: %w", err)
	}
	fmt.Fprintf(out, "Deleted run %s\n", id)
	return nil
}

func getRun(ctx context.Context, repo ports.RunRepository, id string) (*domain.BootstrapRun, error) {
	run, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("run %q not found", id)
	}
	return run, nil
}
