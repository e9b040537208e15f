package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/fpstudy/internal/adapters/storage"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Infer the user group table of a study",
	Long: `Collect the group of every user from the EnrollGroup and VerifyGroup
columns of the decision tables and write it as a User,Group table.

Examples:
  fpstudy groups --far far.csv --frr frr.csv -o groups.csv
  fpstudy groups --frr frr.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGroups(cmd.Context(), cmd.OutOrStdout(), groupsPaths, groupsOutput)
	},
}

var (
	groupsPaths  tablePaths
	groupsOutput string
)

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.Flags().StringVar(&groupsPaths.FAR, "far", "", "FAR decision table")
	groupsCmd.Flags().StringVar(&groupsPaths.FRR, "frr", "", "FRR decision table")
	groupsCmd.Flags().StringVarP(&groupsOutput, "output", "o", "", "Output file (default stdout)")
}

func runGroups(ctx context.Context, out io.Writer, p tablePaths, output string) error {
	p.Groups = ""
	exp, err := loadExperiment(ctx, p)
	if err != nil {
		return err
	}
	if err := exp.Check(); err != nil {
		return fmt.Errorf("study is invalid: %w", err)
	}

	groups, err := exp.UserGroupsTable()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("the decision tables carry no group columns")
	}

	if output == "" {
		return storage.WriteUserGroups(out, groups)
	}
	if err := newTableStorage().SaveUserGroups(ctx, output, groups); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d users in %d groups to %s\n", len(groups), len(groups.Groups()), output)
	return nil
}
