package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/fpstudy/internal/infrastructure/config"
	"github.com/emiliopalmerini/fpstudy/internal/util"
)

var rootCmd = &cobra.Command{
	Use:   "fpstudy",
	Short: "Bootstrap confidence intervals for fingerprint study error rates",
	Long: `fpstudy estimates confidence intervals for the false accept and false
reject rates of a fingerprint verification study.

It reads the FAR and FRR decision tables of a study, validates them, and runs a
hierarchical bootstrap that resamples users, fingers and samples with
replacement.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Flags
var (
	logLevel  string
	logFormat string
)

// settings is loaded once per invocation by setup.
var settings *config.Settings

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from FPSTUDY_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json (default from FPSTUDY_LOG_FORMAT)")

	rootCmd.AddCommand(migrateCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		s.Log.Level = logLevel
	}
	if logFormat != "" {
		s.Log.Format = logFormat
	}

	logger, err := util.NewLogger(s.Log.Level, s.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	settings = s
	return nil
}
