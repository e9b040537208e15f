package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emiliopalmerini/fpstudy/internal/bootstrap"
	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/infrastructure/config"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
	"github.com/emiliopalmerini/fpstudy/internal/util"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Estimate a confidence interval for FAR or FRR",
	Long: `Run a bootstrap of a study's false accepts or false rejects and print the
confidence interval of the count and the rate.

Strategies:
  far-flat        resample FAR attempts independently
  far-hierarchy   resample verify users, template users, fingers and samples
  frr-hierarchy   resample users, fingers and samples

A run file can hold every option; flags given on the command line override it.

Examples:
  fpstudy bootstrap --far far.csv --strategy far-hierarchy -n 5000 --confidence 99
  fpstudy bootstrap --frr frr.csv --strategy frr-hierarchy --seed 42 --save
  fpstudy bootstrap --config run.yaml -j 4`,
	Args: cobra.NoArgs,
	RunE: runBootstrapCmd,
}

// Flags
var (
	bsConfig       string
	bsPaths        tablePaths
	bsStrategy     string
	bsReplicates   int
	bsWorkers      int
	bsSequential   bool
	bsDistribution string
	bsConfidence   float64
	bsSeed         uint64
	bsSave         bool
	bsVerbose      bool
	bsProgress     bool
)

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	addBootstrapFlags(bootstrapCmd.Flags())
}

func addBootstrapFlags(f *pflag.FlagSet) {
	f.StringVar(&bsConfig, "config", "", "YAML run file")
	addTableFlags(f, &bsPaths)
	f.StringVarP(&bsStrategy, "strategy", "s", "", "Sampling strategy: far-flat, far-hierarchy, frr-hierarchy")
	f.IntVarP(&bsReplicates, "replicates", "n", config.DefaultReplicates, "Number of bootstrap replicates")
	f.IntVarP(&bsWorkers, "workers", "j", bootstrap.AllCPUs, "Worker goroutines (0 = one per CPU)")
	f.BoolVar(&bsSequential, "sequential", false, "Run every replicate in one goroutine")
	f.StringVar(&bsDistribution, "distribution", "", "Worker data distribution: per-replicate, shared (default per strategy)")
	f.Float64Var(&bsConfidence, "confidence", config.DefaultConfidence, "Confidence level in percent")
	f.Uint64Var(&bsSeed, "seed", 0, "Random seed (default from entropy)")
	f.BoolVar(&bsSave, "save", false, "Store the run summary in the database")
	f.BoolVarP(&bsVerbose, "verbose", "v", false, "Print the timing of every phase")
	f.BoolVar(&bsProgress, "progress", false, "Report progress on stderr")
}

func runBootstrapCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rf, err := resolveRunFile(cmd.Flags())
	if err != nil {
		return err
	}

	var progress io.Writer
	if bsProgress {
		progress = cmd.ErrOrStderr()
	}
	run, err := runBootstrap(ctx, rf, progress)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printRun(out, run, bsVerbose); err != nil {
		return err
	}

	if rf.Save {
		app, err := NewAppContext(ctx, databaseConfig())
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := saveRun(ctx, app.Runs, run); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved run %s\n", run.ID)
	}

	exportRun(ctx, newMetricsExporter(ctx), run)
	return nil
}

// resolveRunFile builds the run description from the --config file, if any,
// and the flags. Without a run file every flag applies; with one only flags
// set on the command line override it.
func resolveRunFile(flags *pflag.FlagSet) (*config.RunFile, error) {
	rf := &config.RunFile{
		Replicates: config.DefaultReplicates,
		Confidence: config.DefaultConfidence,
	}
	changed := func(string) bool { return true }
	if bsConfig != "" {
		loaded, err := config.LoadRunFile(bsConfig)
		if err != nil {
			return nil, err
		}
		rf = loaded
		changed = flags.Changed
	}

	if changed("far") {
		rf.FAR = bsPaths.FAR
	}
	if changed("frr") {
		rf.FRR = bsPaths.FRR
	}
	if changed("groups") {
		rf.Groups = bsPaths.Groups
	}
	if changed("strategy") {
		rf.Strategy = bsStrategy
	}
	if changed("replicates") {
		rf.Replicates = bsReplicates
	}
	if changed("workers") {
		rf.Workers = bsWorkers
	}
	if bsSequential {
		rf.Workers = bootstrap.Sequential
	}
	if changed("distribution") {
		rf.Distribution = bsDistribution
	}
	if changed("confidence") {
		rf.Confidence = bsConfidence
	}
	if flags.Changed("seed") {
		seed := bsSeed
		rf.Seed = &seed
	}
	if changed("save") && bsSave {
		rf.Save = true
	}

	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return rf, nil
}

// runBootstrap loads the study named by rf, runs the bootstrap and returns
// its summary. Progress is reported on progress when it is not nil.
func runBootstrap(ctx context.Context, rf *config.RunFile, progress io.Writer) (*domain.BootstrapRun, error) {
	kind, err := bootstrap.ParseKind(rf.Strategy)
	if err != nil {
		return nil, err
	}
	dist, err := bootstrap.ParseDistribution(rf.Distribution)
	if err != nil {
		return nil, err
	}

	exp, err := loadExperiment(ctx, tablePaths{FAR: rf.FAR, FRR: rf.FRR, Groups: rf.Groups})
	if err != nil {
		return nil, err
	}

	engine, err := bootstrap.NewEngine(kind, exp, bootstrap.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}

	opts := bootstrap.RunOptions{
		Replicates:   rf.Replicates,
		Workers:      rf.Workers,
		Distribution: dist,
	}
	if rf.Seed != nil {
		opts.Seed = *rf.Seed
		opts.SeedSet = true
	}
	if progress != nil {
		opts.Progress = progressReporter(progress)
	}

	slog.Info("running bootstrap",
		"strategy", kind,
		"replicates", rf.Replicates,
		"workers", rf.Workers)

	res, err := engine.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}
	lower, upper, err := res.ConfidenceInterval(rf.Confidence)
	if err != nil {
		return nil, err
	}

	run := &domain.BootstrapRun{
		ID:           uuid.New().String(),
		Strategy:     string(kind),
		Distribution: distributionName(engine, opts),
		Workers:      rf.Workers,
		Replicates:   rf.Replicates,
		Seed:         rf.Seed,
		Confidence:   rf.Confidence,
		Lower:        lower,
		Upper:        upper,
		Mean:         res.Mean(),
		StdDev:       res.StdDev(),
		Samples:      res.Samples(),
		Timing:       engine.Timing(),
		FARPath:      optionalPath(rf.FAR),
		FRRPath:      optionalPath(rf.FRR),
		CreatedAt:    time.Now().UTC(),
	}

	summary := exp.Summary()
	table := summary.FRR
	if kind.CountsFalseAccepts() {
		table = summary.FAR
	}
	if table != nil {
		run.Attempts = table.Attempts
		run.Positives = table.Positives
	}
	return run, nil
}

func distributionName(e *bootstrap.Engine, opts bootstrap.RunOptions) string {
	if opts.Workers == bootstrap.Sequential {
		return "sequential"
	}
	if opts.Distribution == bootstrap.DistributionDefault {
		return e.Sampler().Distribution().String()
	}
	return opts.Distribution.String()
}

func optionalPath(p string) *string {
	if p == "" {
		return nil
	}
	return &p
}

// progressReporter writes a progress line about every percent of the run.
func progressReporter(w io.Writer) func(done, total int) {
	return func(done, total int) {
		step := max(total/100, 1)
		if done%step != 0 && done != total {
			return
		}
		fmt.Fprintf(w, "\rReplicates: %d/%d", done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

func printRun(out io.Writer, run *domain.BootstrapRun, verbose bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Strategy:\t%s\n", run.Strategy)
	fmt.Fprintf(w, "Replicates:\t%d (%s, %s)\n", run.Replicates, workersLabel(run.Workers), run.Distribution)
	if run.Seed != nil {
		fmt.Fprintf(w, "Seed:\t%d\n", *run.Seed)
	}
	fmt.Fprintf(w, "Observed:\t%d of %d attempts, rate %s\n",
		run.Positives, run.Attempts, util.FormatRate(run.Rate(float64(run.Positives))))
	fmt.Fprintf(w, "%g%% CI (count):\t[%.3f, %.3f]\n", run.Confidence, run.Lower, run.Upper)
	fmt.Fprintf(w, "%g%% CI (rate):\t[%s, %s]\n",
		run.Confidence, util.FormatRate(run.Rate(run.Lower)), util.FormatRate(run.Rate(run.Upper)))
	fmt.Fprintf(w, "Mean:\t%.3f\n", run.Mean)
	fmt.Fprintf(w, "Std dev:\t%.3f\n", run.StdDev)

	if verbose {
		for _, p := range run.Timing.Phases() {
			fmt.Fprintf(w, "  %s:\t%s\n", p.Name, util.FormatDuration(p.Duration))
		}
	}
	fmt.Fprintf(w, "Time:\t%s\n", util.FormatDuration(run.Timing.Total()))
	return w.Flush()
}

func workersLabel(workers int) string {
	switch workers {
	case bootstrap.Sequential:
		return "sequential"
	case bootstrap.AllCPUs:
		return "all CPUs"
	case 1:
		return "1 worker"
	default:
		return fmt.Sprintf("%d workers", workers)
	}
}

func saveRun(ctx context.Context, repo ports.RunRepository, run *domain.BootstrapRun) error {
	if err := repo.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	slog.Debug("saved run", "id", run.ID)
	return nil
}

// exportRun publishes run to exp and closes it. Export failures never fail
// the command.
func exportRun(ctx context.Context, exp ports.MetricsExporter, run *domain.BootstrapRun) {
	if err := exp.ExportRun(ctx, run); err != nil {
		slog.Warn("failed to export run metrics", "error", err)
	}
	if err := exp.Close(ctx); err != nil {
		slog.Warn("failed to flush metrics", "error", err)
	}
}
