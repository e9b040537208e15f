package prometheus

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

const namespace = "fpstudy"

var runLabels = []string{"strategy", "distribution"}

// TextfileExporter writes the latest run of every strategy to a file in the
// Prometheus exposition format, for node_exporter's textfile collector.
type TextfileExporter struct {
	path     string
	registry *prometheus.Registry

	phaseSeconds *prometheus.GaugeVec
	ciBound      *prometheus.GaugeVec
	mean         *prometheus.GaugeVec
	stddev       *prometheus.GaugeVec
	replicates   *prometheus.GaugeVec
	positives    *prometheus.GaugeVec
	attempts     *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
}

// NewTextfileExporter creates an exporter writing to path. The file is
// replaced atomically on every export.
func NewTextfileExporter(path string) (*TextfileExporter, error) {
	if path == "" {
		return nil, fmt.Errorf("prometheus textfile path not configured")
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	gauge := func(name, help string, extra ...string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      name,
			Help:      help,
		}, append(append([]string{}, runLabels...), extra...))
	}

	return &TextfileExporter{
		path:         path,
		registry:     reg,
		phaseSeconds: gauge("phase_seconds", "Duration of each phase of the last run.", "phase"),
		ciBound:      gauge("ci_bound", "Confidence interval bounds of the last run, in counts.", "bound", "confidence"),
		mean:         gauge("mean", "Mean replicate count of the last run."),
		stddev:       gauge("stddev", "Standard deviation of the replicate counts of the last run."),
		replicates:   gauge("replicates", "Number of replicates in the last run."),
		positives:    gauge("positives", "False accepts or false rejects observed in the study."),
		attempts:     gauge("attempts", "Attempts in the study table of the last run."),
		lastRun:      gauge("last_run_timestamp_seconds", "Creation time of the last run."),
	}, nil
}

func (e *TextfileExporter) ExportRun(ctx context.Context, run *domain.BootstrapRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	labels := prometheus.Labels{"strategy": run.Strategy, "distribution": run.Distribution}
	with := func(extra prometheus.Labels) prometheus.Labels {
		l := prometheus.Labels{}
		for k, v := range labels {
			l[k] = v
		}
		for k, v := range extra {
			l[k] = v
		}
		return l
	}

	for _, p := range run.Timing.Phases() {
		e.phaseSeconds.With(with(prometheus.Labels{"phase": p.Name})).Set(p.Duration.Seconds())
	}
	confidence := fmt.Sprintf("%g", run.Confidence)
	e.ciBound.With(with(prometheus.Labels{"bound": "lower", "confidence": confidence})).Set(run.Lower)
	e.ciBound.With(with(prometheus.Labels{"bound": "upper", "confidence": confidence})).Set(run.Upper)
	e.mean.With(labels).Set(run.Mean)
	e.stddev.With(labels).Set(run.StdDev)
	e.replicates.With(labels).Set(float64(run.Replicates))
	e.positives.With(labels).Set(float64(run.Positives))
	e.attempts.With(labels).Set(float64(run.Attempts))
	if !run.CreatedAt.IsZero() {
		e.lastRun.With(labels).Set(float64(run.CreatedAt.Unix()))
	}

	if err := prometheus.WriteToTextfile(e.path, e.registry); err != nil {
		return fmt.Errorf("writing prometheus textfile: %w", err)
	}
	return nil
}

func (e *TextfileExporter) Close(ctx context.Context) error {
	return nil
}
