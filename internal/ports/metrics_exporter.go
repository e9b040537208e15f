package ports

import (
	"context"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// MetricsExporter exports run metrics to an external observability system.
type MetricsExporter interface {
	// ExportRun exports the metrics of a completed bootstrap run.
	ExportRun(ctx context.Context, run *domain.BootstrapRun) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
