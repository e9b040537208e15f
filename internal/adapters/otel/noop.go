package otel

import (
	"context"
	"log/slog"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// NoOpExporter stands in when no metrics backend is configured. Runs are
// only logged at debug level.
type NoOpExporter struct{}

func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportRun(ctx context.Context, run *domain.BootstrapRun) error {
	slog.DebugContext(ctx, "metrics export disabled", "run", run.ID, "strategy", run.Strategy)
	return nil
}

func (e *NoOpExporter) Close(context.Context) error { return nil }
