package ports

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// MultiExporter fans a run out to every exporter and joins their errors.
type MultiExporter []MetricsExporter

func (m MultiExporter) ExportRun(ctx context.Context, run *domain.BootstrapRun) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.ExportRun(ctx, run))
	}
	return errors.Join(errs...)
}

func (m MultiExporter) Close(ctx context.Context) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.Close(ctx))
	}
	return errors.Join(errs...)
}
