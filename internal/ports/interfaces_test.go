package ports_test

import (
	"testing"

	"github.com/emiliopalmerini/fpstudy/internal/adapters/otel"
	"github.com/emiliopalmerini/fpstudy/internal/adapters/prometheus"
	"github.com/emiliopalmerini/fpstudy/internal/adapters/turso"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
)

// Compile-time interface conformance checks.
// These verify that concrete adapters properly implement their port interfaces.

func TestRunRepositoryConformance(t *testing.T) {
	var _ ports.RunRepository = (*turso.RunRepository)(nil)
}

func TestOTELExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = (*otel.Exporter)(nil)
	var _ ports.MetricsExporter = (*otel.NoOpExporter)(nil)
}

func TestTextfileExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = (*prometheus.TextfileExporter)(nil)
}

func TestMultiExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = ports.MultiExporter(nil)
}
