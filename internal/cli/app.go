package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emiliopalmerini/fpstudy/internal/adapters/otel"
	"github.com/emiliopalmerini/fpstudy/internal/adapters/prometheus"
	"github.com/emiliopalmerini/fpstudy/internal/adapters/storage"
	"github.com/emiliopalmerini/fpstudy/internal/adapters/turso"
	"github.com/emiliopalmerini/fpstudy/internal/infrastructure/config"
	"github.com/emiliopalmerini/fpstudy/internal/migrate"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
)

// AppContext holds the shared dependencies of commands that touch the run
// database.
type AppContext struct {
	DB   *turso.DB
	Runs ports.RunRepository
}

// NewAppContext opens the run database and brings its schema up to date.
func NewAppContext(ctx context.Context, cfg config.Database) (*AppContext, error) {
	db, err := turso.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &AppContext{
		DB:   db,
		Runs: turso.NewRunRepository(db.DB),
	}, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func databaseConfig() config.Database {
	if settings == nil {
		return config.Database{}
	}
	return settings.Database
}

// newTableStorage resolves table paths as given on the command line.
func newTableStorage() *storage.TableStorage {
	return storage.NewTableStorage("")
}

// newMetricsExporter combines every configured exporter. Exporters that fail
// to start are logged and skipped.
func newMetricsExporter(ctx context.Context) ports.MetricsExporter {
	var exporters ports.MultiExporter

	if cfg, err := otel.LoadConfig(); err != nil {
		slog.Warn("ignoring otel configuration", "error", err)
	} else if cfg.Enabled {
		exp, err := otel.NewExporter(ctx, cfg)
		if err != nil {
			slog.Warn("otel exporter unavailable", "error", err)
		} else {
			exporters = append(exporters, exp)
		}
	}

	if cfg, err := prometheus.LoadConfig(); err != nil {
		slog.Warn("ignoring prometheus configuration", "error", err)
	} else if cfg.Enabled {
		exp, err := prometheus.NewTextfileExporter(cfg.TextfilePath)
		if err != nil {
			slog.Warn("prometheus textfile exporter unavailable", "error", err)
		} else {
			exporters = append(exporters, exp)
		}
	}

	if len(exporters) == 0 {
		return otel.NewNoOpExporter()
	}
	return exporters
}
