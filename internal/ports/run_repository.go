package ports

import (
	"context"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// RunRepository stores bootstrap run summaries.
type RunRepository interface {
	Create(ctx context.Context, run *domain.BootstrapRun) error
	// GetByID returns nil without error when no run has the ID.
	GetByID(ctx context.Context, id string) (*domain.BootstrapRun, error)
	// List returns the most recent runs first.
	List(ctx context.Context, opts ListRunsOptions) ([]*domain.BootstrapRun, error)
	Delete(ctx context.Context, id string) error
}

type ListRunsOptions struct {
	Strategy string
	Limit    int
}
