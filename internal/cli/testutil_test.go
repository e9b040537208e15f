package cli

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/adapters/storage"
	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/infrastructure/config"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
	"github.com/emiliopalmerini/fpstudy/internal/simulate"
)

// testParams is a study small enough to bootstrap in milliseconds.
func testParams() simulate.Params {
	return simulate.Params{
		Users:       6,
		Fingers:     2,
		Samples:     4,
		FirstUserID: 10000,
		FARate:      0.05,
		FRRate:      0.1,
		Groups:      []string{"A", "B"},
		Seed:        3,
	}
}

// writeStudy writes the FAR and FRR tables of p into a temp dir.
func writeStudy(t *testing.T, p simulate.Params) tablePaths {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewTableStorage("")
	ctx := context.Background()

	far, err := simulate.FAR(p)
	require.NoError(t, err)
	frr, err := simulate.FRR(p)
	require.NoError(t, err)

	paths := tablePaths{
		FAR: filepath.Join(dir, "far.csv"),
		FRR: filepath.Join(dir, "frr.csv.gz"),
	}
	require.NoError(t, store.SaveDecisionTable(ctx, paths.FAR, far))
	require.NoError(t, store.SaveDecisionTable(ctx, paths.FRR, frr))
	return paths
}

// testApp opens a migrated database file in a temp dir.
func testApp(t *testing.T) *AppContext {
	t.Helper()
	app, err := NewAppContext(context.Background(), config.Database{
		URL: "file:" + filepath.Join(t.TempDir(), "fpstudy.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// mockRunRepo keeps runs in memory.
type mockRunRepo struct {
	runs []*domain.BootstrapRun
	err  error
}

func (m *mockRunRepo) Create(_ context.Context, run *domain.BootstrapRun) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunRepo) GetByID(_ context.Context, id string) (*domain.BootstrapRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRunRepo) List(_ context.Context, opts ports.ListRunsOptions) ([]*domain.BootstrapRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.BootstrapRun
	for _, r := range m.runs {
		if opts.Strategy == "" || r.Strategy == opts.Strategy {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRunRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	for i, r := range m.runs {
		if r.ID == id {
			m.runs = append(m.runs[:i], m.runs[i+1:]...)
			return nil
		}
	}
	return domain.ErrRunNotFound
}

// recordingExporter records exported runs.
type recordingExporter struct {
	mu        sync.Mutex
	exported  []string
	closed    bool
	exportErr error
}

func (e *recordingExporter) ExportRun(_ context.Context, run *domain.BootstrapRun) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exported = append(e.exported, run.ID)
	return e.exportErr
}

func (e *recordingExporter) Close(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
