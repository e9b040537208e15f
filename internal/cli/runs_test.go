package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
)

func TestRunRunsList(t *testing.T) {
	ctx := context.Background()
	repo := &mockRunRepo{}

	var out bytes.Buffer
	require.NoError(t, runRunsList(ctx, &out, repo, ports.ListRunsOptions{}))
	assert.Equal(t, "No saved runs.\n", out.String())

	frr := sampleRun()
	frr.ID = "run-2"
	frr.Strategy = "frr-hierarchy"
	repo.runs = []*domain.BootstrapRun{sampleRun(), frr}

	out.Reset()
	require.NoError(t, runRunsList(ctx, &out, repo, ports.ListRunsOptions{}))
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Regexp(t, `^ID\s+CREATED\s+STRATEGY`, string(lines[0]))
	assert.Regexp(t, `^run-1\s+.*far-hierarchy\s+1000\s+95%\s+\[1\.000, 3\.000\]$`, string(lines[1]))

	out.Reset()
	require.NoError(t, runRunsList(ctx, &out, repo, ports.ListRunsOptions{Strategy: "frr-hierarchy"}))
	assert.Contains(t, out.String(), "run-2")
	assert.NotContains(t, out.String(), "run-1")

	repo.err = errors.New("db down")
	require.Error(t, runRunsList(ctx, &out, repo, ports.ListRunsOptions{}))
}

func TestRunRunsShow(t *testing.T) {
	ctx := context.Background()
	repo := &mockRunRepo{runs: []*domain.BootstrapRun{sampleRun()}}

	var out bytes.Buffer
	require.NoError(t, runRunsShow(ctx, &out, repo, "run-1"))
	assert.Contains(t, out.String(), "Run run-1 (")
	assert.Contains(t, out.String(), "FAR table: /data/far.csv")
	assert.NotContains(t, out.String(), "FRR table")
	assert.Regexp(t, `sampling:\s+1s`, out.String())

	err := runRunsShow(ctx, &out, repo, "missing")
	require.Error(t, err)
	assert.Equal(t, `run "missing" not found`, err.Error())
}

func TestRunRunsDelete(t *testing.T) {
	ctx := context.Background()
	repo := &mockRunRepo{runs: []*domain.BootstrapRun{sampleRun()}}

	var out bytes.Buffer
	require.NoError(t, runRunsDelete(ctx, &out, repo, "run-1"))
	assert.Equal(t, "Deleted run run-1\n", out.String())
	assert.Empty(t, repo.runs)

	err := runRunsDelete(ctx, &out, repo, "run-1")
	require.Error(t, err)
	assert.Equal(t, `run "run-1" not found`, err.Error())
}

func TestRunsAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	app := testApp(t)
	require.NoError(t, app.Runs.Create(ctx, sampleRun()))

	var out bytes.Buffer
	require.NoError(t, runRunsList(ctx, &out, app.Runs, ports.ListRunsOptions{Limit: 5}))
	assert.Contains(t, out.String(), "run-1")

	out.Reset()
	require.NoError(t, runRunsShow(ctx, &out, app.Runs, "run-1"))
	assert.Contains(t, out.String(), "far-hierarchy")

	require.NoError(t, runRunsDelete(ctx, &out, app.Runs, "run-1"))
	require.Error(t, runRunsDelete(ctx, &out, app.Runs, "run-1"))
}
