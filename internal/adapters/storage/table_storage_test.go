package storage

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

func TestTableStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewTableStorage(t.TempDir())

	table, err := ReadDecisionTable(strings.NewReader(csvReordered))
	require.NoError(t, err)

	for _, name := range []string{"far.csv", "nested/far.csv.gz"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveDecisionTable(ctx, name, table))

			ok, err := s.Exists(ctx, name)
			require.NoError(t, err)
			assert.True(t, ok)

			got, err := s.LoadDecisionTable(ctx, name)
			require.NoError(t, err)
			assert.Equal(t, table.Columns(), got.Columns())
			assert.Equal(t, table.Rows(), got.Rows())
		})
	}
}

func TestTableStorageGzipOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewTableStorage(dir)

	require.NoError(t, s.SaveUserGroups(ctx, "groups.csv.gz", domain.UserGroups{10001: "A", 10002: "B"}))

	f, err := os.Open(filepath.Join(dir, "groups.csv.gz"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	groups, err := ReadUserGroups(gr)
	require.NoError(t, err)
	assert.Equal(t, domain.UserGroups{10001: "A", 10002: "B"}, groups)

	loaded, err := s.LoadUserGroups(ctx, filepath.Join(dir, "groups.csv.gz"))
	require.NoError(t, err)
	assert.Equal(t, groups, loaded)
}

func TestTableStorageErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewTableStorage(dir)

	_, err := s.LoadDecisionTable(ctx, "missing.csv")
	require.Error(t, err)

	ok, err := s.Exists(ctx, "missing.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("EnrollUser\n1\n"), 0644))
	_, err = s.LoadDecisionTable(ctx, "bad.csv")
	require.ErrorIs(t, err, domain.ErrSchema)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.csv.gz"), []byte(csvFAR), 0644))
	_, err = s.LoadDecisionTable(ctx, "plain.csv.gz")
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, s.SaveDecisionTable(cancelled, "x.csv", domain.NewDecisionTable(nil, nil)), context.Canceled)
}

func TestTableStorageLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewTableStorage(dir)
	require.NoError(t, s.SaveDecisionTable(context.Background(), "far.csv", domain.NewDecisionTable(nil, nil)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "far.csv", entries[0].Name())
}

func TestTableStorageFileMode(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewTableStorage(dir)

	require.NoError(t, s.SaveDecisionTable(ctx, "far.csv", domain.NewDecisionTable(nil, nil)))
	require.NoError(t, s.SaveUserGroups(ctx, "groups.csv.gz", domain.UserGroups{10001: "A"}))

	for _, name := range []string{"far.csv", "groups.csv.gz"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), name)
	}
}
