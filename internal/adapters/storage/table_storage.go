package storage

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

// TableStorage loads and saves study tables on disk. Paths ending in .gz are
// gzip-compressed transparently. Relative paths resolve against baseDir.
type TableStorage struct {
	baseDir string
}

func NewTableStorage(baseDir string) *TableStorage {
	return &TableStorage{baseDir: baseDir}
}

func (s *TableStorage) LoadDecisionTable(ctx context.Context, path string) (*domain.DecisionTable, error) {
	var t *domain.DecisionTable
	err := s.read(ctx, path, func(r io.Reader) error {
		var err error
		t, err = ReadDecisionTable(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

func (s *TableStorage) SaveDecisionTable(ctx context.Context, path string, t *domain.DecisionTable) error {
	return s.write(ctx, path, func(w io.Writer) error {
		return WriteDecisionTable(w, t)
	})
}

func (s *TableStorage) LoadUserGroups(ctx context.Context, path string) (domain.UserGroups, error) {
	var g domain.UserGroups
	err := s.read(ctx, path, func(r io.Reader) error {
		var err error
		g, err = ReadUserGroups(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return g, nil
}

func (s *TableStorage) SaveUserGroups(ctx context.Context, path string, g domain.UserGroups) error {
	return s.write(ctx, path, func(w io.Writer) error {
		return WriteUserGroups(w, g)
	})
}

func (s *TableStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(s.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *TableStorage) read(ctx context.Context, path string, decode func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Open(s.resolve(path))
	if err != nil {
		return fmt.Errorf("failed to open table file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if isGzip(path) {
		gr, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() { _ = gr.Close() }()
		r = gr
	}
	return decode(r)
}

// tableFileMode replaces the owner-only mode of os.CreateTemp.
const tableFileMode = 0644

// write encodes into a temporary file next to the destination and renames
// it into place once complete.
func (s *TableStorage) write(ctx context.Context, path string, encode func(io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	destPath := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	defer func() { _ = tmp.Close() }()

	var w io.Writer = tmp
	var gw *gzip.Writer
	if isGzip(path) {
		gw = gzip.NewWriter(tmp)
		w = gw
	}

	if err := encode(w); err != nil {
		return err
	}
	if gw != nil {
		if err := gw.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}
	if err := tmp.Chmod(tableFileMode); err != nil {
		return fmt.Errorf("failed to set table file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("failed to move table file into place: %w", err)
	}
	return nil
}

func (s *TableStorage) resolve(path string) string {
	if filepath.IsAbs(path) || s.baseDir == "" {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}
