// Package migrate applies the embedded SQL migrations of the run database.
//
// Migrations are files named NNN_name.up.sql with a matching
// NNN_name.down.sql. The schema_migrations table holds a single row with the
// current version and a dirty flag that stays set when a migration fails
// part way, so that later runs refuse to touch the schema until it is
// repaired.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/fpstudy/migrations"
)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Step is one migration applied in one direction.
type Step struct {
	Migration
	Up bool
}

func (s Step) direction() string {
	if s.Up {
		return "up"
	}
	return "down"
}

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func EnsureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// GetCurrentVersion returns the current migration version and dirty state.
func GetCurrentVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	var version, dirty int
	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SetVersion replaces the recorded version. Version 0 clears it.
func SetVersion(ctx context.Context, db *sql.DB, version int, dirty bool) error {
	return setVersion(ctx, db, version, dirty)
}

func setVersion(ctx context.Context, db execer, version int, dirty bool) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	d := 0
	if dirty {
		d = 1
	}
	_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, d)
	return err
}

// LoadMigrations returns the embedded migrations sorted by version.
func LoadMigrations() ([]Migration, error) {
	return Load(migrations.FS)
}

// Load reads the migrations in the root of fsys. Every up file needs a down
// file and a version no other migration uses.
func Load(fsys fs.FS) ([]Migration, error) {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}

	var result []Migration
	seen := make(map[int]string)
	for _, up := range ups {
		base := strings.TrimSuffix(path.Base(up), ".up.sql")
		prefix, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: name must be NNN_name.up.sql", up)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: invalid version %q", up, prefix)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, up, version)
		}
		seen[version] = up

		upSQL, err := fs.ReadFile(fsys, up)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", up, err)
		}
		downSQL, err := fs.ReadFile(fsys, base+".down.sql")
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down file: %w", up, err)
		}

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
	}

	slices.SortFunc(result, func(a, b Migration) int { return a.Version - b.Version })
	return result, nil
}

// Plan returns the steps that move a database from current to target.
func Plan(all []Migration, current, target int) ([]Step, error) {
	latest := 0
	if len(all) > 0 {
		latest = all[len(all)-1].Version
	}
	if target < 0 || target > latest {
		return nil, fmt.Errorf("target version %d outside 0..%d", target, latest)
	}

	var steps []Step
	if target >= current {
		for _, m := range all {
			if m.Version > current && m.Version <= target {
				steps = append(steps, Step{Migration: m, Up: true})
			}
		}
		return steps, nil
	}
	for _, m := range slices.Backward(all) {
		if m.Version <= current && m.Version > target {
			steps = append(steps, Step{Migration: m, Up: false})
		}
	}
	return steps, nil
}

// apply runs one step in a transaction. The version is marked dirty first so
// that a failure is visible to the next run.
func apply(ctx context.Context, db *sql.DB, s Step) error {
	slog.Info("applying migration", "direction", s.direction(), "version", s.Version, "name", s.Name)

	if err := SetVersion(ctx, db, s.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	body := s.UpSQL
	if !s.Up {
		body = s.DownSQL
	}
	for _, stmt := range SplitSQL(body) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", s.Version, s.direction(), err, stmt)
		}
	}

	next := s.Version
	if !s.Up {
		next = s.Version - 1
	}
	if err := setVersion(ctx, tx, next, false); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}
	return tx.Commit()
}

// SplitSQL splits a SQL script into its non-empty statements.
func SplitSQL(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Prepare ensures the migrations table exists and returns the current
// version together with every embedded migration.
func Prepare(ctx context.Context, db *sql.DB) (int, []Migration, error) {
	if err := EnsureMigrationsTable(ctx, db); err != nil {
		return 0, nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, dirty, err := GetCurrentVersion(ctx, db)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return 0, nil, fmt.Errorf("database is in dirty state at version %d", current)
	}

	all, err := LoadMigrations()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return current, all, nil
}

// RunAll runs all pending migrations on the provided database.
func RunAll(ctx context.Context, db *sql.DB) error {
	current, all, err := Prepare(ctx, db)
	if err != nil {
		return err
	}
	return MigrateUp(ctx, db, all, current)
}

// MigrateUp runs every migration newer than current.
func MigrateUp(ctx context.Context, db *sql.DB, all []Migration, current int) error {
	latest := current
	if len(all) > 0 {
		latest = max(latest, all[len(all)-1].Version)
	}
	return MigrateTo(ctx, db, all, current, latest)
}

// MigrateTo moves the database from current to target in whichever
// direction is needed.
func MigrateTo(ctx context.Context, db *sql.DB, all []Migration, current, target int) error {
	steps, err := Plan(all, current, target)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		slog.Debug("schema up to date", "version", current)
		return nil
	}
	for _, s := range steps {
		if err := apply(ctx, db, s); err != nil {
			return err
		}
	}
	slog.Info("migrated", "from", current, "to", target, "steps", len(steps))
	return nil
}
