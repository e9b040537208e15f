package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
	"github.com/emiliopalmerini/fpstudy/internal/ports"
	"github.com/emiliopalmerini/fpstudy/internal/util"
)

const defaultListLimit = 50

const runColumns = `id, strategy, distribution, workers, replicates, seed, confidence,
	ci_lower, ci_upper, mean, stddev, attempts, positives, samples,
	far_path, frr_path, created_at`

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *domain.BootstrapRun) error {
	samples, err := json.Marshal(run.Samples)
	if err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO bootstrap_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Strategy,
		run.Distribution,
		run.Workers,
		run.Replicates,
		util.NullUint64(run.Seed),
		run.Confidence,
		run.Lower,
		run.Upper,
		run.Mean,
		run.StdDev,
		run.Attempts,
		run.Positives,
		string(samples),
		util.NullStringPtr(run.FARPath),
		util.NullStringPtr(run.FRRPath),
		run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	for _, p := range run.Timing.Phases() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bootstrap_run_phases (run_id, phase, duration_ns) VALUES (?, ?, ?)`,
			run.ID, p.Name, p.Duration.Nanoseconds())
		if err != nil {
			return fmt.Errorf("failed to record phase %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.BootstrapRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM bootstrap_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := r.loadTiming(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *RunRepository) List(ctx context.Context, opts ports.ListRunsOptions) ([]*domain.BootstrapRun, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	runs, err := WithRetry(ctx, 2, func() ([]*domain.BootstrapRun, error) {
		var (
			rows *sql.Rows
			err  error
		)
		if opts.Strategy != "" {
			rows, err = r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM bootstrap_runs
				WHERE strategy = ? ORDER BY created_at DESC, id LIMIT ?`, opts.Strategy, limit)
		} else {
			rows, err = r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM bootstrap_runs
				ORDER BY created_at DESC, id LIMIT ?`, limit)
		}
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		var runs []*domain.BootstrapRun
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}
		return runs, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	for _, run := range runs {
		if err := r.loadTiming(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *RunRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bootstrap_run_phases WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run phases: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bootstrap_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	return tx.Commit()
}

func (r *RunRepository) loadTiming(ctx context.Context, run *domain.BootstrapRun) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT phase, duration_ns FROM bootstrap_run_phases WHERE run_id = ?`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load run phases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			phase string
			ns    int64
		)
		if err := rows.Scan(&phase, &ns); err != nil {
			return fmt.Errorf("failed to scan run phase: %w", err)
		}
		d := time.Duration(ns)
		switch phase {
		case "cache_init":
			run.Timing.CacheInit = d
		case "rng_init":
			run.Timing.RNGInit = d
		case "pool_startup":
			run.Timing.PoolStartup = d
		case "sampling":
			run.Timing.Sampling = d
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.BootstrapRun, error) {
	var (
		run       domain.BootstrapRun
		seed      sql.NullString
		samples   string
		farPath   sql.NullString
		frrPath   sql.NullString
		createdAt string
	)
	err := s.Scan(
		&run.ID,
		&run.Strategy,
		&run.Distribution,
		&run.Workers,
		&run.Replicates,
		&seed,
		&run.Confidence,
		&run.Lower,
		&run.Upper,
		&run.Mean,
		&run.StdDev,
		&run.Attempts,
		&run.Positives,
		&samples,
		&farPath,
		&frrPath,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(samples), &run.Samples); err != nil {
		return nil, fmt.Errorf("failed to decode samples of run %s: %w", run.ID, err)
	}
	run.Seed = util.NullStringToUint64(seed)
	run.FARPath = util.NullStringToPtr(farPath)
	run.FRRPath = util.NullStringToPtr(frrPath)
	run.CreatedAt = util.ParseTimeSQLite(createdAt)
	return &run, nil
}
