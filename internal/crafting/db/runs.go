package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

// RunStore records macro generations.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// createdLayout sorts lexically in time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = `id, created_at, recipe_name, strategy, objective, actions,
	quality, progress, complete, score, explored, elapsed_ms, stop_reason`

// RecordRun stores run. An empty ID or CreatedAt is filled in before the
// insert.
func (s *RunStore) RecordRun(ctx context.Context, run *crafting.MacroRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	actions, err := json.Marshal(run.Actions)
	if err != nil {
		return fmt.Errorf("encoding run actions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO macro_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.CreatedAt.UTC().Format(createdLayout), run.RecipeName, run.Strategy, run.Objective, string(actions),
		run.Quality, run.Progress, run.Complete, run.Score, run.Explored, run.ElapsedMs, run.StopReason,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func scanRun(row rowScanner) (crafting.MacroRun, error) {
	var (
		run              crafting.MacroRun
		created, actions string
	)
	err := row.Scan(
		&run.ID, &created, &run.RecipeName, &run.Strategy, &run.Objective, &actions,
		&run.Quality, &run.Progress, &run.Complete, &run.Score, &run.Explored, &run.ElapsedMs, &run.StopReason,
	)
	if err != nil {
		return crafting.MacroRun{}, err
	}

	if run.CreatedAt, err = time.Parse(createdLayout, created); err != nil {
		return crafting.MacroRun{}, fmt.Errorf("run %s: parsing created_at: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(actions), &run.Actions); err != nil {
		return crafting.MacroRun{}, fmt.Errorf("run %s: decoding actions: %w", run.ID, err)
	}
	return run, nil
}

// GetRun retrieves a run by ID. A missing run returns nil, nil.
func (s *RunStore) GetRun(ctx context.Context, id string) (*crafting.MacroRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM macro_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return &run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]crafting.MacroRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM macro_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []crafting.MacroRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes all but the newest keep runs and returns how many were
// removed.
func (s *RunStore) PruneRuns(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM macro_runs
		WHERE id NOT IN (
			SELECT id FROM macro_runs ORDER BY created_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}
