package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("generation run not found")

const runColumns = `id, keyword, gender, season, model, keyword_type, processing_mode,
	is_featured, featured_keyword, title_count, item_count, outcome, error_message,
	duration_ms, created_at`

// RecordRun inserts a run. A zero ID is replaced with a new UUID.
func (db *DB) RecordRun(ctx context.Context, run *GenerationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO generation_runs (id, keyword, gender, season, model, keyword_type,
		   processing_mode, is_featured, featured_keyword, title_count, item_count,
		   outcome, error_message, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at`,
		run.ID, run.Keyword, run.Gender, run.Season, run.Model, run.KeywordType,
		run.ProcessingMode, run.IsFeatured, run.FeaturedKeyword, run.TitleCount, run.ItemCount,
		run.Outcome, run.ErrorMessage, run.DurationMS,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*GenerationRun, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM generation_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]GenerationRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM generation_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []GenerationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*GenerationRun, error) {
	var r GenerationRun
	err := row.Scan(&r.ID, &r.Keyword, &r.Gender, &r.Season, &r.Model, &r.KeywordType,
		&r.ProcessingMode, &r.IsFeatured, &r.FeaturedKeyword, &r.TitleCount, &r.ItemCount,
		&r.Outcome, &r.ErrorMessage, &r.DurationMS, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
