package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetTitles returns cached titles for (keyword, gender) fetched within maxAge.
// found is false when there is no fresh entry.
func (db *DB) GetTitles(ctx context.Context, keyword, gender string, maxAge time.Duration) (titles []string, found bool, err error) {
	var raw []byte
	err = db.pool.QueryRow(ctx,
		`SELECT titles FROM title_cache
		 WHERE keyword = $1 AND gender = $2 AND fetched_at > $3`,
		keyword, gender, time.Now().Add(-maxAge),
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached titles: %w", err)
	}

	if err := json.Unmarshal(raw, &titles); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached titles: %w", err)
	}
	return titles, true, nil
}

// PutTitles stores titles for (keyword, gender), replacing any previous entry.
func (db *DB) PutTitles(ctx context.Context, keyword, gender string, titles []string) error {
	if titles == nil {
		titles = []string{}
	}
	raw, err := json.Marshal(titles)
	if err != nil {
		return fmt.Errorf("failed to encode titles: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO title_cache (keyword, gender, titles, fetched_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (keyword, gender) DO UPDATE SET titles = $3, fetched_at = NOW()`,
		keyword, gender, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to cache titles: %w", err)
	}
	return nil
}

// PurgeTitles deletes cache entries older than maxAge and returns the count.
func (db *DB) PurgeTitles(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM title_cache WHERE fetched_at <= $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge title cache: %w", err)
	}
	return tag.RowsAffected(), nil
}
