package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/ingest"
)

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ingest.Log) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (created_at, source, status, rows_total, rows_skipped,
		 workouts_imported, sets_imported, unmapped, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING id`,
		log.CreatedAt, log.Source, log.Status, log.RowsTotal, log.RowsSkipped,
		log.WorkoutsImported, log.SetsImported, unmappedOrEmpty(log.Unmapped),
		log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to "success" or "error").
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ingest.Log) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET
		 status = $2, rows_total = $3, rows_skipped = $4, workouts_imported = $5,
		 sets_imported = $6, unmapped = $7, duration_ms = $8, error_message = $9
		 WHERE id = $1`,
		id, log.Status, log.RowsTotal, log.RowsSkipped, log.WorkoutsImported,
		log.SetsImported, unmappedOrEmpty(log.Unmapped), log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]ingest.Log, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, source, status, rows_total, rows_skipped,
		 workouts_imported, sets_imported, unmapped, duration_ms, error_message
		 FROM import_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ingest.Log{}
	for rows.Next() {
		var l ingest.Log
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status, &l.RowsTotal, &l.RowsSkipped,
			&l.WorkoutsImported, &l.SetsImported, &l.Unmapped, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// unmappedOrEmpty keeps the NOT NULL text[] column satisfied.
func unmappedOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
