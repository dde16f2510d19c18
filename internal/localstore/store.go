// Package localstore keeps tracker state in a single SQLite file for
// single-user and offline use.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS workouts (
	id          TEXT PRIMARY KEY,
	start_time  TIMESTAMP NOT NULL,
	doc         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS personal_records (
	exercise_id  TEXT PRIMARY KEY,
	doc          TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS custom_exercises (
	id   TEXT PRIMARY KEY,
	doc  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	kind        TEXT PRIMARY KEY,
	doc         TEXT NOT NULL,
	updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS import_logs (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at         TIMESTAMP NOT NULL,
	source             TEXT NOT NULL,
	status             TEXT NOT NULL,
	rows_total         INTEGER NOT NULL DEFAULT 0,
	rows_skipped       INTEGER NOT NULL DEFAULT 0,
	workouts_imported  INTEGER NOT NULL DEFAULT 0,
	sets_imported      INTEGER NOT NULL DEFAULT 0,
	unmapped           TEXT NOT NULL DEFAULT '[]',
	duration_ms        INTEGER,
	error_message      TEXT
)`

// Store implements tracker.Store on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating local tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadSnapshot reads the full state. It returns nil, nil when nothing has
// been saved yet.
func (s *Store) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{Records: map[string]models.PersonalRecord{}}
	found := false

	err := s.eachDoc(ctx, `SELECT doc FROM workouts ORDER BY start_time, id`, func(doc []byte) error {
		var w models.Workout
		if err := json.Unmarshal(doc, &w); err != nil {
			return fmt.Errorf("decoding workout: %w", err)
		}
		snap.Workouts = append(snap.Workouts, w)
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.eachDoc(ctx, `SELECT doc FROM personal_records`, func(doc []byte) error {
		var r models.PersonalRecord
		if err := json.Unmarshal(doc, &r); err != nil {
			return fmt.Errorf("decoding personal record: %w", err)
		}
		snap.Records[r.ExerciseID] = r
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.eachDoc(ctx, `SELECT doc FROM custom_exercises ORDER BY id`, func(doc []byte) error {
		var ce models.CustomExercise
		if err := json.Unmarshal(doc, &ce); err != nil {
			return fmt.Errorf("decoding custom exercise: %w", err)
		}
		snap.CustomExercises = append(snap.CustomExercises, ce)
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, doc FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, doc string
		if err := rows.Scan(&kind, &doc); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := snap.SetDocument(kind, []byte(doc)); err != nil {
			return nil, err
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if !found {
		return nil, nil
	}
	return snap, nil
}

func (s *Store) eachDoc(ctx context.Context, query string, fn func([]byte) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("querying local db: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		if err := fn([]byte(doc)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveSnapshot replaces the stored state in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snap *models.Snapshot) (err error) {
	docs, err := snap.Documents()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"workouts", "personal_records", "custom_exercises", "documents"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	for _, w := range snap.Workouts {
		if err := insertDoc(ctx, tx, `INSERT INTO workouts (id, start_time, doc) VALUES (?, ?, ?)`,
			w, w.ID.String(), w.StartTime.UTC()); err != nil {
			return fmt.Errorf("inserting workout %s: %w", w.ID, err)
		}
	}
	for id, r := range snap.Records {
		if err := insertDoc(ctx, tx, `INSERT INTO personal_records (exercise_id, doc) VALUES (?, ?)`,
			r, id); err != nil {
			return fmt.Errorf("inserting personal record %s: %w", id, err)
		}
	}
	for _, ce := range snap.CustomExercises {
		if err := insertDoc(ctx, tx, `INSERT INTO custom_exercises (id, doc) VALUES (?, ?)`,
			ce, ce.ID); err != nil {
			return fmt.Errorf("inserting custom exercise %s: %w", ce.ID, err)
		}
	}
	for kind, doc := range docs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents (kind, doc) VALUES (?, ?)`,
			kind, string(doc)); err != nil {
			return fmt.Errorf("inserting document %s: %w", kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// insertDoc encodes v as JSON and appends it as the last query argument.
func insertDoc(ctx context.Context, tx *sql.Tx, query string, v any, args ...any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, append(args, string(doc))...)
	return err
}

// InsertImportLog creates a new import log entry and returns its ID.
func (s *Store) InsertImportLog(ctx context.Context, l ingest.Log) (int64, error) {
	unmapped, err := encodeUnmapped(l.Unmapped)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO import_logs (created_at, source, status, rows_total, rows_skipped,
		 workouts_imported, sets_imported, unmapped, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CreatedAt.UTC(), l.Source, l.Status, l.RowsTotal, l.RowsSkipped,
		l.WorkoutsImported, l.SetsImported, unmapped, l.DurationMs, l.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return res.LastInsertId()
}

// UpdateImportLog rewrites the outcome fields of an import log entry.
func (s *Store) UpdateImportLog(ctx context.Context, id int64, l ingest.Log) error {
	unmapped, err := encodeUnmapped(l.Unmapped)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_logs SET status = ?, rows_total = ?, rows_skipped = ?, workouts_imported = ?,
		 sets_imported = ?, unmapped = ?, duration_ms = ?, error_message = ?
		 WHERE id = ?`,
		l.Status, l.RowsTotal, l.RowsSkipped, l.WorkoutsImported,
		l.SetsImported, unmapped, l.DurationMs, l.ErrorMessage, id)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating import log %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs, newest first.
func (s *Store) QueryImportLogs(ctx context.Context, limit int) ([]ingest.Log, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, status, rows_total, rows_skipped,
		 workouts_imported, sets_imported, unmapped, duration_ms, error_message
		 FROM import_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ingest.Log{}
	for rows.Next() {
		var (
			l        ingest.Log
			unmapped string
			duration sql.NullInt64
			errMsg   sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status, &l.RowsTotal, &l.RowsSkipped,
			&l.WorkoutsImported, &l.SetsImported, &unmapped, &duration, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		if err := json.Unmarshal([]byte(unmapped), &l.Unmapped); err != nil {
			return nil, fmt.Errorf("decoding unmapped names: %w", err)
		}
		if duration.Valid {
			ms := int(duration.Int64)
			l.DurationMs = &ms
		}
		if errMsg.Valid {
			l.ErrorMessage = &errMsg.String
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func encodeUnmapped(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encoding unmapped names: %w", err)
	}
	return string(b), nil
}
