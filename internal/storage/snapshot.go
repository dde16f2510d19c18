package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// insertChunk bounds the rows per multi-value INSERT so the parameter count
// stays well under the protocol limit of 65535.
const insertChunk = 1000

// LoadSnapshot reads the full state. It returns nil, nil when nothing has
// been saved yet.
func (db *DB) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{Records: map[string]models.PersonalRecord{}}
	found := false

	rows, err := db.Pool.Query(ctx, `SELECT doc FROM workouts ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		var w models.Workout
		if err := json.Unmarshal(doc, &w); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding workout: %w", err)
		}
		snap.Workouts = append(snap.Workouts, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workouts: %w", err)
	}
	found = found || len(snap.Workouts) > 0

	rows, err = db.Pool.Query(ctx,
		`SELECT exercise_id, weight, date, first_weight, imported, edited FROM personal_records`)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	for rows.Next() {
		var r models.PersonalRecord
		if err := rows.Scan(&r.ExerciseID, &r.Weight, &r.Date, &r.FirstWeight, &r.Imported, &r.Edited); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		snap.Records[r.ExerciseID] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating personal records: %w", err)
	}
	found = found || len(snap.Records) > 0

	rows, err = db.Pool.Query(ctx, `SELECT doc FROM custom_exercises ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying custom exercises: %w", err)
	}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning custom exercise: %w", err)
		}
		var ce models.CustomExercise
		if err := json.Unmarshal(doc, &ce); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding custom exercise: %w", err)
		}
		snap.CustomExercises = append(snap.CustomExercises, ce)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating custom exercises: %w", err)
	}
	found = found || len(snap.CustomExercises) > 0

	rows, err = db.Pool.Query(ctx, `SELECT kind, doc FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	for rows.Next() {
		var (
			kind string
			doc  []byte
		)
		if err := rows.Scan(&kind, &doc); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := snap.SetDocument(kind, doc); err != nil {
			rows.Close()
			return nil, err
		}
		found = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if !found {
		return nil, nil
	}
	return snap, nil
}

// SaveSnapshot replaces the stored state in a single transaction, so a
// failed save leaves the previous snapshot intact.
func (db *DB) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	docs, err := snap.Documents()
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`TRUNCATE workouts, personal_records, custom_exercises, documents`); err != nil {
			return fmt.Errorf("clearing snapshot tables: %w", err)
		}
		if err := insertWorkouts(ctx, tx, snap.Workouts); err != nil {
			return err
		}
		if err := insertRecords(ctx, tx, snap.Records); err != nil {
			return err
		}
		for _, ce := range snap.CustomExercises {
			doc, err := json.Marshal(ce)
			if err != nil {
				return fmt.Errorf("encoding custom exercise %s: %w", ce.ID, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO custom_exercises (id, doc) VALUES ($1, $2)`, ce.ID, doc); err != nil {
				return fmt.Errorf("inserting custom exercise %s: %w", ce.ID, err)
			}
		}
		for kind, doc := range docs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO documents (kind, doc) VALUES ($1, $2)`, kind, doc); err != nil {
				return fmt.Errorf("inserting document %s: %w", kind, err)
			}
		}
		return nil
	})
}

func insertWorkouts(ctx context.Context, tx pgx.Tx, workouts []models.Workout) error {
	for start := 0; start < len(workouts); start += insertChunk {
		end := min(start+insertChunk, len(workouts))
		batch := workouts[start:end]

		query := `INSERT INTO workouts (id, start_time, source, doc) VALUES `
		args := make([]any, 0, len(batch)*4)
		valueStrings := make([]string, 0, len(batch))
		for i, w := range batch {
			doc, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("encoding workout %s: %w", w.ID, err)
			}
			base := i * 4
			valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
			args = append(args, w.ID, w.StartTime, w.Source, doc)
		}
		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting workouts: %w", err)
		}
	}
	return nil
}

func insertRecords(ctx context.Context, tx pgx.Tx, records map[string]models.PersonalRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `INSERT INTO personal_records (exercise_id, weight, date, first_weight, imported, edited) VALUES `
	args := make([]any, 0, len(records)*6)
	valueStrings := make([]string, 0, len(records))
	i := 0
	for id, r := range records {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, id, r.Weight, r.Date, r.FirstWeight, r.Imported, r.Edited)
		i++
	}
	query += strings.Join(valueStrings, ",")
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting personal records: %w", err)
	}
	return nil
}
