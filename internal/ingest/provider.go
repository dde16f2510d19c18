// Package ingest holds types shared by workout importers.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Result holds the outcome of parsing an import. Nothing in it has been
// committed; the caller appends Workouts and registers CustomExercises in a
// single step.
type Result struct {
	Workouts              []models.Workout        `json:"workouts"`
	ImportedCount         int                     `json:"imported_count"`
	UnmappedExerciseNames []string                `json:"unmapped_exercise_names"`
	CustomExercises       []models.CustomExercise `json:"custom_exercises,omitempty"`

	RowsTotal    int `json:"rows_total"`
	RowsSkipped  int `json:"rows_skipped"`
	SetsImported int `json:"sets_imported"`

	Message string `json:"message,omitempty"`
}

// Progress reports rows processed so far out of the total data rows.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Import log statuses.
const (
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Log records the outcome of one import. It is written as "running" before
// parsing starts and updated once the import ends.
type Log struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	RowsTotal        int       `json:"rows_total"`
	RowsSkipped      int       `json:"rows_skipped"`
	WorkoutsImported int       `json:"workouts_imported"`
	SetsImported     int       `json:"sets_imported"`
	Unmapped         []string  `json:"unmapped,omitempty"`
	DurationMs       *int      `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message"`
}

// Finish fills the log from a parse outcome. A nil result with a nil error
// is treated as an empty success.
func (l *Log) Finish(res *Result, err error, elapsed time.Duration) {
	ms := int(elapsed.Milliseconds())
	l.DurationMs = &ms
	if res != nil {
		l.RowsTotal = res.RowsTotal
		l.RowsSkipped = res.RowsSkipped
		l.WorkoutsImported = res.ImportedCount
		l.SetsImported = res.SetsImported
		l.Unmapped = res.UnmappedExerciseNames
	}
	switch {
	case err == nil:
		l.Status = StatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.Status = StatusCancelled
	default:
		l.Status = StatusError
	}
	if err != nil {
		msg := err.Error()
		l.ErrorMessage = &msg
	}
}
