package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/csvlog"
)

const sourceCSV = "csv"

// ErrImportNotSaved marks an import that reached history but whose snapshot
// save failed. The next successful save persists it.
var ErrImportNotSaved = errors.New("import committed but not saved")

// ImportCSV parses a CSV export and commits the result in one step. Parsing
// runs without holding the lock; onProgress (if non-nil) is called after
// each batch. A validation failure or cancellation commits nothing.
//
// When the commit succeeds but the snapshot save fails, the workouts are
// already in history: the result is returned together with an error
// wrapping ErrImportNotSaved, and the import must not be retried.
func (t *Tracker) ImportCSV(ctx context.Context, data string, onProgress func(ingest.Progress)) (*ingest.Result, error) {
	logID, entry := t.beginImportLog(ctx)

	res, err := t.importer.Parse(ctx, data, onProgress)
	if err != nil {
		t.endImportLog(ctx, logID, entry, res, err)
		return nil, err
	}

	if err := t.CommitImport(ctx, res); err != nil {
		err = fmt.Errorf("%w: %w", ErrImportNotSaved, err)
		t.endImportLog(ctx, logID, entry, res, err)
		return res, err
	}
	t.endImportLog(ctx, logID, entry, res, nil)
	return res, nil
}

// StartImport parses in the background. The caller drains the job's
// progress, waits for the result and passes it to CommitImport.
func (t *Tracker) StartImport(ctx context.Context, data string) *csvlog.Job {
	return t.importer.Start(ctx, data)
}

// CommitImport registers the synthesized custom exercises and appends all
// parsed workouts to history under one lock acquisition. An error means only
// the snapshot save failed; the workouts are in history either way.
func (t *Tracker) CommitImport(ctx context.Context, res *ingest.Result) error {
	if res == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ce := range res.CustomExercises {
		t.cat.AddCustom(ce)
	}
	n := t.hist.ImportWorkouts(res.Workouts)
	t.log.Info("csv import committed",
		"workouts", n,
		"sets", res.SetsImported,
		"rows_skipped", res.RowsSkipped,
		"unmapped", len(res.UnmappedExerciseNames),
	)
	res.Message = fmt.Sprintf("imported %d workouts (%d sets), skipped %d rows, %d unmapped exercises",
		n, res.SetsImported, res.RowsSkipped, len(res.UnmappedExerciseNames))
	return t.persist(ctx)
}

// ImportLogs returns the most recent import logs, newest first.
func (t *Tracker) ImportLogs(ctx context.Context, limit int) ([]ingest.Log, error) {
	if t.store == nil {
		return []ingest.Log{}, nil
	}
	return t.store.QueryImportLogs(ctx, limit)
}

func (t *Tracker) beginImportLog(ctx context.Context) (int64, ingest.Log) {
	entry := ingest.Log{CreatedAt: t.clock(), Source: sourceCSV, Status: ingest.StatusRunning}
	if t.store == nil {
		return 0, entry
	}
	id, err := t.store.InsertImportLog(ctx, entry)
	if err != nil {
		t.log.Warn("failed to create import log", "error", err)
		return 0, entry
	}
	return id, entry
}

func (t *Tracker) endImportLog(ctx context.Context, id int64, entry ingest.Log, res *ingest.Result, err error) {
	entry.Finish(res, err, t.clock().Sub(entry.CreatedAt))
	if err != nil {
		t.log.Error("csv import failed", "status", entry.Status, "error", err)
	}
	if t.store == nil || id == 0 {
		return
	}
	// The request context may already be cancelled; the log update still
	// has to land.
	if uerr := t.store.UpdateImportLog(context.WithoutCancel(ctx), id, entry); uerr != nil {
		t.log.Warn("failed to update import log", "id", id, "error", uerr)
	}
}

func (t *Tracker) clock() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now()
}
