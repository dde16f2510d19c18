package localstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "liftlog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSnapshotRoundTrip verifies an empty store loads as nil and a saved
// snapshot loads back unchanged.
func TestSnapshotRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	got, err := s.LoadSnapshot(ctx)
	if err != nil || got != nil {
		t.Fatalf("empty load = %+v, %v; want nil", got, err)
	}

	day := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)
	rpe := 8.5
	snap := &models.Snapshot{
		Profile: []byte(`{"name":"lifter"}`),
		Workouts: []models.Workout{{
			ID:        uuid.MustParse("6f1c2b9e-2f7a-4a53-9d8e-0c1b2a3d4e5f"),
			Name:      "Push",
			StartTime: day,
			EndTime:   day.Add(time.Hour),
			Source:    models.SourceManual,
			Entries: []models.WorkoutExerciseEntry{{
				ExerciseID: "bench_press",
				Sets:       []models.SetRecord{{Weight: 155, Reps: 4, RPE: &rpe, Timestamp: day}},
			}},
			Program: &models.ProgramPosition{ProgramID: "p", Week: 1, Day: 1},
		}},
		Records: map[string]models.PersonalRecord{
			"bench_press": {ExerciseID: "bench_press", Weight: 155, Date: day, FirstWeight: 135},
		},
		Templates: []models.Template{{ID: "a", Name: "A", Exercises: []models.TemplateExercise{
			{ExerciseID: "bench_press", TargetSets: 3, TargetReps: models.RepRange{Low: 8, High: 12}},
		}}},
		Programs: []models.Program{{
			ID: "p", Name: "Push", CycleType: models.CycleWeekly,
			ProgressionRules: []models.ProgressionRule{{ID: "dp", Config: models.DoubleProgression{
				RepRange: models.RepRange{Low: 8, High: 12}, WeightIncrement: 5,
			}}},
		}},
		ActiveProgram:        &models.ActiveProgramState{ProgramID: "p", CurrentWeek: 1, CurrentDay: 2, StartedAt: day},
		ProcessedCompletions: []uuid.UUID{uuid.MustParse("6f1c2b9e-2f7a-4a53-9d8e-0c1b2a3d4e5f")},
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// A second save replaces rather than appends.
	snap.Workouts = nil
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadSnapshot(ctx)
	if len(got.Workouts) != 0 {
		t.Errorf("workouts after replace = %d, want 0", len(got.Workouts))
	}
}

// TestImportLogs verifies logs are updated in place and listed newest first.
func TestImportLogs(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	first, err := s.InsertImportLog(ctx, ingest.Log{CreatedAt: base, Source: "csv", Status: ingest.StatusRunning})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.InsertImportLog(ctx, ingest.Log{CreatedAt: base.Add(time.Minute), Source: "csv", Status: ingest.StatusRunning})
	if err != nil {
		t.Fatal(err)
	}

	done := ingest.Log{CreatedAt: base, Source: "csv"}
	done.Finish(&ingest.Result{RowsTotal: 10, RowsSkipped: 1, ImportedCount: 2, SetsImported: 9,
		UnmappedExerciseNames: []string{"Zercher Carry"}}, nil, 40*time.Millisecond)
	if err := s.UpdateImportLog(ctx, first, done); err != nil {
		t.Fatal(err)
	}

	logs, err := s.QueryImportLogs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].ID != second || logs[1].ID != first {
		t.Fatalf("logs = %+v, want newest first", logs)
	}
	l := logs[1]
	if l.Status != ingest.StatusSuccess || l.SetsImported != 9 || l.DurationMs == nil || *l.DurationMs != 40 {
		t.Errorf("updated log = %+v", l)
	}
	if diff := cmp.Diff([]string{"Zercher Carry"}, l.Unmapped); diff != "" {
		t.Errorf("unmapped mismatch (-want +got):\n%s", diff)
	}
	if logs[0].DurationMs != nil || logs[0].ErrorMessage != nil {
		t.Errorf("running log has outcome fields: %+v", logs[0])
	}

	if err := s.UpdateImportLog(ctx, 999, done); err == nil {
		t.Error("updating a missing log should fail")
	}
}

// TestTrackerPersistsThroughStore verifies a tracker reloads its state from
// the file written by another tracker.
func TestTrackerPersistsThroughStore(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tr := tracker.New(s, 0, log)
	csv := "Date,Exercise Name,Weight,Reps\n2024-03-01 07:30:00,Squat (Barbell),225,5\n"
	if _, err := tr.ImportCSV(ctx, csv, nil); err != nil {
		t.Fatal(err)
	}

	reloaded := tracker.New(s, 0, log)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(reloaded.Workouts()); n != 1 {
		t.Fatalf("workouts = %d, want 1", n)
	}
	recs := reloaded.Records()
	if len(recs) != 1 || recs[0].ExerciseID != "squat" || recs[0].Weight != 225 {
		t.Errorf("records = %+v", recs)
	}
	logs, err := reloaded.ImportLogs(ctx, 5)
	if err != nil || len(logs) != 1 || logs[0].Status != ingest.StatusSuccess {
		t.Errorf("import logs = %+v, %v", logs, err)
	}
}
