package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/csvlog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
)

// memStore keeps the last saved snapshot and import logs in memory.
type memStore struct {
	snap    *models.Snapshot
	saves   int
	logs    []ingest.Log
	saveErr error
}

func (m *memStore) LoadSnapshot(context.Context) (*models.Snapshot, error) { return m.snap, nil }

func (m *memStore) SaveSnapshot(_ context.Context, s *models.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = s
	m.saves++
	return nil
}

func (m *memStore) InsertImportLog(_ context.Context, l ingest.Log) (int64, error) {
	l.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, l)
	return l.ID, nil
}

func (m *memStore) UpdateImportLog(_ context.Context, id int64, l ingest.Log) error {
	l.ID = id
	m.logs[id-1] = l
	return nil
}

func (m *memStore) QueryImportLogs(_ context.Context, limit int) ([]ingest.Log, error) {
	return m.logs, nil
}

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTracker(store *memStore) *Tracker {
	t := New(store, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.SetClock(func() time.Time { return testNow })
	return t
}

const benchCSV = `Date,Exercise Name,Weight,Reps
2024-03-01 07:30:00,Bench Press (Barbell),135,8
2024-03-01 07:30:00,Bench Press (Barbell),145,6
2024-03-01 07:30:00,Bench Press (Barbell),155,4
2024-03-01 07:30:00,Zercher Carry,65,10
`

// TestImportCSVCommits verifies an import appends the workout, updates the
// PR table, registers unmapped names as custom exercises, saves a snapshot
// and records a successful import log.
func TestImportCSVCommits(t *testing.T) {
	store := &memStore{}
	tr := newTracker(store)

	var last ingest.Progress
	res, err := tr.ImportCSV(context.Background(), benchCSV, func(p ingest.Progress) { last = p })
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.ImportedCount != 1 || last.Processed != 4 || last.Total != 4 {
		t.Errorf("imported=%d progress=%+v", res.ImportedCount, last)
	}
	if len(tr.Workouts()) != 1 {
		t.Fatalf("workouts = %d, want 1", len(tr.Workouts()))
	}

	recs := tr.Records()
	var bench models.PersonalRecord
	for _, r := range recs {
		if r.ExerciseID == "bench_press" {
			bench = r
		}
	}
	if bench.Weight != 155 || !bench.Imported {
		t.Errorf("bench PR = %+v, want 155 imported", bench)
	}
	if _, ok := tr.Exercise("zercher_carry"); !ok {
		t.Error("zercher_carry not registered as custom exercise")
	}

	if store.snap == nil || len(store.snap.Workouts) != 1 || len(store.snap.CustomExercises) != 1 {
		t.Errorf("snapshot not saved with workout and custom exercise: %+v", store.snap)
	}
	if len(store.logs) != 1 || store.logs[0].Status != ingest.StatusSuccess || store.logs[0].SetsImported != 4 {
		t.Errorf("import log = %+v", store.logs)
	}
}

// TestImportCSVValidationCommitsNothing verifies a header failure leaves
// history and the store untouched and logs the error.
func TestImportCSVValidationCommitsNothing(t *testing.T) {
	store := &memStore{}
	tr := newTracker(store)

	_, err := tr.ImportCSV(context.Background(), "Date,Exercise Name,Weight\n2024-03-01,Squat,100\n", nil)
	var verr *csvlog.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(tr.Workouts()) != 0 || store.saves != 0 {
		t.Errorf("workouts=%d saves=%d, want nothing committed", len(tr.Workouts()), store.saves)
	}
	if store.logs[0].Status != ingest.StatusError || store.logs[0].ErrorMessage == nil {
		t.Errorf("import log = %+v", store.logs[0])
	}
}

// TestImportCSVCancelled verifies a cancelled parse commits nothing.
func TestImportCSVCancelled(t *testing.T) {
	store := &memStore{}
	tr := newTracker(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.ImportCSV(ctx, benchCSV, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(tr.Workouts()) != 0 || len(tr.Records()) != 0 || store.saves != 0 {
		t.Error("cancelled import changed state")
	}
	if store.logs[0].Status != ingest.StatusCancelled {
		t.Errorf("status = %q, want cancelled", store.logs[0].Status)
	}
}

// TestImportCSVSaveFailure verifies a failed save after the commit returns
// the result alongside ErrImportNotSaved so the caller does not retry.
func TestImportCSVSaveFailure(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	tr := newTracker(store)

	res, err := tr.ImportCSV(context.Background(), benchCSV, nil)
	if !errors.Is(err, ErrImportNotSaved) {
		t.Fatalf("err = %v, want ErrImportNotSaved", err)
	}
	if res == nil || res.ImportedCount != 1 {
		t.Fatalf("result = %+v, want one imported workout", res)
	}
	if len(tr.Workouts()) != 1 {
		t.Errorf("workouts = %d, want 1 in history", len(tr.Workouts()))
	}
	l := store.logs[0]
	if l.Status != ingest.StatusError || l.ErrorMessage == nil || !strings.Contains(*l.ErrorMessage, "committed but not saved") {
		t.Errorf("import log = %+v", l)
	}
	if l.WorkoutsImported != 1 {
		t.Errorf("logged workouts = %d, want 1", l.WorkoutsImported)
	}
}

// TestEditPRThenRecalculate verifies a manual PR survives until the
// rebuild, which restores the logged maximum.
func TestEditPRThenRecalculate(t *testing.T) {
	tr := newTracker(&memStore{})
	ctx := context.Background()
	if _, err := tr.ImportCSV(ctx, benchCSV, nil); err != nil {
		t.Fatal(err)
	}
	rec, err := tr.EditPR(ctx, "bench_press", 200)
	if err != nil || rec.Weight != 200 || !rec.Edited {
		t.Fatalf("edit = %+v, %v", rec, err)
	}
	if _, err := tr.RecalculatePRsFromHistory(ctx); err != nil {
		t.Fatal(err)
	}
	for _, r := range tr.Records() {
		if r.ExerciseID == "bench_press" && (r.Weight != 155 || r.Edited) {
			t.Errorf("after rebuild = %+v, want 155 unedited", r)
		}
	}
}

func setupProgram(t *testing.T, tr *Tracker) {
	t.Helper()
	ctx := context.Background()
	err := tr.PutTemplate(ctx, models.Template{ID: "a", Name: "A", Exercises: []models.TemplateExercise{
		{ExerciseID: "squat", TargetSets: 3, TargetReps: models.RepRange{Low: 5, High: 5}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.UpdateProgramWizardData(ctx, program.WizardData{
		ID:            "sl",
		Name:          "Squat Focus",
		DurationWeeks: 2,
		CycleType:     models.CycleMicrocycle,
		Days: []models.ProgramDay{
			{Name: "Squat", TemplateID: "a"},
			{Name: "Rest", IsRest: true},
			{Name: "Squat", TemplateID: "a"},
		},
		ProgressionRules: []models.ProgressionRule{{ID: "lin", Config: models.Linear{WeightIncrement: 10, DeloadThreshold: 3, DeloadPercent: 0.1}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.StartProgram(ctx, "sl"); err != nil {
		t.Fatal(err)
	}
}

// TestProgramWorkoutAdvancesOnce verifies finishing a program day workout
// moves the cursor, that the cursor and processed ids survive a reload,
// and that the next prescription reflects the logged session.
func TestProgramWorkoutAdvancesOnce(t *testing.T) {
	store := &memStore{}
	tr := newTracker(store)
	setupProgram(t, tr)
	ctx := context.Background()

	active, err := tr.StartProgramWorkoutForDay(1)
	if err != nil {
		t.Fatal(err)
	}
	if active.Program == nil || active.Entries[0].ExerciseName != "Squat" {
		t.Fatalf("active workout = %+v", active)
	}
	for i := 0; i < 3; i++ {
		if _, err := tr.LogSet(ctx, 0, history.SetInput{Weight: 200, Reps: 5}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := tr.FinishWorkout(ctx); err != nil {
		t.Fatal(err)
	}

	st, _ := tr.ProgramState()
	if st.CurrentWeek != 1 || st.CurrentDay != 2 {
		t.Errorf("cursor = week %d day %d, want week 1 day 2", st.CurrentWeek, st.CurrentDay)
	}

	reloaded := newTracker(store)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	st2, ok := reloaded.ProgramState()
	if !ok || st2.CurrentDay != 2 {
		t.Errorf("reloaded cursor = %+v", st2)
	}
	if len(store.snap.ProcessedCompletions) != 1 {
		t.Errorf("processed = %v, want one id", store.snap.ProcessedCompletions)
	}

	rx, err := reloaded.Prescription("squat", "", -1)
	if err != nil {
		t.Fatal(err)
	}
	if rx.Rule != string(models.RuleLinear) || rx.Weight != 210 {
		t.Errorf("prescription = %+v, want linear at 210", rx)
	}
	if _, err := reloaded.Prescription("squat", "missing", -1); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("err = %v, want ErrUnknownRule", err)
	}
}

// TestAddCustomExerciseIdempotent verifies a second create is a no-op that
// does not save again.
func TestAddCustomExerciseIdempotent(t *testing.T) {
	store := &memStore{}
	tr := newTracker(store)
	ctx := context.Background()

	def, created, err := tr.AddCustomExercise(ctx, "Landmine Press", "")
	if err != nil || !created || def.ID != "landmine_press" || def.MuscleGroup != models.MuscleOther {
		t.Fatalf("first create = %+v %v %v", def, created, err)
	}
	if _, created, _ := tr.AddCustomExercise(ctx, "Landmine Press", models.MuscleShoulders); created {
		t.Error("second create reported created")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}
