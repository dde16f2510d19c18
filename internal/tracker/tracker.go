// Package tracker is the application state object. It composes the
// exercise catalog, workout history, program scheduler and CSV importer
// behind a single lock and writes a snapshot through after every mutation.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/csvlog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/progression"
	"github.com/google/uuid"
)

var (
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrUnknownRule     = errors.New("unknown progression rule")
)

// Store persists snapshots and import logs. Load returns nil, nil when
// nothing has been saved yet. *storage.DB and *localstore.Store satisfy it.
type Store interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	InsertImportLog(ctx context.Context, l ingest.Log) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, l ingest.Log) error
	QueryImportLogs(ctx context.Context, limit int) ([]ingest.Log, error)
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	cat      *catalog.Catalog
	hist     *history.Store
	sched    *program.Scheduler
	importer *csvlog.Importer
	store    Store
	log      *slog.Logger
	now      func() time.Time

	profile      json.RawMessage
	achievements json.RawMessage
	campaigns    json.RawMessage
}

// New creates a tracker over the built-in catalog. store may be nil for a
// purely in-memory tracker.
func New(store Store, batchSize int, log *slog.Logger) *Tracker {
	cat := catalog.New()
	return &Tracker{
		cat:      cat,
		hist:     history.New(cat),
		sched:    program.New(),
		importer: csvlog.NewImporter(cat, batchSize, log),
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the time source of every component.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
	t.hist.SetClock(now)
	t.sched.SetClock(now)
}

// Load restores state from the store. Custom exercises are registered
// before anything that may reference them.
func (t *Tracker) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	snap, err := t.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if snap == nil {
		t.log.Info("no snapshot found, starting empty")
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ce := range snap.CustomExercises {
		t.cat.AddCustom(ce)
	}
	t.hist.Restore(snap.Workouts, snap.Records)
	if err := t.sched.Restore(snap.Programs, snap.Templates, snap.ActiveProgram, snap.ProcessedCompletions); err != nil {
		return err
	}
	t.profile, t.achievements, t.campaigns = snap.Profile, snap.Achievements, snap.Campaigns
	t.log.Info("snapshot loaded",
		"workouts", len(snap.Workouts),
		"records", len(snap.Records),
		"custom_exercises", len(snap.CustomExercises),
		"programs", len(snap.Programs),
	)
	return nil
}

// Snapshot returns the full persisted state.
func (t *Tracker) Snapshot() *models.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tracker) snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Profile:              t.profile,
		Workouts:             t.hist.Workouts(),
		Records:              t.hist.Records(),
		Achievements:         t.achievements,
		CustomExercises:      t.cat.Customs(),
		Templates:            t.sched.Templates(),
		Campaigns:            t.campaigns,
		Programs:             t.sched.Programs(),
		ProcessedCompletions: t.sched.Processed(),
	}
	if st, ok := t.sched.State(); ok {
		snap.ActiveProgram = &st
	}
	return snap
}

// persist writes the snapshot. Callers hold mu. In-memory state is already
// updated when this fails; the next successful save carries it.
func (t *Tracker) persist(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.SaveSnapshot(ctx, t.snapshot()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// --- Catalog ---

// MatchExercise resolves a free-text name to an exercise.
func (t *Tracker) MatchExercise(name string) (models.ExerciseDefinition, bool) {
	id, ok := t.cat.Match(name)
	if !ok {
		return models.ExerciseDefinition{}, false
	}
	return t.cat.Exercise(id)
}

// Exercise is the catalog lookup by id.
func (t *Tracker) Exercise(id string) (models.ExerciseDefinition, bool) {
	return t.cat.Exercise(id)
}

// Exercises returns built-in then custom exercises.
func (t *Tracker) Exercises() []models.ExerciseDefinition {
	return t.cat.All()
}

// Substitutes returns interchangeable exercises for id.
func (t *Tracker) Substitutes(id string) []string {
	return t.cat.Substitutes(id)
}

// AddCustomExercise creates a custom exercise. An empty muscle group means
// "other". Creating an existing id is a no-op that still returns it.
func (t *Tracker) AddCustomExercise(ctx context.Context, name, muscle string) (models.ExerciseDefinition, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, created, err := t.cat.AddCustomExerciseWithMuscle(name, muscle)
	if err != nil {
		return models.ExerciseDefinition{}, false, err
	}
	def, _ := t.cat.Exercise(id)
	if !created {
		return def, false, nil
	}
	return def, true, t.persist(ctx)
}

// --- History queries ---

func (t *Tracker) Workouts() []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.Workouts()
}

func (t *Tracker) Records() []models.PersonalRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.RecordList()
}

func (t *Tracker) SummaryStats(periodDays int) history.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.SummaryStats(periodDays)
}

func (t *Tracker) VolumeByWeek(n int) []history.WeekVolume {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.VolumeByWeek(n)
}

func (t *Tracker) VolumeByMuscle() []history.MuscleVolume {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.VolumeByMuscle()
}

func (t *Tracker) ExerciseProgressData(exerciseID string) []history.ProgressPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.ExerciseProgressData(exerciseID)
}

func (t *Tracker) StrengthProgress(exerciseID string) history.StrengthProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.StrengthProgress(exerciseID)
}

// --- Records ---

// EditPR manually overrides a personal record.
func (t *Tracker) EditPR(ctx context.Context, exerciseID string, weight float64) (models.PersonalRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, err := t.hist.EditPR(exerciseID, weight)
	if err != nil {
		return models.PersonalRecord{}, err
	}
	return rec, t.persist(ctx)
}

// RecalculatePRsFromHistory rebuilds every record from stored workouts.
func (t *Tracker) RecalculatePRsFromHistory(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.hist.RecalculatePRsFromHistory()
	t.log.Info("personal records rebuilt", "records", n)
	return n, t.persist(ctx)
}

// --- Active workout ---

// ActiveWorkout returns the workout being logged.
func (t *Tracker) ActiveWorkout() (history.ActiveWorkout, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.Active()
}

// StartWorkout begins an empty manual workout.
func (t *Tracker) StartWorkout(name string) (history.ActiveWorkout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.hist.StartWorkout(name, nil, nil); err != nil {
		return history.ActiveWorkout{}, err
	}
	a, _ := t.hist.Active()
	return a, nil
}

// AddExercise appends a catalog exercise to the active workout.
func (t *Tracker) AddExercise(exerciseID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	def, ok := t.cat.Exercise(exerciseID)
	if !ok {
		return 0, fmt.Errorf("exercise %s: %w", exerciseID, ErrUnknownExercise)
	}
	return t.hist.AddExercise(def.ID, def.Name)
}

// LogSet logs a set and may raise the exercise's PR. The PR table is
// persisted immediately; the workout itself is only stored on finish.
func (t *Tracker) LogSet(ctx context.Context, entry int, in history.SetInput) (models.SetRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, err := t.hist.LogSet(entry, in)
	if err != nil {
		return models.SetRecord{}, err
	}
	return set, t.persist(ctx)
}

func (t *Tracker) UpdateSet(ctx context.Context, entry, setIdx int, in history.SetInput) (models.SetRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, err := t.hist.UpdateSet(entry, setIdx, in)
	if err != nil {
		return models.SetRecord{}, err
	}
	return set, t.persist(ctx)
}

func (t *Tracker) RemoveSet(entry, setIdx int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.RemoveSet(entry, setIdx)
}

// FinishWorkout stores the active workout. A workout started from a
// program day advances the program cursor once.
func (t *Tracker) FinishWorkout(ctx context.Context) (models.Workout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, err := t.hist.FinishWorkout()
	if err != nil {
		return models.Workout{}, err
	}
	if w.Program != nil {
		moved, err := t.sched.CompleteScheduledWorkout(w)
		if err != nil {
			t.log.Warn("program cursor not advanced", "workout_id", w.ID, "error", err)
		} else if moved {
			st, _ := t.sched.State()
			t.log.Info("program advanced", "program_id", st.ProgramID, "week", st.CurrentWeek, "day", st.CurrentDay, "completed", st.Completed)
		}
	}
	return w, t.persist(ctx)
}

func (t *Tracker) DiscardWorkout() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hist.DiscardWorkout()
}

// DeleteWorkout removes a stored workout.
func (t *Tracker) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.hist.DeleteWorkout(id); err != nil {
		return err
	}
	return t.persist(ctx)
}

// ReplaceWorkout stores an edited workout under its existing id.
func (t *Tracker) ReplaceWorkout(ctx context.Context, w models.Workout) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.hist.ReplaceWorkout(w); err != nil {
		return err
	}
	return t.persist(ctx)
}

// --- Programs ---

func (t *Tracker) Programs() []models.Program {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.Programs()
}

func (t *Tracker) Templates() []models.Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.Templates()
}

// ProgramState returns the active program cursor.
func (t *Tracker) ProgramState() (models.ActiveProgramState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.State()
}

// ApplyDefinitions registers templates and programs loaded from YAML.
func (t *Tracker) ApplyDefinitions(ctx context.Context, defs *program.Definitions) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.sched.Apply(defs); err != nil {
		return err
	}
	return t.persist(ctx)
}

// PutTemplate adds or replaces a template.
func (t *Tracker) PutTemplate(ctx context.Context, tpl models.Template) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.sched.PutTemplate(tpl); err != nil {
		return err
	}
	return t.persist(ctx)
}

func (t *Tracker) StartProgram(ctx context.Context, id string) (models.ActiveProgramState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.sched.StartProgram(id)
	if err != nil {
		return models.ActiveProgramState{}, err
	}
	t.log.Info("program started", "program_id", id)
	return st, t.persist(ctx)
}

func (t *Tracker) NavigateProgram(ctx context.Context, week, day int) (models.ActiveProgramState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.sched.Navigate(week, day)
	if err != nil {
		return models.ActiveProgramState{}, err
	}
	return st, t.persist(ctx)
}

func (t *Tracker) UpdateProgramWizardData(ctx context.Context, d program.WizardData) (models.Program, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.sched.UpdateProgramWizardData(d)
	if err != nil {
		return models.Program{}, err
	}
	return p, t.persist(ctx)
}

func (t *Tracker) TodaysWorkout() (program.ScheduledDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.TodaysWorkout(t.hist.Workouts())
}

func (t *Tracker) UpcomingWorkouts(days int) ([]program.ScheduledDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.UpcomingWorkouts(days, t.hist.Workouts())
}

// StartProgramWorkoutForDay starts a workout pre-populated from a day of
// the active program's current week.
func (t *Tracker) StartProgramWorkoutForDay(day int) (history.ActiveWorkout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pw, err := t.sched.WorkoutForDay(day, t.hist.Workouts())
	if err != nil {
		return history.ActiveWorkout{}, err
	}
	for i := range pw.Entries {
		pw.Entries[i].ExerciseName = t.cat.Name(pw.Entries[i].ExerciseID)
	}
	pos := pw.Position
	if err := t.hist.StartWorkout(pw.Name, pw.Entries, &pos); err != nil {
		return history.ActiveWorkout{}, err
	}
	a, _ := t.hist.Active()
	return a, nil
}

// Prescription computes the next prescription for one exercise. ruleID
// picks a rule from any program; empty uses the rule the active program
// assigns the exercise, or none when it is not scheduled.
func (t *Tracker) Prescription(exerciseID, ruleID string, setIndex int) (progression.Prescription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	req := progression.Request{ExerciseID: exerciseID, SetIndex: setIndex}
	rule := models.ProgressionRule{ID: string(models.RuleNone)}

	if st, ok := t.sched.State(); ok {
		if p, ok := t.sched.Program(st.ProgramID); ok {
			if te, ok := t.templateExercise(p, exerciseID); ok {
				rule = program.RuleFor(p, te)
				req.TargetReps, req.TargetSets = te.TargetReps, te.TargetSets
			}
		}
	}
	if ruleID != "" {
		found := false
		for _, p := range t.sched.Programs() {
			if r, ok := p.Rule(ruleID); ok {
				rule, found = r, true
				break
			}
		}
		if !found {
			return progression.Prescription{}, fmt.Errorf("rule %s: %w", ruleID, ErrUnknownRule)
		}
	}
	return progression.Compute(rule, req, t.hist.Workouts()), nil
}

// templateExercise finds the first template entry for an exercise among
// the program's training days.
func (t *Tracker) templateExercise(p models.Program, exerciseID string) (models.TemplateExercise, bool) {
	if len(p.Weeks) == 0 {
		return models.TemplateExercise{}, false
	}
	for _, d := range p.Weeks[0].Days {
		if d.IsRest {
			continue
		}
		tpl, ok := t.sched.Template(d.TemplateID)
		if !ok {
			continue
		}
		for _, te := range tpl.Exercises {
			if te.ExerciseID == exerciseID {
				return te, true
			}
		}
	}
	return models.TemplateExercise{}, false
}
