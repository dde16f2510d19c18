package program

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func rng(lo, hi int) models.RepRange { return models.RepRange{Low: lo, High: hi} }

func pushTemplate() models.Template {
	return models.Template{ID: "push", Name: "Push", Exercises: []models.TemplateExercise{
		{ExerciseID: "bench_press", TargetSets: 3, TargetReps: rng(8, 12)},
		{ExerciseID: "overhead_press", TargetSets: 3, TargetReps: rng(5, 5), RuleID: "lin"},
	}}
}

// threeDayDraft is a 3-day microcycle: push, rest, push.
func threeDayDraft(weeks int) WizardData {
	return WizardData{
		ID:            "ppl",
		Name:          "Push Rest Push",
		DurationWeeks: weeks,
		CycleType:     models.CycleMicrocycle,
		Days: []models.ProgramDay{
			{Name: "Push A", TemplateID: "push"},
			{Name: "Rest", IsRest: true, TemplateID: "push"},
			{Name: "Push B", TemplateID: "push"},
		},
		DeloadFinalWeek: true,
		ProgressionRules: []models.ProgressionRule{
			{ID: "dp", Name: "Double", Config: models.DoubleProgression{RepRange: rng(8, 12), WeightIncrement: 5}},
			{ID: "lin", Name: "Linear", Config: models.Linear{WeightIncrement: 5, DeloadThreshold: 3, DeloadPercent: 0.1}},
		},
	}
}

func newScheduler(t *testing.T, weeks int) *Scheduler {
	t.Helper()
	s := New()
	s.SetClock(func() time.Time { return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC) })
	if err := s.PutTemplate(pushTemplate()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateProgramWizardData(threeDayDraft(weeks)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.StartProgram("ppl"); err != nil {
		t.Fatal(err)
	}
	return s
}

func scheduled(programID string, week, day int) models.Workout {
	return models.Workout{
		ID:      uuid.New(),
		Program: &models.ProgramPosition{ProgramID: programID, Week: week, Day: day},
	}
}

func cursor(s *Scheduler) [3]any {
	st, _ := s.State()
	return [3]any{st.CurrentWeek, st.CurrentDay, st.Completed}
}

// TestWizardMirrorsWeekOne verifies every week copies week 1's days and
// only the final week carries the deload flag.
func TestWizardMirrorsWeekOne(t *testing.T) {
	s := newScheduler(t, 4)
	p, ok := s.Program("ppl")
	if !ok {
		t.Fatal("program not stored")
	}
	if len(p.Weeks) != 4 {
		t.Fatalf("weeks = %d, want 4", len(p.Weeks))
	}
	for i, w := range p.Weeks {
		if diff := cmp.Diff(p.Weeks[0].Days, w.Days); diff != "" {
			t.Errorf("week %d days differ from week 1 (-want +got):\n%s", i+1, diff)
		}
		if w.IsDeload != (i == 3) {
			t.Errorf("week %d IsDeload = %v", i+1, w.IsDeload)
		}
	}
	if p.Weeks[0].Days[1].TemplateID != "" {
		t.Errorf("rest day kept template %q", p.Weeks[0].Days[1].TemplateID)
	}
	if p.Weeks[0].Days[2].DayNumber != 3 {
		t.Errorf("day number = %d, want 3", p.Weeks[0].Days[2].DayNumber)
	}
}

// TestWizardValidation rejects drafts with bad cycle lengths, durations or
// unknown templates.
func TestWizardValidation(t *testing.T) {
	seven := make([]models.ProgramDay, 7)
	for i := range seven {
		seven[i] = models.ProgramDay{Name: "d", IsRest: true}
	}
	tests := []struct {
		name   string
		mutate func(*WizardData)
	}{
		{"weekly needs 7 days", func(d *WizardData) { d.CycleType = models.CycleWeekly }},
		{"microcycle too short", func(d *WizardData) { d.Days = d.Days[:2] }},
		{"microcycle too long", func(d *WizardData) { d.Days = append(seven, seven[:4]...) }},
		{"zero weeks", func(d *WizardData) { d.DurationWeeks = 0 }},
		{"too many weeks", func(d *WizardData) { d.DurationWeeks = 53 }},
		{"missing name", func(d *WizardData) { d.Name = "" }},
		{"unknown template", func(d *WizardData) { d.Days[0].TemplateID = "legs" }},
		{"duplicate rule", func(d *WizardData) { d.ProgressionRules[1].ID = "dp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.PutTemplate(pushTemplate()); err != nil {
				t.Fatal(err)
			}
			d := threeDayDraft(2)
			tt.mutate(&d)
			if _, err := s.UpdateProgramWizardData(d); err == nil {
				t.Error("expected error")
			}
		})
	}

	s := New()
	d := threeDayDraft(2)
	d.CycleType = models.CycleWeekly
	d.Days = seven
	if _, err := s.UpdateProgramWizardData(d); err != nil {
		t.Errorf("weekly 7-day draft rejected: %v", err)
	}
}

// TestAdvanceWrapsAndClamps walks a two-week, three-day program to the end:
// the day wraps into the next week and advancing past the final week marks
// the program complete without wrapping.
func TestAdvanceWrapsAndClamps(t *testing.T) {
	s := newScheduler(t, 2)

	want := [][3]any{
		{1, 2, false}, {1, 3, false},
		{2, 1, false}, {2, 2, false}, {2, 3, false},
		{2, 3, true},
	}
	for i, w := range want {
		st, _ := s.State()
		moved, err := s.CompleteScheduledWorkout(scheduled("ppl", st.CurrentWeek, st.CurrentDay))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !moved {
			t.Fatalf("step %d: cursor did not move", i)
		}
		if got := cursor(s); got != w {
			t.Errorf("step %d: cursor = %v, want %v", i, got, w)
		}
	}

	moved, err := s.CompleteScheduledWorkout(scheduled("ppl", 2, 3))
	if err != nil || moved {
		t.Errorf("completion after end: moved=%v err=%v, want no-op", moved, err)
	}
	if got := cursor(s); got != [3]any{2, 3, true} {
		t.Errorf("cursor after end = %v", got)
	}
}

// TestCompleteAtMostOnce verifies a repeated completion event for the same
// workout advances the cursor only once.
func TestCompleteAtMostOnce(t *testing.T) {
	s := newScheduler(t, 2)
	w := scheduled("ppl", 1, 1)
	for i := 0; i < 3; i++ {
		if _, err := s.CompleteScheduledWorkout(w); err != nil {
			t.Fatal(err)
		}
	}
	if got := cursor(s); got != [3]any{1, 2, false} {
		t.Errorf("cursor = %v, want week 1 day 2", got)
	}
	if diff := cmp.Diff([]uuid.UUID{w.ID}, s.Processed()); diff != "" {
		t.Errorf("processed mismatch (-want +got):\n%s", diff)
	}
}

// TestCompleteIgnoresUnscheduled verifies workouts not started from the
// active program leave the cursor alone.
func TestCompleteIgnoresUnscheduled(t *testing.T) {
	s := newScheduler(t, 2)
	for _, w := range []models.Workout{{ID: uuid.New()}, scheduled("other", 1, 1)} {
		moved, err := s.CompleteScheduledWorkout(w)
		if err != nil || moved {
			t.Errorf("moved=%v err=%v, want no-op", moved, err)
		}
	}
	if got := cursor(s); got != [3]any{1, 1, false} {
		t.Errorf("cursor = %v", got)
	}
}

// TestCompleteLaterDay verifies finishing a later day of the current week
// moves the cursor past that day.
func TestCompleteLaterDay(t *testing.T) {
	s := newScheduler(t, 2)
	if _, err := s.CompleteScheduledWorkout(scheduled("ppl", 1, 3)); err != nil {
		t.Fatal(err)
	}
	if got := cursor(s); got != [3]any{2, 1, false} {
		t.Errorf("cursor = %v, want week 2 day 1", got)
	}
}

// TestNavigate verifies bounds checking on explicit navigation.
func TestNavigate(t *testing.T) {
	s := newScheduler(t, 2)
	if _, err := s.Navigate(2, 2); err != nil {
		t.Fatal(err)
	}
	if got := cursor(s); got != [3]any{2, 2, false} {
		t.Errorf("cursor = %v", got)
	}
	for _, pos := range [][2]int{{0, 1}, {3, 1}, {1, 0}, {1, 4}} {
		if _, err := s.Navigate(pos[0], pos[1]); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("Navigate(%d, %d) err = %v, want ErrInvalidPosition", pos[0], pos[1], err)
		}
	}
}

// TestNoActiveProgram verifies projections fail cleanly before a start.
func TestNoActiveProgram(t *testing.T) {
	s := New()
	if _, err := s.TodaysWorkout(nil); !errors.Is(err, ErrNoActiveProgram) {
		t.Errorf("err = %v, want ErrNoActiveProgram", err)
	}
	if _, err := s.StartProgram("missing"); !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("err = %v, want ErrUnknownProgram", err)
	}
}

// TestUpcomingWorkouts verifies the projection starts at the cursor, stops
// at the end of the program, resolves rules per exercise and leaves the
// cursor untouched.
func TestUpcomingWorkouts(t *testing.T) {
	s := newScheduler(t, 2)
	if _, err := s.Navigate(2, 2); err != nil {
		t.Fatal(err)
	}
	history := []models.Workout{{
		ID:        uuid.New(),
		StartTime: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Entries: []models.WorkoutExerciseEntry{{
			ExerciseID: "bench_press",
			Sets:       []models.SetRecord{{Weight: 135, Reps: 12}, {Weight: 135, Reps: 12}, {Weight: 135, Reps: 12}},
		}},
	}}

	days, err := s.UpcomingWorkouts(5, history)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2 (program ends)", len(days))
	}
	if !days[0].IsRest || days[0].Template != nil {
		t.Errorf("day 2 should be a rest day without template: %+v", days[0])
	}
	last := days[1]
	if last.Week != 2 || last.Day != 3 || !last.IsDeload {
		t.Errorf("last day = week %d day %d deload %v", last.Week, last.Day, last.IsDeload)
	}
	if len(last.Prescriptions) != 2 {
		t.Fatalf("prescriptions = %d, want 2", len(last.Prescriptions))
	}
	if p := last.Prescriptions[0]; p.Rule != string(models.RuleDoubleProgression) || p.Weight != 140 {
		t.Errorf("bench prescription = %+v, want double_progression at 140", p)
	}
	if p := last.Prescriptions[1]; p.Rule != string(models.RuleLinear) || p.HasHistory {
		t.Errorf("ohp prescription = %+v, want linear without history", p)
	}
	if got := cursor(s); got != [3]any{2, 2, false} {
		t.Errorf("projection moved cursor to %v", got)
	}
}

// TestWorkoutForDay verifies a planned workout carries target hints and
// the program position, and that rest days are refused.
func TestWorkoutForDay(t *testing.T) {
	s := newScheduler(t, 2)
	pw, err := s.WorkoutForDay(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pw.Position != (models.ProgramPosition{ProgramID: "ppl", Week: 1, Day: 3}) {
		t.Errorf("position = %+v", pw.Position)
	}
	if pw.Name != "Push B" || len(pw.Entries) != 2 {
		t.Fatalf("planned = %+v", pw)
	}
	if got := pw.Entries[0].TargetReps; got == nil || *got != rng(8, 12) {
		t.Errorf("bench target = %v, want 8-12", got)
	}
	if _, err := s.WorkoutForDay(2, nil); !errors.Is(err, ErrRestDay) {
		t.Errorf("rest day err = %v, want ErrRestDay", err)
	}
}

// TestRuleFor verifies the rule lookup falls back to the program's first
// rule and then to none.
func TestRuleFor(t *testing.T) {
	p, err := threeDayDraft(1).Build()
	if err != nil {
		t.Fatal(err)
	}
	if r := RuleFor(p, models.TemplateExercise{RuleID: "lin"}); r.ID != "lin" {
		t.Errorf("explicit rule = %s, want lin", r.ID)
	}
	if r := RuleFor(p, models.TemplateExercise{RuleID: "missing"}); r.ID != "dp" {
		t.Errorf("fallback rule = %s, want dp", r.ID)
	}
	p.ProgressionRules = nil
	if r := RuleFor(p, models.TemplateExercise{}); r.ConfigOrNone().Type() != models.RuleNone {
		t.Errorf("empty program rule = %s, want none", r.ConfigOrNone().Type())
	}
}

const definitionsYAML = `
templates:
  - id: legs
    name: Legs
    exercises:
      - exercise_id: squat
        target_sets: 5
        target_reps: "5"
        rule_id: sl
      - exercise_id: leg_curl
        target_sets: 3
        target_reps: "10-15"
programs:
  - id: legs-weekly
    name: Legs Weekly
    duration_weeks: 3
    cycle_type: weekly
    deload_final_week: true
    days:
      - {name: Legs, template_id: legs}
      - {name: Rest, is_rest: true}
      - {name: Rest, is_rest: true}
      - {name: Legs, template_id: legs}
      - {name: Rest, is_rest: true}
      - {name: Rest, is_rest: true}
      - {name: Rest, is_rest: true}
    progression_rules:
      - id: sl
        name: Strength linear
        config:
          type: linear
          weight_increment: 10
          deload_threshold: 3
          deload_percent: 0.1
`

// TestLoadDefinitions verifies templates and programs load from YAML with
// rep ranges and rule configs decoded.
func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.yaml")
	if err := os.WriteFile(path, []byte(definitionsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	defs, err := LoadDefinitions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := New()
	if err := s.Apply(defs); err != nil {
		t.Fatalf("apply: %v", err)
	}
	tpl, ok := s.Template("legs")
	if !ok || tpl.Exercises[1].TargetReps != rng(10, 15) {
		t.Fatalf("template = %+v", tpl)
	}
	p, ok := s.Program("legs-weekly")
	if !ok {
		t.Fatal("program not loaded")
	}
	if len(p.Weeks) != 3 || !p.Weeks[2].IsDeload || p.CycleLength() != 7 {
		t.Errorf("program shape = %d weeks, cycle %d", len(p.Weeks), p.CycleLength())
	}
	lin, ok := p.Rule("sl")
	if !ok {
		t.Fatal("rule sl missing")
	}
	if c, ok := lin.Config.(models.Linear); !ok || c.WeightIncrement != 10 {
		t.Errorf("rule config = %#v", lin.Config)
	}
}

// TestExampleDefinitions keeps the shipped example file loadable.
func TestExampleDefinitions(t *testing.T) {
	defs, err := LoadDefinitions("../../programs.example.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := New()
	if err := s.Apply(defs); err != nil {
		t.Fatalf("apply: %v", err)
	}
	p, ok := s.Program("upper_lower")
	if !ok || len(p.Weeks) != 8 || !p.Weeks[7].IsDeload {
		t.Fatalf("program = %+v", p)
	}
	if len(p.ProgressionRules) != 3 {
		t.Errorf("rules = %d, want 3", len(p.ProgressionRules))
	}
}
