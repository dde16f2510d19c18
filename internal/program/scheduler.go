// Package program maps the active program cursor to weeks, days and
// templates, advances it as scheduled workouts complete, and projects
// upcoming days with progression previews.
package program

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progression"
	"github.com/google/uuid"
)

var (
	ErrUnknownProgram  = errors.New("unknown program")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNoActiveProgram = errors.New("no active program")
	ErrInvalidPosition = errors.New("invalid program position")
	ErrRestDay         = errors.New("day is a rest day")
	ErrInvalidProgram  = errors.New("invalid program")
	ErrInvalidTemplate = errors.New("invalid template")
)

// Scheduler owns program and template definitions plus the active program
// cursor. It is not safe for concurrent use; callers serialize access.
type Scheduler struct {
	programs  map[string]models.Program
	templates map[string]models.Template
	state     *models.ActiveProgramState
	processed map[uuid.UUID]bool
	now       func() time.Time
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		programs:  make(map[string]models.Program),
		templates: make(map[string]models.Template),
		processed: make(map[uuid.UUID]bool),
		now:       time.Now,
	}
}

// SetClock overrides the time source.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Restore replaces all scheduler state, as loaded from a snapshot.
// Invalid programs are rejected as a whole.
func (s *Scheduler) Restore(programs []models.Program, templates []models.Template, state *models.ActiveProgramState, processed []uuid.UUID) error {
	progs := make(map[string]models.Program, len(programs))
	for _, p := range programs {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("restoring programs: %w", err)
		}
		progs[p.ID] = p
	}
	s.programs = progs
	s.templates = make(map[string]models.Template, len(templates))
	for _, t := range templates {
		s.templates[t.ID] = t
	}
	s.state = nil
	if state != nil {
		cp := *state
		s.state = &cp
	}
	s.processed = make(map[uuid.UUID]bool, len(processed))
	for _, id := range processed {
		s.processed[id] = true
	}
	return nil
}

// PutTemplate adds or replaces a template.
func (s *Scheduler) PutTemplate(t models.Template) error {
	if t.ID == "" {
		return fmt.Errorf("template id is required: %w", ErrInvalidTemplate)
	}
	for i, te := range t.Exercises {
		if te.ExerciseID == "" {
			return fmt.Errorf("template %s exercise %d: exercise_id is required: %w", t.ID, i, ErrInvalidTemplate)
		}
		if !te.TargetReps.Valid() {
			return fmt.Errorf("template %s exercise %s: target reps: %w", t.ID, te.ExerciseID, ErrInvalidTemplate)
		}
	}
	s.templates[t.ID] = t
	return nil
}

// PutProgram adds or replaces a validated program.
func (s *Scheduler) PutProgram(p models.Program) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.programs[p.ID] = p
	return nil
}

// Templates returns all templates sorted by id.
func (s *Scheduler) Templates() []models.Template {
	out := make([]models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Template returns a template by id.
func (s *Scheduler) Template(id string) (models.Template, bool) {
	t, ok := s.templates[id]
	return t, ok
}

// Programs returns all programs sorted by id.
func (s *Scheduler) Programs() []models.Program {
	out := make([]models.Program, 0, len(s.programs))
	for _, p := range s.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Program returns a program by id.
func (s *Scheduler) Program(id string) (models.Program, bool) {
	p, ok := s.programs[id]
	return p, ok
}

// State returns a copy of the cursor.
func (s *Scheduler) State() (models.ActiveProgramState, bool) {
	if s.state == nil {
		return models.ActiveProgramState{}, false
	}
	return *s.state, true
}

// Processed returns the workout ids that have already advanced the cursor.
func (s *Scheduler) Processed() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.processed))
	for id := range s.processed {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// StartProgram puts the cursor on week 1, day 1 of the program.
func (s *Scheduler) StartProgram(id string) (models.ActiveProgramState, error) {
	if _, ok := s.programs[id]; !ok {
		return models.ActiveProgramState{}, fmt.Errorf("starting program %s: %w", id, ErrUnknownProgram)
	}
	s.state = &models.ActiveProgramState{
		ProgramID:   id,
		CurrentWeek: 1,
		CurrentDay:  1,
		StartedAt:   s.now(),
	}
	s.processed = make(map[uuid.UUID]bool)
	return *s.state, nil
}

// StopProgram clears the cursor.
func (s *Scheduler) StopProgram() {
	s.state = nil
	s.processed = make(map[uuid.UUID]bool)
}

func (s *Scheduler) active() (models.Program, *models.ActiveProgramState, error) {
	if s.state == nil {
		return models.Program{}, nil, ErrNoActiveProgram
	}
	p, ok := s.programs[s.state.ProgramID]
	if !ok {
		return models.Program{}, nil, fmt.Errorf("active program %s: %w", s.state.ProgramID, ErrUnknownProgram)
	}
	return p, s.state, nil
}

// CompleteScheduledWorkout advances the cursor for a finished workout that
// was started from the active program. Each workout id advances the cursor
// at most once; repeats, workouts from other programs and calls after the
// program is complete are no-ops. It reports whether the cursor moved.
//
// A workout for a later day of the current week moves the cursor past that
// day. Past the last day the cursor moves to day 1 of the next week; past
// the final week the program is marked complete and the cursor stays on
// its last day.
func (s *Scheduler) CompleteScheduledWorkout(w models.Workout) (bool, error) {
	if w.Program == nil {
		return false, nil
	}
	p, st, err := s.active()
	if err != nil {
		return false, err
	}
	if w.Program.ProgramID != st.ProgramID || st.Completed || s.processed[w.ID] {
		return false, nil
	}
	s.processed[w.ID] = true

	day := st.CurrentDay
	if w.Program.Week == st.CurrentWeek && w.Program.Day > day && w.Program.Day <= p.CycleLength() {
		day = w.Program.Day
	}
	week := st.CurrentWeek
	day++
	if day > p.CycleLength() {
		day = 1
		week++
	}
	if week > p.DurationWeeks {
		st.Completed = true
		st.CurrentWeek = p.DurationWeeks
		st.CurrentDay = p.CycleLength()
		return true, nil
	}
	st.CurrentWeek, st.CurrentDay = week, day
	return true, nil
}

// Navigate moves the cursor explicitly. Moving clears the completed flag.
func (s *Scheduler) Navigate(week, day int) (models.ActiveProgramState, error) {
	p, st, err := s.active()
	if err != nil {
		return models.ActiveProgramState{}, err
	}
	if week < 1 || week > p.DurationWeeks || day < 1 || day > p.CycleLength() {
		return models.ActiveProgramState{}, fmt.Errorf("week %d day %d: %w", week, day, ErrInvalidPosition)
	}
	st.CurrentWeek, st.CurrentDay, st.Completed = week, day, false
	return *st, nil
}

// ScheduledDay is one program day resolved to its template and, for
// training days, a prescription per template exercise.
type ScheduledDay struct {
	ProgramID     string                     `json:"program_id"`
	Week          int                        `json:"week"`
	Day           int                        `json:"day"`
	Name          string                     `json:"name"`
	IsRest        bool                       `json:"is_rest"`
	IsDeload      bool                       `json:"is_deload"`
	Template      *models.Template           `json:"template,omitempty"`
	Prescriptions []progression.Prescription `json:"prescriptions,omitempty"`
}

// RuleFor returns the progression rule governing a template exercise: its
// own RuleID when that names a program rule, else the program's first rule,
// else none.
func RuleFor(p models.Program, te models.TemplateExercise) models.ProgressionRule {
	if te.RuleID != "" {
		if r, ok := p.Rule(te.RuleID); ok {
			return r
		}
	}
	if len(p.ProgressionRules) > 0 {
		return p.ProgressionRules[0]
	}
	return models.ProgressionRule{ID: string(models.RuleNone), Config: models.NoProgression{}}
}

func (s *Scheduler) resolve(p models.Program, week, day int, history []models.Workout) ScheduledDay {
	w := p.Weeks[week-1]
	d := w.Days[day-1]
	sd := ScheduledDay{
		ProgramID: p.ID,
		Week:      week,
		Day:       day,
		Name:      d.Name,
		IsRest:    d.IsRest,
		IsDeload:  w.IsDeload,
	}
	if d.IsRest || d.TemplateID == "" {
		return sd
	}
	t, ok := s.templates[d.TemplateID]
	if !ok {
		return sd
	}
	sd.Template = &t
	for _, te := range t.Exercises {
		sd.Prescriptions = append(sd.Prescriptions, progression.Compute(RuleFor(p, te), progression.Request{
			ExerciseID: te.ExerciseID,
			SetIndex:   -1,
			TargetReps: te.TargetReps,
			TargetSets: te.TargetSets,
		}, history))
	}
	return sd
}

// TodaysWorkout resolves the day under the cursor. It does not move the
// cursor.
func (s *Scheduler) TodaysWorkout(history []models.Workout) (ScheduledDay, error) {
	p, st, err := s.active()
	if err != nil {
		return ScheduledDay{}, err
	}
	return s.resolve(p, st.CurrentWeek, st.CurrentDay, history), nil
}

// UpcomingWorkouts resolves up to n days starting with the cursor's day,
// stopping at the end of the program. Previews are all computed from the
// current history. A completed program has no upcoming days.
func (s *Scheduler) UpcomingWorkouts(n int, history []models.Workout) ([]ScheduledDay, error) {
	p, st, err := s.active()
	if err != nil {
		return nil, err
	}
	out := []ScheduledDay{}
	if st.Completed {
		return out, nil
	}
	week, day := st.CurrentWeek, st.CurrentDay
	for len(out) < n && week <= p.DurationWeeks {
		out = append(out, s.resolve(p, week, day, history))
		day++
		if day > p.CycleLength() {
			day = 1
			week++
		}
	}
	return out, nil
}

// PlannedWorkout is a template day turned into workout entries ready to
// log, with the preview carried on each entry as target hints.
type PlannedWorkout struct {
	Name     string
	Entries  []models.WorkoutExerciseEntry
	Position models.ProgramPosition
}

// WorkoutForDay plans the given day of the cursor's current week.
func (s *Scheduler) WorkoutForDay(day int, history []models.Workout) (PlannedWorkout, error) {
	p, st, err := s.active()
	if err != nil {
		return PlannedWorkout{}, err
	}
	if day < 1 || day > p.CycleLength() {
		return PlannedWorkout{}, fmt.Errorf("day %d: %w", day, ErrInvalidPosition)
	}
	sd := s.resolve(p, st.CurrentWeek, day, history)
	if sd.IsRest {
		return PlannedWorkout{}, fmt.Errorf("day %d: %w", day, ErrRestDay)
	}
	if sd.Template == nil {
		return PlannedWorkout{}, fmt.Errorf("day %d template %q: %w", day, p.Weeks[st.CurrentWeek-1].Days[day-1].TemplateID, ErrUnknownTemplate)
	}

	pw := PlannedWorkout{
		Name:     sd.Name,
		Position: models.ProgramPosition{ProgramID: p.ID, Week: st.CurrentWeek, Day: day},
	}
	if pw.Name == "" {
		pw.Name = sd.Template.Name
	}
	for i, te := range sd.Template.Exercises {
		rx := sd.Prescriptions[i]
		target := models.RepRange{Low: rx.RepLow, High: rx.RepHigh}
		if !target.Valid() {
			target = te.TargetReps
		}
		entry := models.WorkoutExerciseEntry{
			ExerciseID: te.ExerciseID,
			TargetReps: &target,
			TargetRPE:  te.TargetRPE,
		}
		if entry.TargetRPE == nil {
			entry.TargetRPE = rx.TargetRPE
		}
		pw.Entries = append(pw.Entries, entry)
	}
	return pw, nil
}
