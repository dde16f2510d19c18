// Package history holds completed workouts, the in-progress workout, the
// personal record table and the statistics derived from them.
package history

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNoActiveWorkout   = errors.New("no active workout")
	ErrWorkoutInProgress = errors.New("a workout is already in progress")
	ErrEmptyWorkout      = errors.New("workout has no logged sets")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrWorkoutNotFound   = errors.New("workout not found")

	ErrInvalidReps   = errors.New("reps must be a positive integer")
	ErrInvalidWeight = errors.New("weight must be a non-negative number")
	ErrInvalidRPE    = errors.New("rpe must be between 1 and 10 in steps of 0.5")
)

// Catalog provides the exercise facts the store needs.
type Catalog interface {
	MuscleGroup(exerciseID string) string
	SetXP(exerciseID string, weight float64, reps int) int
}

// SetInput is a set as entered by the user.
type SetInput struct {
	Weight   float64  `json:"weight"`
	Reps     int      `json:"reps"`
	RPE      *float64 `json:"rpe,omitempty"`
	IsWarmup bool     `json:"is_warmup,omitempty"`
}

// Validate checks the input against the set invariants.
func (in SetInput) Validate() error {
	if in.Reps <= 0 {
		return ErrInvalidReps
	}
	if in.Weight < 0 || math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return ErrInvalidWeight
	}
	if in.RPE != nil {
		r := *in.RPE
		if r < 1 || r > 10 || r*2 != math.Trunc(r*2) {
			return ErrInvalidRPE
		}
	}
	return nil
}

// ActiveWorkout is a workout being logged.
type ActiveWorkout struct {
	Name      string                        `json:"name,omitempty"`
	StartTime time.Time                     `json:"start_time"`
	Entries   []models.WorkoutExerciseEntry `json:"entries"`
	Program   *models.ProgramPosition       `json:"program,omitempty"`
}

// Store is the workout history. It is not safe for concurrent use; callers
// serialize access.
type Store struct {
	cat      Catalog
	now      func() time.Time
	workouts []models.Workout
	records  map[string]models.PersonalRecord
	active   *ActiveWorkout
}

// New returns an empty store.
func New(cat Catalog) *Store {
	return &Store{
		cat:     cat,
		now:     time.Now,
		records: make(map[string]models.PersonalRecord),
	}
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Restore replaces the stored workouts and records, as loaded from a
// snapshot. The active workout is cleared.
func (s *Store) Restore(workouts []models.Workout, records map[string]models.PersonalRecord) {
	s.workouts = append([]models.Workout(nil), workouts...)
	s.records = make(map[string]models.PersonalRecord, len(records))
	for id, r := range records {
		s.records[id] = r
	}
	s.active = nil
}

// Workouts returns all stored workouts ordered by start time.
func (s *Store) Workouts() []models.Workout {
	return chronological(s.workouts)
}

// Workout returns a stored workout by id.
func (s *Store) Workout(id uuid.UUID) (models.Workout, bool) {
	for _, w := range s.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return models.Workout{}, false
}

// Active returns a copy of the in-progress workout.
func (s *Store) Active() (ActiveWorkout, bool) {
	if s.active == nil {
		return ActiveWorkout{}, false
	}
	cp := *s.active
	cp.Entries = make([]models.WorkoutExerciseEntry, len(s.active.Entries))
	for i, e := range s.active.Entries {
		e.Sets = append([]models.SetRecord(nil), e.Sets...)
		cp.Entries[i] = e
	}
	return cp, true
}

// StartWorkout begins a new workout with optional pre-populated entries.
func (s *Store) StartWorkout(name string, entries []models.WorkoutExerciseEntry, pos *models.ProgramPosition) error {
	if s.active != nil {
		return ErrWorkoutInProgress
	}
	s.active = &ActiveWorkout{
		Name:      name,
		StartTime: s.now(),
		Entries:   append([]models.WorkoutExerciseEntry(nil), entries...),
		Program:   pos,
	}
	return nil
}

// AddExercise appends an exercise to the active workout and returns its
// entry index.
func (s *Store) AddExercise(exerciseID, name string) (int, error) {
	if s.active == nil {
		return 0, ErrNoActiveWorkout
	}
	s.active.Entries = append(s.active.Entries, models.WorkoutExerciseEntry{ExerciseID: exerciseID, ExerciseName: name})
	return len(s.active.Entries) - 1, nil
}

func (s *Store) entry(idx int) (*models.WorkoutExerciseEntry, error) {
	if s.active == nil {
		return nil, ErrNoActiveWorkout
	}
	if idx < 0 || idx >= len(s.active.Entries) {
		return nil, fmt.Errorf("entry %d: %w", idx, ErrIndexOutOfRange)
	}
	return &s.active.Entries[idx], nil
}

func (s *Store) newSet(exerciseID string, in SetInput) models.SetRecord {
	return models.SetRecord{
		Weight:    in.Weight,
		Reps:      in.Reps,
		RPE:       in.RPE,
		IsWarmup:  in.IsWarmup,
		Timestamp: s.now(),
		XP:        s.cat.SetXP(exerciseID, in.Weight, in.Reps),
	}
}

// LogSet appends a set to an entry of the active workout and applies the
// candidate PR update.
func (s *Store) LogSet(entryIdx int, in SetInput) (models.SetRecord, error) {
	if err := in.Validate(); err != nil {
		return models.SetRecord{}, err
	}
	e, err := s.entry(entryIdx)
	if err != nil {
		return models.SetRecord{}, err
	}
	set := s.newSet(e.ExerciseID, in)
	e.Sets = append(e.Sets, set)
	s.observe(e.ExerciseID, set, false)
	return set, nil
}

// UpdateSet replaces a logged set. A heavier weight updates the PR; a
// lighter one leaves it until RecalculatePRsFromHistory.
func (s *Store) UpdateSet(entryIdx, setIdx int, in SetInput) (models.SetRecord, error) {
	if err := in.Validate(); err != nil {
		return models.SetRecord{}, err
	}
	e, err := s.entry(entryIdx)
	if err != nil {
		return models.SetRecord{}, err
	}
	if setIdx < 0 || setIdx >= len(e.Sets) {
		return models.SetRecord{}, fmt.Errorf("set %d: %w", setIdx, ErrIndexOutOfRange)
	}
	set := s.newSet(e.ExerciseID, in)
	set.Timestamp = e.Sets[setIdx].Timestamp
	e.Sets[setIdx] = set
	s.observe(e.ExerciseID, set, false)
	return set, nil
}

// RemoveSet deletes a logged set from the active workout.
func (s *Store) RemoveSet(entryIdx, setIdx int) error {
	e, err := s.entry(entryIdx)
	if err != nil {
		return err
	}
	if setIdx < 0 || setIdx >= len(e.Sets) {
		return fmt.Errorf("set %d: %w", setIdx, ErrIndexOutOfRange)
	}
	e.Sets = append(e.Sets[:setIdx], e.Sets[setIdx+1:]...)
	return nil
}

// FinishWorkout stores the active workout with source "manual". Entries
// without sets are dropped.
func (s *Store) FinishWorkout() (models.Workout, error) {
	if s.active == nil {
		return models.Workout{}, ErrNoActiveWorkout
	}
	end := s.now()
	w := models.Workout{
		ID:          uuid.New(),
		Name:        s.active.Name,
		StartTime:   s.active.StartTime,
		EndTime:     end,
		DurationSec: int(end.Sub(s.active.StartTime).Seconds()),
		Source:      models.SourceManual,
		Program:     s.active.Program,
	}
	for _, e := range s.active.Entries {
		if len(e.Sets) == 0 {
			continue
		}
		for _, set := range e.Sets {
			w.TotalXP += set.XP
		}
		w.Entries = append(w.Entries, e)
	}
	if len(w.Entries) == 0 {
		return models.Workout{}, ErrEmptyWorkout
	}
	s.workouts = append(s.workouts, w)
	s.active = nil
	return w, nil
}

// DiscardWorkout drops the active workout without storing it.
func (s *Store) DiscardWorkout() error {
	if s.active == nil {
		return ErrNoActiveWorkout
	}
	s.active = nil
	return nil
}

// ImportWorkouts appends a batch of workouts in one step and applies the
// candidate PR update for each non-warmup set, oldest workout first.
func (s *Store) ImportWorkouts(ws []models.Workout) int {
	if len(ws) == 0 {
		return 0
	}
	s.workouts = append(s.workouts, ws...)
	for _, w := range chronological(ws) {
		for _, e := range w.Entries {
			for _, set := range e.Sets {
				s.observe(e.ExerciseID, set, true)
			}
		}
	}
	return len(ws)
}

// DeleteWorkout removes a stored workout. Records are left as they are
// until RecalculatePRsFromHistory.
func (s *Store) DeleteWorkout(id uuid.UUID) error {
	for i, w := range s.workouts {
		if w.ID == id {
			s.workouts = append(s.workouts[:i], s.workouts[i+1:]...)
			return nil
		}
	}
	return ErrWorkoutNotFound
}

// ReplaceWorkout overwrites a stored workout with an edited version that
// keeps its id. Set XP and the workout total are rescored.
func (s *Store) ReplaceWorkout(w models.Workout) error {
	for i := range s.workouts {
		if s.workouts[i].ID != w.ID {
			continue
		}
		w.TotalXP = 0
		entries := make([]models.WorkoutExerciseEntry, len(w.Entries))
		for ei, e := range w.Entries {
			sets := make([]models.SetRecord, len(e.Sets))
			for si, set := range e.Sets {
				in := SetInput{Weight: set.Weight, Reps: set.Reps, RPE: set.RPE, IsWarmup: set.IsWarmup}
				if err := in.Validate(); err != nil {
					return fmt.Errorf("entry %d set %d: %w", ei, si, err)
				}
				set.XP = s.cat.SetXP(e.ExerciseID, set.Weight, set.Reps)
				w.TotalXP += set.XP
				sets[si] = set
			}
			e.Sets = sets
			entries[ei] = e
		}
		w.Entries = entries
		if w.Source == "" {
			w.Source = s.workouts[i].Source
		}
		s.workouts[i] = w
		return nil
	}
	return ErrWorkoutNotFound
}

// chronological returns a copy sorted by start time, keeping insertion
// order for equal times.
func chronological(ws []models.Workout) []models.Workout {
	out := append([]models.Workout(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
