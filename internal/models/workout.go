package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout sources.
const (
	SourceManual = "manual"
	SourceCSV    = "csv"
)

// SetRecord is a single logged set. Reps is always positive for stored sets.
type SetRecord struct {
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	RPE       *float64  `json:"rpe,omitempty"`
	IsWarmup  bool      `json:"is_warmup,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	XP        int       `json:"xp"`
}

// Volume returns weight × reps.
func (s SetRecord) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// WorkoutExerciseEntry is one exercise within a workout. TargetReps and
// TargetRPE carry the prescription the entry was started with, if any.
type WorkoutExerciseEntry struct {
	ExerciseID    string      `json:"exercise_id"`
	ExerciseName  string      `json:"exercise_name,omitempty"`
	Sets          []SetRecord `json:"sets"`
	SupersetGroup string      `json:"superset_group,omitempty"`
	TargetReps    *RepRange   `json:"target_reps,omitempty"`
	TargetRPE     *float64    `json:"target_rpe,omitempty"`
}

// WorkingSets returns the non-warmup sets in logged order.
func (e WorkoutExerciseEntry) WorkingSets() []SetRecord {
	var out []SetRecord
	for _, s := range e.Sets {
		if !s.IsWarmup {
			out = append(out, s)
		}
	}
	return out
}

// ProgramPosition links a workout to the scheduled program day it was
// started from.
type ProgramPosition struct {
	ProgramID string `json:"program_id"`
	Week      int    `json:"week"`
	Day       int    `json:"day"`
}

// Workout is a completed session. Workouts are immutable once stored except
// through explicit delete or replace.
type Workout struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name,omitempty"`
	Entries     []WorkoutExerciseEntry `json:"entries"`
	StartTime   time.Time              `json:"start_time"`
	EndTime     time.Time              `json:"end_time"`
	DurationSec int                    `json:"duration_sec"`
	TotalXP     int                    `json:"total_xp"`
	Source      string                 `json:"source"`
	Program     *ProgramPosition       `json:"program,omitempty"`
}

// PersonalRecord is the heaviest non-warmup weight logged for an exercise,
// unless Edited marks a manual override.
type PersonalRecord struct {
	ExerciseID  string    `json:"exercise_id"`
	Weight      float64   `json:"weight"`
	Date        time.Time `json:"date"`
	FirstWeight float64   `json:"first_weight"`
	Imported    bool      `json:"imported,omitempty"`
	Edited      bool      `json:"edited,omitempty"`
}
