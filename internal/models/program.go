package models

import (
	"fmt"
	"time"
)

// CycleType determines how many days one program week spans.
type CycleType string

const (
	CycleWeekly     CycleType = "weekly"
	CycleMicrocycle CycleType = "microcycle"
)

// Cycle length bounds.
const (
	WeeklyCycleDays   = 7
	MinMicrocycleDays = 3
	MaxMicrocycleDays = 10
	MaxProgramWeeks   = 52
)

// TemplateExercise is one prescribed exercise in a template. RuleID selects
// a program progression rule; empty means the program default.
type TemplateExercise struct {
	ExerciseID string   `json:"exercise_id" yaml:"exercise_id"`
	TargetSets int      `json:"target_sets" yaml:"target_sets"`
	TargetReps RepRange `json:"target_reps" yaml:"target_reps"`
	TargetRPE  *float64 `json:"target_rpe,omitempty" yaml:"target_rpe,omitempty"`
	RuleID     string   `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
}

type Template struct {
	ID        string             `json:"id" yaml:"id"`
	Name      string             `json:"name" yaml:"name"`
	Exercises []TemplateExercise `json:"exercises" yaml:"exercises"`
}

type ProgramDay struct {
	DayNumber  int    `json:"day_number" yaml:"day_number"`
	Name       string `json:"name" yaml:"name"`
	IsRest     bool   `json:"is_rest,omitempty" yaml:"is_rest,omitempty"`
	TemplateID string `json:"template_id,omitempty" yaml:"template_id,omitempty"`
}

type ProgramWeek struct {
	WeekNumber int          `json:"week_number" yaml:"week_number"`
	Days       []ProgramDay `json:"days" yaml:"days"`
	IsDeload   bool         `json:"is_deload,omitempty" yaml:"is_deload,omitempty"`
}

// Program is a multi-week plan. Weeks 2..N mirror week 1; only the final
// week may carry IsDeload.
type Program struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	DurationWeeks    int               `json:"duration_weeks" yaml:"duration_weeks"`
	CycleType        CycleType         `json:"cycle_type" yaml:"cycle_type"`
	Weeks            []ProgramWeek     `json:"weeks" yaml:"weeks"`
	ProgressionRules []ProgressionRule `json:"progression_rules,omitempty" yaml:"progression_rules,omitempty"`
}

// CycleLength returns the number of days in one program week.
func (p Program) CycleLength() int {
	if len(p.Weeks) == 0 {
		return 0
	}
	return len(p.Weeks[0].Days)
}

// Rule returns the rule with the given ID.
func (p Program) Rule(id string) (ProgressionRule, bool) {
	for _, r := range p.ProgressionRules {
		if r.ID == id {
			return r, true
		}
	}
	return ProgressionRule{}, false
}

// ValidateCycle checks a cycle length against the cycle type.
func ValidateCycle(ct CycleType, days int) error {
	switch ct {
	case CycleWeekly:
		if days != WeeklyCycleDays {
			return fmt.Errorf("weekly cycle must have %d days, got %d", WeeklyCycleDays, days)
		}
	case CycleMicrocycle:
		if days < MinMicrocycleDays || days > MaxMicrocycleDays {
			return fmt.Errorf("microcycle must have %d-%d days, got %d", MinMicrocycleDays, MaxMicrocycleDays, days)
		}
	default:
		return fmt.Errorf("unknown cycle type %q", ct)
	}
	return nil
}

// Validate checks the structural invariants of a program.
func (p Program) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("program id is required")
	}
	if p.DurationWeeks < 1 || p.DurationWeeks > MaxProgramWeeks {
		return fmt.Errorf("program %s: duration_weeks must be 1-%d", p.ID, MaxProgramWeeks)
	}
	if len(p.Weeks) != p.DurationWeeks {
		return fmt.Errorf("program %s: has %d weeks, duration_weeks is %d", p.ID, len(p.Weeks), p.DurationWeeks)
	}
	if err := ValidateCycle(p.CycleType, p.CycleLength()); err != nil {
		return fmt.Errorf("program %s: %w", p.ID, err)
	}
	for i, w := range p.Weeks {
		if len(w.Days) != p.CycleLength() {
			return fmt.Errorf("program %s: week %d has %d days, want %d", p.ID, i+1, len(w.Days), p.CycleLength())
		}
		if w.IsDeload && i != len(p.Weeks)-1 {
			return fmt.Errorf("program %s: only the final week may be a deload", p.ID)
		}
	}
	return nil
}

// ActiveProgramState is the scheduler cursor. Week and day are 1-based.
type ActiveProgramState struct {
	ProgramID   string    `json:"program_id"`
	CurrentWeek int       `json:"current_week"`
	CurrentDay  int       `json:"current_day"`
	Completed   bool      `json:"completed,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}
