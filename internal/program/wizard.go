package program

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// WizardData is a program draft. Days describes one cycle; every week of
// the program repeats it. DeloadFinalWeek flags the last week only.
type WizardData struct {
	ID               string                   `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string                   `json:"name" yaml:"name"`
	DurationWeeks    int                      `json:"duration_weeks" yaml:"duration_weeks"`
	CycleType        models.CycleType         `json:"cycle_type" yaml:"cycle_type"`
	Days             []models.ProgramDay      `json:"days" yaml:"days"`
	DeloadFinalWeek  bool                     `json:"deload_final_week,omitempty" yaml:"deload_final_week,omitempty"`
	ProgressionRules []models.ProgressionRule `json:"progression_rules,omitempty" yaml:"progression_rules,omitempty"`
}

// Build validates the draft and expands it into a program. Days are
// renumbered 1..n in the given order and week 1 is copied into every week.
func (d WizardData) Build() (models.Program, error) {
	if d.Name == "" {
		return models.Program{}, fmt.Errorf("program name is required")
	}
	if d.DurationWeeks < 1 || d.DurationWeeks > models.MaxProgramWeeks {
		return models.Program{}, fmt.Errorf("duration_weeks must be 1-%d, got %d", models.MaxProgramWeeks, d.DurationWeeks)
	}
	if err := models.ValidateCycle(d.CycleType, len(d.Days)); err != nil {
		return models.Program{}, err
	}
	seen := make(map[string]bool, len(d.ProgressionRules))
	for _, r := range d.ProgressionRules {
		if r.ID == "" {
			return models.Program{}, fmt.Errorf("progression rule id is required")
		}
		if seen[r.ID] {
			return models.Program{}, fmt.Errorf("duplicate progression rule %q", r.ID)
		}
		seen[r.ID] = true
		if dp, ok := r.Config.(models.DoubleProgression); ok && !dp.RepRange.Valid() {
			return models.Program{}, fmt.Errorf("rule %s: invalid rep range", r.ID)
		}
	}

	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	p := models.Program{
		ID:               id,
		Name:             d.Name,
		DurationWeeks:    d.DurationWeeks,
		CycleType:        d.CycleType,
		ProgressionRules: d.ProgressionRules,
	}
	for w := 1; w <= d.DurationWeeks; w++ {
		week := models.ProgramWeek{
			WeekNumber: w,
			Days:       make([]models.ProgramDay, len(d.Days)),
			IsDeload:   d.DeloadFinalWeek && w == d.DurationWeeks,
		}
		for i, day := range d.Days {
			day.DayNumber = i + 1
			if day.IsRest {
				day.TemplateID = ""
			}
			week.Days[i] = day
		}
		p.Weeks = append(p.Weeks, week)
	}
	return p, p.Validate()
}

// UpdateProgramWizardData builds the draft and stores the program,
// replacing one with the same id. Non-rest days must reference known
// templates. The active cursor is left alone unless it points at this
// program and falls outside the new shape, in which case it is clamped.
func (s *Scheduler) UpdateProgramWizardData(d WizardData) (models.Program, error) {
	p, err := d.Build()
	if err != nil {
		return models.Program{}, fmt.Errorf("building program: %w: %w", ErrInvalidProgram, err)
	}
	for _, day := range p.Weeks[0].Days {
		if day.IsRest || day.TemplateID == "" {
			continue
		}
		if _, ok := s.templates[day.TemplateID]; !ok {
			return models.Program{}, fmt.Errorf("day %d template %q: %w", day.DayNumber, day.TemplateID, ErrUnknownTemplate)
		}
	}
	s.programs[p.ID] = p

	if st := s.state; st != nil && st.ProgramID == p.ID {
		if st.CurrentWeek > p.DurationWeeks {
			st.CurrentWeek = p.DurationWeeks
		}
		if st.CurrentDay > p.CycleLength() {
			st.CurrentDay = p.CycleLength()
		}
	}
	return p, nil
}
