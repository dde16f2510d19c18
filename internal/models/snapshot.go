package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Snapshot is the full persisted state. Profile, Achievements and Campaigns
// belong to other subsystems and pass through untouched.
type Snapshot struct {
	Profile         json.RawMessage           `json:"profile,omitempty"`
	Workouts        []Workout                 `json:"workouts"`
	Records         map[string]PersonalRecord `json:"records"`
	Achievements    json.RawMessage           `json:"achievements,omitempty"`
	CustomExercises []CustomExercise          `json:"custom_exercises"`
	Templates       []Template                `json:"templates"`
	Campaigns       json.RawMessage           `json:"campaigns,omitempty"`

	Programs             []Program           `json:"programs"`
	ActiveProgram        *ActiveProgramState `json:"active_program,omitempty"`
	ProcessedCompletions []uuid.UUID         `json:"processed_completions,omitempty"`
}

// Document kinds for the snapshot sections stored as single JSON values.
const (
	DocProfile              = "profile"
	DocAchievements         = "achievements"
	DocCampaigns            = "campaigns"
	DocTemplates            = "templates"
	DocPrograms             = "programs"
	DocActiveProgram        = "active_program"
	DocProcessedCompletions = "processed_completions"
)

// Documents encodes the whole-value sections of the snapshot keyed by
// kind. Empty sections are omitted.
func (s *Snapshot) Documents() (map[string][]byte, error) {
	docs := make(map[string][]byte)
	for kind, raw := range map[string]json.RawMessage{
		DocProfile:      s.Profile,
		DocAchievements: s.Achievements,
		DocCampaigns:    s.Campaigns,
	} {
		if len(raw) > 0 {
			docs[kind] = raw
		}
	}
	encode := func(kind string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", kind, err)
		}
		docs[kind] = b
		return nil
	}
	if len(s.Templates) > 0 {
		if err := encode(DocTemplates, s.Templates); err != nil {
			return nil, err
		}
	}
	if len(s.Programs) > 0 {
		if err := encode(DocPrograms, s.Programs); err != nil {
			return nil, err
		}
	}
	if s.ActiveProgram != nil {
		if err := encode(DocActiveProgram, s.ActiveProgram); err != nil {
			return nil, err
		}
	}
	if len(s.ProcessedCompletions) > 0 {
		if err := encode(DocProcessedCompletions, s.ProcessedCompletions); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// SetDocument decodes one section written by Documents. Unknown kinds are
// ignored.
func (s *Snapshot) SetDocument(kind string, raw []byte) error {
	var err error
	switch kind {
	case DocProfile:
		s.Profile = json.RawMessage(raw)
	case DocAchievements:
		s.Achievements = json.RawMessage(raw)
	case DocCampaigns:
		s.Campaigns = json.RawMessage(raw)
	case DocTemplates:
		err = json.Unmarshal(raw, &s.Templates)
	case DocPrograms:
		err = json.Unmarshal(raw, &s.Programs)
	case DocActiveProgram:
		s.ActiveProgram = &ActiveProgramState{}
		err = json.Unmarshal(raw, s.ActiveProgram)
	case DocProcessedCompletions:
		err = json.Unmarshal(raw, &s.ProcessedCompletions)
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", kind, err)
	}
	return nil
}
