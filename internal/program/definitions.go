package program

import (
	"fmt"
	"os"

	"github.com/claude/liftlog/internal/models"
	"gopkg.in/yaml.v3"
)

// Definitions is the on-disk format for shipped templates and programs.
// Programs are written as wizard drafts so week mirroring is applied the
// same way as for programs built interactively.
type Definitions struct {
	Templates []models.Template `yaml:"templates"`
	Programs  []WizardData      `yaml:"programs"`
}

// LoadDefinitions reads a definitions file.
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions file: %w", err)
	}
	defs := &Definitions{}
	if err := yaml.Unmarshal(data, defs); err != nil {
		return nil, fmt.Errorf("parsing definitions file: %w", err)
	}
	return defs, nil
}

// Apply registers templates first, then programs, so program days can
// reference templates from the same file.
func (s *Scheduler) Apply(defs *Definitions) error {
	for _, t := range defs.Templates {
		if err := s.PutTemplate(t); err != nil {
			return fmt.Errorf("loading template: %w", err)
		}
	}
	for _, d := range defs.Programs {
		if d.ID == "" {
			return fmt.Errorf("loading program %q: id is required", d.Name)
		}
		if _, err := s.UpdateProgramWizardData(d); err != nil {
			return fmt.Errorf("loading program %s: %w", d.ID, err)
		}
	}
	return nil
}
