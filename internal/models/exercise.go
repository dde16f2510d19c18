package models

// Muscle groups used by the catalog. Custom exercises without an explicit
// group fall into MuscleOther.
const (
	MuscleChest      = "chest"
	MuscleBack       = "back"
	MuscleShoulders  = "shoulders"
	MuscleBiceps     = "biceps"
	MuscleTriceps    = "triceps"
	MuscleQuads      = "quads"
	MuscleHamstrings = "hamstrings"
	MuscleGlutes     = "glutes"
	MuscleCalves     = "calves"
	MuscleCore       = "core"
	MuscleOther      = "other"
)

// ExerciseDefinition is an immutable catalog entry.
type ExerciseDefinition struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	MuscleGroup      string   `json:"muscle_group" yaml:"muscle_group"`
	Equipment        string   `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	SecondaryMuscles []string `json:"secondary_muscles,omitempty" yaml:"secondary_muscles,omitempty"`
	Aliases          []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// CustomExercise is a user-created exercise. Its ID is always the slug of
// its name.
type CustomExercise struct {
	ExerciseDefinition
	IsCustom bool `json:"is_custom"`
}
