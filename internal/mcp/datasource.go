package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both TrackerSource
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	SummaryStats(ctx context.Context, days int) (*history.Summary, error)
	VolumeByWeek(ctx context.Context, weeks int) ([]history.WeekVolume, error)
	VolumeByMuscle(ctx context.Context) ([]history.MuscleVolume, error)
	ExerciseProgress(ctx context.Context, exerciseID string) ([]history.ProgressPoint, error)
	StrengthProgress(ctx context.Context, exerciseID string) (*history.StrengthProgress, error)
	PersonalRecords(ctx context.Context) ([]models.PersonalRecord, error)
	RecentWorkouts(ctx context.Context, limit int) ([]models.Workout, error)
	Exercises(ctx context.Context) ([]models.ExerciseDefinition, error)
	// MatchExercise returns nil when no exercise matches.
	MatchExercise(ctx context.Context, name string) (*models.ExerciseDefinition, error)
	TodaysWorkout(ctx context.Context) (*program.ScheduledDay, error)
	UpcomingWorkouts(ctx context.Context, days int) ([]program.ScheduledDay, error)
}

// TrackerSource serves MCP queries from an in-process tracker.
type TrackerSource struct {
	T *tracker.Tracker
}

// Compile-time check: TrackerSource satisfies DataSource.
var _ DataSource = TrackerSource{}

func (s TrackerSource) SummaryStats(_ context.Context, days int) (*history.Summary, error) {
	sum := s.T.SummaryStats(days)
	return &sum, nil
}

func (s TrackerSource) VolumeByWeek(_ context.Context, weeks int) ([]history.WeekVolume, error) {
	return s.T.VolumeByWeek(weeks), nil
}

func (s TrackerSource) VolumeByMuscle(context.Context) ([]history.MuscleVolume, error) {
	return s.T.VolumeByMuscle(), nil
}

func (s TrackerSource) ExerciseProgress(_ context.Context, exerciseID string) ([]history.ProgressPoint, error) {
	return s.T.ExerciseProgressData(exerciseID), nil
}

func (s TrackerSource) StrengthProgress(_ context.Context, exerciseID string) (*history.StrengthProgress, error) {
	sp := s.T.StrengthProgress(exerciseID)
	return &sp, nil
}

func (s TrackerSource) PersonalRecords(context.Context) ([]models.PersonalRecord, error) {
	return s.T.Records(), nil
}

// RecentWorkouts returns up to limit of the latest workouts, oldest first.
func (s TrackerSource) RecentWorkouts(_ context.Context, limit int) ([]models.Workout, error) {
	w := s.T.Workouts()
	if limit > 0 && len(w) > limit {
		w = w[len(w)-limit:]
	}
	return w, nil
}

func (s TrackerSource) Exercises(context.Context) ([]models.ExerciseDefinition, error) {
	return s.T.Exercises(), nil
}

func (s TrackerSource) MatchExercise(_ context.Context, name string) (*models.ExerciseDefinition, error) {
	def, ok := s.T.MatchExercise(name)
	if !ok {
		return nil, nil
	}
	return &def, nil
}

func (s TrackerSource) TodaysWorkout(context.Context) (*program.ScheduledDay, error) {
	d, err := s.T.TodaysWorkout()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s TrackerSource) UpcomingWorkouts(_ context.Context, days int) ([]program.ScheduledDay, error) {
	return s.T.UpcomingWorkouts(days)
}
