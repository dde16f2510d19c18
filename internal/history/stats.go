package history

import (
	"math"
	"sort"
	"time"
)

// E1RM estimates a one-rep max with the Epley formula. A single rep returns
// the weight itself and non-positive inputs return 0. The result is
// non-decreasing in both weight and reps.
func E1RM(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return round2(weight * (1 + float64(reps)/30))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summary aggregates working sets over a period.
type Summary struct {
	PeriodDays     int     `json:"period_days"`
	Workouts       int     `json:"workouts"`
	Sets           int     `json:"sets"`
	Reps           int     `json:"reps"`
	Volume         float64 `json:"volume"`
	TotalXP        int     `json:"total_xp"`
	DurationSec    int     `json:"duration_sec"`
	AvgDurationSec int     `json:"avg_duration_sec"`
	Exercises      int     `json:"exercises"`
}

// SummaryStats aggregates workouts started within the last periodDays.
// periodDays <= 0 covers all history.
func (s *Store) SummaryStats(periodDays int) Summary {
	sum := Summary{PeriodDays: periodDays}
	var cutoff time.Time
	if periodDays > 0 {
		cutoff = s.now().AddDate(0, 0, -periodDays)
	}
	exercises := make(map[string]bool)
	for _, w := range s.workouts {
		if !cutoff.IsZero() && w.StartTime.Before(cutoff) {
			continue
		}
		sum.Workouts++
		sum.TotalXP += w.TotalXP
		sum.DurationSec += w.DurationSec
		for _, e := range w.Entries {
			for _, set := range e.WorkingSets() {
				sum.Sets++
				sum.Reps += set.Reps
				sum.Volume += set.Volume()
				exercises[e.ExerciseID] = true
			}
		}
	}
	if sum.Workouts > 0 {
		sum.AvgDurationSec = sum.DurationSec / sum.Workouts
	}
	sum.Volume = round2(sum.Volume)
	sum.Exercises = len(exercises)
	return sum
}

// WeekVolume is the working-set volume of one Monday-start week.
type WeekVolume struct {
	WeekStart time.Time `json:"week_start"`
	Volume    float64   `json:"volume"`
	Workouts  int       `json:"workouts"`
	Sets      int       `json:"sets"`
}

func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// VolumeByWeek returns n weeks ending with the current one, oldest first.
// Weeks without workouts are included with zero volume.
func (s *Store) VolumeByWeek(n int) []WeekVolume {
	if n <= 0 {
		return []WeekVolume{}
	}
	current := weekStart(s.now())
	out := make([]WeekVolume, n)
	index := make(map[time.Time]int, n)
	for i := 0; i < n; i++ {
		ws := current.AddDate(0, 0, -7*(n-1-i))
		out[i].WeekStart = ws
		index[ws] = i
	}
	for _, w := range s.workouts {
		i, ok := index[weekStart(w.StartTime)]
		if !ok {
			continue
		}
		out[i].Workouts++
		for _, e := range w.Entries {
			for _, set := range e.WorkingSets() {
				out[i].Sets++
				out[i].Volume += set.Volume()
			}
		}
	}
	for i := range out {
		out[i].Volume = round2(out[i].Volume)
	}
	return out
}

// MuscleVolume is the working-set volume attributed to a primary muscle.
type MuscleVolume struct {
	MuscleGroup string  `json:"muscle_group"`
	Volume      float64 `json:"volume"`
	Sets        int     `json:"sets"`
}

// VolumeByMuscle attributes all working-set volume to each exercise's
// primary muscle group, highest volume first.
func (s *Store) VolumeByMuscle() []MuscleVolume {
	acc := make(map[string]*MuscleVolume)
	for _, w := range s.workouts {
		for _, e := range w.Entries {
			group := s.cat.MuscleGroup(e.ExerciseID)
			for _, set := range e.WorkingSets() {
				mv, ok := acc[group]
				if !ok {
					mv = &MuscleVolume{MuscleGroup: group}
					acc[group] = mv
				}
				mv.Sets++
				mv.Volume += set.Volume()
			}
		}
	}
	out := make([]MuscleVolume, 0, len(acc))
	for _, mv := range acc {
		mv.Volume = round2(mv.Volume)
		out = append(out, *mv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].MuscleGroup < out[j].MuscleGroup
	})
	return out
}

// ProgressPoint summarizes one workout's working sets of an exercise.
type ProgressPoint struct {
	WorkoutID   string    `json:"workout_id"`
	Date        time.Time `json:"date"`
	MaxWeight   float64   `json:"max_weight"`
	TotalVolume float64   `json:"total_volume"`
	E1RM        float64   `json:"e1rm"`
	Sets        int       `json:"sets"`
}

// ExerciseProgressData returns one point per workout containing working
// sets of the exercise, oldest first.
func (s *Store) ExerciseProgressData(exerciseID string) []ProgressPoint {
	out := []ProgressPoint{}
	for _, w := range chronological(s.workouts) {
		var p ProgressPoint
		for _, e := range w.Entries {
			if e.ExerciseID != exerciseID {
				continue
			}
			for _, set := range e.WorkingSets() {
				p.Sets++
				p.TotalVolume += set.Volume()
				if set.Weight > p.MaxWeight {
					p.MaxWeight = set.Weight
				}
				if est := E1RM(set.Weight, set.Reps); est > p.E1RM {
					p.E1RM = est
				}
			}
		}
		if p.Sets == 0 {
			continue
		}
		p.WorkoutID = w.ID.String()
		p.Date = w.StartTime
		p.TotalVolume = round2(p.TotalVolume)
		out = append(out, p)
	}
	return out
}

// StrengthProgress relates an exercise's current PR to its first recorded
// weight.
type StrengthProgress struct {
	ExerciseID    string          `json:"exercise_id"`
	Points        []ProgressPoint `json:"points"`
	CurrentPR     float64         `json:"current_pr"`
	FirstWeight   float64         `json:"first_weight"`
	PercentChange float64         `json:"percent_change"`
	BestE1RM      float64         `json:"best_e1rm"`
}

// StrengthProgress uses the PR table when a record exists and falls back
// to the progress points otherwise.
func (s *Store) StrengthProgress(exerciseID string) StrengthProgress {
	points := s.ExerciseProgressData(exerciseID)
	sp := StrengthProgress{ExerciseID: exerciseID, Points: points}
	for _, p := range points {
		if p.E1RM > sp.BestE1RM {
			sp.BestE1RM = p.E1RM
		}
		if p.MaxWeight > sp.CurrentPR {
			sp.CurrentPR = p.MaxWeight
		}
	}
	if len(points) > 0 {
		sp.FirstWeight = points[0].MaxWeight
	}
	if rec, ok := s.records[exerciseID]; ok {
		sp.CurrentPR = rec.Weight
		sp.FirstWeight = rec.FirstWeight
	}
	if sp.FirstWeight > 0 {
		sp.PercentChange = round2((sp.CurrentPR - sp.FirstWeight) / sp.FirstWeight * 100)
	}
	return sp
}
