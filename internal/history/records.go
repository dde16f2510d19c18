package history

import (
	"fmt"
	"math"
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// observe applies PR = max(PR, weight) for a single set. Ties count and
// refresh the date. FirstWeight is only written when the record is created.
func (s *Store) observe(exerciseID string, set models.SetRecord, imported bool) {
	if set.IsWarmup || set.Reps <= 0 {
		return
	}
	rec, ok := s.records[exerciseID]
	if !ok {
		s.records[exerciseID] = models.PersonalRecord{
			ExerciseID:  exerciseID,
			Weight:      set.Weight,
			Date:        set.Timestamp,
			FirstWeight: set.Weight,
			Imported:    imported,
		}
		return
	}
	if set.Weight >= rec.Weight {
		rec.Weight = set.Weight
		rec.Date = set.Timestamp
		rec.Imported = imported
		rec.Edited = false
		s.records[exerciseID] = rec
	}
}

// Records returns a copy of the PR table.
func (s *Store) Records() map[string]models.PersonalRecord {
	out := make(map[string]models.PersonalRecord, len(s.records))
	for id, r := range s.records {
		out[id] = r
	}
	return out
}

// RecordList returns the PR table sorted by exercise id.
func (s *Store) RecordList() []models.PersonalRecord {
	out := make([]models.PersonalRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseID < out[j].ExerciseID })
	return out
}

// Record returns the PR for one exercise.
func (s *Store) Record(exerciseID string) (models.PersonalRecord, bool) {
	r, ok := s.records[exerciseID]
	return r, ok
}

// EditPR manually overrides a record. An existing record keeps its date and
// FirstWeight; a new one is dated now with FirstWeight equal to weight.
func (s *Store) EditPR(exerciseID string, weight float64) (models.PersonalRecord, error) {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return models.PersonalRecord{}, fmt.Errorf("editing PR for %s: %w", exerciseID, ErrInvalidWeight)
	}
	rec, ok := s.records[exerciseID]
	if !ok {
		rec = models.PersonalRecord{
			ExerciseID:  exerciseID,
			Date:        s.now(),
			FirstWeight: weight,
		}
	}
	rec.Weight = weight
	rec.Edited = true
	s.records[exerciseID] = rec
	return rec, nil
}

// RecalculatePRsFromHistory rebuilds every record from stored workouts,
// discarding manual edits. Existing FirstWeight values are kept; new records
// take the chronologically earliest weight. Records for exercises with no
// working sets in history are removed. It returns the number of records.
func (s *Store) RecalculatePRsFromHistory() int {
	rebuilt := make(map[string]models.PersonalRecord)
	for _, w := range chronological(s.workouts) {
		imported := w.Source == models.SourceCSV
		for _, e := range w.Entries {
			for _, set := range e.Sets {
				if set.IsWarmup || set.Reps <= 0 {
					continue
				}
				ts := set.Timestamp
				if ts.IsZero() {
					ts = w.StartTime
				}
				rec, ok := rebuilt[e.ExerciseID]
				if !ok {
					rebuilt[e.ExerciseID] = models.PersonalRecord{
						ExerciseID:  e.ExerciseID,
						Weight:      set.Weight,
						Date:        ts,
						FirstWeight: set.Weight,
						Imported:    imported,
					}
					continue
				}
				if set.Weight >= rec.Weight {
					rec.Weight = set.Weight
					rec.Date = ts
					rec.Imported = imported
					rebuilt[e.ExerciseID] = rec
				}
			}
		}
	}
	for id, rec := range rebuilt {
		if prev, ok := s.records[id]; ok && prev.FirstWeight > 0 {
			rec.FirstWeight = prev.FirstWeight
			rebuilt[id] = rec
		}
	}
	s.records = rebuilt
	return len(rebuilt)
}
