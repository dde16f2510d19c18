// Package csvlog imports workout history exported by other training apps as
// one CSV row per set.
package csvlog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// DefaultBatchSize is the number of rows processed between progress reports.
const DefaultBatchSize = 500

var (
	hoursRe   = regexp.MustCompile(`(\d+)\s*h`)
	minutesRe = regexp.MustCompile(`(\d+)\s*m`)
	floatRe   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intRe     = regexp.MustCompile(`^[+-]?\d+`)
)

// dateLayouts are tried in order when converting a session's Date field to a
// start time.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
}

// ValidationError reports required columns missing from the header row. No
// rows are processed when it is returned.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// Matcher resolves exercise names and scores sets. *catalog.Catalog
// satisfies it.
type Matcher interface {
	Match(rawName string) (string, bool)
	SetXP(exerciseID string, weight float64, reps int) int
}

var _ Matcher = (*catalog.Catalog)(nil)

// Importer parses CSV exports into workouts.
type Importer struct {
	matcher   Matcher
	log       *slog.Logger
	batchSize int
	now       func() time.Time
}

// NewImporter creates an importer. A batchSize of zero or less uses
// DefaultBatchSize.
func NewImporter(m Matcher, batchSize int, log *slog.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{matcher: m, log: log, batchSize: batchSize, now: time.Now}
}

type columns struct {
	date, exercise, weight, reps int
	rpe, duration, setOrder      int
	workoutName                  int
}

func findColumns(header []string) (columns, error) {
	cols := columns{date: -1, exercise: -1, weight: -1, reps: -1, rpe: -1, duration: -1, setOrder: -1, workoutName: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case name == "date" && cols.date < 0:
			cols.date = i
		case strings.Contains(name, "exercise name") && cols.exercise < 0:
			cols.exercise = i
		case name == "weight" && cols.weight < 0:
			cols.weight = i
		case name == "reps" && cols.reps < 0:
			cols.reps = i
		case name == "rpe" && cols.rpe < 0:
			cols.rpe = i
		case name == "duration" && cols.duration < 0:
			cols.duration = i
		case name == "set order" && cols.setOrder < 0:
			cols.setOrder = i
		case name == "workout name" && cols.workoutName < 0:
			cols.workoutName = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "Date")
	}
	if cols.exercise < 0 {
		missing = append(missing, "Exercise Name")
	}
	if cols.weight < 0 {
		missing = append(missing, "Weight")
	}
	if cols.reps < 0 {
		missing = append(missing, "Reps")
	}
	if len(missing) > 0 {
		return cols, &ValidationError{Missing: missing}
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// session accumulates rows sharing one raw Date string.
type session struct {
	date     string
	name     string
	duration int
	entries  []*models.WorkoutExerciseEntry
	byName   map[string]*models.WorkoutExerciseEntry
}

// resolved caches the outcome of matching one raw exercise name.
type resolved struct {
	id string
	ok bool
}

// parseState holds the accumulators for one Parse call.
type parseState struct {
	imp       *Importer
	cols      columns
	result    *ingest.Result
	sessions  []*session
	byDate    map[string]*session
	names     map[string]resolved
	unmapped  map[string]bool
	customIDs map[string]bool
}

// Parse converts CSV text into workouts without committing anything. Rows
// are processed in batches; after each batch onProgress (if non-nil) is
// called, ctx is checked for cancellation, and the goroutine yields.
func (imp *Importer) Parse(ctx context.Context, data string, onProgress func(ingest.Progress)) (*ingest.Result, error) {
	// Spreadsheet exports often lead with a UTF-8 byte order mark.
	rows := Tokenize(strings.TrimPrefix(data, "\ufeff"))
	if len(rows) == 0 {
		return nil, &ValidationError{Missing: []string{"Date", "Exercise Name", "Weight", "Reps"}}
	}
	cols, err := findColumns(rows[0])
	if err != nil {
		return nil, err
	}
	rows = rows[1:]

	st := &parseState{
		imp:       imp,
		cols:      cols,
		result:    &ingest.Result{RowsTotal: len(rows), UnmappedExerciseNames: []string{}},
		byDate:    make(map[string]*session),
		names:     make(map[string]resolved),
		unmapped:  make(map[string]bool),
		customIDs: make(map[string]bool),
	}

	if len(rows) == 0 && onProgress != nil {
		onProgress(ingest.Progress{})
	}
	for i, row := range rows {
		if !st.addRow(row) {
			st.result.RowsSkipped++
		}

		if (i+1)%imp.batchSize == 0 || i == len(rows)-1 {
			if onProgress != nil {
				onProgress(ingest.Progress{Processed: i + 1, Total: len(rows)})
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("import cancelled after %d rows: %w", i+1, err)
			}
			runtime.Gosched()
		}
	}

	result := st.result
	for _, s := range st.sessions {
		w := imp.buildWorkout(s)
		if len(w.Entries) == 0 {
			continue
		}
		result.Workouts = append(result.Workouts, w)
	}
	result.ImportedCount = len(result.Workouts)

	imp.log.Info("csv parsed",
		"rows_total", result.RowsTotal,
		"rows_skipped", result.RowsSkipped,
		"workouts", result.ImportedCount,
		"sets", result.SetsImported,
		"unmapped", len(result.UnmappedExerciseNames),
	)
	return result, nil
}

// addRow folds one data row into its session. It reports false when the
// row contributes no set.
func (st *parseState) addRow(row []string) bool {
	cols := st.cols
	var date string
	if cols.date < len(row) {
		date = row[cols.date]
	}
	if strings.TrimSpace(date) == "" {
		return false
	}
	rawName := field(row, cols.exercise)
	if rawName == "" {
		return false
	}
	reps, ok := parseIntPrefix(field(row, cols.reps))
	if !ok || reps <= 0 {
		return false
	}
	weight, _ := parseFloatPrefix(field(row, cols.weight))
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		weight = 0
	}

	id, ok := st.resolve(rawName)
	if !ok {
		return false
	}

	s, ok := st.byDate[date]
	if !ok {
		s = &session{date: date, byName: make(map[string]*models.WorkoutExerciseEntry)}
		st.byDate[date] = s
		st.sessions = append(st.sessions, s)
	}
	if s.name == "" {
		s.name = field(row, cols.workoutName)
	}
	if s.duration == 0 {
		s.duration = ParseDuration(field(row, cols.duration))
	}

	entry, ok := s.byName[rawName]
	if !ok {
		entry = &models.WorkoutExerciseEntry{ExerciseID: id, ExerciseName: rawName}
		s.byName[rawName] = entry
		s.entries = append(s.entries, entry)
	}

	entry.Sets = append(entry.Sets, models.SetRecord{
		Weight:   weight,
		Reps:     reps,
		RPE:      parseRPE(field(row, cols.rpe)),
		IsWarmup: strings.EqualFold(field(row, cols.setOrder), "w"),
		XP:       st.imp.matcher.SetXP(id, weight, reps),
	})
	st.result.SetsImported++
	return true
}

// resolve maps a raw name to an exercise id. Unmatched names get a
// synthesized custom exercise keyed by their slug and are recorded once in
// the unmapped list.
func (st *parseState) resolve(rawName string) (string, bool) {
	res, seen := st.names[rawName]
	if !seen {
		res.id, res.ok = st.imp.matcher.Match(rawName)
		if !res.ok {
			res.id = catalog.Slugify(rawName)
		}
		st.names[rawName] = res
	}
	if res.id == "" {
		return "", false
	}
	if res.ok {
		return res.id, true
	}
	if !st.unmapped[rawName] {
		st.unmapped[rawName] = true
		st.result.UnmappedExerciseNames = append(st.result.UnmappedExerciseNames, rawName)
	}
	if !st.customIDs[res.id] {
		st.customIDs[res.id] = true
		st.result.CustomExercises = append(st.result.CustomExercises, models.CustomExercise{
			ExerciseDefinition: models.ExerciseDefinition{ID: res.id, Name: rawName, MuscleGroup: models.MuscleOther},
			IsCustom:           true,
		})
	}
	return res.id, true
}

func (imp *Importer) buildWorkout(s *session) models.Workout {
	start, ok := parseDate(s.date)
	if !ok {
		start = imp.now().UTC()
	}
	w := models.Workout{
		ID:          uuid.New(),
		Name:        s.name,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(s.duration) * time.Second),
		DurationSec: s.duration,
		Source:      models.SourceCSV,
	}
	for _, e := range s.entries {
		if len(e.Sets) == 0 {
			continue
		}
		for i := range e.Sets {
			e.Sets[i].Timestamp = start
			w.TotalXP += e.Sets[i].XP
		}
		w.Entries = append(w.Entries, *e)
	}
	return w
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDuration converts "1h", "45m" or "1h 30m" into seconds. Anything
// without an hour or minute component yields 0.
func ParseDuration(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	total := 0
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 3600
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins * 60
	}
	return total
}

// parseFloatPrefix reads the longest leading decimal number, so "135 lbs"
// yields 135.
func parseFloatPrefix(s string) (float64, bool) {
	m := floatRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntPrefix(s string) (int, bool) {
	m := intRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseRPE returns nil for empty or out-of-range values and rounds valid
// ones to the nearest half point.
func parseRPE(s string) *float64 {
	v, ok := parseFloatPrefix(s)
	if !ok || v < 1 || v > 10 {
		return nil
	}
	v = math.Round(v*2) / 2
	return &v
}
