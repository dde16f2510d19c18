package csvlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/go-cmp/cmp"
)

func testImporter(batch int) *Importer {
	return NewImporter(catalog.New(), batch, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const strongCSV = `Date,Workout Name,Duration,Exercise Name,Set Order,Weight,Reps,Distance,Seconds,Notes,Workout Notes,RPE
2024-03-01 07:30:00,Push Day,1h 5m,Bench Press (Barbell),1,135,8,0,0,,,7
2024-03-01 07:30:00,Push Day,1h 5m,Bench Press (Barbell),2,145,6,0,0,,,8
2024-03-01 07:30:00,Push Day,1h 5m,Bench Press (Barbell),3,155,4,0,0,,,9.5
`

// TestParseSingleSession verifies one session of three bench sets becomes a
// single workout with one entry holding the sets in input order, and that
// totalXP is the sum of per-set XP.
func TestParseSingleSession(t *testing.T) {
	cat := catalog.New()
	imp := NewImporter(cat, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := imp.Parse(context.Background(), strongCSV, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.ImportedCount != 1 || len(res.Workouts) != 1 {
		t.Fatalf("workouts = %d, want 1", len(res.Workouts))
	}
	w := res.Workouts[0]
	if w.Source != models.SourceCSV {
		t.Errorf("source = %q, want csv", w.Source)
	}
	if w.Name != "Push Day" {
		t.Errorf("name = %q, want Push Day", w.Name)
	}
	if w.DurationSec != 3900 {
		t.Errorf("duration = %d, want 3900", w.DurationSec)
	}
	if len(w.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(w.Entries))
	}
	e := w.Entries[0]
	if e.ExerciseID != "bench_press" {
		t.Errorf("exercise = %q, want bench_press", e.ExerciseID)
	}
	var weights []float64
	var reps []int
	wantXP := 0
	for _, s := range e.Sets {
		weights = append(weights, s.Weight)
		reps = append(reps, s.Reps)
		wantXP += cat.SetXP("bench_press", s.Weight, s.Reps)
	}
	if diff := cmp.Diff([]float64{135, 145, 155}, weights); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{8, 6, 4}, reps); diff != "" {
		t.Errorf("reps mismatch (-want +got):\n%s", diff)
	}
	if w.TotalXP != wantXP {
		t.Errorf("totalXP = %d, want %d", w.TotalXP, wantXP)
	}
	if e.Sets[2].RPE == nil || *e.Sets[2].RPE != 9.5 {
		t.Errorf("third set RPE = %v, want 9.5", e.Sets[2].RPE)
	}
	if got := w.StartTime.Format("2006-01-02 15:04"); got != "2024-03-01 07:30" {
		t.Errorf("start = %s, want 2024-03-01 07:30", got)
	}
	if len(res.UnmappedExerciseNames) != 0 {
		t.Errorf("unmapped = %v, want none", res.UnmappedExerciseNames)
	}
}

// TestParseSkipsInvalidRows verifies rows with zero reps or an empty date
// never produce a set and are only reflected in the skip count.
func TestParseSkipsInvalidRows(t *testing.T) {
	csv := `Date,Exercise Name,Weight,Reps
2024-03-01,Squat,225,5
2024-03-01,Squat,245,0
,Squat,265,3
2024-03-01,Squat,abc,5
2024-03-01,Squat,275,x
`
	res, err := testImporter(0).Parse(context.Background(), csv, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.RowsTotal != 5 {
		t.Errorf("rows_total = %d, want 5", res.RowsTotal)
	}
	if res.RowsSkipped != 3 {
		t.Errorf("rows_skipped = %d, want 3", res.RowsSkipped)
	}
	sets := res.Workouts[0].Entries[0].Sets
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(sets))
	}
	if sets[1].Weight != 0 {
		t.Errorf("unparseable weight = %v, want 0", sets[1].Weight)
	}
	for _, s := range sets {
		if s.Reps <= 0 {
			t.Errorf("set with reps %d should have been skipped", s.Reps)
		}
	}
}

// TestParseMissingColumns verifies header validation aborts before any row
// is processed and names every missing column.
func TestParseMissingColumns(t *testing.T) {
	csv := "date,exercise name,weight\n2024-03-01,Squat,225\n"
	var calls int
	_, err := testImporter(0).Parse(context.Background(), csv, func(ingest.Progress) { calls++ })
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if diff := cmp.Diff([]string{"Reps"}, verr.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	if calls != 0 {
		t.Errorf("progress called %d times before validation failure", calls)
	}

	_, err = testImporter(0).Parse(context.Background(), "", nil)
	if !errors.As(err, &verr) || len(verr.Missing) != 4 {
		t.Errorf("empty input err = %v, want all four columns missing", err)
	}
}

// TestParseByteOrderMark verifies a UTF-8 export with a leading byte order
// mark still matches the Date column.
func TestParseByteOrderMark(t *testing.T) {
	res, err := testImporter(0).Parse(context.Background(), "\ufeffDate,Exercise Name,Weight,Reps\n2024-03-01,Squat,225,5\n", nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.ImportedCount != 1 || res.SetsImported != 1 {
		t.Errorf("imported=%d sets=%d, want 1 and 1", res.ImportedCount, res.SetsImported)
	}
}

// TestParseHeaderOnly verifies a file with no data rows still reports one
// final progress tick.
func TestParseHeaderOnly(t *testing.T) {
	var got []ingest.Progress
	res, err := testImporter(10).Parse(context.Background(), "Date,Exercise Name,Weight,Reps\n", func(p ingest.Progress) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := cmp.Diff([]ingest.Progress{{Processed: 0, Total: 0}}, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	if res.ImportedCount != 0 || res.RowsTotal != 0 {
		t.Errorf("result = %+v, want empty", res)
	}
}

// TestParseHeaderMatching verifies header names are case-insensitive and the
// exercise column matches by substring.
func TestParseHeaderMatching(t *testing.T) {
	csv := " DATE ,Full Exercise Name Here,WEIGHT,reps\n2024-03-01,Deadlift,315,5\n"
	res, err := testImporter(0).Parse(context.Background(), csv, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := res.Workouts[0].Entries[0].ExerciseID; got != "deadlift" {
		t.Errorf("exercise = %q, want deadlift", got)
	}
}

// TestParseGroupsByExactDate verifies sessions group by raw date string in
// first-appearance order, and entries group by raw name.
func TestParseGroupsByExactDate(t *testing.T) {
	csv := `Date,Exercise Name,Weight,Reps
2024-03-02,Squat,225,5
2024-03-01,Bench Press,135,5
2024-03-02,Leg Press,400,10
2024-03-02,Squat,235,5
2024-03-02 ,Squat,245,5
`
	res, err := testImporter(0).Parse(context.Background(), csv, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	// "2024-03-02 " differs from "2024-03-02" and is its own session.
	if len(res.Workouts) != 3 {
		t.Fatalf("workouts = %d, want 3", len(res.Workouts))
	}
	first := res.Workouts[0]
	if len(first.Entries) != 2 {
		t.Fatalf("first session entries = %d, want 2", len(first.Entries))
	}
	if first.Entries[0].ExerciseID != "squat" || len(first.Entries[0].Sets) != 2 {
		t.Errorf("first entry = %s with %d sets, want squat with 2", first.Entries[0].ExerciseID, len(first.Entries[0].Sets))
	}
	if first.Entries[1].ExerciseID != "leg_press" {
		t.Errorf("second entry = %s, want leg_press", first.Entries[1].ExerciseID)
	}
	if res.Workouts[1].Entries[0].ExerciseID != "bench_press" {
		t.Errorf("second session = %s, want bench_press", res.Workouts[1].Entries[0].ExerciseID)
	}
}

// TestParseUnmappedExercise verifies an unknown name synthesizes a custom
// exercise, is reported once, and does not touch the catalog.
func TestParseUnmappedExercise(t *testing.T) {
	cat := catalog.New()
	imp := NewImporter(cat, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	csv := `Date,Exercise Name,Weight,Reps
2024-03-01,"Leg Press, 45°",300,10
2024-03-01,"Leg Press, 45°",320,8
2024-03-01,Zercher Squat,185,5
`
	res, err := imp.Parse(context.Background(), csv, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := cmp.Diff([]string{"Leg Press, 45°", "Zercher Squat"}, res.UnmappedExerciseNames); diff != "" {
		t.Errorf("unmapped mismatch (-want +got):\n%s", diff)
	}
	if len(res.CustomExercises) != 2 {
		t.Fatalf("custom exercises = %d, want 2", len(res.CustomExercises))
	}
	if got := res.CustomExercises[0].ID; got != "leg_press_45" {
		t.Errorf("custom id = %q, want leg_press_45", got)
	}
	if got := res.Workouts[0].Entries[0].ExerciseID; got != "leg_press_45" {
		t.Errorf("entry exercise = %q, want leg_press_45", got)
	}
	if len(cat.Customs()) != 0 {
		t.Error("parse must not register custom exercises")
	}
}

// TestParseWarmupSetOrder verifies "W" in the Set Order column marks warmups.
func TestParseWarmupSetOrder(t *testing.T) {
	csv := "Date,Exercise Name,Set Order,Weight,Reps\n2024-03-01,Squat,W,135,5\n2024-03-01,Squat,1,225,5\n"
	res, err := testImporter(0).Parse(context.Background(), csv, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	sets := res.Workouts[0].Entries[0].Sets
	if !sets[0].IsWarmup || sets[1].IsWarmup {
		t.Errorf("warmup flags = %v,%v, want true,false", sets[0].IsWarmup, sets[1].IsWarmup)
	}
}

// TestParseProgressAndCancel verifies progress is reported per batch and a
// cancelled context stops the parse at the next batch boundary.
func TestParseProgressAndCancel(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Exercise Name,Weight,Reps\n")
	for i := 0; i < 25; i++ {
		b.WriteString("2024-03-01,Squat,225,5\n")
	}

	var got []ingest.Progress
	res, err := testImporter(10).Parse(context.Background(), b.String(), func(p ingest.Progress) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := []ingest.Progress{{Processed: 10, Total: 25}, {Processed: 20, Total: 25}, {Processed: 25, Total: 25}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	if res.SetsImported != 25 {
		t.Errorf("sets = %d, want 25", res.SetsImported)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var batches int
	_, err = testImporter(10).Parse(ctx, b.String(), func(ingest.Progress) {
		batches++
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if batches != 1 {
		t.Errorf("batches = %d, want 1", batches)
	}
}

// TestStartJob verifies the background job closes its progress channel and
// returns the same result as a synchronous parse.
func TestStartJob(t *testing.T) {
	job := testImporter(1).Start(context.Background(), strongCSV)
	var last ingest.Progress
	for p := range job.Progress() {
		last = p
	}
	res, err := job.Wait()
	if err != nil {
		t.Fatalf("job error: %v", err)
	}
	if res.ImportedCount != 1 {
		t.Errorf("imported = %d, want 1", res.ImportedCount)
	}
	if last.Total != 3 {
		t.Errorf("last progress total = %d, want 3", last.Total)
	}
}

// TestParseDuration verifies the supported duration forms.
func TestParseDuration(t *testing.T) {
	tests := map[string]int{
		"1h":     3600,
		"45m":    2700,
		"1h 30m": 5400,
		"2h5m":   7500,
		"":       0,
		"90":     0,
		"soon":   0,
	}
	for in, want := range tests {
		if got := ParseDuration(in); got != want {
			t.Errorf("ParseDuration(%q) = %d, want %d", in, got, want)
		}
	}
}

// TestParseNumericPrefixes verifies lenient number parsing.
func TestParseNumericPrefixes(t *testing.T) {
	if v, ok := parseFloatPrefix("135 lbs"); !ok || v != 135 {
		t.Errorf("parseFloatPrefix(135 lbs) = %v,%v", v, ok)
	}
	if v, ok := parseFloatPrefix("102.5"); !ok || v != 102.5 {
		t.Errorf("parseFloatPrefix(102.5) = %v,%v", v, ok)
	}
	if _, ok := parseFloatPrefix("lbs"); ok {
		t.Error("parseFloatPrefix(lbs) should fail")
	}
	if v, ok := parseIntPrefix("8.7"); !ok || v != 8 {
		t.Errorf("parseIntPrefix(8.7) = %v,%v", v, ok)
	}
	if r := parseRPE("11"); r != nil {
		t.Errorf("parseRPE(11) = %v, want nil", *r)
	}
	if r := parseRPE("7.3"); r == nil || *r != 7.5 {
		t.Errorf("parseRPE(7.3) = %v, want 7.5", r)
	}
}
