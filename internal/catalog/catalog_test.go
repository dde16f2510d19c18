package catalog

import (
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestMatch verifies canonical names, aliases and parenthetical qualifiers
// resolve regardless of case, punctuation and spacing.
func TestMatch(t *testing.T) {
	c := New()
	tests := []struct {
		raw  string
		want string
	}{
		{"Bench Press", "bench_press"},
		{"  bench   PRESS ", "bench_press"},
		{"Bench Press (Barbell)", "bench_press"},
		{"Bench Press (Dumbbell)", "dumbbell_bench_press"},
		{"Squat (Barbell)", "squat"},
		{"OHP", "overhead_press"},
		{"Pull-Ups", "pull_up"},
		{"T Bar Row", "t_bar_row"},
		{"Leg Press", "leg_press"},
		{"Romanian Deadlift (Barbell)", "romanian_deadlift"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := c.Match(tt.raw)
			if !ok {
				t.Fatalf("Match(%q) found nothing, want %q", tt.raw, tt.want)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestMatchDeterministic verifies repeated matches against an unchanged
// catalog always return the same id.
func TestMatchDeterministic(t *testing.T) {
	c := New()
	first, ok := c.Match("Bench Press (Barbell)")
	if !ok {
		t.Fatal("expected a match")
	}
	for i := 0; i < 50; i++ {
		if got, _ := c.Match("Bench Press (Barbell)"); got != first {
			t.Fatalf("match %d = %q, want %q", i, got, first)
		}
	}
}

// TestMatchFirstEntryWins verifies that when two definitions share a
// normalized alias, the earlier one in catalog order is chosen.
func TestMatchFirstEntryWins(t *testing.T) {
	c := NewWith([]models.ExerciseDefinition{
		{ID: "a", Name: "Alpha", Aliases: []string{"Shared"}},
		{ID: "b", Name: "Beta", Aliases: []string{"shared!"}},
	})
	if got, _ := c.Match("SHARED"); got != "a" {
		t.Errorf("Match(SHARED) = %q, want a", got)
	}
}

// TestMatchMiss verifies unknown names report no match.
func TestMatchMiss(t *testing.T) {
	c := New()
	if id, ok := c.Match("Zercher Carry"); ok {
		t.Errorf("Match(Zercher Carry) = %q, want no match", id)
	}
	if _, ok := c.Match("   "); ok {
		t.Error("blank name should not match")
	}
}

// TestAddCustomExerciseIdempotent verifies that adding the same name twice
// creates exactly one entry keyed by its slug.
func TestAddCustomExerciseIdempotent(t *testing.T) {
	c := New()
	id, created, err := c.AddCustomExercise("Landmine Press")
	if err != nil {
		t.Fatal(err)
	}
	if id != "landmine_press" || !created {
		t.Fatalf("first add = (%q, %v), want (landmine_press, true)", id, created)
	}
	id, created, err = c.AddCustomExercise("Landmine Press")
	if err != nil {
		t.Fatal(err)
	}
	if id != "landmine_press" || created {
		t.Fatalf("second add = (%q, %v), want (landmine_press, false)", id, created)
	}
	if n := len(c.Customs()); n != 1 {
		t.Errorf("custom count = %d, want 1", n)
	}
	def, ok := c.Exercise("landmine_press")
	if !ok {
		t.Fatal("custom exercise not found by id")
	}
	if def.MuscleGroup != models.MuscleOther {
		t.Errorf("muscle group = %q, want %q", def.MuscleGroup, models.MuscleOther)
	}
	if got, _ := c.Match("landmine press"); got != "landmine_press" {
		t.Errorf("Match after add = %q, want landmine_press", got)
	}
}

// TestAddCustomExerciseBuiltinCollision verifies a custom name whose slug
// equals a built-in id is a no-op.
func TestAddCustomExerciseBuiltinCollision(t *testing.T) {
	c := New()
	_, created, err := c.AddCustomExerciseWithMuscle("Bench Press", models.MuscleChest)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("expected no-op for a built-in id")
	}
	if _, _, err := c.AddCustomExercise("!!!"); err == nil {
		t.Error("expected error for a name without letters or digits")
	}
}

// TestSlugify verifies slug derivation.
func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Landmine Press":      "landmine_press",
		"Leg Press, 45°":      "leg_press_45",
		"  Z-Press  ":         "z_press",
		"Cable Fly (High→Low)": "cable_fly_high_low",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestSubstitutes verifies movement-pattern substitutes are stable and
// exclude the exercise itself.
func TestSubstitutes(t *testing.T) {
	c := New()
	got := c.Substitutes("pull_up")
	want := []string{"chin_up", "lat_pulldown"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Substitutes(pull_up) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(got, c.Substitutes("pull_up")); diff != "" {
		t.Errorf("Substitutes not stable:\n%s", diff)
	}
	if got := c.Substitutes("nope"); got != nil {
		t.Errorf("Substitutes(nope) = %v, want nil", got)
	}
}

// TestSubstitutesCustomByMuscle verifies custom exercises fall back to
// built-ins with the same primary muscle.
func TestSubstitutesCustomByMuscle(t *testing.T) {
	c := New()
	id, _, _ := c.AddCustomExerciseWithMuscle("Calf Press", models.MuscleCalves)
	got := c.Substitutes(id)
	if diff := cmp.Diff([]string{"calf_raise"}, got); diff != "" {
		t.Errorf("Substitutes(%s) mismatch (-want +got):\n%s", id, diff)
	}
}

// TestSetXP verifies the XP formula is deterministic and ignores invalid sets.
func TestSetXP(t *testing.T) {
	c := New()
	// chest multiplier 1.0: 135*8/10 + 8 = 116
	if got := c.SetXP("bench_press", 135, 8); got != 116 {
		t.Errorf("SetXP(bench 135x8) = %d, want 116", got)
	}
	if got := c.SetXP("bench_press", 135, 0); got != 0 {
		t.Errorf("SetXP with zero reps = %d, want 0", got)
	}
	// unknown exercise uses multiplier 1.0 on bodyweight reps
	if got := c.SetXP("mystery", 0, 10); got != 10 {
		t.Errorf("SetXP(mystery 0x10) = %d, want 10", got)
	}
}
