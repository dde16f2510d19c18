// Package catalog holds the exercise registry: built-in definitions, user
// custom exercises, free-text name matching and substitutes.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/claude/liftlog/internal/models"
)

// ErrInvalidName is returned for exercise names with no letters or digits.
var ErrInvalidName = errors.New("invalid exercise name")

var parentheticalRe = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)

// Catalog is safe for concurrent use. Built-in entries are fixed at
// construction; custom entries only grow.
type Catalog struct {
	mu sync.RWMutex

	defs      []models.ExerciseDefinition
	byID      map[string]int
	names     map[string]string // normalized canonical name -> id
	aliases   map[string]string // normalized alias -> id
	custom    []models.CustomExercise
	customIdx map[string]int    // id -> index into custom
	customNm  map[string]string // normalized custom name -> id
}

// New returns a catalog seeded with the built-in exercise definitions.
func New() *Catalog {
	return NewWith(builtin)
}

// NewWith returns a catalog with the given canonical definitions.
func NewWith(defs []models.ExerciseDefinition) *Catalog {
	c := &Catalog{
		defs:      make([]models.ExerciseDefinition, len(defs)),
		byID:      make(map[string]int, len(defs)),
		names:     make(map[string]string, len(defs)),
		aliases:   make(map[string]string),
		customIdx: make(map[string]int),
		customNm:  make(map[string]string),
	}
	copy(c.defs, defs)
	for i, d := range c.defs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = i
		setOnce(c.names, normalize(d.Name), d.ID)
		for _, a := range d.Aliases {
			setOnce(c.aliases, normalize(a), d.ID)
		}
	}
	return c
}

func setOnce(m map[string]string, key, id string) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = id
	}
}

// normalize case-folds and strips everything but letters and digits.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slugify derives a stable id from a display name: lowercase alphanumeric
// runs joined by underscores.
func Slugify(name string) string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return strings.Join(parts, "_")
}

// Match resolves a free-text exercise name (as exported by other tracking
// apps) to an exercise id. Canonical names are tried first, then aliases,
// then custom exercise names. A trailing parenthetical such as
// "Bench Press (Barbell)" is retried as "Barbell Bench Press" and then as
// "Bench Press".
func (c *Catalog) Match(rawName string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, candidate := range candidates(rawName) {
		if id, ok := c.lookup(normalize(candidate)); ok {
			return id, true
		}
	}
	return "", false
}

func candidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	out := []string{raw}
	if m := parentheticalRe.FindStringSubmatch(raw); m != nil {
		base, qualifier := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if qualifier != "" {
			out = append(out, qualifier+" "+base)
		}
		if base != "" {
			out = append(out, base)
		}
	}
	return out
}

func (c *Catalog) lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if id, ok := c.names[key]; ok {
		return id, true
	}
	if id, ok := c.aliases[key]; ok {
		return id, true
	}
	if id, ok := c.customNm[key]; ok {
		return id, true
	}
	return "", false
}

// AddCustomExercise creates a custom exercise in the "other" muscle group.
// It reports whether a new entry was created; an existing id is a no-op.
func (c *Catalog) AddCustomExercise(name string) (string, bool, error) {
	return c.AddCustomExerciseWithMuscle(name, models.MuscleOther)
}

// AddCustomExerciseWithMuscle creates a custom exercise with the given
// muscle group. An empty group means "other".
func (c *Catalog) AddCustomExerciseWithMuscle(name, muscle string) (string, bool, error) {
	name = strings.TrimSpace(name)
	id := Slugify(name)
	if id == "" {
		return "", false, fmt.Errorf("exercise name %q: %w", name, ErrInvalidName)
	}
	if muscle == "" {
		muscle = models.MuscleOther
	}
	created := c.AddCustom(models.CustomExercise{
		ExerciseDefinition: models.ExerciseDefinition{ID: id, Name: name, MuscleGroup: muscle},
		IsCustom:           true,
	})
	return id, created, nil
}

// AddCustom registers a prebuilt custom exercise, as restored from a
// snapshot or synthesized by an import. It is a no-op if the id exists.
func (c *Catalog) AddCustom(ce models.CustomExercise) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[ce.ID]; ok {
		return false
	}
	if _, ok := c.customIdx[ce.ID]; ok {
		return false
	}
	if ce.MuscleGroup == "" {
		ce.MuscleGroup = models.MuscleOther
	}
	ce.IsCustom = true
	c.customIdx[ce.ID] = len(c.custom)
	c.custom = append(c.custom, ce)
	setOnce(c.customNm, normalize(ce.Name), ce.ID)
	return true
}

// Exercise looks up a built-in or custom exercise by id.
func (c *Catalog) Exercise(id string) (models.ExerciseDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i, ok := c.byID[id]; ok {
		return c.defs[i], true
	}
	if i, ok := c.customIdx[id]; ok {
		return c.custom[i].ExerciseDefinition, true
	}
	return models.ExerciseDefinition{}, false
}

// MuscleGroup returns the primary muscle group of an exercise, or "other"
// for unknown ids.
func (c *Catalog) MuscleGroup(id string) string {
	if d, ok := c.Exercise(id); ok && d.MuscleGroup != "" {
		return d.MuscleGroup
	}
	return models.MuscleOther
}

// Name returns the display name of an exercise, falling back to the id.
func (c *Catalog) Name(id string) string {
	if d, ok := c.Exercise(id); ok {
		return d.Name
	}
	return id
}

// Customs returns a copy of the custom exercises in creation order.
func (c *Catalog) Customs() []models.CustomExercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CustomExercise, len(c.custom))
	copy(out, c.custom)
	return out
}

// All returns built-in then custom definitions.
func (c *Catalog) All() []models.ExerciseDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ExerciseDefinition, 0, len(c.defs)+len(c.custom))
	out = append(out, c.defs...)
	for _, ce := range c.custom {
		out = append(out, ce.ExerciseDefinition)
	}
	return out
}

// Substitutes returns interchangeable exercises for id. Members of the same
// movement pattern come first; exercises outside any pattern fall back to
// built-ins sharing the primary muscle group. Unknown ids return nil.
func (c *Catalog) Substitutes(id string) []string {
	for _, p := range movementPatterns {
		for _, member := range p.IDs {
			if member != id {
				continue
			}
			out := make([]string, 0, len(p.IDs)-1)
			for _, other := range p.IDs {
				if other != id {
					out = append(out, other)
				}
			}
			return out
		}
	}

	def, ok := c.Exercise(id)
	if !ok || def.MuscleGroup == models.MuscleOther {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, d := range c.defs {
		if d.ID != id && d.MuscleGroup == def.MuscleGroup {
			out = append(out, d.ID)
		}
	}
	return out
}

// SetXP scores one set: a volume component plus a per-rep component, scaled
// by the exercise's muscle group. Non-positive reps score zero.
func (c *Catalog) SetXP(exerciseID string, weight float64, reps int) int {
	if reps <= 0 {
		return 0
	}
	if weight < 0 {
		weight = 0
	}
	mult, ok := xpMultiplier[c.MuscleGroup(exerciseID)]
	if !ok {
		mult = 1
	}
	base := weight*float64(reps)/10 + float64(reps)
	return int(math.Round(base * mult))
}
