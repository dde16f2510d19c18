// Package progression computes next-session prescriptions from a rule and
// an exercise's logged history. Everything here is a pure function of its
// inputs; nothing is cached or persisted between calls.
package progression

import (
	"math"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// State is the position of an exercise in its progression cycle. It is
// derived fresh from history on every evaluation.
type State string

const (
	StateNew       State = "new"
	StateRamping   State = "ramping"
	StateInRange   State = "in_range"
	StateAtCeiling State = "at_ceiling"
	StateDeload    State = "deload"
	StateHold      State = "hold"
)

// RangeSource names the level a rep range was resolved from.
type RangeSource string

const (
	RangeFromSet      RangeSource = "set"
	RangeFromExercise RangeSource = "exercise"
	RangeFromRule     RangeSource = "rule"
	RangeFromTemplate RangeSource = "template"
	RangeFromHistory  RangeSource = "history"
	RangeFromDefault  RangeSource = "default"
)

// DefaultRounding is the RPE adjustment step when a rule leaves it unset.
const DefaultRounding = 5.0

// defaultReps is the rep target used when neither the rule nor the template
// supplies one.
var defaultReps = models.RepRange{Low: 5, High: 5}

// Request identifies what to prescribe. SetIndex is zero-based; -1 asks for
// the exercise as a whole. TargetReps and TargetSets come from the template
// and are used by rules that carry no rep range of their own.
type Request struct {
	ExerciseID string
	SetIndex   int
	TargetReps models.RepRange
	TargetSets int
}

// Prescription is the computed target for the next session.
type Prescription struct {
	ExerciseID   string      `json:"exercise_id"`
	Rule         string      `json:"rule"`
	Weight       float64     `json:"weight"`
	RepLow       int         `json:"rep_low"`
	RepHigh      int         `json:"rep_high"`
	TargetReps   int         `json:"target_reps"`
	TargetRPE    *float64    `json:"target_rpe,omitempty"`
	State        State       `json:"state"`
	RangeSource  RangeSource `json:"range_source"`
	FailureCount int         `json:"failure_count,omitempty"`
	HasHistory   bool        `json:"has_history"`
}

// session is one workout's working sets of a single exercise.
type session struct {
	date   time.Time
	sets   []indexedSet
	weight float64          // heaviest working weight
	hint   *models.RepRange // target carried on the entry, if any
}

// indexedSet keeps a set's position among the session's working sets so
// per-set rep ranges line up.
type indexedSet struct {
	index int
	set   models.SetRecord
}

// atWeight returns the sets logged at the session's working weight.
func (s session) atWeight() []indexedSet {
	var out []indexedSet
	for _, is := range s.sets {
		if is.set.Weight == s.weight {
			out = append(out, is)
		}
	}
	return out
}

// lastRPE returns the RPE of the last working set that logged one.
func (s session) lastRPE() (float64, bool) {
	for i := len(s.sets) - 1; i >= 0; i-- {
		if r := s.sets[i].set.RPE; r != nil {
			return *r, true
		}
	}
	return 0, false
}

// sessions extracts the exercise's working sets per workout, oldest first.
// Workouts without working sets of the exercise are skipped.
func sessions(exerciseID string, history []models.Workout) []session {
	ws := append([]models.Workout(nil), history...)
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].StartTime.Before(ws[j].StartTime) })

	var out []session
	for _, w := range ws {
		s := session{date: w.StartTime}
		for _, e := range w.Entries {
			if e.ExerciseID != exerciseID {
				continue
			}
			if s.hint == nil && e.TargetReps != nil && e.TargetReps.Valid() {
				h := *e.TargetReps
				s.hint = &h
			}
			for _, set := range e.WorkingSets() {
				if set.Reps <= 0 {
					continue
				}
				s.sets = append(s.sets, indexedSet{index: len(s.sets), set: set})
				if set.Weight > s.weight {
					s.weight = set.Weight
				}
			}
		}
		if len(s.sets) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Compute returns the prescription for req under rule, given the history
// of completed workouts in any order.
func Compute(rule models.ProgressionRule, req Request, history []models.Workout) Prescription {
	e := &evaluator{
		req:      req,
		sessions: sessions(req.ExerciseID, history),
		p: Prescription{
			ExerciseID: req.ExerciseID,
			Rule:       string(rule.ConfigOrNone().Type()),
		},
	}
	e.p.HasHistory = len(e.sessions) > 0
	rule.ConfigOrNone().Accept(e)
	return e.p
}

// evaluator dispatches on the rule variant. Each Visit method fills p.
type evaluator struct {
	req      Request
	sessions []session
	p        Prescription
}

var _ models.ConfigVisitor = (*evaluator)(nil)

func (e *evaluator) last() (session, bool) {
	if len(e.sessions) == 0 {
		return session{}, false
	}
	return e.sessions[len(e.sessions)-1], true
}

// templateRange is the rep target for rules without a rep range.
func (e *evaluator) templateRange() (models.RepRange, RangeSource) {
	if e.req.TargetReps.Valid() {
		return e.req.TargetReps, RangeFromTemplate
	}
	return defaultReps, RangeFromDefault
}

func (e *evaluator) setRange(r models.RepRange, src RangeSource) {
	e.p.RepLow, e.p.RepHigh = r.Low, r.High
	e.p.TargetReps = r.Low
	e.p.RangeSource = src
}

// ResolveRange picks the rep range for one set: the per-set override when
// both PerExercise and AdvancedMode are on and the index is configured,
// then the per-exercise override when PerExercise is on, then the rule
// default. An index with no configured override, or one past targetSets
// when that is known, falls through to the next level.
func ResolveRange(c models.DoubleProgression, exerciseID string, setIndex, targetSets int) (models.RepRange, RangeSource) {
	if c.PerExercise && c.AdvancedMode && setIndex >= 0 && (targetSets <= 0 || setIndex < targetSets) {
		if ranges := c.SetRanges[exerciseID]; setIndex < len(ranges) && ranges[setIndex].Valid() {
			return ranges[setIndex], RangeFromSet
		}
	}
	if c.PerExercise {
		if r, ok := c.ExerciseRanges[exerciseID]; ok && r.Valid() {
			return r, RangeFromExercise
		}
	}
	return c.RepRange, RangeFromRule
}

func (e *evaluator) VisitDoubleProgression(c models.DoubleProgression) {
	rr, src := ResolveRange(c, e.req.ExerciseID, e.req.SetIndex, e.req.TargetSets)
	e.setRange(rr, src)

	prior, ok := e.last()
	if !ok {
		e.p.State = StateNew
		return
	}
	e.p.Weight = prior.weight

	evaluated := prior.atWeight()
	allAtCeiling, anyBelowFloor := true, false
	for _, is := range evaluated {
		setRR, _ := ResolveRange(c, e.req.ExerciseID, is.index, e.req.TargetSets)
		if is.set.Reps < setRR.High {
			allAtCeiling = false
		}
		if is.set.Reps < setRR.Low {
			anyBelowFloor = true
		}
	}

	switch {
	case allAtCeiling:
		e.p.Weight = prior.weight + c.WeightIncrement
		e.p.TargetReps = rr.Low
		e.p.State = StateAtCeiling
	case anyBelowFloor:
		e.p.TargetReps = rr.Low
		e.p.State = StateRamping
	default:
		e.p.State = StateInRange
		if prior.hint != nil && prior.hint.Low >= rr.Low && prior.hint.Low <= rr.High {
			e.p.TargetReps = prior.hint.Low
		}
	}
}

func (e *evaluator) VisitLinear(c models.Linear) {
	rr, src := e.templateRange()
	e.setRange(rr, src)
	if len(e.sessions) == 0 {
		e.p.State = StateNew
		return
	}

	var (
		next     float64
		failures int
		state    State
	)
	for _, s := range e.sessions {
		target := rr.Low
		if s.hint != nil {
			target = s.hint.Low
		}
		if e.linearSuccess(s, target) {
			next = s.weight + c.WeightIncrement
			failures = 0
			state = StateAtCeiling
			continue
		}
		failures++
		next = s.weight
		state = StateRamping
		if c.DeloadThreshold > 0 && failures >= c.DeloadThreshold {
			next = math.Round(s.weight*(1-c.DeloadPercent)*100) / 100
			failures = 0
			state = StateDeload
		}
	}

	e.p.Weight = math.Max(next, 0)
	e.p.FailureCount = failures
	e.p.State = state
}

// linearSuccess reports whether every prescribed set met the target. With
// TargetSets known, fewer logged sets than prescribed is a failure.
func (e *evaluator) linearSuccess(s session, target int) bool {
	if e.req.TargetSets > 0 && len(s.sets) < e.req.TargetSets {
		return false
	}
	for _, is := range s.sets {
		if is.set.Reps < target {
			return false
		}
	}
	return true
}

func (e *evaluator) VisitRPEBased(c models.RPEBased) {
	rr, src := e.templateRange()
	e.setRange(rr, src)
	if c.TargetRPE > 0 {
		t := c.TargetRPE
		e.p.TargetRPE = &t
	}

	prior, ok := e.last()
	if !ok {
		e.p.State = StateNew
		return
	}
	e.p.Weight = prior.weight
	e.p.State = StateInRange

	rpe, ok := prior.lastRPE()
	if !ok {
		e.p.State = StateHold
		return
	}

	var delta float64
	switch {
	case rpe < c.RPERange.Low:
		delta = c.AdjustmentPerPoint * (c.RPERange.Low - rpe)
		e.p.State = StateAtCeiling
	case rpe > c.RPERange.High:
		delta = -c.AdjustmentPerPoint * (rpe - c.RPERange.High)
		e.p.State = StateRamping
	default:
		return
	}

	step := c.Rounding
	if step <= 0 {
		step = DefaultRounding
	}
	delta = math.Round(delta/step) * step
	e.p.Weight = math.Max(prior.weight+delta, 0)
}

func (e *evaluator) VisitNone(models.NoProgression) {
	prior, ok := e.last()
	if !ok {
		rr, src := e.templateRange()
		e.setRange(rr, src)
		e.p.State = StateNew
		return
	}
	lastSet := prior.sets[len(prior.sets)-1].set
	e.p.Weight = lastSet.Weight
	e.setRange(models.RepRange{Low: lastSet.Reps, High: lastSet.Reps}, RangeFromHistory)
	if lastSet.RPE != nil {
		r := *lastSet.RPE
		e.p.TargetRPE = &r
	}
	e.p.State = StateHold
}
