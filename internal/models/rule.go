package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RuleType is the discriminator of a progression rule config.
type RuleType string

const (
	RuleDoubleProgression RuleType = "double_progression"
	RuleLinear            RuleType = "linear"
	RuleRPEBased          RuleType = "rpe_based"
	RuleNone              RuleType = "none"
)

// RuleConfig is a closed set of progression configurations. Consumers
// dispatch through Accept so that adding a variant breaks every visitor at
// compile time.
type RuleConfig interface {
	Type() RuleType
	Accept(v ConfigVisitor)
	isRuleConfig()
}

// ConfigVisitor handles each RuleConfig variant.
type ConfigVisitor interface {
	VisitDoubleProgression(DoubleProgression)
	VisitLinear(Linear)
	VisitRPEBased(RPEBased)
	VisitNone(NoProgression)
}

// DoubleProgression adds weight once every evaluated set reaches the top of
// its rep range. ExerciseRanges applies only with PerExercise set; SetRanges
// only with both PerExercise and AdvancedMode set.
type DoubleProgression struct {
	RepRange        RepRange
	WeightIncrement float64
	PerExercise     bool
	ExerciseRanges  map[string]RepRange
	SetRanges       map[string][]RepRange
	AdvancedMode    bool
}

// Linear adds WeightIncrement after every successful session and deloads by
// DeloadPercent after DeloadThreshold consecutive failures.
type Linear struct {
	WeightIncrement float64
	DeloadThreshold int
	DeloadPercent   float64
}

// RPERange is an inclusive RPE window.
type RPERange struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// RPEBased adjusts weight by AdjustmentPerPoint for every RPE point the last
// logged set fell outside RPERange. Adjustments round to Rounding (5 when
// unset).
type RPEBased struct {
	TargetRPE          float64
	RPERange           RPERange
	AdjustmentPerPoint float64
	Rounding           float64
}

// NoProgression repeats the last logged values.
type NoProgression struct{}

func (DoubleProgression) Type() RuleType { return RuleDoubleProgression }
func (Linear) Type() RuleType            { return RuleLinear }
func (RPEBased) Type() RuleType          { return RuleRPEBased }
func (NoProgression) Type() RuleType     { return RuleNone }

func (c DoubleProgression) Accept(v ConfigVisitor) { v.VisitDoubleProgression(c) }
func (c Linear) Accept(v ConfigVisitor)            { v.VisitLinear(c) }
func (c RPEBased) Accept(v ConfigVisitor)          { v.VisitRPEBased(c) }
func (c NoProgression) Accept(v ConfigVisitor)     { v.VisitNone(c) }

func (DoubleProgression) isRuleConfig() {}
func (Linear) isRuleConfig()            {}
func (RPEBased) isRuleConfig()          {}
func (NoProgression) isRuleConfig()     {}

// ProgressionRule is a named rule attached to a program.
type ProgressionRule struct {
	ID     string
	Name   string
	Config RuleConfig
}

// ConfigOrNone returns the rule's config, treating nil as NoProgression.
func (r ProgressionRule) ConfigOrNone() RuleConfig {
	if r.Config == nil {
		return NoProgression{}
	}
	return r.Config
}

// ruleWire is the serialized shape shared by JSON and YAML.
type ruleWire struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Config configWire `json:"config" yaml:"config"`
}

type configWire struct {
	Type RuleType `json:"type" yaml:"type"`

	RepRange       *RepRange             `json:"rep_range,omitempty" yaml:"rep_range,omitempty"`
	PerExercise    bool                  `json:"per_exercise,omitempty" yaml:"per_exercise,omitempty"`
	ExerciseRanges map[string]RepRange   `json:"exercise_ranges,omitempty" yaml:"exercise_ranges,omitempty"`
	SetRanges      map[string][]RepRange `json:"set_ranges,omitempty" yaml:"set_ranges,omitempty"`
	AdvancedMode   bool                  `json:"advanced_mode,omitempty" yaml:"advanced_mode,omitempty"`

	WeightIncrement float64 `json:"weight_increment,omitempty" yaml:"weight_increment,omitempty"`
	DeloadThreshold int     `json:"deload_threshold,omitempty" yaml:"deload_threshold,omitempty"`
	DeloadPercent   float64 `json:"deload_percent,omitempty" yaml:"deload_percent,omitempty"`

	TargetRPE          float64   `json:"target_rpe,omitempty" yaml:"target_rpe,omitempty"`
	RPERange           *RPERange `json:"rpe_range,omitempty" yaml:"rpe_range,omitempty"`
	AdjustmentPerPoint float64   `json:"adjustment_per_point,omitempty" yaml:"adjustment_per_point,omitempty"`
	Rounding           float64   `json:"rounding,omitempty" yaml:"rounding,omitempty"`
}

// wireEncoder flattens a RuleConfig into configWire.
type wireEncoder struct{ w configWire }

func (e *wireEncoder) VisitDoubleProgression(c DoubleProgression) {
	rr := c.RepRange
	e.w = configWire{
		Type:            RuleDoubleProgression,
		RepRange:        &rr,
		WeightIncrement: c.WeightIncrement,
		PerExercise:     c.PerExercise,
		ExerciseRanges:  c.ExerciseRanges,
		SetRanges:       c.SetRanges,
		AdvancedMode:    c.AdvancedMode,
	}
}

func (e *wireEncoder) VisitLinear(c Linear) {
	e.w = configWire{
		Type:            RuleLinear,
		WeightIncrement: c.WeightIncrement,
		DeloadThreshold: c.DeloadThreshold,
		DeloadPercent:   c.DeloadPercent,
	}
}

func (e *wireEncoder) VisitRPEBased(c RPEBased) {
	rr := c.RPERange
	e.w = configWire{
		Type:               RuleRPEBased,
		TargetRPE:          c.TargetRPE,
		RPERange:           &rr,
		AdjustmentPerPoint: c.AdjustmentPerPoint,
		Rounding:           c.Rounding,
	}
}

func (e *wireEncoder) VisitNone(NoProgression) {
	e.w = configWire{Type: RuleNone}
}

func (r ProgressionRule) toWire() ruleWire {
	enc := &wireEncoder{}
	r.ConfigOrNone().Accept(enc)
	return ruleWire{ID: r.ID, Name: r.Name, Config: enc.w}
}

func (w configWire) decode() (RuleConfig, error) {
	switch w.Type {
	case RuleDoubleProgression:
		c := DoubleProgression{
			WeightIncrement: w.WeightIncrement,
			PerExercise:     w.PerExercise,
			ExerciseRanges:  w.ExerciseRanges,
			SetRanges:       w.SetRanges,
			AdvancedMode:    w.AdvancedMode,
		}
		if w.RepRange == nil {
			return nil, fmt.Errorf("double_progression: rep_range is required")
		}
		c.RepRange = *w.RepRange
		return c, nil
	case RuleLinear:
		return Linear{
			WeightIncrement: w.WeightIncrement,
			DeloadThreshold: w.DeloadThreshold,
			DeloadPercent:   w.DeloadPercent,
		}, nil
	case RuleRPEBased:
		c := RPEBased{
			TargetRPE:          w.TargetRPE,
			AdjustmentPerPoint: w.AdjustmentPerPoint,
			Rounding:           w.Rounding,
		}
		if w.RPERange == nil {
			return nil, fmt.Errorf("rpe_based: rpe_range is required")
		}
		c.RPERange = *w.RPERange
		return c, nil
	case RuleNone, "":
		return NoProgression{}, nil
	default:
		return nil, fmt.Errorf("unknown progression rule type %q", w.Type)
	}
}

func (r *ProgressionRule) fromWire(w ruleWire) error {
	cfg, err := w.Config.decode()
	if err != nil {
		return fmt.Errorf("rule %q: %w", w.ID, err)
	}
	*r = ProgressionRule{ID: w.ID, Name: w.Name, Config: cfg}
	return nil
}

func (r ProgressionRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toWire())
}

func (r *ProgressionRule) UnmarshalJSON(b []byte) error {
	var w ruleWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	return r.fromWire(w)
}

func (r ProgressionRule) MarshalYAML() (any, error) {
	return r.toWire(), nil
}

func (r *ProgressionRule) UnmarshalYAML(node *yaml.Node) error {
	var w ruleWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	return r.fromWire(w)
}
