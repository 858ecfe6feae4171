// Package risk computes a bounded, explainable risk score from a
// student's signal set.
package risk

import (
	"context"
	"math"

	"github.com/studyloop/advisor/internal/domain/signal"
)

// DefaultThreshold is the HIGH/LOW classification boundary used when no
// override is configured.
const DefaultThreshold = 0.75

// maxScore caps the aggregate risk score.
const maxScore = 1.0

// Level is the binary classification of a risk score.
type Level string

// Risk levels.
const (
	LevelHigh Level = "HIGH"
	LevelLow  Level = "LOW"
)

// Result contains the computed score and the factors that produced it.
// Factors appear in ladder order: missing assignments, grade,
// inactivity.
type Result struct {
	Score   float64
	Factors []string
}

// rule is one band of a threshold ladder. Ladders are evaluated
// top-down; the first matching rule supplies both the partial score and
// the factor label, and evaluation stops there.
type rule struct {
	applies func(v float64) bool
	score   float64
	label   string
}

// evalLadder returns the partial score and factor label of the first
// matching rule, or (0, "") when no band applies.
func evalLadder(ladder []rule, v float64) (float64, string) {
	for _, r := range ladder {
		if r.applies(v) {
			return r.score, r.label
		}
	}
	return 0, ""
}

// missingLadder scores missing assignments over the trailing 14 days.
// The 1 and 2 bands are exact matches; negative counts fall through to
// the zero band.
var missingLadder = []rule{
	{func(v float64) bool { return v >= 3 }, 0.35, "3+ missing assignments (14d)"},
	{func(v float64) bool { return v == 2 }, 0.25, "2 missing assignments (14d)"},
	{func(v float64) bool { return v == 1 }, 0.15, "1 missing assignment (14d)"},
}

// gradeLadder scores the average grade percentage. Bands use strict
// "<" comparisons in ascending threshold order, so an exact 70, 80, or
// 85 lands in the next, lower-severity band.
var gradeLadder = []rule{
	{func(v float64) bool { return v < 70 }, 0.35, "Average grade < 70%"},
	{func(v float64) bool { return v < 80 }, 0.20, "Average grade < 80%"},
	{func(v float64) bool { return v < 85 }, 0.10, "Average grade < 85%"},
}

// inactivityLadder scores days since last activity.
var inactivityLadder = []rule{
	{func(v float64) bool { return v >= 7 }, 0.30, "Inactive 7+ days"},
	{func(v float64) bool { return v >= 4 }, 0.18, "Inactive 4+ days"},
	{func(v float64) bool { return v >= 2 }, 0.08, "Inactive 2+ days"},
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithThreshold sets the HIGH/LOW classification boundary. Values
// outside [0,1] are ignored.
func WithThreshold(t float64) Option {
	return func(s *Scorer) {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// Scorer maps a signal set to a clamped [0,1] risk score plus the list
// of triggered factors. It is stateless; the same input always yields
// the same output.
type Scorer struct {
	threshold float64
}

// New creates a Scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the aggregate risk for the given signal set. Each
// ladder contributes at most one partial score; the sum is clamped to
// 1.0. The grade ladder is skipped when no grade was reported, since an
// unreported grade is missing evidence rather than a failing average.
// The ctx parameter satisfies the project-wide convention; nothing here
// blocks.
func (s *Scorer) Score(_ context.Context, set signal.Set) Result {
	ladders := []struct {
		ladder  []rule
		value   float64
		enabled bool
	}{
		{missingLadder, float64(set.Missing14d), true},
		{gradeLadder, float64(set.AvgGradePct), set.GradeReported},
		{inactivityLadder, set.DaysInactive, true},
	}

	var score float64
	factors := make([]string, 0, len(ladders))
	for _, l := range ladders {
		if !l.enabled {
			continue
		}
		partial, label := evalLadder(l.ladder, l.value)
		score += partial
		if label != "" {
			factors = append(factors, label)
		}
	}

	return Result{
		Score:   math.Min(score, maxScore),
		Factors: factors,
	}
}

// Level classifies a score against the configured threshold.
func (s *Scorer) Level(score float64) Level {
	if score >= s.threshold {
		return LevelHigh
	}
	return LevelLow
}

// Threshold returns the configured classification boundary.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}
