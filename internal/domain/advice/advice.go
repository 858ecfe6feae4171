// Package advice turns a scored signal set into an ordered study plan.
package advice

import (
	"context"
	"strings"

	"github.com/studyloop/advisor/internal/domain/risk"
	"github.com/studyloop/advisor/internal/domain/signal"
)

// Recommendation texts. Callers and downstream tooling match on these
// verbatim, so treat them as part of the wire contract.
const (
	RecMissingPlan     = "Make a 48-hour plan to complete the missing assignments (start with the highest-weight items)."
	RecEmailInstructor = "Email the instructor to confirm deadlines and ask what to prioritize first."
	RecDailyPractice   = "Block 45–60 minutes daily for targeted practice on weak topics (quiz + review mistakes)."
	RecOfficeHours     = "Attend office hours or tutoring this week with 3 specific questions prepared."
	RecRestartMomentum = "Log in today and complete one small task (discussion post, quiz attempt, or reading notes) to restart momentum."
	RecWeeklySchedule  = "Create a weekly schedule: 3 study sessions + 1 catch-up session, and track completion."
	RecActiveRecall    = "Use active recall: summarize each module in 5 bullets, then self-test without notes."
	RecSteadyPace      = "Keep current pace—set one weekly checkpoint to ensure no assignments are missed."
	RecEasiestFirst    = "Start with the easiest assignment to build confidence, then move to the next due item."

	// WhyPrefix opens the explainability line appended when any factor
	// triggered.
	WhyPrefix = "Why this plan: "
)

// Trigger thresholds for the recommendation conditions.
const (
	gradePracticeBelow = 80
	inactiveRestartMin = 4
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithThreshold sets the risk threshold separating the catch-up plan
// from the steady-pace checkpoint. Values outside [0,1] are ignored.
func WithThreshold(t float64) Option {
	return func(b *Builder) {
		if t >= 0 && t <= 1 {
			b.threshold = t
		}
	}
}

// Builder produces the ordered recommendation list for an assessment.
// It consumes the scorer's outputs as-is and never re-derives them.
type Builder struct {
	threshold float64
}

// New creates a Builder with configuration options.
func New(opts ...Option) *Builder {
	b := &Builder{
		threshold: risk.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build appends recommendations in a fixed priority order: priority
// actions, study plan, engagement, then the explainability summary.
// Entries are never removed, reordered, or deduplicated once appended.
func (b *Builder) Build(_ context.Context, set signal.Set, riskScore float64, factors []string) []string {
	recs := make([]string, 0, 8)

	// Priority actions
	if set.Missing14d > 0 {
		recs = append(recs, RecMissingPlan, RecEmailInstructor)
	}
	if set.GradeReported && set.AvgGradePct < gradePracticeBelow {
		recs = append(recs, RecDailyPractice, RecOfficeHours)
	}
	if set.DaysInactive >= inactiveRestartMin {
		recs = append(recs, RecRestartMomentum)
	}

	// Study plan: exactly one branch fires.
	if riskScore >= b.threshold {
		recs = append(recs, RecWeeklySchedule, RecActiveRecall)
	} else {
		recs = append(recs, RecSteadyPace)
	}

	// Engagement guidance. A reported zero is real disengagement; an
	// unreported count is no evidence and stays quiet.
	if set.SubmissionsReported && set.Submitted14d == 0 {
		recs = append(recs, RecEasiestFirst)
	}

	// Explainability
	if len(factors) > 0 {
		recs = append(recs, WhyPrefix+strings.Join(factors, ", ")+".")
	}

	return recs
}

// Threshold returns the configured risk threshold.
func (b *Builder) Threshold() float64 {
	return b.threshold
}
