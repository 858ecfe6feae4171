// Package signal contains the behavioral signal set consumed by scoring.
package signal

import (
	"encoding/json"
	"strconv"
)

// Envelope keys recognized by FromMap. Any other key in the inbound
// payload (correlation token, term, course id) is ignored here and must
// never influence scoring.
const (
	KeyMissing14d   = "missing_14d"
	KeyAvgGradePct  = "avg_grade_pct"
	KeyDaysInactive = "days_inactive"
	KeySubmitted14d = "submitted_14d"
)

// Set is one student's behavioral snapshot for a single assessment.
// Zero values are the documented defaults for absent signals.
//
// GradeReported and SubmissionsReported distinguish an explicit zero
// from an absent signal: a reported grade of 0 is a failing grade and a
// reported submission count of 0 is real disengagement, while an empty
// envelope carries no evidence at all and must score zero risk.
type Set struct {
	Missing14d   int     // missing assignments, trailing 14 days
	AvgGradePct  int     // integer percentage grade average
	DaysInactive float64 // days since last activity
	Submitted14d int     // submissions, trailing 14 days

	GradeReported       bool
	SubmissionsReported bool
}

// FromMap coerces a decoded JSON envelope into a Set. Coercion is
// total: absent or non-numeric values become the inert zero default for
// that signal, never an error.
func FromMap(payload map[string]any) Set {
	var set Set

	if v, ok := toFloat(payload[KeyMissing14d]); ok {
		set.Missing14d = int(v)
	}
	if v, ok := toFloat(payload[KeyAvgGradePct]); ok {
		set.AvgGradePct = int(v)
		set.GradeReported = true
	}
	if v, ok := toFloat(payload[KeyDaysInactive]); ok {
		set.DaysInactive = v
	}
	if v, ok := toFloat(payload[KeySubmitted14d]); ok {
		set.Submitted14d = int(v)
		set.SubmissionsReported = true
	}

	return set
}

// toFloat converts the numeric shapes a JSON decoder can produce.
// Integer coercion at the call sites truncates toward zero, so
// fractional or negative garbage lands in the zero-risk band of every
// ladder.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
