package signal_test

import (
	"encoding/json"
	"testing"

	"github.com/studyloop/advisor/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromMap(t *testing.T) {
	Convey("Given a fully populated payload", t, func() {
		payload := map[string]any{
			"missing_14d":   float64(2),
			"avg_grade_pct": float64(72),
			"days_inactive": 5.0,
			"submitted_14d": float64(3),
		}

		Convey("Then all signals should be coerced", func() {
			set := signal.FromMap(payload)
			So(set.Missing14d, ShouldEqual, 2)
			So(set.AvgGradePct, ShouldEqual, 72)
			So(set.DaysInactive, ShouldEqual, 5.0)
			So(set.Submitted14d, ShouldEqual, 3)
		})

		Convey("And the grade and submission signals should be marked reported", func() {
			set := signal.FromMap(payload)
			So(set.GradeReported, ShouldBeTrue)
			So(set.SubmissionsReported, ShouldBeTrue)
		})
	})

	Convey("Given an empty payload", t, func() {
		set := signal.FromMap(map[string]any{})

		Convey("Then every signal should default to zero and stay unreported", func() {
			So(set.Missing14d, ShouldEqual, 0)
			So(set.AvgGradePct, ShouldEqual, 0)
			So(set.DaysInactive, ShouldEqual, 0.0)
			So(set.Submitted14d, ShouldEqual, 0)
			So(set.GradeReported, ShouldBeFalse)
			So(set.SubmissionsReported, ShouldBeFalse)
		})
	})

	Convey("Given a nil payload", t, func() {
		set := signal.FromMap(nil)

		Convey("Then it should behave like an empty payload", func() {
			So(set, ShouldResemble, signal.Set{})
		})
	})

	Convey("Given malformed values", t, func() {
		payload := map[string]any{
			"missing_14d":   "not-a-number",
			"avg_grade_pct": []any{1, 2},
			"days_inactive": map[string]any{"nested": true},
			"submitted_14d": nil,
		}

		Convey("Then coercion should substitute defaults, never fail", func() {
			set := signal.FromMap(payload)
			So(set, ShouldResemble, signal.Set{})
		})
	})

	Convey("Given numeric strings and json.Number values", t, func() {
		payload := map[string]any{
			"missing_14d":   "3",
			"avg_grade_pct": json.Number("65"),
			"days_inactive": "7.5",
			"submitted_14d": json.Number("bad"),
		}

		Convey("Then parseable values should convert and the rest default", func() {
			set := signal.FromMap(payload)
			So(set.Missing14d, ShouldEqual, 3)
			So(set.AvgGradePct, ShouldEqual, 65)
			So(set.DaysInactive, ShouldEqual, 7.5)
			So(set.Submitted14d, ShouldEqual, 0)
			So(set.GradeReported, ShouldBeTrue)
			So(set.SubmissionsReported, ShouldBeFalse)
		})
	})

	Convey("Given fractional counts", t, func() {
		payload := map[string]any{
			"missing_14d":   2.9,
			"submitted_14d": 0.4,
		}

		Convey("Then integer signals should truncate toward zero", func() {
			set := signal.FromMap(payload)
			So(set.Missing14d, ShouldEqual, 2)
			So(set.Submitted14d, ShouldEqual, 0)
		})
	})

	Convey("Given correlation fields alongside signals", t, func() {
		payload := map[string]any{
			"student_token": "abc123",
			"term":          "2026SP",
			"course_id":     "CSD-310",
			"avg_grade_pct": float64(90),
		}

		Convey("Then non-signal keys should be ignored", func() {
			set := signal.FromMap(payload)
			So(set.AvgGradePct, ShouldEqual, 90)
			So(set.Missing14d, ShouldEqual, 0)
		})
	})
}
