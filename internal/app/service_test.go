package service_test

import (
	"context"
	"testing"

	app "github.com/studyloop/advisor/internal/app"
	"github.com/studyloop/advisor/internal/domain/advice"
	"github.com/studyloop/advisor/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newStartedService(opts ...app.Option) *app.Service {
	_ = logger.Init()
	svc := app.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		_ = logger.Init()
		svc := app.New()

		Convey("When starting it", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start cleanly and idempotently", func() {
				So(err, ShouldBeNil)
				So(svc.Start(context.Background()), ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And stopping should flip the started flag", func() {
				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})

		Convey("When constructed with options", func() {
			custom := app.New(app.WithThreshold(0.5))

			Convey("Then the threshold should be injected", func() {
				So(custom.Threshold(), ShouldEqual, 0.5)
			})
		})

		Convey("When constructed with an out-of-range threshold", func() {
			custom := app.New(app.WithThreshold(2.0))

			Convey("Then the default should be kept", func() {
				So(custom.Threshold(), ShouldEqual, 0.75)
			})
		})
	})
}

func TestService_Assess(t *testing.T) {
	Convey("Given a started service with the default threshold", t, func() {
		svc := newStartedService()
		ctx := context.Background()

		Convey("When assessing a moderately at-risk student", func() {
			payload := map[string]any{
				"missing_14d":   float64(2),
				"avg_grade_pct": float64(72),
				"submitted_14d": float64(3),
				"days_inactive": float64(5),
			}
			out := svc.Assess(ctx, payload)

			Convey("Then the score should sum the triggered partials", func() {
				So(out.RiskScore, ShouldEqual, 0.63)
				So(out.RiskLevel, ShouldEqual, "LOW")
			})

			Convey("And factors should come out in ladder order", func() {
				So(out.Factors, ShouldResemble, []string{
					"2 missing assignments (14d)",
					"Average grade < 80%",
					"Inactive 4+ days",
				})
			})
		})

		Convey("When assessing a severely at-risk student", func() {
			payload := map[string]any{
				"missing_14d":   float64(3),
				"avg_grade_pct": float64(60),
				"days_inactive": float64(8),
				"submitted_14d": float64(0),
			}
			out := svc.Assess(ctx, payload)

			Convey("Then the score should clamp at 1.0 and classify HIGH", func() {
				So(out.RiskScore, ShouldEqual, 1.0)
				So(out.RiskLevel, ShouldEqual, "HIGH")
			})

			Convey("And the full plan should come out in priority order", func() {
				So(out.Recommendations, ShouldResemble, []string{
					advice.RecMissingPlan,
					advice.RecEmailInstructor,
					advice.RecDailyPractice,
					advice.RecOfficeHours,
					advice.RecRestartMomentum,
					advice.RecWeeklySchedule,
					advice.RecActiveRecall,
					advice.RecEasiestFirst,
					advice.WhyPrefix + "3+ missing assignments (14d), Average grade < 70%, Inactive 7+ days.",
				})
			})
		})

		Convey("When assessing an empty payload", func() {
			out := svc.Assess(ctx, map[string]any{})

			Convey("Then no evidence should mean zero risk", func() {
				So(out.RiskScore, ShouldEqual, 0.0)
				So(out.RiskLevel, ShouldEqual, "LOW")
				So(out.Factors, ShouldBeEmpty)
			})

			Convey("And the plan should be just the steady-pace checkpoint", func() {
				So(out.Recommendations, ShouldResemble, []string{advice.RecSteadyPace})
			})
		})

		Convey("When assessing the same payload twice", func() {
			payload := map[string]any{
				"missing_14d":   float64(1),
				"avg_grade_pct": float64(78),
				"days_inactive": float64(3),
				"submitted_14d": float64(2),
			}
			first := svc.Assess(ctx, payload)
			second := svc.Assess(ctx, payload)

			Convey("Then both assessments should be identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When several assessments have run", func() {
			svc.Assess(ctx, map[string]any{"missing_14d": float64(3), "avg_grade_pct": float64(60), "days_inactive": float64(8)})
			svc.Assess(ctx, map[string]any{})

			Convey("Then the counters should split by level", func() {
				stats := svc.GetStats()
				So(stats["assessments"], ShouldEqual, int64(2))
				So(stats["highAssessments"], ShouldEqual, int64(1))
				So(stats["lowAssessments"], ShouldEqual, int64(1))
			})
		})
	})
}
