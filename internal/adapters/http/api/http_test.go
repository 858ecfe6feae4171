package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/studyloop/advisor/internal/adapters/http/api"
	"github.com/studyloop/advisor/internal/domain/advice"
	"github.com/studyloop/advisor/internal/domain/types"
	"github.com/studyloop/advisor/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockAssessor struct {
	lastPayload map[string]any
	result      types.Assessment
}

func (m *mockAssessor) Assess(_ context.Context, payload map[string]any) types.Assessment {
	m.lastPayload = payload
	return m.result
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	_ = logger.Init()
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&mockAssessor{})

		Convey("Then the health endpoint should serve metrics", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should serve JSON", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("And POST to the stats endpoint should 404", func() {
			req := httptest.NewRequest("POST", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAssessEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockAssessor{
			result: types.Assessment{
				RiskScore:       0.63,
				RiskLevel:       "LOW",
				Factors:         []string{"2 missing assignments (14d)"},
				Recommendations: []string{advice.RecSteadyPace},
			},
		}
		mux := newTestMux(deps)

		Convey("When posting a well-formed payload", func() {
			body := `{"missing_14d":2,"avg_grade_pct":72,"days_inactive":5,"submitted_14d":3}`
			req := httptest.NewRequest("POST", "/assess", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the response should carry the assessment envelope", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					OK               bool     `json:"ok"`
					RiskScore        float64  `json:"risk_score"`
					RiskLevel        string   `json:"risk_level"`
					Factors          []string `json:"factors"`
					Recommendations  []string `json:"recommendations"`
					GeneratedAtEpoch int64    `json:"generated_at_epoch"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeTrue)
				So(resp.RiskScore, ShouldEqual, 0.63)
				So(resp.RiskLevel, ShouldEqual, "LOW")
				So(resp.Factors, ShouldResemble, []string{"2 missing assignments (14d)"})
				So(resp.Recommendations, ShouldResemble, []string{advice.RecSteadyPace})
				So(resp.GeneratedAtEpoch, ShouldBeGreaterThan, time.Now().Add(-time.Minute).Unix())
			})

			Convey("And the decoded payload should reach the assessor", func() {
				So(deps.lastPayload["missing_14d"], ShouldEqual, float64(2))
				So(deps.lastPayload["avg_grade_pct"], ShouldEqual, float64(72))
			})

			Convey("And CORS headers should be present", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(w.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "Content-Type,Authorization")
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldEqual, "OPTIONS,POST")
			})

			Convey("And a request id should be minted", func() {
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When posting with a caller-supplied request id", func() {
			req := httptest.NewRequest("POST", "/assess", strings.NewReader(`{}`))
			req.Header.Set("X-Request-ID", "req-42")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the same id should be echoed back", func() {
				So(w.Header().Get("X-Request-ID"), ShouldEqual, "req-42")
			})
		})

		Convey("When sending a preflight request", func() {
			req := httptest.NewRequest("OPTIONS", "/assess", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should acknowledge with ok and CORS headers", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldEqual, "OPTIONS,POST")

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp, ShouldResemble, map[string]any{"ok": true})
			})

			Convey("And the assessor should not be invoked", func() {
				So(deps.lastPayload, ShouldBeNil)
			})
		})

		Convey("When posting a malformed body", func() {
			req := httptest.NewRequest("POST", "/assess", strings.NewReader(`{"missing_14d": `))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the assessor should run on an empty payload", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPayload, ShouldResemble, map[string]any{})
			})
		})

		Convey("When posting a JSON null body", func() {
			req := httptest.NewRequest("POST", "/assess", strings.NewReader(`null`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should behave like an empty payload", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPayload, ShouldResemble, map[string]any{})
			})
		})

		Convey("When using an unsupported method", func() {
			req := httptest.NewRequest("GET", "/assess", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should reject with 405 and CORS headers", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "method_not_allowed")
			})
		})
	})

	Convey("Given a server with a tight body cap", t, func() {
		deps := &mockAssessor{result: types.Assessment{RiskLevel: "LOW"}}
		mux := newTestMux(deps, api.WithMaxBodyBytes(8))

		Convey("When posting a body over the cap", func() {
			body := `{"missing_14d":2,"avg_grade_pct":72}`
			req := httptest.NewRequest("POST", "/assess", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the assessment should degrade to defaults", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPayload, ShouldResemble, map[string]any{})
			})
		})
	})
}
