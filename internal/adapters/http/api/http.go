// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/studyloop/advisor/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Assess computes one assessment from a decoded request payload.
	// It is total: any payload shape yields a valid assessment.
	Assess(ctx context.Context, payload map[string]any) types.Assessment
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	assessHandler *AssessHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps the request body size accepted by POST /assess.
// Non-positive values are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.assessHandler.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		assessHandler: NewAssessHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/assess", RequestIDMiddleware(MetricsMiddleware(s.assessHandler.HandleAssess, "assess")))
}

// assessResponse is the wire envelope for POST /assess. Field order and
// names are part of the public contract.
type assessResponse struct {
	OK               bool     `json:"ok"`
	RiskScore        float64  `json:"risk_score"`
	RiskLevel        string   `json:"risk_level"`
	Factors          []string `json:"factors"`
	Recommendations  []string `json:"recommendations"`
	GeneratedAtEpoch int64    `json:"generated_at_epoch"`
}

// preflightResponse acknowledges an OPTIONS preflight.
type preflightResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// setCORS stamps the permissive CORS contract expected by browser
// clients of the assessment endpoint. Every /assess response carries
// these headers, not just the preflight.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "OPTIONS,POST")
}
