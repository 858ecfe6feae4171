// Package service provides the core advisor service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/studyloop/advisor/internal/domain/advice"
	"github.com/studyloop/advisor/internal/domain/risk"
	"github.com/studyloop/advisor/internal/domain/signal"
	"github.com/studyloop/advisor/internal/domain/types"
	"github.com/studyloop/advisor/pkg/logger"
	"github.com/studyloop/advisor/pkg/metrics"
)

// scoreRoundFactor rounds reported risk scores to 3 decimal places.
const scoreRoundFactor = 1000

// Service wires the risk scorer and the recommendation builder in
// strict scorer-then-builder order. It holds no per-student state; the
// only mutable data is process telemetry.
type Service struct {
	mu sync.RWMutex

	// Core components
	scorer  *risk.Scorer
	builder *advice.Builder

	// Configuration
	threshold float64

	// State
	started bool

	// Telemetry
	assessments     atomic.Int64
	highAssessments atomic.Int64
	lowAssessments  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithThreshold sets the HIGH/LOW risk boundary shared by the scorer
// and the builder. Values outside [0,1] are ignored.
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		threshold: risk.DefaultThreshold,
		logger:    nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.scorer = risk.New(risk.WithThreshold(s.threshold))
	s.builder = advice.New(advice.WithThreshold(s.threshold))

	s.started = true
	s.logger.Info(ctx, "advisor service started",
		logger.Float64("riskThreshold", s.threshold),
	)

	return nil
}

// Stop shuts down the service. There is nothing to flush; the method
// exists for lifecycle symmetry.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "advisor service stopped")
}

// Assess computes one student's assessment from a decoded request
// payload. The scorer's outputs are threaded into the builder
// unchanged; classification uses the unrounded score and only the
// reported score is rounded.
func (s *Service) Assess(ctx context.Context, payload map[string]any) types.Assessment {
	start := time.Now()

	set := signal.FromMap(payload)
	res := s.scorer.Score(ctx, set)
	level := s.scorer.Level(res.Score)
	recs := s.builder.Build(ctx, set, res.Score, res.Factors)

	s.assessments.Add(1)
	if level == risk.LevelHigh {
		s.highAssessments.Add(1)
	} else {
		s.lowAssessments.Add(1)
	}

	metrics.RecordAssessment(string(level))
	metrics.ObserveRiskScore(res.Score)
	metrics.ObserveRecommendationCount(len(recs))
	metrics.RecordScoringLatency(float64(time.Since(start).Nanoseconds()) / 1e6)

	return types.Assessment{
		RiskScore:       roundScore(res.Score),
		RiskLevel:       string(level),
		Factors:         res.Factors,
		Recommendations: recs,
	}
}

// Threshold returns the configured risk boundary.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":         s.started,
		"riskThreshold":   s.threshold,
		"assessments":     s.assessments.Load(),
		"highAssessments": s.highAssessments.Load(),
		"lowAssessments":  s.lowAssessments.Load(),
	}
}

// roundScore rounds to 3 decimal places for the wire format.
func roundScore(score float64) float64 {
	return math.Round(score*scoreRoundFactor) / scoreRoundFactor
}
