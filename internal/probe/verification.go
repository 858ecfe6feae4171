package probe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studyloop/advisor/internal/domain/advice"
	"github.com/studyloop/advisor/internal/domain/risk"
	"github.com/studyloop/advisor/internal/domain/signal"
	"github.com/studyloop/advisor/pkg/logger"
)

// verifyResults checks every returned assessment against the published
// contract: scores stay in [0,1], levels agree with the threshold, and
// each response matches a local replay of the same payload. Violations
// are logged and counted, not fatal, so one bad response does not hide
// the rest.
func verifyResults(ctx context.Context, config *Config, results []submission, stats *Stats) error {
	logger.Get().Info(ctx, "verifying assessments", logger.Int("count", len(results)))

	if len(results) == 0 {
		return fmt.Errorf("no assessments to verify")
	}

	scorer := risk.New(risk.WithThreshold(config.Threshold))
	builder := advice.New(advice.WithThreshold(config.Threshold))

	violations := 0
	for _, s := range results {
		if err := verifySingle(ctx, scorer, builder, s); err != nil {
			violations++
			logger.Get().Warn(ctx, "contract violation",
				logger.String("archetype", s.Profile.Archetype),
				logger.Error(err))
		}
	}

	stats.ContractViolations = violations
	if violations > 0 {
		return fmt.Errorf("%d of %d assessments violated the contract", violations, len(results))
	}

	logger.Get().Info(ctx, "all assessments verified")
	return nil
}

// verifySingle replays one profile through the local scorer and
// compares the service's answer field by field.
func verifySingle(_ context.Context, scorer *risk.Scorer, builder *advice.Builder, s submission) error {
	out := s.Response

	if out.RiskScore < 0 || out.RiskScore > 1 {
		return fmt.Errorf("risk score %.3f outside [0,1]", out.RiskScore)
	}
	if out.RiskLevel != string(risk.LevelHigh) && out.RiskLevel != string(risk.LevelLow) {
		return fmt.Errorf("unknown risk level %q", out.RiskLevel)
	}

	set, err := wireSignalSet(s.Profile)
	if err != nil {
		return err
	}

	expected := scorer.Score(context.Background(), set)
	expectedLevel := scorer.Level(expected.Score)
	expectedRecs := builder.Build(context.Background(), set, expected.Score, expected.Factors)

	if out.RiskLevel != string(expectedLevel) {
		return fmt.Errorf("level %s does not match replay %s (score %.3f)", out.RiskLevel, expectedLevel, expected.Score)
	}
	if diff := out.RiskScore - expected.Score; diff > 0.0005 || diff < -0.0005 {
		return fmt.Errorf("score %.3f does not match replay %.3f", out.RiskScore, expected.Score)
	}
	if len(out.Factors) != len(expected.Factors) {
		return fmt.Errorf("factor count %d does not match replay %d", len(out.Factors), len(expected.Factors))
	}
	for i := range out.Factors {
		if out.Factors[i] != expected.Factors[i] {
			return fmt.Errorf("factor %d is %q, replay says %q", i, out.Factors[i], expected.Factors[i])
		}
	}
	if len(out.Recommendations) != len(expectedRecs) {
		return fmt.Errorf("recommendation count %d does not match replay %d", len(out.Recommendations), len(expectedRecs))
	}
	for i := range out.Recommendations {
		if out.Recommendations[i] != expectedRecs[i] {
			return fmt.Errorf("recommendation %d does not match replay", i)
		}
	}
	if out.GeneratedAtEpoch <= 0 {
		return fmt.Errorf("generated_at_epoch %d is not a unix timestamp", out.GeneratedAtEpoch)
	}

	return nil
}

// wireSignalSet round-trips the profile through JSON so the local
// replay sees exactly the envelope the service received, including
// omitted zero signals.
func wireSignalSet(p Profile) (signal.Set, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return signal.Set{}, fmt.Errorf("failed to marshal profile: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return signal.Set{}, fmt.Errorf("failed to round-trip profile: %w", err)
	}
	return signal.FromMap(payload), nil
}

// verifyDeterminism resubmits a handful of profiles and requires
// byte-for-byte identical assessments, timestamp aside.
func verifyDeterminism(ctx context.Context, config *Config, results []submission) error {
	if len(results) == 0 {
		return nil
	}

	sample := len(results)
	if sample > 10 {
		sample = 10
	}

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/assess"

	for i := 0; i < sample; i++ {
		first := results[i]
		second, err := submitSingleProfile(ctx, client, url, first.Profile)
		if err != nil {
			return fmt.Errorf("resubmission failed: %w", err)
		}

		if second.RiskScore != first.Response.RiskScore ||
			second.RiskLevel != first.Response.RiskLevel ||
			len(second.Factors) != len(first.Response.Factors) ||
			len(second.Recommendations) != len(first.Response.Recommendations) {
			return fmt.Errorf("resubmission of %s profile produced a different assessment", first.Profile.Archetype)
		}
	}

	logger.Get().Info(ctx, "determinism verified", logger.Int("sample", sample))
	return nil
}
