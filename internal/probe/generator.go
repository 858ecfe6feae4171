package probe

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/studyloop/advisor/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	archetypeDivisor   = 6
)

// Constants for archetype signal ranges.
const (
	steadyGradeMin      = 85
	steadyGradeRange    = 15
	slippingGradeMin    = 70
	slippingGradeRange  = 14
	slippingMissingMax  = 2
	strugglingGradeMax  = 69
	strugglingMissing   = 3
	ghostInactiveMin    = 7.0
	ghostInactiveRange  = 14.0
	crammingInactiveMax = 1.0
	crammingSubmitted   = 6
)

// Archetype cases for profile generation.
const (
	caseSteady     = 0
	caseSlipping   = 1
	caseStruggling = 2
	caseGhost      = 3
	caseCramming   = 4
	caseSparse     = 5
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max).
func getRandomInt(max int64) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return int(n.Int64())
}

// generateProfiles creates the configured number of synthetic student
// profiles with unique correlation tokens, spread across behavioral
// archetypes so both risk levels and every factor ladder get exercised.
func generateProfiles(ctx context.Context, config *Config, stats *Stats) ([]Profile, error) {
	logger.Get().Info(ctx, "generating student profiles", logger.Int("numProfiles", config.NumProfiles))

	profiles := make([]Profile, config.NumProfiles)

	type profileResult struct {
		index   int
		profile Profile
		err     error
	}

	resultChan := make(chan profileResult, config.NumProfiles)

	workerCount := minInt(config.Workers, config.NumProfiles)
	profilesPerWorker := config.NumProfiles / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * profilesPerWorker
		end := start + profilesPerWorker
		if worker == workerCount-1 {
			end = config.NumProfiles
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- profileResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- profileResult{index: i, profile: generateSingleProfile()}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumProfiles; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during profile generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate profile %d: %w", result.index, result.err)
			}
			profiles[result.index] = result.profile
		}
	}

	stats.ProfilesGenerated = len(profiles)
	logger.Get().Info(ctx, "generated profiles successfully", logger.Int("count", len(profiles)))

	return profiles, nil
}

// generateSingleProfile creates one profile from a randomly chosen
// archetype.
func generateSingleProfile() Profile {
	p := Profile{
		StudentToken: uuid.New().String(),
		Term:         "2026FA",
		CourseID:     "course_" + uuid.New().String()[:8],
	}

	switch getRandomInt(archetypeDivisor) {
	case caseSteady:
		// On track: strong grade, recent activity, nothing missing.
		p.Archetype = "steady"
		p.AvgGradePct = steadyGradeMin + getRandomInt(steadyGradeRange)
		p.DaysInactive = getRandomFloat() * 2.0
		p.Submitted14d = 3 + getRandomInt(5)
	case caseSlipping:
		// Mild decline: borderline grade, a missing item or two.
		p.Archetype = "slipping"
		p.AvgGradePct = slippingGradeMin + getRandomInt(slippingGradeRange)
		p.Missing14d = getRandomInt(slippingMissingMax + 1)
		p.DaysInactive = 2.0 + getRandomFloat()*3.0
		p.Submitted14d = 1 + getRandomInt(3)
	case caseStruggling:
		// Failing grade with a backlog of missing work.
		p.Archetype = "struggling"
		p.AvgGradePct = 30 + getRandomInt(strugglingGradeMax-30)
		p.Missing14d = strugglingMissing + getRandomInt(4)
		p.DaysInactive = 4.0 + getRandomFloat()*4.0
		p.Submitted14d = getRandomInt(2)
	case caseGhost:
		// Disappeared: long inactivity, nothing submitted.
		p.Archetype = "ghost"
		p.AvgGradePct = 50 + getRandomInt(40)
		p.Missing14d = 1 + getRandomInt(5)
		p.DaysInactive = ghostInactiveMin + getRandomFloat()*ghostInactiveRange
		p.Submitted14d = 0
	case caseCramming:
		// Active but behind: submitting a lot, grade still low.
		p.Archetype = "cramming"
		p.AvgGradePct = 60 + getRandomInt(20)
		p.Missing14d = getRandomInt(3)
		p.DaysInactive = getRandomFloat() * crammingInactiveMax
		p.Submitted14d = crammingSubmitted + getRandomInt(4)
	default:
		// Sparse integration: only correlation fields, no signals.
		// Exercises the defaults path end to end.
		p.Archetype = "sparse"
	}

	return p
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
