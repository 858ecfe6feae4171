package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/studyloop/advisor/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submission pairs a profile with the assessment the service returned
// for it.
type submission struct {
	Profile  Profile
	Response AssessResponse
}

// submitProfiles posts profiles concurrently using a worker pool and
// collects the returned assessments for verification.
func submitProfiles(ctx context.Context, config *Config, profiles []Profile, stats *Stats) ([]submission, error) {
	logger.Get().Info(ctx, "submitting profiles",
		logger.Int("count", len(profiles)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/assess"

	var (
		successful int64
		failed     int64
		submitted  int64
		highRisk   int64
		lowRisk    int64
	)

	profileChan := make(chan Profile, config.Workers*WorkerChannelMultiplier)
	resultChan := make(chan submission, len(profiles))
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for profile := range profileChan {
				select {
				case <-ctx.Done():
					return
				default:
					atomic.AddInt64(&submitted, 1)
					resp, err := submitSingleProfile(ctx, client, url, profile)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "profile submission failed", logger.Error(err))
						}
						continue
					}

					atomic.AddInt64(&successful, 1)
					switch resp.RiskLevel {
					case "HIGH":
						atomic.AddInt64(&highRisk, 1)
					case "LOW":
						atomic.AddInt64(&lowRisk, 1)
					}
					resultChan <- submission{Profile: profile, Response: resp}
				}
			}
		}()
	}

	go func() {
		defer close(profileChan)
		for _, profile := range profiles {
			select {
			case <-ctx.Done():
				return
			case profileChan <- profile:
			}
		}
	}()

	wg.Wait()
	close(resultChan)

	results := make([]submission, 0, len(profiles))
	for s := range resultChan {
		results = append(results, s)
	}

	stats.ProfilesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ProfilesSuccessful = int(atomic.LoadInt64(&successful))
	stats.ProfilesFailed = int(atomic.LoadInt64(&failed))
	stats.HighRisk = int(atomic.LoadInt64(&highRisk))
	stats.LowRisk = int(atomic.LoadInt64(&lowRisk))

	logger.Get().Info(ctx, "profile submission completed",
		logger.Int("successful", stats.ProfilesSuccessful),
		logger.Int("failed", stats.ProfilesFailed),
		logger.Int("highRisk", stats.HighRisk),
		logger.Int("lowRisk", stats.LowRisk))

	return results, nil
}

// submitSingleProfile posts one profile and decodes the assessment.
func submitSingleProfile(ctx context.Context, client *HTTPClient, url string, profile Profile) (AssessResponse, error) {
	resp, err := client.Post(ctx, url, profile)
	if err != nil {
		return AssessResponse{}, fmt.Errorf("post failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return AssessResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return AssessResponse{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out AssessResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return AssessResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.OK {
		return AssessResponse{}, fmt.Errorf("service reported not ok")
	}
	return out, nil
}
