package probe

import "time"

// Config holds configuration for the assessment probe
type Config struct {
	BaseURL     string        // Base URL of the service
	NumProfiles int           // Number of student profiles to generate
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Threshold   float64       // Risk threshold the service is expected to run with
	OutputFile  string        // Output file for generated profiles
	LogFile     string        // Log file for probe output
	Verbose     bool          // Enable verbose logging
}

// Profile is one synthetic student payload submitted to /assess. The
// correlation fields ride along exactly as a real LMS integration would
// send them; the service must ignore them for scoring. Signal fields
// are omitted when zero so a quiet archetype reaches the service as a
// genuinely sparse envelope.
type Profile struct {
	StudentToken string  `json:"student_token"`
	Term         string  `json:"term"`
	CourseID     string  `json:"course_id"`
	Missing14d   int     `json:"missing_14d,omitempty"`
	AvgGradePct  int     `json:"avg_grade_pct,omitempty"`
	DaysInactive float64 `json:"days_inactive,omitempty"`
	Submitted14d int     `json:"submitted_14d,omitempty"`

	Archetype string `json:"-"` // generation label, never sent
}

// AssessResponse mirrors the wire envelope of POST /assess.
type AssessResponse struct {
	OK               bool     `json:"ok"`
	RiskScore        float64  `json:"risk_score"`
	RiskLevel        string   `json:"risk_level"`
	Factors          []string `json:"factors"`
	Recommendations  []string `json:"recommendations"`
	GeneratedAtEpoch int64    `json:"generated_at_epoch"`
}

// Stats holds probe statistics
type Stats struct {
	ProfilesGenerated  int
	ProfilesSubmitted  int
	ProfilesSuccessful int
	ProfilesFailed     int
	HighRisk           int
	LowRisk            int
	ContractViolations int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
