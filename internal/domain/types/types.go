// Package types contains common types used across the application
package types

// Assessment is the core's complete answer for one student: the
// rounded risk score, its HIGH/LOW classification, the triggered
// factors, and the ordered recommendation list. Order of Factors and
// Recommendations is meaningful and preserved as produced.
type Assessment struct {
	RiskScore       float64  `json:"risk_score"`
	RiskLevel       string   `json:"risk_level"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
}
