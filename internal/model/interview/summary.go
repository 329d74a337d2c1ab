package interview

import "time"

// Summary is the end-of-interview report.
type Summary struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	SuggestedResources  []string `json:"suggested_resources"`
	FinalScore          string   `json:"final_score"`
}

// SummaryReport is a Summary enriched with session metadata for the HTTP surface.
type SummaryReport struct {
	Summary
	SessionID      string     `json:"sessionId"`
	Role           string     `json:"role"`
	TotalQuestions int        `json:"totalQuestions"`
	CompletedAt    *time.Time `json:"completedAt"`
}
