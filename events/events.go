// Package events defines the payloads published on the event bus when an
// analysis finishes. Downstream consumers (notification senders, usage
// accounting) subscribe to these instead of polling the store.
package events

import "time"

const (
	TypeAnalysisCompleted = "analysis.completed"
	TypeAnalysisFailed    = "analysis.failed"
)

// AnalysisCompleted is published after a record has been durably stored.
type AnalysisCompleted struct {
	AnalysisID string    `json:"analysis_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	RiskScore  int       `json:"risk_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisFailed is published when a submission fails after validation,
// i.e. the model call or the store write went wrong.
type AnalysisFailed struct {
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
