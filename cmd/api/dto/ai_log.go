package dto

import (
	"time"

	"clauseguard/models"
)

// AILogDTO is the monitoring view of one LLM call. Prompt and response
// bodies are kept out of the listing to bound the payload size.
type AILogDTO struct {
	ID           string    `json:"id"`
	AnalysisID   string    `json:"analysis_id,omitempty"`
	ModelName    string    `json:"model_name"`
	ModelVersion string    `json:"model_version"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	TotalTokens  int64     `json:"total_tokens"`
	DurationMs   int64     `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

func NewAILogDTO(m models.AILog) AILogDTO {
	d := AILogDTO{
		ID:           m.ID.Hex(),
		ModelName:    m.ModelName,
		ModelVersion: m.ModelVersion,
		InputTokens:  m.InputTokens,
		OutputTokens: m.OutputTokens,
		TotalTokens:  m.TotalTokens,
		DurationMs:   m.DurationMs,
		ErrorMessage: m.ErrorMessage,
		RequestedAt:  m.RequestedAt,
		CompletedAt:  m.CompletedAt,
	}
	if !m.AnalysisID.IsZero() {
		d.AnalysisID = m.AnalysisID.Hex()
	}
	return d
}

func NewAILogDTOs(items []models.AILog) []AILogDTO {
	out := make([]AILogDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewAILogDTO(m))
	}
	return out
}
