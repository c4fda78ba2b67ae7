package dto

import (
	"time"

	"clauseguard/models"
)

// AnalysisDTO exposes a stored analysis to API consumers.
// ID is a hex string to keep transport simple; the raw document text is
// included so clients can re-display what was analyzed.
type AnalysisDTO struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Document      string                `json:"document"`
	Summary       string                `json:"summary"`
	RiskScore     int                   `json:"risk_score"`
	RedFlags      []models.RedFlag      `json:"red_flags"`
	PrivacyAlerts []models.PrivacyAlert `json:"privacy_alerts"`
	AutoRenewals  []models.AutoRenewal  `json:"auto_renewals"`
	KeyPoints     []models.KeyPoint     `json:"key_points"`
	CreatedAt     time.Time             `json:"created_at"`
}

func NewAnalysisDTO(m models.Analysis) AnalysisDTO {
	return AnalysisDTO{
		ID:            m.ID.Hex(),
		Title:         m.Title,
		Document:      m.Document,
		Summary:       m.Summary,
		RiskScore:     m.RiskScore,
		RedFlags:      m.RedFlags,
		PrivacyAlerts: m.PrivacyAlerts,
		AutoRenewals:  m.AutoRenewals,
		KeyPoints:     m.KeyPoints,
		CreatedAt:     m.CreatedAt,
	}
}

func NewAnalysisDTOs(items []models.Analysis) []AnalysisDTO {
	out := make([]AnalysisDTO, 0, len(items))
	for _, m := range items {
		out = append(out, NewAnalysisDTO(m))
	}
	return out
}

// SubmitAnalysisRequestDTO is the body of POST /analyses.
type SubmitAnalysisRequestDTO struct {
	Document string `json:"document" binding:"required"`
	Title    string `json:"title"`
}

// SessionDTO is the current analysis session state.
type SessionDTO struct {
	State          string       `json:"state" example:"result_ready"`
	Result         *AnalysisDTO `json:"result,omitempty"`
	LoadingHistory bool         `json:"loading_history"`
}

// ExtractDocumentRequestDTO is the body of POST /documents/extract.
type ExtractDocumentRequestDTO struct {
	URL string `json:"url" binding:"required"`
}

// ExtractDocumentResponseDTO carries the readable text pulled from a page.
type ExtractDocumentResponseDTO struct {
	Text string `json:"text"`
}
