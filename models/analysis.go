package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Red flag severity levels. Unrecognized values normalize to medium.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// DefaultTitle is used when an analysis is saved without a title.
const DefaultTitle = "Untitled Document"

// Analysis is the canonical record produced by analyzing one legal
// document. Records are immutable once inserted; a re-run of the same
// document produces a new record.
// Collection: analyses
type Analysis struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Title         string             `bson:"title" json:"title"`
	Document      string             `bson:"document" json:"document"`
	Summary       string             `bson:"summary" json:"summary"`
	RiskScore     int                `bson:"risk_score" json:"risk_score"`
	RedFlags      []RedFlag          `bson:"red_flags" json:"red_flags"`
	PrivacyAlerts []PrivacyAlert     `bson:"privacy_alerts" json:"privacy_alerts"`
	AutoRenewals  []AutoRenewal      `bson:"auto_renewals" json:"auto_renewals"`
	KeyPoints     []KeyPoint         `bson:"key_points" json:"key_points"`
}

// RedFlag is a clause flagged as potentially adverse to the user,
// with an assigned severity.
type RedFlag struct {
	ID                    string `bson:"id" json:"id"`
	Title                 string `bson:"title" json:"title"`
	Description           string `bson:"description" json:"description"`
	Severity              string `bson:"severity" json:"severity"`
	Clause                string `bson:"clause" json:"clause"`
	SimplifiedExplanation string `bson:"simplifiedExplanation" json:"simplifiedExplanation"`
}

// PrivacyAlert is a clause describing a personal-data collection,
// use, or sharing practice.
type PrivacyAlert struct {
	ID            string   `bson:"id" json:"id"`
	Title         string   `bson:"title" json:"title"`
	Description   string   `bson:"description" json:"description"`
	DataCollected []string `bson:"dataCollected" json:"dataCollected"`
	DataPurpose   string   `bson:"dataPurpose" json:"dataPurpose"`
	DataSharing   string   `bson:"dataSharing" json:"dataSharing"`
	Clause        string   `bson:"clause" json:"clause"`
}

// AutoRenewal is a clause describing automatic subscription
// continuation and its cancellation terms.
type AutoRenewal struct {
	ID                string `bson:"id" json:"id"`
	Description       string `bson:"description" json:"description"`
	Period            string `bson:"period" json:"period"`
	CancellationTerms string `bson:"cancellationTerms" json:"cancellationTerms"`
	Clause            string `bson:"clause" json:"clause"`
}

// KeyPoint is a notable clause not classified as a red flag,
// privacy alert, or auto-renewal.
type KeyPoint struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Category    string `bson:"category" json:"category"`
}
