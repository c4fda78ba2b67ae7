// Package analysis converts loosely-typed analysis data (model output,
// stored rows) into the canonical models.Analysis record. Normalize is
// total: malformed input degrades to documented defaults, never errors.
package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"clauseguard/models"
)

// idNamespace seeds deterministic sub-item identifiers. Ids are derived
// from (parent record id, kind, position) so that re-normalizing the same
// stored row always yields the same ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("clauseguard/analysis"))

// Normalize converts an arbitrary-shaped record into a models.Analysis.
// It accepts both JSON-decoded maps and bson-decoded rows. Missing or
// wrong-typed fields become defaults: empty summary, zero risk score,
// empty (never nil) sub-item slices, medium severity.
func Normalize(raw map[string]any) models.Analysis {
	id := asObjectID(raw["_id"], raw["id"])
	parent := ""
	if !id.IsZero() {
		parent = id.Hex()
	}

	title := asString(raw["title"])
	if title == "" {
		title = models.DefaultTitle
	}

	return models.Analysis{
		ID:            id,
		CreatedAt:     asTime(raw["created_at"]),
		UpdatedAt:     asTime(raw["updated_at"]),
		UserID:        asString(raw["user_id"]),
		Title:         title,
		Document:      asString(raw["document"]),
		Summary:       asString(raw["summary"]),
		RiskScore:     normalizeRiskScore(raw["risk_score"]),
		RedFlags:      normalizeRedFlags(parent, raw["red_flags"]),
		PrivacyAlerts: normalizePrivacyAlerts(parent, raw["privacy_alerts"]),
		AutoRenewals:  normalizeAutoRenewals(parent, raw["auto_renewals"]),
		KeyPoints:     normalizeKeyPoints(parent, raw["key_points"]),
	}
}

// SubItemID derives a stable identifier for the index-th sub-item of the
// given kind under a parent record. An id already present on the item wins.
func SubItemID(parent, kind string, index int, existing string) string {
	if existing != "" {
		return existing
	}
	name := fmt.Sprintf("%s/%s/%d", parent, kind, index)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

func normalizeRiskScore(v any) int {
	f, ok := asNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeSeverity(v any) string {
	switch strings.ToLower(asString(v)) {
	case models.SeverityLow:
		return models.SeverityLow
	case models.SeverityHigh:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func normalizeRedFlags(parent string, v any) []models.RedFlag {
	items := asMapSlice(v)
	out := make([]models.RedFlag, 0, len(items))
	for i, m := range items {
		out = append(out, models.RedFlag{
			ID:                    SubItemID(parent, "red_flag", i, asString(m["id"])),
			Title:                 asString(m["title"]),
			Description:           asString(m["description"]),
			Severity:              normalizeSeverity(m["severity"]),
			Clause:                asString(m["clause"]),
			SimplifiedExplanation: asString(m["simplifiedExplanation"]),
		})
	}
	return out
}

func normalizePrivacyAlerts(parent string, v any) []models.PrivacyAlert {
	items := asMapSlice(v)
	out := make([]models.PrivacyAlert, 0, len(items))
	for i, m := range items {
		out = append(out, models.PrivacyAlert{
			ID:            SubItemID(parent, "privacy_alert", i, asString(m["id"])),
			Title:         asString(m["title"]),
			Description:   asString(m["description"]),
			DataCollected: asStringSlice(m["dataCollected"]),
			DataPurpose:   asString(m["dataPurpose"]),
			DataSharing:   asString(m["dataSharing"]),
			Clause:        asString(m["clause"]),
		})
	}
	return out
}

func normalizeAutoRenewals(parent string, v any) []models.AutoRenewal {
	items := asMapSlice(v)
	out := make([]models.AutoRenewal, 0, len(items))
	for i, m := range items {
		out = append(out, models.AutoRenewal{
			ID:                SubItemID(parent, "auto_renewal", i, asString(m["id"])),
			Description:       asString(m["description"]),
			Period:            asString(m["period"]),
			CancellationTerms: asString(m["cancellationTerms"]),
			Clause:            asString(m["clause"]),
		})
	}
	return out
}

func normalizeKeyPoints(parent string, v any) []models.KeyPoint {
	items := asMapSlice(v)
	out := make([]models.KeyPoint, 0, len(items))
	for i, m := range items {
		out = append(out, models.KeyPoint{
			ID:          SubItemID(parent, "key_point", i, asString(m["id"])),
			Title:       asString(m["title"]),
			Description: asString(m["description"]),
			Category:    asString(m["category"]),
		})
	}
	return out
}

// asMap accepts both JSON maps and bson document types.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case bson.M:
		return map[string]any(m), true
	case bson.D:
		return m.Map(), true
	default:
		return nil, false
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return []any(s), true
	default:
		return nil, false
	}
}

// asMapSlice returns the object-shaped elements of v. Non-array input and
// non-object elements are dropped.
func asMapSlice(v any) []map[string]any {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := asMap(item); ok {
			out = append(out, m)
		}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	items, ok := asSlice(v)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asObjectID(vs ...any) primitive.ObjectID {
	for _, v := range vs {
		switch id := v.(type) {
		case primitive.ObjectID:
			return id
		case string:
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				return oid
			}
		}
	}
	return primitive.NilObjectID
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
