package analysis_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"clauseguard/analysis"
	"clauseguard/models"
)

func TestNormalizeEmptyInput(t *testing.T) {
	record := analysis.Normalize(map[string]any{})

	assert.Equal(t, models.DefaultTitle, record.Title)
	assert.Equal(t, "", record.Summary)
	assert.Equal(t, 0, record.RiskScore)
	assert.NotNil(t, record.RedFlags)
	assert.NotNil(t, record.PrivacyAlerts)
	assert.NotNil(t, record.AutoRenewals)
	assert.NotNil(t, record.KeyPoints)
	assert.Empty(t, record.RedFlags)
	assert.Empty(t, record.PrivacyAlerts)
	assert.Empty(t, record.AutoRenewals)
	assert.Empty(t, record.KeyPoints)
}

func TestNormalizeWrongTypedFields(t *testing.T) {
	record := analysis.Normalize(map[string]any{
		"title":          42,
		"summary":        []any{"not", "a", "string"},
		"risk_score":     "not a number",
		"red_flags":      "not an array",
		"privacy_alerts": map[string]any{"not": "an array"},
		"auto_renewals":  nil,
		"key_points":     12.5,
	})

	assert.Equal(t, models.DefaultTitle, record.Title)
	assert.Equal(t, "", record.Summary)
	assert.Equal(t, 0, record.RiskScore)
	assert.Empty(t, record.RedFlags)
	assert.Empty(t, record.PrivacyAlerts)
	assert.Empty(t, record.AutoRenewals)
	assert.Empty(t, record.KeyPoints)
}

func TestNormalizeTypicalModelOutput(t *testing.T) {
	record := analysis.Normalize(map[string]any{
		"summary":    "Test",
		"risk_score": float64(65),
		"red_flags": []any{
			map[string]any{
				"title":                 "Arbitration",
				"severity":              "high",
				"description":           "d",
				"clause":                "c",
				"simplifiedExplanation": "s",
			},
		},
	})

	assert.Equal(t, "Test", record.Summary)
	assert.Equal(t, 65, record.RiskScore)
	require.Len(t, record.RedFlags, 1)
	assert.Equal(t, "Arbitration", record.RedFlags[0].Title)
	assert.Equal(t, models.SeverityHigh, record.RedFlags[0].Severity)
	assert.NotEmpty(t, record.RedFlags[0].ID)
	assert.Empty(t, record.PrivacyAlerts)
	assert.Empty(t, record.AutoRenewals)
	assert.Empty(t, record.KeyPoints)
}

func TestNormalizeRiskScore(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"missing", nil, 0},
		{"string", "not a number", 0},
		{"negative", float64(-5), 0},
		{"over max", float64(120), 100},
		{"fractional", 64.6, 65},
		{"int32 from bson", int32(40), 40},
		{"int64 from bson", int64(80), 80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := analysis.Normalize(map[string]any{"risk_score": tc.in})
			assert.Equal(t, tc.want, record.RiskScore)
		})
	}
}

func TestNormalizeSeverityDefaultsToMedium(t *testing.T) {
	record := analysis.Normalize(map[string]any{
		"summary": "ok",
		"red_flags": []any{
			map[string]any{"title": "a", "severity": "CRITICAL"},
			map[string]any{"title": "b"},
			map[string]any{"title": "c", "severity": "LOW"},
		},
	})

	require.Len(t, record.RedFlags, 3)
	assert.Equal(t, models.SeverityMedium, record.RedFlags[0].Severity)
	assert.Equal(t, models.SeverityMedium, record.RedFlags[1].Severity)
	assert.Equal(t, models.SeverityLow, record.RedFlags[2].Severity)
}

func TestNormalizePrivacyAlertDataCollected(t *testing.T) {
	record := analysis.Normalize(map[string]any{
		"privacy_alerts": []any{
			map[string]any{
				"title":         "Data Sharing",
				"dataCollected": []any{"email", 7, "browsing history"},
			},
			map[string]any{
				"title":         "No list",
				"dataCollected": "email",
			},
		},
	})

	require.Len(t, record.PrivacyAlerts, 2)
	assert.Equal(t, []string{"email", "browsing history"}, record.PrivacyAlerts[0].DataCollected)
	assert.Equal(t, []string{}, record.PrivacyAlerts[1].DataCollected)
}

func TestNormalizeKeepsExistingSubItemIDs(t *testing.T) {
	record := analysis.Normalize(map[string]any{
		"red_flags": []any{
			map[string]any{"id": "rf-existing", "title": "kept"},
			map[string]any{"title": "generated"},
		},
	})

	require.Len(t, record.RedFlags, 2)
	assert.Equal(t, "rf-existing", record.RedFlags[0].ID)
	assert.NotEmpty(t, record.RedFlags[1].ID)
	assert.NotEqual(t, "rf-existing", record.RedFlags[1].ID)
}

func TestNormalizeSubItemIDsAreDeterministic(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := map[string]any{
		"_id":     oid,
		"summary": "ok",
		"red_flags": []any{
			map[string]any{"title": "first"},
			map[string]any{"title": "second"},
		},
		"key_points": []any{
			map[string]any{"title": "kp"},
		},
	}

	first := analysis.Normalize(raw)
	second := analysis.Normalize(raw)

	assert.Equal(t, first, second)
	// Different kinds and positions must not collide.
	assert.NotEqual(t, first.RedFlags[0].ID, first.RedFlags[1].ID)
	assert.NotEqual(t, first.RedFlags[0].ID, first.KeyPoints[0].ID)
}

// Normalizing a stored bson row and normalizing the equivalent JSON map
// must produce the same record.
func TestNormalizeBsonRowMatchesJSONMap(t *testing.T) {
	oid := primitive.NewObjectID()

	row := bson.M{
		"_id":        oid,
		"user_id":    "user-1",
		"title":      "My ToS",
		"summary":    "short",
		"risk_score": int32(55),
		"red_flags": primitive.A{
			bson.M{"title": "Arbitration", "severity": "high"},
		},
	}

	jsonRaw := map[string]any{
		"_id":        oid.Hex(),
		"user_id":    "user-1",
		"title":      "My ToS",
		"summary":    "short",
		"risk_score": float64(55),
		"red_flags": []any{
			map[string]any{"title": "Arbitration", "severity": "high"},
		},
	}

	assert.Equal(t, analysis.Normalize(map[string]any(row)), analysis.Normalize(jsonRaw))
}

// Round-trip: serializing a normalized record and normalizing the reloaded
// form yields the same record (including sub-item ids, which are derived
// from the record id and positions).
func TestNormalizeRoundTripIdempotent(t *testing.T) {
	oid := primitive.NewObjectID()
	record := analysis.Normalize(map[string]any{
		"_id":        oid,
		"user_id":    "user-1",
		"title":      "My ToS",
		"summary":    "short",
		"risk_score": float64(70),
		"red_flags": []any{
			map[string]any{"title": "Arbitration", "severity": "high", "clause": "c"},
		},
		"auto_renewals": []any{
			map[string]any{"description": "renews", "period": "monthly"},
		},
	})

	data, err := json.Marshal(record)
	require.NoError(t, err)
	var reloaded map[string]any
	require.NoError(t, json.Unmarshal(data, &reloaded))

	again := analysis.Normalize(reloaded)
	// created_at/updated_at pass through JSON as RFC3339 strings; the
	// normalizer parses them back, so full equality is expected.
	assert.Equal(t, record, again)
}

func TestNormalizeEmptySummaryNoCrash(t *testing.T) {
	record := analysis.Normalize(map[string]any{
		"summary":    "",
		"risk_score": "not a number",
	})

	assert.Equal(t, "", record.Summary)
	assert.Equal(t, 0, record.RiskScore)
}
