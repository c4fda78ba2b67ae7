package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clauseguard/analyzer"
)

func TestBuildRequest(t *testing.T) {
	req := analyzer.BuildRequest("some terms of service")

	assert.Equal(t, analyzer.SYSTEM_INSTRUCTION, req.SystemInstruction)
	assert.Equal(t, "some terms of service", req.UserContent)

	// Empty input still yields a well-formed request.
	empty := analyzer.BuildRequest("")
	assert.Equal(t, analyzer.SYSTEM_INSTRUCTION, empty.SystemInstruction)
	assert.Equal(t, "", empty.UserContent)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"bare fence", "```\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"no fence", `{"summary":"ok"}`, `{"summary":"ok"}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, analyzer.StripCodeFence(tc.in))
		})
	}
}

func TestParseCompletionFencedAndBareAreEquivalent(t *testing.T) {
	fenced, err := analyzer.ParseCompletion("```json\n{\"summary\":\"ok\",\"risk_score\":10}\n```")
	require.NoError(t, err)
	bare, err := analyzer.ParseCompletion(`{"summary":"ok","risk_score":10}`)
	require.NoError(t, err)

	assert.Equal(t, bare, fenced)
	assert.Equal(t, "ok", fenced["summary"])
}

func TestParseCompletionEmpty(t *testing.T) {
	_, err := analyzer.ParseCompletion("")
	assert.ErrorIs(t, err, analyzer.ErrEmptyResponse)

	_, err = analyzer.ParseCompletion("   \n\t")
	assert.ErrorIs(t, err, analyzer.ErrEmptyResponse)
}

func TestParseCompletionMalformedJSON(t *testing.T) {
	_, err := analyzer.ParseCompletion("{not json")
	assert.ErrorIs(t, err, analyzer.ErrMalformedJSON)
}

func TestParseCompletionInvalidShape(t *testing.T) {
	// Valid JSON but not an object.
	_, err := analyzer.ParseCompletion(`["summary"]`)
	assert.ErrorIs(t, err, analyzer.ErrInvalidShape)

	// Object without a summary.
	_, err = analyzer.ParseCompletion(`{"risk_score": 50}`)
	assert.ErrorIs(t, err, analyzer.ErrInvalidShape)

	// Object with an empty summary.
	_, err = analyzer.ParseCompletion(`{"summary": ""}`)
	assert.ErrorIs(t, err, analyzer.ErrInvalidShape)
}

func TestParseCompletionLenientBeyondSummary(t *testing.T) {
	// Any field other than summary may be absent; nothing else is checked.
	raw, err := analyzer.ParseCompletion(`{"summary":"ok"}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", raw["summary"])
	assert.NotContains(t, raw, "red_flags")
}
