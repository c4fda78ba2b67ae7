package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clauseguard/parser"
)

// A small but realistic terms page: navigation chrome around a long body
// of legal text, plus script/style noise that must not leak into output.
func termsPageHTML() string {
	clause := "By using this service you agree that any dispute will be resolved through binding arbitration. "
	var body strings.Builder
	for i := 0; i < 20; i++ {
		body.WriteString("<p>")
		body.WriteString(clause)
		body.WriteString("</p>\n")
	}
	return `<!DOCTYPE html>
<html>
<head>
<title>Terms of Service</title>
<style>nav { color: red; }</style>
<script>window.tracker = "not text";</script>
</head>
<body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<article>
<h1>Terms of Service</h1>
` + body.String() + `
</article>
<footer>© Example Corp</footer>
</body>
</html>`
}

func TestExtractDocumentText(t *testing.T) {
	text, err := parser.ExtractDocumentText(termsPageHTML())
	require.NoError(t, err)

	assert.Contains(t, text, "binding arbitration")
	assert.NotContains(t, text, "window.tracker")
	assert.NotContains(t, text, "color: red")
}

func TestExtractDocumentTextFallsBackOnSparsePages(t *testing.T) {
	// Too short for the article extractors; the text-node walk still
	// yields whatever is there.
	text, err := parser.ExtractDocumentText("<html><body><p>short terms</p></body></html>")
	require.NoError(t, err)
	assert.Contains(t, text, "short terms")
}

func TestParseHtmlWithReadability(t *testing.T) {
	text, err := parser.ParseHtmlWithReadability(termsPageHTML())
	require.NoError(t, err)
	assert.Contains(t, text, "binding arbitration")
}
