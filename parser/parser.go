// Package parser turns a fetched terms-of-service page into plain text
// suitable for analysis. Extractors are tried in order of output quality:
// readability, then trafilatura, then goose, then a bare DOM text walk.
package parser

import (
	"strings"

	"github.com/advancedlogic/GoOse/pkg/goose"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Legal pages are text-heavy; an extraction below this many characters is
// treated as a failed extraction and the next extractor is tried.
const minExtractedLen = 200

// ExtractDocumentText extracts the readable text of a ToS/EULA page.
func ExtractDocumentText(htmlStr string) (string, error) {
	if text, err := ParseHtmlWithReadability(htmlStr); err == nil && len(text) >= minExtractedLen {
		return text, nil
	}
	if text, err := ParseHtmlWithTrafilatura(htmlStr); err == nil && len(text) >= minExtractedLen {
		return text, nil
	}
	if text, err := ParseHtmlWithGoose(htmlStr); err == nil && len(text) >= minExtractedLen {
		return text, nil
	}
	return walkTextNodes(htmlStr)
}

func ParseHtmlWithReadability(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func ParseHtmlWithTrafilatura(htmlStr string) (string, error) {
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	return article.ContentText, nil
}

func ParseHtmlWithGoose(htmlStr string) (string, error) {
	g := goose.New()
	article, err := g.ExtractFromRawHTML(htmlStr, "")
	if err != nil {
		return "", err
	}
	return article.CleanedText, nil
}

// walkTextNodes is the last-resort extractor: every text node, one per line.
func walkTextNodes(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)
	return b.String(), nil
}
