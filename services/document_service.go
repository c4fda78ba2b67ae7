package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clauseguard/internal/logger"
	"clauseguard/parser"
	"clauseguard/renderer"
)

const (
	fetchTimeout     = 20 * time.Second
	maxDocumentBytes = 4 << 20
)

var ErrDocumentUnavailable = errors.New("could not fetch a readable document from the url")

// DocumentService turns a public URL into the plain text handed to analysis.
// Pages that ship their terms via client-side rendering get a second pass
// through headless Chrome.
type DocumentService struct {
	client *http.Client
	log    logger.Logger
}

func NewDocumentService() *DocumentService {
	return &DocumentService{
		client: &http.Client{Timeout: fetchTimeout},
		log:    logger.Log,
	}
}

// FetchDocumentText downloads the page at url and extracts its readable text.
func (s *DocumentService) FetchDocumentText(ctx context.Context, url string) (string, error) {
	htmlStr, err := s.fetch(ctx, url)
	if err != nil {
		s.log.Warnf("plain fetch failed for %s: %v", url, err)
		htmlStr = ""
	}

	if htmlStr != "" {
		text, perr := parser.ExtractDocumentText(htmlStr)
		if perr == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	// Thin or empty markup, retry with a rendered DOM.
	rendered, rerr := renderer.RenderHTML(ctx, url)
	if rerr != nil {
		s.log.Errorf("rendered fetch failed for %s: %v", url, rerr)
		return "", ErrDocumentUnavailable
	}
	text, perr := parser.ExtractDocumentText(rendered)
	if perr != nil || strings.TrimSpace(text) == "" {
		return "", ErrDocumentUnavailable
	}
	return text, nil
}

func (s *DocumentService) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", renderer.USER_AGENT)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
