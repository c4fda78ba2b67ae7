package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"clauseguard/config"
)

// Retryable transport failures get one additional attempt. Format
// failures (empty, malformed, wrong shape) are never retried.
const transportRetries = 1

// Low temperature: output must parse as structured data, so determinism
// is preferred over creativity.
const samplingTemperature = 0.3

const defaultTimeout = 60 * time.Second
const defaultMaxOutputTokens = 2048

var (
	// ErrTransport wraps network or endpoint failures.
	ErrTransport = errors.New("model endpoint unavailable")
	// ErrEmptyResponse means the model returned no completion text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrMalformedJSON means the completion did not parse as JSON.
	ErrMalformedJSON = errors.New("model response is not valid JSON")
	// ErrInvalidShape means the completion parsed but is not an object
	// with a non-empty summary.
	ErrInvalidShape = errors.New("model response missing summary")
)

// RawAnalysis is the parsed but not yet normalized model output. Only the
// presence of a non-empty summary is guaranteed; the normalizer fills in
// defaults for everything else.
type RawAnalysis map[string]any

type RequestLog struct {
	Prompt       string     `json:"prompt"`
	Response     string     `json:"response"`
	LatencyMs    int64      `json:"latency_ms"`
	TokenUsage   TokenUsage `json:"token_usage"`
	ModelName    string     `json:"model_name"`
	ModelVersion string     `json:"model_version"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Analyzer invokes the language model for document analysis. The client
// is constructed explicitly with its credential and configuration, and
// owned by the instance; there is no package-level client state.
type Analyzer struct {
	client          *genai.Client
	model           string
	timeout         time.Duration
	maxOutputTokens int32
}

func New(ctx context.Context, apiKey string, cfg config.AnalyzerConfig) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := int32(cfg.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	return &Analyzer{
		client:          client,
		model:           cfg.GeminiModel,
		timeout:         timeout,
		maxOutputTokens: maxTokens,
	}, nil
}

// Analyze sends the document to the model and returns the parsed raw
// analysis together with a usage log for diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, document string) (RawAnalysis, *RequestLog, error) {
	req := BuildRequest(document)
	startTime := time.Now()

	result, err := a.generate(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	text := result.Text()
	reqLog := &RequestLog{
		Prompt:       fmt.Sprintf("%s\n\n%s", req.SystemInstruction, req.UserContent),
		Response:     text,
		LatencyMs:    time.Since(startTime).Milliseconds(),
		ModelName:    a.model,
		ModelVersion: result.ModelVersion,
		GeneratedAt:  time.Now(),
	}
	if result.UsageMetadata != nil {
		reqLog.TokenUsage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	raw, err := ParseCompletion(text)
	if err != nil {
		return nil, reqLog, err
	}
	return raw, reqLog, nil
}

// generate performs the model call with a bounded timeout per attempt and
// at most one retry on transport failure.
func (a *Analyzer) generate(ctx context.Context, req Request) (*genai.GenerateContentResponse, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}},
		Temperature:       genai.Ptr[float32](samplingTemperature),
		MaxOutputTokens:   a.maxOutputTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= transportRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		result, err := a.client.Models.GenerateContent(callCtx, a.model, genai.Text(req.UserContent), genCfg)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrTransport, lastErr)
}

// ParseCompletion strips an optional markdown code fence from the
// completion, parses the remainder as JSON, and applies the minimal shape
// gate: the value must be an object with a non-empty summary. Everything
// else is left to the normalizer.
func ParseCompletion(text string) (RawAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	payload := StripCodeFence(text)

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, ErrInvalidShape
	}
	if summary, _ := obj["summary"].(string); summary == "" {
		return nil, ErrInvalidShape
	}
	return RawAnalysis(obj), nil
}

// StripCodeFence removes a literal ```json (or bare ```) wrapper around
// the completion. This is prefix/suffix stripping, not markdown parsing.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
