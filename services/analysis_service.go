package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"clauseguard/analysis"
	"clauseguard/analyzer"
	"clauseguard/eventbus"
	"clauseguard/events"
	"clauseguard/internal/logger"
	"clauseguard/models"
)

// Identity is the authenticated user an analysis is scoped to.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// State of the per-session analysis machine.
type State string

const (
	StateIdle        State = "idle"
	StateAnalyzing   State = "analyzing"
	StateResultReady State = "result_ready"
)

// Validation failures: rejected before any model or store call.
var (
	ErrNotAuthenticated   = errors.New("sign in to analyze documents")
	ErrEmptyDocument      = errors.New("document is empty")
	ErrAnalysisInProgress = errors.New("an analysis is already running")
)

// Generic user-facing failures. The underlying cause stays in the logs.
var (
	ErrAnalysisFailed     = errors.New("analysis failed, please try again")
	ErrHistoryUnavailable = errors.New("could not load analysis history")
)

// DocumentAnalyzer invokes the language model for one document.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, document string) (analyzer.RawAnalysis, *analyzer.RequestLog, error)
}

// AnalysisStore persists and lists owner-scoped analysis records.
type AnalysisStore interface {
	Insert(ctx context.Context, doc models.Analysis, ownerID string) (*models.Analysis, error)
	ListByUser(ctx context.Context, userID string) ([]models.Analysis, error)
}

// AILogStore records LLM usage logs. Optional.
type AILogStore interface {
	Insert(ctx context.Context, doc models.AILog) (*mongo.InsertOneResult, error)
}

// Snapshot is the session state as exposed to the API layer.
type Snapshot struct {
	State          State
	Result         *models.Analysis
	LoadingHistory bool
}

// AnalysisService owns the per-session analysis state machine:
//
//	Idle --Submit--> Analyzing --success--> ResultReady
//	                 Analyzing --failure--> Idle
//	ResultReady --ClearResult--> Idle
//
// A new submission is rejected while one is running; the guard lives here,
// not in the UI. History loading is orthogonal and never blocks Submit.
type AnalysisService struct {
	analyzer DocumentAnalyzer
	store    AnalysisStore
	aiLogs   AILogStore        // may be nil
	bus      eventbus.EventBus // may be nil
	log      logger.Logger

	mu      sync.Mutex
	state   State
	result  *models.Analysis
	history []models.Analysis

	// historyLoads counts in-flight FetchHistory calls so an early
	// finisher cannot mark loading as done while another is running.
	historyLoads int
}

func NewAnalysisService(da DocumentAnalyzer, store AnalysisStore, aiLogs AILogStore, bus eventbus.EventBus) *AnalysisService {
	return &AnalysisService{
		analyzer: da,
		store:    store,
		aiLogs:   aiLogs,
		bus:      bus,
		log:      logger.Log,
		state:    StateIdle,
		history:  []models.Analysis{},
	}
}

// Submit runs the full pipeline for one document: prompt, model call,
// normalization, persistence. On success the stored record becomes the
// active result and is prepended to the cached history.
func (s *AnalysisService) Submit(ctx context.Context, user Identity, document, title string) (*models.Analysis, error) {
	if user.ID == "" {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(document) == "" {
		return nil, ErrEmptyDocument
	}

	s.mu.Lock()
	if s.state == StateAnalyzing {
		s.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	s.state = StateAnalyzing
	s.mu.Unlock()

	record, err := s.runAnalysis(ctx, user, document, title)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// No partial result is retained.
		s.state = StateIdle
		return nil, err
	}
	s.state = StateResultReady
	s.result = record
	s.history = append([]models.Analysis{*record}, s.history...)
	return record, nil
}

func (s *AnalysisService) runAnalysis(ctx context.Context, user Identity, document, title string) (*models.Analysis, error) {
	raw, reqLog, err := s.analyzer.Analyze(ctx, document)
	if err != nil {
		s.log.Errorf("document analysis failed for user %s: %v", user.ID, err)
		s.saveRequestLog(ctx, reqLog, primitive.NilObjectID, err)
		s.publishFailed(ctx, user.ID, err)
		return nil, ErrAnalysisFailed
	}

	record := analysis.Normalize(map[string]any(raw))
	record.Title = strings.TrimSpace(title)
	if record.Title == "" {
		record.Title = models.DefaultTitle
	}
	record.Document = document

	stored, err := s.store.Insert(ctx, record, user.ID)
	if err != nil {
		s.log.Errorf("failed to store analysis for user %s: %v", user.ID, err)
		s.saveRequestLog(ctx, reqLog, primitive.NilObjectID, err)
		s.publishFailed(ctx, user.ID, err)
		return nil, ErrAnalysisFailed
	}

	s.saveRequestLog(ctx, reqLog, stored.ID, nil)
	s.publishCompleted(ctx, stored)
	return stored, nil
}

// ClearResult returns the machine to Idle so a new document can be analyzed.
func (s *AnalysisService) ClearResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateResultReady {
		s.state = StateIdle
		s.result = nil
	}
}

// FetchHistory loads the user's analyses, newest first, and replaces the
// cached history. On failure the cache is left unchanged.
func (s *AnalysisService) FetchHistory(ctx context.Context, user Identity) ([]models.Analysis, error) {
	if user.ID == "" {
		return []models.Analysis{}, nil
	}

	s.mu.Lock()
	s.historyLoads++
	s.mu.Unlock()

	items, err := s.store.ListByUser(ctx, user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyLoads--
	if err != nil {
		s.log.Errorf("failed to load history for user %s: %v", user.ID, err)
		return nil, ErrHistoryUnavailable
	}
	s.history = items
	return items, nil
}

// GetHistoryItem is a pure lookup against the cached history.
// It returns nil when the id is not cached.
func (s *AnalysisService) GetHistoryItem(id string) *models.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].ID.Hex() == id {
			item := s.history[i]
			return &item
		}
	}
	return nil
}

// Snapshot returns the current session state.
func (s *AnalysisService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:          s.state,
		Result:         s.result,
		LoadingHistory: s.historyLoads > 0,
	}
}

func (s *AnalysisService) saveRequestLog(ctx context.Context, reqLog *analyzer.RequestLog, analysisID primitive.ObjectID, callErr error) {
	if s.aiLogs == nil || reqLog == nil {
		return
	}

	doc := models.AILog{
		AnalysisID:     analysisID,
		ModelName:      reqLog.ModelName,
		ModelVersion:   reqLog.ModelVersion,
		InputTokens:    reqLog.TokenUsage.InputTokens,
		OutputTokens:   reqLog.TokenUsage.OutputTokens,
		TotalTokens:    reqLog.TokenUsage.TotalTokens,
		DurationMs:     reqLog.LatencyMs,
		InputPrompt:    reqLog.Prompt,
		OutputResponse: reqLog.Response,
		RequestedAt:    reqLog.GeneratedAt.Add(-time.Duration(reqLog.LatencyMs) * time.Millisecond),
		CompletedAt:    reqLog.GeneratedAt,
	}
	if callErr != nil {
		msg := callErr.Error()
		doc.ErrorMessage = &msg
	}

	if _, err := s.aiLogs.Insert(ctx, doc); err != nil {
		s.log.Warnf("failed to store ai log: %v", err)
	}
}

func (s *AnalysisService) publishCompleted(ctx context.Context, record *models.Analysis) {
	if s.bus == nil {
		return
	}
	evt, err := eventbus.NewJSONEvent(record.ID.Hex(), events.TypeAnalysisCompleted, events.AnalysisCompleted{
		AnalysisID: record.ID.Hex(),
		UserID:     record.UserID,
		Title:      record.Title,
		RiskScore:  record.RiskScore,
		CreatedAt:  record.CreatedAt,
	}, 0)
	if err != nil {
		s.log.Warnf("failed to build completed event: %v", err)
		return
	}
	if err := s.bus.Publish(ctx, eventbus.TopicAnalysisEvents.Base(), evt); err != nil {
		s.log.Warnf("failed to publish completed event: %v", err)
	}
}

func (s *AnalysisService) publishFailed(ctx context.Context, userID string, cause error) {
	if s.bus == nil {
		return
	}
	evt, err := eventbus.NewJSONEvent("", events.TypeAnalysisFailed, events.AnalysisFailed{
		UserID:     userID,
		Reason:     cause.Error(),
		OccurredAt: time.Now(),
	}, 0)
	if err != nil {
		s.log.Warnf("failed to build failed event: %v", err)
		return
	}
	if err := s.bus.Publish(ctx, eventbus.TopicAnalysisEvents.Base(), evt); err != nil {
		s.log.Warnf("failed to publish failed event: %v", err)
	}
}
