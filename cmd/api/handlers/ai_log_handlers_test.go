package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"clauseguard/cmd/api/auth"
	"clauseguard/cmd/api/dto"
	"clauseguard/models"
)

type fakeAILogLister struct {
	gotLimit int64
	items    []models.AILog
	err      error
}

func (f *fakeAILogLister) ListRecent(ctx context.Context, limit int64) ([]models.AILog, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func newAILogTestServer(t *testing.T, lister *fakeAILogLister) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	jwtMgr, err := auth.NewJWTManagerFromEnv()
	require.NoError(t, err)
	token, err := jwtMgr.Sign("user-1", "user@example.com", "Test User")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ai-logs", ListAILogsHandler(lister, jwtMgr))
	return r, token
}

func TestListAILogsHandlerRequiresAuth(t *testing.T) {
	lister := &fakeAILogLister{}
	r, _ := newAILogTestServer(t, lister)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai-logs", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, lister.gotLimit, "store must not be queried without auth")
}

func TestListAILogsHandlerReturnsLogs(t *testing.T) {
	errMsg := "model endpoint unavailable"
	lister := &fakeAILogLister{items: []models.AILog{
		{
			ID:          primitive.NewObjectID(),
			AnalysisID:  primitive.NewObjectID(),
			ModelName:   "gemini-2.0-flash",
			TotalTokens: 1200,
			DurationMs:  840,
			RequestedAt: time.Now().Add(-time.Second),
			CompletedAt: time.Now(),
		},
		{
			ID:           primitive.NewObjectID(),
			ModelName:    "gemini-2.0-flash",
			ErrorMessage: &errMsg,
		},
	}}
	r, token := newAILogTestServer(t, lister)

	req := httptest.NewRequest(http.MethodGet, "/ai-logs?limit=2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), lister.gotLimit)

	var got []dto.AILogDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "gemini-2.0-flash", got[0].ModelName)
	assert.NotEmpty(t, got[0].AnalysisID)
	assert.Empty(t, got[1].AnalysisID, "zero analysis id is omitted")
	require.NotNil(t, got[1].ErrorMessage)
	assert.Equal(t, errMsg, *got[1].ErrorMessage)
}

func TestListAILogsHandlerClampsLimit(t *testing.T) {
	lister := &fakeAILogLister{}
	r, token := newAILogTestServer(t, lister)

	for _, q := range []string{"", "?limit=0", "?limit=-5", "?limit=9999", "?limit=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/ai-logs"+q, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(defaultAILogLimit), lister.gotLimit, "query %q", q)
	}
}

func TestListAILogsHandlerStoreFailure(t *testing.T) {
	lister := &fakeAILogLister{err: errors.New("connection reset")}
	r, token := newAILogTestServer(t, lister)

	req := httptest.NewRequest(http.MethodGet, "/ai-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
