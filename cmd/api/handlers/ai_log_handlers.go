package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clauseguard/cmd/api/auth"
	"clauseguard/cmd/api/dto"
	"clauseguard/models"
)

const (
	defaultAILogLimit = 50
	maxAILogLimit     = 200
)

// AILogLister lists recent LLM usage logs for monitoring.
type AILogLister interface {
	ListRecent(ctx context.Context, limit int64) ([]models.AILog, error)
}

// ListAILogsHandler godoc
// @Summary      List recent LLM usage logs
// @Description  List recent model calls with token usage and latency, newest first
// @Tags         monitoring
// @Security     BearerAuth
// @Param        limit  query  int  false  "Max entries (<=200)"
// @Produce      json
// @Success      200  {array}  dto.AILogDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /ai-logs [get]
func ListAILogsHandler(logs AILogLister, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireIdentityFromHeader(c, jwtMgr); !ok {
			return
		}

		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultAILogLimit)), 10, 64)
		if limit <= 0 || limit > maxAILogLimit {
			limit = defaultAILogLimit
		}

		items, err := logs.ListRecent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list usage logs"})
			return
		}
		c.JSON(http.StatusOK, dto.NewAILogDTOs(items))
	}
}
