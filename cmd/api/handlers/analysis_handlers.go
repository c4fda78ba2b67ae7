package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clauseguard/cmd/api/auth"
	"clauseguard/cmd/api/dto"
	"clauseguard/services"
)

// SubmitAnalysisHandler godoc
// @Summary      Analyze a document
// @Description  Run a risk analysis over the submitted legal document and store the result
// @Tags         analyses
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.SubmitAnalysisRequestDTO  true  "Document to analyze"
// @Produce      json
// @Success      201  {object}  dto.AnalysisDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /analyses [post]
func SubmitAnalysisHandler(svc *services.AnalysisService, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireIdentityFromHeader(c, jwtMgr)
		if !ok {
			return
		}

		var req dto.SubmitAnalysisRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}

		record, err := svc.Submit(c.Request.Context(), user, req.Document, req.Title)
		if err != nil {
			writeSubmitError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewAnalysisDTO(*record))
	}
}

func writeSubmitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
	case errors.Is(err, services.ErrEmptyDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_document"})
	case errors.Is(err, services.ErrAnalysisInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "analysis_in_progress"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis_failed"})
	}
}

// ListAnalysesHandler godoc
// @Summary      List analysis history
// @Description  List the user's stored analyses, newest first
// @Tags         analyses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  dto.AnalysisDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /analyses [get]
func ListAnalysesHandler(svc *services.AnalysisService, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireIdentityFromHeader(c, jwtMgr)
		if !ok {
			return
		}

		items, err := svc.FetchHistory(c.Request.Context(), user)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "history_unavailable"})
			return
		}
		c.JSON(http.StatusOK, dto.NewAnalysisDTOs(items))
	}
}

// GetAnalysisHandler godoc
// @Summary      Get analysis by id
// @Description  Look up a single analysis from the cached history
// @Tags         analyses
// @Security     BearerAuth
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.AnalysisDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /analyses/{id} [get]
func GetAnalysisHandler(svc *services.AnalysisService, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireIdentityFromHeader(c, jwtMgr); !ok {
			return
		}

		item := svc.GetHistoryItem(c.Param("id"))
		if item == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusOK, dto.NewAnalysisDTO(*item))
	}
}

// GetResultHandler godoc
// @Summary      Get session state
// @Description  Return the current analysis session state and active result
// @Tags         session
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.SessionDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /result [get]
func GetResultHandler(svc *services.AnalysisService, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireIdentityFromHeader(c, jwtMgr); !ok {
			return
		}

		snap := svc.Snapshot()
		resp := dto.SessionDTO{State: string(snap.State), LoadingHistory: snap.LoadingHistory}
		if snap.Result != nil {
			result := dto.NewAnalysisDTO(*snap.Result)
			resp.Result = &result
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ClearResultHandler godoc
// @Summary      Clear the active result
// @Description  Dismiss the active result and return the session to idle
// @Tags         session
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /result [delete]
func ClearResultHandler(svc *services.AnalysisService, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireIdentityFromHeader(c, jwtMgr); !ok {
			return
		}

		svc.ClearResult()
		c.JSON(http.StatusOK, gin.H{"message": "result cleared"})
	}
}
