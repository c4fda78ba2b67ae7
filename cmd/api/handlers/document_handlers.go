package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"clauseguard/cmd/api/auth"
	"clauseguard/cmd/api/dto"
	"clauseguard/services"
)

// ExtractDocumentHandler godoc
// @Summary      Extract document text from a URL
// @Description  Fetch a public terms-of-service page and return its readable text
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.ExtractDocumentRequestDTO  true  "Page URL"
// @Produce      json
// @Success      200  {object}  dto.ExtractDocumentResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /documents/extract [post]
func ExtractDocumentHandler(svc *services.DocumentService, jwtMgr *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireIdentityFromHeader(c, jwtMgr); !ok {
			return
		}

		var req dto.ExtractDocumentRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}
		if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_url"})
			return
		}

		text, err := svc.FetchDocumentText(c.Request.Context(), req.URL)
		if err != nil {
			if errors.Is(err, services.ErrDocumentUnavailable) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "document_unavailable"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.ExtractDocumentResponseDTO{Text: text})
	}
}
