package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clauseguard/cmd/api/auth"
	"clauseguard/services"
)

// requireIdentityFromHeader parses the Authorization header on endpoints
// that require a signed-in user. On failure it writes a 401 response and
// returns false.
func requireIdentityFromHeader(c *gin.Context, jwtMgr *auth.JWTManager) (services.Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
		return services.Identity{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
		return services.Identity{}, false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "empty_token"})
		return services.Identity{}, false
	}

	claims, err := jwtMgr.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return services.Identity{}, false
	}

	return services.Identity{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, true
}
