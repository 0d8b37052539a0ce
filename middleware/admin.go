package middleware

import (
	"net/http"
	"os"
	"strings"

	"vendorfill/api/logger"
	"vendorfill/api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminOnly restricts a route to the allow-listed admin emails in
// ADMIN_EMAILS (comma separated). Runs after AuthMiddleware.
func AdminOnly(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		c.Abort()
		return
	}

	claims, ok := user.(*models.SupabaseClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user claims"})
		c.Abort()
		return
	}

	if !isAdminEmail(claims.Email) {
		logger.Get().Warn("non-admin hit admin endpoint", zap.String("email", claims.Email))
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		c.Abort()
		return
	}

	c.Next()
}

func isAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, allowed := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		allowed = strings.TrimSpace(allowed)
		if allowed != "" && strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}
