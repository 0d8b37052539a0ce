package handlers

import (
	"net/http"
	"strings"

	"vendorfill/api/models"

	"github.com/gin-gonic/gin"
)

// currentClaims pulls the authenticated Supabase claims set by the auth
// middleware, responding 401 itself when they are missing.
func currentClaims(c *gin.Context) (*models.SupabaseClaims, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	claims, ok := user.(*models.SupabaseClaims)
	if !ok || claims.Sub == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user claims"})
		return nil, false
	}
	return claims, true
}

// stripDataURL handles "data:application/pdf;base64,XXXX" as well as a
// bare base64 string.
func stripDataURL(input string) string {
	const marker = "base64,"
	if idx := strings.Index(input, marker); idx >= 0 {
		return input[idx+len(marker):]
	}
	return input
}
