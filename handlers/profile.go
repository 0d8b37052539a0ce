package handlers

import (
	"net/http"

	"vendorfill/api/db"
	"vendorfill/api/logger"
	"vendorfill/api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleGetProfile returns the user's saved company profile, or an
// empty one if nothing has been saved yet.
func HandleGetProfile(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	profile, err := db.GetProfile(c.Request.Context(), claims.Sub)
	if err != nil {
		logger.Get().Error("failed to load profile", zap.String("user_id", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// HandleSaveProfile upserts the full profile, overwriting all fields.
func HandleSaveProfile(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload"})
		return
	}

	if err := db.SaveProfile(c.Request.Context(), claims.Sub, profile); err != nil {
		logger.Get().Error("failed to save profile", zap.String("user_id", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleGetUsage reports the current plan and remaining quota for the
// upload page banners. Read-only; consumes nothing.
func HandleGetUsage(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	usage, err := db.GetUsage(c.Request.Context(), claims.Sub)
	if err != nil {
		logger.Get().Error("failed to load usage", zap.String("user_id", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage"})
		return
	}

	c.JSON(http.StatusOK, usage)
}
