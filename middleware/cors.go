package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// CorsMiddleware allows the frontend origin on protected endpoints and
// any origin on the public webhook path.
func CorsMiddleware(c *gin.Context) {
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	if strings.HasPrefix(c.Request.URL.Path, "/api/stripe/webhook") {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		c.Writer.Header().Set("Access-Control-Allow-Origin", frontend)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
	}

	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(204)
		return
	}

	c.Next()
}
