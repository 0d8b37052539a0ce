package main

import (
	"log"
	"os"

	"vendorfill/api/db"
	"vendorfill/api/handlers"
	"vendorfill/api/llm"
	"vendorfill/api/logger"
	"vendorfill/api/mapper"
	"vendorfill/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	if err := logger.Init(os.Getenv("GIN_MODE") != "release"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	handlers.InitStripe()

	handlers.FillMapper = &mapper.Mapper{}
	if client := llm.FromEnv(); client != nil {
		handlers.FillMapper.Assisted = client
	}
}

func main() {
	defer logger.Sync()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"}) // Only trust local proxies

	router.Use(middleware.CorsMiddleware)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Stripe calls this; it authenticates with its signature, not a JWT.
	router.POST("/api/stripe/webhook", middleware.StripeWebhookVerifier, handlers.HandleStripeWebhook)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware)
	{
		api.POST("/fill", handlers.HandleFill)
		api.GET("/profile", handlers.HandleGetProfile)
		api.PUT("/profile", handlers.HandleSaveProfile)
		api.GET("/usage", handlers.HandleGetUsage)
		api.POST("/stripe/checkout", handlers.HandleCreateCheckoutSession)
		api.POST("/stripe/portal", handlers.HandleBillingPortal)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly)
		admin.GET("/metrics", handlers.HandleAdminMetrics)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
