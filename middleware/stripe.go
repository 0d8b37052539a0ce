package middleware

import (
	"io"
	"net/http"
	"os"

	"vendorfill/api/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// StripeEventKey is where the verified event lands in the gin context.
const StripeEventKey = "stripe_event"

const maxWebhookBodyBytes = int64(65536)

// StripeWebhookVerifier checks the Stripe-Signature header against the
// shared webhook secret before any event handling runs. Only signature
// or payload failures produce a 4xx, which is what drives Stripe's
// redelivery behavior.
func StripeWebhookVerifier(c *gin.Context) {
	b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.Get().Error("failed to read webhook body", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		b,
		c.Request.Header.Get("Stripe-Signature"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Get().Error("webhook signature verification failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Set(StripeEventKey, event)
	c.Next()
}
