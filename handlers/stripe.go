package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"vendorfill/api/db"
	"vendorfill/api/logger"
	"vendorfill/api/middleware"
	"vendorfill/api/models"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	portal "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"go.uber.org/zap"
)

// InitStripe wires the Stripe API key from the environment.
func InitStripe() {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
}

func frontendURL() string {
	url := os.Getenv("FRONTEND_URL")
	if url == "" {
		url = "http://localhost:3000"
	}
	return strings.TrimRight(url, "/")
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

// HandleCreateCheckoutSession starts a subscription checkout for the
// authenticated user. The price must be one of the plans in the
// entitlement table; anything else is rejected up front.
func HandleCreateCheckoutSession(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priceId is required"})
		return
	}
	if _, known := models.PriceToPlan[req.PriceID]; !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priceId"})
		return
	}

	customerID, err := ensureStripeCustomer(c.Request.Context(), claims.Sub, claims.Email)
	if err != nil {
		logger.Get().Error("failed to prepare billing customer", zap.String("user_id", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare billing"})
		return
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(frontendURL() + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(frontendURL() + "/billing"),
		Metadata: map[string]string{
			"supabase_user_id": claims.Sub,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		logger.Get().Error("stripe checkout session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// HandleBillingPortal opens the Stripe customer portal for a user who
// already has a billing customer.
func HandleBillingPortal(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	ent, err := db.GetEntitlement(c.Request.Context(), claims.Sub)
	if err != nil {
		logger.Get().Error("entitlement lookup failed", zap.String("user_id", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Entitlements lookup failed"})
		return
	}
	if ent.StripeCustomerID == nil || *ent.StripeCustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No Stripe customer found for this user yet"})
		return
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*ent.StripeCustomerID),
		ReturnURL: stripe.String(frontendURL() + "/billing"),
	}

	sess, err := portal.New(params)
	if err != nil {
		logger.Get().Error("stripe portal session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// HandleStripeWebhook applies subscription lifecycle events to the
// entitlement table. The event in context has already passed signature
// verification; from here every outcome is a 200 so Stripe does not
// redeliver events we have consciously ignored.
func HandleStripeWebhook(c *gin.Context) {
	raw, exists := c.Get(middleware.StripeEventKey)
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing webhook event"})
		return
	}
	event, ok := raw.(stripe.Event)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook event"})
		return
	}

	ctx := c.Request.Context()

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Get().Error("failed to unmarshal checkout session", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session payload"})
			return
		}
		subID := ""
		if sess.Subscription != nil {
			subID = sess.Subscription.ID
		}
		customerID := ""
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		if subID != "" {
			applySubscription(ctx, subID, customerID, sess.Metadata["supabase_user_id"])
		}

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			logger.Get().Error("failed to unmarshal subscription", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription payload"})
			return
		}
		customerID := ""
		if sub.Customer != nil {
			customerID = sub.Customer.ID
		}
		applySubscription(ctx, sub.ID, customerID, "")

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			logger.Get().Error("failed to unmarshal subscription", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription payload"})
			return
		}
		if sub.Customer != nil && sub.Customer.ID != "" {
			if err := db.ResetPlanByCustomer(ctx, sub.Customer.ID); err != nil {
				logger.Get().Error("plan downgrade failed",
					zap.String("customer", sub.Customer.ID), zap.Error(err))
			}
		}

	default:
		// Ignored event types still get a 200.
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// applySubscription resolves the subscription's active price to a plan
// and upserts the owning user's entitlement. Unmapped prices and
// unresolvable customers are logged no-ops; Stripe's own retries cover
// delivery failures, so nothing is retried here.
func applySubscription(ctx context.Context, subscriptionID, customerID, userIDHint string) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		logger.Get().Error("failed to retrieve subscription",
			zap.String("subscription", subscriptionID), zap.Error(err))
		return
	}

	if sub.Customer != nil && sub.Customer.ID != "" {
		customerID = sub.Customer.ID
	}

	userID := userIDHint
	if userID == "" && customerID != "" {
		userID, err = db.UserIDByStripeCustomer(ctx, customerID)
		if err != nil {
			logger.Get().Error("customer lookup failed",
				zap.String("customer", customerID), zap.Error(err))
			return
		}
	}
	if userID == "" {
		logger.Get().Warn("subscription event with unresolvable customer",
			zap.String("subscription", subscriptionID),
			zap.String("customer", customerID))
		return
	}

	priceID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}
	quota, known := models.PriceToPlan[priceID]
	if !known {
		logger.Get().Warn("subscription price not in plan table",
			zap.String("subscription", subscriptionID),
			zap.String("price", priceID))
		return
	}

	if err := db.ApplyPlan(ctx, userID, quota, customerID, sub.ID); err != nil {
		logger.Get().Error("failed to apply plan",
			zap.String("user_id", userID),
			zap.String("plan", string(quota.Plan)),
			zap.Error(err))
	}
}

// ensureStripeCustomer finds or creates the billing customer for a
// user and stores its id on the entitlement row.
func ensureStripeCustomer(ctx context.Context, userID, email string) (string, error) {
	ent, err := db.GetEntitlement(ctx, userID)
	if err != nil {
		return "", err
	}
	if ent.StripeCustomerID != nil && *ent.StripeCustomerID != "" {
		return *ent.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"supabase_user_id": userID,
		},
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := db.SetStripeCustomerID(ctx, userID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}
