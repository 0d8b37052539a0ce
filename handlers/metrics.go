package handlers

import (
	"net/http"
	"os"
	"time"

	"vendorfill/api/db"
	"vendorfill/api/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/charge"
	"go.uber.org/zap"
)

// HandleAdminMetrics aggregates platform counts for the admin
// dashboard. Revenue is charge-based (paid, unrefunded charges since
// the start of the month) - a quick metric, not MRR.
func HandleAdminMetrics(c *gin.Context) {
	metrics, err := db.GetPeriodMetrics(c.Request.Context())
	if err != nil {
		logger.Get().Error("metrics query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Metrics query failed"})
		return
	}

	var revenue *float64
	if os.Getenv("STRIPE_SECRET_KEY") != "" {
		if r, err := revenueThisMonth(); err != nil {
			logger.Get().Error("revenue query failed", zap.Error(err))
		} else {
			revenue = &r
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"period":                  metrics.Period,
		"totalUsers":              metrics.TotalUsers,
		"activeSubscriptions":     metrics.ActiveSubscriptions,
		"uploadsThisPeriod":       metrics.UploadsThisPeriod,
		"topUsers":                metrics.TopUsers,
		"stripeRevenueThisMonth":  revenue,
	})
}

func revenueThisMonth() (float64, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	params := &stripe.ChargeListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: start.Unix(),
		},
	}
	params.Limit = stripe.Int64(100)

	var total int64
	it := charge.List(params)
	for it.Next() {
		ch := it.Charge()
		if ch.Paid && !ch.Refunded {
			total += ch.Amount
		}
	}
	if err := it.Err(); err != nil {
		return 0, err
	}
	return float64(total) / 100, nil
}
