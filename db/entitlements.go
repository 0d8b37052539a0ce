package db

import (
	"context"
	"database/sql"
	"fmt"

	"vendorfill/api/models"
)

// GetEntitlement returns the user's entitlement row, or a default free
// entitlement (not yet persisted) when none exists.
func GetEntitlement(ctx context.Context, userID string) (*models.Entitlement, error) {
	query := `
		SELECT user_id, plan, monthly_limit, free_used, stripe_customer_id, stripe_subscription_id, updated_at
		FROM user_entitlements
		WHERE user_id = $1
	`
	ent := &models.Entitlement{}
	err := DB.QueryRowContext(ctx, query, userID).Scan(
		&ent.UserID, &ent.Plan, &ent.MonthlyLimit, &ent.FreeUsed,
		&ent.StripeCustomerID, &ent.StripeSubscriptionID, &ent.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return &models.Entitlement{UserID: userID, Plan: models.PlanFree, MonthlyLimit: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting entitlement for user %s: %v", userID, err)
	}
	return ent, nil
}

// SetStripeCustomerID stores the billing customer id on the user's
// entitlement row, creating the row if needed.
func SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	query := `
		INSERT INTO user_entitlements (user_id, plan, monthly_limit, free_used, stripe_customer_id, updated_at)
		VALUES ($1, 'free', 0, false, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET stripe_customer_id = EXCLUDED.stripe_customer_id, updated_at = now()
	`
	_, err := DB.ExecContext(ctx, query, userID, customerID)
	if err != nil {
		return fmt.Errorf("error setting Stripe customer for user %s: %v", userID, err)
	}
	return nil
}

// UserIDByStripeCustomer resolves which user owns a billing customer id.
// Returns "" without error when no row matches.
func UserIDByStripeCustomer(ctx context.Context, customerID string) (string, error) {
	var userID string
	err := DB.QueryRowContext(ctx, `
		SELECT user_id FROM user_entitlements WHERE stripe_customer_id = $1
	`, customerID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error resolving Stripe customer %s: %v", customerID, err)
	}
	return userID, nil
}

// ApplyPlan upserts the entitlement derived from an active subscription.
// Replaying the same subscription event converges on the same row state.
func ApplyPlan(ctx context.Context, userID string, quota models.PlanQuota, customerID, subscriptionID string) error {
	query := `
		INSERT INTO user_entitlements (user_id, plan, monthly_limit, free_used, stripe_customer_id, stripe_subscription_id, updated_at)
		VALUES ($1, $2, $3, false, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE
		SET plan = EXCLUDED.plan,
		    monthly_limit = EXCLUDED.monthly_limit,
		    stripe_customer_id = EXCLUDED.stripe_customer_id,
		    stripe_subscription_id = EXCLUDED.stripe_subscription_id,
		    updated_at = now()
	`
	_, err := DB.ExecContext(ctx, query, userID, quota.Plan, quota.MonthlyLimit, customerID, subscriptionID)
	if err != nil {
		return fmt.Errorf("error applying plan %s for user %s: %v", quota.Plan, userID, err)
	}
	return nil
}

// ResetPlanByCustomer downgrades the owning user to the free tier after
// a subscription is cancelled. Consumption already recorded stays.
func ResetPlanByCustomer(ctx context.Context, customerID string) error {
	query := `
		UPDATE user_entitlements
		SET plan = 'free', monthly_limit = 0, stripe_subscription_id = NULL, updated_at = now()
		WHERE stripe_customer_id = $1
	`
	_, err := DB.ExecContext(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("error resetting plan for Stripe customer %s: %v", customerID, err)
	}
	return nil
}
