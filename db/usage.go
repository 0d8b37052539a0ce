package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vendorfill/api/models"
)

// ConsumeFill decides whether the user may fill one more document this
// period and records the admission, all inside a single serializable
// transaction so two concurrent requests can never both take the last
// unit of quota. Quota is consumed on admission, before the expensive
// model call, so an abandoned request still counts.
func ConsumeFill(ctx context.Context, userID string) (*models.ConsumeResult, error) {
	period := models.PeriodKey(time.Now())

	tx, err := DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("error starting consume transaction for user %s: %v", userID, err)
	}
	defer tx.Rollback()

	ent, err := entitlementForUpdate(ctx, tx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			if err := insertDefaultEntitlement(ctx, tx, userID); err != nil {
				return nil, err
			}
			ent, err = entitlementForUpdate(ctx, tx, userID)
		}
		if err != nil {
			return nil, err
		}
	}

	used, err := usedThisPeriod(ctx, tx, userID, period)
	if err != nil {
		return nil, err
	}

	res, action := decide(ent, used)

	switch action {
	case admitFreeCredit:
		// One-time free credit takes precedence and leaves the
		// monthly counter untouched.
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_entitlements SET free_used = true, updated_at = now() WHERE user_id = $1
		`, userID); err != nil {
			return nil, fmt.Errorf("error consuming free credit for user %s: %v", userID, err)
		}

	case admitMetered:
		used, err = incrementUsage(ctx, tx, userID, period)
		if err != nil {
			return nil, err
		}
		res.UsedThisPeriod = used
		res.RemainingThisPeriod = remaining(ent.MonthlyLimit, used)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing consume for user %s: %v", userID, err)
	}
	return res, nil
}

// GetUsage returns the current period's usage alongside the entitlement,
// for the dashboard banners. Read-only, no admission.
func GetUsage(ctx context.Context, userID string) (*models.ConsumeResult, error) {
	ent, err := GetEntitlement(ctx, userID)
	if err != nil {
		return nil, err
	}

	period := models.PeriodKey(time.Now())
	var used int
	err = DB.QueryRowContext(ctx, `
		SELECT used_count FROM user_usage WHERE user_id = $1 AND period = $2
	`, userID, period).Scan(&used)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("error getting usage for user %s: %v", userID, err)
	}

	return &models.ConsumeResult{
		Allowed:             !ent.FreeUsed || ent.MonthlyLimit == models.UnlimitedQuota || used < ent.MonthlyLimit,
		Plan:                ent.Plan,
		MonthlyLimit:        ent.MonthlyLimit,
		UsedThisPeriod:      used,
		RemainingThisPeriod: remaining(ent.MonthlyLimit, used),
		FreeCredit:          !ent.FreeUsed,
	}, nil
}

type admissionAction int

const (
	deny admissionAction = iota
	admitFreeCredit
	admitMetered
)

// decide applies the quota policy to a locked entitlement and the
// period's usage so far. Pure; ConsumeFill performs whichever write the
// returned action calls for. The result already carries the
// post-admission counts for metered admissions.
func decide(ent *models.Entitlement, used int) (*models.ConsumeResult, admissionAction) {
	res := &models.ConsumeResult{
		Plan:           ent.Plan,
		MonthlyLimit:   ent.MonthlyLimit,
		UsedThisPeriod: used,
	}

	switch {
	case !ent.FreeUsed:
		res.Allowed = true
		res.FreeCredit = true
		res.RemainingThisPeriod = remaining(ent.MonthlyLimit, used)
		return res, admitFreeCredit

	case ent.MonthlyLimit == models.UnlimitedQuota:
		res.Allowed = true
		res.UsedThisPeriod = used + 1
		res.RemainingThisPeriod = models.UnlimitedQuota
		return res, admitMetered

	case ent.MonthlyLimit <= 0:
		res.Reason = models.ReasonNoActivePlan
		return res, deny

	case used >= ent.MonthlyLimit:
		res.Reason = models.ReasonLimitReached
		return res, deny

	default:
		res.Allowed = true
		res.UsedThisPeriod = used + 1
		res.RemainingThisPeriod = ent.MonthlyLimit - used - 1
		return res, admitMetered
	}
}

func entitlementForUpdate(ctx context.Context, tx *sql.Tx, userID string) (*models.Entitlement, error) {
	ent := &models.Entitlement{UserID: userID}
	err := tx.QueryRowContext(ctx, `
		SELECT plan, monthly_limit, free_used
		FROM user_entitlements
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&ent.Plan, &ent.MonthlyLimit, &ent.FreeUsed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("error locking entitlement for user %s: %v", userID, err)
	}
	return ent, nil
}

func insertDefaultEntitlement(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_entitlements (user_id, plan, monthly_limit, free_used, updated_at)
		VALUES ($1, 'free', 0, false, now())
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("error creating default entitlement for user %s: %v", userID, err)
	}
	return nil
}

func usedThisPeriod(ctx context.Context, tx *sql.Tx, userID, period string) (int, error) {
	var used int
	err := tx.QueryRowContext(ctx, `
		SELECT used_count FROM user_usage WHERE user_id = $1 AND period = $2
	`, userID, period).Scan(&used)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading usage for user %s period %s: %v", userID, period, err)
	}
	return used, nil
}

func incrementUsage(ctx context.Context, tx *sql.Tx, userID, period string) (int, error) {
	var used int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO user_usage (user_id, period, used_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, period) DO UPDATE
		SET used_count = user_usage.used_count + 1
		RETURNING used_count
	`, userID, period).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("error incrementing usage for user %s period %s: %v", userID, period, err)
	}
	return used, nil
}

func remaining(limit, used int) int {
	if limit == models.UnlimitedQuota {
		return models.UnlimitedQuota
	}
	if limit-used < 0 {
		return 0
	}
	return limit - used
}
