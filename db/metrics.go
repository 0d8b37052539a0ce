package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vendorfill/api/models"
)

// PeriodMetrics aggregates platform activity for the admin dashboard.
type PeriodMetrics struct {
	Period              string         `json:"period"`
	TotalUsers          int            `json:"total_users"`
	ActiveSubscriptions int            `json:"active_subscriptions"`
	UploadsThisPeriod   int            `json:"uploads_this_period"`
	TopUsers            []models.Usage `json:"top_users"`
}

// GetPeriodMetrics computes user counts, active subscriptions and usage
// totals for the current UTC calendar month.
func GetPeriodMetrics(ctx context.Context) (*PeriodMetrics, error) {
	m := &PeriodMetrics{Period: models.PeriodKey(time.Now())}

	err := DB.QueryRowContext(ctx, `SELECT count(*) FROM user_entitlements`).Scan(&m.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %v", err)
	}

	err = DB.QueryRowContext(ctx, `
		SELECT count(*) FROM user_entitlements WHERE plan != 'free' AND monthly_limit != 0
	`).Scan(&m.ActiveSubscriptions)
	if err != nil {
		return nil, fmt.Errorf("error counting active subscriptions: %v", err)
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT user_id, used_count FROM user_usage WHERE period = $1
	`, m.Period)
	if err != nil {
		return nil, fmt.Errorf("error querying usage for period %s: %v", m.Period, err)
	}
	defer rows.Close()

	for rows.Next() {
		u := models.Usage{Period: m.Period}
		if err := rows.Scan(&u.UserID, &u.UsedCount); err != nil {
			return nil, fmt.Errorf("error scanning usage row: %v", err)
		}
		m.UploadsThisPeriod += u.UsedCount
		m.TopUsers = append(m.TopUsers, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage rows: %v", err)
	}

	sort.Slice(m.TopUsers, func(i, j int) bool {
		return m.TopUsers[i].UsedCount > m.TopUsers[j].UsedCount
	})
	if len(m.TopUsers) > 10 {
		m.TopUsers = m.TopUsers[:10]
	}

	return m, nil
}
