package models

import (
	"testing"
	"time"
)

func TestPeriodKey(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), "2026-03"},
		// Local time just before midnight on the last of the month is
		// already the next period in UTC.
		{time.Date(2026, 3, 31, 23, 30, 0, 0, time.FixedZone("behind", -3600)), "2026-04"},
		{time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), "2026-12"},
	}
	for _, tc := range cases {
		if got := PeriodKey(tc.in); got != tc.want {
			t.Errorf("PeriodKey(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPriceToPlanQuotas(t *testing.T) {
	for price, pq := range PriceToPlan {
		if pq.Plan == PlanFree {
			t.Errorf("price %s maps to the free plan; paid prices must grant a paid tier", price)
		}
		if pq.Plan == PlanUnlimited {
			if pq.MonthlyLimit != UnlimitedQuota {
				t.Errorf("unlimited plan has limit %d, want %d", pq.MonthlyLimit, UnlimitedQuota)
			}
			continue
		}
		if pq.MonthlyLimit <= 0 {
			t.Errorf("price %s grants non-positive limit %d", price, pq.MonthlyLimit)
		}
	}
}
