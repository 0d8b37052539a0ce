package db

import (
	"testing"

	"vendorfill/api/models"
)

func TestDecideFreeCreditPrecedence(t *testing.T) {
	// The one-time credit admits even with no plan and never touches
	// the monthly counter.
	ent := &models.Entitlement{Plan: models.PlanFree, MonthlyLimit: 0, FreeUsed: false}

	res, action := decide(ent, 0)
	if action != admitFreeCredit {
		t.Fatalf("action = %v, want free credit", action)
	}
	if !res.Allowed || !res.FreeCredit {
		t.Fatalf("result = %+v, want allowed free credit", res)
	}
	if res.UsedThisPeriod != 0 {
		t.Fatalf("free credit moved the counter to %d", res.UsedThisPeriod)
	}
}

func TestDecideFreeCreditBeforePlanQuota(t *testing.T) {
	ent := &models.Entitlement{Plan: models.PlanStarter, MonthlyLimit: 5, FreeUsed: false}

	res, action := decide(ent, 3)
	if action != admitFreeCredit {
		t.Fatalf("action = %v, want free credit", action)
	}
	if res.UsedThisPeriod != 3 || res.RemainingThisPeriod != 2 {
		t.Fatalf("result = %+v, want counter untouched at 3 of 5", res)
	}
}

func TestDecideNoActivePlan(t *testing.T) {
	ent := &models.Entitlement{Plan: models.PlanFree, MonthlyLimit: 0, FreeUsed: true}

	res, action := decide(ent, 0)
	if action != deny {
		t.Fatalf("action = %v, want deny", action)
	}
	if res.Allowed || res.Reason != models.ReasonNoActivePlan {
		t.Fatalf("result = %+v, want %s", res, models.ReasonNoActivePlan)
	}
}

func TestDecideExactlyLimitAdmissions(t *testing.T) {
	ent := &models.Entitlement{Plan: models.PlanPro, MonthlyLimit: 25, FreeUsed: true}

	used := 0
	for i := 0; i < ent.MonthlyLimit; i++ {
		res, action := decide(ent, used)
		if action != admitMetered {
			t.Fatalf("admission %d: action = %v, want metered", i+1, action)
		}
		if res.UsedThisPeriod != used+1 {
			t.Fatalf("admission %d: used = %d, want %d", i+1, res.UsedThisPeriod, used+1)
		}
		if res.RemainingThisPeriod != ent.MonthlyLimit-used-1 {
			t.Fatalf("admission %d: remaining = %d", i+1, res.RemainingThisPeriod)
		}
		used = res.UsedThisPeriod
	}

	res, action := decide(ent, used)
	if action != deny {
		t.Fatalf("admission past limit: action = %v, want deny", action)
	}
	if res.Allowed || res.Reason != models.ReasonLimitReached {
		t.Fatalf("admission past limit: result = %+v, want %s", res, models.ReasonLimitReached)
	}
	if res.UsedThisPeriod != ent.MonthlyLimit || res.RemainingThisPeriod != 0 {
		t.Fatalf("denied result = %+v, want used %d remaining 0", res, ent.MonthlyLimit)
	}
}

func TestDecideUnlimitedAlwaysAdmits(t *testing.T) {
	ent := &models.Entitlement{Plan: models.PlanUnlimited, MonthlyLimit: models.UnlimitedQuota, FreeUsed: true}

	res, action := decide(ent, 100000)
	if action != admitMetered {
		t.Fatalf("action = %v, want metered", action)
	}
	if !res.Allowed || res.UsedThisPeriod != 100001 {
		t.Fatalf("result = %+v, want admitted with counter still moving", res)
	}
	if res.RemainingThisPeriod != models.UnlimitedQuota {
		t.Fatalf("remaining = %d, want %d", res.RemainingThisPeriod, models.UnlimitedQuota)
	}
}

func TestRemaining(t *testing.T) {
	cases := []struct {
		limit, used, want int
	}{
		{5, 0, 5},
		{5, 3, 2},
		{5, 5, 0},
		{5, 7, 0},
		{0, 0, 0},
		{models.UnlimitedQuota, 100, models.UnlimitedQuota},
	}
	for _, tc := range cases {
		if got := remaining(tc.limit, tc.used); got != tc.want {
			t.Errorf("remaining(%d, %d) = %d, want %d", tc.limit, tc.used, got, tc.want)
		}
	}
}
