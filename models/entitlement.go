package models

import "time"

// Plan is a subscription tier. The tier alone determines the monthly
// document quota; it is never set ad hoc.
type Plan string

const (
	PlanFree      Plan = "free"
	PlanStarter   Plan = "starter"
	PlanPro       Plan = "pro"
	PlanBusiness  Plan = "business"
	PlanUnlimited Plan = "unlimited"
)

// UnlimitedQuota marks a plan with no monthly cap. A limit of 0 means
// no active quota at all.
const UnlimitedQuota = -1

// PlanQuota pairs a tier with its monthly document limit.
type PlanQuota struct {
	Plan         Plan
	MonthlyLimit int
}

// PriceToPlan is the single source of truth mapping Stripe price IDs to
// entitlements. Both the checkout and webhook paths consult this table;
// price IDs not listed here never change an entitlement.
var PriceToPlan = map[string]PlanQuota{
	"price_1SaN5TLUnMjiPKi9r0UnyAYM": {Plan: PlanStarter, MonthlyLimit: 5},
	"price_1SlKH6LUnMjiPKi9ozcPR91i": {Plan: PlanPro, MonthlyLimit: 25},
	"price_1SlKHdLUnMjiPKi9QaqXhaEZ": {Plan: PlanBusiness, MonthlyLimit: 75},
	"price_1SlKHvLUnMjiPKi9RacDSNMf": {Plan: PlanUnlimited, MonthlyLimit: UnlimitedQuota},
}

// Entitlement is the per-user billing state. One row per user, created
// lazily on first use.
type Entitlement struct {
	UserID               string    `json:"user_id"`
	Plan                 Plan      `json:"plan"`
	MonthlyLimit         int       `json:"monthly_limit"`
	FreeUsed             bool      `json:"free_used"`
	StripeCustomerID     *string   `json:"stripe_customer_id"`
	StripeSubscriptionID *string   `json:"stripe_subscription_id"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Usage is the per-user, per-period fill counter. Period is a UTC
// calendar month formatted YYYY-MM; the counter never decreases within
// a period.
type Usage struct {
	UserID    string `json:"user_id"`
	Period    string `json:"period"`
	UsedCount int    `json:"used_count"`
}

// Denial reasons surfaced with a 402 so the client can render an
// upgrade path instead of a generic error.
const (
	ReasonNoActivePlan = "no_active_plan"
	ReasonLimitReached = "limit_reached"
)

// ConsumeResult is the outcome of one atomic quota admission.
type ConsumeResult struct {
	Allowed             bool   `json:"allowed"`
	Reason              string `json:"reason,omitempty"`
	Plan                Plan   `json:"plan"`
	MonthlyLimit        int    `json:"monthly_limit"`
	UsedThisPeriod      int    `json:"used_this_period"`
	RemainingThisPeriod int    `json:"remaining_this_period"`
	FreeCredit          bool   `json:"free_credit,omitempty"`
}

// PeriodKey formats t as the UTC calendar-month quota period.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
