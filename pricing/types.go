/*
Package pricing provides the dynamic pricing and rule engine.

PURPOSE:
  This package contains the domain-agnostic calculation pipeline that turns
  independent pricing signals (listing category, add-ons, calendar effects,
  posting volume, administrator-configured rules, and promotional codes)
  into a single, auditable final price.

KEY CONCEPTS IN THIS FILE (types.go):
  - Request: The immutable input to one price calculation
  - Breakdown: The full, ordered audit trail of the calculation
  - Money helpers: decimal-based amounts rounded to whole currency units
  - Identifiers: Type-safe IDs for companies, users, and rules

DESIGN PRINCIPLES:
  1. Purity: Every stage is a function of its inputs plus point-in-time
     repository reads. No stage mutates persisted state.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Auditability: The Breakdown records every adjustment with before/after
     prices so billing can persist it verbatim.
  4. Determinism: Identical inputs at the same instant against unchanged
     repositories produce identical breakdowns.

USAGE:
  orch := pricing.NewOrchestrator(cfg, jobs, rules, promos, logger)
  breakdown, err := orch.CalculateJobPostingPrice(ctx, pricing.Request{
      Category: "Technology",
      Featured: true,
      Quantity: 1,
  })

SEE ALSO:
  - orchestrator.go: The fixed seven-step pipeline
  - engine.go: Administrator-configured rule evaluation
  - promo.go: Promotional code validation
*/
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS - Type-safe IDs
// =============================================================================

type CompanyID string
type UserID string
type RuleID string

// ServiceType identifies the product a price is computed for.
type ServiceType string

const (
	ServiceJobPosting ServiceType = "job_posting"
	ServiceFeatured   ServiceType = "featured_listing"
	ServiceUrgent     ServiceType = "urgent_listing"
)

// =============================================================================
// MONEY HELPERS - Whole-unit currency amounts
// =============================================================================

// RoundMoney rounds an amount to the nearest whole currency unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// =============================================================================
// REQUEST - Input to one price calculation
// =============================================================================

// Request describes one job-posting purchase to be priced.
// Immutable per calculation.
type Request struct {
	Category  string    // free text; unknown categories price at the standard tier
	Featured  bool      // featured add-on
	Urgent    bool      // urgent add-on
	Quantity  int       // number of postings, must be >= 1
	CompanyID CompanyID // empty = anonymous, no volume history
	UserID    UserID    // empty = anonymous, no per-user promo limits
	PromoCode string    // optional promotional code, case-insensitive
}

// NormalizedCategory returns the trimmed category text used for lookups.
func (r Request) NormalizedCategory() string {
	return strings.TrimSpace(r.Category)
}

// =============================================================================
// BREAKDOWN - The full audit trail for one calculation
// =============================================================================

// Adjustment is one itemized change within the base-price stage.
type BaseAdjustment struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// BaseResult is the output of the base-price stage.
type BaseResult struct {
	BasePrice     decimal.Decimal  `json:"base_price"`
	Adjustments   []BaseAdjustment `json:"adjustments"`
	AdjustedPrice decimal.Decimal  `json:"adjusted_price"`
	Tier          CategoryTier     `json:"tier"`
}

// SurgeFactor records one triggered surge multiplier.
type SurgeFactor struct {
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// SurgeResult is the output of the surge stage.
type SurgeResult struct {
	Factors         []SurgeFactor   `json:"factors"`
	TotalMultiplier decimal.Decimal `json:"total_multiplier"`
	Amount          decimal.Decimal `json:"amount"` // price delta attributable to surge
}

// VolumeResult is the output of the volume-discount stage.
type VolumeResult struct {
	Tier          VolumeTier      `json:"tier"`
	ProjectedJobs int             `json:"projected_jobs"`
	Amount        decimal.Decimal `json:"amount"` // discount subtracted, >= 0
}

// AppliedRule records one administrator-configured rule that fired.
type AppliedRule struct {
	RuleID         RuleID          `json:"rule_id"`
	Name           string          `json:"name"`
	AdjustmentKind AdjustmentKind  `json:"adjustment_kind"`
	Amount         decimal.Decimal `json:"amount"` // signed price delta
	PreviousPrice  decimal.Decimal `json:"previous_price"`
	NewPrice       decimal.Decimal `json:"new_price"`
}

// PromoResult is the outcome of promotional-code validation.
// Business failures live in Errors; they are data, not Go errors.
type PromoResult struct {
	Code           string          `json:"code"`
	Valid          bool            `json:"valid"`
	Errors         []string        `json:"errors,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// Breakdown is the complete result of one price calculation.
// Constructed fresh per calculation and never mutated afterwards; the
// billing collaborator persists it verbatim.
type Breakdown struct {
	Base     BaseResult      `json:"base"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`

	Surge           SurgeResult     `json:"surge"`
	PriceAfterSurge decimal.Decimal `json:"price_after_surge"`

	Volume           VolumeResult    `json:"volume"`
	PriceAfterVolume decimal.Decimal `json:"price_after_volume"`

	AppliedRules    []AppliedRule   `json:"applied_rules"`
	PriceAfterRules decimal.Decimal `json:"price_after_rules"`

	Promo *PromoResult `json:"promo,omitempty"`

	FinalPrice decimal.Decimal `json:"final_price"`
	Currency   string          `json:"currency"`
}
