/*
promo.go - Promotional code validation and discount computation

PURPOSE:
  Validates a user-supplied code against every eligibility constraint and
  computes its discount. All failing checks are collected, never just the
  first, so the caller can present a complete, actionable error list.

FAILURE POLICY:
  Business failures (expired, over-limit, wrong category, below minimum)
  are data inside PromoResult, never Go errors. Only infrastructure
  failures (repository unreachable) propagate.

USAGE NOTE:
  Validation reads usage counters but never writes them. Recording a
  redemption is the checkout collaborator's job, after payment.
*/
package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROMOTIONAL CODE - Record and eligibility constraints
// =============================================================================

// DiscountType identifies how a promotional discount is computed.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// PromotionalCode is one externally persisted promotional code record.
type PromotionalCode struct {
	Code          string // canonical form is upper-case
	DiscountType  DiscountType
	DiscountValue decimal.Decimal

	IsActive   bool
	ValidFrom  *time.Time
	ValidUntil *time.Time

	MaxUses        int // 0 = unlimited
	MaxUsesPerUser int // 0 = unlimited

	MinOrderAmount       decimal.Decimal
	ApplicableServices   []ServiceType // empty = all services
	ApplicableCategories []string      // empty = all categories

	CreatedAt time.Time
}

// ComputeDiscount returns the discount for an amount, clipped so the
// resulting amount is never negative.
func (p PromotionalCode) ComputeDiscount(amount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		discount = RoundMoney(amount.Mul(p.DiscountValue).Div(decimal.NewFromInt(100)))
	case DiscountFlat:
		discount = RoundMoney(p.DiscountValue)
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(amount) {
		return amount
	}
	return ClampNonNegative(discount)
}

// NormalizeCode returns the canonical case-insensitive key for a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// =============================================================================
// VALIDATOR
// =============================================================================

// PromoValidation carries everything the eligibility checks need.
type PromoValidation struct {
	Code        string
	Amount      decimal.Decimal
	UserID      UserID
	CompanyID   CompanyID
	ServiceType ServiceType
	Category    string
}

// PromotionalCodeValidator validates codes against usage and eligibility
// constraints.
type PromotionalCodeValidator struct {
	Promos PromotionalCodeRepository
	Now    Clock
}

// Validate looks the code up and evaluates ALL eligibility checks,
// collecting every failing reason. Business failures never surface as
// errors; only repository failures do.
func (v PromotionalCodeValidator) Validate(ctx context.Context, in PromoValidation) (*PromoResult, error) {
	code := NormalizeCode(in.Code)
	result := &PromoResult{Code: code, FinalAmount: in.Amount}

	record, err := v.Promos.FindByCode(ctx, code)
	if err != nil {
		if IsNotFound(err) {
			result.Errors = []string{"Invalid promotional code"}
			return result, nil
		}
		return nil, fmt.Errorf("%w: looking up promo code: %v", ErrRepositoryUnavailable, err)
	}

	now := v.Now()
	var reasons []string

	if !record.IsActive {
		reasons = append(reasons, "Promotional code is not active")
	}
	if record.ValidFrom != nil && now.Before(*record.ValidFrom) {
		reasons = append(reasons, "Promotional code is not yet valid")
	}
	if record.ValidUntil != nil && now.After(*record.ValidUntil) {
		reasons = append(reasons, "Promotional code has expired")
	}

	total, byUser, err := v.Promos.CountRedemptions(ctx, code, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: counting redemptions: %v", ErrRepositoryUnavailable, err)
	}
	if record.MaxUses > 0 && total >= record.MaxUses {
		reasons = append(reasons, "Promotional code has reached its usage limit")
	}
	if record.MaxUsesPerUser > 0 && in.UserID != "" && byUser >= record.MaxUsesPerUser {
		reasons = append(reasons, "You have reached the usage limit for this promotional code")
	}

	if record.MinOrderAmount.IsPositive() && in.Amount.LessThan(record.MinOrderAmount) {
		reasons = append(reasons, fmt.Sprintf("Order amount does not meet the minimum of %s", record.MinOrderAmount.StringFixed(0)))
	}

	if len(record.ApplicableServices) > 0 && !containsService(record.ApplicableServices, in.ServiceType) {
		reasons = append(reasons, "Promotional code is not valid for this service")
	}
	if len(record.ApplicableCategories) > 0 && !containsFold(record.ApplicableCategories, in.Category) {
		reasons = append(reasons, "Promotional code is not valid for this category")
	}

	if len(reasons) > 0 {
		result.Errors = reasons
		return result, nil
	}

	discount := record.ComputeDiscount(in.Amount)
	result.Valid = true
	result.DiscountAmount = discount
	result.FinalAmount = in.Amount.Sub(discount)
	return result, nil
}

func containsService(list []ServiceType, st ServiceType) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
