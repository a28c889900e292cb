package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trm/pricing-engine/pricing"
)

// =============================================================================
// PROMO JSON SCHEMA
// =============================================================================

// PromoJSON is the JSON representation of a promotional code.
type PromoJSON struct {
	Code                 string          `json:"code"`
	DiscountType         string          `json:"discount_type"`
	DiscountValue        decimal.Decimal `json:"discount_value"`
	IsActive             *bool           `json:"is_active,omitempty"` // default true
	ValidFrom            string          `json:"valid_from,omitempty"`
	ValidUntil           string          `json:"valid_until,omitempty"`
	MaxUses              int             `json:"max_uses,omitempty"`          // 0 = unlimited
	MaxUsesPerUser       int             `json:"max_uses_per_user,omitempty"` // 0 = unlimited
	MinOrderAmount       decimal.Decimal `json:"min_order_amount,omitempty"`
	ApplicableServices   []string        `json:"applicable_services,omitempty"`
	ApplicableCategories []string        `json:"applicable_categories,omitempty"`
	CreatedAt            string          `json:"created_at,omitempty"`
}

// ParsePromo parses a JSON string into a pricing.PromotionalCode.
func (f *Factory) ParsePromo(jsonStr string) (*pricing.PromotionalCode, error) {
	var pj PromoJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse promo JSON: %w", err)
	}
	return f.PromoFromJSON(pj)
}

// PromoFromJSON converts PromoJSON to a pricing.PromotionalCode.
func (f *Factory) PromoFromJSON(pj PromoJSON) (*pricing.PromotionalCode, error) {
	code := pricing.NormalizeCode(pj.Code)
	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}

	switch pricing.DiscountType(pj.DiscountType) {
	case pricing.DiscountPercentage, pricing.DiscountFlat:
	default:
		return nil, fmt.Errorf("promo %s: unknown discount type %q", code, pj.DiscountType)
	}
	if pj.DiscountValue.IsNegative() {
		return nil, fmt.Errorf("promo %s: discount value must be non-negative", code)
	}
	if pricing.DiscountType(pj.DiscountType) == pricing.DiscountPercentage &&
		pj.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("promo %s: percentage discount cannot exceed 100", code)
	}

	promo := &pricing.PromotionalCode{
		Code:           code,
		DiscountType:   pricing.DiscountType(pj.DiscountType),
		DiscountValue:  pj.DiscountValue,
		IsActive:       pj.IsActive == nil || *pj.IsActive,
		MaxUses:        pj.MaxUses,
		MaxUsesPerUser: pj.MaxUsesPerUser,
		MinOrderAmount: pj.MinOrderAmount,
	}

	var err error
	if promo.ValidFrom, err = parseTimePtr(pj.ValidFrom); err != nil {
		return nil, fmt.Errorf("promo %s: valid_from: %w", code, err)
	}
	if promo.ValidUntil, err = parseTimePtr(pj.ValidUntil); err != nil {
		return nil, fmt.Errorf("promo %s: valid_until: %w", code, err)
	}
	if pj.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, pj.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("promo %s: created_at: %w", code, err)
		}
		promo.CreatedAt = created
	}

	for _, s := range pj.ApplicableServices {
		promo.ApplicableServices = append(promo.ApplicableServices, pricing.ServiceType(s))
	}
	promo.ApplicableCategories = append(promo.ApplicableCategories, pj.ApplicableCategories...)

	return promo, nil
}

// PromoToJSON converts a pricing.PromotionalCode back into its JSON form.
func (f *Factory) PromoToJSON(promo pricing.PromotionalCode) PromoJSON {
	pj := PromoJSON{
		Code:                 promo.Code,
		DiscountType:         string(promo.DiscountType),
		DiscountValue:        promo.DiscountValue,
		IsActive:             &promo.IsActive,
		MaxUses:              promo.MaxUses,
		MaxUsesPerUser:       promo.MaxUsesPerUser,
		MinOrderAmount:       promo.MinOrderAmount,
		ApplicableCategories: promo.ApplicableCategories,
	}
	for _, s := range promo.ApplicableServices {
		pj.ApplicableServices = append(pj.ApplicableServices, string(s))
	}
	if promo.ValidFrom != nil {
		pj.ValidFrom = promo.ValidFrom.Format(time.RFC3339)
	}
	if promo.ValidUntil != nil {
		pj.ValidUntil = promo.ValidUntil.Format(time.RFC3339)
	}
	if !promo.CreatedAt.IsZero() {
		pj.CreatedAt = promo.CreatedAt.Format(time.RFC3339)
	}
	return pj
}
