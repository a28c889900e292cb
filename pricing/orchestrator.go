/*
orchestrator.go - The fixed pricing pipeline

PURPOSE:
  Sequences every pricing stage into one deterministic pipeline and
  returns the full breakdown. The order is significant; changing it
  changes the economics and must never be done silently:

    1. Base price (category multiplier + add-on surcharges)
    2. Subtotal = adjusted base × quantity
    3. Surge (multiplicative, calendar + urgency + category demand)
    4. Volume discount (company's monthly posting volume)
    5. Administrator-configured rules (priority, stacking, exclusivity)
    6. Promotional code (always LAST, stacking on top of every other
       discount, a deliberate policy kept for consistency with
       previously issued breakdowns)
    7. Final clamp at zero

CONCURRENCY:
  One calculation runs strictly sequentially; each stage consumes the
  previous stage's running price. There is no engine-internal shared
  state, so concurrent calculations never interfere.

SEE ALSO:
  - types.go: Request and Breakdown
  - jobposting/catalog.go: The concrete configuration
*/
package pricing

import (
	"context"
	"fmt"
	"log"
	"time"
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator wires all pricing stages over one shared configuration.
type Orchestrator struct {
	cfg        Config
	categories *CategoryTierResolver
	base       BasePriceCalculator
	surge      SurgePricingCalculator
	calendar   CalendarResolver
	volume     VolumeDiscountResolver
	rules      DynamicRuleEngine
	promos     PromotionalCodeValidator
}

// NewOrchestrator builds the pipeline. The base and surge stages share
// one category resolver so their tier decisions cannot diverge.
func NewOrchestrator(cfg Config, jobs JobRepository, rules PricingRuleRepository, promos PromotionalCodeRepository, logger *log.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	categories := NewCategoryTierResolver(cfg.CategoryTiers)
	return &Orchestrator{
		cfg:        cfg,
		categories: categories,
		base: BasePriceCalculator{
			BasePrice:         cfg.BasePrice,
			FeaturedSurcharge: cfg.FeaturedSurcharge,
			UrgentSurcharge:   cfg.UrgentSurcharge,
			Categories:        categories,
		},
		surge: SurgePricingCalculator{
			Multipliers: cfg.Surge,
			Categories:  categories,
		},
		calendar: CalendarResolver{Timezone: cfg.Timezone, Holidays: cfg.Holidays},
		volume:   VolumeDiscountResolver{Tiers: cfg.VolumeTiers, Jobs: jobs},
		rules:    DynamicRuleEngine{Rules: rules, Now: cfg.Now, Logger: logger},
		promos:   PromotionalCodeValidator{Promos: promos, Now: cfg.Now},
	}, nil
}

// MonthStart exposes the counting window the volume stage uses, so that
// callers reporting in-month counts agree with the pipeline.
func (o *Orchestrator) MonthStart() time.Time {
	return o.cfg.MonthStart()
}

// CalculateJobPostingPrice runs the full pipeline for one request.
func (o *Orchestrator) CalculateJobPostingPrice(ctx context.Context, req Request) (*Breakdown, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidRequest)
	}

	now := o.cfg.Now()
	b := &Breakdown{Quantity: req.Quantity, Currency: o.cfg.Currency}

	// 1-2. Base price and subtotal.
	b.Base = o.base.Calculate(req.Category, req.Featured, req.Urgent)
	b.Subtotal = b.Base.AdjustedPrice.Mul(decimalFromInt(req.Quantity))

	// 3. Surge.
	cal := o.calendar.Resolve(now)
	b.Surge = o.surge.Calculate(req.Urgent, req.Category, cal, b.Subtotal)
	b.PriceAfterSurge = b.Subtotal.Add(b.Surge.Amount)

	// 4. Volume discount.
	volume, err := o.volume.Resolve(ctx, req.CompanyID, req.Quantity, o.cfg.MonthStart())
	if err != nil {
		return nil, err
	}
	volume.Amount = RoundMoney(b.PriceAfterSurge.Mul(volume.Tier.DiscountRate))
	b.Volume = volume
	b.PriceAfterVolume = b.PriceAfterSurge.Sub(volume.Amount)

	// 5. Administrator-configured rules.
	outcome, err := o.rules.Apply(ctx, RuleContext{
		ServiceType: ServiceJobPosting,
		Category:    req.NormalizedCategory(),
		Urgent:      req.Urgent,
		Featured:    req.Featured,
		CompanyID:   req.CompanyID,
		Quantity:    req.Quantity,
		Price:       b.PriceAfterVolume,
	})
	if err != nil {
		return nil, err
	}
	b.AppliedRules = outcome.Applied
	b.PriceAfterRules = outcome.FinalPrice

	// 6. Promotional code, always last.
	price := b.PriceAfterRules
	if req.PromoCode != "" {
		promo, err := o.promos.Validate(ctx, PromoValidation{
			Code:        req.PromoCode,
			Amount:      price,
			UserID:      req.UserID,
			CompanyID:   req.CompanyID,
			ServiceType: ServiceJobPosting,
			Category:    req.NormalizedCategory(),
		})
		if err != nil {
			return nil, err
		}
		b.Promo = promo
		if promo.Valid {
			price = promo.FinalAmount
		}
	}

	// 7. Final clamp.
	b.FinalPrice = ClampNonNegative(RoundMoney(price))
	return b, nil
}

// ValidatePromoCode runs promotional-code validation standalone, outside
// the pipeline, for pre-checkout feedback.
func (o *Orchestrator) ValidatePromoCode(ctx context.Context, in PromoValidation) (*PromoResult, error) {
	return o.promos.Validate(ctx, in)
}

// =============================================================================
// PREVIEW - Named scenarios through the real pipeline, no side effects
// =============================================================================

// Scenario is a named pricing request used for read-only previews.
type Scenario struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Request     Request `json:"request"`
}

// ScenarioPreview pairs a scenario with its computed breakdown.
type ScenarioPreview struct {
	Scenario  Scenario   `json:"scenario"`
	Breakdown *Breakdown `json:"breakdown"`
}

// Preview runs each scenario through the same pipeline as checkout. It
// performs only point-in-time reads; nothing is persisted.
func (o *Orchestrator) Preview(ctx context.Context, scenarios []Scenario) ([]ScenarioPreview, error) {
	previews := make([]ScenarioPreview, 0, len(scenarios))
	for _, s := range scenarios {
		breakdown, err := o.CalculateJobPostingPrice(ctx, s.Request)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.ID, err)
		}
		previews = append(previews, ScenarioPreview{Scenario: s, Breakdown: breakdown})
	}
	return previews, nil
}
