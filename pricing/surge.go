package pricing

import "github.com/shopspring/decimal"

// =============================================================================
// SURGE PRICING CALCULATOR
// =============================================================================

// SurgePricingCalculator composes independently-triggered multiplicative
// surge factors: urgency, weekend, holiday, and high-demand category.
//
// Surges represent independent real-world cost pressures that compound:
// an urgent weekend holiday posting is rarer and costlier than any single
// factor alone, so the total multiplier is the PRODUCT of all triggered
// multipliers, never a sum.
type SurgePricingCalculator struct {
	Multipliers SurgeMultipliers
	Categories  *CategoryTierResolver
}

// Calculate evaluates each factor and returns the composed multiplier,
// rounded to two decimal places, together with the ordered list of
// triggered factors. If nothing triggers the multiplier is exactly 1.0.
// The returned Amount is the surge delta over the given subtotal.
func (c SurgePricingCalculator) Calculate(urgent bool, category string, cal CalendarInfo, subtotal decimal.Decimal) SurgeResult {
	total := decimal.NewFromInt(1)
	var factors []SurgeFactor

	trigger := func(name string, m decimal.Decimal) {
		factors = append(factors, SurgeFactor{Name: name, Multiplier: m})
		total = total.Mul(m)
	}

	if urgent {
		trigger("urgency", c.Multipliers.Urgency)
	}
	if cal.IsWeekend {
		trigger("weekend", c.Multipliers.Weekend)
	}
	if cal.IsHoliday {
		trigger("holiday", c.Multipliers.Holiday)
	}
	if c.Categories.Resolve(category).Label == TierHighDemand {
		trigger("high_demand_category", c.Multipliers.HighDemandCategory)
	}

	total = total.Round(2)
	surged := RoundMoney(subtotal.Mul(total))

	return SurgeResult{
		Factors:         factors,
		TotalMultiplier: total,
		Amount:          surged.Sub(subtotal),
	}
}
