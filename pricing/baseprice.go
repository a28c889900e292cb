package pricing

import "github.com/shopspring/decimal"

// =============================================================================
// BASE PRICE CALCULATOR
// =============================================================================

// BasePriceCalculator combines the fixed base price, the category
// multiplier, and the flat featured/urgent surcharges into an adjusted
// per-posting price with an itemized adjustment list.
//
// Adjustments are additive and commutative among themselves, unlike the
// surge stage where factors compound multiplicatively.
type BasePriceCalculator struct {
	BasePrice         decimal.Decimal
	FeaturedSurcharge decimal.Decimal
	UrgentSurcharge   decimal.Decimal
	Categories        *CategoryTierResolver
}

// Calculate returns the adjusted base price for one posting.
// The category adjustment is base × (multiplier − 1), rounded to the
// nearest currency unit, recorded as a single itemized line.
func (c BasePriceCalculator) Calculate(category string, featured, urgent bool) BaseResult {
	tier := c.Categories.Resolve(category)
	result := BaseResult{
		BasePrice:     c.BasePrice,
		AdjustedPrice: c.BasePrice,
		Tier:          tier,
	}

	one := decimal.NewFromInt(1)
	if !tier.Multiplier.Equal(one) {
		amount := RoundMoney(c.BasePrice.Mul(tier.Multiplier.Sub(one)))
		result.Adjustments = append(result.Adjustments, BaseAdjustment{
			Label:  "Category (" + string(tier.Label) + ")",
			Amount: amount,
		})
		result.AdjustedPrice = result.AdjustedPrice.Add(amount)
	}

	if featured {
		result.Adjustments = append(result.Adjustments, BaseAdjustment{
			Label:  "Featured listing",
			Amount: c.FeaturedSurcharge,
		})
		result.AdjustedPrice = result.AdjustedPrice.Add(c.FeaturedSurcharge)
	}

	if urgent {
		result.Adjustments = append(result.Adjustments, BaseAdjustment{
			Label:  "Urgent listing",
			Amount: c.UrgentSurcharge,
		})
		result.AdjustedPrice = result.AdjustedPrice.Add(c.UrgentSurcharge)
	}

	return result
}
