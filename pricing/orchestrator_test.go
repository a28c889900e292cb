package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trm/pricing-engine/jobposting"
	"github.com/trm/pricing-engine/pricing"
	"github.com/trm/pricing-engine/pricing/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Fixed instants, chosen in UTC so the Jakarta-local calendar state is
// unambiguous (WIB = UTC+7).
var (
	// Tuesday 2026-03-10 10:00 WIB. Not a weekend, not a holiday.
	quietTuesday = time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC)
	// Saturday 2026-03-14 10:00 WIB.
	saturday = time.Date(2026, time.March, 14, 3, 0, 0, 0, time.UTC)
	// Friday 2026-05-01 10:00 WIB, Labour Day.
	labourDay = time.Date(2026, time.May, 1, 3, 0, 0, 0, time.UTC)
)

func testConfig(at time.Time) pricing.Config {
	cfg := jobposting.DefaultConfig()
	cfg.Now = func() time.Time { return at }
	return cfg
}

func newPipeline(t *testing.T, cfg pricing.Config, mem *store.Memory) *pricing.Orchestrator {
	t.Helper()
	orch, err := pricing.NewOrchestrator(cfg, mem, mem, mem, nil)
	require.NoError(t, err)
	return orch
}

func money(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func assertMoney(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, actual.Equal(money(expected)), "expected %d, got %s: %v", expected, actual, msgAndArgs)
}

// =============================================================================
// PIPELINE TESTS
// =============================================================================

func TestPipeline_StandardPosting(t *testing.T) {
	// GIVEN: A single posting with no category, no add-ons, on a quiet
	//        Tuesday, with no rules or promos configured
	// WHEN:  The price is calculated
	// THEN:  The final price is exactly the base price

	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{Quantity: 1})
	require.NoError(t, err)

	assertMoney(t, 50000, b.Base.AdjustedPrice)
	assert.Empty(t, b.Base.Adjustments)
	assert.True(t, b.Surge.TotalMultiplier.Equal(decimal.NewFromInt(1)), "no surge factor should trigger")
	assert.Empty(t, b.Surge.Factors)
	assert.Equal(t, "0-4 Jobs (No Discount)", b.Volume.Tier.Label)
	assert.Empty(t, b.AppliedRules)
	assert.Nil(t, b.Promo)
	assertMoney(t, 50000, b.FinalPrice)
	assert.Equal(t, "IDR", b.Currency)
}

func TestPipeline_FeaturedTechnologyPosting(t *testing.T) {
	// GIVEN: A Technology posting with the featured add-on on a quiet day
	// WHEN:  The price is calculated
	// THEN:  50,000 base + 15,000 category (×1.3) + 25,000 featured = 90,000

	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Category: "Technology",
		Featured: true,
		Quantity: 1,
	})
	require.NoError(t, err)

	require.Len(t, b.Base.Adjustments, 2)
	assert.Equal(t, "Category (premium)", b.Base.Adjustments[0].Label)
	assertMoney(t, 15000, b.Base.Adjustments[0].Amount)
	assert.Equal(t, "Featured listing", b.Base.Adjustments[1].Label)
	assertMoney(t, 25000, b.Base.Adjustments[1].Amount)
	assertMoney(t, 90000, b.Base.AdjustedPrice)
	assertMoney(t, 90000, b.FinalPrice)
}

func TestPipeline_UrgentWeekendSurgeCompounds(t *testing.T) {
	// GIVEN: An urgent posting purchased on a Saturday
	// WHEN:  The price is calculated
	// THEN:  Surge is 2.0 × 1.5 = 3.00 over the 80,000 subtotal (base +
	//        urgent surcharge), for a 240,000 final price

	orch := newPipeline(t, testConfig(saturday), store.NewMemory())

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Urgent:   true,
		Quantity: 1,
	})
	require.NoError(t, err)

	assertMoney(t, 80000, b.Subtotal)
	require.Len(t, b.Surge.Factors, 2)
	assert.Equal(t, "urgency", b.Surge.Factors[0].Name)
	assert.Equal(t, "weekend", b.Surge.Factors[1].Name)
	assert.True(t, b.Surge.TotalMultiplier.Equal(decimal.RequireFromString("3.00")),
		"got multiplier %s", b.Surge.TotalMultiplier)
	assertMoney(t, 240000, b.PriceAfterSurge)
	assertMoney(t, 240000, b.FinalPrice)
}

func TestPipeline_HolidaySurge(t *testing.T) {
	// GIVEN: A standard posting on Labour Day (a Friday)
	// WHEN:  The price is calculated
	// THEN:  Only the 1.8 holiday factor triggers

	orch := newPipeline(t, testConfig(labourDay), store.NewMemory())

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{Quantity: 1})
	require.NoError(t, err)

	require.Len(t, b.Surge.Factors, 1)
	assert.Equal(t, "holiday", b.Surge.Factors[0].Name)
	assertMoney(t, 90000, b.FinalPrice)
}

func TestPipeline_HighDemandCategoryTriggersSurge(t *testing.T) {
	// GIVEN: A Data Science posting (high_demand band) on a quiet Tuesday
	// WHEN:  The price is calculated
	// THEN:  The category multiplier raises the base AND the 1.2 category
	//        surge factor triggers on top

	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Category: "Data Science",
		Quantity: 1,
	})
	require.NoError(t, err)

	// 50,000 × 1.35 = 67,500 adjusted base.
	assertMoney(t, 67500, b.Base.AdjustedPrice)
	require.Len(t, b.Surge.Factors, 1)
	assert.Equal(t, "high_demand_category", b.Surge.Factors[0].Name)
	// 67,500 × 1.2 = 81,000.
	assertMoney(t, 81000, b.FinalPrice)
}

func TestPipeline_VolumeDiscountFromMonthlyHistory(t *testing.T) {
	// GIVEN: A company with 12 active postings created this month
	// WHEN:  It buys one more standard posting
	// THEN:  Projected volume 13 lands in the 20% tier and the discount
	//        applies to the post-surge price

	mem := store.NewMemory()
	for i := 0; i < 12; i++ {
		mem.AddJob("acme", time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC), true)
	}
	orch := newPipeline(t, testConfig(quietTuesday), mem)

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Quantity:  1,
		CompanyID: "acme",
	})
	require.NoError(t, err)

	assert.Equal(t, 13, b.Volume.ProjectedJobs)
	assert.Equal(t, "10-24 Jobs (20% off)", b.Volume.Tier.Label)
	assertMoney(t, 10000, b.Volume.Amount)
	assertMoney(t, 40000, b.FinalPrice)
}

func TestPipeline_VolumeIgnoresPreviousMonths(t *testing.T) {
	// GIVEN: A company whose posting history predates the current month
	// WHEN:  It buys one posting
	// THEN:  The history does not count toward the volume tier

	mem := store.NewMemory()
	for i := 0; i < 30; i++ {
		mem.AddJob("acme", time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC), true)
	}
	orch := newPipeline(t, testConfig(quietTuesday), mem)

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Quantity:  1,
		CompanyID: "acme",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, b.Volume.ProjectedJobs)
	assert.Equal(t, "0-4 Jobs (No Discount)", b.Volume.Tier.Label)
	assertMoney(t, 50000, b.FinalPrice)
}

func TestPipeline_PromoAppliesLast(t *testing.T) {
	// GIVEN: A flat 10,000 promo with a 50,000 minimum order
	// WHEN:  A standard 50,000 posting uses the code
	// THEN:  The promo is valid and applies after every other stage

	mem := store.NewMemory()
	mem.SavePromo(pricing.PromotionalCode{
		Code:           "SAVE10",
		DiscountType:   pricing.DiscountFlat,
		DiscountValue:  money(10000),
		IsActive:       true,
		MinOrderAmount: money(50000),
	})
	orch := newPipeline(t, testConfig(quietTuesday), mem)

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Quantity:  1,
		PromoCode: "save10",
	})
	require.NoError(t, err)

	require.NotNil(t, b.Promo)
	assert.True(t, b.Promo.Valid)
	assert.Equal(t, "SAVE10", b.Promo.Code)
	assertMoney(t, 10000, b.Promo.DiscountAmount)
	assertMoney(t, 40000, b.FinalPrice)
}

func TestPipeline_InvalidPromoKeepsPrice(t *testing.T) {
	// GIVEN: A promo code that exists but is below its minimum order
	// WHEN:  The price is calculated
	// THEN:  The breakdown records the failure reasons and the price is
	//        unchanged; no Go error surfaces

	mem := store.NewMemory()
	mem.SavePromo(pricing.PromotionalCode{
		Code:           "BIGSPEND",
		DiscountType:   pricing.DiscountFlat,
		DiscountValue:  money(10000),
		IsActive:       true,
		MinOrderAmount: money(100000),
	})
	orch := newPipeline(t, testConfig(quietTuesday), mem)

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Quantity:  1,
		PromoCode: "BIGSPEND",
	})
	require.NoError(t, err)

	require.NotNil(t, b.Promo)
	assert.False(t, b.Promo.Valid)
	assert.NotEmpty(t, b.Promo.Errors)
	assertMoney(t, 50000, b.FinalPrice)
}

func TestPipeline_RuleStageRunsBeforePromo(t *testing.T) {
	// GIVEN: A 50%-off rule and a flat 10,000 promo
	// WHEN:  Both apply to a standard posting
	// THEN:  The rule halves the price first, then the promo subtracts

	mem := store.NewMemory()
	mem.SaveRule(pricing.Rule{
		ID:         "half-off",
		Name:       "Half Off",
		Type:       pricing.RuleCategoryPricing,
		Adjustment: pricing.Adjustment{Kind: pricing.AdjustPercentage, Value: money(-50)},
		AppliesTo:  pricing.AppliesTo{JobPosting: true},
		Priority:   10,
		Stackable:  true,
		IsActive:   true,
	})
	mem.SavePromo(pricing.PromotionalCode{
		Code:          "SAVE10",
		DiscountType:  pricing.DiscountFlat,
		DiscountValue: money(10000),
		IsActive:      true,
	})
	orch := newPipeline(t, testConfig(quietTuesday), mem)

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Quantity:  1,
		PromoCode: "SAVE10",
	})
	require.NoError(t, err)

	require.Len(t, b.AppliedRules, 1)
	assertMoney(t, 25000, b.PriceAfterRules)
	assertMoney(t, 15000, b.FinalPrice)
}

func TestPipeline_FinalPriceNeverNegative(t *testing.T) {
	// GIVEN: A flat rule discounting far more than the running price
	// WHEN:  The price is calculated
	// THEN:  The final price clamps to zero

	mem := store.NewMemory()
	mem.SaveRule(pricing.Rule{
		ID:         "firehose",
		Name:       "Firehose Discount",
		Type:       pricing.RuleCategoryPricing,
		Adjustment: pricing.Adjustment{Kind: pricing.AdjustFlat, Value: money(-1000000)},
		AppliesTo:  pricing.AppliesTo{JobPosting: true},
		Priority:   1,
		Stackable:  true,
		IsActive:   true,
	})
	orch := newPipeline(t, testConfig(quietTuesday), mem)

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{Quantity: 1})
	require.NoError(t, err)

	assert.True(t, b.FinalPrice.IsZero(), "got %s", b.FinalPrice)
}

func TestPipeline_QuantityMultipliesSubtotal(t *testing.T) {
	// GIVEN: Ten standard postings bought at once by a new company
	// WHEN:  The price is calculated
	// THEN:  Subtotal is 10 × base and the projected volume of 10 lands
	//        in the 20% tier

	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	b, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{
		Quantity:  10,
		CompanyID: "fresh",
	})
	require.NoError(t, err)

	assertMoney(t, 500000, b.Subtotal)
	assert.Equal(t, "10-24 Jobs (20% off)", b.Volume.Tier.Label)
	assertMoney(t, 400000, b.FinalPrice)
}

func TestPipeline_RejectsNonPositiveQuantity(t *testing.T) {
	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	_, err := orch.CalculateJobPostingPrice(context.Background(), pricing.Request{Quantity: 0})
	assert.ErrorIs(t, err, pricing.ErrInvalidRequest)

	_, err = orch.CalculateJobPostingPrice(context.Background(), pricing.Request{Quantity: -3})
	assert.ErrorIs(t, err, pricing.ErrInvalidRequest)
}

func TestPipeline_Deterministic(t *testing.T) {
	// GIVEN: A pinned clock and unchanged repositories
	// WHEN:  The same request is priced twice
	// THEN:  The breakdowns are identical

	mem := store.NewMemory()
	mem.AddJob("acme", time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC), true)
	mem.SaveRule(pricing.Rule{
		ID:         "weekend-deal",
		Name:       "Weekend Deal",
		Type:       pricing.RuleTimeBased,
		Adjustment: pricing.Adjustment{Kind: pricing.AdjustPercentage, Value: money(-10)},
		AppliesTo:  pricing.AppliesTo{JobPosting: true},
		Priority:   5,
		Stackable:  true,
		IsActive:   true,
	})
	orch := newPipeline(t, testConfig(saturday), mem)

	req := pricing.Request{Category: "Finance", Urgent: true, Quantity: 2, CompanyID: "acme"}
	first, err := orch.CalculateJobPostingPrice(context.Background(), req)
	require.NoError(t, err)
	second, err := orch.CalculateJobPostingPrice(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_InvalidConfigRejectedAtConstruction(t *testing.T) {
	cfg := testConfig(quietTuesday)
	cfg.VolumeTiers = nil

	_, err := pricing.NewOrchestrator(cfg, store.NewMemory(), store.NewMemory(), store.NewMemory(), nil)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfig)
}

// =============================================================================
// PREVIEW TESTS
// =============================================================================

func TestPreview_RunsAllScenariosThroughPipeline(t *testing.T) {
	// GIVEN: The catalog's named scenarios on a quiet Tuesday
	// WHEN:  A preview is requested
	// THEN:  Every scenario prices through the real pipeline

	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	previews, err := orch.Preview(context.Background(), jobposting.PreviewScenarios())
	require.NoError(t, err)
	require.Len(t, previews, 5)

	byID := make(map[string]*pricing.Breakdown)
	for _, p := range previews {
		byID[p.Scenario.ID] = p.Breakdown
	}
	assertMoney(t, 50000, byID["standard"].FinalPrice)
	assertMoney(t, 90000, byID["featured-tech"].FinalPrice)
	assertMoney(t, 80000, byID["urgent"].FinalPrice)
	assertMoney(t, 400000, byID["bulk"].FinalPrice)
}

func TestPreview_PropagatesScenarioFailure(t *testing.T) {
	orch := newPipeline(t, testConfig(quietTuesday), store.NewMemory())

	_, err := orch.Preview(context.Background(), []pricing.Scenario{
		{ID: "broken", Request: pricing.Request{Quantity: 0}},
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidRequest)
}
