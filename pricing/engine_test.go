package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trm/pricing-engine/pricing"
	"github.com/trm/pricing-engine/pricing/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func fixedClock(at time.Time) pricing.Clock {
	return func() time.Time { return at }
}

func newEngine(mem *store.Memory, at time.Time) pricing.DynamicRuleEngine {
	return pricing.DynamicRuleEngine{Rules: mem, Now: fixedClock(at)}
}

func jobContext(price int64) pricing.RuleContext {
	return pricing.RuleContext{
		ServiceType: pricing.ServiceJobPosting,
		Category:    "Technology",
		Quantity:    1,
		Price:       money(price),
	}
}

// flatRule builds an active, stackable flat-adjustment rule.
func flatRule(id pricing.RuleID, priority int, value int64) pricing.Rule {
	return pricing.Rule{
		ID:         id,
		Name:       string(id),
		Type:       pricing.RuleCategoryPricing,
		Adjustment: pricing.Adjustment{Kind: pricing.AdjustFlat, Value: money(value)},
		AppliesTo:  pricing.AppliesTo{JobPosting: true},
		Priority:   priority,
		Stackable:  true,
		IsActive:   true,
	}
}

// failingRules simulates an unreachable rule repository.
type failingRules struct{}

func (failingRules) FindApplicable(context.Context, pricing.RuleQuery) ([]pricing.Rule, error) {
	return nil, errors.New("connection refused")
}

// =============================================================================
// ORDERING TESTS
// =============================================================================

func TestEngine_AppliesInPriorityOrder(t *testing.T) {
	// GIVEN: A priority-10 flat discount and a priority-5 multiplier
	// WHEN:  Both match a 100,000 price
	// THEN:  The flat discount applies first: (100,000 − 10,000) × 0.9

	mem := store.NewMemory()
	mem.SaveRule(flatRule("flat-first", 10, -10000))
	mult := flatRule("mult-second", 5, 0)
	mult.Adjustment = pricing.Adjustment{Kind: pricing.AdjustMultiplier, Value: decimal.RequireFromString("0.9")}
	mem.SaveRule(mult)

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 2)
	assert.Equal(t, pricing.RuleID("flat-first"), outcome.Applied[0].RuleID)
	assert.Equal(t, pricing.RuleID("mult-second"), outcome.Applied[1].RuleID)
	assertMoney(t, 90000, outcome.Applied[0].NewPrice)
	assertMoney(t, 81000, outcome.FinalPrice)
}

func TestEngine_TieBreaksOnCreationTimeThenID(t *testing.T) {
	// GIVEN: Three rules sharing one priority, two sharing a creation time
	// WHEN:  All match
	// THEN:  Evaluation order is creation time ascending, then id

	older := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	mem := store.NewMemory()
	b := flatRule("b-newer", 5, -100)
	b.CreatedAt = newer
	a := flatRule("a-older", 5, -100)
	a.CreatedAt = older
	z := flatRule("z-newer", 5, -100)
	z.CreatedAt = newer
	mem.SaveRule(b)
	mem.SaveRule(z)
	mem.SaveRule(a)

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 3)
	assert.Equal(t, pricing.RuleID("a-older"), outcome.Applied[0].RuleID)
	assert.Equal(t, pricing.RuleID("b-newer"), outcome.Applied[1].RuleID)
	assert.Equal(t, pricing.RuleID("z-newer"), outcome.Applied[2].RuleID)
}

// =============================================================================
// STACKING AND EXCLUSION TESTS
// =============================================================================

func TestEngine_NonStackableHaltsEvaluation(t *testing.T) {
	// GIVEN: A non-stackable high-priority rule above two stackable rules
	// WHEN:  All three match
	// THEN:  Only the non-stackable rule applies

	mem := store.NewMemory()
	ceiling := flatRule("ceiling", 10, -20000)
	ceiling.Stackable = false
	mem.SaveRule(ceiling)
	mem.SaveRule(flatRule("later-1", 5, -5000))
	mem.SaveRule(flatRule("later-2", 1, -5000))

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 1)
	assert.Equal(t, pricing.RuleID("ceiling"), outcome.Applied[0].RuleID)
	assertMoney(t, 80000, outcome.FinalPrice)
}

func TestEngine_MutualExclusionDeclaredByAppliedRule(t *testing.T) {
	// GIVEN: A higher-priority rule listing a lower-priority rule as
	//        exclusive
	// WHEN:  Both match
	// THEN:  The lower-priority rule is skipped

	mem := store.NewMemory()
	first := flatRule("first", 10, -10000)
	first.ExclusiveWith = []pricing.RuleID{"second"}
	mem.SaveRule(first)
	mem.SaveRule(flatRule("second", 5, -10000))
	mem.SaveRule(flatRule("third", 1, -10000))

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 2)
	assert.Equal(t, pricing.RuleID("first"), outcome.Applied[0].RuleID)
	assert.Equal(t, pricing.RuleID("third"), outcome.Applied[1].RuleID)
}

func TestEngine_MutualExclusionDeclaredByCandidate(t *testing.T) {
	// GIVEN: Only the LOWER-priority rule declares the exclusion
	// WHEN:  Both match
	// THEN:  Enforcement is symmetric: the candidate is still skipped

	mem := store.NewMemory()
	mem.SaveRule(flatRule("first", 10, -10000))
	second := flatRule("second", 5, -10000)
	second.ExclusiveWith = []pricing.RuleID{"first"}
	mem.SaveRule(second)

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 1)
	assert.Equal(t, pricing.RuleID("first"), outcome.Applied[0].RuleID)
}

// =============================================================================
// FILTERING TESTS
// =============================================================================

func TestEngine_SkipsInactiveAndExpiredRules(t *testing.T) {
	// GIVEN: An inactive rule, an expired rule, and a not-yet-valid rule
	// WHEN:  The engine runs
	// THEN:  None apply

	past := quietTuesday.Add(-48 * time.Hour)
	future := quietTuesday.Add(48 * time.Hour)

	mem := store.NewMemory()
	inactive := flatRule("inactive", 10, -1000)
	inactive.IsActive = false
	mem.SaveRule(inactive)
	expired := flatRule("expired", 10, -1000)
	expired.ValidUntil = &past
	mem.SaveRule(expired)
	upcoming := flatRule("upcoming", 10, -1000)
	upcoming.ValidFrom = &future
	mem.SaveRule(upcoming)

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	assert.Empty(t, outcome.Applied)
	assertMoney(t, 100000, outcome.FinalPrice)
}

func TestEngine_ConditionsNarrowMatching(t *testing.T) {
	// GIVEN: One rule for Technology, one for Finance, one for bulk orders
	// WHEN:  A single Technology posting is priced
	// THEN:  Only the Technology rule applies

	mem := store.NewMemory()
	tech := flatRule("tech-only", 5, -5000)
	tech.Conditions = []pricing.Condition{{Field: "category", Operator: pricing.OpEquals, Value: "Technology"}}
	mem.SaveRule(tech)
	fin := flatRule("finance-only", 5, -5000)
	fin.Conditions = []pricing.Condition{{Field: "category", Operator: pricing.OpEquals, Value: "Finance"}}
	mem.SaveRule(fin)
	bulk := flatRule("bulk-only", 5, -5000)
	bulk.Conditions = []pricing.Condition{{Field: "quantity", Operator: pricing.OpGreaterOrEqual, Value: float64(10)}}
	mem.SaveRule(bulk)

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 1)
	assert.Equal(t, pricing.RuleID("tech-only"), outcome.Applied[0].RuleID)
}

func TestEngine_TimeWindowRestrictsWeekdays(t *testing.T) {
	// GIVEN: A rule limited to Saturdays
	// WHEN:  The engine runs on a Tuesday and then on a Saturday
	// THEN:  It applies only on the Saturday

	mem := store.NewMemory()
	weekend := flatRule("weekend-only", 5, -5000)
	weekend.TimeWindow = &pricing.TimeWindow{DaysOfWeek: []time.Weekday{time.Saturday}}
	mem.SaveRule(weekend)

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)
	assert.Empty(t, outcome.Applied)

	outcome, err = newEngine(mem, saturday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)
	assert.Len(t, outcome.Applied, 1)
}

// =============================================================================
// FAILURE POLICY TESTS
// =============================================================================

func TestEngine_MalformedRuleIsSkippedNotFatal(t *testing.T) {
	// GIVEN: A rule with an unknown condition field next to a healthy rule
	// WHEN:  The engine runs
	// THEN:  The malformed rule is skipped and the healthy rule applies

	mem := store.NewMemory()
	broken := flatRule("broken", 10, -50000)
	broken.Conditions = []pricing.Condition{{Field: "moon_phase", Operator: pricing.OpEquals, Value: "full"}}
	mem.SaveRule(broken)
	mem.SaveRule(flatRule("healthy", 5, -5000))

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 1)
	assert.Equal(t, pricing.RuleID("healthy"), outcome.Applied[0].RuleID)
	assertMoney(t, 95000, outcome.FinalPrice)
}

func TestEngine_UnknownAdjustmentKindIsSkipped(t *testing.T) {
	mem := store.NewMemory()
	broken := flatRule("broken", 10, 0)
	broken.Adjustment = pricing.Adjustment{Kind: "teleport", Value: money(1)}
	mem.SaveRule(broken)
	mem.SaveRule(flatRule("healthy", 5, -5000))

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	require.Len(t, outcome.Applied, 1)
	assert.Equal(t, pricing.RuleID("healthy"), outcome.Applied[0].RuleID)
}

func TestEngine_RepositoryFailureFailsClosed(t *testing.T) {
	// GIVEN: An unreachable rule repository
	// WHEN:  The engine runs
	// THEN:  The whole calculation fails with a repository error; no partial
	//        price is produced

	engine := pricing.DynamicRuleEngine{Rules: failingRules{}, Now: fixedClock(quietTuesday)}

	_, err := engine.Apply(context.Background(), jobContext(100000))
	assert.ErrorIs(t, err, pricing.ErrRepositoryUnavailable)
	assert.True(t, pricing.IsInfrastructure(err))
}

func TestEngine_RunningPriceClampsAtZero(t *testing.T) {
	mem := store.NewMemory()
	mem.SaveRule(flatRule("deep-discount", 5, -500000))

	outcome, err := newEngine(mem, quietTuesday).Apply(context.Background(), jobContext(100000))
	require.NoError(t, err)

	assert.True(t, outcome.FinalPrice.IsZero())
}
