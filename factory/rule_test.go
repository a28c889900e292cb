package factory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trm/pricing-engine/factory"
	"github.com/trm/pricing-engine/pricing"
)

// =============================================================================
// RULE PARSING TESTS
// =============================================================================

func TestParseRule_FullDefinition(t *testing.T) {
	// GIVEN: A complete JSON rule definition
	// WHEN:  It parses
	// THEN:  Every field lands on the pricing.Rule

	jsonStr := `{
		"id": "weekend-promo",
		"name": "Weekend Promo",
		"rule_type": "time_based",
		"conditions": [
			{"field": "category", "operator": "equals", "value": "Technology"},
			{"field": "quantity", "operator": "greater_or_equal", "value": 5}
		],
		"time_window": {"days_of_week": ["saturday", "sunday"], "timezone": "Asia/Jakarta"},
		"adjustment": {"kind": "percentage", "value": -15},
		"applies_to": {"job_posting": true, "featured_listing": true},
		"priority": 10,
		"stackable": false,
		"exclusive_with": ["other-promo"],
		"valid_from": "2026-01-01T00:00:00Z",
		"valid_until": "2026-12-31T23:59:59Z"
	}`

	rule, err := factory.New().ParseRule(jsonStr)
	require.NoError(t, err)

	assert.Equal(t, pricing.RuleID("weekend-promo"), rule.ID)
	assert.Equal(t, pricing.RuleTimeBased, rule.Type)
	require.Len(t, rule.Conditions, 2)
	assert.Equal(t, pricing.OpEquals, rule.Conditions[0].Operator)
	require.NotNil(t, rule.TimeWindow)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, rule.TimeWindow.DaysOfWeek)
	require.NotNil(t, rule.TimeWindow.Timezone)
	assert.Equal(t, "Asia/Jakarta", rule.TimeWindow.Timezone.String())
	assert.Equal(t, pricing.AdjustPercentage, rule.Adjustment.Kind)
	assert.True(t, rule.Adjustment.Value.Equal(decimal.NewFromInt(-15)))
	assert.True(t, rule.AppliesTo.JobPosting)
	assert.True(t, rule.AppliesTo.FeaturedListing)
	assert.Equal(t, 10, rule.Priority)
	assert.False(t, rule.Stackable)
	assert.Equal(t, []pricing.RuleID{"other-promo"}, rule.ExclusiveWith)
	assert.True(t, rule.IsActive, "is_active defaults to true when omitted")
	require.NotNil(t, rule.ValidFrom)
	assert.Equal(t, 2026, rule.ValidFrom.Year())
}

func TestParseRule_DefaultsStackableAndActive(t *testing.T) {
	rule, err := factory.New().ParseRule(`{
		"id": "minimal",
		"name": "Minimal",
		"adjustment": {"kind": "flat", "value": -5000},
		"applies_to": {"job_posting": true}
	}`)
	require.NoError(t, err)

	assert.True(t, rule.Stackable)
	assert.True(t, rule.IsActive)
	assert.Nil(t, rule.ValidFrom)
	assert.Nil(t, rule.ValidUntil)
}

func TestParseRule_RejectsMalformedDefinitions(t *testing.T) {
	// GIVEN: Definitions the engine would have to skip at calculation time
	// WHEN:  They parse
	// THEN:  The factory rejects them up front

	cases := []struct {
		name    string
		jsonStr string
	}{
		{"missing id", `{"name": "X", "adjustment": {"kind": "flat", "value": 1}}`},
		{"missing name", `{"id": "x", "adjustment": {"kind": "flat", "value": 1}}`},
		{"unknown adjustment kind", `{"id": "x", "name": "X", "adjustment": {"kind": "teleport", "value": 1}}`},
		{"unknown operator", `{"id": "x", "name": "X", "adjustment": {"kind": "flat", "value": 1},
			"conditions": [{"field": "category", "operator": "resembles", "value": "Tech"}]}`},
		{"unknown weekday", `{"id": "x", "name": "X", "adjustment": {"kind": "flat", "value": 1},
			"time_window": {"days_of_week": ["caturday"]}}`},
		{"unknown timezone", `{"id": "x", "name": "X", "adjustment": {"kind": "flat", "value": 1},
			"time_window": {"days_of_week": ["monday"], "timezone": "Mars/Olympus"}}`},
		{"bad valid_from", `{"id": "x", "name": "X", "adjustment": {"kind": "flat", "value": 1},
			"valid_from": "tomorrow"}`},
		{"not json", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.New().ParseRule(tc.jsonStr)
			assert.Error(t, err)
		})
	}
}

func TestRuleJSON_RoundTrip(t *testing.T) {
	// GIVEN: A parsed rule
	// WHEN:  It converts back to JSON form and parses again
	// THEN:  The rule survives unchanged

	f := factory.New()
	original, err := f.ParseRule(`{
		"id": "round-trip",
		"name": "Round Trip",
		"rule_type": "surge_pricing",
		"conditions": [{"field": "is_urgent", "operator": "equals", "value": true}],
		"time_window": {"days_of_week": ["friday"], "timezone": "Asia/Jakarta"},
		"adjustment": {"kind": "multiplier", "value": 1.25},
		"applies_to": {"job_posting": true},
		"priority": 3,
		"stackable": false,
		"exclusive_with": ["a", "b"],
		"valid_until": "2026-06-30T00:00:00Z",
		"created_at": "2026-01-15T08:00:00Z"
	}`)
	require.NoError(t, err)

	reparsed, err := f.RuleFromJSON(f.RuleToJSON(*original))
	require.NoError(t, err)

	assert.Equal(t, original, reparsed)
}
