/*
Package factory provides JSON to Go pricing-rule conversion.

PURPOSE:
  Converts JSON rule and promotional-code definitions into pricing.Rule
  and pricing.PromotionalCode values. This is what lets non-engineering
  staff configure promotions and surges without code changes: admins
  submit JSON, the factory validates it, and the database stores it.

JSON SCHEMA (rule):
  {
    "id": "weekend-promo",
    "name": "Weekend Promo",
    "rule_type": "time_based",
    "conditions": [
      {"field": "category", "operator": "equals", "value": "Technology"}
    ],
    "time_window": {"days_of_week": ["saturday", "sunday"], "timezone": "Asia/Jakarta"},
    "adjustment": {"kind": "percentage", "value": -15},
    "applies_to": {"job_posting": true},
    "priority": 10,
    "stackable": true,
    "exclusive_with": ["other-promo"],
    "is_active": true,
    "valid_from": "2026-01-01T00:00:00Z",
    "valid_until": "2026-12-31T23:59:59Z"
  }

KEY FEATURES:
  - Validates adjustment kinds, operators, and discount types up front so
    malformed definitions are rejected at configuration time rather than
    skipped at calculation time
  - Sets sensible defaults (active true, stackable true)
  - Round-trips: ToJSON(FromJSON(x)) preserves the definition

SEE ALSO:
  - pricing/rule.go: Rule type definition
  - store/sqlite/sqlite.go: Persists the JSON definitions
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trm/pricing-engine/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a pricing rule.
type RuleJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	RuleType      string          `json:"rule_type"`
	Conditions    []ConditionJSON `json:"conditions,omitempty"`
	TimeWindow    *TimeWindowJSON `json:"time_window,omitempty"`
	Adjustment    AdjustmentJSON  `json:"adjustment"`
	AppliesTo     AppliesToJSON   `json:"applies_to"`
	Priority      int             `json:"priority"`
	Stackable     *bool           `json:"stackable,omitempty"` // default true
	ExclusiveWith []string        `json:"exclusive_with,omitempty"`
	IsActive      *bool           `json:"is_active,omitempty"` // default true
	ValidFrom     string          `json:"valid_from,omitempty"`
	ValidUntil    string          `json:"valid_until,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// ConditionJSON is one {field, operator, value} predicate.
type ConditionJSON struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// TimeWindowJSON restricts a rule to local weekdays.
type TimeWindowJSON struct {
	DaysOfWeek []string `json:"days_of_week"`
	Timezone   string   `json:"timezone,omitempty"`
}

// AdjustmentJSON carries the adjustment kind and its numeric parameter.
type AdjustmentJSON struct {
	Kind  string          `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// AppliesToJSON flags the product types a rule covers.
type AppliesToJSON struct {
	JobPosting      bool `json:"job_posting"`
	FeaturedListing bool `json:"featured_listing,omitempty"`
	UrgentListing   bool `json:"urgent_listing,omitempty"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// Factory converts JSON definitions into pricing types.
type Factory struct{}

func New() *Factory { return &Factory{} }

// ParseRule parses a JSON string into a pricing.Rule.
func (f *Factory) ParseRule(jsonStr string) (*pricing.Rule, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.RuleFromJSON(rj)
}

// RuleFromJSON converts RuleJSON to a pricing.Rule, validating everything
// the engine would otherwise have to skip at calculation time.
func (f *Factory) RuleFromJSON(rj RuleJSON) (*pricing.Rule, error) {
	if rj.ID == "" {
		return nil, fmt.Errorf("rule id is required")
	}
	if rj.Name == "" {
		return nil, fmt.Errorf("rule %s: name is required", rj.ID)
	}

	kind, err := parseAdjustmentKind(rj.Adjustment.Kind)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rj.ID, err)
	}

	rule := &pricing.Rule{
		ID:   pricing.RuleID(rj.ID),
		Name: rj.Name,
		Type: pricing.RuleType(rj.RuleType),
		Adjustment: pricing.Adjustment{
			Kind:  kind,
			Value: rj.Adjustment.Value,
		},
		AppliesTo: pricing.AppliesTo{
			JobPosting:      rj.AppliesTo.JobPosting,
			FeaturedListing: rj.AppliesTo.FeaturedListing,
			UrgentListing:   rj.AppliesTo.UrgentListing,
		},
		Priority:  rj.Priority,
		Stackable: rj.Stackable == nil || *rj.Stackable,
		IsActive:  rj.IsActive == nil || *rj.IsActive,
	}

	for _, c := range rj.Conditions {
		op, err := parseOperator(c.Operator)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rj.ID, err)
		}
		rule.Conditions = append(rule.Conditions, pricing.Condition{
			Field:    c.Field,
			Operator: op,
			Value:    c.Value,
		})
	}

	if rj.TimeWindow != nil {
		window, err := parseTimeWindow(*rj.TimeWindow)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rj.ID, err)
		}
		rule.TimeWindow = window
	}

	for _, id := range rj.ExclusiveWith {
		rule.ExclusiveWith = append(rule.ExclusiveWith, pricing.RuleID(id))
	}

	if rule.ValidFrom, err = parseTimePtr(rj.ValidFrom); err != nil {
		return nil, fmt.Errorf("rule %s: valid_from: %w", rj.ID, err)
	}
	if rule.ValidUntil, err = parseTimePtr(rj.ValidUntil); err != nil {
		return nil, fmt.Errorf("rule %s: valid_until: %w", rj.ID, err)
	}
	if rj.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, rj.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rule %s: created_at: %w", rj.ID, err)
		}
		rule.CreatedAt = created
	}

	return rule, nil
}

// RuleToJSON converts a pricing.Rule back into its JSON definition.
func (f *Factory) RuleToJSON(rule pricing.Rule) RuleJSON {
	rj := RuleJSON{
		ID:       string(rule.ID),
		Name:     rule.Name,
		RuleType: string(rule.Type),
		Adjustment: AdjustmentJSON{
			Kind:  string(rule.Adjustment.Kind),
			Value: rule.Adjustment.Value,
		},
		AppliesTo: AppliesToJSON{
			JobPosting:      rule.AppliesTo.JobPosting,
			FeaturedListing: rule.AppliesTo.FeaturedListing,
			UrgentListing:   rule.AppliesTo.UrgentListing,
		},
		Priority:  rule.Priority,
		Stackable: &rule.Stackable,
		IsActive:  &rule.IsActive,
	}
	for _, c := range rule.Conditions {
		rj.Conditions = append(rj.Conditions, ConditionJSON{Field: c.Field, Operator: string(c.Operator), Value: c.Value})
	}
	if rule.TimeWindow != nil {
		tw := TimeWindowJSON{}
		for _, d := range rule.TimeWindow.DaysOfWeek {
			tw.DaysOfWeek = append(tw.DaysOfWeek, strings.ToLower(d.String()))
		}
		if rule.TimeWindow.Timezone != nil {
			tw.Timezone = rule.TimeWindow.Timezone.String()
		}
		rj.TimeWindow = &tw
	}
	for _, id := range rule.ExclusiveWith {
		rj.ExclusiveWith = append(rj.ExclusiveWith, string(id))
	}
	if rule.ValidFrom != nil {
		rj.ValidFrom = rule.ValidFrom.Format(time.RFC3339)
	}
	if rule.ValidUntil != nil {
		rj.ValidUntil = rule.ValidUntil.Format(time.RFC3339)
	}
	if !rule.CreatedAt.IsZero() {
		rj.CreatedAt = rule.CreatedAt.Format(time.RFC3339)
	}
	return rj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseAdjustmentKind(s string) (pricing.AdjustmentKind, error) {
	switch pricing.AdjustmentKind(s) {
	case pricing.AdjustMultiplier, pricing.AdjustPercentage, pricing.AdjustFlat:
		return pricing.AdjustmentKind(s), nil
	default:
		return "", fmt.Errorf("unknown adjustment kind %q", s)
	}
}

func parseOperator(s string) (pricing.Operator, error) {
	switch pricing.Operator(s) {
	case pricing.OpEquals, pricing.OpNotEquals, pricing.OpGreaterThan,
		pricing.OpGreaterOrEqual, pricing.OpLessThan, pricing.OpLessOrEqual, pricing.OpIn:
		return pricing.Operator(s), nil
	default:
		return "", fmt.Errorf("unknown operator %q", s)
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseTimeWindow(tw TimeWindowJSON) (*pricing.TimeWindow, error) {
	window := &pricing.TimeWindow{}
	for _, name := range tw.DaysOfWeek {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		window.DaysOfWeek = append(window.DaysOfWeek, wd)
	}
	if tw.Timezone != "" {
		loc, err := time.LoadLocation(tw.Timezone)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", tw.Timezone)
		}
		window.Timezone = loc
	}
	return window, nil
}

func parseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
