/*
rule.go - Administrator-configured pricing rules

PURPOSE:
  Defines the rule model that lets non-engineering staff configure
  promotions and surges without code changes: condition matching, time
  windows, priority, stacking, and mutual exclusion.

KEY CONCEPTS:
  - Adjustment: A closed tagged variant (kind + value) so the compiler
    enforces exhaustive handling when new adjustment kinds are added
  - Condition: A {field, operator, value} predicate over the request
  - TimeWindow: Optional day-of-week restriction in a rule's own timezone
  - Stackable: A non-stackable rule halts all further rule evaluation

SEE ALSO:
  - engine.go: Applies rules in priority order
  - factory/rule.go: JSON definitions for these rules
*/
package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ADJUSTMENT - Closed tagged variant
// =============================================================================

// AdjustmentKind identifies how an adjustment value is interpreted.
type AdjustmentKind string

const (
	// AdjustMultiplier: price × value
	AdjustMultiplier AdjustmentKind = "multiplier"
	// AdjustPercentage: price × (1 + value/100); negative values discount
	AdjustPercentage AdjustmentKind = "percentage"
	// AdjustFlat: price + value; negative values discount
	AdjustFlat AdjustmentKind = "flat"
)

// Adjustment carries an adjustment kind with its numeric parameter.
type Adjustment struct {
	Kind  AdjustmentKind  `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Apply computes the adjusted price. Unknown kinds are a malformed-rule
// fault, reported as an error so the engine can skip the rule.
func (a Adjustment) Apply(price decimal.Decimal) (decimal.Decimal, error) {
	switch a.Kind {
	case AdjustMultiplier:
		return RoundMoney(price.Mul(a.Value)), nil
	case AdjustPercentage:
		factor := decimal.NewFromInt(1).Add(a.Value.Div(decimal.NewFromInt(100)))
		return RoundMoney(price.Mul(factor)), nil
	case AdjustFlat:
		return RoundMoney(price.Add(a.Value)), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown adjustment kind %q", a.Kind)
	}
}

// =============================================================================
// CONDITIONS - Predicates over the pricing context
// =============================================================================

// Operator is a condition comparison operator.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not_equals"
	OpGreaterThan    Operator = "greater_than"
	OpGreaterOrEqual Operator = "greater_or_equal"
	OpLessThan       Operator = "less_than"
	OpLessOrEqual    Operator = "less_or_equal"
	OpIn             Operator = "in"
)

// Condition is one {field, operator, value} predicate. Values arrive from
// JSON, so numbers are float64 and lists are []any.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// RuleContext is the view of a calculation that rules match against.
type RuleContext struct {
	ServiceType ServiceType
	Category    string
	Urgent      bool
	Featured    bool
	CompanyID   CompanyID
	Quantity    int
	Price       decimal.Decimal // running price entering the rule stage
}

// Evaluate checks the condition against the context. An unknown field or
// operator is a malformed-rule fault reported as an error.
func (c Condition) Evaluate(ctx RuleContext) (bool, error) {
	switch c.Field {
	case "category":
		return compareString(ctx.Category, c.Operator, c.Value)
	case "company_id":
		return compareString(string(ctx.CompanyID), c.Operator, c.Value)
	case "is_urgent":
		return compareBool(ctx.Urgent, c.Operator, c.Value)
	case "is_featured":
		return compareBool(ctx.Featured, c.Operator, c.Value)
	case "quantity":
		return compareDecimal(decimal.NewFromInt(int64(ctx.Quantity)), c.Operator, c.Value)
	case "price":
		return compareDecimal(ctx.Price, c.Operator, c.Value)
	default:
		return false, fmt.Errorf("unknown condition field %q", c.Field)
	}
}

func compareString(actual string, op Operator, value any) (bool, error) {
	switch op {
	case OpEquals, OpNotEquals:
		expected, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("operator %q needs a string value", op)
		}
		if op == OpEquals {
			return actual == expected, nil
		}
		return actual != expected, nil
	case OpIn:
		list, ok := value.([]any)
		if !ok {
			return false, fmt.Errorf("operator %q needs a list value", op)
		}
		for _, item := range list {
			if s, ok := item.(string); ok && s == actual {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("operator %q not valid for strings", op)
	}
}

func compareBool(actual bool, op Operator, value any) (bool, error) {
	expected, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("operator %q needs a boolean value", op)
	}
	switch op {
	case OpEquals:
		return actual == expected, nil
	case OpNotEquals:
		return actual != expected, nil
	default:
		return false, fmt.Errorf("operator %q not valid for booleans", op)
	}
}

func compareDecimal(actual decimal.Decimal, op Operator, value any) (bool, error) {
	expected, err := toDecimal(value)
	if err != nil {
		return false, err
	}
	switch op {
	case OpEquals:
		return actual.Equal(expected), nil
	case OpNotEquals:
		return !actual.Equal(expected), nil
	case OpGreaterThan:
		return actual.GreaterThan(expected), nil
	case OpGreaterOrEqual:
		return actual.GreaterThanOrEqual(expected), nil
	case OpLessThan:
		return actual.LessThan(expected), nil
	case OpLessOrEqual:
		return actual.LessThanOrEqual(expected), nil
	default:
		return false, fmt.Errorf("operator %q not valid for numbers", op)
	}
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("not a numeric value: %q", v)
		}
		return d, nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("not a numeric value: %T", value)
	}
}

// =============================================================================
// TIME WINDOW - Day-of-week restriction
// =============================================================================

// TimeWindow restricts a rule to certain local weekdays.
type TimeWindow struct {
	DaysOfWeek []time.Weekday `json:"days_of_week"`
	Timezone   *time.Location `json:"-"`
}

// Contains reports whether the instant falls inside the window.
func (w TimeWindow) Contains(at time.Time) bool {
	loc := w.Timezone
	if loc == nil {
		loc = time.UTC
	}
	wd := at.In(loc).Weekday()
	for _, d := range w.DaysOfWeek {
		if d == wd {
			return true
		}
	}
	return len(w.DaysOfWeek) == 0
}

// =============================================================================
// RULE - One administrator-configured pricing rule
// =============================================================================

// RuleType categorizes a rule for administration purposes. The engine
// treats all types uniformly; the type is informational.
type RuleType string

const (
	RuleSurgePricing    RuleType = "surge_pricing"
	RuleCategoryPricing RuleType = "category_pricing"
	RuleTimeBased       RuleType = "time_based"
	RuleVolumeDiscount  RuleType = "volume_discount"
)

// AppliesTo flags which product types a rule covers.
type AppliesTo struct {
	JobPosting      bool `json:"job_posting"`
	FeaturedListing bool `json:"featured_listing"`
	UrgentListing   bool `json:"urgent_listing"`
}

// Covers reports whether the flags include the given service type.
func (a AppliesTo) Covers(st ServiceType) bool {
	switch st {
	case ServiceJobPosting:
		return a.JobPosting
	case ServiceFeatured:
		return a.FeaturedListing
	case ServiceUrgent:
		return a.UrgentListing
	default:
		return false
	}
}

// Rule is one administrator-configured pricing rule.
type Rule struct {
	ID         RuleID
	Name       string
	Type       RuleType
	Conditions []Condition
	TimeWindow *TimeWindow
	Adjustment Adjustment
	AppliesTo  AppliesTo

	// Priority: higher is evaluated first. Ties break on (CreatedAt, ID)
	// so evaluation order never depends on storage order.
	Priority int

	// Stackable: false halts ALL further rule evaluation once applied,
	// a deliberate promotion ceiling.
	Stackable bool

	// ExclusiveWith lists rule ids that must never be jointly applied
	// with this rule in one calculation.
	ExclusiveWith []RuleID

	IsActive   bool
	ValidFrom  *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
}

// ActiveAt reports whether the rule is active and inside its validity
// window at the given instant.
func (r Rule) ActiveAt(at time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.ValidFrom != nil && at.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && at.After(*r.ValidUntil) {
		return false
	}
	return true
}

// Matches evaluates the rule's time window and every condition against
// the context. A condition error marks the rule malformed.
func (r Rule) Matches(ctx RuleContext, at time.Time) (bool, error) {
	if r.TimeWindow != nil && !r.TimeWindow.Contains(at) {
		return false, nil
	}
	for _, cond := range r.Conditions {
		ok, err := cond.Evaluate(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// SortRules orders rules by priority descending, then creation time
// ascending, then id ascending. The secondary keys make evaluation order
// reproducible when priorities tie.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID < rules[j].ID
	})
}
