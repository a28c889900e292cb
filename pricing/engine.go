/*
engine.go - Ordered evaluation of administrator-configured rules

PURPOSE:
  Applies the rules fetched for one calculation in priority order,
  honoring stacking and mutual-exclusion semantics, and produces the
  ordered audit trail of every rule that fired.

ALGORITHM:
  1. Fetch candidate rules (active, correct product, inside validity
     window) from the repository.
  2. Evaluate each candidate's conditions and time window; drop
     non-matches, log and skip malformed rules.
  3. Sort by priority descending; ties break on (CreatedAt, ID).
  4. Walk the sorted list with a running price:
     - Skip a candidate excluded by any already-applied rule. Exclusion
       is enforced in BOTH directions: the applied rule's ExclusiveWith
       list and the candidate's own list are consulted.
     - Apply the adjustment, record the before/after prices.
     - A non-stackable rule halts the walk entirely.
  5. Clamp the result at zero.

FAILURE POLICY:
  A malformed individual rule is logged and skipped (fail-open per rule).
  A repository failure propagates (fail-closed for the calculation):
  pricing without rule data is unsafe to trust.
*/
package pricing

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DYNAMIC RULE ENGINE
// =============================================================================

// RuleOutcome is the result of the rule stage.
type RuleOutcome struct {
	FinalPrice decimal.Decimal
	Applied    []AppliedRule
}

// DynamicRuleEngine evaluates administrator-configured rules.
type DynamicRuleEngine struct {
	Rules  PricingRuleRepository
	Now    Clock
	Logger *log.Logger
}

// Apply runs the rule stage over the running price.
func (e DynamicRuleEngine) Apply(ctx context.Context, rctx RuleContext) (RuleOutcome, error) {
	now := e.Now()

	candidates, err := e.Rules.FindApplicable(ctx, RuleQuery{ServiceType: rctx.ServiceType, At: now})
	if err != nil {
		return RuleOutcome{}, fmt.Errorf("%w: fetching rules: %v", ErrRepositoryUnavailable, err)
	}

	var matched []Rule
	for _, rule := range candidates {
		if !rule.ActiveAt(now) || !rule.AppliesTo.Covers(rctx.ServiceType) {
			continue
		}
		ok, err := rule.Matches(rctx, now)
		if err != nil {
			e.logf("skipping rule: %v", &MalformedRuleError{RuleID: rule.ID, Reason: err.Error()})
			continue
		}
		if ok {
			matched = append(matched, rule)
		}
	}

	SortRules(matched)

	price := rctx.Price
	applied := make(map[RuleID]Rule)
	outcome := RuleOutcome{}

	for _, rule := range matched {
		if excludedBy(rule, applied) {
			continue
		}

		newPrice, err := rule.Adjustment.Apply(price)
		if err != nil {
			e.logf("skipping rule: %v", &MalformedRuleError{RuleID: rule.ID, Reason: err.Error()})
			continue
		}

		outcome.Applied = append(outcome.Applied, AppliedRule{
			RuleID:         rule.ID,
			Name:           rule.Name,
			AdjustmentKind: rule.Adjustment.Kind,
			Amount:         newPrice.Sub(price),
			PreviousPrice:  price,
			NewPrice:       newPrice,
		})
		applied[rule.ID] = rule
		price = newPrice

		// Promotion ceiling: a non-stackable rule ends evaluation for
		// every remaining rule, related or not.
		if !rule.Stackable {
			break
		}
	}

	outcome.FinalPrice = ClampNonNegative(price)
	return outcome, nil
}

// excludedBy reports whether the candidate conflicts with any applied
// rule. Both directions are checked, so two rules listing each other can
// never jointly apply regardless of which side declared the exclusion.
func excludedBy(candidate Rule, applied map[RuleID]Rule) bool {
	for id, rule := range applied {
		for _, excluded := range rule.ExclusiveWith {
			if excluded == candidate.ID {
				return true
			}
		}
		for _, excluded := range candidate.ExclusiveWith {
			if excluded == id {
				return true
			}
		}
	}
	return false
}

func (e DynamicRuleEngine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}
