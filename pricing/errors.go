/*
errors.go - Centralized error types for the pricing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (api, billing) wrap these with transport-level context.

ERROR CATEGORIES:
  1. Configuration misses (unknown category, missing tier) are NOT errors:
     they resolve to safe defaults inside the pipeline.
  2. Rule-level faults (a malformed or unevaluable rule) are logged and
     the single rule is skipped; the calculation continues.
  3. Promotional-code business failures are returned as a structured list
     of reasons inside PromoResult, never as Go errors.
  4. Infrastructure failures (repository unreachable) propagate as errors:
     pricing without authoritative rule/usage data is unsafe to trust.

USAGE:
  if errors.Is(err, pricing.ErrRepositoryUnavailable) {
      // surface "pricing unavailable, try again"
  }
*/
package pricing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRequest is returned when the request itself is malformed
	// (e.g. non-positive quantity).
	ErrInvalidRequest = errors.New("invalid pricing request")

	// ErrInvalidConfig is returned when the static configuration violates
	// a structural invariant (gapped volume tiers, missing clock).
	ErrInvalidConfig = errors.New("invalid pricing configuration")

	// ErrRepositoryUnavailable wraps repository-level failures. The whole
	// calculation fails closed when rule or usage data cannot be read.
	ErrRepositoryUnavailable = errors.New("pricing repository unavailable")

	// ErrRuleNotFound is returned by repositories when a rule id is unknown.
	ErrRuleNotFound = errors.New("pricing rule not found")

	// ErrPromoNotFound is returned by repositories when a code is unknown.
	// The validator turns this into the "Invalid promotional code" business
	// failure rather than propagating it.
	ErrPromoNotFound = errors.New("promotional code not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedRuleError describes a single unevaluable rule. It is logged and
// the rule is skipped; it never aborts a calculation.
type MalformedRuleError struct {
	RuleID RuleID
	Reason string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed pricing rule %s: %s", e.RuleID, e.Reason)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound) || errors.Is(err, ErrPromoNotFound)
}

// IsInfrastructure returns true if the error means pricing data could not
// be read and the calculation should surface as temporarily unavailable.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrRepositoryUnavailable)
}
