/*
repos.go - Repository interfaces consumed by the pricing engine

PURPOSE:
  Defines the three read-only collaborators the engine depends on. The
  engine owns no persisted state; implementations live in store/sqlite
  (production) and pricing/store (in-memory, for tests and dev).

CONSISTENCY NOTES (documented behavior, not bugs to patch here):
  - Job counts are point-in-time reads. Two concurrent postings by the
    same company both read the same "jobs this month" count and may both
    price at the same volume tier.
  - Promotional-code usage counters are not updated atomically with
    validation. Two near-simultaneous redemptions near a cap can both be
    accepted. Stricter guarantees belong in the persistence layer
    (optimistic versioning or a reservation step), not in this pure
    calculation core.

SEE ALSO:
  - pricing/store/memory.go: In-memory implementations
  - store/sqlite/sqlite.go: Production implementation
*/
package pricing

import (
	"context"
	"time"
)

// =============================================================================
// JOB REPOSITORY - Posting counts for volume discounts
// =============================================================================

// JobRepository counts a company's postings. Read-only from the engine's
// perspective.
type JobRepository interface {
	// CountActiveSince returns the number of active or published postings
	// the company created at or after the given instant.
	CountActiveSince(ctx context.Context, companyID CompanyID, since time.Time) (int, error)
}

// =============================================================================
// PRICING RULE REPOSITORY - Administrator-configured rules
// =============================================================================

// RuleQuery narrows the candidate rule set fetched for one calculation.
// The engine still evaluates each candidate's conditions and time window;
// the repository only pre-filters on service type, active flag, and
// validity window.
type RuleQuery struct {
	ServiceType ServiceType
	At          time.Time
}

// PricingRuleRepository loads administrator-configured rules.
type PricingRuleRepository interface {
	// FindApplicable returns active rules whose appliesTo flags include
	// the queried service type and whose validity window contains At.
	// Order is unspecified; the engine sorts deterministically.
	FindApplicable(ctx context.Context, q RuleQuery) ([]Rule, error)
}

// =============================================================================
// PROMOTIONAL CODE REPOSITORY - Code lookup and usage counts
// =============================================================================

// PromotionalCodeRepository looks up promotional codes and their usage.
type PromotionalCodeRepository interface {
	// FindByCode returns the record for a code, matched case-insensitively.
	// Returns ErrPromoNotFound when the code is unknown.
	FindByCode(ctx context.Context, code string) (*PromotionalCode, error)

	// CountRedemptions returns (total, byUser) redemption counts for a
	// code. byUser is zero when userID is empty.
	CountRedemptions(ctx context.Context, code string, userID UserID) (total int, byUser int, err error)
}
