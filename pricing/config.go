/*
config.go - Injected, versioned pricing configuration

PURPOSE:
  Bundles every static pricing table into one immutable value that is
  injected into the engine at construction time. Nothing in this package
  hard-codes a price: tests substitute fixed calendars, clocks, and tier
  tables, and the concrete marketplace catalog lives in the jobposting
  package.

KEY CONCEPTS:
  - CategoryTier: Demand classification with a price multiplier
  - VolumeTier: A [min,max] job-count range mapped to a discount rate
  - SurgeMultipliers: Independent multiplicative surge factors
  - Clock: Injectable time source for deterministic calculations

INVARIANTS:
  - Volume tiers are ordered, gapless, and mutually exclusive: exactly one
    tier matches any non-negative job count. Validate() enforces this.
  - Category lookup never fails: unknown categories resolve to the
    standard tier with multiplier 1.0.

SEE ALSO:
  - jobposting/catalog.go: The concrete marketplace configuration
  - calendar.go: Holiday calendar injected alongside this config
*/
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY TIERS
// =============================================================================

// TierLabel classifies a category's demand band.
type TierLabel string

const (
	TierHighDemand TierLabel = "high_demand"
	TierPremium    TierLabel = "premium"
	TierStandard   TierLabel = "standard"
)

// CategoryTier is the pricing classification of one job category.
type CategoryTier struct {
	Multiplier decimal.Decimal `json:"multiplier"`
	Label      TierLabel       `json:"label"`
}

// StandardTier is the safe default for unknown categories.
func StandardTier() CategoryTier {
	return CategoryTier{Multiplier: decimal.NewFromInt(1), Label: TierStandard}
}

// =============================================================================
// VOLUME TIERS
// =============================================================================

// VolumeTier maps a job-count range to a discount rate.
// MaxJobs == nil means the range is unbounded above.
type VolumeTier struct {
	MinJobs      int             `json:"min_jobs"`
	MaxJobs      *int            `json:"max_jobs,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate"` // in [0,1)
	Label        string          `json:"label"`
}

// Contains reports whether the tier's range covers the given job count.
func (t VolumeTier) Contains(jobs int) bool {
	if jobs < t.MinJobs {
		return false
	}
	return t.MaxJobs == nil || jobs <= *t.MaxJobs
}

// =============================================================================
// SURGE MULTIPLIERS
// =============================================================================

// SurgeMultipliers holds the independent multiplicative surge factors.
// Each factor triggers on its own; the total is the product of those
// triggered, never a sum.
type SurgeMultipliers struct {
	Urgency            decimal.Decimal `json:"urgency"`
	Weekend            decimal.Decimal `json:"weekend"`
	Holiday            decimal.Decimal `json:"holiday"`
	HighDemandCategory decimal.Decimal `json:"high_demand_category"`
}

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

// Clock returns the current instant. Production uses time.Now; tests pin
// a fixed instant for deterministic calendars and validity windows.
type Clock func() time.Time

// =============================================================================
// CONFIG - The complete static pricing configuration
// =============================================================================

// Config is the process-wide static pricing configuration, loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	Currency          string
	BasePrice         decimal.Decimal
	FeaturedSurcharge decimal.Decimal
	UrgentSurcharge   decimal.Decimal

	CategoryTiers map[string]CategoryTier
	VolumeTiers   []VolumeTier
	Surge         SurgeMultipliers

	Timezone *time.Location
	Holidays HolidayCalendar
	Now      Clock
}

// Validate checks the structural invariants the pipeline relies on.
func (c Config) Validate() error {
	if c.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base price must be non-negative", ErrInvalidConfig)
	}
	if c.Timezone == nil {
		return fmt.Errorf("%w: timezone is required", ErrInvalidConfig)
	}
	if c.Now == nil {
		return fmt.Errorf("%w: clock is required", ErrInvalidConfig)
	}
	if len(c.VolumeTiers) == 0 {
		return fmt.Errorf("%w: at least one volume tier is required", ErrInvalidConfig)
	}

	// Volume tiers must start at zero, be ordered and gapless, and only the
	// last tier may be unbounded. This is what guarantees exactly one match
	// for any non-negative job count.
	if c.VolumeTiers[0].MinJobs != 0 {
		return fmt.Errorf("%w: first volume tier must start at 0", ErrInvalidConfig)
	}
	for i, tier := range c.VolumeTiers {
		if tier.DiscountRate.IsNegative() || tier.DiscountRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: volume tier %q rate must be in [0,1)", ErrInvalidConfig, tier.Label)
		}
		last := i == len(c.VolumeTiers)-1
		if tier.MaxJobs == nil {
			if !last {
				return fmt.Errorf("%w: only the last volume tier may be unbounded", ErrInvalidConfig)
			}
			continue
		}
		if *tier.MaxJobs < tier.MinJobs {
			return fmt.Errorf("%w: volume tier %q has max below min", ErrInvalidConfig, tier.Label)
		}
		if last {
			return fmt.Errorf("%w: last volume tier must be unbounded", ErrInvalidConfig)
		}
		if c.VolumeTiers[i+1].MinJobs != *tier.MaxJobs+1 {
			return fmt.Errorf("%w: gap between volume tiers %q and %q", ErrInvalidConfig, tier.Label, c.VolumeTiers[i+1].Label)
		}
	}
	return nil
}

// MonthStart returns the first instant of the current calendar month in
// the configured timezone. Volume discounts count postings from here.
func (c Config) MonthStart() time.Time {
	now := c.Now().In(c.Timezone)
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.Timezone)
}
