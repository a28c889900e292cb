package pricing

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// VOLUME DISCOUNT RESOLVER
// =============================================================================

// VolumeDiscountResolver maps a company's in-month posting volume to a
// discount tier. The tier table is ordered and gapless (Config.Validate
// enforces it), so exactly one tier matches any projected total.
type VolumeDiscountResolver struct {
	Tiers []VolumeTier
	Jobs  JobRepository
}

// Resolve counts the company's postings created since monthStart, adds the
// quantity being purchased, and returns the matching tier. A missing
// company id means no history: count 0, lowest tier. Repository failures
// propagate: the discount cannot be trusted without the count.
func (r VolumeDiscountResolver) Resolve(ctx context.Context, companyID CompanyID, quantity int, monthStart time.Time) (VolumeResult, error) {
	count := 0
	if companyID != "" {
		var err error
		count, err = r.Jobs.CountActiveSince(ctx, companyID, monthStart)
		if err != nil {
			return VolumeResult{}, fmt.Errorf("%w: counting jobs for %s: %v", ErrRepositoryUnavailable, companyID, err)
		}
	}

	projected := count + quantity
	for _, tier := range r.Tiers {
		if tier.Contains(projected) {
			return VolumeResult{Tier: tier, ProjectedJobs: projected}, nil
		}
	}

	// Unreachable with a validated table; fall back to no discount rather
	// than failing the calculation.
	return VolumeResult{Tier: VolumeTier{Label: "No Discount"}, ProjectedJobs: projected}, nil
}
