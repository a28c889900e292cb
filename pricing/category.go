package pricing

import "strings"

// =============================================================================
// CATEGORY TIER RESOLVER
// =============================================================================

// CategoryTierResolver maps free-text categories to pricing tiers.
// The base and surge stages must share ONE resolver so their tier
// decisions can never diverge within a calculation.
type CategoryTierResolver struct {
	tiers map[string]CategoryTier
}

// NewCategoryTierResolver builds a resolver over a static tier table.
func NewCategoryTierResolver(tiers map[string]CategoryTier) *CategoryTierResolver {
	return &CategoryTierResolver{tiers: tiers}
}

// Resolve returns the tier for a category. Lookup never fails: input is
// trimmed, matched exactly, and misses resolve to the standard tier.
func (r *CategoryTierResolver) Resolve(category string) CategoryTier {
	name := strings.TrimSpace(category)
	if name == "" {
		return StandardTier()
	}
	if tier, ok := r.tiers[name]; ok {
		return tier
	}
	return StandardTier()
}
