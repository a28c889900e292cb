package jobposting

import "github.com/trm/pricing-engine/pricing"

// =============================================================================
// PREVIEW SCENARIOS
// =============================================================================

// PreviewScenarios returns the named scenarios the UI shows as read-only
// price previews. They run through the same pipeline as checkout against
// whatever rule/promo/job state is currently persisted.
func PreviewScenarios() []pricing.Scenario {
	return []pricing.Scenario{
		{
			ID:          "standard",
			Name:        "Standard Posting",
			Description: "Single posting, no category, no add-ons",
			Request:     pricing.Request{Quantity: 1},
		},
		{
			ID:          "featured-tech",
			Name:        "Featured Technology Posting",
			Description: "Technology category with the featured add-on",
			Request:     pricing.Request{Category: "Technology", Featured: true, Quantity: 1},
		},
		{
			ID:          "urgent",
			Name:        "Urgent Posting",
			Description: "Urgent add-on; surge applies on weekends and holidays",
			Request:     pricing.Request{Urgent: true, Quantity: 1},
		},
		{
			ID:          "bulk",
			Name:        "Bulk Purchase",
			Description: "Ten postings at once, volume tiers apply",
			Request:     pricing.Request{Quantity: 10},
		},
		{
			ID:          "everything",
			Name:        "Featured + Urgent Data Science",
			Description: "All add-ons on a high-demand category",
			Request:     pricing.Request{Category: "Data Science", Featured: true, Urgent: true, Quantity: 1},
		},
	}
}
