/*
Package jobposting holds the concrete marketplace pricing catalog.

PURPOSE:
  Pins every static pricing table for the job-posting marketplace: the
  base price, add-on surcharges, category tiers, volume discount tiers,
  surge multipliers, the local timezone, and the maintained public
  holiday list. The pricing package stays free of concrete numbers; this
  package is the single place they live.

PRICES:
  All amounts are whole rupiah (IDR). The base posting price is 50,000,
  the featured add-on 25,000, the urgent add-on 30,000.

HOLIDAY TABLE:
  The holiday list is a finite, explicitly maintained table covering the
  years the marketplace operates in. Dates outside the table are not
  holidays; extending coverage means adding rows here.

SEE ALSO:
  - pricing/config.go: The Config type this package populates
  - scenarios.go: Named preview scenarios over this catalog
*/
package jobposting

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/trm/pricing-engine/pricing"
)

// Currency is the marketplace settlement currency.
const Currency = "IDR"

// TimezoneName is the marketplace's local calendar timezone.
const TimezoneName = "Asia/Jakarta"

// =============================================================================
// CATEGORY TIERS
// =============================================================================

// CategoryTiers maps job categories to demand bands. Unlisted categories
// price at the standard tier with multiplier 1.0.
//
// The high_demand band also triggers the category surge factor, so it is
// reserved for the handful of categories where demand genuinely outstrips
// supply; broad categories like Technology sit in premium.
func CategoryTiers() map[string]pricing.CategoryTier {
	return map[string]pricing.CategoryTier{
		"Data Science":            {Multiplier: dec("1.35"), Label: pricing.TierHighDemand},
		"Artificial Intelligence": {Multiplier: dec("1.4"), Label: pricing.TierHighDemand},
		"Cybersecurity":           {Multiplier: dec("1.35"), Label: pricing.TierHighDemand},
		"Technology":              {Multiplier: dec("1.3"), Label: pricing.TierPremium},
		"Information Technology":  {Multiplier: dec("1.3"), Label: pricing.TierPremium},
		"Engineering":             {Multiplier: dec("1.25"), Label: pricing.TierPremium},
		"Finance":                 {Multiplier: dec("1.2"), Label: pricing.TierPremium},
		"Healthcare":              {Multiplier: dec("1.2"), Label: pricing.TierPremium},
		"Marketing":               {Multiplier: dec("1.1"), Label: pricing.TierStandard},
		"Sales":                   {Multiplier: dec("1.1"), Label: pricing.TierStandard},
	}
}

// =============================================================================
// VOLUME TIERS
// =============================================================================

// VolumeTiers returns the ordered, gapless discount table keyed to a
// company's projected monthly posting count.
func VolumeTiers() []pricing.VolumeTier {
	return []pricing.VolumeTier{
		{MinJobs: 0, MaxJobs: intp(4), DiscountRate: decimal.Zero, Label: "0-4 Jobs (No Discount)"},
		{MinJobs: 5, MaxJobs: intp(9), DiscountRate: dec("0.10"), Label: "5-9 Jobs (10% off)"},
		{MinJobs: 10, MaxJobs: intp(24), DiscountRate: dec("0.20"), Label: "10-24 Jobs (20% off)"},
		{MinJobs: 25, MaxJobs: intp(49), DiscountRate: dec("0.25"), Label: "25-49 Jobs (25% off)"},
		{MinJobs: 50, MaxJobs: nil, DiscountRate: dec("0.30"), Label: "50+ Jobs (30% off)"},
	}
}

// =============================================================================
// SURGE MULTIPLIERS
// =============================================================================

// Surge returns the independent surge factors. They compound by
// multiplication when several trigger at once.
func Surge() pricing.SurgeMultipliers {
	return pricing.SurgeMultipliers{
		Urgency:            dec("2.0"),
		Weekend:            dec("1.5"),
		Holiday:            dec("1.8"),
		HighDemandCategory: dec("1.2"),
	}
}

// =============================================================================
// HOLIDAY TABLE
// =============================================================================

// Holidays returns the maintained public holiday table.
func Holidays() map[time.Time]string {
	return map[time.Time]string{
		day(2025, time.January, 1):   "New Year's Day",
		day(2025, time.March, 31):    "Idul Fitri",
		day(2025, time.April, 1):     "Idul Fitri Holiday",
		day(2025, time.May, 1):       "Labour Day",
		day(2025, time.August, 17):   "Independence Day",
		day(2025, time.December, 25): "Christmas Day",
		day(2026, time.January, 1):   "New Year's Day",
		day(2026, time.March, 20):    "Idul Fitri",
		day(2026, time.March, 21):    "Idul Fitri Holiday",
		day(2026, time.May, 1):       "Labour Day",
		day(2026, time.August, 17):   "Independence Day",
		day(2026, time.December, 25): "Christmas Day",
	}
}

// =============================================================================
// CONFIG ASSEMBLY
// =============================================================================

// DefaultConfig assembles the production pricing configuration.
func DefaultConfig() pricing.Config {
	tz, err := time.LoadLocation(TimezoneName)
	if err != nil {
		tz = time.FixedZone("WIB", 7*60*60)
	}
	return pricing.Config{
		Currency:          Currency,
		BasePrice:         decimal.NewFromInt(50000),
		FeaturedSurcharge: decimal.NewFromInt(25000),
		UrgentSurcharge:   decimal.NewFromInt(30000),
		CategoryTiers:     CategoryTiers(),
		VolumeTiers:       VolumeTiers(),
		Surge:             Surge(),
		Timezone:          tz,
		Holidays:          pricing.NewFixedHolidayCalendar(Holidays()),
		Now:               time.Now,
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func intp(n int) *int { return &n }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
