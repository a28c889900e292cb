/*
calendar.go - Weekend and holiday resolution for a configured timezone

PURPOSE:
  Answers "is this a weekend?" and "is this a holiday?" for the local
  calendar the marketplace operates in. Both feed the surge stage.

HOLIDAY TABLE:
  Holidays come from a finite, explicitly maintained date list. There are
  no recurrence rules and no lookahead beyond the table's coverage: a date
  outside the table is simply not a holiday. That fallback is a documented
  limitation of the table, not an error.

SEE ALSO:
  - surge.go: Consumes CalendarInfo
  - jobposting/catalog.go: The maintained holiday list
*/
package pricing

import "time"

// =============================================================================
// HOLIDAY CALENDAR - Capability interface over a finite date table
// =============================================================================

// HolidayCalendar reports whether a local calendar date is a holiday.
type HolidayCalendar interface {
	IsHoliday(year int, month time.Month, day int) bool
}

// FixedHolidayCalendar is a HolidayCalendar backed by an explicit date set.
type FixedHolidayCalendar struct {
	dates map[string]string // "2006-01-02" -> holiday name
}

// NewFixedHolidayCalendar builds a calendar from explicit dates.
func NewFixedHolidayCalendar(holidays map[time.Time]string) *FixedHolidayCalendar {
	dates := make(map[string]string, len(holidays))
	for d, name := range holidays {
		dates[d.Format("2006-01-02")] = name
	}
	return &FixedHolidayCalendar{dates: dates}
}

func (c *FixedHolidayCalendar) IsHoliday(year int, month time.Month, day int) bool {
	key := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	_, ok := c.dates[key]
	return ok
}

// NoHolidays is a calendar with an empty table.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(int, time.Month, int) bool { return false }

// =============================================================================
// CALENDAR RESOLVER
// =============================================================================

// CalendarInfo is the resolved calendar state for one instant.
type CalendarInfo struct {
	LocalDate time.Time `json:"local_date"`
	IsWeekend bool      `json:"is_weekend"`
	IsHoliday bool      `json:"is_holiday"`
}

// CalendarResolver resolves calendar effects against a configured timezone
// and holiday table.
type CalendarResolver struct {
	Timezone *time.Location
	Holidays HolidayCalendar
}

// Resolve returns the calendar state for the given instant. There are no
// error cases: dates outside the holiday table resolve to IsHoliday=false.
func (r CalendarResolver) Resolve(at time.Time) CalendarInfo {
	local := at.In(r.Timezone)
	wd := local.Weekday()

	holiday := false
	if r.Holidays != nil {
		holiday = r.Holidays.IsHoliday(local.Year(), local.Month(), local.Day())
	}

	return CalendarInfo{
		LocalDate: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.Timezone),
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
		IsHoliday: holiday,
	}
}
