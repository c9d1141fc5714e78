package xtime

import "time"

// Period is a half-open interval. Start is inside the period, End is not.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// DayOf returns the calendar day holding t in the given location.
// Bounds are normalized to UTC.
func DayOf(t time.Time, loc *time.Location) Period {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	return Period{Start: start.UTC(), End: start.AddDate(0, 0, 1).UTC()}
}

// WeekOf returns the calendar week holding t. Weeks run Monday to Monday.
func WeekOf(t time.Time, loc *time.Location) Period {
	local := t.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	// time.Weekday counts Sunday as 0, shift it to the end of the week.
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	start := dayStart.AddDate(0, 0, -(weekday - 1))

	return Period{Start: start.UTC(), End: start.AddDate(0, 0, 7).UTC()}
}

// MonthOf returns the calendar month holding t.
func MonthOf(t time.Time, loc *time.Location) Period {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	return Period{Start: start.UTC(), End: start.AddDate(0, 1, 0).UTC()}
}

// CalendarPeriods bundles the periods dashboard counters run against.
type CalendarPeriods struct {
	Today     Period
	ThisWeek  Period
	ThisMonth Period
}

// GetCalendarPeriods returns the calendar periods holding the current
// instant. Calendar periods are aligned to midnight, Monday and the first
// of the month in loc, they are not rolling windows.
func GetCalendarPeriods(loc *time.Location) CalendarPeriods {
	return CalendarPeriodsAt(time.Now(), loc)
}

// CalendarPeriodsAt returns the calendar periods holding t.
func CalendarPeriodsAt(t time.Time, loc *time.Location) CalendarPeriods {
	return CalendarPeriods{
		Today:     DayOf(t, loc),
		ThisWeek:  WeekOf(t, loc),
		ThisMonth: MonthOf(t, loc),
	}
}
