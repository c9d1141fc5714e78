package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestCalendarPeriodsAt(t *testing.T) {
	tests := []struct {
		name       string
		at         time.Time
		wantToday  Period
		wantWeek   Period
		wantMonth  Period
	}{
		{
			name:      "midweek",
			at:        time.Date(2024, 1, 17, 14, 30, 0, 0, time.UTC), // Wednesday
			wantToday: Period{Start: date(2024, 1, 17), End: date(2024, 1, 18)},
			wantWeek:  Period{Start: date(2024, 1, 15), End: date(2024, 1, 22)},
			wantMonth: Period{Start: date(2024, 1, 1), End: date(2024, 2, 1)},
		},
		{
			name:      "monday opens its own week",
			at:        time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			wantToday: Period{Start: date(2024, 1, 15), End: date(2024, 1, 16)},
			wantWeek:  Period{Start: date(2024, 1, 15), End: date(2024, 1, 22)},
			wantMonth: Period{Start: date(2024, 1, 1), End: date(2024, 2, 1)},
		},
		{
			name:      "sunday still belongs to the running week",
			at:        time.Date(2024, 1, 21, 23, 59, 59, 0, time.UTC),
			wantToday: Period{Start: date(2024, 1, 21), End: date(2024, 1, 22)},
			wantWeek:  Period{Start: date(2024, 1, 15), End: date(2024, 1, 22)},
			wantMonth: Period{Start: date(2024, 1, 1), End: date(2024, 2, 1)},
		},
		{
			name:      "week straddles a month boundary",
			at:        time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), // Friday
			wantToday: Period{Start: date(2024, 3, 1), End: date(2024, 3, 2)},
			wantWeek:  Period{Start: date(2024, 2, 26), End: date(2024, 3, 4)},
			wantMonth: Period{Start: date(2024, 3, 1), End: date(2024, 4, 1)},
		},
		{
			name:      "leap day",
			at:        time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC),
			wantToday: Period{Start: date(2024, 2, 29), End: date(2024, 3, 1)},
			wantWeek:  Period{Start: date(2024, 2, 26), End: date(2024, 3, 4)},
			wantMonth: Period{Start: date(2024, 2, 1), End: date(2024, 3, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalendarPeriodsAt(tt.at, time.UTC)

			require.True(t, got.Today.Start.Equal(tt.wantToday.Start), "Today.Start = %v", got.Today.Start)
			require.True(t, got.Today.End.Equal(tt.wantToday.End), "Today.End = %v", got.Today.End)
			require.True(t, got.ThisWeek.Start.Equal(tt.wantWeek.Start), "ThisWeek.Start = %v", got.ThisWeek.Start)
			require.True(t, got.ThisWeek.End.Equal(tt.wantWeek.End), "ThisWeek.End = %v", got.ThisWeek.End)
			require.True(t, got.ThisMonth.Start.Equal(tt.wantMonth.Start), "ThisMonth.Start = %v", got.ThisMonth.Start)
			require.True(t, got.ThisMonth.End.Equal(tt.wantMonth.End), "ThisMonth.End = %v", got.ThisMonth.End)

			require.True(t, got.Today.Contains(tt.at))
			require.True(t, got.ThisWeek.Contains(tt.at))
			require.True(t, got.ThisMonth.Contains(tt.at))
		})
	}
}

func TestDayOfRespectsLocation(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("cannot load Asia/Shanghai: %v", err)
	}

	// 18:00 UTC on the 17th is already the 18th in Shanghai.
	at := time.Date(2024, 1, 17, 18, 0, 0, 0, time.UTC)

	day := DayOf(at, shanghai)
	require.True(t, day.Start.Equal(time.Date(2024, 1, 18, 0, 0, 0, 0, shanghai).UTC()))
	require.True(t, day.Contains(at))
	require.Equal(t, time.UTC, day.Start.Location())
}

func TestPeriodContainsIsHalfOpen(t *testing.T) {
	day := DayOf(date(2024, 1, 17), time.UTC)

	require.True(t, day.Contains(day.Start))
	require.False(t, day.Contains(day.End))
	require.False(t, day.Contains(day.Start.Add(-time.Nanosecond)))
	require.True(t, day.Contains(day.End.Add(-time.Nanosecond)))
}
