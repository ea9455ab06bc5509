package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"plain", date(2024, 3, 15), 24, date(2026, 3, 15)},
		{"clamps to month end", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"leap day to non-leap year", date(2024, 2, 29), 24, date(2026, 2, 28)},
		{"crosses year", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"negative", date(2024, 3, 31), -1, date(2024, 2, 29)},
		{"zero", date(2024, 3, 31), 0, date(2024, 3, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.from, tt.n))
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
}

func TestDayBoundaries(t *testing.T) {
	d := date(2024, 3, 15)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), StartOfDay(d))
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC), EndOfDay(d))
	assert.True(t, IsSameDay(StartOfDay(d), EndOfDay(d)))
	assert.False(t, IsSameDay(d, d.AddDate(0, 0, 1)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 15, DaysBetween(date(2024, 3, 1), date(2024, 3, 16)))
	assert.Equal(t, -1, DaysBetween(date(2024, 3, 2), date(2024, 3, 1)))
}
