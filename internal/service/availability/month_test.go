package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

func TestGenerator_Month(t *testing.T) {
	g := newTestGenerator()
	schedule := mondaySchedule(domain.TimeRange{Start: "09:00", End: "10:00"})

	booked := []domain.BookedInterval{
		// 9 марта - весь день занят
		interval(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), "09:00", "10:00", domain.StatusConfirmed, nil),
		// 16 марта - занят один слот
		interval(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), "09:00", "09:30", domain.StatusConfirmed, nil),
		// другой месяц
		interval(time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), "09:00", "10:00", domain.StatusConfirmed, nil),
	}

	days := g.Month(MonthInput{
		Schedule: schedule,
		Booked:   booked,
		Year:     2026,
		Month:    time.March,
	})

	require.Len(t, days, 31)
	for i, day := range days {
		assert.Equal(t, i+1, day.Date.Day())
		assert.Equal(t, day.Available, len(day.Slots) > 0)
	}

	// Понедельники марта 2026: 2, 9, 16, 23, 30
	assert.Equal(t, []types.TimeString{"09:00", "09:30"}, days[1].Slots)
	assert.True(t, days[8].Open)
	assert.False(t, days[8].Available)
	assert.Equal(t, []types.TimeString{"09:30"}, days[15].Slots)
	assert.True(t, days[22].Available)
	assert.True(t, days[29].Available)

	// Вторник выключен
	assert.False(t, days[2].Open)
}

func TestGenerator_MonthLength(t *testing.T) {
	g := newTestGenerator()

	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2026, time.February, 28},
		{2028, time.February, 29},
		{2026, time.April, 30},
		{2026, time.December, 31},
	}

	for _, tt := range tests {
		days := g.Month(MonthInput{Schedule: mondaySchedule(), Year: tt.year, Month: tt.month})
		assert.Len(t, days, tt.want, "%d-%02d", tt.year, tt.month)
		assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month))
	}
}

func TestGenerator_MonthMatchesDay(t *testing.T) {
	g := newTestGenerator()
	schedule := mondaySchedule(domain.TimeRange{Start: "09:00", End: "12:00"})
	booked := []domain.BookedInterval{
		interval(time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC), "10:00", "11:00", domain.StatusPending, nil),
	}
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	days := g.Month(MonthInput{Schedule: schedule, Booked: booked, Year: 2026, Month: time.March, Now: now})

	for _, day := range days {
		single := g.Day(Input{Schedule: schedule, Booked: booked, Date: day.Date, Now: now})
		assert.Equal(t, single.Slots, day.Slots, day.Date.Format(domain.DateFormat))
	}
}
