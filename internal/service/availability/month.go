package availability

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

// Month строит доступность на каждый день месяца.
// Интервалы раскладываются по дням за один проход, затем каждый день считается отдельно
func (g *Generator) Month(in MonthInput) []domain.DayAvailability {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	daysInMonth := DaysInMonth(in.Year, in.Month)

	byDay := make(map[int][]domain.BookedInterval)
	for _, interval := range in.Booked {
		y, m, d := interval.Date.Date()
		if y != in.Year || m != in.Month {
			continue
		}
		byDay[d] = append(byDay[d], interval)
	}

	result := make([]domain.DayAvailability, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(in.Year, in.Month, day, 0, 0, 0, 0, loc)
		result = append(result, g.Day(in.dayInput(date, byDay[day])))
	}

	return result
}

// DaysInMonth возвращает количество дней в месяце
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}
