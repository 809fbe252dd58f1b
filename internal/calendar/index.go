package calendar

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

// MonthIndex доступность всех дней одного месяца для одной области (сотрудник или весь бизнес)
type MonthIndex struct {
	year     int
	month    time.Month
	employee int64 // 0 - без сотрудника
	days     []domain.DayAvailability
}

// NewMonthIndex создает индекс; days должен содержать по записи на каждый день месяца
func NewMonthIndex(year int, month time.Month, employee int64, days []domain.DayAvailability) *MonthIndex {
	copied := make([]domain.DayAvailability, len(days))
	for i, d := range days {
		copied[i] = d.Clone()
	}
	return &MonthIndex{year: year, month: month, employee: employee, days: copied}
}

// Matches проверяет, что индекс построен для этого месяца и сотрудника
func (i *MonthIndex) Matches(year int, month time.Month, employee int64) bool {
	return i != nil && i.year == year && i.month == month && i.employee == employee
}

// Covers проверяет, что дата попадает в месяц индекса
func (i *MonthIndex) Covers(date time.Time) bool {
	if i == nil {
		return false
	}
	y, m, d := date.Date()
	return y == i.year && m == i.month && d >= 1 && d <= len(i.days)
}

// Day возвращает копию доступности дня
func (i *MonthIndex) Day(date time.Time) (domain.DayAvailability, bool) {
	if !i.Covers(date) {
		return domain.DayAvailability{}, false
	}
	return i.days[date.Day()-1].Clone(), true
}

// Put заменяет доступность одного дня
func (i *MonthIndex) Put(day domain.DayAvailability) bool {
	if !i.Covers(day.Date) {
		return false
	}
	i.days[day.Date.Day()-1] = day.Clone()
	return true
}

// Days возвращает копию всех дней месяца
func (i *MonthIndex) Days() []domain.DayAvailability {
	if i == nil {
		return nil
	}
	result := make([]domain.DayAvailability, len(i.days))
	for idx, d := range i.days {
		result[idx] = d.Clone()
	}
	return result
}

// AvailableDates даты, в которые есть хотя бы один свободный слот
func (i *MonthIndex) AvailableDates() []time.Time {
	if i == nil {
		return nil
	}
	result := make([]time.Time, 0, len(i.days))
	for _, d := range i.days {
		if d.Available {
			result = append(result, d.Date)
		}
	}
	return result
}
