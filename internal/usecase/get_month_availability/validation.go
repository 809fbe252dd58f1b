package get_month_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

const (
	minYear = 2000
	maxYear = 2100
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}

	if req.Month < time.January || req.Month > time.December {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}

	if req.Year < minYear || req.Year > maxYear {
		return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, minYear, maxYear)
	}

	return nil
}

// validateMonth проверяет, что месяц пересекается с окном бронирования
func validateMonth(year int, month time.Month, today time.Time, advanceBookingDays int) error {
	first := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	last := first.AddDate(0, 1, -1)

	if last.Before(today) {
		return ErrInvalidMonth
	}

	if advanceBookingDays > 0 && first.After(today.AddDate(0, 0, advanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrMonthTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateEmployee проверяет, что сотрудник оказывает услугу
func validateEmployee(service domain.ServiceInfo, employeeID *int64) error {
	if employeeID == nil || !service.RequiresEmployee() {
		return nil
	}
	if !service.IsAssigned(*employeeID) {
		return ErrEmployeeNotAssigned
	}
	return nil
}

// applyWindow убирает слоты, которые уже прошли или лежат за горизонтом бронирования.
// Запись кэша могла быть построена раньше, поэтому фильтр применяется и к ней
func applyWindow(days []domain.DayAvailability, now time.Time, minNoticeMinutes, advanceBookingDays int) []domain.DayAvailability {
	today := dateOnly(now)
	minStart := now.Hour()*60 + now.Minute() + minNoticeMinutes

	var horizon time.Time
	if advanceBookingDays > 0 {
		horizon = today.AddDate(0, 0, advanceBookingDays)
	}

	result := make([]domain.DayAvailability, len(days))
	for i, d := range days {
		day := d.Clone()
		date := dateOnly(day.Date.In(now.Location()))

		switch {
		case date.Before(today), !horizon.IsZero() && date.After(horizon):
			day.Slots = []types.TimeString{}
		case date.Equal(today):
			kept := make([]types.TimeString, 0, len(day.Slots))
			for _, s := range day.Slots {
				if s.Minutes() >= minStart {
					kept = append(kept, s)
				}
			}
			day.Slots = kept
		}

		day.Available = len(day.Slots) > 0
		result[i] = day
	}
	return result
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
