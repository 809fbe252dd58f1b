package get_month_availability

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

// Settings правила генерации слотов
type Settings struct {
	GranularityMinutes int
	AdvanceBookingDays int // 0 = без ограничений
	MinNoticeMinutes   int
	Location           *time.Location
}

// Request модель запроса доступности на месяц
type Request struct {
	UserID     int64
	BusinessID int64
	ServiceID  int64
	EmployeeID *int64
	Year       int
	Month      time.Month
}

// Response доступность по всем дням месяца
type Response struct {
	Year            int
	Month           time.Month
	BusinessID      int64
	ServiceID       int64
	EmployeeID      *int64
	DurationMinutes int
	Days            []domain.DayAvailability
}

// AvailableDates даты, на которые есть хотя бы один свободный слот
func (r *Response) AvailableDates() []time.Time {
	dates := make([]time.Time, 0, len(r.Days))
	for _, d := range r.Days {
		if d.Available {
			dates = append(dates, d.Date)
		}
	}
	return dates
}
