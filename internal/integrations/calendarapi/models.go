package calendarapi

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// IntervalsQuery параметры запроса занятых интервалов.
// Задаётся либо Date (один день), либо Year+Month
type IntervalsQuery struct {
	BusinessID int64
	EmployeeID *int64
	Date       *time.Time
	Year       int
	Month      time.Month
}

// TimeRange рабочий интервал
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule расписание одного дня недели
type DaySchedule struct {
	Enabled bool        `json:"enabled"`
	Ranges  []TimeRange `json:"ranges"`
}

// ScheduleResponse недельное расписание бизнеса или сотрудника
type ScheduleResponse struct {
	BusinessID int64                  `json:"businessId"`
	EmployeeID *int64                 `json:"employeeId,omitempty"`
	Days       map[string]DaySchedule `json:"days"`
	UpdatedAt  *time.Time             `json:"updatedAt,omitempty"`
}

// BookedInterval занятый интервал
type BookedInterval struct {
	BookingID  int64  `json:"bookingId"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
}

// BookedIntervalsResponse список занятых интервалов
type BookedIntervalsResponse struct {
	BusinessID int64            `json:"businessId"`
	Intervals  []BookedInterval `json:"intervals"`
}

// CreateBookingRequest тело запроса на создание бронирования
type CreateBookingRequest struct {
	BusinessID  int64   `json:"businessId"`
	ServiceID   int64   `json:"serviceId"`
	EmployeeID  *int64  `json:"employeeId,omitempty"`
	BookingDate string  `json:"bookingDate"`
	StartTime   string  `json:"startTime"`
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse созданное бронирование
type BookingResponse struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"userId"`
	BusinessID      int64   `json:"businessId"`
	ServiceID       int64   `json:"serviceId"`
	EmployeeID      *int64  `json:"employeeId,omitempty"`
	BookingDate     string  `json:"bookingDate"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ErrorResponse модель ошибки от сервиса
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToDomain конвертирует расписание в доменную модель
func (r *ScheduleResponse) ToDomain() (*domain.WeeklySchedule, error) {
	schedule := &domain.WeeklySchedule{
		BusinessID: r.BusinessID,
		EmployeeID: r.EmployeeID,
		Days:       make(map[domain.Weekday]domain.DaySchedule, len(r.Days)),
	}
	if r.UpdatedAt != nil {
		schedule.UpdatedAt = *r.UpdatedAt
	}

	for key, day := range r.Days {
		weekday := domain.Weekday(key)
		if !weekday.IsValid() {
			return nil, fmt.Errorf("unknown weekday %q", key)
		}

		ranges := make([]domain.TimeRange, 0, len(day.Ranges))
		for _, tr := range day.Ranges {
			// Некорректные значения сохраняем как есть: генератор пропустит такой интервал
			ranges = append(ranges, domain.TimeRange{
				Start: types.TimeString(tr.Start),
				End:   types.TimeString(tr.End),
			})
		}
		schedule.Days[weekday] = domain.DaySchedule{Enabled: day.Enabled, Ranges: ranges}
	}

	return schedule, nil
}

// ToDomain конвертирует интервал в доменную модель
func (i *BookedInterval) ToDomain(loc *time.Location) (domain.BookedInterval, error) {
	date, err := time.ParseInLocation(domain.DateFormat, i.Date, loc)
	if err != nil {
		return domain.BookedInterval{}, err
	}
	start, err := types.NewTimeStringFromString(i.Start)
	if err != nil {
		return domain.BookedInterval{}, err
	}
	end, err := types.NewTimeStringFromString(i.End)
	if err != nil {
		return domain.BookedInterval{}, err
	}

	return domain.BookedInterval{
		BookingID:  i.BookingID,
		Date:       date,
		Start:      start,
		End:        end,
		Status:     domain.BookingStatus(i.Status),
		EmployeeID: i.EmployeeID,
	}, nil
}

// ToDomain конвертирует бронирование в доменную модель
func (r *BookingResponse) ToDomain(loc *time.Location) (*domain.Booking, error) {
	date, err := time.ParseInLocation(domain.DateFormat, r.BookingDate, loc)
	if err != nil {
		return nil, err
	}
	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:              r.ID,
		UserID:          r.UserID,
		BusinessID:      r.BusinessID,
		ServiceID:       r.ServiceID,
		EmployeeID:      r.EmployeeID,
		BookingDate:     date,
		StartTime:       start,
		DurationMinutes: r.DurationMinutes,
		Status:          domain.BookingStatus(r.Status),
		Notes:           r.Notes,
	}
	// Метки времени информативные, ошибку разбора не считаем фатальной
	booking.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	booking.UpdatedAt, _ = time.Parse(time.RFC3339, r.UpdatedAt)

	return booking, nil
}

// FromDraft формирует тело запроса из черновика бронирования
func FromDraft(draft domain.BookingDraft) CreateBookingRequest {
	return CreateBookingRequest{
		BusinessID:  draft.BusinessID,
		ServiceID:   draft.ServiceID,
		EmployeeID:  draft.EmployeeID,
		BookingDate: draft.Date.Format(domain.DateFormat),
		StartTime:   draft.Time.String(),
		Notes:       draft.Notes,
	}
}
