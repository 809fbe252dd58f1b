package get_month_availability

import (
	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	getMonthAvailability "github.com/m04kA/SMC-BookingCalendar/internal/usecase/get_month_availability"
)

// DayAvailability доступность одного дня
type DayAvailability struct {
	Date      string   `json:"date"`
	Open      bool     `json:"open"`
	Available bool     `json:"available"`
	Slots     []string `json:"slots"`
}

// MonthAvailabilityResponse HTTP response model
type MonthAvailabilityResponse struct {
	Year            int               `json:"year"`
	Month           int               `json:"month"`
	BusinessID      int64             `json:"businessId"`
	ServiceID       int64             `json:"serviceId"`
	EmployeeID      *int64            `json:"employeeId,omitempty"`
	DurationMinutes int               `json:"durationMinutes"`
	AvailableDates  []string          `json:"availableDates"`
	Days            []DayAvailability `json:"days"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getMonthAvailability.Response) *MonthAvailabilityResponse {
	out := &MonthAvailabilityResponse{
		Year:            resp.Year,
		Month:           int(resp.Month),
		BusinessID:      resp.BusinessID,
		ServiceID:       resp.ServiceID,
		EmployeeID:      resp.EmployeeID,
		DurationMinutes: resp.DurationMinutes,
		AvailableDates:  make([]string, 0, len(resp.Days)),
		Days:            make([]DayAvailability, len(resp.Days)),
	}

	for _, date := range resp.AvailableDates() {
		out.AvailableDates = append(out.AvailableDates, date.Format(domain.DateFormat))
	}

	for i, d := range resp.Days {
		slots := make([]string, len(d.Slots))
		for j, s := range d.Slots {
			slots[j] = s.String()
		}
		out.Days[i] = DayAvailability{
			Date:      d.Date.Format(domain.DateFormat),
			Open:      d.Open,
			Available: d.Available,
			Slots:     slots,
		}
	}

	return out
}
