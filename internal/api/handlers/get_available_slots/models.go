package get_available_slots

import (
	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BookingCalendar/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string   `json:"date"`
	BusinessID      int64    `json:"businessId"`
	ServiceID       int64    `json:"serviceId"`
	EmployeeID      *int64   `json:"employeeId,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Open            bool     `json:"open"`
	Slots           []string `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		BusinessID:      resp.BusinessID,
		ServiceID:       resp.ServiceID,
		EmployeeID:      resp.EmployeeID,
		DurationMinutes: resp.DurationMinutes,
		Open:            resp.Open,
		Slots:           slots,
	}
}
