package get_booking

import (
	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// BookingDetailsResponse бронирование вместе с занятым интервалом и доступными действиями.
// Календарь по endTime убирает слоты, а по cancellable показывает кнопку отмены
type BookingDetailsResponse struct {
	*models.BookingResponse
	EndTime     string `json:"endTime"` // "10:30"
	Active      bool   `json:"active"`  // занимает время в календаре
	Cancellable bool   `json:"cancellable"`
}

// FromServiceResponse дополняет ответ сервиса интервалом и флагами статуса
func FromServiceResponse(resp *models.BookingResponse) *BookingDetailsResponse {
	booking := domain.Booking{
		StartTime:       types.TimeString(resp.StartTime),
		DurationMinutes: resp.DurationMinutes,
		Status:          domain.BookingStatus(resp.Status),
	}

	return &BookingDetailsResponse{
		BookingResponse: resp,
		EndTime:         booking.Interval().End.String(),
		Active:          booking.IsActive(),
		Cancellable:     booking.CanBeCancelled(),
	}
}
