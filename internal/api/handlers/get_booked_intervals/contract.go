package get_booked_intervals

import (
	"context"

	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
)

type BookingService interface {
	GetBookedIntervals(ctx context.Context, req *models.GetBookedIntervalsRequest) (*models.BookedIntervalsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
