package calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/calendarapi"
)

// API интерфейс API бронирований (calendarapi.Client)
type API interface {
	GetSchedule(ctx context.Context, businessID int64, employeeID *int64) (*domain.WeeklySchedule, error)
	GetBookedIntervals(ctx context.Context, q calendarapi.IntervalsQuery) ([]domain.BookedInterval, error)
	CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error)
}

// Notifier всплывающие уведомления для пользователя
type Notifier interface {
	ShowSuccess(message string)
	ShowError(message string)
	ShowWarning(message string)
}

// Session текущий пользователь
type Session interface {
	UserID() int64
	Role() string
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
