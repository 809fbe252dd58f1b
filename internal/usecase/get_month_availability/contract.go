package get_month_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	availabilityCache "github.com/m04kA/SMC-BookingCalendar/internal/infra/cache/availability"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByBusinessWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// ScheduleProvider возвращает расписание сотрудника или бизнеса
type ScheduleProvider interface {
	Resolve(ctx context.Context, businessID int64, employeeID *int64) (*domain.WeeklySchedule, error)
}

// BusinessServiceClient интерфейс клиента для BusinessService
type BusinessServiceClient interface {
	GetService(ctx context.Context, businessID, serviceID int64) (*businessservice.Service, error)
}

// MonthGenerator генератор доступности на месяц
type MonthGenerator interface {
	Month(in availability.MonthInput) []domain.DayAvailability
}

// MonthCache кэш доступности по месяцам
type MonthCache interface {
	Get(ctx context.Context, key availabilityCache.MonthKey) ([]domain.DayAvailability, bool, error)
	Set(ctx context.Context, key availabilityCache.MonthKey, days []domain.DayAvailability) error
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
