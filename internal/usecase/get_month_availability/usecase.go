package get_month_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	availabilityCache "github.com/m04kA/SMC-BookingCalendar/internal/infra/cache/availability"
	businessClient "github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	scheduleService "github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
	"github.com/m04kA/SMC-BookingCalendar/pkg/metrics"
)

// UseCase use case для получения доступности на месяц
type UseCase struct {
	bookingRepo    BookingRepository
	schedules      ScheduleProvider
	businessClient BusinessServiceClient
	generator      MonthGenerator
	cache          MonthCache
	settings       Settings
	metrics        *metrics.Metrics
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case; m может быть nil
func NewUseCase(
	bookingRepo BookingRepository,
	schedules ScheduleProvider,
	businessClient BusinessServiceClient,
	generator MonthGenerator,
	cache MonthCache,
	settings Settings,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:    bookingRepo,
		schedules:      schedules,
		businessClient: businessClient,
		generator:      generator,
		cache:          cache,
		settings:       settings,
		metrics:        m,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступности на месяц
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetMonthAvailability: user=%d, business=%d, service=%d, month=%04d-%02d",
		req.UserID, req.BusinessID, req.ServiceID, req.Year, int(req.Month))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetMonthAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.settings.Location)

	// 2. Месяц должен пересекаться с окном бронирования
	if err := validateMonth(req.Year, req.Month, dateOnly(now), uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetMonthAvailability: month validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем услугу
	service, err := uc.businessClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessClient.ErrServiceNotFound) || errors.Is(err, businessClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetMonthAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetMonthAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	info := service.ToDomain()

	if err := validateEmployee(info, req.EmployeeID); err != nil {
		uc.logger.Warn("GetMonthAvailability: employee=%d does not provide service=%d", *req.EmployeeID, req.ServiceID)
		return nil, err
	}

	// 4. Пробуем кэш
	key := availabilityCache.MonthKey{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		Month:      req.Month,
	}

	days, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		// Кэш недоступен - считаем заново
		uc.logger.Warn("GetMonthAvailability: cache lookup failed for %s: %v", key, err)
	}

	if !found {
		days, err = uc.build(ctx, req, info, now)
		if err != nil {
			return nil, err
		}

		if err := uc.cache.Set(ctx, key, days); err != nil {
			uc.logger.Warn("GetMonthAvailability: failed to store %s: %v", key, err)
		}
	}

	// 5. Отрезаем прошедшее и всё, что за горизонтом
	days = applyWindow(days, now, uc.settings.MinNoticeMinutes, uc.settings.AdvanceBookingDays)

	available := 0
	for _, d := range days {
		if d.Available {
			available++
		}
	}

	uc.logger.Info("GetMonthAvailability: business=%d, service=%d, month=%04d-%02d: %d available days (cached=%t)",
		req.BusinessID, req.ServiceID, req.Year, int(req.Month), available, found)

	return &Response{
		Year:            req.Year,
		Month:           req.Month,
		BusinessID:      req.BusinessID,
		ServiceID:       req.ServiceID,
		EmployeeID:      req.EmployeeID,
		DurationMinutes: info.DurationMinutes,
		Days:            days,
	}, nil
}

// build считает доступность месяца по расписанию и бронированиям
func (uc *UseCase) build(ctx context.Context, req *Request, info domain.ServiceInfo, now time.Time) ([]domain.DayAvailability, error) {
	input := availability.MonthInput{
		Year:               req.Year,
		Month:              req.Month,
		Location:           uc.settings.Location,
		GranularityMinutes: uc.settings.GranularityMinutes,
		DurationMinutes:    info.DurationMinutes,
		Scope: availability.Scope{
			EmployeeID:          req.EmployeeID,
			AssignedEmployeeIDs: info.AssignedEmployeeIDs,
		},
		Now:              now,
		MinNoticeMinutes: uc.settings.MinNoticeMinutes,
	}

	schedule, err := uc.schedules.Resolve(ctx, req.BusinessID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, scheduleService.ErrScheduleNotFound) {
			// Без расписания все дни закрыты
			uc.logger.Info("GetMonthAvailability: business=%d has no schedule", req.BusinessID)
			return uc.generator.Month(input), nil
		}
		uc.logger.Error("GetMonthAvailability: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}
	input.Schedule = schedule

	first := time.Date(req.Year, req.Month, 1, 0, 0, 0, 0, uc.settings.Location)
	last := first.AddDate(0, 1, -1)

	bookings, err := uc.bookingRepo.GetByBusinessWithFilter(ctx, domain.BookingsFilter{
		BusinessID: req.BusinessID,
		EmployeeID: req.EmployeeID,
		StartDate:  &first,
		EndDate:    &last,
	})
	if err != nil {
		uc.logger.Error("GetMonthAvailability: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	input.Booked = make([]domain.BookedInterval, 0, len(bookings))
	for _, b := range bookings {
		input.Booked = append(input.Booked, b.Interval())
	}

	days := uc.generator.Month(input)

	if uc.metrics != nil {
		scope := metrics.Scope(req.EmployeeID != nil)
		for _, d := range days {
			uc.metrics.SlotsGenerated.WithLabelValues(scope).Observe(float64(len(d.Slots)))
		}
	}

	return days, nil
}
