package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	businessClient "github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	scheduleService "github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
	"github.com/m04kA/SMC-BookingCalendar/pkg/metrics"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// UseCase use case для получения доступных слотов на день
type UseCase struct {
	bookingRepo    BookingRepository
	schedules      ScheduleProvider
	businessClient BusinessServiceClient
	generator      SlotGenerator
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
	generator SlotGenerator,
	settings Settings,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		schedules:      schedules,
		businessClient: businessClient,
		generator:      generator,
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

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%d, business=%d, service=%d, date=%s",
		req.UserID, req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Валидация даты
	if err := validateDate(req.Date, now, uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем услугу
	service, err := uc.businessClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessClient.ErrServiceNotFound) || errors.Is(err, businessClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	info := service.ToDomain()

	// 4. Проверяем, что сотрудник оказывает услугу
	if err := validateEmployee(info, req.EmployeeID); err != nil {
		uc.logger.Warn("GetAvailableSlots: employee=%d does not provide service=%d", *req.EmployeeID, req.ServiceID)
		return nil, err
	}

	response := &Response{
		Date:            req.Date,
		BusinessID:      req.BusinessID,
		ServiceID:       req.ServiceID,
		EmployeeID:      req.EmployeeID,
		DurationMinutes: info.DurationMinutes,
		Slots:           []types.TimeString{},
	}

	// 5. Получаем расписание; его отсутствие означает, что бизнес закрыт
	schedule, err := uc.schedules.Resolve(ctx, req.BusinessID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, scheduleService.ErrScheduleNotFound) {
			uc.logger.Info("GetAvailableSlots: business=%d has no schedule, day is closed", req.BusinessID)
			return response, nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 6. Получаем активные бронирования на эту дату
	filter := domain.BookingsFilter{
		BusinessID: req.BusinessID,
		EmployeeID: req.EmployeeID,
		StartDate:  &req.Date,
		EndDate:    &req.Date,
	}

	bookings, err := uc.bookingRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	booked := make([]domain.BookedInterval, 0, len(bookings))
	for _, b := range bookings {
		booked = append(booked, b.Interval())
	}

	// 7. Генерируем слоты
	day := uc.generator.Day(availability.Input{
		Schedule:           schedule,
		Booked:             booked,
		Date:               req.Date,
		GranularityMinutes: uc.settings.GranularityMinutes,
		DurationMinutes:    info.DurationMinutes,
		Scope: availability.Scope{
			EmployeeID:          req.EmployeeID,
			AssignedEmployeeIDs: info.AssignedEmployeeIDs,
		},
		Now:              now,
		MinNoticeMinutes: uc.settings.MinNoticeMinutes,
	})

	response.Open = day.Open
	response.Slots = day.Slots

	if uc.metrics != nil {
		uc.metrics.SlotsGenerated.WithLabelValues(metrics.Scope(req.EmployeeID != nil)).Observe(float64(len(day.Slots)))
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for business=%d, service=%d, date=%s",
		len(day.Slots), req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return response, nil
}
