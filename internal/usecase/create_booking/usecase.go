package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingCalendar/internal/infra/storage/booking"
	businessClient "github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	scheduleService "github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
	"github.com/m04kA/SMC-BookingCalendar/pkg/metrics"
	"github.com/m04kA/SMC-BookingCalendar/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	schedules      ScheduleProvider
	businessClient BusinessServiceClient
	generator      SlotGenerator
	cache          AvailabilityCache
	txManager      TransactionManager
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
	cache AvailabilityCache,
	txManager TransactionManager,
	settings Settings,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		schedules:      schedules,
		businessClient: businessClient,
		generator:      generator,
		cache:          cache,
		txManager:      txManager,
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

// Execute выполняет use case создания бронирования.
// Слот проверяется тем же генератором, что строит доступность, внутри сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, business=%d, service=%d, date=%s, time=%s",
		req.UserID, req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Повтор запроса с тем же ключом возвращает уже созданное бронирование
	existing, err := uc.findReplay(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Response{Booking: existing, Replayed: true}, nil
	}

	now := uc.timeProvider.Now()

	// 3. Получаем услугу
	service, err := uc.businessClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessClient.ErrServiceNotFound) || errors.Is(err, businessClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	info := service.ToDomain()

	// 4. Проверяем сотрудника
	if err := validateEmployee(info, req.EmployeeID); err != nil {
		uc.logger.Warn("CreateBooking: employee check failed for service=%d: %v", req.ServiceID, err)
		return nil, err
	}

	// 5. Проверяем дату и время
	if err := validateDate(req.Date, now, uc.settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	if err := validateBookingTime(req.Date, req.StartTime, now, uc.settings.MinNoticeMinutes); err != nil {
		uc.logger.Warn("CreateBooking: booking time validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking

	// 6. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Расписание сотрудника или бизнеса
		schedule, err := uc.schedules.Resolve(txCtx, req.BusinessID, req.EmployeeID)
		if err != nil {
			if errors.Is(err, scheduleService.ErrScheduleNotFound) {
				uc.logger.Warn("CreateBooking: business=%d has no schedule", req.BusinessID)
				return ErrBusinessClosed
			}
			uc.logger.Error("CreateBooking: failed to get schedule: %v", err)
			return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}

		// 6.2. Активные бронирования на дату с блокировкой (FOR UPDATE)
		bookings, err := uc.bookingRepo.GetByBusinessWithFilter(txCtx, domain.BookingsFilter{
			BusinessID: req.BusinessID,
			EmployeeID: req.EmployeeID,
			StartDate:  &req.Date,
			EndDate:    &req.Date,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		booked := make([]domain.BookedInterval, 0, len(bookings))
		for _, b := range bookings {
			booked = append(booked, b.Interval())
		}

		// 6.3. Слот должен быть среди свободных
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

		if !day.Open {
			uc.logger.Warn("CreateBooking: business=%d is closed on %s", req.BusinessID, req.Date.Format(domain.DateFormat))
			return ErrBusinessClosed
		}

		if !day.HasSlot(req.StartTime) {
			uc.logger.Warn("CreateBooking: slot %s on %s is not available (%d free)",
				req.StartTime, req.Date.Format(domain.DateFormat), len(day.Slots))
			return ErrSlotNotAvailable
		}

		// 6.4. Сохраняем бронирование
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			UserID:          req.UserID,
			BusinessID:      req.BusinessID,
			ServiceID:       req.ServiceID,
			EmployeeID:      req.EmployeeID,
			BookingDate:     req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: info.DurationMinutes,
			Status:          domain.StatusConfirmed,
			Notes:           req.Notes,
			IdempotencyKey:  req.IdempotencyKey,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) {
				return err
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey):
			// Параллельный запрос с тем же ключом успел первым
			existing, findErr := uc.findReplay(ctx, req)
			if findErr != nil {
				return nil, findErr
			}
			if existing == nil {
				return nil, fmt.Errorf("%w: idempotency key conflict without booking", ErrInternal)
			}
			return &Response{Booking: existing, Replayed: true}, nil
		case errors.Is(err, txmanager.ErrSerializationFailure):
			uc.logger.Warn("CreateBooking: concurrent booking for %s %s: %v",
				req.Date.Format(domain.DateFormat), req.StartTime, err)
			uc.observeConflict(req)
			return nil, ErrSlotNotAvailable
		case errors.Is(err, ErrSlotNotAvailable):
			uc.observeConflict(req)
			return nil, err
		case errors.Is(err, txmanager.ErrTransaction):
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return nil, err
	}

	// 7. Месяц с новым бронированием в кэше больше не актуален
	if err := uc.cache.InvalidateMonth(ctx, req.BusinessID, req.Date); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate availability cache: %v", err)
	}

	if uc.metrics != nil {
		uc.metrics.BookingsCreated.WithLabelValues(metrics.Scope(req.EmployeeID != nil)).Inc()
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{Booking: result}, nil
}

// findReplay ищет бронирование, уже созданное с ключом идемпотентности запроса
func (uc *UseCase) findReplay(ctx context.Context, req *Request) (*domain.Booking, error) {
	if req.IdempotencyKey == nil {
		return nil, nil
	}

	existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, req.UserID, *req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, nil
		}
		uc.logger.Error("CreateBooking: failed to look up idempotency key: %v", err)
		return nil, fmt.Errorf("%w: failed to look up idempotency key: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: replaying booking id=%d for idempotency key %s", existing.ID, *req.IdempotencyKey)
	return existing, nil
}

func (uc *UseCase) observeConflict(req *Request) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.BookingConflicts.WithLabelValues(metrics.Scope(req.EmployeeID != nil)).Inc()
}
