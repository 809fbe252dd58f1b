package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingCalendar/internal/infra/storage/schedule"
	businessClient "github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/schedule/models"
)

// Service сервис для работы с недельными расписаниями
type Service struct {
	scheduleRepo   ScheduleRepository
	businessClient BusinessServiceClient
	cache          AvailabilityCache
	txManager      TransactionManager
	logger         Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	businessClient BusinessServiceClient,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:   scheduleRepo,
		businessClient: businessClient,
		cache:          cache,
		txManager:      txManager,
		logger:         logger,
	}
}

// Get получает расписание бизнеса или сотрудника.
// Если у сотрудника нет своего расписания, возвращается расписание бизнеса
func (s *Service) Get(ctx context.Context, businessID int64, employeeID *int64) (*models.ScheduleResponse, error) {
	schedule, err := s.Resolve(ctx, businessID, employeeID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainSchedule(schedule), nil
}

// Resolve возвращает расписание в domain модели (для usecases)
func (s *Service) Resolve(ctx context.Context, businessID int64, employeeID *int64) (*domain.WeeklySchedule, error) {
	if employeeID != nil {
		schedule, err := s.scheduleRepo.Get(ctx, businessID, employeeID)
		if err == nil {
			return schedule, nil
		}
		if !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Error("Resolve: repository error for business=%d employee=%d: %v", businessID, *employeeID, err)
			return nil, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
		}
		s.logger.Info("Resolve: employee=%d has no own schedule, falling back to business=%d", *employeeID, businessID)
	}

	schedule, err := s.scheduleRepo.Get(ctx, businessID, nil)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Resolve: business=%d has no schedule", businessID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("Resolve: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
	}

	return schedule, nil
}

// Update заменяет расписание бизнеса или сотрудника.
// Доступно только менеджерам бизнеса
func (s *Service) Update(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: business=%d, employee=%s, user=%d", req.BusinessID, employeeLabel(req.EmployeeID), req.UserID)

	schedule, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("Update: invalid request for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	if err := validateSchedule(schedule); err != nil {
		s.logger.Warn("Update: validation failed for business=%d: %v", req.BusinessID, err)
		return nil, err
	}

	business, err := s.businessClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			s.logger.Warn("Update: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("Update: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	if !business.IsManager(req.UserID) {
		s.logger.Warn("Update: user=%d is not a manager of business=%d", req.UserID, req.BusinessID)
		return nil, ErrAccessDenied
	}

	if req.EmployeeID != nil && !business.HasEmployee(*req.EmployeeID) {
		s.logger.Warn("Update: employee=%d does not work at business=%d", *req.EmployeeID, req.BusinessID)
		return nil, ErrEmployeeNotFound
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.scheduleRepo.Replace(txCtx, schedule)
	})
	if err != nil {
		s.logger.Error("Update: failed to save schedule for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	// Кэш не критичен: при ошибке запись истечёт по TTL
	if err := s.cache.InvalidateBusiness(ctx, req.BusinessID); err != nil {
		s.logger.Warn("Update: failed to invalidate availability cache for business=%d: %v", req.BusinessID, err)
	}

	s.logger.Info("Update: schedule saved for business=%d, employee=%s", req.BusinessID, employeeLabel(req.EmployeeID))
	return models.FromDomainSchedule(schedule), nil
}

func employeeLabel(employeeID *int64) string {
	if employeeID == nil {
		return "business"
	}
	return strconv.FormatInt(*employeeID, 10)
}
