package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingCalendar/internal/infra/storage/booking"
	businessClient "github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo    BookingRepository
	businessClient BusinessServiceClient
	cache          AvailabilityCache
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	businessClient BusinessServiceClient,
	cache AvailabilityCache,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepo,
		businessClient: businessClient,
		cache:          cache,
		logger:         logger,
	}
}

// GetByID получает бронирование по ID.
// Пользователь видит своё бронирование, менеджер - любое бронирование бизнеса
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя.
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d by requester=%d", req.UserID, req.RequesterID)

	if req.RequesterID != req.UserID {
		s.logger.Warn("GetUserBookings: user=%d cannot read bookings of user=%d", req.RequesterID, req.UserID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetBookedIntervals возвращает активные интервалы бизнеса за день или месяц.
// Для сотрудника включаются и бронирования без сотрудника
func (s *Service) GetBookedIntervals(ctx context.Context, req *models.GetBookedIntervalsRequest) (*models.BookedIntervalsResponse, error) {
	intervals, err := s.BookedIntervals(ctx, req)
	if err != nil {
		return nil, err
	}
	return models.FromDomainIntervals(req.BusinessID, intervals), nil
}

// BookedIntervals то же, что GetBookedIntervals, в domain модели
func (s *Service) BookedIntervals(ctx context.Context, req *models.GetBookedIntervalsRequest) ([]domain.BookedInterval, error) {
	if req.BusinessID <= 0 {
		return nil, fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}
	if req.Date == nil && (req.Year <= 0 || req.Month < 1 || req.Month > 12) {
		return nil, fmt.Errorf("%w: date or year/month is required", ErrInvalidInput)
	}

	start, end := req.Period()
	filter := domain.BookingsFilter{
		BusinessID: req.BusinessID,
		EmployeeID: req.EmployeeID,
		StartDate:  &start,
		EndDate:    &end,
	}

	bookings, err := s.bookingRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("BookedIntervals: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: BookedIntervals - repository error: %v", ErrInternal, err)
	}

	intervals := make([]domain.BookedInterval, 0, len(bookings))
	for _, booking := range bookings {
		intervals = append(intervals, booking.Interval())
	}

	s.logger.Info("BookedIntervals: business=%d, period=%s..%s, intervals=%d",
		req.BusinessID, start.Format(domain.DateFormat), end.Format(domain.DateFormat), len(intervals))
	return intervals, nil
}

// Cancel отменяет бронирование.
// Пользователь может отменить своё бронирование, менеджер - любое бронирование бизнеса
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.checkUserAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return err
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, req.CancellationReason); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found during cancellation", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Освободившийся слот должен сразу появиться в доступности
	if err := s.cache.InvalidateMonth(ctx, booking.BusinessID, booking.BookingDate); err != nil {
		s.logger.Warn("Cancel: failed to invalidate availability cache for business=%d: %v", booking.BusinessID, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkUserAccess проверяет, что пользователь владелец бронирования или менеджер бизнеса
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.UserID == userID {
		return nil
	}
	return s.checkManagerAccess(ctx, booking.BusinessID, userID)
}

// checkManagerAccess проверяет, что пользователь является менеджером бизнеса
func (s *Service) checkManagerAccess(ctx context.Context, businessID int64, userID int64) error {
	business, err := s.businessClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			s.logger.Warn("checkManagerAccess: business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get business: %v", ErrInternal, err)
	}

	if !business.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of business=%d", userID, businessID)
		return ErrAccessDenied
	}

	return nil
}
