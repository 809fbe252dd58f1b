package create_booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.UserRole != domain.RoleClient {
		return ErrForbiddenRole
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.IdempotencyKey != nil {
		if _, err := uuid.Parse(*req.IdempotencyKey); err != nil {
			return fmt.Errorf("%w: idempotency key must be a UUID", ErrInvalidInput)
		}
	}

	return nil
}

// validateEmployee проверяет выбор сотрудника для услуги
func validateEmployee(service domain.ServiceInfo, employeeID *int64) error {
	if !service.RequiresEmployee() {
		return nil
	}
	if employeeID == nil {
		return ErrEmployeeRequired
	}
	if !service.IsAssigned(*employeeID) {
		return ErrEmployeeNotAssigned
	}
	return nil
}

// validateDate проверяет, что дата подходит для бронирования
func validateDate(requestDate time.Time, now time.Time, advanceBookingDays int) error {
	today := dateOnly(now)
	date := time.Date(requestDate.Year(), requestDate.Month(), requestDate.Day(), 0, 0, 0, 0, now.Location())

	if date.Before(today) {
		return ErrInvalidDate
	}

	if advanceBookingDays > 0 && date.After(today.AddDate(0, 0, advanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateBookingTime проверяет, что до начала слота осталось не меньше minNoticeMinutes
func validateBookingTime(date time.Time, startTime types.TimeString, now time.Time, minNoticeMinutes int) error {
	start := startTime.On(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location()))
	if start.Before(now.Add(time.Duration(minNoticeMinutes) * time.Minute)) {
		return fmt.Errorf("%w: slot %s starts before %d minutes notice", ErrTooLateToBook, startTime, minNoticeMinutes)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
