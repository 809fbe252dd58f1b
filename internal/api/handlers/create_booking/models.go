package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-BookingCalendar/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BusinessID  int64   `json:"businessId"`
	ServiceID   int64   `json:"serviceId"`
	EmployeeID  *int64  `json:"employeeId,omitempty"`
	BookingDate string  `json:"bookingDate"` // "2026-03-02"
	StartTime   string  `json:"startTime"`   // "10:00"
	Notes       *string `json:"notes,omitempty"`
}

var (
	errInvalidDate = errors.New("invalid bookingDate")
	errInvalidTime = errors.New("invalid startTime")
)

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(loc *time.Location) (*createBooking.Request, error) {
	bookingDate, err := time.ParseInLocation(domain.DateFormat, r.BookingDate, loc)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	return &createBooking.Request{
		BusinessID: r.BusinessID,
		ServiceID:  r.ServiceID,
		EmployeeID: r.EmployeeID,
		Date:       bookingDate,
		StartTime:  startTime,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *models.BookingResponse {
	return models.FromDomainBooking(resp.Booking)
}
