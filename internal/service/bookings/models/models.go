package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"-"`
	CancellationReason string `json:"cancellationReason"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID      int64   `json:"userId"`
	RequesterID int64   `json:"-"`
	Status      *string `json:"status,omitempty"`
}

// GetBookedIntervalsRequest запрос занятых интервалов за день или месяц
type GetBookedIntervalsRequest struct {
	BusinessID int64
	EmployeeID *int64
	Date       *time.Time // день; если nil - месяц Year/Month
	Year       int
	Month      time.Month
	Location   *time.Location
}

// Period возвращает границы запрошенного периода
func (r *GetBookedIntervalsRequest) Period() (time.Time, time.Time) {
	if r.Date != nil {
		return *r.Date, *r.Date
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(r.Year, r.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, -1)
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"userId"`
	BusinessID      int64  `json:"businessId"`
	ServiceID       int64  `json:"serviceId"`
	EmployeeID      *int64 `json:"employeeId,omitempty"`
	BookingDate     string `json:"bookingDate"` // "2026-03-02"
	StartTime       string `json:"startTime"`   // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	Notes              *string `json:"notes,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// BookedIntervalResponse занятый интервал без персональных данных клиента
type BookedIntervalResponse struct {
	BookingID  int64  `json:"bookingId"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
}

// BookedIntervalsResponse ответ со списком занятых интервалов
type BookedIntervalsResponse struct {
	BusinessID int64                    `json:"businessId"`
	Intervals  []BookedIntervalResponse `json:"intervals"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		BusinessID:         b.BusinessID,
		ServiceID:          b.ServiceID,
		EmployeeID:         b.EmployeeID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		DurationMinutes:    b.DurationMinutes,
		Status:             string(b.Status),
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainIntervals конвертирует интервалы в DTO
func FromDomainIntervals(businessID int64, intervals []domain.BookedInterval) *BookedIntervalsResponse {
	resp := &BookedIntervalsResponse{
		BusinessID: businessID,
		Intervals:  make([]BookedIntervalResponse, len(intervals)),
	}
	for i, interval := range intervals {
		resp.Intervals[i] = BookedIntervalResponse{
			BookingID:  interval.BookingID,
			Date:       interval.Date.Format(domain.DateFormat),
			Start:      interval.Start.String(),
			End:        interval.End.String(),
			Status:     string(interval.Status),
			EmployeeID: interval.EmployeeID,
		}
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
