package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pendiente"
	StatusConfirmed BookingStatus = "confirmada"
	StatusCompleted BookingStatus = "completada"
	StatusCancelled BookingStatus = "cancelada"
	StatusNoShow    BookingStatus = "no_asistio"
)

// IsValid returns true for a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActive returns true if a booking in this status still occupies its time
func (s BookingStatus) IsActive() bool {
	for _, inactive := range InactiveStatuses {
		if s == inactive {
			return false
		}
	}
	return true
}

// Booking represents an appointment of a client with a business
type Booking struct {
	ID              int64
	UserID          int64
	BusinessID      int64
	ServiceID       int64
	EmployeeID      *int64 // nil = booked against the business, not a specific employee
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus
	Notes           *string
	IdempotencyKey  *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking blocks availability
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Interval returns the time span occupied by the booking
func (b *Booking) Interval() BookedInterval {
	end, err := b.StartTime.AddMinutes(b.DurationMinutes)
	if err != nil {
		end = types.FromMinutes(24 * 60)
	}
	return BookedInterval{
		BookingID:  b.ID,
		Date:       b.BookingDate,
		Start:      b.StartTime,
		End:        end,
		Status:     b.Status,
		EmployeeID: b.EmployeeID,
	}
}

// BookedInterval is an existing reservation occupying [Start, End) on Date
type BookedInterval struct {
	BookingID  int64
	Date       time.Time
	Start      types.TimeString
	End        types.TimeString
	Status     BookingStatus
	EmployeeID *int64
}

// IsActive returns true if the interval blocks availability
func (i BookedInterval) IsActive() bool {
	return i.Status.IsActive()
}

// Overlaps reports whether [start, end) minutes intersect the interval.
// Touching intervals (one ends where the other starts) do not overlap.
func (i BookedInterval) Overlaps(start, end int) bool {
	s, e := i.Start.Minutes(), i.End.Minutes()
	if s < 0 || e <= s {
		return false
	}
	return s < end && e > start
}

// BookingsFilter filter for business bookings
type BookingsFilter struct {
	BusinessID      int64          // required
	EmployeeID      *int64         // nil - all employees
	StartDate       *time.Time     // nil - no lower bound
	EndDate         *time.Time     // nil - no upper bound
	Status          *BookingStatus // optional
	IncludeInactive bool           // include cancelled / no-show bookings
}
