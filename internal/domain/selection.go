package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// SelectionState current picks of the user in the calendar
type SelectionState struct {
	EmployeeID *int64
	Date       *time.Time
	Time       *types.TimeString
}

// BookingDraft booking request assembled at submission time.
// Built once from the selection and never modified afterwards.
type BookingDraft struct {
	UserID         int64
	BusinessID     int64
	ServiceID      int64
	EmployeeID     *int64
	Date           time.Time
	Time           types.TimeString
	Notes          *string
	IdempotencyKey string
}

// ServiceInfo service attributes that affect availability
type ServiceInfo struct {
	ID                  int64
	BusinessID          int64
	Name                string
	DurationMinutes     int
	Price               *float64
	AssignedEmployeeIDs []int64
}

// IsAssigned returns true if the employee provides the service
func (s *ServiceInfo) IsAssigned(employeeID int64) bool {
	for _, id := range s.AssignedEmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// RequiresEmployee returns true if the client must pick an employee
func (s *ServiceInfo) RequiresEmployee() bool {
	return len(s.AssignedEmployeeIDs) > 0
}
