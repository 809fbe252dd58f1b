package calendar

import "github.com/m04kA/SMC-BookingCalendar/internal/domain"

// Scope бизнес и услуга, для которых открыт календарь
type Scope struct {
	BusinessID          int64
	ServiceID           int64
	DurationMinutes     int
	AssignedEmployeeIDs []int64
	// RequireEmployee сотрудник должен быть выбран до выбора дня
	RequireEmployee bool
}

// ScopeFromService строит область календаря по данным услуги
func ScopeFromService(service domain.ServiceInfo) Scope {
	assigned := make([]int64, len(service.AssignedEmployeeIDs))
	copy(assigned, service.AssignedEmployeeIDs)

	return Scope{
		BusinessID:          service.BusinessID,
		ServiceID:           service.ID,
		DurationMinutes:     service.DurationMinutes,
		AssignedEmployeeIDs: assigned,
		RequireEmployee:     service.RequiresEmployee(),
	}
}

func (s Scope) isAssigned(employeeID int64) bool {
	if len(s.AssignedEmployeeIDs) == 0 {
		return true
	}
	for _, id := range s.AssignedEmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}
