package businessservice

import "github.com/m04kA/SMC-BookingCalendar/internal/domain"

// Business модель бизнеса из BusinessService
type Business struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Timezone    string  `json:"timezone,omitempty"`
	ManagerIDs  []int64 `json:"managerIds"`
	EmployeeIDs []int64 `json:"employeeIds"`
}

// IsManager проверяет, что пользователь управляет бизнесом
func (b *Business) IsManager(userID int64) bool {
	for _, id := range b.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasEmployee проверяет, что сотрудник работает в бизнесе
func (b *Business) HasEmployee(employeeID int64) bool {
	for _, id := range b.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// Service модель услуги из BusinessService
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"businessId"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"durationMinutes"`
	Price           *float64 `json:"price,omitempty"`
	EmployeeIDs     []int64  `json:"employeeIds"` // сотрудники, оказывающие услугу
}

// ToDomain конвертирует услугу в domain.ServiceInfo
func (s *Service) ToDomain() domain.ServiceInfo {
	assigned := make([]int64, len(s.EmployeeIDs))
	copy(assigned, s.EmployeeIDs)
	return domain.ServiceInfo{
		ID:                  s.ID,
		BusinessID:          s.BusinessID,
		Name:                s.Name,
		DurationMinutes:     s.DurationMinutes,
		Price:               s.Price,
		AssignedEmployeeIDs: assigned,
	}
}

// ErrorResponse модель ошибки от BusinessService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
