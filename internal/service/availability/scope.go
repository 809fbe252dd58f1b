package availability

import "github.com/m04kA/SMC-BookingCalendar/internal/domain"

// blocks решает, блокирует ли интервал слоты в заданной области видимости
//
// Правила:
// - неактивные бронирования (отменённые, неявка) не блокируют никогда;
// - для конкретного сотрудника блокируют его бронирования и бронирования без сотрудника;
// - без сотрудника, но со списком назначенных на услугу - бронирования этих сотрудников
//   и бронирования без сотрудника;
// - без сотрудника и без списка - блокирует любое активное бронирование.
func (s Scope) blocks(interval domain.BookedInterval) bool {
	if !interval.IsActive() {
		return false
	}

	if interval.EmployeeID == nil {
		return true
	}

	if s.EmployeeID != nil {
		return *interval.EmployeeID == *s.EmployeeID
	}

	if len(s.AssignedEmployeeIDs) == 0 {
		return true
	}

	for _, id := range s.AssignedEmployeeIDs {
		if id == *interval.EmployeeID {
			return true
		}
	}
	return false
}
