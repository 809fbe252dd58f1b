package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// Settings правила бронирования
type Settings struct {
	GranularityMinutes int
	AdvanceBookingDays int // 0 = без ограничений
	MinNoticeMinutes   int
}

// Request модель запроса на создание бронирования
type Request struct {
	UserID         int64            // ID пользователя из сессии
	UserRole       string           // Роль пользователя из сессии
	BusinessID     int64            // ID бизнеса
	ServiceID      int64            // ID услуги
	EmployeeID     *int64           // ID сотрудника (опционально)
	Date           time.Time        // Дата бронирования (без времени)
	StartTime      types.TimeString // Время начала слота (например, "10:00")
	Notes          *string          // Заметки клиента (опционально)
	IdempotencyKey *string          // Ключ повтора запроса (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking  *domain.Booking
	Replayed bool // бронирование уже было создано этим ключом идемпотентности
}
