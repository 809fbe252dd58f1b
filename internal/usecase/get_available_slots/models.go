package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// Settings правила генерации слотов
type Settings struct {
	GranularityMinutes int
	AdvanceBookingDays int // 0 = без ограничений
	MinNoticeMinutes   int
}

// Request модель запроса на получение доступных слотов
type Request struct {
	UserID     int64     // ID пользователя (для логирования, не влияет на результат)
	BusinessID int64     // ID бизнеса
	ServiceID  int64     // ID услуги
	EmployeeID *int64    // ID сотрудника (опционально)
	Date       time.Time // Дата (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time
	BusinessID      int64
	ServiceID       int64
	EmployeeID      *int64
	DurationMinutes int
	Open            bool               // день рабочий по расписанию
	Slots           []types.TimeString // начала свободных слотов по возрастанию
}
