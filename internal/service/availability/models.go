package availability

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

// Scope определяет, чьи бронирования блокируют слоты
type Scope struct {
	// EmployeeID сотрудник, для которого считаются слоты (nil - весь бизнес)
	EmployeeID *int64
	// AssignedEmployeeIDs сотрудники, оказывающие услугу.
	// Используется только когда EmployeeID не задан
	AssignedEmployeeIDs []int64
}

// Input входные данные генерации слотов на один день
type Input struct {
	Schedule *domain.WeeklySchedule
	Booked   []domain.BookedInterval
	Date     time.Time

	// GranularityMinutes шаг между началами слотов (0 - domain.DefaultGranularityMinutes)
	GranularityMinutes int
	// DurationMinutes длительность услуги (0 - равна шагу)
	DurationMinutes int

	Scope Scope

	// Now текущее время; нулевое значение отключает фильтр прошедших слотов
	Now time.Time
	// MinNoticeMinutes минимальное время до начала слота, если дата - сегодня
	MinNoticeMinutes int
}

// MonthInput входные данные для построения доступности на месяц
type MonthInput struct {
	Schedule *domain.WeeklySchedule
	Booked   []domain.BookedInterval
	Year     int
	Month    time.Month
	Location *time.Location

	GranularityMinutes int
	DurationMinutes    int
	Scope              Scope
	Now                time.Time
	MinNoticeMinutes   int
}

func (in MonthInput) dayInput(date time.Time, booked []domain.BookedInterval) Input {
	return Input{
		Schedule:           in.Schedule,
		Booked:             booked,
		Date:               date,
		GranularityMinutes: in.GranularityMinutes,
		DurationMinutes:    in.DurationMinutes,
		Scope:              in.Scope,
		Now:                in.Now,
		MinNoticeMinutes:   in.MinNoticeMinutes,
	}
}
