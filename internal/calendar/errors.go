package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed возвращается, когда не удалось загрузить расписание или бронирования (сеть, таймаут, сервер)
	ErrFetchFailed = errors.New("calendar: fetch failed")

	// ErrScheduleUnavailable возвращается для дня без рабочих часов
	ErrScheduleUnavailable = errors.New("calendar: no working hours on this date")

	// ErrDayNotAvailable возвращается при выборе дня вне загруженного месяца или без свободных слотов
	ErrDayNotAvailable = errors.New("calendar: day is not available")

	// ErrTimeNotAvailable возвращается при выборе времени, которого нет в загруженном списке слотов
	ErrTimeNotAvailable = errors.New("calendar: time is not available")

	// ErrNoDaySelected возвращается при выборе времени без выбранного дня
	ErrNoDaySelected = errors.New("calendar: no day selected")

	// ErrEmployeeRequired возвращается, когда услуга требует выбора сотрудника
	ErrEmployeeRequired = errors.New("calendar: employee must be selected first")

	// ErrEmployeeNotAssigned возвращается, когда сотрудник не оказывает услугу
	ErrEmployeeNotAssigned = errors.New("calendar: employee does not provide this service")

	// ErrSlotConflict возвращается, когда слот заняли между выбором и отправкой
	ErrSlotConflict = errors.New("calendar: slot is no longer available")

	// ErrValidation возвращается при неполном или несогласованном выборе
	ErrValidation = errors.New("calendar: invalid selection")
)

// BookingErrorKind класс ошибки создания бронирования
type BookingErrorKind string

const (
	KindValidation   BookingErrorKind = "validation"
	KindSlotConflict BookingErrorKind = "conflict"
	KindServer       BookingErrorKind = "server"
	KindNetwork      BookingErrorKind = "network"
)

// BookingError ошибка отправки бронирования
type BookingError struct {
	Kind BookingErrorKind
	Err  error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("booking %s error: %v", e.Kind, e.Err)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять класс ошибки через errors.Is(err, ErrSlotConflict)
func (e *BookingError) Is(target error) bool {
	switch target {
	case ErrSlotConflict:
		return e.Kind == KindSlotConflict
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// Retryable true, если повтор с тем же черновиком имеет смысл
func (e *BookingError) Retryable() bool {
	return e.Kind == KindServer || e.Kind == KindNetwork
}
