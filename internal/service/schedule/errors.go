package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у бизнеса нет расписания
	ErrScheduleNotFound = errors.New("schedule: schedule not found")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("schedule: business not found")

	// ErrEmployeeNotFound возвращается, когда сотрудник не работает в бизнесе
	ErrEmployeeNotFound = errors.New("schedule: employee not found")

	// ErrAccessDenied возвращается, когда пользователь не менеджер бизнеса
	ErrAccessDenied = errors.New("schedule: access denied")

	// ErrInvalidSchedule возвращается при некорректном расписании
	ErrInvalidSchedule = errors.New("schedule: invalid schedule")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule: internal error")
)
