package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrEmployeeRequired возвращается, когда услугу оказывают конкретные сотрудники, а сотрудник не выбран
	ErrEmployeeRequired = errors.New("create_booking: employee is required for this service")

	// ErrEmployeeNotAssigned возвращается, когда сотрудник не оказывает услугу
	ErrEmployeeNotAssigned = errors.New("create_booking: employee does not provide this service")

	// ErrForbiddenRole возвращается, когда бронировать пытается не клиент
	ErrForbiddenRole = errors.New("create_booking: only clients can create bookings")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrBusinessClosed возвращается, когда бизнес не работает в указанную дату
	ErrBusinessClosed = errors.New("create_booking: business is closed on this date")

	// ErrSlotNotAvailable возвращается, когда слот уже занят или не входит в расписание
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrTooLateToBook возвращается, когда до начала слота осталось меньше minNoticeMinutes
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
