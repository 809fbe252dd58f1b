package get_month_availability

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrEmployeeNotAssigned возвращается, когда сотрудник не оказывает услугу
	ErrEmployeeNotAssigned = errors.New("employee does not provide this service")

	// ErrInvalidMonth возвращается для месяца, который целиком в прошлом
	ErrInvalidMonth = errors.New("invalid month")

	// ErrMonthTooFarInFuture возвращается, когда месяц начинается за горизонтом бронирования
	ErrMonthTooFarInFuture = errors.New("month is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
