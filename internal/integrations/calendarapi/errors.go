package calendarapi

import "errors"

var (
	// ErrNotFound возвращается, когда бизнес или расписание не найдены (404)
	ErrNotFound = errors.New("calendarapi client: not found")

	// ErrConflict возвращается, когда выбранный слот уже занят (409)
	ErrConflict = errors.New("calendarapi client: slot conflict")

	// ErrValidation возвращается, когда сервер отклонил запрос как некорректный (400, 422)
	ErrValidation = errors.New("calendarapi client: validation failed")

	// ErrUnauthorized возвращается при отсутствии или недостатке прав (401, 403)
	ErrUnauthorized = errors.New("calendarapi client: unauthorized")

	// ErrServer возвращается при ошибках сервера (5xx)
	ErrServer = errors.New("calendarapi client: server error")

	// ErrNetwork возвращается, когда запрос не дошёл до сервера или истёк таймаут
	ErrNetwork = errors.New("calendarapi client: network error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("calendarapi client: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("calendarapi client: internal error")
)
