package availability

import "errors"

var (
	// ErrCache возвращается при ошибках Redis
	ErrCache = errors.New("availability.cache: redis error")

	// ErrDecode возвращается при повреждённой записи в кэше
	ErrDecode = errors.New("availability.cache: failed to decode entry")
)
