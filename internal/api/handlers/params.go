package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

// ErrInvalidParam некорректный параметр пути или запроса
var ErrInvalidParam = errors.New("handlers: invalid parameter")

// PathInt64 читает положительный int64 из переменной пути
func PathInt64(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrInvalidParam
	}
	return value, nil
}

// QueryInt64 читает необязательный положительный int64 из query
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return nil, ErrInvalidParam
	}
	return &value, nil
}

// QueryDate читает обязательную дату YYYY-MM-DD из query
func QueryDate(r *http.Request, name string, loc *time.Location) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, ErrInvalidParam
	}
	date, err := time.ParseInLocation(domain.DateFormat, raw, loc)
	if err != nil {
		return time.Time{}, ErrInvalidParam
	}
	return date, nil
}

// QueryMonth читает пару year/month из query
func QueryMonth(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, ErrInvalidParam
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, ErrInvalidParam
	}
	return year, time.Month(month), nil
}
