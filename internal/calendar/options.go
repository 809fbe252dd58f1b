package calendar

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultDayCacheSize = 512
)

type options struct {
	fetchTimeout       time.Duration
	clock              TimeProvider
	location           *time.Location
	granularityMinutes int
	minNoticeMinutes   int
	dayCacheSize       int
}

func defaultOptions() options {
	return options{
		fetchTimeout:       defaultFetchTimeout,
		clock:              &RealTimeProvider{},
		location:           time.Local,
		granularityMinutes: domain.DefaultGranularityMinutes,
		minNoticeMinutes:   domain.DefaultMinNoticeMinutes,
		dayCacheSize:       defaultDayCacheSize,
	}
}

// Option настройка календаря
type Option func(*options)

// WithFetchTimeout ограничивает ожидание загрузки расписания и слотов
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

// WithClock подменяет источник текущего времени
func WithClock(clock TimeProvider) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLocation задаёт часовой пояс, в котором интерпретируются даты
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithGranularity задаёт шаг слотов в минутах
func WithGranularity(minutes int) Option {
	return func(o *options) {
		if minutes > 0 {
			o.granularityMinutes = minutes
		}
	}
}

// WithMinNotice задаёт минимальное время до начала слота на сегодня
func WithMinNotice(minutes int) Option {
	return func(o *options) {
		if minutes >= 0 {
			o.minNoticeMinutes = minutes
		}
	}
}

// WithDayCacheSize задаёт размер LRU кэша доступности по дням
func WithDayCacheSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.dayCacheSize = size
		}
	}
}
