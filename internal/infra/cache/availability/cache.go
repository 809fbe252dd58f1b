package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/metrics"
)

const scanBatch = 100

// Cache кэш доступности по месяцам в Redis.
// Запись удаляется при любом изменении бронирований или расписания бизнеса за месяц
type Cache struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	location *time.Location
	metrics  *metrics.Metrics
}

// NewCache создает кэш; m может быть nil
func NewCache(rdb redis.Cmdable, ttl time.Duration, location *time.Location, m *metrics.Metrics) *Cache {
	if location == nil {
		location = time.UTC
	}
	return &Cache{rdb: rdb, ttl: ttl, location: location, metrics: m}
}

// Get возвращает доступность за месяц; false - записи нет
func (c *Cache) Get(ctx context.Context, key MonthKey) ([]domain.DayAvailability, bool, error) {
	raw, err := c.rdb.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe("miss")
		return nil, false, nil
	}
	if err != nil {
		c.observe("error")
		return nil, false, fmt.Errorf("%w: Get %s: %v", ErrCache, key, err)
	}

	var entries []dayEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.observe("error")
		return nil, false, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}

	days, err := fromEntries(entries, c.location)
	if err != nil {
		c.observe("error")
		return nil, false, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}

	c.observe("hit")
	return days, true, nil
}

// Set сохраняет доступность за месяц
func (c *Cache) Set(ctx context.Context, key MonthKey, days []domain.DayAvailability) error {
	raw, err := json.Marshal(toEntries(days))
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrCache, key, err)
	}

	if err := c.rdb.Set(ctx, key.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set %s: %v", ErrCache, key, err)
	}
	return nil
}

// InvalidateMonth удаляет все записи бизнеса за месяц, в который попадает date
func (c *Cache) InvalidateMonth(ctx context.Context, businessID int64, date time.Time) error {
	return c.deleteByPattern(ctx, businessMonthPattern(businessID, date.Year(), date.Month()))
}

// InvalidateBusiness удаляет все записи бизнеса (после изменения расписания)
func (c *Cache) InvalidateBusiness(ctx context.Context, businessID int64) error {
	return c.deleteByPattern(ctx, fmt.Sprintf("%s:%d:*", keyPrefix, businessID))
}

func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	keys := make([]string, 0)
	iter := c.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %v", ErrCache, pattern, err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: Del %s: %v", ErrCache, pattern, err)
	}
	return nil
}

func (c *Cache) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CacheLookups.WithLabelValues(result).Inc()
}

// Nop кэш, который ничего не хранит (Redis выключен)
type Nop struct{}

func (Nop) Get(context.Context, MonthKey) ([]domain.DayAvailability, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, MonthKey, []domain.DayAvailability) error { return nil }

func (Nop) InvalidateMonth(context.Context, int64, time.Time) error { return nil }

func (Nop) InvalidateBusiness(context.Context, int64) error { return nil }
