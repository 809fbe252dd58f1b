package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

const minutesPerDay = 24 * 60

// Generator вычисляет свободные слоты по недельному расписанию и занятым интервалам.
// Не хранит состояния: одинаковый Input всегда даёт одинаковый результат
type Generator struct {
	logger Logger
}

// NewGenerator создает генератор слотов
func NewGenerator(logger Logger) *Generator {
	return &Generator{logger: logger}
}

// Slots возвращает отсортированный список времён начала свободных слотов
func (g *Generator) Slots(in Input) []types.TimeString {
	return g.Day(in).Slots
}

// Day возвращает доступность одного дня.
// Open=false означает, что день выходной; Open=true и пустые Slots - всё занято или прошло
func (g *Generator) Day(in Input) domain.DayAvailability {
	date := dateOnly(in.Date)
	result := domain.DayAvailability{
		Date:  date,
		Slots: []types.TimeString{},
	}

	// Рабочие интервалы дня недели, некорректные пропускаем
	ranges := g.validRanges(in.Schedule, date)
	if len(ranges) == 0 {
		return result
	}
	result.Open = true

	step := in.GranularityMinutes
	if step <= 0 {
		step = domain.DefaultGranularityMinutes
	}
	duration := in.DurationMinutes
	if duration <= 0 {
		duration = step
	}

	// Граница по текущему времени
	minStart, past := earliestStart(date, in.Now, in.MinNoticeMinutes)
	if past {
		return result
	}

	// Занятые интервалы этой даты в нужной области видимости
	blocked := blockingIntervals(in.Booked, date, in.Scope)

	// Кандидаты с фиксированным шагом, слот целиком внутри интервала
	seen := make(map[int]struct{})
	starts := make([]int, 0)
	for _, r := range ranges {
		rangeEnd := r.End.Minutes()
		for start := r.Start.Minutes(); start+duration <= rangeEnd; start += step {
			if start < minStart {
				continue
			}
			if isBlocked(blocked, start, start+duration) {
				continue
			}
			if _, ok := seen[start]; ok {
				continue
			}
			seen[start] = struct{}{}
			starts = append(starts, start)
		}
	}

	// По возрастанию
	sort.Ints(starts)
	for _, start := range starts {
		result.Slots = append(result.Slots, types.FromMinutes(start))
	}
	result.Available = len(result.Slots) > 0

	return result
}

// Without убирает из уже посчитанного дня слоты, пересекающиеся с интервалом в области scope.
// Длительность слота определяется так же, как в Day
func (g *Generator) Without(day domain.DayAvailability, interval domain.BookedInterval, durationMinutes, granularityMinutes int, scope Scope) domain.DayAvailability {
	result := day.Clone()

	blocked := blockingIntervals([]domain.BookedInterval{interval}, day.Date, scope)
	if len(blocked) == 0 {
		return result
	}

	duration := durationMinutes
	if duration <= 0 {
		duration = granularityMinutes
	}
	if duration <= 0 {
		duration = domain.DefaultGranularityMinutes
	}

	kept := make([]types.TimeString, 0, len(result.Slots))
	for _, slot := range result.Slots {
		start := slot.Minutes()
		if isBlocked(blocked, start, start+duration) {
			continue
		}
		kept = append(kept, slot)
	}
	result.Slots = kept
	result.Available = len(kept) > 0
	return result
}

// Trim убирает слоты, которые к моменту now уже прошли или не укладываются в minNoticeMinutes.
// Нужен для дней, посчитанных раньше: сам Day фильтрует только на момент вызова
func (g *Generator) Trim(day domain.DayAvailability, now time.Time, minNoticeMinutes int) domain.DayAvailability {
	result := day.Clone()

	minStart, past := earliestStart(dateOnly(day.Date), now, minNoticeMinutes)
	if past {
		result.Slots = []types.TimeString{}
		result.Available = false
		return result
	}
	if minStart == 0 {
		return result
	}

	kept := make([]types.TimeString, 0, len(result.Slots))
	for _, slot := range result.Slots {
		if slot.Minutes() >= minStart {
			kept = append(kept, slot)
		}
	}
	result.Slots = kept
	result.Available = len(kept) > 0
	return result
}

// earliestStart минимальная минута начала слота на дату date; past - дата уже прошла.
// Нулевое now отключает фильтр
func earliestStart(date, now time.Time, minNoticeMinutes int) (int, bool) {
	if now.IsZero() {
		return 0, false
	}
	local := now.In(date.Location())
	today := dateOnly(local)
	switch {
	case date.Before(today):
		return 0, true
	case date.Equal(today):
		return local.Hour()*60 + local.Minute() + minNoticeMinutes, false
	default:
		return 0, false
	}
}

func (g *Generator) validRanges(schedule *domain.WeeklySchedule, date time.Time) []domain.TimeRange {
	weekday := domain.WeekdayOf(date)
	ranges := schedule.RangesFor(weekday)

	valid := make([]domain.TimeRange, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsValid() || r.End.Minutes() > minutesPerDay {
			g.logger.Warn("availability: skipping malformed range %q-%q on %s", r.Start, r.End, weekday)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

type span struct {
	start, end int
}

// blockingIntervals отбирает интервалы, которые на дату date занимают время в области scope
func blockingIntervals(booked []domain.BookedInterval, date time.Time, scope Scope) []span {
	result := make([]span, 0, len(booked))
	for _, interval := range booked {
		if !isSameDay(interval.Date, date) {
			continue
		}
		if !scope.blocks(interval) {
			continue
		}
		start, end := interval.Start.Minutes(), interval.End.Minutes()
		if start < 0 || end <= start {
			continue
		}
		result = append(result, span{start: start, end: end})
	}
	return result
}

// isBlocked проверяет строгое пересечение [start, end) с занятыми интервалами.
// Интервалы, которые только граничат со слотом, пересечением не считаются
func isBlocked(blocked []span, start, end int) bool {
	for _, b := range blocked {
		if b.start < end && b.end > start {
			return true
		}
	}
	return false
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
