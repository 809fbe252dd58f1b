package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// Phase шаг выбора в календаре
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMonthSelected
	PhaseDaySelected
	PhaseTimeSelected
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMonthSelected:
		return "month_selected"
	case PhaseDaySelected:
		return "day_selected"
	case PhaseTimeSelected:
		return "time_selected"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// View неизменяемый снимок состояния календаря для подписчиков.
// Version растёт с каждым изменением: снимок с меньшей версией можно отбросить
type View struct {
	Version   uint64
	Phase     Phase
	Year      int
	Month     time.Month
	Selection domain.SelectionState
	// Days доступность дней выбранного месяца (nil, пока месяц не загружен)
	Days []domain.DayAvailability
	// Slots слоты выбранного дня
	Slots []types.TimeString

	MonthLoading bool
	DayLoading   bool
	Err          error

	LastBooking *domain.Booking
}

type pendingInterval struct {
	interval domain.BookedInterval
	seq      uint64
}

type dayKey struct {
	employee int64
	date     string
}

// Store единственный владелец состояния календаря.
// Все изменения идут под mu, подписчики получают снимки вне блокировки
type Store struct {
	mu sync.Mutex

	scope     Scope
	opts      options
	generator *availability.Generator
	logger    Logger

	selection domain.SelectionState
	year      int
	month     time.Month
	confirmed bool

	schedule         *domain.WeeklySchedule
	scheduleLoaded   bool
	scheduleEmployee int64
	booked           []domain.BookedInterval // интервалы выбранного месяца
	index            *MonthIndex
	daySlots         *domain.DayAvailability
	days             *lru.Cache[dayKey, domain.DayAvailability]

	monthSeq     uint64
	daySeq       uint64
	monthLoading bool
	dayLoading   bool
	err          error
	retry        func(ctx context.Context) error

	lastBooking *domain.Booking

	// pending интервалы созданных бронирований, которые сервер мог ещё не отдать;
	// bookingSeq номер последнего созданного бронирования
	pending    []pendingInterval
	bookingSeq uint64

	version     uint64
	subscribers map[int]func(View)
	nextSubID   int
}

// NewStore создает хранилище состояния календаря для услуги
func NewStore(scope Scope, generator *availability.Generator, logger Logger, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	days, err := lru.New[dayKey, domain.DayAvailability](o.dayCacheSize)
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to create day cache: %w", err)
	}

	return &Store{
		scope:       scope,
		opts:        o,
		generator:   generator,
		logger:      logger,
		days:        days,
		subscribers: make(map[int]func(View)),
	}, nil
}

// Subscribe регистрирует наблюдателя и сразу отдаёт ему текущий снимок
func (s *Store) Subscribe(fn func(View)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	view := s.viewLocked()
	s.mu.Unlock()

	fn(view)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// View возвращает текущий снимок состояния
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Scope возвращает область календаря
func (s *Store) Scope() Scope {
	return s.scope
}

// update выполняет fn под блокировкой; если fn вернула true, публикует новый снимок
func (s *Store) update(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	view := s.viewLocked()
	subscribers := make([]func(View), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subscribers = append(subscribers, sub)
	}
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub(view)
	}
}

func (s *Store) viewLocked() View {
	view := View{
		Version:      s.version,
		Phase:        s.phaseLocked(),
		Year:         s.year,
		Month:        s.month,
		Selection:    copySelection(s.selection),
		MonthLoading: s.monthLoading,
		DayLoading:   s.dayLoading,
		Err:          s.err,
		LastBooking:  s.lastBooking,
	}
	if s.index.Matches(s.year, s.month, s.employeeKeyLocked()) {
		view.Days = s.index.Days()
	}
	if s.daySlots != nil {
		view.Slots = s.daySlots.Clone().Slots
	}
	return view
}

func (s *Store) phaseLocked() Phase {
	switch {
	case s.confirmed:
		return PhaseConfirmed
	case s.selection.Time != nil:
		return PhaseTimeSelected
	case s.selection.Date != nil:
		return PhaseDaySelected
	case s.year != 0:
		return PhaseMonthSelected
	default:
		return PhaseIdle
	}
}

func (s *Store) employeeKeyLocked() int64 {
	return employeeKey(s.selection.EmployeeID)
}

func (s *Store) availabilityScopeLocked() availability.Scope {
	return availability.Scope{
		EmployeeID:          copyID(s.selection.EmployeeID),
		AssignedEmployeeIDs: s.scope.AssignedEmployeeIDs,
	}
}

func (s *Store) monthInputLocked(schedule *domain.WeeklySchedule, booked []domain.BookedInterval, year int, month time.Month) availability.MonthInput {
	return availability.MonthInput{
		Schedule:           schedule,
		Booked:             booked,
		Year:               year,
		Month:              month,
		Location:           s.opts.location,
		GranularityMinutes: s.opts.granularityMinutes,
		DurationMinutes:    s.scope.DurationMinutes,
		Scope:              s.availabilityScopeLocked(),
		Now:                s.opts.clock.Now(),
		MinNoticeMinutes:   s.opts.minNoticeMinutes,
	}
}

func (s *Store) dayInputLocked(schedule *domain.WeeklySchedule, booked []domain.BookedInterval, date time.Time) availability.Input {
	return availability.Input{
		Schedule:           schedule,
		Booked:             booked,
		Date:               date,
		GranularityMinutes: s.opts.granularityMinutes,
		DurationMinutes:    s.scope.DurationMinutes,
		Scope:              s.availabilityScopeLocked(),
		Now:                s.opts.clock.Now(),
		MinNoticeMinutes:   s.opts.minNoticeMinutes,
	}
}

// rebuildIndexLocked пересчитывает весь месяц по загруженным расписанию и интервалам
func (s *Store) rebuildIndexLocked() {
	days := s.generator.Month(s.monthInputLocked(s.schedule, s.booked, s.year, s.month))
	employee := s.employeeKeyLocked()
	s.index = NewMonthIndex(s.year, s.month, employee, days)
	for _, day := range days {
		s.days.Add(dayKey{employee: employee, date: day.Date.Format(domain.DateFormat)}, day)
	}
}

// computeDayLocked пересчитывает один день выбранного месяца
func (s *Store) computeDayLocked(date time.Time) domain.DayAvailability {
	return s.generator.Day(s.dayInputLocked(s.schedule, s.booked, date))
}

// patchDayLocked точечно обновляет день в индексе и в кэше
func (s *Store) patchDayLocked(day domain.DayAvailability) {
	employee := s.employeeKeyLocked()
	if s.index.Matches(s.year, s.month, employee) {
		s.index.Put(day)
	}
	s.days.Add(dayKey{employee: employee, date: day.Date.Format(domain.DateFormat)}, day.Clone())
}

// replaceDayIntervalsLocked заменяет интервалы одной даты свежими данными
func (s *Store) replaceDayIntervalsLocked(date time.Time, fresh []domain.BookedInterval) {
	kept := make([]domain.BookedInterval, 0, len(s.booked)+len(fresh))
	for _, interval := range s.booked {
		if !sameDay(interval.Date, date) {
			kept = append(kept, interval)
		}
	}
	for _, interval := range fresh {
		if sameDay(interval.Date, date) {
			kept = append(kept, interval)
		}
	}
	s.booked = kept
}

// mergePendingLocked дополняет ответ сервера интервалами бронирований, созданных после отправки
// запроса (seen - bookingSeq на момент запроса). Бронирования, созданные до запроса, сервер уже
// учёл: для дат, которые покрывает ответ, они снимаются из ожидания
func (s *Store) mergePendingLocked(booked []domain.BookedInterval, seen uint64, covers func(time.Time) bool) []domain.BookedInterval {
	result := make([]domain.BookedInterval, len(booked), len(booked)+len(s.pending))
	copy(result, booked)

	kept := make([]pendingInterval, 0, len(s.pending))
	for _, p := range s.pending {
		if !covers(p.interval.Date) {
			kept = append(kept, p)
			continue
		}
		if p.seq <= seen {
			continue
		}
		kept = append(kept, p)
		if !containsInterval(result, p.interval) {
			result = append(result, p.interval)
		}
	}
	s.pending = kept
	return result
}

// trimLocked убирает из дня слоты, прошедшие с момента его расчёта
func (s *Store) trimLocked(day domain.DayAvailability) domain.DayAvailability {
	return s.generator.Trim(day, s.opts.clock.Now(), s.opts.minNoticeMinutes)
}

// clearDayLocked сбрасывает выбранный день и время; загрузка дня в полёте становится устаревшей
func (s *Store) clearDayLocked() {
	s.selection.Date = nil
	s.selection.Time = nil
	s.daySlots = nil
	s.daySeq++
	s.dayLoading = false
}

// invalidateDateLocked удаляет из кэша дату во всех областях
func (s *Store) invalidateDateLocked(date time.Time) {
	key := date.Format(domain.DateFormat)
	for _, k := range s.days.Keys() {
		if k.date == key {
			s.days.Remove(k)
		}
	}
}

func (s *Store) cachedDayLocked(employee int64, date time.Time) (domain.DayAvailability, bool) {
	day, ok := s.days.Get(dayKey{employee: employee, date: date.Format(domain.DateFormat)})
	if !ok {
		return domain.DayAvailability{}, false
	}
	return day.Clone(), true
}

func (s *Store) scheduleForLocked(employee int64) *domain.WeeklySchedule {
	if s.scheduleLoaded && s.scheduleEmployee == employee {
		return s.schedule
	}
	return nil
}

// normalizeDate берёт календарную дату как есть и переносит её в часовой пояс календаря
func (s *Store) normalizeDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.opts.location)
}

func employeeKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copySelection(sel domain.SelectionState) domain.SelectionState {
	result := domain.SelectionState{EmployeeID: copyID(sel.EmployeeID)}
	if sel.Date != nil {
		d := *sel.Date
		result.Date = &d
	}
	if sel.Time != nil {
		t := *sel.Time
		result.Time = &t
	}
	return result
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func containsInterval(intervals []domain.BookedInterval, target domain.BookedInterval) bool {
	for _, interval := range intervals {
		if target.BookingID != 0 && interval.BookingID == target.BookingID {
			return true
		}
		if sameDay(interval.Date, target.Date) && interval.Start == target.Start &&
			interval.End == target.End && employeeKey(interval.EmployeeID) == employeeKey(target.EmployeeID) {
			return true
		}
	}
	return false
}
