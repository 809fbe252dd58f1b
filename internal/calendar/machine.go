package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/calendarapi"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// StateMachine пошаговый выбор месяца, сотрудника, дня и времени.
//
// Каждая загрузка помечается номером запроса своего поля (месяц или день).
// Ответ применяется, только если его номер всё ещё последний: медленный ответ
// по дню A не перезапишет уже показанный день B.
// Методы блокируются на время загрузки и безопасны для вызова из разных горутин
type StateMachine struct {
	store  *Store
	api    API
	logger Logger
}

// NewStateMachine создает машину состояний поверх хранилища
func NewStateMachine(store *Store, api API, logger Logger) *StateMachine {
	return &StateMachine{
		store:  store,
		api:    api,
		logger: logger,
	}
}

type monthRequest struct {
	seq      uint64
	year     int
	month    time.Month
	employee *int64
	schedule *domain.WeeklySchedule // nil - загрузить заново
	bookings uint64                 // bookingSeq на момент запроса
}

type dayRequest struct {
	seq      uint64
	date     time.Time
	employee *int64
	bookings uint64
}

// SelectMonth переключает месяц и перестраивает индекс доступности.
// Выбранный день сохраняется, если он попадает в новый месяц
func (m *StateMachine) SelectMonth(ctx context.Context, year int, month time.Month) error {
	if year <= 0 || month < time.January || month > time.December {
		return fmt.Errorf("%w: month %d-%02d", ErrValidation, year, month)
	}

	var req monthRequest
	m.store.update(func() bool {
		s := m.store
		s.confirmed = false
		s.year, s.month = year, month
		if s.selection.Date != nil && !inMonth(*s.selection.Date, year, month) {
			s.clearDayLocked()
		}
		req = m.beginMonthLocked(false)
		return true
	})

	return m.loadMonth(ctx, req)
}

// SelectEmployee меняет сотрудника (nil - любой), сбрасывает день и время
// и перестраивает индекс для нового сотрудника
func (m *StateMachine) SelectEmployee(ctx context.Context, employeeID *int64) error {
	scope := m.store.Scope()
	if employeeID == nil && scope.RequireEmployee {
		return ErrEmployeeRequired
	}
	if employeeID != nil && !scope.isAssigned(*employeeID) {
		return fmt.Errorf("%w: employee id=%d", ErrEmployeeNotAssigned, *employeeID)
	}

	var (
		req  monthRequest
		load bool
	)
	m.store.update(func() bool {
		s := m.store
		s.confirmed = false
		s.selection.EmployeeID = copyID(employeeID)
		s.clearDayLocked()
		s.index = nil
		if s.year == 0 {
			// Месяц ещё не выбран: загружать нечего, но прошлые ответы больше не актуальны
			s.monthSeq++
			s.monthLoading = false
			return true
		}
		req = m.beginMonthLocked(false)
		load = true
		return true
	})

	if !load {
		return nil
	}
	return m.loadMonth(ctx, req)
}

// SelectDay выбирает день, сбрасывает время и обновляет слоты этого дня.
// День вне загруженного месяца, выходной или без свободных слотов отклоняется без изменения состояния
func (m *StateMachine) SelectDay(ctx context.Context, date time.Time) error {
	date = m.store.normalizeDate(date)

	var (
		req    dayRequest
		reject error
	)
	m.store.update(func() bool {
		s := m.store
		if s.scope.RequireEmployee && s.selection.EmployeeID == nil {
			reject = ErrEmployeeRequired
			return false
		}
		if !s.index.Matches(s.year, s.month, s.employeeKeyLocked()) || !s.index.Covers(date) {
			reject = fmt.Errorf("%w: %s is outside the loaded month", ErrDayNotAvailable, date.Format(domain.DateFormat))
			return false
		}

		day, _ := s.index.Day(date)
		if !day.Open {
			reject = fmt.Errorf("%w: %s", ErrScheduleUnavailable, date.Format(domain.DateFormat))
			return false
		}
		if !day.Available {
			reject = fmt.Errorf("%w: %s is fully booked", ErrDayNotAvailable, date.Format(domain.DateFormat))
			return false
		}

		s.confirmed = false
		selected := date
		s.selection.Date = &selected
		s.selection.Time = nil
		s.daySlots = &day
		req = m.beginDayLocked(date)
		return true
	})

	if reject != nil {
		return reject
	}
	return m.loadDay(ctx, req)
}

// SelectTime выбирает время из загруженных слотов выбранного дня
func (m *StateMachine) SelectTime(t types.TimeString) error {
	var reject error
	m.store.update(func() bool {
		s := m.store
		if s.selection.Date == nil {
			reject = ErrNoDaySelected
			return false
		}
		if s.daySlots == nil || !s.daySlots.HasSlot(t) {
			reject = fmt.Errorf("%w: %s on %s", ErrTimeNotAvailable, t, s.selection.Date.Format(domain.DateFormat))
			return false
		}

		s.confirmed = false
		selected := t
		s.selection.Time = &selected
		return true
	})
	return reject
}

// Reset сбрасывает выбор и возвращает календарь в начальное состояние.
// Кэш дней сохраняется
func (m *StateMachine) Reset() {
	m.store.update(func() bool {
		s := m.store
		s.selection = domain.SelectionState{}
		s.year, s.month = 0, 0
		s.confirmed = false
		s.schedule, s.scheduleLoaded, s.scheduleEmployee = nil, false, 0
		s.booked = nil
		s.index = nil
		s.daySlots = nil
		s.monthSeq++
		s.daySeq++
		s.monthLoading, s.dayLoading = false, false
		s.err, s.retry = nil, nil
		s.lastBooking = nil
		return true
	})
}

// Retry повторяет последнюю неудавшуюся загрузку
func (m *StateMachine) Retry(ctx context.Context) error {
	m.store.mu.Lock()
	retry := m.store.retry
	m.store.mu.Unlock()

	if retry == nil {
		return nil
	}
	return retry(ctx)
}

// RefreshMonth перезагружает расписание и интервалы текущего месяца, сохраняя выбор
func (m *StateMachine) RefreshMonth(ctx context.Context) error {
	var (
		req  monthRequest
		load bool
	)
	m.store.update(func() bool {
		if m.store.year == 0 {
			return false
		}
		req = m.beginMonthLocked(true)
		load = true
		return true
	})

	if !load {
		return nil
	}
	return m.loadMonth(ctx, req)
}

// RefreshDay перезагружает интервалы выбранного дня
func (m *StateMachine) RefreshDay(ctx context.Context) error {
	var (
		req  dayRequest
		load bool
	)
	m.store.update(func() bool {
		s := m.store
		if s.selection.Date == nil {
			return false
		}
		req = m.beginDayLocked(*s.selection.Date)
		load = true
		return true
	})

	if !load {
		return nil
	}
	return m.loadDay(ctx, req)
}

// GetMonthAvailability возвращает доступность месяца.
// Выбранный месяц отдаётся из индекса, другой загружается без изменения выбора
func (m *StateMachine) GetMonthAvailability(ctx context.Context, year int, month time.Month) ([]domain.DayAvailability, error) {
	if year <= 0 || month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d-%02d", ErrValidation, year, month)
	}

	s := m.store
	s.mu.Lock()
	employee := copyID(s.selection.EmployeeID)
	key := employeeKey(employee)
	if s.index.Matches(year, month, key) {
		days := s.index.Days()
		for i := range days {
			days[i] = s.trimLocked(days[i])
		}
		s.mu.Unlock()
		return days, nil
	}
	schedule := s.scheduleForLocked(key)
	seen := s.bookingSeq
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.fetchTimeout)
	defer cancel()

	if schedule == nil {
		var err error
		schedule, err = m.fetchSchedule(fetchCtx, employee)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule: %v", ErrFetchFailed, err)
		}
	}

	booked, err := m.api.GetBookedIntervals(fetchCtx, calendarapi.IntervalsQuery{
		BusinessID: s.scope.BusinessID,
		EmployeeID: employee,
		Year:       year,
		Month:      month,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: month %d-%02d: %v", ErrFetchFailed, year, month, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	booked = s.mergePendingLocked(booked, seen, func(date time.Time) bool {
		return inMonth(date, year, month)
	})
	in := s.monthInputLocked(schedule, booked, year, month)
	in.Scope.EmployeeID = employee
	days := s.generator.Month(in)
	for _, day := range days {
		s.days.Add(dayKey{employee: key, date: day.Date.Format(domain.DateFormat)}, day)
	}
	return days, nil
}

// GetDayAvailability возвращает доступность дня: из выбранного дня, кэша или индекса,
// а если данных нет - загружает интервалы этого дня.
// Готовые данные перед отдачей фильтруются по текущему времени
func (m *StateMachine) GetDayAvailability(ctx context.Context, date time.Time) (domain.DayAvailability, error) {
	s := m.store
	date = s.normalizeDate(date)

	s.mu.Lock()
	employee := copyID(s.selection.EmployeeID)
	key := employeeKey(employee)
	if s.selection.Date != nil && sameDay(*s.selection.Date, date) && s.daySlots != nil {
		day := s.trimLocked(*s.daySlots)
		s.mu.Unlock()
		return day, nil
	}
	if day, ok := s.cachedDayLocked(key, date); ok {
		day = s.trimLocked(day)
		s.mu.Unlock()
		return day, nil
	}
	if s.index.Matches(s.year, s.month, key) {
		if day, ok := s.index.Day(date); ok {
			day = s.trimLocked(day)
			s.mu.Unlock()
			return day, nil
		}
	}
	schedule := s.scheduleForLocked(key)
	seen := s.bookingSeq
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.fetchTimeout)
	defer cancel()

	if schedule == nil {
		var err error
		schedule, err = m.fetchSchedule(fetchCtx, employee)
		if err != nil {
			return domain.DayAvailability{}, fmt.Errorf("%w: schedule: %v", ErrFetchFailed, err)
		}
	}

	booked, err := m.api.GetBookedIntervals(fetchCtx, calendarapi.IntervalsQuery{
		BusinessID: s.scope.BusinessID,
		EmployeeID: employee,
		Date:       &date,
	})
	if err != nil {
		return domain.DayAvailability{}, fmt.Errorf("%w: day %s: %v", ErrFetchFailed, date.Format(domain.DateFormat), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	booked = s.mergePendingLocked(booked, seen, func(d time.Time) bool {
		return sameDay(d, date)
	})
	in := s.dayInputLocked(schedule, booked, date)
	in.Scope.EmployeeID = employee
	day := s.generator.Day(in)
	s.days.Add(dayKey{employee: key, date: date.Format(domain.DateFormat)}, day.Clone())
	return day, nil
}

// beginMonthLocked выдаёт новый номер запроса месяца; предыдущие ответы становятся устаревшими
func (m *StateMachine) beginMonthLocked(reloadSchedule bool) monthRequest {
	s := m.store
	s.monthSeq++
	s.monthLoading = true
	s.err, s.retry = nil, nil

	employee := s.employeeKeyLocked()
	if !s.index.Matches(s.year, s.month, employee) {
		s.index = nil
	}

	req := monthRequest{
		seq:      s.monthSeq,
		year:     s.year,
		month:    s.month,
		employee: copyID(s.selection.EmployeeID),
		bookings: s.bookingSeq,
	}
	if !reloadSchedule {
		req.schedule = s.scheduleForLocked(employee)
	}
	return req
}

// beginDayLocked выдаёт новый номер запроса дня
func (m *StateMachine) beginDayLocked(date time.Time) dayRequest {
	s := m.store
	s.daySeq++
	s.dayLoading = true
	s.err, s.retry = nil, nil

	return dayRequest{
		seq:      s.daySeq,
		date:     date,
		employee: copyID(s.selection.EmployeeID),
		bookings: s.bookingSeq,
	}
}

func (m *StateMachine) loadMonth(ctx context.Context, req monthRequest) error {
	fetchCtx, cancel := context.WithTimeout(ctx, m.store.opts.fetchTimeout)
	defer cancel()

	schedule := req.schedule
	if schedule == nil {
		var err error
		schedule, err = m.fetchSchedule(fetchCtx, req.employee)
		if err != nil {
			return m.failMonth(req, err)
		}
	}

	booked, err := m.api.GetBookedIntervals(fetchCtx, calendarapi.IntervalsQuery{
		BusinessID: m.store.scope.BusinessID,
		EmployeeID: req.employee,
		Year:       req.year,
		Month:      req.month,
	})
	if err != nil {
		return m.failMonth(req, err)
	}

	stale := false
	m.store.update(func() bool {
		s := m.store
		if req.seq != s.monthSeq {
			stale = true
			return false
		}

		s.monthLoading = false
		s.schedule = schedule
		s.scheduleLoaded = true
		s.scheduleEmployee = employeeKey(req.employee)
		s.booked = s.mergePendingLocked(booked, req.bookings, func(date time.Time) bool {
			return inMonth(date, req.year, req.month)
		})
		s.rebuildIndexLocked()

		// Слоты выбранного дня берём из нового индекса, если по дню нет своей загрузки
		if s.selection.Date != nil && !s.dayLoading {
			if day, ok := s.index.Day(*s.selection.Date); ok {
				s.daySlots = &day
				if s.selection.Time != nil && !day.HasSlot(*s.selection.Time) {
					s.selection.Time = nil
				}
			}
		}
		return true
	})

	if stale {
		m.logger.Info("calendar: stale month response %d-%02d dropped", req.year, req.month)
	}
	return nil
}

func (m *StateMachine) failMonth(req monthRequest, cause error) error {
	err := fmt.Errorf("%w: month %d-%02d: %v", ErrFetchFailed, req.year, req.month, cause)

	stale := false
	m.store.update(func() bool {
		s := m.store
		if req.seq != s.monthSeq {
			stale = true
			return false
		}
		s.monthLoading = false
		s.err = err
		s.retry = m.RefreshMonth
		return true
	})

	if stale {
		m.logger.Info("calendar: stale month failure %d-%02d dropped: %v", req.year, req.month, cause)
		return nil
	}
	m.logger.Warn("calendar: %v", err)
	return err
}

func (m *StateMachine) loadDay(ctx context.Context, req dayRequest) error {
	fetchCtx, cancel := context.WithTimeout(ctx, m.store.opts.fetchTimeout)
	defer cancel()

	date := req.date
	booked, err := m.api.GetBookedIntervals(fetchCtx, calendarapi.IntervalsQuery{
		BusinessID: m.store.scope.BusinessID,
		EmployeeID: req.employee,
		Date:       &date,
	})
	if err != nil {
		return m.failDay(req, err)
	}

	stale := false
	m.store.update(func() bool {
		s := m.store
		if req.seq != s.daySeq {
			stale = true
			return false
		}

		s.dayLoading = false
		fresh := s.mergePendingLocked(booked, req.bookings, func(date time.Time) bool {
			return sameDay(date, req.date)
		})
		s.replaceDayIntervalsLocked(req.date, fresh)
		day := s.computeDayLocked(req.date)
		s.patchDayLocked(day)
		s.daySlots = &day
		if s.selection.Time != nil && !day.HasSlot(*s.selection.Time) {
			s.selection.Time = nil
		}
		return true
	})

	if stale {
		m.logger.Info("calendar: stale day response %s dropped", req.date.Format(domain.DateFormat))
	}
	return nil
}

func (m *StateMachine) failDay(req dayRequest, cause error) error {
	err := fmt.Errorf("%w: day %s: %v", ErrFetchFailed, req.date.Format(domain.DateFormat), cause)

	stale := false
	m.store.update(func() bool {
		s := m.store
		if req.seq != s.daySeq {
			stale = true
			return false
		}
		s.dayLoading = false
		s.err = err
		s.retry = m.RefreshDay
		return true
	})

	if stale {
		m.logger.Info("calendar: stale day failure %s dropped: %v", req.date.Format(domain.DateFormat), cause)
		return nil
	}
	m.logger.Warn("calendar: %v", err)
	return err
}

// fetchSchedule загружает расписание; отсутствие расписания - валидное пустое состояние
func (m *StateMachine) fetchSchedule(ctx context.Context, employee *int64) (*domain.WeeklySchedule, error) {
	businessID := m.store.scope.BusinessID

	schedule, err := m.api.GetSchedule(ctx, businessID, employee)
	if err != nil {
		if errors.Is(err, calendarapi.ErrNotFound) {
			m.logger.Info("calendar: no schedule configured for business=%d employee=%d", businessID, employeeKey(employee))
			return &domain.WeeklySchedule{BusinessID: businessID, EmployeeID: copyID(employee)}, nil
		}
		return nil, err
	}
	return schedule, nil
}

func inMonth(date time.Time, year int, month time.Month) bool {
	return date.Year() == year && date.Month() == month
}
