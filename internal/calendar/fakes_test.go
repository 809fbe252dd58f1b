package calendar

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/calendarapi"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// 2026-03-02, 09, 16, 23, 30 - понедельники
func march(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type fakeAPI struct {
	mu sync.Mutex

	schedule    *domain.WeeklySchedule
	scheduleErr error

	booked       []domain.BookedInterval
	intervalsErr error
	gates        map[string]chan struct{}
	started      chan string
	monthStarted chan string

	createErr error
	created   []domain.BookingDraft
	nextID    int64

	scheduleCalls int
	monthCalls    int
	dayCalls      int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		schedule: &domain.WeeklySchedule{
			BusinessID: 1,
			Days: map[domain.Weekday]domain.DaySchedule{
				domain.Monday:    {Enabled: true, Ranges: []domain.TimeRange{{Start: "09:00", End: "12:00"}}},
				domain.Tuesday:   {Enabled: false},
				domain.Wednesday: {Enabled: true, Ranges: []domain.TimeRange{{Start: "09:00", End: "10:00"}}},
			},
		},
		gates:        make(map[string]chan struct{}),
		started:      make(chan string, 16),
		monthStarted: make(chan string, 16),
		nextID:       100,
	}
}

// gate блокирует загрузку дня date до закрытия возвращённого канала
func (f *fakeAPI) gate(date time.Time) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[date.Format(domain.DateFormat)] = ch
	return ch
}

// gateMonth блокирует загрузку месяца до закрытия возвращённого канала
func (f *fakeAPI) gateMonth(year int, month time.Month) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[monthKey(year, month)] = ch
	return ch
}

// drainStarted забывает о загрузках, начатых до этого момента
func (f *fakeAPI) drainStarted() {
	for _, ch := range []chan string{f.started, f.monthStarted} {
		for len(ch) > 0 {
			<-ch
		}
	}
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func (f *fakeAPI) ungate(date time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.gates, date.Format(domain.DateFormat))
}

func (f *fakeAPI) book(date time.Time, start, end types.TimeString) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booked = append(f.booked, domain.BookedInterval{
		BookingID: int64(len(f.booked) + 1),
		Date:      date,
		Start:     start,
		End:       end,
		Status:    domain.StatusConfirmed,
	})
}

func (f *fakeAPI) setIntervalsErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervalsErr = err
}

func (f *fakeAPI) setCreateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

func (f *fakeAPI) counts() (schedule, month, day int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scheduleCalls, f.monthCalls, f.dayCalls
}

func (f *fakeAPI) GetSchedule(ctx context.Context, businessID int64, employeeID *int64) (*domain.WeeklySchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleCalls++
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	schedule := *f.schedule
	schedule.EmployeeID = employeeID
	return &schedule, nil
}

func (f *fakeAPI) GetBookedIntervals(ctx context.Context, q calendarapi.IntervalsQuery) ([]domain.BookedInterval, error) {
	// Ответ собирается до ожидания на шлюзе: так ведёт себя запрос, который сервер уже обработал
	f.mu.Lock()
	var (
		gate    chan struct{}
		started chan string
		key     string
	)
	if q.Date != nil {
		f.dayCalls++
		key = q.Date.Format(domain.DateFormat)
		started = f.started
	} else {
		f.monthCalls++
		key = monthKey(q.Year, q.Month)
		started = f.monthStarted
	}
	gate = f.gates[key]
	err := f.intervalsErr

	result := make([]domain.BookedInterval, 0)
	for _, interval := range f.booked {
		if q.Date != nil {
			if sameDay(interval.Date, *q.Date) {
				result = append(result, interval)
			}
			continue
		}
		if interval.Date.Year() == q.Year && interval.Date.Month() == q.Month {
			result = append(result, interval)
		}
	}
	f.mu.Unlock()

	select {
	case started <- key:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeAPI) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, draft)
	f.nextID++
	key := draft.IdempotencyKey
	booking := &domain.Booking{
		ID:              f.nextID,
		UserID:          draft.UserID,
		BusinessID:      draft.BusinessID,
		ServiceID:       draft.ServiceID,
		EmployeeID:      draft.EmployeeID,
		BookingDate:     draft.Date,
		StartTime:       draft.Time,
		DurationMinutes: 30,
		Status:          domain.StatusPending,
		IdempotencyKey:  &key,
	}
	f.booked = append(f.booked, booking.Interval())
	return booking, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	errors   []string
	warnings []string
}

func (n *recordingNotifier) ShowSuccess(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, message)
}

func (n *recordingNotifier) ShowError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) ShowWarning(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, message)
}

type testCalendar struct {
	api      *fakeAPI
	store    *Store
	machine  *StateMachine
	booking  *BookingController
	notifier *recordingNotifier
}

func defaultScope() Scope {
	return Scope{BusinessID: 1, ServiceID: 2, DurationMinutes: 30}
}

func newTestCalendar(t *testing.T, api *fakeAPI, scope Scope, opts ...Option) *testCalendar {
	t.Helper()

	log := logger.NewNop()
	opts = append([]Option{
		WithClock(fixedClock{now: time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)}),
		WithLocation(time.UTC),
	}, opts...)

	store, err := NewStore(scope, availability.NewGenerator(log), log, opts...)
	require.NoError(t, err)

	machine := NewStateMachine(store, api, log)
	notifier := &recordingNotifier{}
	booking := NewBookingController(store, machine, api, StaticSession{ID: 42, UserRole: domain.RoleClient}, notifier, log)

	return &testCalendar{api: api, store: store, machine: machine, booking: booking, notifier: notifier}
}

// movingClock часы, которые тест может переводить вперёд
type movingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movingClock) set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
