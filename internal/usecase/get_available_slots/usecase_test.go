package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	scheduleService "github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/metrics"
	"github.com/m04kA/SMC-BookingCalendar/pkg/ptr"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeBookings struct {
	bookings []*domain.Booking
	filter   domain.BookingsFilter
	err      error
}

func (f *fakeBookings) GetByBusinessWithFilter(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	f.filter = filter
	return f.bookings, f.err
}

type fakeSchedules struct {
	schedule *domain.WeeklySchedule
	err      error
}

func (f *fakeSchedules) Resolve(context.Context, int64, *int64) (*domain.WeeklySchedule, error) {
	return f.schedule, f.err
}

type fakeBusiness struct {
	service *businessservice.Service
	err     error
}

func (f *fakeBusiness) GetService(context.Context, int64, int64) (*businessservice.Service, error) {
	return f.service, f.err
}

// Понедельник 2 марта 2026, 08:00
var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func weekdaysSchedule() *domain.WeeklySchedule {
	return &domain.WeeklySchedule{
		BusinessID: 7,
		Days: map[domain.Weekday]domain.DaySchedule{
			domain.Monday:  {Enabled: true, Ranges: []domain.TimeRange{{Start: "09:00", End: "12:00"}}},
			domain.Tuesday: {Enabled: true, Ranges: []domain.TimeRange{{Start: "09:00", End: "12:00"}}},
		},
	}
}

type fixture struct {
	uc       *UseCase
	bookings *fakeBookings
	sched    *fakeSchedules
	business *fakeBusiness
}

func newFixture(settings Settings) *fixture {
	f := &fixture{
		bookings: &fakeBookings{},
		sched:    &fakeSchedules{schedule: weekdaysSchedule()},
		business: &fakeBusiness{service: &businessservice.Service{ID: 3, BusinessID: 7, Name: "Corte", DurationMinutes: 30}},
	}
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	f.uc = NewUseCase(f.bookings, f.sched, f.business, availability.NewGenerator(logger.NewNop()), settings, m, logger.NewNop()).
		WithTimeProvider(fixedTime{now: now})
	return f
}

func defaultSettings() Settings {
	return Settings{GranularityMinutes: 30, AdvanceBookingDays: 30}
}

func TestUseCase_Execute(t *testing.T) {
	f := newFixture(defaultSettings())
	f.bookings.bookings = []*domain.Booking{
		{ID: 1, BusinessID: 7, BookingDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	resp, err := f.uc.Execute(context.Background(), &Request{
		UserID: 42, BusinessID: 7, ServiceID: 3, Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, resp.Open)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, []types.TimeString{"09:00", "09:30", "11:00", "11:30"}, resp.Slots)
	assert.True(t, f.bookings.filter.StartDate.Equal(*f.bookings.filter.EndDate))
}

func TestUseCase_Execute_TodayRespectsNotice(t *testing.T) {
	settings := defaultSettings()
	settings.MinNoticeMinutes = 90 // 08:00 + 1:30
	f := newFixture(settings)

	resp, err := f.uc.Execute(context.Background(), &Request{BusinessID: 7, ServiceID: 3, Date: now})
	require.NoError(t, err)

	assert.Equal(t, []types.TimeString{"09:30", "10:00", "10:30", "11:00", "11:30"}, resp.Slots)
}

func TestUseCase_Execute_ClosedDay(t *testing.T) {
	f := newFixture(defaultSettings())

	// среда выключена
	resp, err := f.uc.Execute(context.Background(), &Request{BusinessID: 7, ServiceID: 3, Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	assert.False(t, resp.Open)
	assert.Empty(t, resp.Slots)
	assert.NotNil(t, resp.Slots)
}

func TestUseCase_Execute_NoSchedule(t *testing.T) {
	f := newFixture(defaultSettings())
	f.sched.err = scheduleService.ErrScheduleNotFound

	resp, err := f.uc.Execute(context.Background(), &Request{BusinessID: 7, ServiceID: 3, Date: now})
	require.NoError(t, err)

	assert.False(t, resp.Open)
	assert.Empty(t, resp.Slots)
}

func TestUseCase_Execute_EmployeeScope(t *testing.T) {
	f := newFixture(defaultSettings())
	f.business.service.EmployeeIDs = []int64{10, 11}
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	f.bookings.bookings = []*domain.Booking{
		{ID: 1, EmployeeID: ptr.Ptr(int64(11)), BookingDate: date, StartTime: "09:00", DurationMinutes: 180, Status: domain.StatusConfirmed},
	}

	resp, err := f.uc.Execute(context.Background(), &Request{BusinessID: 7, ServiceID: 3, EmployeeID: ptr.Ptr(int64(10)), Date: date})
	require.NoError(t, err)

	// бронирование другого сотрудника не блокирует
	assert.Len(t, resp.Slots, 6)
	assert.Equal(t, int64(10), *f.bookings.filter.EmployeeID)
}

func TestUseCase_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		prepare func(f *fixture)
		want    error
	}{
		{name: "invalid business", req: &Request{ServiceID: 3, Date: now}, want: ErrInvalidInput},
		{name: "missing date", req: &Request{BusinessID: 7, ServiceID: 3}, want: ErrInvalidInput},
		{name: "past date", req: &Request{BusinessID: 7, ServiceID: 3, Date: now.AddDate(0, 0, -1)}, want: ErrInvalidDate},
		{name: "beyond horizon", req: &Request{BusinessID: 7, ServiceID: 3, Date: now.AddDate(0, 0, 31)}, want: ErrDateTooFarInFuture},
		{
			name:    "service not found",
			req:     &Request{BusinessID: 7, ServiceID: 3, Date: now},
			prepare: func(f *fixture) { f.business.err = businessservice.ErrServiceNotFound },
			want:    ErrServiceNotFound,
		},
		{
			name:    "business service down",
			req:     &Request{BusinessID: 7, ServiceID: 3, Date: now},
			prepare: func(f *fixture) { f.business.err = businessservice.ErrInternal },
			want:    ErrInternal,
		},
		{
			name:    "employee not assigned",
			req:     &Request{BusinessID: 7, ServiceID: 3, EmployeeID: ptr.Ptr(int64(99)), Date: now},
			prepare: func(f *fixture) { f.business.service.EmployeeIDs = []int64{10} },
			want:    ErrEmployeeNotAssigned,
		},
		{
			name:    "repository failure",
			req:     &Request{BusinessID: 7, ServiceID: 3, Date: now},
			prepare: func(f *fixture) { f.bookings.err = errors.New("db down") },
			want:    ErrInternal,
		},
		{
			name:    "schedule failure",
			req:     &Request{BusinessID: 7, ServiceID: 3, Date: now},
			prepare: func(f *fixture) { f.sched.err = scheduleService.ErrInternal },
			want:    ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(defaultSettings())
			if tt.prepare != nil {
				tt.prepare(f)
			}

			_, err := f.uc.Execute(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
