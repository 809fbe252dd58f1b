package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingCalendar/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/ptr"
)

type fakeRepo struct {
	bookings   map[int64]*domain.Booking
	lastFilter domain.BookingsFilter
	cancelled  []int64
	err        error
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (r *fakeRepo) GetByUserID(_ context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	if r.err != nil {
		return nil, r.err
	}
	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.UserID == userID && (status == nil || b.Status == *status) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *fakeRepo) GetByBusinessWithFilter(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	r.lastFilter = filter
	if r.err != nil {
		return nil, r.err
	}
	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.BusinessID == filter.BusinessID && b.IsActive() {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *fakeRepo) Cancel(_ context.Context, id int64, reason string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	r.cancelled = append(r.cancelled, id)
	return nil
}

type fakeBusinessClient struct {
	business *businessservice.Business
	err      error
}

func (c *fakeBusinessClient) GetBusiness(context.Context, int64) (*businessservice.Business, error) {
	return c.business, c.err
}

type fakeCache struct {
	invalidated []time.Time
}

func (c *fakeCache) InvalidateMonth(_ context.Context, _ int64, date time.Time) error {
	c.invalidated = append(c.invalidated, date)
	return nil
}

var march2 = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newFixture() (*Service, *fakeRepo, *fakeCache) {
	repo := &fakeRepo{bookings: map[int64]*domain.Booking{
		1: {ID: 1, UserID: 42, BusinessID: 7, ServiceID: 3, BookingDate: march2, StartTime: "10:00", DurationMinutes: 30, Status: domain.StatusConfirmed},
		2: {ID: 2, UserID: 43, BusinessID: 7, ServiceID: 3, EmployeeID: ptr.Ptr(int64(10)), BookingDate: march2, StartTime: "11:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		3: {ID: 3, UserID: 42, BusinessID: 7, ServiceID: 3, BookingDate: march2, StartTime: "12:00", DurationMinutes: 30, Status: domain.StatusCancelled},
	}}
	client := &fakeBusinessClient{business: &businessservice.Business{ID: 7, ManagerIDs: []int64{100}}}
	cache := &fakeCache{}
	return NewService(repo, client, cache, logger.NewNop()), repo, cache
}

func TestService_GetByID(t *testing.T) {
	svc, _, _ := newFixture()

	resp, err := svc.GetByID(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", resp.BookingDate)
	assert.Equal(t, "10:00", resp.StartTime)

	// менеджер бизнеса
	_, err = svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 1, 43)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), 99, 42)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetUserBookings(t *testing.T) {
	svc, _, _ := newFixture()

	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 42, RequesterID: 42})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	resp, err = svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 42, RequesterID: 42, Status: ptr.Ptr("cancelada"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 42, RequesterID: 42, Status: ptr.Ptr("unknown"),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 42, RequesterID: 43})
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_BookedIntervals_Month(t *testing.T) {
	svc, repo, _ := newFixture()

	intervals, err := svc.BookedIntervals(context.Background(), &models.GetBookedIntervalsRequest{
		BusinessID: 7, Year: 2026, Month: time.March,
	})
	require.NoError(t, err)

	assert.Len(t, intervals, 2)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *repo.lastFilter.StartDate)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *repo.lastFilter.EndDate)
	assert.False(t, repo.lastFilter.IncludeInactive)
}

func TestService_BookedIntervals_DayForEmployee(t *testing.T) {
	svc, repo, _ := newFixture()

	resp, err := svc.GetBookedIntervals(context.Background(), &models.GetBookedIntervalsRequest{
		BusinessID: 7, EmployeeID: ptr.Ptr(int64(10)), Date: &march2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), *repo.lastFilter.EmployeeID)
	assert.True(t, repo.lastFilter.StartDate.Equal(*repo.lastFilter.EndDate))
	assert.Equal(t, int64(7), resp.BusinessID)
	for _, interval := range resp.Intervals {
		if interval.BookingID == 2 {
			assert.Equal(t, "11:00", interval.Start)
			assert.Equal(t, "12:00", interval.End)
		}
	}
}

func TestService_BookedIntervals_Invalid(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.BookedIntervals(context.Background(), &models.GetBookedIntervalsRequest{BusinessID: 7})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.BookedIntervals(context.Background(), &models.GetBookedIntervalsRequest{BusinessID: 7, Year: 2026, Month: 13})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Cancel(t *testing.T) {
	svc, repo, cache := newFixture()

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 42, CancellationReason: "no puedo"})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, repo.cancelled)
	assert.Equal(t, domain.StatusCancelled, repo.bookings[1].Status)
	assert.Equal(t, []time.Time{march2}, cache.invalidated)
}

func TestService_Cancel_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		bookingID int64
		userID    int64
		want      error
	}{
		{name: "already cancelled", bookingID: 3, userID: 42, want: ErrCannotCancel},
		{name: "stranger", bookingID: 1, userID: 43, want: ErrAccessDenied},
		{name: "not found", bookingID: 99, userID: 42, want: ErrBookingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cache := newFixture()

			err := svc.Cancel(context.Background(), tt.bookingID, &models.CancelBookingRequest{UserID: tt.userID})
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.cancelled)
			assert.Empty(t, cache.invalidated)
		})
	}
}

func TestService_Cancel_ByManager(t *testing.T) {
	svc, repo, _ := newFixture()

	require.NoError(t, svc.Cancel(context.Background(), 2, &models.CancelBookingRequest{UserID: 100}))
	assert.Equal(t, []int64{2}, repo.cancelled)
}

func TestService_RepositoryFailure(t *testing.T) {
	svc, repo, _ := newFixture()
	repo.err = errors.New("db down")

	_, err := svc.GetByID(context.Background(), 1, 42)
	require.ErrorIs(t, err, ErrInternal)
}
