package calendarapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/ptr"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second, time.UTC, logger.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_GetSchedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/businesses/5/schedule", r.URL.Path)
		assert.Equal(t, "9", r.URL.Query().Get("employeeId"))
		writeJSON(w, http.StatusOK, ScheduleResponse{
			BusinessID: 5,
			EmployeeID: ptr.Ptr(int64(9)),
			Days: map[string]DaySchedule{
				"lunes":   {Enabled: true, Ranges: []TimeRange{{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "18:00"}}},
				"domingo": {Enabled: false},
			},
		})
	})

	schedule, err := client.GetSchedule(context.Background(), 5, ptr.Ptr(int64(9)))

	require.NoError(t, err)
	assert.True(t, schedule.IsEmployeeSchedule())
	assert.Len(t, schedule.RangesFor(domain.Monday), 2)
	assert.Empty(t, schedule.RangesFor(domain.Sunday))
}

func TestClient_GetSchedule_UnknownWeekday(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ScheduleResponse{
			BusinessID: 5,
			Days:       map[string]DaySchedule{"monday": {Enabled: true}},
		})
	})

	_, err := client.GetSchedule(context.Background(), 5, nil)

	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_GetBookedIntervals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/businesses/5/booked-intervals", r.URL.Path)
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "3", r.URL.Query().Get("month"))
		assert.Empty(t, r.URL.Query().Get("date"))
		writeJSON(w, http.StatusOK, BookedIntervalsResponse{
			BusinessID: 5,
			Intervals: []BookedInterval{
				{BookingID: 1, Date: "2026-03-02", Start: "10:00", End: "10:30", Status: "confirmada"},
				{BookingID: 2, Date: "02/03/2026", Start: "11:00", End: "11:30", Status: "confirmada"},
			},
		})
	})

	intervals, err := client.GetBookedIntervals(context.Background(), IntervalsQuery{BusinessID: 5, Year: 2026, Month: time.March})

	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, int64(1), intervals[0].BookingID)
	assert.Equal(t, types.TimeString("10:00"), intervals[0].Start)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), intervals[0].Date)
	assert.Equal(t, domain.StatusConfirmed, intervals[0].Status)
}

func TestClient_GetBookedIntervals_Day(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-03-02", r.URL.Query().Get("date"))
		writeJSON(w, http.StatusOK, BookedIntervalsResponse{BusinessID: 5})
	})

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	intervals, err := client.GetBookedIntervals(context.Background(), IntervalsQuery{BusinessID: 5, Date: &date})

	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestClient_GetBookedIntervals_RequiresPeriod(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", time.Second, time.UTC, logger.NewNop())

	_, err := client.GetBookedIntervals(context.Background(), IntervalsQuery{BusinessID: 5})

	require.ErrorIs(t, err, ErrInternal)
}

func TestClient_CreateBooking(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bookings", r.URL.Path)
		assert.Equal(t, "42", r.Header.Get(headerUserID))
		assert.Equal(t, domain.RoleClient, r.Header.Get(headerUserRole))
		assert.Equal(t, "key-1", r.Header.Get(headerIdempotencyKey))

		var body CreateBookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-03-02", body.BookingDate)
		assert.Equal(t, "10:00", body.StartTime)

		writeJSON(w, http.StatusCreated, BookingResponse{
			ID:              100,
			UserID:          42,
			BusinessID:      body.BusinessID,
			ServiceID:       body.ServiceID,
			BookingDate:     body.BookingDate,
			StartTime:       body.StartTime,
			DurationMinutes: 30,
			Status:          "pendiente",
			CreatedAt:       "2026-03-01T10:00:00Z",
			UpdatedAt:       "2026-03-01T10:00:00Z",
		})
	})

	booking, err := client.CreateBooking(context.Background(), domain.BookingDraft{
		UserID:         42,
		BusinessID:     5,
		ServiceID:      7,
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Time:           "10:00",
		IdempotencyKey: "key-1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), booking.ID)
	assert.Equal(t, domain.StatusPending, booking.Status)
	assert.Equal(t, 30, booking.DurationMinutes)
	assert.Equal(t, types.TimeString("10:30"), booking.Interval().End)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "conflict", status: http.StatusConflict, wantErr: ErrConflict},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrValidation},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, wantErr: ErrValidation},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrUnauthorized},
		{name: "server error", status: http.StatusBadGateway, wantErr: ErrServer},
		{name: "unexpected", status: http.StatusTeapot, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, ErrorResponse{Code: tt.status, Message: "нет"})
			})

			_, err := client.CreateBooking(context.Background(), domain.BookingDraft{
				UserID: 1, BusinessID: 1, ServiceID: 1, Date: time.Now(), Time: "10:00",
			})

			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "нет")
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(baseURL, time.Second, time.UTC, logger.NewNop())
	_, err := client.GetSchedule(context.Background(), 1, nil)

	require.ErrorIs(t, err, ErrNetwork)
}
