package get_booked_intervals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
)

type fakeService struct {
	req  *models.GetBookedIntervalsRequest
	resp *models.BookedIntervalsResponse
	err  error
}

func (f *fakeService) GetBookedIntervals(_ context.Context, req *models.GetBookedIntervalsRequest) (*models.BookedIntervalsResponse, error) {
	f.req = req
	return f.resp, f.err
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/businesses/{businessId}/booked-intervals", h.Handle).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandler_Handle_Day(t *testing.T) {
	svc := &fakeService{resp: &models.BookedIntervalsResponse{BusinessID: 7}}
	h := NewHandler(svc, time.UTC, logger.NewNop())

	w := serve(h, "/api/v1/businesses/7/booked-intervals?date=2026-03-02&employeeId=12")
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, svc.req.Date)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *svc.req.Date)
	require.NotNil(t, svc.req.EmployeeID)
	assert.Equal(t, int64(12), *svc.req.EmployeeID)
}

func TestHandler_Handle_Month(t *testing.T) {
	svc := &fakeService{resp: &models.BookedIntervalsResponse{BusinessID: 7}}
	h := NewHandler(svc, time.UTC, logger.NewNop())

	w := serve(h, "/api/v1/businesses/7/booked-intervals?year=2026&month=3")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Nil(t, svc.req.Date)
	assert.Nil(t, svc.req.EmployeeID)
	assert.Equal(t, 2026, svc.req.Year)
	assert.Equal(t, time.March, svc.req.Month)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{name: "bad business", target: "/api/v1/businesses/x/booked-intervals?year=2026&month=3", status: http.StatusBadRequest},
		{name: "no period", target: "/api/v1/businesses/7/booked-intervals", status: http.StatusBadRequest},
		{name: "bad date", target: "/api/v1/businesses/7/booked-intervals?date=02.03.2026", status: http.StatusBadRequest},
		{name: "bad employee", target: "/api/v1/businesses/7/booked-intervals?year=2026&month=3&employeeId=abc", status: http.StatusBadRequest},
		{name: "invalid input", target: "/api/v1/businesses/7/booked-intervals?year=2026&month=3", err: bookings.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "internal", target: "/api/v1/businesses/7/booked-intervals?year=2026&month=3", err: bookings.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err, resp: &models.BookedIntervalsResponse{}}
			w := serve(NewHandler(svc, time.UTC, logger.NewNop()), tt.target)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
