package get_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/middleware"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/ptr"
)

type fakeService struct {
	id, userID int64
	resp       *models.BookingResponse
	err        error
}

func (f *fakeService) GetByID(_ context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	f.id, f.userID = id, userID
	return f.resp, f.err
}

func serve(h *Handler, target string, userID int64) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/bookings/{bookingId}", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != 0 {
		req = req.WithContext(middleware.WithUser(req.Context(), userID, "client"))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Handle_AddsInterval(t *testing.T) {
	svc := &fakeService{resp: &models.BookingResponse{
		ID:              5,
		UserID:          42,
		EmployeeID:      ptr.Ptr(int64(12)),
		BookingDate:     "2026-03-02",
		StartTime:       "10:00",
		DurationMinutes: 90,
		Status:          "confirmada",
	}}
	h := NewHandler(svc, logger.NewNop())

	w := serve(h, "/api/v1/bookings/5", 42)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), svc.id)
	assert.Equal(t, int64(42), svc.userID)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "10:00", body["startTime"])
	assert.Equal(t, "11:30", body["endTime"])
	assert.Equal(t, true, body["active"])
	assert.Equal(t, true, body["cancellable"])
	assert.Equal(t, "2026-03-02", body["bookingDate"])
}

func TestFromServiceResponse(t *testing.T) {
	tests := []struct {
		name        string
		resp        models.BookingResponse
		end         string
		active      bool
		cancellable bool
	}{
		{
			name:        "pending",
			resp:        models.BookingResponse{StartTime: "09:30", DurationMinutes: 30, Status: "pendiente"},
			end:         "10:00",
			active:      true,
			cancellable: true,
		},
		{
			name:   "cancelled",
			resp:   models.BookingResponse{StartTime: "09:30", DurationMinutes: 60, Status: "cancelada"},
			end:    "10:30",
			active: false,
		},
		{
			name:   "past midnight",
			resp:   models.BookingResponse{StartTime: "23:30", DurationMinutes: 60, Status: "completada"},
			end:    "24:00",
			active: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.resp
			got := FromServiceResponse(&resp)
			assert.Equal(t, tt.end, got.EndTime)
			assert.Equal(t, tt.active, got.Active)
			assert.Equal(t, tt.cancellable, got.Cancellable)
		})
	}
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		userID int64
		err    error
		code   int
	}{
		{name: "no user", target: "/api/v1/bookings/5", code: http.StatusUnauthorized},
		{name: "bad id", target: "/api/v1/bookings/abc", userID: 42, code: http.StatusBadRequest},
		{name: "not found", target: "/api/v1/bookings/5", userID: 42, err: bookings.ErrBookingNotFound, code: http.StatusNotFound},
		{name: "foreign booking", target: "/api/v1/bookings/5", userID: 42, err: bookings.ErrAccessDenied, code: http.StatusForbidden},
		{name: "business gone", target: "/api/v1/bookings/5", userID: 42, err: bookings.ErrBusinessNotFound, code: http.StatusForbidden},
		{name: "internal", target: "/api/v1/bookings/5", userID: 42, err: bookings.ErrInternal, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, logger.NewNop())
			w := serve(h, tt.target, tt.userID)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
