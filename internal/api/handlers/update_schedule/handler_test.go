package update_schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/middleware"
	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/schedule/models"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
)

const body = `{"days":{"lunes":{"enabled":true,"ranges":[{"start":"09:00","end":"18:00"}]}}}`

type fakeService struct {
	req *models.UpdateScheduleRequest
	err error
}

func (f *fakeService) Update(_ context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScheduleResponse{BusinessID: req.BusinessID, EmployeeID: req.EmployeeID, Days: req.Days}, nil
}

func serve(h *Handler, target, payload string, userID int64) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/businesses/{businessId}/schedule", h.Handle).Methods(http.MethodPut)

	r := httptest.NewRequest(http.MethodPut, target, strings.NewReader(payload))
	if userID > 0 {
		r = r.WithContext(middleware.WithUser(r.Context(), userID, domain.RoleBusiness))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandler_Handle(t *testing.T) {
	svc := &fakeService{}
	w := serve(NewHandler(svc, logger.NewNop()), "/api/v1/businesses/7/schedule?employeeId=12", body, 5)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), svc.req.UserID)
	assert.Equal(t, int64(7), svc.req.BusinessID)
	require.NotNil(t, svc.req.EmployeeID)
	assert.Equal(t, int64(12), *svc.req.EmployeeID)
	assert.Equal(t, "09:00", svc.req.Days["lunes"].Ranges[0].Start)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		payload string
		userID  int64
		err     error
		status  int
	}{
		{name: "no user", target: "/api/v1/businesses/7/schedule", payload: body, status: http.StatusUnauthorized},
		{name: "bad business", target: "/api/v1/businesses/0/schedule", payload: body, userID: 5, status: http.StatusBadRequest},
		{name: "bad employee", target: "/api/v1/businesses/7/schedule?employeeId=-1", payload: body, userID: 5, status: http.StatusBadRequest},
		{name: "bad body", target: "/api/v1/businesses/7/schedule", payload: `{"days":`, userID: 5, status: http.StatusBadRequest},
		{name: "invalid schedule", target: "/api/v1/businesses/7/schedule", payload: body, userID: 5, err: schedule.ErrInvalidSchedule, status: http.StatusBadRequest},
		{name: "business not found", target: "/api/v1/businesses/7/schedule", payload: body, userID: 5, err: schedule.ErrBusinessNotFound, status: http.StatusNotFound},
		{name: "employee not found", target: "/api/v1/businesses/7/schedule?employeeId=12", payload: body, userID: 5, err: schedule.ErrEmployeeNotFound, status: http.StatusNotFound},
		{name: "not a manager", target: "/api/v1/businesses/7/schedule", payload: body, userID: 5, err: schedule.ErrAccessDenied, status: http.StatusForbidden},
		{name: "internal", target: "/api/v1/businesses/7/schedule", payload: body, userID: 5, err: schedule.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			w := serve(NewHandler(svc, logger.NewNop()), tt.target, tt.payload, tt.userID)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
