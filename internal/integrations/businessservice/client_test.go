package businessservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, logger.NewNop())
}

func TestClient_GetBusiness(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/businesses/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"name":"Barbería","managerIds":[1],"employeeIds":[10,11]}`))
	})

	business, err := client.GetBusiness(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Barbería", business.Name)
	assert.True(t, business.IsManager(1))
	assert.False(t, business.IsManager(10))
	assert.True(t, business.HasEmployee(11))
}

func TestClient_GetService(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/businesses/7/services/3", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":3,"name":"Corte","durationMinutes":45,"employeeIds":[10]}`))
	})

	service, err := client.GetService(context.Background(), 7, 3)
	require.NoError(t, err)

	info := service.ToDomain()
	assert.Equal(t, int64(7), info.BusinessID)
	assert.Equal(t, 45, info.DurationMinutes)
	assert.Equal(t, []int64{10}, info.AssignedEmployeeIDs)
	assert.True(t, info.RequiresEmployee())
}

func TestClient_GetService_InvalidDuration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"name":"Corte","durationMinutes":0}`))
	})

	_, err := client.GetService(context.Background(), 7, 3)
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: ErrBusinessNotFound},
		{name: "bad request", status: http.StatusBadRequest, want: ErrInvalidResponse},
		{name: "server error", status: http.StatusInternalServerError, want: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.GetBusiness(context.Background(), 7)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, logger.NewNop())

	_, err := client.GetBusiness(context.Background(), 7)
	require.ErrorIs(t, err, ErrInternal)
}
