package get_booked_intervals

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/handlers"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/bookings/models"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidEmployeeID = "некорректный ID сотрудника"
	msgInvalidPeriod     = "нужно указать date (YYYY-MM-DD) или year и month"
)

type Handler struct {
	service  BookingService
	location *time.Location
	logger   Logger
}

func NewHandler(service BookingService, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/booked-intervals
// Query params: date или year+month, employeeId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/booked-intervals - Invalid business ID: %s", r.URL.Path)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/booked-intervals - Invalid employee ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	req := &models.GetBookedIntervalsRequest{
		BusinessID: businessID,
		EmployeeID: employeeID,
		Location:   h.location,
	}

	// Один день или целый месяц
	if r.URL.Query().Get("date") != "" {
		date, err := handlers.QueryDate(r, "date", h.location)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/booked-intervals - Invalid date: %q", r.URL.Query().Get("date"))
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		req.Date = &date
	} else {
		year, month, err := handlers.QueryMonth(r)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/booked-intervals - Invalid period: %s", r.URL.RawQuery)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		req.Year, req.Month = year, month
	}

	result, err := h.service.GetBookedIntervals(r.Context(), req)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}

		h.logger.Error("GET /businesses/{id}/booked-intervals - Failed to get intervals: business_id=%d, error=%v",
			businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /businesses/{id}/booked-intervals - Intervals retrieved successfully: business_id=%d, count=%d",
		businessID, len(result.Intervals))
	handlers.RespondJSON(w, http.StatusOK, result)
}
