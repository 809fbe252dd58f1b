package get_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/handlers"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/schedule"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidEmployeeID = "некорректный ID сотрудника"
	msgNotFound          = "расписание не найдено"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/schedule
// Query params: employeeId (optional). Без своего расписания у сотрудника отдаётся расписание бизнеса
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/schedule - Invalid business ID: %s", r.URL.Path)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/schedule - Invalid employee ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	result, err := h.service.Get(r.Context(), businessID, employeeID)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			h.logger.Warn("GET /businesses/{id}/schedule - Schedule not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("GET /businesses/{id}/schedule - Failed to get schedule: business_id=%d, error=%v", businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /businesses/{id}/schedule - Schedule retrieved successfully: business_id=%d", businessID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
