package get_month_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/handlers"
	"github.com/m04kA/SMC-BookingCalendar/internal/api/middleware"
	getMonthAvailability "github.com/m04kA/SMC-BookingCalendar/internal/usecase/get_month_availability"
)

const (
	msgInvalidBusinessID   = "некорректный ID бизнеса"
	msgInvalidServiceID    = "ID услуги обязателен и должен быть положительным"
	msgInvalidEmployeeID   = "некорректный ID сотрудника"
	msgInvalidMonth        = "некорректный месяц, ожидаются year и month"
	msgPastMonth           = "месяц уже прошёл"
	msgMonthTooFar         = "месяц слишком далеко в будущем"
	msgServiceNotFound     = "услуга не найдена"
	msgEmployeeNotAssigned = "сотрудник не оказывает эту услугу"
)

type Handler struct {
	useCase GetMonthAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetMonthAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/month-availability
// Query params: serviceId (required), year, month (required), employeeId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/month-availability - Invalid business ID: %s", r.URL.Path)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	serviceID, err := handlers.QueryInt64(r, "serviceId")
	if err != nil || serviceID == nil {
		h.logger.Warn("GET /businesses/{id}/month-availability - Invalid service ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/month-availability - Invalid employee ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	year, month, err := handlers.QueryMonth(r)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/month-availability - Invalid month: %s", r.URL.RawQuery)
		handlers.RespondBadRequest(w, msgInvalidMonth)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getMonthAvailability.Request{
		UserID:     userID,
		BusinessID: businessID,
		ServiceID:  *serviceID,
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
	})
	if err != nil {
		switch {
		case errors.Is(err, getMonthAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /businesses/{id}/month-availability - Service not found: business_id=%d, service_id=%d",
				businessID, *serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getMonthAvailability.ErrEmployeeNotAssigned):
			handlers.RespondBadRequest(w, msgEmployeeNotAssigned)

		case errors.Is(err, getMonthAvailability.ErrInvalidMonth):
			handlers.RespondBadRequest(w, msgPastMonth)

		case errors.Is(err, getMonthAvailability.ErrMonthTooFarInFuture):
			handlers.RespondBadRequest(w, msgMonthTooFar)

		case errors.Is(err, getMonthAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidMonth)

		default:
			h.logger.Error("GET /businesses/{id}/month-availability - Failed to get availability: business_id=%d, service_id=%d, error=%v",
				businessID, *serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /businesses/{id}/month-availability - Availability retrieved: business_id=%d, month=%04d-%02d, available_days=%d",
		businessID, year, int(month), len(response.AvailableDates))
	handlers.RespondJSON(w, http.StatusOK, response)
}
