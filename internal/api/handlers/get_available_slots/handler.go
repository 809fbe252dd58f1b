package get_available_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/handlers"
	"github.com/m04kA/SMC-BookingCalendar/internal/api/middleware"
	getAvailableSlots "github.com/m04kA/SMC-BookingCalendar/internal/usecase/get_available_slots"
)

const (
	msgInvalidBusinessID   = "некорректный ID бизнеса"
	msgInvalidServiceID    = "ID услуги обязателен и должен быть положительным"
	msgInvalidEmployeeID   = "некорректный ID сотрудника"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgPastDate            = "дата уже прошла"
	msgDateTooFar          = "дата слишком далеко в будущем"
	msgServiceNotFound     = "услуга не найдена"
	msgEmployeeNotAssigned = "сотрудник не оказывает эту услугу"
	msgInvalidParams       = "некорректные параметры запроса"
)

type Handler struct {
	useCase  GetAvailableSlotsUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/available-slots
// Query params: serviceId (required), date (required, YYYY-MM-DD), employeeId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid business ID: %s", r.URL.Path)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	serviceID, err := handlers.QueryInt64(r, "serviceId")
	if err != nil || serviceID == nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid service ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid employee ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	date, err := handlers.QueryDate(r, "date", h.location)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/available-slots - Invalid date: %q", r.URL.Query().Get("date"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Пользователь необязателен: эндпоинт публичный
	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		UserID:     userID,
		BusinessID: businessID,
		ServiceID:  *serviceID,
		EmployeeID: employeeID,
		Date:       date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /businesses/{id}/available-slots - Service not found: business_id=%d, service_id=%d",
				businessID, *serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrEmployeeNotAssigned):
			h.logger.Warn("GET /businesses/{id}/available-slots - Employee not assigned: service_id=%d", *serviceID)
			handlers.RespondBadRequest(w, msgEmployeeNotAssigned)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /businesses/{id}/available-slots - Failed to get slots: business_id=%d, service_id=%d, error=%v",
				businessID, *serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/available-slots - Slots retrieved successfully: business_id=%d, service_id=%d, slots_count=%d",
		businessID, *serviceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
