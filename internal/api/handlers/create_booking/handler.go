package create_booking

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/api/handlers"
	"github.com/m04kA/SMC-BookingCalendar/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-BookingCalendar/internal/usecase/create_booking"
)

const headerIdempotencyKey = "Idempotency-Key"

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDate         = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTime         = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidInput        = "некорректные данные бронирования"
	msgForbiddenRole       = "бронировать может только клиент"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgServiceNotFound     = "услуга не найдена"
	msgEmployeeRequired    = "для этой услуги нужно выбрать сотрудника"
	msgEmployeeNotAssigned = "сотрудник не оказывает эту услугу"
	msgBusinessClosed      = "бизнес не работает в выбранную дату"
	msgInvalidBookingDate  = "некорректная дата бронирования"
	msgDateTooFar          = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook       = "слишком поздно для бронирования этого слота"
)

type Handler struct {
	useCase  CreateBookingUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateBookingUseCase, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings
// Header Idempotency-Key (опционально): повтор с тем же ключом вернёт 200 и уже созданное бронирование
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(h.location)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	useCaseReq.UserID = userID
	useCaseReq.UserRole = middleware.GetUserRole(r.Context())
	if key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey)); key != "" {
		useCaseReq.IdempotencyKey = &key
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, business_id=%d, time=%s",
				userID, req.BusinessID, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrForbiddenRole):
			h.logger.Warn("POST /bookings - Forbidden role: user_id=%d, role=%s", userID, useCaseReq.UserRole)
			handlers.RespondForbidden(w, msgForbiddenRole)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: business_id=%d, service_id=%d", req.BusinessID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrEmployeeRequired):
			h.logger.Warn("POST /bookings - Employee required: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgEmployeeRequired)

		case errors.Is(err, createBooking.ErrEmployeeNotAssigned):
			h.logger.Warn("POST /bookings - Employee not assigned: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgEmployeeNotAssigned)

		case errors.Is(err, createBooking.ErrBusinessClosed):
			h.logger.Warn("POST /bookings - Business closed: business_id=%d, date=%s", req.BusinessID, req.BookingDate)
			handlers.RespondBadRequest(w, msgBusinessClosed)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: user_id=%d, date=%s", userID, req.BookingDate)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: user_id=%d, date=%s", userID, req.BookingDate)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: user_id=%d, time=%s", userID, req.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, business_id=%d, error=%v",
				userID, req.BusinessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	if result.Replayed {
		h.logger.Info("POST /bookings - Idempotent replay: booking_id=%d, user_id=%d", result.Booking.ID, userID)
		handlers.RespondJSON(w, http.StatusOK, response)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, business_id=%d",
		result.Booking.ID, userID, req.BusinessID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
