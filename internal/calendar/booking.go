package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/calendarapi"
)

const (
	msgBooked        = "Бронирование создано"
	msgSlotTaken     = "Это время только что заняли, выберите другое"
	msgInvalidDraft  = "Проверьте выбранные дату и время"
	msgServerFailed  = "Сервис временно недоступен, попробуйте ещё раз"
	msgNetworkFailed = "Нет соединения с сервером, попробуйте ещё раз"
)

// BookingController собирает черновик из выбора, отправляет его и
// сразу убирает занятый слот из локальной доступности
type BookingController struct {
	store    *Store
	machine  *StateMachine
	api      API
	session  Session
	notifier Notifier
	logger   Logger
}

// NewBookingController создает контроллер бронирования
func NewBookingController(
	store *Store,
	machine *StateMachine,
	api API,
	session Session,
	notifier Notifier,
	logger Logger,
) *BookingController {
	return &BookingController{
		store:    store,
		machine:  machine,
		api:      api,
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
}

// CanSubmit true, если выбор полный и время всё ещё есть в последнем загруженном списке слотов
func (c *BookingController) CanSubmit() bool {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.readyLocked() == nil
}

// Draft собирает неизменяемый черновик бронирования из текущего выбора
func (c *BookingController) Draft(notes *string) (domain.BookingDraft, error) {
	if c.session == nil || c.session.UserID() <= 0 {
		return domain.BookingDraft{}, fmt.Errorf("%w: user is not authenticated", ErrValidation)
	}
	if role := c.session.Role(); role != domain.RoleClient {
		return domain.BookingDraft{}, fmt.Errorf("%w: role %q cannot book", ErrValidation, role)
	}
	if notes != nil && len(*notes) > domain.MaxNotesLength {
		return domain.BookingDraft{}, fmt.Errorf("%w: notes are longer than %d characters", ErrValidation, domain.MaxNotesLength)
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.readyLocked(); err != nil {
		return domain.BookingDraft{}, err
	}

	s := c.store
	draft := domain.BookingDraft{
		UserID:         c.session.UserID(),
		BusinessID:     s.scope.BusinessID,
		ServiceID:      s.scope.ServiceID,
		EmployeeID:     copyID(s.selection.EmployeeID),
		Date:           *s.selection.Date,
		Time:           *s.selection.Time,
		IdempotencyKey: uuid.NewString(),
	}
	if notes != nil {
		n := *notes
		draft.Notes = &n
	}
	return draft, nil
}

// Submit отправляет черновик.
// Успех: слот убирается из индекса и кэша дня без перезагрузки, фаза Confirmed.
// Конфликт: день перезагружается, время сбрасывается, возвращается BookingError{Kind: KindSlotConflict}.
// Остальные ошибки возвращаются как BookingError, состояние не меняется
func (c *BookingController) Submit(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	if err := validateDraft(draft); err != nil {
		c.logger.Warn("calendar: draft rejected: %v", err)
		return nil, &BookingError{Kind: KindValidation, Err: err}
	}

	submitCtx, cancel := context.WithTimeout(ctx, c.store.opts.fetchTimeout)
	defer cancel()

	booking, err := c.api.CreateBooking(submitCtx, draft)
	if err != nil {
		return nil, c.handleFailure(ctx, draft, err)
	}

	c.applyCreated(draft, booking)
	c.logger.Info("calendar: booking id=%d created for %s %s", booking.ID, draft.Date.Format(domain.DateFormat), draft.Time)
	c.notifier.ShowSuccess(msgBooked)

	return booking, nil
}

// Cancel отменяет черновик: выбранное время сбрасывается
func (c *BookingController) Cancel() {
	c.store.update(func() bool {
		s := c.store
		if s.selection.Time == nil && !s.confirmed {
			return false
		}
		s.selection.Time = nil
		s.confirmed = false
		return true
	})
}

func (c *BookingController) readyLocked() error {
	s := c.store
	switch {
	case s.scope.BusinessID <= 0 || s.scope.ServiceID <= 0:
		return fmt.Errorf("%w: business and service must be known", ErrValidation)
	case s.selection.Date == nil:
		return fmt.Errorf("%w: date is not selected", ErrValidation)
	case s.selection.Time == nil:
		return fmt.Errorf("%w: time is not selected", ErrValidation)
	case s.scope.RequireEmployee && s.selection.EmployeeID == nil:
		return fmt.Errorf("%w: employee is not selected", ErrValidation)
	case s.daySlots == nil || !sameDay(s.daySlots.Date, *s.selection.Date) || !s.daySlots.HasSlot(*s.selection.Time):
		return fmt.Errorf("%w: %s is no longer in the slot list", ErrValidation, *s.selection.Time)
	}
	return nil
}

func (c *BookingController) handleFailure(ctx context.Context, draft domain.BookingDraft, cause error) error {
	switch {
	case errors.Is(cause, calendarapi.ErrConflict):
		c.logger.Warn("calendar: slot %s %s was taken: %v", draft.Date.Format(domain.DateFormat), draft.Time, cause)
		c.notifier.ShowWarning(msgSlotTaken)

		c.store.update(func() bool {
			s := c.store
			if s.selection.Date == nil || !sameDay(*s.selection.Date, draft.Date) {
				return false
			}
			s.selection.Time = nil
			return true
		})
		if err := c.machine.RefreshDay(ctx); err != nil {
			c.logger.Warn("calendar: failed to refresh day after conflict: %v", err)
		}
		return &BookingError{Kind: KindSlotConflict, Err: cause}

	case errors.Is(cause, calendarapi.ErrValidation), errors.Is(cause, calendarapi.ErrUnauthorized):
		c.logger.Warn("calendar: booking rejected: %v", cause)
		c.notifier.ShowError(msgInvalidDraft)
		return &BookingError{Kind: KindValidation, Err: cause}

	case errors.Is(cause, calendarapi.ErrServer):
		c.logger.Error("calendar: booking failed on server: %v", cause)
		c.notifier.ShowError(msgServerFailed)
		return &BookingError{Kind: KindServer, Err: cause}

	default:
		c.logger.Error("calendar: booking request failed: %v", cause)
		c.notifier.ShowError(msgNetworkFailed)
		return &BookingError{Kind: KindNetwork, Err: cause}
	}
}

// applyCreated добавляет интервал нового бронирования к интервалам месяца и пересчитывает день.
// Так пропадают все слоты, пересекающиеся с бронированием, а не только выбранный.
// Интервал остаётся в ожидании, пока его не вернёт загрузка, отправленная после бронирования
func (c *BookingController) applyCreated(draft domain.BookingDraft, booking *domain.Booking) {
	interval := c.intervalOf(draft, booking)

	c.store.update(func() bool {
		s := c.store
		s.bookingSeq++
		s.pending = append(s.pending, pendingInterval{interval: interval, seq: s.bookingSeq})

		selectedDay := s.selection.Date != nil && sameDay(*s.selection.Date, interval.Date)

		s.invalidateDateLocked(interval.Date)
		if s.index.Matches(s.year, s.month, s.employeeKeyLocked()) && s.index.Covers(interval.Date) {
			s.booked = append(s.booked, interval)
			day := s.computeDayLocked(interval.Date)
			s.patchDayLocked(day)
			if selectedDay {
				s.daySlots = &day
			}
		} else if s.daySlots != nil && sameDay(s.daySlots.Date, interval.Date) {
			day := s.generator.Without(*s.daySlots, interval, s.scope.DurationMinutes, s.opts.granularityMinutes, s.availabilityScopeLocked())
			s.daySlots = &day
		}

		// Подтверждение относится к выбору, из которого собран черновик.
		// Если пользователь уже выбрал другое время, оно сохраняется, пока остаётся свободным
		if selectedDay && s.selection.Time != nil {
			switch {
			case *s.selection.Time == draft.Time:
				s.selection.Time = nil
				s.confirmed = true
			case s.daySlots != nil && !s.daySlots.HasSlot(*s.selection.Time):
				s.selection.Time = nil
			}
		}
		s.lastBooking = booking
		return true
	})
}

func (c *BookingController) intervalOf(draft domain.BookingDraft, booking *domain.Booking) domain.BookedInterval {
	b := *booking
	if b.BookingDate.IsZero() {
		b.BookingDate = draft.Date
	}
	if b.StartTime.IsZero() {
		b.StartTime = draft.Time
	}
	if b.EmployeeID == nil {
		b.EmployeeID = copyID(draft.EmployeeID)
	}
	if b.DurationMinutes <= 0 {
		b.DurationMinutes = c.store.scope.DurationMinutes
	}
	if b.DurationMinutes <= 0 {
		b.DurationMinutes = c.store.opts.granularityMinutes
	}
	if !b.Status.IsValid() {
		b.Status = domain.StatusPending
	}

	interval := b.Interval()
	interval.Date = c.store.normalizeDate(b.BookingDate)
	return interval
}

func validateDraft(draft domain.BookingDraft) error {
	switch {
	case draft.UserID <= 0:
		return fmt.Errorf("%w: userID must be positive", ErrValidation)
	case draft.BusinessID <= 0:
		return fmt.Errorf("%w: businessID must be positive", ErrValidation)
	case draft.ServiceID <= 0:
		return fmt.Errorf("%w: serviceID must be positive", ErrValidation)
	case draft.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if err := draft.Time.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time: %v", ErrValidation, err)
	}
	return nil
}
