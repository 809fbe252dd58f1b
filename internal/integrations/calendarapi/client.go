package calendarapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

const (
	headerUserID         = "X-User-ID"
	headerUserRole       = "X-User-Role"
	headerIdempotencyKey = "Idempotency-Key"
)

// Client клиент для работы с API бронирований
type Client struct {
	baseURL    string
	httpClient *http.Client
	location   *time.Location
	log        Logger
}

// NewClient создает новый экземпляр клиента API бронирований
func NewClient(baseURL string, timeout time.Duration, location *time.Location, log Logger) *Client {
	if location == nil {
		location = time.Local
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		location: location,
		log:      log,
	}
}

// GetSchedule получает недельное расписание бизнеса или сотрудника
func (c *Client) GetSchedule(ctx context.Context, businessID int64, employeeID *int64) (*domain.WeeklySchedule, error) {
	query := url.Values{}
	if employeeID != nil {
		query.Set("employeeId", strconv.FormatInt(*employeeID, 10))
	}
	endpoint := c.endpoint(fmt.Sprintf("/api/v1/businesses/%d/schedule", businessID), query)

	var resp ScheduleResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}

	schedule, err := resp.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return schedule, nil
}

// GetBookedIntervals получает занятые интервалы за день или за месяц
func (c *Client) GetBookedIntervals(ctx context.Context, q IntervalsQuery) ([]domain.BookedInterval, error) {
	query := url.Values{}
	switch {
	case q.Date != nil:
		query.Set("date", q.Date.Format(domain.DateFormat))
	case q.Year > 0 && q.Month >= time.January && q.Month <= time.December:
		query.Set("year", strconv.Itoa(q.Year))
		query.Set("month", strconv.Itoa(int(q.Month)))
	default:
		return nil, fmt.Errorf("%w: either date or year and month must be set", ErrInternal)
	}
	if q.EmployeeID != nil {
		query.Set("employeeId", strconv.FormatInt(*q.EmployeeID, 10))
	}
	endpoint := c.endpoint(fmt.Sprintf("/api/v1/businesses/%d/booked-intervals", q.BusinessID), query)

	var resp BookedIntervalsResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}

	result := make([]domain.BookedInterval, 0, len(resp.Intervals))
	for _, raw := range resp.Intervals {
		interval, err := raw.ToDomain(c.location)
		if err != nil {
			// Один битый интервал не должен ломать весь календарь
			c.log.Warn("calendarapi: skipping malformed interval booking_id=%d: %v", raw.BookingID, err)
			continue
		}
		result = append(result, interval)
	}
	return result, nil
}

// CreateBooking создает бронирование из черновика
func (c *Client) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	body, err := json.Marshal(FromDraft(draft))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	headers := map[string]string{
		headerUserID:   strconv.FormatInt(draft.UserID, 10),
		headerUserRole: domain.RoleClient,
	}
	if draft.IdempotencyKey != "" {
		headers[headerIdempotencyKey] = draft.IdempotencyKey
	}

	var resp BookingResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint("/api/v1/bookings", nil), body, headers, &resp); err != nil {
		return nil, err
	}

	booking, err := resp.ToDomain(c.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.log.Info("calendarapi: booking id=%d created for %s %s", booking.ID, resp.BookingDate, resp.StartTime)
	return booking, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	if len(query) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + query.Encode()
}

// do выполняет запрос и раскладывает статус-коды по классам ошибок
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, endpoint, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, readMessage(resp.Body))
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, readMessage(resp.Body))
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrValidation, readMessage(resp.Body))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, readMessage(resp.Body))
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, readMessage(resp.Body))
	default:
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, readMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

// readMessage достаёт message из тела ошибки, иначе возвращает тело как есть
func readMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))

	var errResp ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}
	return string(raw)
}
