package availability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

const keyPrefix = "availability"

// MonthKey ключ записи доступности на месяц
type MonthKey struct {
	BusinessID int64
	ServiceID  int64
	EmployeeID *int64
	Year       int
	Month      time.Month
}

// String availability:{business}:{service}:{employee|all}:{YYYY-MM}
func (k MonthKey) String() string {
	employee := "all"
	if k.EmployeeID != nil {
		employee = strconv.FormatInt(*k.EmployeeID, 10)
	}
	return fmt.Sprintf("%s:%d:%d:%s:%s", keyPrefix, k.BusinessID, k.ServiceID, employee, monthToken(k.Year, k.Month))
}

// businessMonthPattern шаблон всех записей бизнеса за месяц
func businessMonthPattern(businessID int64, year int, month time.Month) string {
	return fmt.Sprintf("%s:%d:*:*:%s", keyPrefix, businessID, monthToken(year, month))
}

func monthToken(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

type dayEntry struct {
	Date      string             `json:"date"`
	Open      bool               `json:"open"`
	Available bool               `json:"available"`
	Slots     []types.TimeString `json:"slots"`
}

func toEntries(days []domain.DayAvailability) []dayEntry {
	entries := make([]dayEntry, len(days))
	for i, d := range days {
		entries[i] = dayEntry{
			Date:      d.Date.Format(domain.DateFormat),
			Open:      d.Open,
			Available: d.Available,
			Slots:     d.Slots,
		}
	}
	return entries
}

func fromEntries(entries []dayEntry, loc *time.Location) ([]domain.DayAvailability, error) {
	days := make([]domain.DayAvailability, len(entries))
	for i, e := range entries {
		date, err := time.ParseInLocation(domain.DateFormat, e.Date, loc)
		if err != nil {
			return nil, err
		}
		slots := e.Slots
		if slots == nil {
			slots = []types.TimeString{}
		}
		days[i] = domain.DayAvailability{
			Date:      date,
			Open:      e.Open,
			Available: e.Available,
			Slots:     slots,
		}
	}
	return days, nil
}
