package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// TimeRange интервал работы
type TimeRange struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "13:00"
}

// DaySchedule расписание дня недели
type DaySchedule struct {
	Enabled bool        `json:"enabled"`
	Ranges  []TimeRange `json:"ranges"`
}

// UpdateScheduleRequest запрос на замену расписания
type UpdateScheduleRequest struct {
	UserID     int64                  `json:"-"`
	BusinessID int64                  `json:"-"`
	EmployeeID *int64                 `json:"-"`
	Days       map[string]DaySchedule `json:"days"`
}

// ScheduleResponse недельное расписание.
// Ключи days: lunes, martes, miercoles, jueves, viernes, sabado, domingo
type ScheduleResponse struct {
	BusinessID int64                  `json:"businessId"`
	EmployeeID *int64                 `json:"employeeId,omitempty"`
	Days       map[string]DaySchedule `json:"days"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// ToDomain конвертирует запрос в domain модель.
// Дни, отсутствующие в запросе, считаются выключенными
func (r *UpdateScheduleRequest) ToDomain() (*domain.WeeklySchedule, error) {
	schedule := &domain.WeeklySchedule{
		BusinessID: r.BusinessID,
		EmployeeID: r.EmployeeID,
		Days:       make(map[domain.Weekday]domain.DaySchedule, len(domain.Weekdays)),
	}

	for key, day := range r.Days {
		weekday := domain.Weekday(key)
		if !weekday.IsValid() {
			return nil, fmt.Errorf("unknown weekday %q", key)
		}

		ranges := make([]domain.TimeRange, 0, len(day.Ranges))
		for _, tr := range day.Ranges {
			start, err := types.NewTimeStringFromString(tr.Start)
			if err != nil {
				return nil, fmt.Errorf("%s: start %q: %v", key, tr.Start, err)
			}
			end, err := types.NewTimeStringFromString(tr.End)
			if err != nil {
				return nil, fmt.Errorf("%s: end %q: %v", key, tr.End, err)
			}
			ranges = append(ranges, domain.TimeRange{Start: start, End: end})
		}

		schedule.Days[weekday] = domain.DaySchedule{Enabled: day.Enabled, Ranges: ranges}
	}

	return schedule, nil
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.WeeklySchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		BusinessID: s.BusinessID,
		EmployeeID: s.EmployeeID,
		Days:       make(map[string]DaySchedule, len(domain.Weekdays)),
		UpdatedAt:  s.UpdatedAt,
	}

	for _, weekday := range domain.Weekdays {
		ds := s.Days[weekday]
		ranges := make([]TimeRange, len(ds.Ranges))
		for i, r := range ds.Ranges {
			ranges[i] = TimeRange{Start: r.Start.String(), End: r.End.String()}
		}
		resp.Days[string(weekday)] = DaySchedule{Enabled: ds.Enabled, Ranges: ranges}
	}

	return resp
}
