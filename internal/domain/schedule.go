package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// Weekday key of a weekly schedule
type Weekday string

const (
	Monday    Weekday = "lunes"
	Tuesday   Weekday = "martes"
	Wednesday Weekday = "miercoles"
	Thursday  Weekday = "jueves"
	Friday    Weekday = "viernes"
	Saturday  Weekday = "sabado"
	Sunday    Weekday = "domingo"
)

// Weekdays all keys in calendar order starting from Monday
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf returns the schedule key for the weekday of date
func WeekdayOf(date time.Time) Weekday {
	switch date.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// IsValid returns true for one of the seven known keys
func (w Weekday) IsValid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// TimeRange working interval [Start, End) within a day
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// IsValid returns true if both bounds parse and Start < End
func (r TimeRange) IsValid() bool {
	start, end := r.Start.Minutes(), r.End.Minutes()
	return start >= 0 && end >= 0 && start < end
}

// Overlaps reports whether two ranges intersect
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Minutes() < other.End.Minutes() && other.Start.Minutes() < r.End.Minutes()
}

// DaySchedule working ranges of a single weekday
type DaySchedule struct {
	Enabled bool
	Ranges  []TimeRange
}

// WeeklySchedule recurring availability of a business or an employee.
// Read-only value: changes go through the schedule service and are re-fetched.
type WeeklySchedule struct {
	BusinessID int64
	EmployeeID *int64 // nil = business-wide schedule
	Days       map[Weekday]DaySchedule
	UpdatedAt  time.Time
}

// RangesFor returns the ranges of a weekday; empty if the day is disabled
func (s *WeeklySchedule) RangesFor(day Weekday) []TimeRange {
	if s == nil {
		return nil
	}
	ds, ok := s.Days[day]
	if !ok || !ds.Enabled {
		return nil
	}
	return ds.Ranges
}

// IsEnabled returns true if the weekday is open
func (s *WeeklySchedule) IsEnabled(day Weekday) bool {
	if s == nil {
		return false
	}
	ds, ok := s.Days[day]
	return ok && ds.Enabled
}

// IsEmployeeSchedule returns true if the schedule belongs to an employee
func (s *WeeklySchedule) IsEmployeeSchedule() bool {
	return s.EmployeeID != nil
}
