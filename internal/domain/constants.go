package domain

// Default availability values
const (
	DefaultGranularityMinutes = 30
	DefaultAdvanceBookingDays = 90
	DefaultMinNoticeMinutes   = 0
)

// Business validation constants
const (
	MinGranularityMinutes       = 5
	MaxGranularityMinutes       = 240
	MaxDurationMinutes          = 480 // 8 hours
	MaxRangesPerDay             = 8
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat  = "15:04"      // HH:MM
	DateFormat  = "2006-01-02" // YYYY-MM-DD
	MonthFormat = "2006-01"    // YYYY-MM
)

// User roles exposed by the session
const (
	RoleClient   = "cliente"
	RoleBusiness = "negocio"
	RoleEmployee = "empleado"
)

// InactiveStatuses statuses that do not block availability
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
}
