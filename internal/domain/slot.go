package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// DayAvailability bookable slots of a single day.
// Derived, never stored: recomputed when schedule, month or employee scope changes.
type DayAvailability struct {
	Date      time.Time
	Open      bool // the weekday has at least one enabled range
	Available bool // len(Slots) > 0
	Slots     []types.TimeString
}

// HasSlot returns true if t is one of the bookable slots
func (d *DayAvailability) HasSlot(t types.TimeString) bool {
	for _, s := range d.Slots {
		if s == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out to observers
func (d DayAvailability) Clone() DayAvailability {
	slots := make([]types.TimeString, len(d.Slots))
	copy(slots, d.Slots)
	d.Slots = slots
	return d
}
