package schedule

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
)

// validateSchedule проверяет интервалы каждого дня:
// корректные границы, не больше MaxRangesPerDay, без пересечений.
// У включённого дня должен быть хотя бы один интервал
func validateSchedule(s *domain.WeeklySchedule) error {
	for weekday, day := range s.Days {
		if !day.Enabled {
			continue
		}

		if len(day.Ranges) == 0 {
			return fmt.Errorf("%w: %s is enabled but has no ranges", ErrInvalidSchedule, weekday)
		}
		if len(day.Ranges) > domain.MaxRangesPerDay {
			return fmt.Errorf("%w: %s has more than %d ranges", ErrInvalidSchedule, weekday, domain.MaxRangesPerDay)
		}

		ranges := make([]domain.TimeRange, len(day.Ranges))
		copy(ranges, day.Ranges)
		sort.Slice(ranges, func(i, j int) bool {
			return ranges[i].Start.Minutes() < ranges[j].Start.Minutes()
		})

		for i, r := range ranges {
			if !r.IsValid() {
				return fmt.Errorf("%w: %s range %s-%s is invalid", ErrInvalidSchedule, weekday, r.Start, r.End)
			}
			if i > 0 && ranges[i-1].Overlaps(r) {
				return fmt.Errorf("%w: %s ranges %s-%s and %s-%s overlap",
					ErrInvalidSchedule, weekday, ranges[i-1].Start, ranges[i-1].End, r.Start, r.End)
			}
		}
	}
	return nil
}
