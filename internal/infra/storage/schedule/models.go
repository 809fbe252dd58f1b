package schedule

import (
	"encoding/json"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

// rangeRow интервал в колонке ranges (jsonb)
type rangeRow struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

func encodeRanges(ranges []domain.TimeRange) ([]byte, error) {
	rows := make([]rangeRow, len(ranges))
	for i, r := range ranges {
		rows[i] = rangeRow{Start: r.Start, End: r.End}
	}
	return json.Marshal(rows)
}

func decodeRanges(raw []byte) ([]domain.TimeRange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []rangeRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	ranges := make([]domain.TimeRange, len(rows))
	for i, r := range rows {
		ranges[i] = domain.TimeRange{Start: r.Start, End: r.End}
	}
	return ranges, nil
}
