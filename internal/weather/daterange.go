package weather

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the archive API and date fields.
const DateLayout = "2006-01-02"

// ArchiveLagDays is how far behind today the archive reliably has data.
const ArchiveLagDays = 6

// ComputeRange returns the preset range ending ArchiveLagDays before now.
// Months and years are subtracted with calendar arithmetic, so day overflow
// rolls into the next month (Mar 31 minus a month is Mar 2 or 3, Feb 29
// minus a year is Mar 1).
func ComputeRange(preset Preset, now time.Time) (DateRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, -ArchiveLagDays)

	var start time.Time
	switch preset {
	case PresetMonth:
		start = end.AddDate(0, -1, 0)
	case PresetYear:
		start = end.AddDate(-1, 0, 0)
	default:
		return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidPreset, string(preset))
	}

	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange builds a range from two 2006-01-02 form values.
func ParseDateRange(start, end string) (DateRange, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, ErrMissingDateRange
	}

	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start date %q", ErrInvalidDateRange, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end date %q", ErrInvalidDateRange, end)
	}
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, start, end)
	}

	return DateRange{Start: s, End: e}, nil
}
