package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Period is one of the two fixed half-day booking windows.
type Period string

const (
	Morning   Period = "MORNING"   // 08:00-12:00
	Afternoon Period = "AFTERNOON" // 14:00-18:00
)

func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToUpper(strings.TrimSpace(raw))) {
	case Morning:
		return Morning, nil
	case Afternoon:
		return Afternoon, nil
	}
	return "", fmt.Errorf("invalid period %q", raw)
}

// PeriodRange maps a calendar date and period to its half-open [start, end)
// boundaries in loc. The time-of-day of date is ignored.
func PeriodRange(date time.Time, period Period, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	if period == Morning {
		return time.Date(y, m, d, 8, 0, 0, 0, loc), time.Date(y, m, d, 12, 0, 0, 0, loc)
	}
	return time.Date(y, m, d, 14, 0, 0, 0, loc), time.Date(y, m, d, 18, 0, 0, 0, loc)
}
