package schedule

import (
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

// Bookable reports whether the consultant's work pattern admits the given
// slot at all: the weekday must be a work day and the work-hours window must
// contain the whole period. Slot occupancy is a separate question.
func Bookable(c model.Consultant, date time.Time, period Period, loc *time.Location) bool {
	day := date.In(loc)
	if !worksOn(c, day.Weekday()) {
		return false
	}

	workStart, ok := clockMinutes(c.WorkStart)
	if !ok {
		return false
	}
	workEnd, ok := clockMinutes(c.WorkEnd)
	if !ok {
		return false
	}

	start, end := PeriodRange(date, period, loc)
	startMins := start.Hour()*60 + start.Minute()
	endMins := end.Hour()*60 + end.Minute()
	return workStart <= startMins && endMins <= workEnd
}

func worksOn(c model.Consultant, weekday time.Weekday) bool {
	for _, d := range c.WorkDays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// clockMinutes parses "HH:MM" into minutes since midnight.
func clockMinutes(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
