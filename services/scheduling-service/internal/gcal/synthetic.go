package gcal

import (
	"fmt"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

const syntheticWeeks = 4

// SyntheticBusyBlocks generates the deterministic demo schedule used when no
// live provider data is available: a Tuesday morning meeting and a Thursday
// afternoon commitment, repeated over the next four weeks starting from the
// Monday of now's week. Always exactly 8 events.
func SyntheticBusyBlocks(consultantID string, now time.Time, loc *time.Location) []model.ExternalEvent {
	monday := startOfWeek(now.In(loc))

	events := make([]model.ExternalEvent, 0, syntheticWeeks*2)
	for week := 0; week < syntheticWeeks; week++ {
		weekStart := monday.AddDate(0, 0, week*7)
		tuesday := weekStart.AddDate(0, 0, 1)
		thursday := weekStart.AddDate(0, 0, 3)

		events = append(events, model.ExternalEvent{
			ID:           fmt.Sprintf("synthetic-w%d-tue-%s", week, consultantID),
			ConsultantID: consultantID,
			Title:        "Alignment meeting (external)",
			Start:        at(tuesday, 9, 0),
			End:          at(tuesday, 11, 0),
		})
		events = append(events, model.ExternalEvent{
			ID:           fmt.Sprintf("synthetic-w%d-thu-%s", week, consultantID),
			ConsultantID: consultantID,
			Title:        "External commitment",
			Start:        at(thursday, 15, 0),
			End:          at(thursday, 16, 30),
		})
	}
	return events
}

// startOfWeek returns midnight on the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return midnight.AddDate(0, 0, -offset)
}

func at(day time.Time, hour, min int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, min, 0, 0, day.Location())
}
