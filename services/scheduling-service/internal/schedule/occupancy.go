package schedule

import (
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

// Slot states returned by Resolve.
const (
	SlotFree     = "FREE"
	SlotInternal = "INTERNAL"
	SlotExternal = "EXTERNAL"
)

// Occupancy classifies one consultant/date/period slot. Exactly one of
// Appointment and Event is set for the non-free states.
type Occupancy struct {
	State       string
	Appointment *model.Appointment
	Event       *model.ExternalEvent
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Resolve classifies a consultant's slot against both event sources.
// An internal booking wins over any coincident external block: the booking
// could only have been committed while the slot was externally clear, so the
// internal record is the authoritative one to show. Cancelled appointments
// never occupy a slot.
func Resolve(consultantID string, date time.Time, period Period, loc *time.Location, appts []model.Appointment, events []model.ExternalEvent) Occupancy {
	start, end := PeriodRange(date, period, loc)

	for i := range appts {
		a := &appts[i]
		if a.ConsultantID != consultantID || a.Status == model.StatusCancelled {
			continue
		}
		if Overlaps(a.Start, a.End, start, end) {
			return Occupancy{State: SlotInternal, Appointment: a}
		}
	}
	for i := range events {
		e := &events[i]
		if e.ConsultantID != consultantID {
			continue
		}
		if Overlaps(e.Start, e.End, start, end) {
			return Occupancy{State: SlotExternal, Event: e}
		}
	}
	return Occupancy{State: SlotFree}
}

// WouldConflict is the commit-time gate: true when [start,end) overlaps any
// non-cancelled appointment or any external event for the consultant.
func WouldConflict(consultantID string, start, end time.Time, appts []model.Appointment, events []model.ExternalEvent) bool {
	for _, a := range appts {
		if a.ConsultantID != consultantID || a.Status == model.StatusCancelled {
			continue
		}
		if Overlaps(a.Start, a.End, start, end) {
			return true
		}
	}
	for _, e := range events {
		if e.ConsultantID != consultantID {
			continue
		}
		if Overlaps(e.Start, e.End, start, end) {
			return true
		}
	}
	return false
}
