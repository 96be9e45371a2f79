package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/schedule"
)

// MirrorID is the deterministic external-event id for an appointment's
// outward mirror, enabling exact cleanup on delete.
func MirrorID(appointmentID string) string {
	return "mirror:" + appointmentID
}

type CreateAppointmentParams struct {
	ConsultantID string
	ClientName   string
	Start        time.Time
	End          time.Time
	BookedByID   string
}

// CreateAppointment commits a new booking. The conflict gate runs inside the
// mutex so the check and the append are one atomic step; a caller that saw
// the slot free moments ago can still be rejected here.
func (s *Store) CreateAppointment(ctx context.Context, p CreateAppointmentParams) (model.Appointment, error) {
	p.ClientName = strings.TrimSpace(p.ClientName)
	if p.ClientName == "" {
		return model.Appointment{}, fmt.Errorf("%w: client name required", ErrValidation)
	}
	if !p.End.After(p.Start) {
		return model.Appointment{}, fmt.Errorf("%w: end must be after start", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	consultant, ok := s.findConsultant(p.ConsultantID)
	if !ok {
		return model.Appointment{}, fmt.Errorf("%w: consultant %s", ErrNotFound, p.ConsultantID)
	}
	if schedule.WouldConflict(p.ConsultantID, p.Start, p.End, s.appointments, s.events) {
		return model.Appointment{}, ErrConflict
	}

	appt := model.Appointment{
		ID:           uuid.NewString(),
		ConsultantID: p.ConsultantID,
		ClientName:   p.ClientName,
		Title:        "Training: " + p.ClientName,
		Start:        p.Start,
		End:          p.End,
		Status:       model.StatusScheduled,
		BookedByID:   p.BookedByID,
		CreatedAt:    time.Now().UTC(),
	}

	s.appointments = append(s.appointments, appt)
	if err := s.flush(ctx, recAppointments, s.appointments); err != nil {
		s.appointments = s.appointments[:len(s.appointments)-1]
		return model.Appointment{}, err
	}

	// Mirror the booking outward when the consultant's linked account has an
	// active calendar connection.
	if user, ok := s.findUser(consultant.UserID); ok && user.CalendarConnected {
		mirror := model.ExternalEvent{
			ID:                       MirrorID(appt.ID),
			ConsultantID:             appt.ConsultantID,
			Title:                    appt.Title,
			Start:                    appt.Start,
			End:                      appt.End,
			DerivedFromAppointmentID: appt.ID,
		}
		s.events = append(s.events, mirror)
		if err := s.flush(ctx, recEvents, s.events); err != nil {
			// The booking itself is durable; losing the mirror is recoverable
			// on the next sync cycle.
			s.events = s.events[:len(s.events)-1]
			s.logger.Warn("mirror event flush failed", "appointment_id", appt.ID, "err", err)
		}
	}

	return appt, nil
}

// RemoveAppointment deletes a booking and its mirror event, keeping ledger
// and mirror consistent. Role gating happens at the call site.
func (s *Store) RemoveAppointment(ctx context.Context, appointmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.appointments {
		if s.appointments[i].ID == appointmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, appointmentID)
	}

	prev := s.appointments
	next := make([]model.Appointment, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	s.appointments = next
	if err := s.flush(ctx, recAppointments, s.appointments); err != nil {
		s.appointments = prev
		return err
	}

	if err := s.removeEventByDerivedIDLocked(ctx, appointmentID); err != nil {
		s.logger.Warn("mirror event cleanup failed", "appointment_id", appointmentID, "err", err)
	}
	return nil
}

// Appointments returns a copy of the ledger.
func (s *Store) Appointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// AppointmentsInRange lists a consultant's appointments overlapping
// [from, to). An empty consultantID matches every consultant.
func (s *Store) AppointmentsInRange(consultantID string, from, to time.Time) []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Appointment
	for _, a := range s.appointments {
		if consultantID != "" && a.ConsultantID != consultantID {
			continue
		}
		if schedule.Overlaps(a.Start, a.End, from, to) {
			out = append(out, a)
		}
	}
	return out
}

// Occupancy classifies one consultant/date/period slot.
func (s *Store) Occupancy(consultantID string, date time.Time, period schedule.Period) schedule.Occupancy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.Resolve(consultantID, date, period, s.loc, s.appointments, s.events)
}

// WouldConflict exposes the commit-time gate for advisory pre-checks.
func (s *Store) WouldConflict(consultantID string, start, end time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.WouldConflict(consultantID, start, end, s.appointments, s.events)
}
