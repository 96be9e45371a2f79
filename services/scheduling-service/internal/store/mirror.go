package store

import (
	"context"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

// ReplaceEventsForConsultant discards every external event belonging to the
// consultant and installs events in their place, untouched events for other
// consultants included. Last sync wins; there is no incremental merge, so a
// meeting the consultant deleted upstream cannot linger as a stale block.
func (s *Store) ReplaceEventsForConsultant(ctx context.Context, consultantID string, events []model.ExternalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.events
	next := make([]model.ExternalEvent, 0, len(prev)+len(events))
	for _, e := range prev {
		if e.ConsultantID != consultantID {
			next = append(next, e)
		}
	}
	for _, e := range events {
		e.ConsultantID = consultantID
		next = append(next, e)
	}

	s.events = next
	if err := s.flush(ctx, recEvents, s.events); err != nil {
		s.events = prev
		return err
	}
	return nil
}

// RemoveEventsForConsultant drops all of a consultant's external events
// (used on calendar disconnect).
func (s *Store) RemoveEventsForConsultant(ctx context.Context, consultantID string) error {
	return s.ReplaceEventsForConsultant(ctx, consultantID, nil)
}

// AppendEvent adds a single external event without touching any other entry.
func (s *Store) AppendEvent(ctx context.Context, event model.ExternalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if err := s.flush(ctx, recEvents, s.events); err != nil {
		s.events = s.events[:len(s.events)-1]
		return err
	}
	return nil
}

// RemoveEventByDerivedID deletes the mirror entry tied to an appointment.
func (s *Store) RemoveEventByDerivedID(ctx context.Context, appointmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeEventByDerivedIDLocked(ctx, appointmentID)
}

func (s *Store) removeEventByDerivedIDLocked(ctx context.Context, appointmentID string) error {
	mirrorID := MirrorID(appointmentID)
	prev := s.events
	next := make([]model.ExternalEvent, 0, len(prev))
	for _, e := range prev {
		if e.DerivedFromAppointmentID == appointmentID || e.ID == mirrorID {
			continue
		}
		next = append(next, e)
	}
	if len(next) == len(prev) {
		return nil
	}

	s.events = next
	if err := s.flush(ctx, recEvents, s.events); err != nil {
		s.events = prev
		return err
	}
	return nil
}

// ExternalEvents returns a copy of the whole mirror.
func (s *Store) ExternalEvents() []model.ExternalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ExternalEvent, len(s.events))
	copy(out, s.events)
	return out
}

// EventsForConsultant returns a copy of one consultant's external events.
func (s *Store) EventsForConsultant(consultantID string) []model.ExternalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ExternalEvent
	for _, e := range s.events {
		if e.ConsultantID == consultantID {
			out = append(out, e)
		}
	}
	return out
}
