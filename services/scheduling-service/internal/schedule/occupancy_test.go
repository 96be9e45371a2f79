package schedule

import (
	"testing"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

func TestOverlapsHalfOpen(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	// Touching endpoints do not overlap.
	if Overlaps(day.Add(8*time.Hour), day.Add(12*time.Hour), day.Add(12*time.Hour), day.Add(18*time.Hour)) {
		t.Fatal("adjacent intervals must not overlap")
	}
	// Partial overlap does.
	if !Overlaps(day.Add(9*time.Hour), day.Add(13*time.Hour), day.Add(12*time.Hour), day.Add(18*time.Hour)) {
		t.Fatal("expected overlap")
	}
	// Containment does.
	if !Overlaps(day.Add(9*time.Hour), day.Add(10*time.Hour), day.Add(8*time.Hour), day.Add(12*time.Hour)) {
		t.Fatal("expected contained interval to overlap")
	}
}

func TestResolveInternalWinsOverExternal(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)

	appts := []model.Appointment{{
		ID:           "a1",
		ConsultantID: "c1",
		Status:       model.StatusScheduled,
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	}}
	events := []model.ExternalEvent{{
		ID:           "e1",
		ConsultantID: "c1",
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(11 * time.Hour),
	}}

	occ := Resolve("c1", day, Morning, loc, appts, events)
	if occ.State != SlotInternal {
		t.Fatalf("expected INTERNAL, got %s", occ.State)
	}
	if occ.Appointment == nil || occ.Appointment.ID != "a1" {
		t.Fatalf("expected appointment a1, got %+v", occ.Appointment)
	}
}

func TestResolveExternalAndFree(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)

	events := []model.ExternalEvent{{
		ID:           "e1",
		ConsultantID: "c1",
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
	}}

	occ := Resolve("c1", day, Morning, loc, nil, events)
	if occ.State != SlotExternal || occ.Event == nil || occ.Event.ID != "e1" {
		t.Fatalf("expected EXTERNAL with e1, got %+v", occ)
	}

	if got := Resolve("c1", day, Afternoon, loc, nil, events); got.State != SlotFree {
		t.Fatalf("expected FREE afternoon, got %s", got.State)
	}
	// Another consultant's events never block.
	if got := Resolve("c2", day, Morning, loc, nil, events); got.State != SlotFree {
		t.Fatalf("expected FREE for other consultant, got %s", got.State)
	}
}

func TestResolveIgnoresCancelled(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)

	appts := []model.Appointment{{
		ID:           "a1",
		ConsultantID: "c1",
		Status:       model.StatusCancelled,
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	}}

	if got := Resolve("c1", day, Morning, loc, appts, nil); got.State != SlotFree {
		t.Fatalf("cancelled appointment should not occupy the slot, got %s", got.State)
	}
}

func TestWouldConflictChecksBothSources(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	appts := []model.Appointment{{
		ID:           "a1",
		ConsultantID: "c1",
		Status:       model.StatusScheduled,
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	}}
	events := []model.ExternalEvent{{
		ID:           "e1",
		ConsultantID: "c1",
		Start:        day.Add(14 * time.Hour),
		End:          day.Add(16 * time.Hour),
	}}

	if !WouldConflict("c1", day.Add(9*time.Hour), day.Add(10*time.Hour), appts, events) {
		t.Fatal("expected internal conflict")
	}
	if !WouldConflict("c1", day.Add(15*time.Hour), day.Add(18*time.Hour), appts, events) {
		t.Fatal("expected external conflict")
	}
	if WouldConflict("c1", day.Add(12*time.Hour), day.Add(14*time.Hour), appts, events) {
		t.Fatal("expected no conflict in the gap")
	}
	if WouldConflict("c2", day.Add(9*time.Hour), day.Add(10*time.Hour), appts, events) {
		t.Fatal("expected no conflict for other consultant")
	}
}
