package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/schedule"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	snaps := storage.NewMemory()
	st := New(snaps, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return st, snaps
}

func addConsultant(t *testing.T, st *Store) model.Consultant {
	t.Helper()
	c, err := st.AddConsultant(context.Background(), AddConsultantParams{
		Name:      "Alex Silva",
		Email:     "alex@trainer.test",
		Role:      "Senior Consultant",
		Color:     "#6366f1",
		WorkStart: "08:00",
		WorkEnd:   "18:00",
		WorkDays:  []int{1, 2, 3, 4, 5},
	})
	if err != nil {
		t.Fatalf("AddConsultant failed: %v", err)
	}
	return c
}

func TestCreateAppointmentAndConflict(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	c := addConsultant(t, st)

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	appt, err := st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Acme Corp",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}
	if appt.Status != model.StatusScheduled {
		t.Fatalf("expected status SCHEDULED, got %s", appt.Status)
	}

	// Overlapping second booking must be rejected without mutation.
	_, err = st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Other Co",
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got := len(st.Appointments()); got != 1 {
		t.Fatalf("rejected booking must not mutate the ledger, have %d appointments", got)
	}

	if occ := st.Occupancy(c.ID, day, schedule.Morning); occ.State != schedule.SlotInternal || occ.Appointment.ID != appt.ID {
		t.Fatalf("expected INTERNAL morning with %s, got %+v", appt.ID, occ)
	}
	if occ := st.Occupancy(c.ID, day, schedule.Afternoon); occ.State != schedule.SlotFree {
		t.Fatalf("expected FREE afternoon, got %s", occ.State)
	}
}

func TestNoOverlapInvariantAcrossSequence(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	c := addConsultant(t, st)

	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

	mk := func(d, startH, endH int) (model.Appointment, error) {
		return st.CreateAppointment(ctx, CreateAppointmentParams{
			ConsultantID: c.ID,
			ClientName:   "Client",
			Start:        day(d).Add(time.Duration(startH) * time.Hour),
			End:          day(d).Add(time.Duration(endH) * time.Hour),
		})
	}

	a, err := mk(3, 8, 12)
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := mk(3, 14, 18); err != nil {
		t.Fatalf("afternoon booking failed: %v", err)
	}
	if _, err := mk(3, 8, 12); err == nil {
		t.Fatal("duplicate slot must conflict")
	}
	if err := st.RemoveAppointment(ctx, a.ID); err != nil {
		t.Fatalf("RemoveAppointment failed: %v", err)
	}
	if _, err := mk(3, 8, 12); err != nil {
		t.Fatalf("freed slot should be bookable again: %v", err)
	}

	appts := st.Appointments()
	for i := range appts {
		for j := range appts {
			if i == j || appts[i].ConsultantID != appts[j].ConsultantID {
				continue
			}
			if schedule.Overlaps(appts[i].Start, appts[i].End, appts[j].Start, appts[j].End) {
				t.Fatalf("overlap between %s and %s", appts[i].ID, appts[j].ID)
			}
		}
	}
}

func TestExternalEventBlocksBooking(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	c := addConsultant(t, st)

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if err := st.AppendEvent(ctx, model.ExternalEvent{
		ID:           "e1",
		ConsultantID: c.ID,
		Title:        "Offsite",
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(10 * time.Hour),
	}); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}

	if !st.WouldConflict(c.ID, day.Add(8*time.Hour), day.Add(12*time.Hour)) {
		t.Fatal("expected conflict against external event")
	}
	_, err := st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Acme Corp",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestValidationErrors(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	c := addConsultant(t, st)

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	_, err := st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "  ",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank client, got %v", err)
	}

	_, err = st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Acme Corp",
		Start:        day.Add(12 * time.Hour),
		End:          day.Add(8 * time.Hour),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted interval, got %v", err)
	}

	_, err = st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: "missing",
		ClientName:   "Acme Corp",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown consultant, got %v", err)
	}
}

func TestMirrorConsistency(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	// Consultant with a linked, calendar-connected account.
	c, err := st.AddConsultant(ctx, AddConsultantParams{
		Name:            "Beatriz Costa",
		Email:           "beatriz@trainer.test",
		Color:           "#06b6d4",
		WorkStart:       "08:00",
		WorkEnd:         "18:00",
		WorkDays:        []int{1, 2, 3, 4, 5},
		CreateAccount:   true,
		InitialPassword: "hash",
	})
	if err != nil {
		t.Fatalf("AddConsultant failed: %v", err)
	}
	if err := st.SetCalendarConnection(ctx, c.UserID, true, time.Now()); err != nil {
		t.Fatalf("SetCalendarConnection failed: %v", err)
	}

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	appt, err := st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Acme Corp",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	var mirror *model.ExternalEvent
	for _, e := range st.EventsForConsultant(c.ID) {
		if e.ID == MirrorID(appt.ID) {
			ev := e
			mirror = &ev
		}
	}
	if mirror == nil {
		t.Fatalf("expected mirror event %s", MirrorID(appt.ID))
	}
	if !mirror.Start.Equal(appt.Start) || !mirror.End.Equal(appt.End) {
		t.Fatalf("mirror interval mismatch: %+v vs %+v", mirror, appt)
	}
	if mirror.DerivedFromAppointmentID != appt.ID {
		t.Fatalf("expected derived-from link to %s, got %q", appt.ID, mirror.DerivedFromAppointmentID)
	}

	if err := st.RemoveAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("RemoveAppointment failed: %v", err)
	}
	for _, e := range st.ExternalEvents() {
		if e.ID == MirrorID(appt.ID) {
			t.Fatal("mirror event must be removed with its appointment")
		}
	}
}

func TestNoMirrorWithoutConnection(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	c := addConsultant(t, st) // no linked account

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if _, err := st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Acme Corp",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}
	if got := len(st.ExternalEvents()); got != 0 {
		t.Fatalf("expected no mirror events, got %d", got)
	}
}

func TestReplaceEventsScopedAndTotal(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	old := []model.ExternalEvent{
		{ID: "x1", ConsultantID: "cX", Title: "stale"},
		{ID: "x2", ConsultantID: "cX", Title: "stale"},
		{ID: "y1", ConsultantID: "cY", Title: "other"},
	}
	for _, e := range old {
		if err := st.AppendEvent(ctx, e); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	fresh := []model.ExternalEvent{{ID: "x3", Title: "fresh"}}
	if err := st.ReplaceEventsForConsultant(ctx, "cX", fresh); err != nil {
		t.Fatalf("ReplaceEventsForConsultant failed: %v", err)
	}

	got := st.EventsForConsultant("cX")
	if len(got) != 1 || got[0].ID != "x3" || got[0].ConsultantID != "cX" {
		t.Fatalf("expected only x3 for cX, got %+v", got)
	}
	if other := st.EventsForConsultant("cY"); len(other) != 1 || other[0].ID != "y1" {
		t.Fatalf("other consultant's events must be untouched, got %+v", other)
	}
}

func TestWriteThroughSurvivesReload(t *testing.T) {
	ctx := context.Background()
	st, snaps := newTestStore(t)
	c := addConsultant(t, st)

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	appt, err := st.CreateAppointment(ctx, CreateAppointmentParams{
		ConsultantID: c.ID,
		ClientName:   "Acme Corp",
		Start:        day.Add(8 * time.Hour),
		End:          day.Add(12 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	// A second container on the same snapshots sees the committed state.
	reloaded := New(snaps, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	appts := reloaded.Appointments()
	if len(appts) != 1 || appts[0].ID != appt.ID {
		t.Fatalf("expected reloaded ledger with %s, got %+v", appt.ID, appts)
	}
	if cs := reloaded.Consultants(); len(cs) != 1 || cs[0].ID != c.ID {
		t.Fatalf("expected reloaded roster with %s, got %+v", c.ID, cs)
	}
}

func TestFirstUserBecomesAdmin(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	first, err := st.CreateUser(ctx, CreateUserParams{
		Name: "Root", Email: "root@test", Role: model.RoleSales, PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if first.Role != model.RoleAdmin {
		t.Fatalf("first user must be ADMIN, got %s", first.Role)
	}

	second, err := st.CreateUser(ctx, CreateUserParams{
		Name: "Next", Email: "next@test", PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if second.Role != model.RoleSales {
		t.Fatalf("default role must be SALES, got %s", second.Role)
	}

	if _, err := st.CreateUser(ctx, CreateUserParams{
		Name: "Dup", Email: "ROOT@test", PasswordHash: "h",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate email, got %v", err)
	}
}

func TestResolveConsultantForUser(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	c1 := addConsultant(t, st)

	admin, err := st.CreateUser(ctx, CreateUserParams{
		Name: "Admin", Email: "admin@test", PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	// Unlinked admin falls back to the first consultant.
	if got, err := st.ResolveConsultantForUser(admin.ID); err != nil || got.ID != c1.ID {
		t.Fatalf("expected admin fallback to %s, got %+v (%v)", c1.ID, got, err)
	}

	// Email match beats the admin fallback for regular users.
	trainer, err := st.CreateUser(ctx, CreateUserParams{
		Name: "Alex", Email: "alex@trainer.test", Role: model.RoleTrainer, PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if got, err := st.ResolveConsultantForUser(trainer.ID); err != nil || got.ID != c1.ID {
		t.Fatalf("expected email match to %s, got %+v (%v)", c1.ID, got, err)
	}

	// No link at all is an error.
	stray, err := st.CreateUser(ctx, CreateUserParams{
		Name: "Stray", Email: "stray@test", Role: model.RoleCS, PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := st.ResolveConsultantForUser(stray.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
