// Package store owns the scheduler's authoritative state: the consultant
// roster, the internal appointment ledger, the mirrored external events and
// the user accounts. All mutations happen under one mutex and are written
// through to the snapshot backend before they become visible.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/storage"
)

var (
	ErrConflict   = errors.New("booking conflicts with an existing interval")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Snapshot record names.
const (
	recConsultants  = "consultants"
	recAppointments = "appointments"
	recEvents       = "external_events"
	recUsers        = "users"
)

type Store struct {
	mu     sync.Mutex
	snaps  storage.Snapshots
	logger *slog.Logger
	loc    *time.Location

	consultants  []model.Consultant
	appointments []model.Appointment
	events       []model.ExternalEvent
	users        []model.User
}

func New(snaps storage.Snapshots, logger *slog.Logger, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{snaps: snaps, logger: logger, loc: loc}
}

// Location returns the scheduler's working timezone.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Load hydrates all entity sets from the snapshot backend. Missing records
// are treated as empty sets so a fresh deployment starts clean.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadRecord(ctx, recConsultants, &s.consultants); err != nil {
		return err
	}
	if err := s.loadRecord(ctx, recAppointments, &s.appointments); err != nil {
		return err
	}
	if err := s.loadRecord(ctx, recEvents, &s.events); err != nil {
		return err
	}
	if err := s.loadRecord(ctx, recUsers, &s.users); err != nil {
		return err
	}
	s.logger.Info("state loaded",
		"consultants", len(s.consultants),
		"appointments", len(s.appointments),
		"external_events", len(s.events),
		"users", len(s.users),
	)
	return nil
}

func (s *Store) loadRecord(ctx context.Context, name string, dst any) error {
	payload, err := s.snaps.Load(ctx, name)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// flush writes one record through to the snapshot backend. Callers hold the
// mutex and must revert their in-memory change if flush fails.
func (s *Store) flush(ctx context.Context, name string, src any) error {
	payload, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.snaps.Save(ctx, name, payload); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
