package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

type CreateUserParams struct {
	Name         string
	Email        string
	Role         string
	PasswordHash string
	ConsultantID string
}

// CreateUser registers an account. The very first account becomes ADMIN
// regardless of the requested role so a fresh deployment always has an
// administrator.
func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (model.User, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" || p.Email == "" || p.PasswordHash == "" {
		return model.User{}, fmt.Errorf("%w: name, email and password required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, p.Email) {
			return model.User{}, fmt.Errorf("%w: email already registered", ErrValidation)
		}
	}

	role := p.Role
	if len(s.users) == 0 {
		role = model.RoleAdmin
	} else if role == "" {
		role = model.RoleSales
	}

	u := model.User{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		Role:         role,
		PasswordHash: p.PasswordHash,
		ConsultantID: p.ConsultantID,
	}

	s.users = append(s.users, u)
	if err := s.flush(ctx, recUsers, s.users); err != nil {
		s.users = s.users[:len(s.users)-1]
		return model.User{}, err
	}
	return u, nil
}

func (s *Store) UserByEmail(email string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *Store) UserByID(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(id)
}

func (s *Store) findUser(id string) (model.User, bool) {
	if id == "" {
		return model.User{}, false
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// SetCalendarConnection records the outcome of a sync or disconnect on the
// user's account. lastSync is only written when connecting.
func (s *Store) SetCalendarConnection(ctx context.Context, userID string, connected bool, lastSync time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.users {
		if s.users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	prev := s.users[idx]
	s.users[idx].CalendarConnected = connected
	if connected {
		ts := lastSync
		s.users[idx].LastSync = &ts
	}
	if err := s.flush(ctx, recUsers, s.users); err != nil {
		s.users[idx] = prev
		return err
	}
	return nil
}

// ResolveConsultantForUser maps a user to the consultant whose calendar they
// own: the explicit link first, then an email match, and for an unlinked
// ADMIN the first consultant on the roster.
func (s *Store) ResolveConsultantForUser(userID string) (model.Consultant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.findUser(userID)
	if !ok {
		return model.Consultant{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if c, ok := s.findConsultant(user.ConsultantID); ok {
		return c, nil
	}
	for _, c := range s.consultants {
		if strings.EqualFold(c.Email, user.Email) {
			return c, nil
		}
	}
	if user.Role == model.RoleAdmin && len(s.consultants) > 0 {
		return s.consultants[0], nil
	}
	return model.Consultant{}, fmt.Errorf("%w: no consultant linked to user %s", ErrNotFound, userID)
}
