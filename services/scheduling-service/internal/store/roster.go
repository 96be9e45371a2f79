package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

type AddConsultantParams struct {
	Name      string
	Email     string
	Role      string
	Color     string
	WorkStart string
	WorkEnd   string
	WorkDays  []int

	// CreateAccount provisions a linked TRAINER user with the given initial
	// password so the consultant can sign in and sync their own calendar.
	CreateAccount   bool
	InitialPassword string
}

func (s *Store) AddConsultant(ctx context.Context, p AddConsultantParams) (model.Consultant, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" || p.Email == "" {
		return model.Consultant{}, fmt.Errorf("%w: name and email required", ErrValidation)
	}
	if _, ok := parseWorkWindow(p.WorkStart, p.WorkEnd); !ok {
		return model.Consultant{}, fmt.Errorf("%w: work hours must be HH:MM with start before end", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := model.Consultant{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		Color:     p.Color,
		WorkStart: p.WorkStart,
		WorkEnd:   p.WorkEnd,
		WorkDays:  p.WorkDays,
	}

	prevUsers := s.users
	if p.CreateAccount {
		u := model.User{
			ID:           uuid.NewString(),
			Name:         p.Name,
			Email:        p.Email,
			Role:         model.RoleTrainer,
			PasswordHash: p.InitialPassword,
			ConsultantID: c.ID,
		}
		c.UserID = u.ID
		s.users = append(s.users, u)
		if err := s.flush(ctx, recUsers, s.users); err != nil {
			s.users = prevUsers
			return model.Consultant{}, err
		}
	}

	s.consultants = append(s.consultants, c)
	if err := s.flush(ctx, recConsultants, s.consultants); err != nil {
		s.consultants = s.consultants[:len(s.consultants)-1]
		s.users = prevUsers
		return model.Consultant{}, err
	}
	return c, nil
}

type UpdateConsultantParams struct {
	Name      *string
	Email     *string
	Role      *string
	Color     *string
	WorkStart *string
	WorkEnd   *string
	WorkDays  *[]int
}

func (s *Store) UpdateConsultant(ctx context.Context, id string, p UpdateConsultantParams) (model.Consultant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.consultants {
		if s.consultants[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Consultant{}, fmt.Errorf("%w: consultant %s", ErrNotFound, id)
	}

	prev := s.consultants[idx]
	c := prev
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.Role != nil {
		c.Role = *p.Role
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.WorkStart != nil {
		c.WorkStart = *p.WorkStart
	}
	if p.WorkEnd != nil {
		c.WorkEnd = *p.WorkEnd
	}
	if p.WorkDays != nil {
		c.WorkDays = *p.WorkDays
	}
	if _, ok := parseWorkWindow(c.WorkStart, c.WorkEnd); !ok {
		return model.Consultant{}, fmt.Errorf("%w: work hours must be HH:MM with start before end", ErrValidation)
	}

	s.consultants[idx] = c
	if err := s.flush(ctx, recConsultants, s.consultants); err != nil {
		s.consultants[idx] = prev
		return model.Consultant{}, err
	}
	return c, nil
}

func (s *Store) RemoveConsultant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.consultants
	next := make([]model.Consultant, 0, len(prev))
	for _, c := range prev {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if len(next) == len(prev) {
		return fmt.Errorf("%w: consultant %s", ErrNotFound, id)
	}

	s.consultants = next
	if err := s.flush(ctx, recConsultants, s.consultants); err != nil {
		s.consultants = prev
		return err
	}
	return nil
}

// Consultants returns a copy of the roster.
func (s *Store) Consultants() []model.Consultant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Consultant, len(s.consultants))
	copy(out, s.consultants)
	return out
}

func (s *Store) ConsultantByID(id string) (model.Consultant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findConsultant(id)
}

func (s *Store) findConsultant(id string) (model.Consultant, bool) {
	for _, c := range s.consultants {
		if c.ID == id {
			return c, true
		}
	}
	return model.Consultant{}, false
}

type workWindow struct {
	start, end string
}

func parseWorkWindow(start, end string) (workWindow, bool) {
	if !validClock(start) || !validClock(end) || start >= end {
		return workWindow{}, false
	}
	return workWindow{start: start, end: end}, true
}

func validClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
