package model

import "time"

// Appointment statuses. The scheduler only ever creates SCHEDULED;
// COMPLETED/CANCELLED are set by back-office flows.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// User roles.
const (
	RoleAdmin   = "ADMIN"
	RoleTrainer = "TRAINER"
	RoleSales   = "SALES"
	RoleCS      = "CS"
)

// Consultant is a bookable trainer profile. Owned by roster management;
// the scheduling engine only reads it.
type Consultant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Color     string `json:"color"`
	WorkStart string `json:"work_start"` // HH:MM
	WorkEnd   string `json:"work_end"`   // HH:MM
	WorkDays  []int  `json:"work_days"`  // 0-6, Sunday to Saturday
	UserID    string `json:"user_id,omitempty"`
}

// Appointment is an internal half-day training booking.
type Appointment struct {
	ID           string    `json:"id"`
	ConsultantID string    `json:"consultant_id"`
	ClientName   string    `json:"client_name"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	BookedByID   string    `json:"booked_by_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExternalEvent is a busy block imported from the consultant's external
// calendar, or the outward mirror of an internal appointment.
// DerivedFromAppointmentID links a mirror event to its appointment.
type ExternalEvent struct {
	ID                       string    `json:"id"`
	ConsultantID             string    `json:"consultant_id"`
	Title                    string    `json:"title"`
	Start                    time.Time `json:"start"`
	End                      time.Time `json:"end"`
	DerivedFromAppointmentID string    `json:"derived_from_appointment_id,omitempty"`
}

// User is an account able to sign in and, for TRAINER roles, linked to a
// consultant profile.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	PasswordHash      string     `json:"password_hash"`
	ConsultantID      string     `json:"consultant_id,omitempty"`
	CalendarConnected bool       `json:"calendar_connected"`
	LastSync          *time.Time `json:"last_sync,omitempty"`
}
