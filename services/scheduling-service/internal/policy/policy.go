// Package policy is the single authorization gate consulted before every
// mutation, kept free of any HTTP or view concerns.
package policy

import "github.com/rfaria/traindesk/services/scheduling-service/internal/model"

type Action string

const (
	ActionBookAppointment   Action = "book_appointment"
	ActionRemoveAppointment Action = "remove_appointment"
	ActionManageRoster      Action = "manage_roster"
	ActionSyncCalendar      Action = "sync_calendar"
)

// CanPerform reports whether the actor may carry out the action.
// Admins can do everything; sales and CS staff handle bookings; trainers
// only manage their own calendar connection.
func CanPerform(actor model.User, action Action) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	switch action {
	case ActionBookAppointment, ActionRemoveAppointment:
		return actor.Role == model.RoleSales || actor.Role == model.RoleCS
	case ActionSyncCalendar:
		return actor.Role == model.RoleTrainer
	case ActionManageRoster:
		return false
	}
	return false
}
