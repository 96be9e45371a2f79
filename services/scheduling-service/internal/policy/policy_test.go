package policy

import (
	"testing"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

func TestCanPerform(t *testing.T) {
	cases := []struct {
		role   string
		action Action
		want   bool
	}{
		{model.RoleAdmin, ActionBookAppointment, true},
		{model.RoleAdmin, ActionManageRoster, true},
		{model.RoleAdmin, ActionSyncCalendar, true},
		{model.RoleSales, ActionBookAppointment, true},
		{model.RoleSales, ActionRemoveAppointment, true},
		{model.RoleSales, ActionManageRoster, false},
		{model.RoleSales, ActionSyncCalendar, false},
		{model.RoleCS, ActionBookAppointment, true},
		{model.RoleCS, ActionManageRoster, false},
		{model.RoleTrainer, ActionSyncCalendar, true},
		{model.RoleTrainer, ActionBookAppointment, false},
		{model.RoleTrainer, ActionRemoveAppointment, false},
		{model.RoleTrainer, ActionManageRoster, false},
		{"", ActionBookAppointment, false},
	}
	for _, tc := range cases {
		actor := model.User{Role: tc.role}
		if got := CanPerform(actor, tc.action); got != tc.want {
			t.Errorf("CanPerform(%q, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}
