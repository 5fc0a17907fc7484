// models/role.go
package models

import (
	"strings"

	"taskhub/apperrors"
)

// Role is the single global role of a user. Roles form a total order.
type Role string

const (
	RoleEmployee      Role = "EMPLOYEE"
	RoleManager       Role = "MANAGER"
	RoleAdministrator Role = "ADMIN"
)

// Capabilities is what a role permits, independent of any team or task.
type Capabilities struct {
	Rank         int
	ManageTeams  bool // create, activate and deactivate teams, appoint managers
	LeadTeams    bool // may be appointed manager of a team
	ViewAllTasks bool
	ManageUsers  bool
}

var capabilities = map[Role]Capabilities{
	RoleEmployee:      {Rank: 1},
	RoleManager:       {Rank: 2, LeadTeams: true},
	RoleAdministrator: {Rank: 3, ManageTeams: true, LeadTeams: true, ViewAllTasks: true, ManageUsers: true},
}

// Capabilities returns the capability row for r. Unknown roles get nothing.
func (r Role) Capabilities() Capabilities {
	return capabilities[r]
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	rc, ok := capabilities[r]
	if !ok {
		return false
	}
	return rc.Rank >= capabilities[other].Rank
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// ParseRole accepts EMPLOYEE, MANAGER, ADMIN or ADMINISTRATOR in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EMPLOYEE":
		return RoleEmployee, nil
	case "MANAGER":
		return RoleManager, nil
	case "ADMIN", "ADMINISTRATOR":
		return RoleAdministrator, nil
	}
	return "", apperrors.Validation("invalid role %q", s)
}
