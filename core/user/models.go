package user

import (
	"strings"
)

type Role string

// Roles
const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleEducator      Role = "EDUCATOR"
	RoleProfessor     Role = "PROFESSOR"
	RoleStudent       Role = "STUDENT"
)

var (
	StaffRoles = []Role{RoleAdministrator, RoleEducator, RoleProfessor}

	rolePriorities = map[Role]int{
		RoleAdministrator: 30,
		RoleEducator:      20,
		RoleProfessor:     11,
		RoleStudent:       1,
	}

	Roles = []RoleInfo{
		{Name: "Étudiant", Value: RoleStudent},
		{Name: "Professeur", Value: RoleProfessor},
		{Name: "Éducateur", Value: RoleEducator},
		{Name: "Administrateur", Value: RoleAdministrator},
	}
)

// ParseRole accepts any casing; unknown roles are returned as-is and have no rights.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

// IsStaff reports whether r may write lessons & attendance.
func (r Role) IsStaff() bool {
	for _, staff := range StaffRoles {
		if r == staff {
			return true
		}
	}
	return false
}

func RolePriority(role Role) int {
	return rolePriorities[role]
}

// PrimaryRole returns the role with the highest priority, or "" if none is known.
func PrimaryRole(roles []Role) Role {
	var primary Role
	for _, role := range roles {
		if RolePriority(role) > RolePriority(primary) {
			primary = role
		}
	}
	return primary
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

// User is the identity of the acting user, as provided by the identity provider.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

func (u User) Role() Role {
	return PrimaryRole(u.Roles)
}

func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleProvider supplies the role of the acting user.
type RoleProvider interface {
	CurrentUserRole() Role
}

// StaticRole is a RoleProvider returning a fixed role.
type StaticRole Role

func (r StaticRole) CurrentUserRole() Role { return Role(r) }
