package domain

import (
	"slices"

	dErrors "schemeportal/pkg/domain-errors"
)

// Role is the single enumeration of actor roles. Authorization decisions
// compare against these values only, never against raw strings.
type Role string

const (
	RolePublicUser Role = "public_user"
	RoleAnalyst    Role = "analyst"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleRank orders roles by privilege for hierarchy checks.
var roleRank = map[Role]int{
	RolePublicUser: 0,
	RoleAnalyst:    1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// AllRoles lists roles from least to most privileged.
func AllRoles() []Role {
	return []Role{RolePublicUser, RoleAnalyst, RoleAdmin, RoleSuperAdmin}
}

// ParseRole accepts the four portal roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+s)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

func (r Role) String() string { return string(r) }

// AtLeast reports whether r carries at least the privilege of min.
// Unknown roles never satisfy any requirement.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

// IsStaff reports whether the role belongs to portal staff.
func (r Role) IsStaff() bool {
	return r.AtLeast(RoleAnalyst)
}

// IsAdmin reports whether the role carries administrative authority.
func (r Role) IsAdmin() bool {
	return r.AtLeast(RoleAdmin)
}

// OneOf reports whether r is exactly one of the given roles.
func (r Role) OneOf(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// Actor is an authenticated caller: who acts and with which resolved role.
type Actor struct {
	UserID UserID
	Role   Role
}
