package access

import "fmt"

// Role is the position of a user in the organizational tree. The tree has a
// single valid edge per tier: a DEALER points at a FACTORY, a GROWER points
// at a DEALER. ADMIN sits outside the tree.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleFactory Role = "FACTORY"
	RoleDealer  Role = "DEALER"
	RoleGrower  Role = "GROWER"
)

func ParseRole(v string) (Role, error) {
	switch Role(v) {
	case RoleAdmin, RoleFactory, RoleDealer, RoleGrower:
		return Role(v), nil
	default:
		return "", fmt.Errorf("unknown role %q", v)
	}
}

func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleFactory, RoleDealer, RoleGrower:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
