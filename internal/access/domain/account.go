package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role orders what an internal account may do: user < admin < super_admin.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.rank() > 0 }

// AtLeast reports whether r is min or above. Unknown roles satisfy nothing.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && min.Valid() && r.rank() >= min.rank()
}

// IsStaff reports whether r is admin or above.
func (r Role) IsStaff() bool { return r.AtLeast(RoleAdmin) }

// ParseRole normalises s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
	return r, nil
}

// Account is the internal view of a platform user. Accounts are created
// by identity sync; the access plane reads them and only ever decrements
// the credit balance.
type Account struct {
	ID            string // uuid
	ExternalID    string // identity provider subject
	Email         string
	Name          string
	Role          Role
	CreditBalance int // never negative
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
