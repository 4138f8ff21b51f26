// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Role is a position inside a team. Every team fields each role exactly once.
type Role int

// Roles in lane order.
const (
	RoleTop Role = iota
	RoleJungle
	RoleMid
	RoleBot
	RoleSupport
)

// NumRoles is the number of roles per team, which is also the team size.
const NumRoles = 5

var roleNames = [NumRoles]string{"top", "jungle", "mid", "bot", "support"}

// Roles returns all roles in lane order.
func Roles() []Role {
	return []Role{RoleTop, RoleJungle, RoleMid, RoleBot, RoleSupport}
}

// Valid reports whether r is one of the five roles.
func (r Role) Valid() bool { return r >= RoleTop && r <= RoleSupport }

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole accepts role names case-insensitively, plus the common aliases
// "jg", "adc" and "supp".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return RoleTop, nil
	case "jungle", "jg":
		return RoleJungle, nil
	case "mid":
		return RoleMid, nil
	case "bot", "adc":
		return RoleBot, nil
	case "support", "supp":
		return RoleSupport, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ValidatePreferences checks that prefs lists distinct, known roles.
func ValidatePreferences(prefs []Role) error {
	if len(prefs) > NumRoles {
		return fmt.Errorf("%w: %d roles listed", ErrInvalidPreferences, len(prefs))
	}
	var seen [NumRoles]bool
	for _, r := range prefs {
		if !r.Valid() {
			return fmt.Errorf("%w: %v", ErrInvalidPreferences, r)
		}
		if seen[r] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidPreferences, r)
		}
		seen[r] = true
	}
	return nil
}
