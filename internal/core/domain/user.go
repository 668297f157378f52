package domain

import "strings"

// Role is the authority group a user belongs to on the backend.
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleManager    Role = "ROLE_MANAGER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

const rolePrefix = "ROLE_"

// ParseRole accepts both the backend spelling ("ROLE_ADMIN") and the short
// one ("admin"), case-insensitively.
func ParseRole(s string) (Role, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, rolePrefix) {
		name = rolePrefix + name
	}
	switch r := Role(name); r {
	case RoleUser, RoleManager, RoleAdmin, RoleSuperAdmin:
		return r, true
	}
	return "", false
}

// IsAdmin reports whether the role may manage other users' accounts.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User mirrors the backend's user resource. Username is the stable key used
// for update and delete addressing; ID is informational only.
type User struct {
	ID                   int64     `json:"id"`
	UserID               string    `json:"userId"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	ProfileImageURL      string    `json:"profileImageUrl"`
	JoinDate             Timestamp `json:"joinDate"`
	LastLoginDate        Timestamp `json:"lastLoginDate"`
	LastLoginDateDisplay Timestamp `json:"lastLoginDateDisplay"`
	Active               bool      `json:"active"`
	NotLocked            bool      `json:"notLocked"`
	Role                 Role      `json:"role"`
	Authorities          []string  `json:"authorities"`
}

// FullName joins first and last name the way notifications display them.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasAuthority reports whether the user carries the given permission.
func (u User) HasAuthority(authority string) bool {
	for _, a := range u.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// Matches reports whether term occurs, case-insensitively, in the first name,
// last name, username, email or userId. term must already be lower-cased.
func (u User) Matches(term string) bool {
	for _, field := range []string{u.FirstName, u.LastName, u.Username, u.Email, u.UserID} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
