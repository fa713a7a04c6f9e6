package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is a member of the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User mirrors the persisted representation in the users table.
// Rows are never hard-deleted; Deleted marks the soft-delete flag.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	PasswordSalt string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	CreatedBy    string
	UpdatedAt    time.Time
	UpdatedBy    string
	Deleted      bool
}

// Sanitized returns a copy with credential material cleared for API output.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.PasswordSalt = ""
	return u
}
