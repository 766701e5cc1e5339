package core

import (
	"time"
)

// Role is the authorization role of a User.
type Role string

const (
	// RoleAdmin marks librarians who manage the catalog and accounts.
	RoleAdmin Role = "admin"

	// RoleUser marks regular patrons.
	RoleUser Role = "user"
)

// User represents one account. The username is the identity.
//
// Invariant (enforced by the registration workflow): at least one admin
// account exists at all times.
type User struct {
	Username     UsernameString
	PasswordHash string
	Role         Role
	Email        EmailString
	Approved     bool
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BuildUser creates an approved User with the given role.
func BuildUser(username UsernameString, passwordHash string, role Role, email EmailString, createdAt time.Time) User {
	return User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Email:        email,
		Approved:     true,
		CreatedAt:    ToOccurredAt(createdAt),
	}
}
