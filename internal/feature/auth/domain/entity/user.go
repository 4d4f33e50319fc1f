// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
type User struct {
	// ID is a UUID assigned when the user is stored.
	ID string

	Name string

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string

	// PasswordHash is the bcrypt digest of the user's password.
	// It is never serialized to clients.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
