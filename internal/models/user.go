package models

import (
	"time"

	"github.com/google/uuid"
)

// UserType separates employees, who file bills, from admins, who review them.
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeEmployee || t == UserTypeAdmin
}

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	// Used for login and as the submitter of bills.
	Email string

	// DisplayName is the name shown in the UI.
	DisplayName string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// Type decides which views the user may open.
	Type UserType

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string, userType UserType) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Type:         userType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
