// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidSlug is returned when a task slug is not URL-safe.
	ErrInvalidSlug = errors.New("invalid slug format")
)

// SystemUserID is the audit identity recorded on rows the application
// creates on its own behalf rather than for an authenticated user,
// e.g. users and sessions written during self-registration and login.
const SystemUserID = "system"
