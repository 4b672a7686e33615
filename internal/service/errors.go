// Package service implements the application's business operations on
// top of the store interfaces, the token services and the cache.
package service

import "errors"

// Common service-level errors.
var (
	// ErrInvalidCredentials is returned when an email/password pair does
	// not match a live user. The same error covers both unknown email and
	// wrong password so callers cannot probe for registered addresses.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionMismatch is returned when a refresh token references a
	// session that no longer exists or whose stored hash differs from the
	// token's embedded hash, i.e. the token was rotated out or the
	// session was logged out.
	ErrSessionMismatch = errors.New("session mismatch")

	// ErrMissingSession is returned when logout is attempted without a
	// session ID.
	ErrMissingSession = errors.New("session ID is required")

	// ErrTokenBlacklisted is returned when an access token has been
	// revoked by logout before its natural expiry.
	ErrTokenBlacklisted = errors.New("token has been revoked")
)
