package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwise/taskwise/internal/domain"
)

// SessionStore defines the interface for login-session persistence.
type SessionStore interface {
	// Create saves a new session to the store.
	// Returns validation errors from the domain Session if data is invalid.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// UpdateHash replaces the session's rotating verification hash.
	// This is the rotation step of a token refresh: once the hash changes,
	// refresh tokens minted against the previous hash are no longer honored.
	// Returns ErrSessionNotFound if the session does not exist.
	UpdateHash(ctx context.Context, id uuid.UUID, hash string) error

	// Delete removes a session from the store, ending the login it
	// represents. Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new SessionStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SessionStore
}
