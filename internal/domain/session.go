package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session validation errors
var (
	ErrEmptySessionID   = errors.New("session ID cannot be empty")
	ErrEmptySessionHash = errors.New("session hash cannot be empty")
)

// Session is the server-side record of one logical login. It carries an
// opaque hash that is rotated on every refresh: a refresh token is only
// honored while the hash it embeds matches the stored one, which is what
// rejects replay of a rotated-out refresh token.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Hash      string    `json:"-"` // Rotating verification hash, never exposed
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a new Session for the given user with the given
// verification hash. Returns an error if validation fails.
func NewSession(userID uuid.UUID, hash string) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Hash:      hash,
		CreatedBy: SystemUserID,
		UpdatedBy: SystemUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.Hash == "" {
		return ErrEmptySessionHash
	}
	return nil
}
