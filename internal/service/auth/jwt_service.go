package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing the JWT token pair. Access
// and refresh tokens are signed with distinct secrets and lifetimes: the
// access token authorizes API calls, the refresh token (carrying the
// session's rotating hash) can only mint a new pair.
type JWTService interface {
	// GenerateTokenPair creates a signed access/refresh token pair for the
	// given user and session. The session hash is embedded in the refresh
	// token and checked against the stored session on refresh.
	GenerateTokenPair(ctx context.Context, userID, sessionID uuid.UUID, hash string) (*TokenPair, error)

	// ValidateAccessToken validates an access token string against the
	// access secret and returns its claims, or an error if validation
	// fails (expired, invalid signature, etc.).
	ValidateAccessToken(ctx context.Context, tokenString string) (*AccessClaims, error)

	// ValidateRefreshToken validates a refresh token string against the
	// refresh secret and returns its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*RefreshClaims, error)
}

// TokenPair is the pair of signed tokens returned by login and refresh.
// It is never persisted; it is derived from session state at mint time.
type TokenPair struct {
	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT used to obtain new token pairs.
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time `json:"expires_at"`
}

// AccessClaims are the application claims carried by an access token.
type AccessClaims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"id"`

	// Role is the user's role. Currently always empty; carried for
	// forward compatibility of the wire format.
	Role string `json:"role"`

	// SessionID is the login session the token belongs to.
	SessionID uuid.UUID `json:"session_id"`

	// ExpiresAt is when the token expires.
	ExpiresAt time.Time `json:"exp"`
}

// RefreshClaims are the application claims carried by a refresh token.
type RefreshClaims struct {
	// SessionID is the login session the token can refresh.
	SessionID uuid.UUID `json:"session_id"`

	// Hash is the session verification hash the token was minted against.
	// Refresh is refused when it no longer matches the stored session,
	// which is what makes rotation effective.
	Hash string `json:"hash"`

	// ExpiresAt is when the token expires.
	ExpiresAt time.Time `json:"exp"`
}
