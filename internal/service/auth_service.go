package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskwise/taskwise/internal/cache"
	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/service/auth"
	"github.com/taskwise/taskwise/internal/store"
)

// blacklistKeyPrefix namespaces revoked access tokens in the cache.
const blacklistKeyPrefix = "blacklist:"

// AuthResult is the outcome of a successful sign-in: the authenticated
// user's ID plus a freshly minted token pair.
type AuthResult struct {
	UserID    uuid.UUID       `json:"user_id"`
	TokenPair *auth.TokenPair `json:"token"`
}

// AuthService manages the credential and session lifecycle: sign-in,
// registration, refresh-token rotation, logout and access-token
// verification (including the logout blacklist).
type AuthService interface {
	// SignIn verifies the email/password pair, creates a new session with
	// a fresh verification hash and mints a token pair.
	// Returns ErrInvalidCredentials if either part of the pair is wrong.
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)

	// Register creates a new user. Returns store.ErrEmailExists if the
	// email is already in use. The returned user never carries password
	// material.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// RefreshToken verifies the refresh token, checks its embedded hash
	// against the stored session, rotates the session hash and mints a
	// new token pair. Returns ErrSessionMismatch when the session is gone
	// or the hash was already rotated out (token reuse).
	RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)

	// Logout deletes the session and blacklists the presented access
	// token for the remainder of its natural lifetime so it can no longer
	// pass verification. Returns ErrMissingSession when sessionID is nil.
	Logout(ctx context.Context, sessionID uuid.UUID, accessToken string) error

	// VerifyAccessToken validates the access token's signature and expiry
	// and rejects blacklisted tokens with ErrTokenBlacklisted.
	VerifyAccessToken(ctx context.Context, accessToken string) (*auth.AccessClaims, error)
}

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	// inTx runs a function inside a database transaction. Injectable so
	// tests can run the function without a live database.
	inTx         func(ctx context.Context, fn store.TxFn) error
	userStore    store.UserStore
	sessionStore store.SessionStore
	jwtService   auth.JWTService
	hasher       auth.PasswordHasher
	verifier     auth.PasswordVerifier
	cache        cache.Cache
	logger       *slog.Logger
	timeFunc     func() time.Time // Injectable for blacklist TTL tests
}

// Ensure AuthServiceImpl implements AuthService interface
var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService creates a new AuthService.
func NewAuthService(
	db *sql.DB,
	userStore store.UserStore,
	sessionStore store.SessionStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	c cache.Cache,
	logger *slog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		inTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		userStore:    userStore,
		sessionStore: sessionStore,
		jwtService:   jwtService,
		hasher:       hasher,
		verifier:     verifier,
		cache:        c,
		logger:       logger.With("component", "auth_service"),
		timeFunc:     time.Now,
	}
}

// newSessionHash produces a fresh opaque session verification hash:
// 32 bytes from the cryptographic random source, digested to sha256 hex.
func newSessionHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	digest := sha256.Sum256(buf)
	return hex.EncodeToString(digest[:]), nil
}

// SignIn implements AuthService.SignIn.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for sign-in", "error", err)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := newSessionHash()
	if err != nil {
		return nil, err
	}

	session, err := domain.NewSession(user.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		s.logger.Error("failed to create session",
			"error", err,
			"user_id", user.ID)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	pair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, session.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token pair: %w", err)
	}

	s.logger.Info("user signed in",
		"user_id", user.ID,
		"session_id", session.ID)

	return &AuthResult{
		UserID:    user.ID,
		TokenPair: pair,
	}, nil
}

// RegisterInput carries the fields accepted at registration. Username
// defaults to the email address when left empty.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	Bio      string
	Image    string
}

// Register implements AuthService.Register.
func (s *AuthServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if input.Username != "" {
		user.Username = input.Username
	}
	user.Bio = input.Bio
	user.Image = input.Image

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = "" // Plaintext is never persisted or echoed

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, store.ErrEmailExists
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// RefreshToken implements AuthService.RefreshToken.
// The session lookup, hash comparison and rotation run in a single
// transaction so two concurrent refreshes cannot both succeed against
// the same hash.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	newHash, err := newSessionHash()
	if err != nil {
		return nil, err
	}

	var userID uuid.UUID
	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessionStore.WithTx(tx)

		session, err := sessions.GetByID(ctx, claims.SessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return ErrSessionMismatch
			}
			return fmt.Errorf("failed to look up session: %w", err)
		}

		// A hash mismatch means this refresh token was already rotated
		// out; honoring it would allow replay.
		if session.Hash != claims.Hash {
			return ErrSessionMismatch
		}

		user, err := s.userStore.WithTx(tx).GetByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return ErrSessionMismatch
			}
			return fmt.Errorf("failed to look up session user: %w", err)
		}
		userID = user.ID

		if err := sessions.UpdateHash(ctx, session.ID, newHash); err != nil {
			return fmt.Errorf("failed to rotate session hash: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionMismatch) {
			s.logger.Warn("refresh rejected: session mismatch",
				"session_id", claims.SessionID)
			return nil, ErrSessionMismatch
		}
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(ctx, userID, claims.SessionID, newHash)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token pair: %w", err)
	}

	s.logger.Debug("refresh token rotated",
		"session_id", claims.SessionID)
	return pair, nil
}

// Logout implements AuthService.Logout.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID uuid.UUID, accessToken string) error {
	if sessionID == uuid.Nil {
		return ErrMissingSession
	}

	if err := s.sessionStore.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			// Already logged out; still blacklist the presented token.
			s.logger.Debug("logout for unknown session", "session_id", sessionID)
		} else {
			s.logger.Error("failed to delete session",
				"error", err,
				"session_id", sessionID)
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}

	s.blacklistToken(ctx, accessToken)

	s.logger.Info("user logged out", "session_id", sessionID)
	return nil
}

// blacklistToken records the access token in the cache for the remainder
// of its natural lifetime, so VerifyAccessToken rejects it even though
// it has not yet expired. Tokens that fail validation are skipped: they
// are already unusable.
func (s *AuthServiceImpl) blacklistToken(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}

	claims, err := s.jwtService.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		s.logger.Debug("skipping blacklist of invalid access token", "error", err)
		return
	}

	ttl := claims.ExpiresAt.Sub(s.timeFunc())
	if ttl <= 0 {
		return
	}

	s.cache.Set(ctx, blacklistKeyPrefix+accessToken, []byte("blacklisted"), ttl)
}

// VerifyAccessToken implements AuthService.VerifyAccessToken.
func (s *AuthServiceImpl) VerifyAccessToken(ctx context.Context, accessToken string) (*auth.AccessClaims, error) {
	claims, err := s.jwtService.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if _, blacklisted := s.cache.Get(ctx, blacklistKeyPrefix+accessToken); blacklisted {
		s.logger.Debug("rejected blacklisted access token",
			"session_id", claims.SessionID)
		return nil, ErrTokenBlacklisted
	}

	return claims, nil
}
