package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwise/taskwise/internal/cache"
	"github.com/taskwise/taskwise/internal/mocks"
	"github.com/taskwise/taskwise/internal/service/auth"
	"github.com/taskwise/taskwise/internal/store"
)

const (
	testAccessSecret  = "access-secret-that-is-long-enough-for-testing"
	testRefreshSecret = "refresh-secret-that-is-long-enough-for-tests"
	testPassword      = "secret123"
)

// authTestEnv bundles an AuthService with its test dependencies.
type authTestEnv struct {
	svc      *AuthServiceImpl
	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore
	cache    *cache.MemoryCache
	now      time.Time
}

// newAuthTestEnv builds an AuthService backed by mock stores, a real
// in-memory cache and a JWT service pinned to a fixed clock. The
// transaction boundary is replaced with a direct call.
func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	users := mocks.NewMockUserStore()
	sessions := mocks.NewMockSessionStore()
	c := cache.NewMemoryCache(time.Minute)
	hasher := auth.NewBcryptHasher(4) // MinCost keeps tests fast

	jwtService := auth.NewTestJWTService(
		testAccessSecret, testRefreshSecret,
		15*time.Minute, 7*24*time.Hour,
		func() time.Time { return now },
	)

	svc := NewAuthService(nil, users, sessions, jwtService, hasher, hasher, c,
		slog.Default())
	svc.inTx = func(ctx context.Context, fn store.TxFn) error {
		return fn(ctx, nil)
	}
	svc.timeFunc = func() time.Time { return now }

	return &authTestEnv{
		svc:      svc,
		users:    users,
		sessions: sessions,
		cache:    c,
		now:      now,
	}
}

// register creates a user through the service and returns it.
func (env *authTestEnv) register(t *testing.T, email string) uuid.UUID {
	t.Helper()
	user, err := env.svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return user.ID
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user with hashed password", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		user, err := env.svc.Register(context.Background(), RegisterInput{
			Email:    "new@example.com",
			Password: testPassword,
			Bio:      "hello",
		})
		require.NoError(t, err)

		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "new@example.com", user.Username)
		assert.Equal(t, "hello", user.Bio)
		assert.Empty(t, user.Password, "plaintext must be cleared")
		assert.NotEmpty(t, user.HashedPassword)
		assert.NotEqual(t, testPassword, user.HashedPassword)
	})

	t.Run("explicit username wins over email default", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		user, err := env.svc.Register(context.Background(), RegisterInput{
			Email:    "new@example.com",
			Password: testPassword,
			Username: "newbie",
		})
		require.NoError(t, err)
		assert.Equal(t, "newbie", user.Username)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "dup@example.com")

		_, err := env.svc.Register(context.Background(), RegisterInput{
			Email:    "dup@example.com",
			Password: testPassword,
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials yield decodable token pair", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		userID := env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, userID, result.UserID)

		claims, err := env.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)

		// The session referenced by the token exists and matches the
		// refresh token's hash.
		session, err := env.sessions.GetByID(context.Background(), claims.SessionID)
		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		_, err := env.svc.SignIn(context.Background(), "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		_, err := env.svc.SignIn(context.Background(), "user@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("each sign-in creates its own session", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		_, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)
		_, err = env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		assert.Len(t, env.sessions.Sessions, 2)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("rotation mints a fresh pair", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		userID := env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		pair, err := env.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, result.TokenPair.RefreshToken, pair.RefreshToken)

		claims, err := env.svc.VerifyAccessToken(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("used refresh token is rejected on replay", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		_, err = env.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
		require.NoError(t, err)

		// The first refresh rotated the stored hash, so the original
		// token's embedded hash no longer matches.
		_, err = env.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
		assert.ErrorIs(t, err, ErrSessionMismatch)
	})

	t.Run("rotated pair remains usable", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		first, err := env.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
		require.NoError(t, err)

		second, err := env.svc.RefreshToken(context.Background(), first.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	})

	t.Run("refresh after logout fails", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		claims, err := env.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
		require.NoError(t, err)

		err = env.svc.Logout(context.Background(), claims.SessionID, result.TokenPair.AccessToken)
		require.NoError(t, err)

		_, err = env.svc.RefreshToken(context.Background(), result.TokenPair.RefreshToken)
		assert.ErrorIs(t, err, ErrSessionMismatch)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		_, err := env.svc.RefreshToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("blacklists the access token", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)
		token := result.TokenPair.AccessToken

		claims, err := env.svc.VerifyAccessToken(context.Background(), token)
		require.NoError(t, err)

		err = env.svc.Logout(context.Background(), claims.SessionID, token)
		require.NoError(t, err)

		// Signature and expiry are still valid; the blacklist is what
		// rejects it.
		_, err = env.svc.VerifyAccessToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrTokenBlacklisted)

		// The session is gone too.
		_, err = env.sessions.GetByID(context.Background(), claims.SessionID)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("nil session ID", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		err := env.svc.Logout(context.Background(), uuid.Nil, "whatever")
		assert.ErrorIs(t, err, ErrMissingSession)
	})

	t.Run("unknown session still blacklists token", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		err = env.svc.Logout(context.Background(), uuid.New(), result.TokenPair.AccessToken)
		require.NoError(t, err)

		_, err = env.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenBlacklisted)
	})
}

func TestVerifyAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		_, err := env.svc.VerifyAccessToken(context.Background(), "garbage")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("valid token passes", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)
		userID := env.register(t, "user@example.com")

		result, err := env.svc.SignIn(context.Background(), "user@example.com", testPassword)
		require.NoError(t, err)

		claims, err := env.svc.VerifyAccessToken(context.Background(), result.TokenPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})
}
