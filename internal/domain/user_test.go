package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates valid user", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("user@example.com", "secret123")
		require.NoError(t, err)

		assert.NotEqual(t, "", user.ID.String())
		assert.Equal(t, "user@example.com", user.Email)
		assert.Equal(t, "user@example.com", user.Username)
		assert.Equal(t, "secret123", user.Password)
		assert.Equal(t, SystemUserID, user.CreatedBy)
		assert.Equal(t, SystemUserID, user.UpdatedBy)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Nil(t, user.DeletedAt)
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "secret123", ErrEmptyEmail},
		{"missing at sign", "userexample.com", "secret123", ErrInvalidEmail},
		{"missing domain dot", "user@examplecom", "secret123", ErrInvalidEmail},
		{"at sign first", "@example.com", "secret123", ErrInvalidEmail},
		{"password too short", "user@example.com", "short", ErrPasswordTooShort},
		{"password too long", "user@example.com", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"empty password", "user@example.com", "", ErrEmptyPassword},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser(tc.email, tc.password)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, user)
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the database has a hash and no plaintext.
	user, err := NewUser("user@example.com", "secret123")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$0123456789012345678901"

	assert.NoError(t, user.Validate())
}
