package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("ValidSession", func(t *testing.T) {
		t.Parallel()

		session, err := NewSession(userID, "a1b2c3d4")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, "a1b2c3d4", session.Hash)
		assert.Equal(t, SystemUserID, session.CreatedBy)
		assert.Equal(t, SystemUserID, session.UpdatedBy)
		assert.False(t, session.CreatedAt.IsZero())
		assert.Equal(t, session.CreatedAt, session.UpdatedAt)
	})

	t.Run("NilUserID", func(t *testing.T) {
		t.Parallel()

		session, err := NewSession(uuid.Nil, "a1b2c3d4")
		assert.ErrorIs(t, err, ErrEmptyUserID)
		assert.Nil(t, session)
	})

	t.Run("EmptyHash", func(t *testing.T) {
		t.Parallel()

		session, err := NewSession(userID, "")
		assert.ErrorIs(t, err, ErrEmptySessionHash)
		assert.Nil(t, session)
	})
}

func TestSessionValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Session {
		return &Session{
			ID:     uuid.New(),
			UserID: uuid.New(),
			Hash:   "a1b2c3d4",
		}
	}

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, valid().Validate())
	})

	t.Run("NilID", func(t *testing.T) {
		t.Parallel()

		s := valid()
		s.ID = uuid.Nil
		assert.ErrorIs(t, s.Validate(), ErrEmptySessionID)
	})

	t.Run("NilUserID", func(t *testing.T) {
		t.Parallel()

		s := valid()
		s.UserID = uuid.Nil
		assert.ErrorIs(t, s.Validate(), ErrEmptyUserID)
	})
}
