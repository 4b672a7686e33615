package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwise/taskwise/internal/store"
)

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: "some_constraint", ColumnName: "some_column"}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "NilError",
			err:     nil,
			wantErr: nil,
		},
		{
			name:    "NoRows",
			err:     sql.ErrNoRows,
			wantErr: store.ErrNotFound,
		},
		{
			name:    "WrappedNoRows",
			err:     fmt.Errorf("query failed: %w", sql.ErrNoRows),
			wantErr: store.ErrNotFound,
		},
		{
			name:    "UniqueViolation",
			err:     pgError(uniqueViolationCode),
			wantErr: store.ErrDuplicate,
		},
		{
			name:    "ForeignKeyViolation",
			err:     pgError(foreignKeyViolationCode),
			wantErr: store.ErrInvalidEntity,
		},
		{
			name:    "NotNullViolation",
			err:     pgError(notNullViolationCode),
			wantErr: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			if tt.wantErr == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantErr)
		})
	}

	t.Run("UnknownErrorPassesThrough", func(t *testing.T) {
		t.Parallel()

		original := errors.New("connection reset")
		assert.Equal(t, original, MapError(original))
	})
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	t.Run("UniqueViolationMapsToSpecificError", func(t *testing.T) {
		t.Parallel()

		got := MapUniqueViolation(pgError(uniqueViolationCode), store.ErrEmailExists)
		assert.ErrorIs(t, got, store.ErrEmailExists)
		assert.ErrorIs(t, got, store.ErrDuplicate)
	})

	t.Run("OtherErrorsFallThroughToMapError", func(t *testing.T) {
		t.Parallel()

		got := MapUniqueViolation(sql.ErrNoRows, store.ErrEmailExists)
		require.Error(t, got)
		assert.ErrorIs(t, got, store.ErrNotFound)
		assert.NotErrorIs(t, got, store.ErrEmailExists)
	})
}

func TestIsViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode)))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, IsUniqueViolation(errors.New("plain")))

	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, IsForeignKeyViolation(pgError(uniqueViolationCode)))

	wrapped := fmt.Errorf("insert user: %w", pgError(uniqueViolationCode))
	assert.True(t, IsUniqueViolation(wrapped))
}
