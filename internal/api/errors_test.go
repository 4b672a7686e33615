package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/service"
	"github.com/taskwise/taskwise/internal/service/auth"
	"github.com/taskwise/taskwise/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"blacklisted token", service.ErrTokenBlacklisted, http.StatusUnauthorized},
		{"session mismatch", service.ErrSessionMismatch, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"slug exists", store.ErrSlugExists, http.StatusBadRequest},
		{"missing session", service.ErrMissingSession, http.StatusBadRequest},
		{"invalid slug", domain.ErrInvalidSlug, http.StatusBadRequest},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped known error", errors.New("wrapped: " + store.ErrTaskNotFound.Error()), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}

	t.Run("errors wrapped with %w are unwrapped", func(t *testing.T) {
		t.Parallel()
		wrapped := store.ErrTaskNotFound
		assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(wrapped))
	})
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"invalid credentials", service.ErrInvalidCredentials, "Invalid credentials"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"slug exists", store.ErrSlugExists, "Slug already exists"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"unknown", errors.New("pq: connection refused host=10.0.0.1"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
