package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Username string `json:"username" validate:"omitempty,min=3,max=64"`
	Bio      string `json:"bio"      validate:"omitempty,max=500"`
	Image    string `json:"image"    validate:"omitempty,url"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RegisterResponse defines the successful response for registration.
type RegisterResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// RefreshToken is the JWT refresh token used to obtain a new token pair
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	// AccessToken is the new JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the new JWT token used to obtain future access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title     string `json:"title"     validate:"required,min=1,max=255"`
	Slug      string `json:"slug"      validate:"required,min=1,max=255"`
	Content   string `json:"content"   validate:"omitempty,max=10000"`
	Completed bool   `json:"completed"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title     *string `json:"title"     validate:"omitempty,min=1,max=255"`
	Slug      *string `json:"slug"      validate:"omitempty,min=1,max=255"`
	Content   *string `json:"content"   validate:"omitempty,max=10000"`
	Completed *bool   `json:"completed"`
}

// TaskResponse defines the representation of a task returned by the API.
type TaskResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content,omitempty"`
	Completed bool      `json:"completed"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// TaskListResponse defines the paginated task listing response.
type TaskListResponse struct {
	Items []TaskResponse   `json:"items"`
	Meta  service.PageMeta `json:"meta"`
}

// NewTaskResponse converts a domain task to its API representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Slug:      task.Slug,
		Content:   task.Content,
		Completed: task.Completed,
		UserID:    task.UserID,
		CreatedAt: task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewTaskListResponse converts a service page to its API representation.
func NewTaskListResponse(page *service.TaskPage) TaskListResponse {
	items := make([]TaskResponse, 0, len(page.Items))
	for _, task := range page.Items {
		items = append(items, NewTaskResponse(task))
	}
	return TaskListResponse{Items: items, Meta: page.Meta}
}
