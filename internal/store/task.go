package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskwise/taskwise/internal/domain"
)

// TaskListOptions narrows and pages a task listing. A nil Completed
// means no completion filter. Offset/Limit are applied after ordering
// by creation time descending.
type TaskListOptions struct {
	Completed *bool
	Offset    int
	Limit     int
}

// TaskUpdate describes a partial update to a task. Nil fields are left
// unchanged. UpdatedBy is always stamped.
type TaskUpdate struct {
	Title     *string
	Slug      *string
	Content   *string
	Completed *bool
	UpdatedBy string
}

// TaskStore defines the interface for task data persistence.
// All queries exclude soft-deleted rows.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrSlugExists if the slug is already taken by a live task.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist or is deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetBySlug retrieves a task by its unique slug.
	// Returns ErrTaskNotFound if the task does not exist or is deleted.
	GetBySlug(ctx context.Context, slug string) (*domain.Task, error)

	// List returns a page of tasks ordered by creation time descending,
	// along with the total count matching the filter regardless of paging.
	List(ctx context.Context, opts TaskListOptions) ([]*domain.Task, int64, error)

	// Update applies a partial update to a task and reports the number of
	// rows affected. Zero affected rows means the task does not exist or
	// is deleted; that is not an error at this layer.
	// Returns ErrSlugExists if a slug change collides with a live task.
	Update(ctx context.Context, id uuid.UUID, update TaskUpdate) (int64, error)

	// Delete soft-deletes a task by stamping deleted_at, and reports the
	// number of rows affected.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
