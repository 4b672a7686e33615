package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")
	ErrEmptyTaskSlug  = errors.New("task slug cannot be empty")
)

// Task represents a single to-do item owned by a user. Tasks are
// addressable by UUID or by their unique human-readable slug, and are
// soft-deleted: a deleted task keeps its row but is excluded from all
// default queries via the deleted_at column.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Content   string     `json:"content,omitempty"`
	Completed bool       `json:"completed"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedBy string     `json:"created_by"`
	UpdatedBy string     `json:"updated_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// NewTask creates a new Task owned by the given user. The creating user
// is also stamped into the audit columns. Returns an error if validation
// fails.
func NewTask(title, slug, content string, completed bool, userID uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Title:     title,
		Slug:      slug,
		Content:   content,
		Completed: completed,
		UserID:    userID,
		CreatedBy: userID.String(),
		UpdatedBy: userID.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.Slug == "" {
		return ErrEmptyTaskSlug
	}
	if !validateSlugFormat(t.Slug) {
		return ErrInvalidSlug
	}
	return nil
}

// validateSlugFormat reports whether the slug is URL-safe: lowercase
// letters, digits and single hyphens, not at the edges.
func validateSlugFormat(slug string) bool {
	prevHyphen := true // leading hyphen counts as doubled
	for _, char := range slug {
		switch {
		case char >= 'a' && char <= 'z', char >= '0' && char <= '9':
			prevHyphen = false
		case char == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return !prevHyphen
}
