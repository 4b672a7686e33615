package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation mirrors the real store's semantics: live-slug
// uniqueness, soft deletes and creation-time descending ordering.
type MockTaskStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateFn    func(ctx context.Context, task *domain.Task) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	GetBySlugFn func(ctx context.Context, slug string) (*domain.Task, error)
	ListFn      func(ctx context.Context, opts store.TaskListOptions) ([]*domain.Task, int64, error)
	UpdateFn    func(ctx context.Context, id uuid.UUID, update store.TaskUpdate) (int64, error)
	DeleteFn    func(ctx context.Context, id uuid.UUID) (int64, error)

	// Data for default implementation
	Tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Tasks {
		if existing.Slug == task.Slug && existing.DeletedAt == nil {
			return store.ErrSlugExists
		}
	}
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists || task.DeletedAt != nil {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// GetBySlug implements the TaskStore interface.
func (m *MockTaskStore) GetBySlug(ctx context.Context, slug string) (*domain.Task, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, task := range m.Tasks {
		if task.Slug == slug && task.DeletedAt == nil {
			copied := *task
			return &copied, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// List implements the TaskStore interface.
func (m *MockTaskStore) List(ctx context.Context, opts store.TaskListOptions) ([]*domain.Task, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matching []*domain.Task
	for _, task := range m.Tasks {
		if task.DeletedAt != nil {
			continue
		}
		if opts.Completed != nil && task.Completed != *opts.Completed {
			continue
		}
		copied := *task
		matching = append(matching, &copied)
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	total := int64(len(matching))

	if opts.Offset >= len(matching) {
		return []*domain.Task{}, total, nil
	}
	matching = matching[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(matching) {
		matching = matching[:opts.Limit]
	}

	return matching, total, nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, id uuid.UUID, update store.TaskUpdate) (int64, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, update)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists || task.DeletedAt != nil {
		return 0, nil
	}

	if update.Slug != nil && *update.Slug != task.Slug {
		for _, existing := range m.Tasks {
			if existing.Slug == *update.Slug && existing.DeletedAt == nil {
				return 0, store.ErrSlugExists
			}
		}
		task.Slug = *update.Slug
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Content != nil {
		task.Content = *update.Content
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	task.UpdatedBy = update.UpdatedBy
	task.UpdatedAt = time.Now().UTC()

	return 1, nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists || task.DeletedAt != nil {
		return 0, nil
	}
	now := time.Now().UTC()
	task.DeletedAt = &now
	return 1, nil
}
