package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskwise/taskwise/internal/cache"
	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/store"
)

// Cache key conventions. List pages live under taskListKeyPrefix with
// the serialized query appended; single items under taskItemKeyPrefix
// plus the id or slug they were requested by.
const (
	taskListKeyPrefix = "tasks_all"
	taskItemKeyPrefix = "task_"
)

// Pagination guardrails.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ListTasksQuery narrows and pages a task listing. Its JSON form is the
// cache key suffix, so identical queries share a cache entry.
type ListTasksQuery struct {
	Completed *bool `json:"completed,omitempty"`
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
}

// normalize clamps paging to sane bounds.
func (q *ListTasksQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// TaskPage is one page of tasks plus its pagination metadata.
type TaskPage struct {
	Items []*domain.Task `json:"items"`
	Meta  PageMeta       `json:"meta"`
}

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	Title     string
	Slug      string
	Content   string
	Completed bool
}

// UpdateTaskInput carries the optional fields of a partial task update.
// Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title     *string
	Slug      *string
	Content   *string
	Completed *bool
}

// TaskService provides task CRUD with a read-through response cache.
// Reads are memoized under keys derived from their parameters; every
// write that could change a list result clears all cached list pages.
type TaskService interface {
	// List returns a page of tasks ordered by creation time descending,
	// optionally filtered by completion flag.
	List(ctx context.Context, query ListTasksQuery) (*TaskPage, error)

	// GetByIDOrSlug resolves key as a task UUID when it parses as one,
	// and as a slug otherwise. Returns store.ErrTaskNotFound on miss.
	GetByIDOrSlug(ctx context.Context, key string) (*domain.Task, error)

	// Create persists a new task owned by userID.
	// Returns store.ErrSlugExists when the slug is already taken.
	Create(ctx context.Context, input CreateTaskInput, userID uuid.UUID) (*domain.Task, error)

	// Update applies a partial update. Returns the updated task, or
	// store.ErrTaskNotFound when nothing was affected.
	// Panics if id is uuid.Nil: that is a caller bug, not user input.
	Update(ctx context.Context, id uuid.UUID, input UpdateTaskInput, userID uuid.UUID) (*domain.Task, error)

	// Toggle flips the task's completed flag.
	// Returns store.ErrTaskNotFound if the task does not exist.
	Toggle(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Task, error)

	// Delete soft-deletes the task.
	// Returns store.ErrTaskNotFound when nothing was affected.
	// Panics if id is uuid.Nil.
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	taskStore store.TaskStore
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// Ensure TaskServiceImpl implements TaskService interface
var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService. cacheTTL bounds how stale a
// cached read can get if an invalidation is ever missed.
func NewTaskService(
	taskStore store.TaskStore,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskStore: taskStore,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger.With("component", "task_service"),
	}
}

// listCacheKey derives the cache key for a list query from its JSON form.
func listCacheKey(query ListTasksQuery) string {
	serialized, err := json.Marshal(query)
	if err != nil {
		// A struct of scalars cannot fail to marshal; guard anyway.
		return taskListKeyPrefix
	}
	return fmt.Sprintf("%s_%s", taskListKeyPrefix, serialized)
}

// List implements TaskService.List.
func (s *TaskServiceImpl) List(ctx context.Context, query ListTasksQuery) (*TaskPage, error) {
	query.normalize()
	key := listCacheKey(query)

	if data, ok := s.cache.Get(ctx, key); ok {
		var page TaskPage
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
		// Corrupt entry: drop it and fall through to the database.
		s.cache.Delete(ctx, key)
	}

	tasks, total, err := s.taskStore.List(ctx, store.TaskListOptions{
		Completed: query.Completed,
		Offset:    (query.Page - 1) * query.Limit,
		Limit:     query.Limit,
	})
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	totalPages := total / int64(query.Limit)
	if total%int64(query.Limit) != 0 {
		totalPages++
	}

	page := &TaskPage{
		Items: tasks,
		Meta: PageMeta{
			Total:      total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: totalPages,
		},
	}

	s.cacheSet(ctx, key, page)
	return page, nil
}

// GetByIDOrSlug implements TaskService.GetByIDOrSlug.
func (s *TaskServiceImpl) GetByIDOrSlug(ctx context.Context, key string) (*domain.Task, error) {
	cacheKey := taskItemKeyPrefix + key

	if data, ok := s.cache.Get(ctx, cacheKey); ok {
		var task domain.Task
		if err := json.Unmarshal(data, &task); err == nil {
			return &task, nil
		}
		s.cache.Delete(ctx, cacheKey)
	}

	var task *domain.Task
	var err error
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		task, err = s.taskStore.GetByID(ctx, id)
	} else {
		task, err = s.taskStore.GetBySlug(ctx, key)
	}
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, store.ErrTaskNotFound
		}
		s.logger.Error("failed to get task", "error", err, "key", key)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	s.cacheSet(ctx, cacheKey, task)
	return task, nil
}

// Create implements TaskService.Create.
func (s *TaskServiceImpl) Create(ctx context.Context, input CreateTaskInput, userID uuid.UUID) (*domain.Task, error) {
	// Check the slug up front for a friendly error; the partial unique
	// index still backstops the race.
	if _, err := s.taskStore.GetBySlug(ctx, input.Slug); err == nil {
		return nil, store.ErrSlugExists
	} else if !errors.Is(err, store.ErrTaskNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	task, err := domain.NewTask(input.Title, input.Slug, input.Content, input.Completed, userID)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrSlugExists) {
			return nil, store.ErrSlugExists
		}
		s.logger.Error("failed to create task", "error", err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidateLists(ctx)
	return task, nil
}

// Update implements TaskService.Update.
func (s *TaskServiceImpl) Update(ctx context.Context, id uuid.UUID, input UpdateTaskInput, userID uuid.UUID) (*domain.Task, error) {
	assertID(id)

	affected, err := s.taskStore.Update(ctx, id, store.TaskUpdate{
		Title:     input.Title,
		Slug:      input.Slug,
		Content:   input.Content,
		Completed: input.Completed,
		UpdatedBy: userID.String(),
	})
	if err != nil {
		if errors.Is(err, store.ErrSlugExists) {
			return nil, store.ErrSlugExists
		}
		s.logger.Error("failed to update task", "error", err, "task_id", id)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if affected == 0 {
		// Nothing changed, so the cache stays untouched.
		return nil, store.ErrTaskNotFound
	}

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task after update: %w", err)
	}

	s.invalidateItem(ctx, task)
	s.invalidateLists(ctx)
	return task, nil
}

// Toggle implements TaskService.Toggle.
func (s *TaskServiceImpl) Toggle(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Task, error) {
	assertID(id)

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task for toggle: %w", err)
	}

	toggled := !task.Completed
	affected, err := s.taskStore.Update(ctx, id, store.TaskUpdate{
		Completed: &toggled,
		UpdatedBy: userID.String(),
	})
	if err != nil {
		s.logger.Error("failed to toggle task", "error", err, "task_id", id)
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrTaskNotFound
	}

	task.Completed = toggled
	task.UpdatedBy = userID.String()

	s.invalidateItem(ctx, task)
	s.invalidateLists(ctx)
	return task, nil
}

// Delete implements TaskService.Delete.
func (s *TaskServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	assertID(id)

	affected, err := s.taskStore.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", id)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if affected == 0 {
		return store.ErrTaskNotFound
	}

	// The slug-keyed entry, if any, is left to its TTL: the slug is not
	// known here without an extra read of a now-deleted row.
	s.cache.Delete(ctx, taskItemKeyPrefix+id.String())
	s.invalidateLists(ctx)
	return nil
}

// cacheSet serializes value and stores it under key with the service TTL.
func (s *TaskServiceImpl) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to serialize cache entry", "error", err, "key", key)
		return
	}
	s.cache.Set(ctx, key, data, s.cacheTTL)
}

// invalidateItem drops the single-item cache entries for a task, both
// the id-keyed and the slug-keyed one.
func (s *TaskServiceImpl) invalidateItem(ctx context.Context, task *domain.Task) {
	s.cache.Delete(ctx, taskItemKeyPrefix+task.ID.String())
	s.cache.Delete(ctx, taskItemKeyPrefix+task.Slug)
}

// invalidateLists drops every cached list page. Any write can change
// any page, so no attempt is made to enumerate the affected ones.
func (s *TaskServiceImpl) invalidateLists(ctx context.Context) {
	deleted := s.cache.DeletePrefix(ctx, taskListKeyPrefix)
	if deleted > 0 {
		s.logger.Debug("invalidated cached task lists", "entries", deleted)
	}
}

// assertID guards against programmer error: handlers always parse the
// route parameter before calling, so a nil ID can only be a caller bug.
func assertID(id uuid.UUID) {
	if id == uuid.Nil {
		panic("task id is required")
	}
}
