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
	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/mocks"
	"github.com/taskwise/taskwise/internal/store"
)

func newTaskTestService(t *testing.T) (*TaskServiceImpl, *mocks.MockTaskStore) {
	t.Helper()
	taskStore := mocks.NewMockTaskStore()
	svc := NewTaskService(taskStore, cache.NewMemoryCache(time.Minute), time.Minute, slog.Default())
	return svc, taskStore
}

// seedTask inserts a task directly into the mock store, bypassing the
// service and its cache.
func seedTask(t *testing.T, taskStore *mocks.MockTaskStore, title, slug string, completed bool, createdAt time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, slug, "", completed, uuid.New())
	require.NoError(t, err)
	task.CreatedAt = createdAt
	require.NoError(t, taskStore.Create(context.Background(), task))
	return task
}

func TestTaskCreate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("creates task", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		task, err := svc.Create(context.Background(), CreateTaskInput{
			Title:   "Buy milk",
			Slug:    "buy-milk",
			Content: "2 liters",
		}, userID)
		require.NoError(t, err)

		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, userID, task.UserID)
		assert.Equal(t, userID.String(), task.CreatedBy)
		assert.False(t, task.Completed)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		_, err := svc.Create(context.Background(), CreateTaskInput{
			Title: "First", Slug: "same-slug",
		}, userID)
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), CreateTaskInput{
			Title: "Second", Slug: "same-slug",
		}, userID)
		assert.ErrorIs(t, err, store.ErrSlugExists)
	})

	t.Run("invalid slug rejected", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		_, err := svc.Create(context.Background(), CreateTaskInput{
			Title: "Bad", Slug: "Not A Slug",
		}, userID)
		assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	})

	t.Run("create invalidates cached lists", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seedTask(t, taskStore, "One", "one", false, time.Now().UTC())

		page, err := svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)

		_, err = svc.Create(context.Background(), CreateTaskInput{
			Title: "Two", Slug: "two",
		}, userID)
		require.NoError(t, err)

		page, err = svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	})
}

func TestTaskGetByIDOrSlug(t *testing.T) {
	t.Parallel()

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Read book", "read-book", false, time.Now().UTC())

		task, err := svc.GetByIDOrSlug(context.Background(), seeded.ID.String())
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, task.ID)
	})

	t.Run("by slug", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Read book", "read-book", false, time.Now().UTC())

		task, err := svc.GetByIDOrSlug(context.Background(), "read-book")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, task.ID)
	})

	t.Run("miss", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		_, err := svc.GetByIDOrSlug(context.Background(), "no-such-task")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		_, err = svc.GetByIDOrSlug(context.Background(), uuid.New().String())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Cached", "cached", false, time.Now().UTC())

		_, err := svc.GetByIDOrSlug(context.Background(), "cached")
		require.NoError(t, err)

		calls := 0
		taskStore.GetBySlugFn = func(ctx context.Context, slug string) (*domain.Task, error) {
			calls++
			return nil, store.ErrTaskNotFound
		}

		task, err := svc.GetByIDOrSlug(context.Background(), "cached")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, task.ID)
		assert.Equal(t, 0, calls, "store must not be hit on a cached read")
	})
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	t.Run("ordering and pagination", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)

		base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		oldest := seedTask(t, taskStore, "Oldest", "oldest", false, base)
		middle := seedTask(t, taskStore, "Middle", "middle", true, base.Add(time.Hour))
		newest := seedTask(t, taskStore, "Newest", "newest", false, base.Add(2*time.Hour))

		page, err := svc.List(context.Background(), ListTasksQuery{Page: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, newest.ID, page.Items[0].ID)
		assert.Equal(t, middle.ID, page.Items[1].ID)
		assert.Equal(t, int64(3), page.Meta.Total)
		assert.Equal(t, int64(2), page.Meta.TotalPages)

		page, err = svc.List(context.Background(), ListTasksQuery{Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, oldest.ID, page.Items[0].ID)
	})

	t.Run("completed filter", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)

		now := time.Now().UTC()
		seedTask(t, taskStore, "Open", "open", false, now)
		done := seedTask(t, taskStore, "Done", "done", true, now.Add(time.Minute))

		completed := true
		page, err := svc.List(context.Background(), ListTasksQuery{Completed: &completed})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, done.ID, page.Items[0].ID)
		assert.Equal(t, int64(1), page.Meta.Total)
	})

	t.Run("distinct queries get distinct cache entries", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)

		now := time.Now().UTC()
		seedTask(t, taskStore, "Open", "open", false, now)
		seedTask(t, taskStore, "Done", "done", true, now.Add(time.Minute))

		all, err := svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		assert.Len(t, all.Items, 2)

		completed := true
		filtered, err := svc.List(context.Background(), ListTasksQuery{Completed: &completed})
		require.NoError(t, err)
		assert.Len(t, filtered.Items, 1)

		// Both queries must be answerable from cache now.
		calls := 0
		taskStore.ListFn = func(ctx context.Context, opts store.TaskListOptions) ([]*domain.Task, int64, error) {
			calls++
			return nil, 0, nil
		}
		_, err = svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		_, err = svc.List(context.Background(), ListTasksQuery{Completed: &completed})
		require.NoError(t, err)
		assert.Equal(t, 0, calls)
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		page, err := svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(0), page.Meta.Total)
		assert.Equal(t, int64(0), page.Meta.TotalPages)
	})
}

func TestTaskUpdate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("partial update", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Old title", "old-slug", false, time.Now().UTC())

		newTitle := "New title"
		task, err := svc.Update(context.Background(), seeded.ID, UpdateTaskInput{
			Title: &newTitle,
		}, userID)
		require.NoError(t, err)

		assert.Equal(t, "New title", task.Title)
		assert.Equal(t, "old-slug", task.Slug, "unset fields stay unchanged")
		assert.Equal(t, userID.String(), task.UpdatedBy)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		title := "x"
		_, err := svc.Update(context.Background(), uuid.New(), UpdateTaskInput{Title: &title}, userID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("slug collision", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seedTask(t, taskStore, "Taken", "taken", false, time.Now().UTC())
		seeded := seedTask(t, taskStore, "Mine", "mine", false, time.Now().UTC())

		taken := "taken"
		_, err := svc.Update(context.Background(), seeded.ID, UpdateTaskInput{Slug: &taken}, userID)
		assert.ErrorIs(t, err, store.ErrSlugExists)
	})

	t.Run("nil id panics", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		assert.Panics(t, func() {
			_, _ = svc.Update(context.Background(), uuid.Nil, UpdateTaskInput{}, userID)
		})
	})

	t.Run("update is visible through cached slug read", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Title", "the-slug", false, time.Now().UTC())

		// Warm the slug-keyed cache entry.
		_, err := svc.GetByIDOrSlug(context.Background(), "the-slug")
		require.NoError(t, err)

		newTitle := "Renamed"
		_, err = svc.Update(context.Background(), seeded.ID, UpdateTaskInput{Title: &newTitle}, userID)
		require.NoError(t, err)

		task, err := svc.GetByIDOrSlug(context.Background(), "the-slug")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", task.Title)
	})
}

func TestTaskToggle(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("flips completion both ways", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Flip me", "flip-me", false, time.Now().UTC())

		task, err := svc.Toggle(context.Background(), seeded.ID, userID)
		require.NoError(t, err)
		assert.True(t, task.Completed)

		task, err = svc.Toggle(context.Background(), seeded.ID, userID)
		require.NoError(t, err)
		assert.False(t, task.Completed)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		_, err := svc.Toggle(context.Background(), uuid.New(), userID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("nil id panics", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		assert.Panics(t, func() {
			_, _ = svc.Toggle(context.Background(), uuid.Nil, userID)
		})
	})

	t.Run("toggle is visible through cached slug read", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Milk", "buy-milk", false, time.Now().UTC())

		// Warm both the slug entry and a list entry.
		warm, err := svc.GetByIDOrSlug(context.Background(), "buy-milk")
		require.NoError(t, err)
		require.False(t, warm.Completed)
		_, err = svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)

		_, err = svc.Toggle(context.Background(), seeded.ID, userID)
		require.NoError(t, err)

		task, err := svc.GetByIDOrSlug(context.Background(), "buy-milk")
		require.NoError(t, err)
		assert.True(t, task.Completed, "stale cache entry must not survive a toggle")

		page, err := svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.True(t, page.Items[0].Completed)
	})
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("soft delete hides the task", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Doomed", "doomed", false, time.Now().UTC())

		require.NoError(t, svc.Delete(context.Background(), seeded.ID))

		_, err := svc.GetByIDOrSlug(context.Background(), seeded.ID.String())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		// The row survives as a soft-deleted record.
		raw := taskStore.Tasks[seeded.ID]
		require.NotNil(t, raw)
		assert.NotNil(t, raw.DeletedAt)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		err := svc.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("nil id panics", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		assert.Panics(t, func() {
			_ = svc.Delete(context.Background(), uuid.Nil)
		})
	})

	t.Run("delete invalidates cached lists", func(t *testing.T) {
		t.Parallel()
		svc, taskStore := newTaskTestService(t)
		seeded := seedTask(t, taskStore, "Doomed", "doomed", false, time.Now().UTC())

		page, err := svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)

		require.NoError(t, svc.Delete(context.Background(), seeded.ID))

		page, err = svc.List(context.Background(), ListTasksQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	// Toggle after create then read by the other key, mirroring the
	// typical client flow end to end.
	t.Run("create toggle read flow", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskTestService(t)

		created, err := svc.Create(context.Background(), CreateTaskInput{
			Title: "Buy milk", Slug: "buy-milk",
		}, userID)
		require.NoError(t, err)

		_, err = svc.Toggle(context.Background(), created.ID, userID)
		require.NoError(t, err)

		task, err := svc.GetByIDOrSlug(context.Background(), "buy-milk")
		require.NoError(t, err)
		assert.True(t, task.Completed)
	})
}
