package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskwise/taskwise/internal/domain"
	"github.com/taskwise/taskwise/internal/platform/logger"
	"github.com/taskwise/taskwise/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, title, slug, content, completed, user_id, created_by, updated_by, created_at, updated_at`

// Create implements store.TaskStore.Create
// Returns store.ErrSlugExists if the slug is already taken by a live task.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Slug,
		task.Content,
		task.Completed,
		task.UserID,
		task.CreatedBy,
		task.UpdatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("slug already exists", slog.String("slug", task.Slug))
			return MapUniqueViolation(err, store.ErrSlugExists)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("slug", task.Slug))
	return nil
}

// getBy fetches a single live task matching the given column.
func (s *PostgresTaskStore) getBy(ctx context.Context, column string, value any) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + column + ` = $1 AND deleted_at IS NULL
	`
	var task domain.Task
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&task.ID,
		&task.Title,
		&task.Slug,
		&task.Content,
		&task.Completed,
		&task.UserID,
		&task.CreatedBy,
		&task.UpdatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Any(column, value))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.Any(column, value))
		return nil, MapError(err)
	}

	return &task, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getBy(ctx, "id", id)
}

// GetBySlug implements store.TaskStore.GetBySlug
func (s *PostgresTaskStore) GetBySlug(ctx context.Context, slug string) (*domain.Task, error) {
	return s.getBy(ctx, "slug", slug)
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, opts store.TaskListOptions) ([]*domain.Task, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := "deleted_at IS NULL"
	args := []any{}
	if opts.Completed != nil {
		args = append(args, *opts.Completed)
		where += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + where

	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, opts.Offset, opts.Limit)

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Slug,
			&task.Content,
			&task.Completed,
			&task.UserID,
			&task.CreatedBy,
			&task.UpdatedBy,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	return tasks, total, nil
}

// Update implements store.TaskStore.Update
// Nil fields in the update are left untouched; the SET clause is built
// only from the fields actually present.
func (s *PostgresTaskStore) Update(ctx context.Context, id uuid.UUID, update store.TaskUpdate) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sets := []string{}
	args := []any{}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		addSet("title", *update.Title)
	}
	if update.Slug != nil {
		addSet("slug", *update.Slug)
	}
	if update.Content != nil {
		addSet("content", *update.Content)
	}
	if update.Completed != nil {
		addSet("completed", *update.Completed)
	}
	addSet("updated_by", update.UpdatedBy)
	addSet("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
	`, strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("slug already exists during update",
				slog.String("task_id", id.String()))
			return 0, MapUniqueViolation(err, store.ErrSlugExists)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("task updated",
		slog.String("task_id", id.String()),
		slog.Int64("affected", affected))
	return affected, nil
}

// Delete implements store.TaskStore.Delete
// Tasks are soft-deleted: the row is kept and stamped with deleted_at,
// which removes it from every default query.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.Int64("affected", affected))
	return affected, nil
}
