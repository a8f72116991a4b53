package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/platform/logger"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// taskSearchFields are the logical fields a task search term matches.
// Owner name and email make the search cross-entity.
var taskSearchFields = []string{"title", "description", "userName", "userEmail"}

// taskColumns maps the logical task field names accepted in filters and
// sorts to their SQL columns. Task queries always join the owning user,
// so owner fields are addressable too.
var taskColumns = map[string]string{
	"title":       "t.title",
	"description": "t.description",
	"status":      "t.status",
	"userId":      "t.user_id",
	"createdAt":   "t.created_at",
	"updatedAt":   "t.updated_at",
	"userName":    "u.name",
	"userEmail":   "u.email",
}

// taskSelect is the shared projection for task reads with the owner joined.
const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.user_id, t.created_at, t.updated_at,
	       u.id, u.name, u.email
	FROM tasks t
	JOIN users u ON u.id = t.user_id
`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
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

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		nullableText(task.Description),
		task.Status,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
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

	if err := s.attachOwner(ctx, task); err != nil {
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// It fetches the page rows and the total count concurrently. Both queries
// join the owning user so the search term can match owner name and email.
func (s *PostgresTaskStore) List(ctx context.Context, q store.TaskListQuery) (store.Page[*domain.Task], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filters := taskFilters(q)

	dataBuilder := &clauseBuilder{}
	where, err := buildWhere(dataBuilder, filters, taskColumns)
	if err != nil {
		return store.Page[*domain.Task]{}, store.NewStoreError("task", "list", "invalid filter", err)
	}
	orderBy, err := buildOrderBy(q.Sort, taskColumns)
	if err != nil {
		return store.Page[*domain.Task]{}, store.NewStoreError("task", "list", "invalid sort", err)
	}

	dataQuery := taskSelect + where + orderBy + buildLimitOffset(dataBuilder, q.Page, q.Limit)

	countBuilder := &clauseBuilder{}
	countWhere, err := buildWhere(countBuilder, filters, taskColumns)
	if err != nil {
		return store.Page[*domain.Task]{}, store.NewStoreError("task", "list", "invalid filter", err)
	}
	countQuery := `SELECT COUNT(*) FROM tasks t JOIN users u ON u.id = t.user_id` + countWhere

	var (
		tasks []*domain.Task
		total int
	)

	fetchRows := func(ctx context.Context) error {
		var err error
		tasks, err = s.queryTasks(ctx, dataQuery, dataBuilder.args...)
		return err
	}
	fetchTotal := func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, countQuery, countBuilder.args...).Scan(&total)
	}

	if err := runJointly(ctx, s.db, fetchRows, fetchTotal); err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return store.Page[*domain.Task]{}, MapError(err)
	}

	log.Debug("listed tasks",
		slog.Int("count", len(tasks)),
		slog.Int("total", total))
	return store.NewPage(tasks, total, q.Page, q.Limit), nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist and
// store.ErrInvalidEntity if reassigned to a user that does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, user_id = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		nullableText(task.Description),
		task.Status,
		task.UserID,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task update",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	if err := s.attachOwner(ctx, task); err != nil {
		return MapError(err)
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// It returns the removed task with the owner summary attached.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return nil, err
	}

	log.Info("task deleted successfully",
		slog.String("task_id", id.String()))
	return task, nil
}

// Exists implements store.TaskStore.Exists
func (s *PostgresTaskStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListByUser implements store.TaskStore.ListByUser
// Tasks are returned newest first.
func (s *PostgresTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.queryTasks(ctx,
		taskSelect+` WHERE t.user_id = $1 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		log.Error("failed to list tasks by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// CountByStatus implements store.TaskStore.CountByStatus
func (s *PostgresTaskStore) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = $1`,
		status,
	).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// Count implements store.TaskStore.Count
func (s *PostgresTaskStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// taskFilters translates a TaskListQuery into typed filter expressions.
func taskFilters(q store.TaskListQuery) []store.Filter {
	var filters []store.Filter

	if q.Search != "" {
		filters = append(filters, store.SearchFilter{Term: q.Search, Fields: taskSearchFields})
	}
	if q.Status != nil {
		filters = append(filters, store.EqFilter{Field: "status", Value: string(*q.Status)})
	}
	if q.UserID != nil {
		filters = append(filters, store.EqFilter{Field: "userId", Value: *q.UserID})
	}
	if q.DateFrom != nil || q.DateTo != nil {
		filters = append(filters, store.TimeRangeFilter{
			Field: "createdAt",
			From:  q.DateFrom,
			To:    q.DateTo,
		})
	}

	return filters
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared task scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one joined task row into a domain.Task with the owner
// summary attached.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
		owner       domain.OwnerSummary
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
		&owner.ID,
		&owner.Name,
		&owner.Email,
	); err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Status = domain.TaskStatus(status)
	task.Owner = &owner
	return &task, nil
}

// queryTasks runs a joined task SELECT and scans the rows.
func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// attachOwner loads the owner summary for a freshly written task.
func (s *PostgresTaskStore) attachOwner(ctx context.Context, task *domain.Task) error {
	var owner domain.OwnerSummary
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, email FROM users WHERE id = $1`,
		task.UserID,
	).Scan(&owner.ID, &owner.Name, &owner.Email)
	if err != nil {
		return err
	}
	task.Owner = &owner
	return nil
}

// nullableText maps an empty string to SQL NULL for optional text columns.
func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
