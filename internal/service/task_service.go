package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// CreateTaskInput carries the fields of a task creation request.
// An empty Status defaults to PENDING.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	UserID      uuid.UUID
}

// UpdateTaskInput carries the optional fields of a partial task update.
// Nil fields are left unchanged. The API layer guarantees at least one
// field is present before the input reaches the service.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	UserID      *uuid.UUID
}

// TaskStatistics aggregates task counts by status.
// CompletionRate is round(done/total*100), 0 when no tasks exist.
type TaskStatistics struct {
	Pending        int `json:"pending"`
	Done           int `json:"done"`
	Total          int `json:"total"`
	CompletionRate int `json:"completionRate"`
}

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask creates a new task for an existing user.
	// Returns ErrOwnerNotFound if the referenced user does not exist.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks returns a page of tasks matching the query. When the query
	// filters by owner, the owner is validated to exist first and
	// ErrOwnerNotFound is returned otherwise.
	ListTasks(ctx context.Context, query store.TaskListQuery) (store.Page[*domain.Task], error)

	// UpdateTask applies a partial update to a task, re-validating the
	// owner when the task is being reassigned.
	// Returns ErrTaskNotFound if the task does not exist and
	// ErrOwnerNotFound if reassigned to a user that does not exist.
	UpdateTask(ctx context.Context, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// DeleteTask deletes a task by its ID and returns the removed task.
	// Returns ErrTaskNotFound if the task does not exist.
	DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListTasksByUser returns all tasks owned by the given user, newest
	// first. Returns ErrOwnerNotFound if the user does not exist.
	ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// GetStatistics computes aggregate task counts. The per-status and
	// total counts are issued concurrently and awaited jointly.
	GetStatistics(ctx context.Context) (*TaskStatistics, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	db *sql.DB,
	logger *slog.Logger,
) TaskService {
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		db:        db,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

// CreateTask creates a new task after validating the owner exists.
// The owner check runs before the insert so an invalid reference never
// reaches persistence; the foreign key backs it up against races.
func (s *taskServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	if err := s.validateOwnerExists(ctx, input.UserID); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(input.Title, input.Description, input.Status, input.UserID)
	if err != nil {
		s.logger.Warn("invalid task data",
			"error", err)
		return nil, newServiceError("create_task", "invalid task data", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})

	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			s.logger.Debug("task owner vanished during creation",
				"user_id", input.UserID)
			return nil, ErrOwnerNotFound
		}
		s.logger.Error("failed to create task",
			"error", err,
			"user_id", input.UserID)
		return nil, newServiceError("create_task", "failed to save task", err)
	}

	s.logger.Info("task created successfully",
		"task_id", task.ID,
		"user_id", task.UserID)
	return task, nil
}

// GetTask retrieves a task by its ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Debug("task not found",
				"task_id", taskID)
			return nil, ErrTaskNotFound
		}
		s.logger.Error("failed to retrieve task",
			"error", err,
			"task_id", taskID)
		return nil, newServiceError("get_task", "failed to retrieve task", err)
	}

	return task, nil
}

// ListTasks returns a page of tasks matching the query.
func (s *taskServiceImpl) ListTasks(ctx context.Context, query store.TaskListQuery) (store.Page[*domain.Task], error) {
	if query.UserID != nil {
		if err := s.validateOwnerExists(ctx, *query.UserID); err != nil {
			return store.Page[*domain.Task]{}, err
		}
	}

	page, err := s.taskStore.List(ctx, query)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err)
		return store.Page[*domain.Task]{}, newServiceError("list_tasks", "failed to list tasks", err)
	}

	return page, nil
}

// UpdateTask applies a partial update to a task.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	var updated *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		if input.UserID != nil && *input.UserID != task.UserID {
			exists, err := s.userStore.WithTx(tx).Exists(ctx, *input.UserID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrOwnerNotFound
			}
			task.UserID = *input.UserID
		}
		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			s.logger.Debug("attempted to update non-existent task",
				"task_id", taskID)
			return nil, ErrTaskNotFound
		case errors.Is(err, ErrOwnerNotFound):
			s.logger.Debug("attempted to reassign task to non-existent user",
				"task_id", taskID)
			return nil, ErrOwnerNotFound
		}
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, newServiceError("update_task", "failed to update task", err)
	}

	s.logger.Info("task updated successfully",
		"task_id", taskID)
	return updated, nil
}

// DeleteTask deletes a task by its ID and returns the removed task.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	var deleted *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		task, err := s.taskStore.WithTx(tx).Delete(ctx, taskID)
		if err != nil {
			return err
		}
		deleted = task
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Debug("attempted to delete non-existent task",
				"task_id", taskID)
			return nil, ErrTaskNotFound
		}
		s.logger.Error("failed to delete task",
			"error", err,
			"task_id", taskID)
		return nil, newServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted successfully",
		"task_id", taskID)
	return deleted, nil
}

// ListTasksByUser returns all tasks owned by the given user.
func (s *taskServiceImpl) ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if err := s.validateOwnerExists(ctx, userID); err != nil {
		return nil, err
	}

	tasks, err := s.taskStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks by user",
			"error", err,
			"user_id", userID)
		return nil, newServiceError("list_tasks_by_user", "failed to list tasks", err)
	}

	return tasks, nil
}

// GetStatistics computes aggregate task counts from three independent,
// concurrently issued counts. The total comes from a direct count rather
// than a paginated list query.
func (s *taskServiceImpl) GetStatistics(ctx context.Context) (*TaskStatistics, error) {
	var pending, done, total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = s.taskStore.CountByStatus(gctx, domain.TaskStatusPending)
		return err
	})
	g.Go(func() error {
		var err error
		done, err = s.taskStore.CountByStatus(gctx, domain.TaskStatusDone)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.taskStore.Count(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute task statistics",
			"error", err)
		return nil, newServiceError("get_statistics", "failed to count tasks", err)
	}

	completionRate := 0
	if total > 0 {
		completionRate = int(math.Round(float64(done) / float64(total) * 100))
	}

	return &TaskStatistics{
		Pending:        pending,
		Done:           done,
		Total:          total,
		CompletionRate: completionRate,
	}, nil
}

// validateOwnerExists maps an absent user to ErrOwnerNotFound.
func (s *taskServiceImpl) validateOwnerExists(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.userStore.Exists(ctx, userID)
	if err != nil {
		s.logger.Error("failed to check user existence",
			"error", err,
			"user_id", userID)
		return newServiceError("validate_owner", "failed to check user existence", err)
	}
	if !exists {
		s.logger.Debug("task owner does not exist",
			"user_id", userID)
		return ErrOwnerNotFound
	}
	return nil
}
