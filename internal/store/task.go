package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskboardhq/taskboard-api/internal/domain"
)

// TaskListQuery carries the normalized, validated parameters of a task
// list operation. Optional filters are nil when absent. The search term
// matches title, description, owner name and owner email.
type TaskListQuery struct {
	Page     int
	Limit    int
	Search   string
	Status   *domain.TaskStatus
	UserID   *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Sort     Sort
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning user does not exist
	// (foreign key violation). The returned task has the owner summary
	// attached.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID with the owner summary attached.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns a page of tasks matching the query, each with the
	// owner summary attached.
	List(ctx context.Context, query TaskListQuery) (Page[*domain.Task], error)

	// Update modifies an existing task's details.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns ErrInvalidEntity if reassigning to a user that does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID and returns the
	// removed task with the owner summary attached.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Exists reports whether a task with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// ListByUser returns all tasks owned by the given user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// CountByStatus returns the number of tasks with the given status.
	CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error)

	// Count returns the total number of tasks.
	Count(ctx context.Context) (int, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
