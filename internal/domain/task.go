package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusDone    TaskStatus = "DONE"
)

// Common validation errors for tasks.
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrTitleTooLong       = errors.New("title must be at most 255 characters long")
	ErrDescriptionTooLong = errors.New("description must be at most 1000 characters long")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrEmptyTaskOwner     = errors.New("task owner ID cannot be empty")
)

// MaxTitleLength and MaxDescriptionLength bound the task text fields.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
)

// IsValid reports whether the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusPending || s == TaskStatusDone
}

// Task represents a unit of work owned by a user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	UserID      uuid.UUID  `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Owner holds the owning user's summary, attached by task reads.
	// Nil means "not loaded".
	Owner *OwnerSummary `json:"user,omitempty"`
}

// OwnerSummary is the reduced user projection embedded in task reads.
type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// NewTask creates a new Task owned by the given user.
// An empty status defaults to PENDING. It generates a new UUID for the
// task ID and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(title, description string, status TaskStatus, userID uuid.UUID) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}

	return nil
}
