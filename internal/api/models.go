package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// Pagination bounds and defaults shared by all list endpoints.
const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

// CreateUserRequest represents the request body for creating a new user
type CreateUserRequest struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// UpdateUserRequest represents the request body for a partial user update.
// At least one field must be present.
type UpdateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

// HasUpdates reports whether the request carries at least one field.
func (r UpdateUserRequest) HasUpdates() bool {
	return r.Name != nil || r.Email != nil
}

// CreateTaskRequest represents the request body for creating a new task
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Status      string `json:"status"      validate:"omitempty,oneof=PENDING DONE"`
	UserID      string `json:"userId"      validate:"required,uuid"`
}

// UpdateTaskRequest represents the request body for a partial task update.
// At least one field must be present.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=PENDING DONE"`
	UserID      *string `json:"userId"      validate:"omitempty,uuid"`
}

// HasUpdates reports whether the request carries at least one field.
func (r UpdateTaskRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Status != nil || r.UserID != nil
}

// ListUsersParams holds the parsed and validated query string of the
// user list endpoint.
type ListUsersParams struct {
	Page      int    `validate:"min=1"`
	Limit     int    `validate:"min=1,max=100"`
	Search    string `validate:"omitempty,max=255"`
	SortBy    string `validate:"oneof=name email createdAt"`
	SortOrder string `validate:"oneof=asc desc"`
}

// ListTasksParams holds the parsed and validated query string of the
// task list endpoint.
type ListTasksParams struct {
	Page      int    `validate:"min=1"`
	Limit     int    `validate:"min=1,max=100"`
	Search    string `validate:"omitempty,max=255"`
	Status    string `validate:"omitempty,oneof=PENDING DONE"`
	UserID    string `validate:"omitempty,uuid"`
	DateFrom  string `validate:"omitempty"`
	DateTo    string `validate:"omitempty"`
	SortBy    string `validate:"oneof=title status createdAt updatedAt"`
	SortOrder string `validate:"oneof=asc desc"`

	dateFrom *time.Time
	dateTo   *time.Time
}

// ParseListUsersParams extracts list parameters from the query string,
// applying defaults for everything absent.
func ParseListUsersParams(r *http.Request) (ListUsersParams, error) {
	q := r.URL.Query()

	page, err := parsePositiveInt(q.Get("page"), DefaultPage, "page")
	if err != nil {
		return ListUsersParams{}, err
	}
	limit, err := parsePositiveInt(q.Get("limit"), DefaultLimit, "limit")
	if err != nil {
		return ListUsersParams{}, err
	}

	return ListUsersParams{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		SortBy:    stringOrDefault(q.Get("sortBy"), DefaultSortBy),
		SortOrder: stringOrDefault(q.Get("sortOrder"), DefaultSortOrder),
	}, nil
}

// ParseListTasksParams extracts list parameters from the query string,
// applying defaults for everything absent. Date bounds are RFC 3339.
func ParseListTasksParams(r *http.Request) (ListTasksParams, error) {
	q := r.URL.Query()

	page, err := parsePositiveInt(q.Get("page"), DefaultPage, "page")
	if err != nil {
		return ListTasksParams{}, err
	}
	limit, err := parsePositiveInt(q.Get("limit"), DefaultLimit, "limit")
	if err != nil {
		return ListTasksParams{}, err
	}

	params := ListTasksParams{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		UserID:    q.Get("userId"),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		SortBy:    stringOrDefault(q.Get("sortBy"), DefaultSortBy),
		SortOrder: stringOrDefault(q.Get("sortOrder"), DefaultSortOrder),
	}

	if params.DateFrom != "" {
		from, err := time.Parse(time.RFC3339, params.DateFrom)
		if err != nil {
			return ListTasksParams{}, fmt.Errorf("dateFrom must be an RFC 3339 timestamp")
		}
		params.dateFrom = &from
	}
	if params.DateTo != "" {
		to, err := time.Parse(time.RFC3339, params.DateTo)
		if err != nil {
			return ListTasksParams{}, fmt.Errorf("dateTo must be an RFC 3339 timestamp")
		}
		params.dateTo = &to
	}

	return params, nil
}

// ToQuery converts the validated parameters into a store query.
func (p ListUsersParams) ToQuery() store.UserListQuery {
	return store.UserListQuery{
		Page:   p.Page,
		Limit:  p.Limit,
		Search: p.Search,
		Sort:   store.Sort{Field: p.SortBy, Order: store.SortOrder(p.SortOrder)},
	}
}

// ToQuery converts the validated parameters into a store query.
func (p ListTasksParams) ToQuery() store.TaskListQuery {
	query := store.TaskListQuery{
		Page:     p.Page,
		Limit:    p.Limit,
		Search:   p.Search,
		DateFrom: p.dateFrom,
		DateTo:   p.dateTo,
		Sort:     store.Sort{Field: p.SortBy, Order: store.SortOrder(p.SortOrder)},
	}

	if p.Status != "" {
		status := domain.TaskStatus(p.Status)
		query.Status = &status
	}
	if p.UserID != "" {
		// Already validated as a UUID; a parse failure leaves the filter unset.
		if id, err := uuid.Parse(p.UserID); err == nil {
			query.UserID = &id
		}
	}

	return query
}

func parsePositiveInt(raw string, fallback int, name string) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func stringOrDefault(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return raw
}
