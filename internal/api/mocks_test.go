package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/service"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// MockUserService is a mock implementation of service.UserService for testing
type MockUserService struct {
	CreateUserFn func(ctx context.Context, name, email string) (*domain.User, error)
	GetUserFn    func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsersFn  func(ctx context.Context, query store.UserListQuery) (store.Page[*domain.User], error)
	UpdateUserFn func(ctx context.Context, userID uuid.UUID, input service.UpdateUserInput) (*domain.User, error)
	DeleteUserFn func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *MockUserService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, name, email)
	}
	return nil, nil
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockUserService) ListUsers(
	ctx context.Context,
	query store.UserListQuery,
) (store.Page[*domain.User], error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx, query)
	}
	return store.Page[*domain.User]{}, nil
}

func (m *MockUserService) UpdateUser(
	ctx context.Context,
	userID uuid.UUID,
	input service.UpdateUserInput,
) (*domain.User, error) {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, userID, input)
	}
	return nil, nil
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, userID)
	}
	return nil, nil
}

// MockTaskService is a mock implementation of service.TaskService for testing
type MockTaskService struct {
	CreateTaskFn      func(ctx context.Context, input service.CreateTaskInput) (*domain.Task, error)
	GetTaskFn         func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	ListTasksFn       func(ctx context.Context, query store.TaskListQuery) (store.Page[*domain.Task], error)
	UpdateTaskFn      func(ctx context.Context, taskID uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error)
	DeleteTaskFn      func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	ListTasksByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	GetStatisticsFn   func(ctx context.Context) (*service.TaskStatistics, error)
}

func (m *MockTaskService) CreateTask(
	ctx context.Context,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, input)
	}
	return nil, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, taskID)
	}
	return nil, nil
}

func (m *MockTaskService) ListTasks(
	ctx context.Context,
	query store.TaskListQuery,
) (store.Page[*domain.Task], error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, query)
	}
	return store.Page[*domain.Task]{}, nil
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	taskID uuid.UUID,
	input service.UpdateTaskInput,
) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, taskID, input)
	}
	return nil, nil
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, taskID)
	}
	return nil, nil
}

func (m *MockTaskService) ListTasksByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	if m.ListTasksByUserFn != nil {
		return m.ListTasksByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockTaskService) GetStatistics(ctx context.Context) (*service.TaskStatistics, error) {
	if m.GetStatisticsFn != nil {
		return m.GetStatisticsFn(ctx)
	}
	return nil, nil
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(t *testing.T, r *http.Request, key, value string) *http.Request {
	t.Helper()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals the recorded response body into the envelope.
func performRequest(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, r)
	return rec
}
