package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/taskboardhq/taskboard-api/internal/config"
	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/service"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// stubTaskService records which operation the router dispatched to.
type stubTaskService struct {
	statisticsCalled bool
	getTaskCalled    bool
}

func (s *stubTaskService) CreateTask(context.Context, service.CreateTaskInput) (*domain.Task, error) {
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) GetTask(context.Context, uuid.UUID) (*domain.Task, error) {
	s.getTaskCalled = true
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) ListTasks(context.Context, store.TaskListQuery) (store.Page[*domain.Task], error) {
	return store.Page[*domain.Task]{}, nil
}

func (s *stubTaskService) UpdateTask(context.Context, uuid.UUID, service.UpdateTaskInput) (*domain.Task, error) {
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) DeleteTask(context.Context, uuid.UUID) (*domain.Task, error) {
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) ListTasksByUser(context.Context, uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskService) GetStatistics(context.Context) (*service.TaskStatistics, error) {
	s.statisticsCalled = true
	return &service.TaskStatistics{}, nil
}

func newTestApplication(taskService service.TaskService) *application {
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		},
		logger:      slog.Default(),
		taskService: taskService,
	}
}

func TestRouter_HealthAndLiveness(t *testing.T) {
	t.Parallel()

	app := newTestApplication(&stubTaskService{})
	router := app.setupRouter()

	t.Run("health check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("liveness banner", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Task Management API is running")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nonsense", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_StatisticsRouteIsNotCapturedAsID(t *testing.T) {
	t.Parallel()

	stub := &stubTaskService{}
	app := newTestApplication(stub)
	router := app.setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/statistics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.statisticsCalled)
	assert.False(t, stub.getTaskCalled)
}
