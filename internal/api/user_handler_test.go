package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard-api/internal/api/shared"
	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/service"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) shared.Response {
	t.Helper()

	var resp shared.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUserHandler_CreateUser(t *testing.T) {
	t.Parallel()

	t.Run("creates user with valid payload", func(t *testing.T) {
		t.Parallel()

		expected, err := domain.NewUser("Ada Lovelace", "ada@example.com")
		require.NoError(t, err)

		svc := &MockUserService{
			CreateUserFn: func(ctx context.Context, name, email string) (*domain.User, error) {
				assert.Equal(t, "Ada Lovelace", name)
				assert.Equal(t, "ada@example.com", email)
				return expected, nil
			},
		}
		handler := NewUserHandler(svc)

		body := bytes.NewBufferString(`{"name":"Ada Lovelace","email":"ada@example.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/users", body)
		rec := performRequest(handler.CreateUser, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(`{invalid`))
		rec := performRequest(handler.CreateUser, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects invalid email with field details", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		body := bytes.NewBufferString(`{"name":"Ada","email":"not-an-email"}`)
		req := httptest.NewRequest(http.MethodPost, "/users", body)
		rec := performRequest(handler.CreateUser, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.False(t, resp.Success)
		require.NotEmpty(t, resp.Details)
		assert.Equal(t, "Email", resp.Details[0].Field)
	})

	t.Run("maps duplicate email to 409", func(t *testing.T) {
		t.Parallel()

		svc := &MockUserService{
			CreateUserFn: func(ctx context.Context, name, email string) (*domain.User, error) {
				return nil, service.ErrEmailExists
			},
		}
		handler := NewUserHandler(svc)

		body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/users", body)
		rec := performRequest(handler.CreateUser, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "Email already exists", resp.Error)
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Parallel()

	t.Run("returns the user", func(t *testing.T) {
		t.Parallel()

		expected, err := domain.NewUser("Ada Lovelace", "ada@example.com")
		require.NoError(t, err)

		svc := &MockUserService{
			GetUserFn: func(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
				assert.Equal(t, expected.ID, userID)
				return expected, nil
			},
		}
		handler := NewUserHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/users/"+expected.ID.String(), nil)
		req = withURLParam(t, req, "id", expected.ID.String())
		rec := performRequest(handler.GetUser, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("maps missing user to 404", func(t *testing.T) {
		t.Parallel()

		svc := &MockUserService{
			GetUserFn: func(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
				return nil, service.ErrUserNotFound
			},
		}
		handler := NewUserHandler(svc)

		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil)
		req = withURLParam(t, req, "id", id.String())
		rec := performRequest(handler.GetUser, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "User not found", resp.Error)
	})

	t.Run("rejects malformed IDs", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		req := httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil)
		req = withURLParam(t, req, "id", "not-a-uuid")
		rec := performRequest(handler.GetUser, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults and returns pagination", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("Ada Lovelace", "ada@example.com")
		require.NoError(t, err)

		svc := &MockUserService{
			ListUsersFn: func(ctx context.Context, query store.UserListQuery) (store.Page[*domain.User], error) {
				assert.Equal(t, 1, query.Page)
				assert.Equal(t, 10, query.Limit)
				assert.Equal(t, "createdAt", query.Sort.Field)
				assert.Equal(t, store.SortDesc, query.Sort.Order)
				return store.NewPage([]*domain.User{user}, 1, 1, 10), nil
			},
		}
		handler := NewUserHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rec := performRequest(handler.ListUsers, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope(t, rec)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, 1, resp.Pagination.Total)
	})

	t.Run("passes search and sort through", func(t *testing.T) {
		t.Parallel()

		svc := &MockUserService{
			ListUsersFn: func(ctx context.Context, query store.UserListQuery) (store.Page[*domain.User], error) {
				assert.Equal(t, 2, query.Page)
				assert.Equal(t, 25, query.Limit)
				assert.Equal(t, "ada", query.Search)
				assert.Equal(t, "email", query.Sort.Field)
				assert.Equal(t, store.SortAsc, query.Sort.Order)
				return store.NewPage([]*domain.User{}, 0, 2, 25), nil
			},
		}
		handler := NewUserHandler(svc)

		req := httptest.NewRequest(
			http.MethodGet,
			"/users?page=2&limit=25&search=ada&sortBy=email&sortOrder=asc",
			nil,
		)
		rec := performRequest(handler.ListUsers, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects out-of-range limit", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		req := httptest.NewRequest(http.MethodGet, "/users?limit=500", nil)
		rec := performRequest(handler.ListUsers, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown sort field", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		req := httptest.NewRequest(http.MethodGet, "/users?sortBy=password", nil)
		rec := performRequest(handler.ListUsers, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-integer page", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		req := httptest.NewRequest(http.MethodGet, "/users?page=abc", nil)
		rec := performRequest(handler.ListUsers, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("applies a partial update", func(t *testing.T) {
		t.Parallel()

		expected, err := domain.NewUser("Ada King", "ada@example.com")
		require.NoError(t, err)

		svc := &MockUserService{
			UpdateUserFn: func(ctx context.Context, userID uuid.UUID, input service.UpdateUserInput) (*domain.User, error) {
				require.NotNil(t, input.Name)
				assert.Equal(t, "Ada King", *input.Name)
				assert.Nil(t, input.Email)
				return expected, nil
			},
		}
		handler := NewUserHandler(svc)

		body := bytes.NewBufferString(`{"name":"Ada King"}`)
		req := httptest.NewRequest(http.MethodPut, "/users/"+expected.ID.String(), body)
		req = withURLParam(t, req, "id", expected.ID.String())
		rec := performRequest(handler.UpdateUser, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects an empty update", func(t *testing.T) {
		t.Parallel()

		handler := NewUserHandler(&MockUserService{})

		id := uuid.New()
		req := httptest.NewRequest(http.MethodPut, "/users/"+id.String(), bytes.NewBufferString(`{}`))
		req = withURLParam(t, req, "id", id.String())
		rec := performRequest(handler.UpdateUser, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Parallel()

	t.Run("confirms the deletion", func(t *testing.T) {
		t.Parallel()

		existing, err := domain.NewUser("Ada Lovelace", "ada@example.com")
		require.NoError(t, err)

		svc := &MockUserService{
			DeleteUserFn: func(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
				return existing, nil
			},
		}
		handler := NewUserHandler(svc)

		req := httptest.NewRequest(http.MethodDelete, "/users/"+existing.ID.String(), nil)
		req = withURLParam(t, req, "id", existing.ID.String())
		rec := performRequest(handler.DeleteUser, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "User deleted successfully", resp.Message)
	})

	t.Run("maps missing user to 404", func(t *testing.T) {
		t.Parallel()

		svc := &MockUserService{
			DeleteUserFn: func(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
				return nil, service.ErrUserNotFound
			},
		}
		handler := NewUserHandler(svc)

		id := uuid.New()
		req := httptest.NewRequest(http.MethodDelete, "/users/"+id.String(), nil)
		req = withURLParam(t, req, "id", id.String())
		rec := performRequest(handler.DeleteUser, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
