package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// UpdateUserInput carries the optional fields of a partial user update.
// Nil fields are left unchanged. The API layer guarantees at least one
// field is present before the input reaches the service.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// UserService provides user-related operations.
type UserService interface {
	// CreateUser creates a new user with the given name and email.
	// Returns ErrEmailExists if the email is already in use.
	CreateUser(ctx context.Context, name, email string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns a page of users matching the query.
	ListUsers(ctx context.Context, query store.UserListQuery) (store.Page[*domain.User], error)

	// UpdateUser applies a partial update to a user.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// if the email is being changed to one already in use.
	UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)

	// DeleteUser deletes a user by their ID and returns the removed user.
	// Returns ErrUserNotFound if the user does not exist.
	DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	userStore store.UserStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userStore store.UserStore, db *sql.DB, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		db:        db,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// CreateUser creates a new user, rejecting emails already in use.
// The uniqueness pre-check and the insert run in one transaction; the
// unique index backs the check up against concurrent writers.
func (s *userServiceImpl) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	user, err := domain.NewUser(name, email)
	if err != nil {
		s.logger.Warn("invalid user data",
			"error", err)
		return nil, newServiceError("create_user", "invalid user data", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		if _, err := txStore.GetByEmail(ctx, email); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, store.ErrUserNotFound) {
			return err
		}

		return txStore.Create(ctx, user)
	})

	if err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to create user with existing email")
			return nil, ErrEmailExists
		}
		s.logger.Error("failed to create user",
			"error", err)
		return nil, newServiceError("create_user", "failed to save user", err)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID)
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("user not found",
				"user_id", userID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, newServiceError("get_user", "failed to retrieve user", err)
	}

	return user, nil
}

// ListUsers returns a page of users matching the query.
func (s *userServiceImpl) ListUsers(ctx context.Context, query store.UserListQuery) (store.Page[*domain.User], error) {
	page, err := s.userStore.List(ctx, query)
	if err != nil {
		s.logger.Error("failed to list users",
			"error", err)
		return store.Page[*domain.User]{}, newServiceError("list_users", "failed to list users", err)
	}

	return page, nil
}

// UpdateUser applies a partial update, re-checking email uniqueness when
// the email is being changed.
func (s *userServiceImpl) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if input.Email != nil && *input.Email != user.Email {
			if _, err := txStore.GetByEmail(ctx, *input.Email); err == nil {
				return ErrEmailExists
			} else if !errors.Is(err, store.ErrUserNotFound) {
				return err
			}
			user.Email = *input.Email
		}
		if input.Name != nil {
			user.Name = *input.Name
		}

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}

		updated = user
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			s.logger.Debug("attempted to update non-existent user",
				"user_id", userID)
			return nil, ErrUserNotFound
		case errors.Is(err, ErrEmailExists), errors.Is(err, store.ErrEmailExists):
			s.logger.Debug("attempted to update to an existing email",
				"user_id", userID)
			return nil, ErrEmailExists
		}
		s.logger.Error("failed to update user",
			"error", err,
			"user_id", userID)
		return nil, newServiceError("update_user", "failed to update user", err)
	}

	s.logger.Info("user updated successfully",
		"user_id", userID)
	return updated, nil
}

// DeleteUser deletes a user by their ID and returns the removed user.
func (s *userServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var deleted *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.userStore.WithTx(tx).Delete(ctx, userID)
		if err != nil {
			return err
		}
		deleted = user
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("attempted to delete non-existent user",
				"user_id", userID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("failed to delete user",
			"error", err,
			"user_id", userID)
		return nil, newServiceError("delete_user", "failed to delete user", err)
	}

	s.logger.Info("user deleted successfully",
		"user_id", userID)
	return deleted, nil
}
