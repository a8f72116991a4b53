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

	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/platform/logger"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// userSearchFields are the logical fields a user search term matches.
var userSearchFields = []string{"name", "email"}

// userColumns maps the logical user field names accepted in filters and
// sorts to their SQL columns.
var userColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserStore.Create
// Returns store.ErrEmailExists if the email is already taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO users (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already exists during user creation",
				slog.String("user_id", user.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("user_id", id.String()))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, MapError(err)
	}

	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
// The match is exact (case-sensitive). Returns store.ErrUserNotFound if
// the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &user, nil
}

// List implements store.UserStore.List
// It fetches the page rows and the total count concurrently, then attaches
// a task summary list to each returned user.
func (s *PostgresUserStore) List(ctx context.Context, q store.UserListQuery) (store.Page[*domain.User], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var filters []store.Filter
	if q.Search != "" {
		filters = append(filters, store.SearchFilter{Term: q.Search, Fields: userSearchFields})
	}

	dataBuilder := &clauseBuilder{}
	where, err := buildWhere(dataBuilder, filters, userColumns)
	if err != nil {
		return store.Page[*domain.User]{}, store.NewStoreError("user", "list", "invalid filter", err)
	}
	orderBy, err := buildOrderBy(q.Sort, userColumns)
	if err != nil {
		return store.Page[*domain.User]{}, store.NewStoreError("user", "list", "invalid sort", err)
	}

	dataQuery := `SELECT id, name, email, created_at, updated_at FROM users` +
		where + orderBy + buildLimitOffset(dataBuilder, q.Page, q.Limit)

	countBuilder := &clauseBuilder{}
	countWhere, err := buildWhere(countBuilder, filters, userColumns)
	if err != nil {
		return store.Page[*domain.User]{}, store.NewStoreError("user", "list", "invalid filter", err)
	}
	countQuery := `SELECT COUNT(*) FROM users` + countWhere

	var (
		users []*domain.User
		total int
	)

	fetchRows := func(ctx context.Context) error {
		var err error
		users, err = s.queryUsers(ctx, dataQuery, dataBuilder.args...)
		return err
	}
	fetchTotal := func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, countQuery, countBuilder.args...).Scan(&total)
	}

	if err := runJointly(ctx, s.db, fetchRows, fetchTotal); err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return store.Page[*domain.User]{}, MapError(err)
	}

	if err := s.attachTaskSummaries(ctx, users); err != nil {
		log.Error("failed to attach task summaries",
			slog.String("error", err.Error()))
		return store.Page[*domain.User]{}, MapError(err)
	}

	log.Debug("listed users",
		slog.Int("count", len(users)),
		slog.Int("total", total))
	return store.NewPage(users, total, q.Page, q.Limit), nil
}

// Update implements store.UserStore.Update
// Returns store.ErrUserNotFound if the user does not exist and
// store.ErrEmailExists if updating to an email already in use.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = $1, email = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already exists during user update",
				slog.String("user_id", user.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}

		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user updated successfully",
		slog.String("user_id", user.ID.String()))
	return nil
}

// Delete implements store.UserStore.Delete
// It returns the removed user with their task summaries; the tasks
// themselves are removed by the ON DELETE CASCADE constraint.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.attachTaskSummaries(ctx, []*domain.User{user}); err != nil {
		return nil, MapError(err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return nil, err
	}

	log.Info("user deleted successfully",
		slog.String("user_id", id.String()),
		slog.Int("cascaded_tasks", len(user.Tasks)))
	return user, nil
}

// Exists implements store.UserStore.Exists
func (s *PostgresUserStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// queryUsers runs a user SELECT and scans the rows.
func (s *PostgresUserStore) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// attachTaskSummaries loads the task summaries for the given users in a
// single query and distributes them by owner.
func (s *PostgresUserStore) attachTaskSummaries(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.User, len(users))
	placeholders := make([]string, 0, len(users))
	args := make([]any, 0, len(users))
	for i, user := range users {
		user.Tasks = []domain.TaskSummary{}
		byID[user.ID] = user
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, user.ID)
	}

	query := `
		SELECT id, title, status, user_id, created_at
		FROM tasks
		WHERE user_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for rows.Next() {
		var (
			summary domain.TaskSummary
			status  string
			ownerID uuid.UUID
		)
		if err := rows.Scan(&summary.ID, &summary.Title, &status, &ownerID, &summary.CreatedAt); err != nil {
			return err
		}
		summary.Status = domain.TaskStatus(status)
		if owner, ok := byID[ownerID]; ok {
			owner.Tasks = append(owner.Tasks, summary)
		}
	}

	return rows.Err()
}
