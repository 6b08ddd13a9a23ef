package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/pkg/database"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

const userColumns = `id, email, phone, password_hash, full_name, role, is_active, is_suspended, last_login_at, created_at, updated_at`

const (
	qInsertUser = `
		INSERT INTO users (id, email, phone, password_hash, full_name, role, is_active, is_suspended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	qUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	qUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	qUserByEmailOrPhone = `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR phone = $2 LIMIT 1`

	qUpdateLastLogin = `UPDATE users SET last_login_at = $1 WHERE id = $2`

	qUpdateStatus = `
		UPDATE users
		SET is_active = COALESCE($1, is_active),
		    is_suspended = COALESCE($2, is_suspended),
		    updated_at = $3
		WHERE id = $4
		RETURNING ` + userColumns

	qUserRoleExists = `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`
)

// UserRepository implements repository.UserRepository on PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a PostgreSQL-backed credential store.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A unique violation on email or phone is
// reported as a duplicate identity without saying which.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateUser", qInsertUser)
	defer func() { end(spanErr(err)) }()

	_, err = r.db.Exec(ctx, qInsertUser,
		u.ID,
		u.Email,
		u.Phone,
		u.PasswordHash,
		u.FullName,
		u.Role,
		u.IsActive,
		u.IsSuspended,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.DuplicateIdentity()
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "GetUserByID", qUserByID)
	defer func() { end(spanErr(err)) }()

	return scanUser(r.db.QueryRow(ctx, qUserByID, id))
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "GetUserByEmail", qUserByEmail)
	defer func() { end(spanErr(err)) }()

	return scanUser(r.db.QueryRow(ctx, qUserByEmail, email))
}

// FindByEmailOrPhone returns any user holding either identifier.
func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "FindUserByEmailOrPhone", qUserByEmailOrPhone)
	defer func() { end(spanErr(err)) }()

	return scanUser(r.db.QueryRow(ctx, qUserByEmailOrPhone, email, phone))
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateUserLastLogin", qUpdateLastLogin)
	defer func() { end(spanErr(err)) }()

	ct, err := r.db.Exec(ctx, qUpdateLastLogin, at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

// UpdateStatus applies the non-nil flags of status and returns the updated
// user.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateUserStatus", qUpdateStatus)
	defer func() { end(spanErr(err)) }()

	return scanUser(r.db.QueryRow(ctx, qUpdateStatus,
		status.IsActive,
		status.IsSuspended,
		time.Now().UTC(),
		id,
	))
}

// ExistsWithRole reports whether any user holds role.
func (r *UserRepository) ExistsWithRole(ctx context.Context, role string) (exists bool, err error) {
	ctx, end := database.TraceQuery(ctx, "UserRoleExists", qUserRoleExists)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, qUserRoleExists, role).Scan(&exists); err != nil {
		return false, fmt.Errorf("check role %s: %w", role, err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.IsSuspended,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
