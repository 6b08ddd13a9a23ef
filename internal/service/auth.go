package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/propconnect/propconnect/internal/auth"
	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/repository"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/validator"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(subjectID, role string) (string, error)
}

// UserEvents publishes user lifecycle events.
type UserEvents interface {
	PublishUserRegistered(ctx context.Context, u *domain.User) error
}

// AuthService registers and logs in users and manages account status.
type AuthService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	tokens TokenIssuer
	events UserEvents
	tasks  *DetachedTasks
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an auth service. events may be nil.
func NewAuthService(
	users repository.UserRepository,
	hasher *auth.PasswordHasher,
	tokens TokenIssuer,
	events UserEvents,
	tasks *DetachedTasks,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: events,
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterInput holds the parameters for a new account.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	FullName string
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// SuperAdminInput describes the bootstrap superadmin account.
type SuperAdminInput struct {
	Email    string
	Phone    string
	Password string
	FullName string
}

// Register creates an account with role user and returns it with a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	phone := domain.NormalizePhone(input.Phone)
	fullName := validator.Sanitize(input.FullName)

	if err := validateRegistration(email, phone, input.Password, fullName); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmailOrPhone(ctx, email, phone)
	switch {
	case err == nil && existing != nil:
		return nil, domain.DuplicateIdentity()
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("check existing identity: %w", err)
	}

	user, err := s.createUser(ctx, email, phone, input.Password, fullName, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.events != nil {
		s.tasks.Go(ctx, "publish_user_registered", func(ctx context.Context) error {
			return s.events.PublishUserRegistered(ctx, user)
		})
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with a token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		auth.RecordLogin(auth.LoginInvalidCredentials)
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.VerifyDummy(input.Password)
			auth.RecordLogin(auth.LoginInvalidCredentials)
			return nil, domain.InvalidCredentials()
		}
		auth.RecordLogin(auth.LoginError)
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if !user.CanAuthenticate() {
		auth.RecordLogin(auth.LoginAccountInactive)
		return nil, domain.AccountInactive()
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		auth.RecordLogin(auth.LoginInvalidCredentials)
		return nil, domain.InvalidCredentials()
	}

	loginAt := s.now().UTC()
	userID := user.ID
	s.tasks.Go(ctx, "update_last_login", func(ctx context.Context) error {
		return s.users.UpdateLastLogin(ctx, userID, loginAt)
	})

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		auth.RecordLogin(auth.LoginError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	auth.RecordLogin(auth.LoginSuccess)
	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser returns the live record of an authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// UpdateAccountStatus activates, deactivates, suspends or reinstates a
// user on behalf of a superadmin actor.
func (s *AuthService) UpdateAccountStatus(ctx context.Context, actor *domain.Principal, userID string, status domain.AccountStatus) (*domain.User, error) {
	if !actor.IsSuperAdmin() {
		return nil, apperrors.Forbidden("insufficient permissions")
	}
	if status.IsEmpty() {
		return nil, apperrors.InvalidInput("is_active or is_suspended is required")
	}
	if actor.UserID == userID {
		return nil, apperrors.Forbidden("you cannot change your own account status")
	}

	user, err := s.users.UpdateStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("update account status: %w", err)
	}

	s.logger.InfoContext(ctx, "account status updated",
		slog.String("actor_id", actor.UserID),
		slog.String("user_id", user.ID),
		slog.Bool("is_active", user.IsActive),
		slog.Bool("is_suspended", user.IsSuspended),
	)
	return user, nil
}

// EnsureSuperAdmin creates the bootstrap superadmin unless one already
// exists. It reports whether an account was created.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, input SuperAdminInput) (bool, error) {
	exists, err := s.users.ExistsWithRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return false, fmt.Errorf("check superadmin: %w", err)
	}
	if exists {
		s.logger.DebugContext(ctx, "superadmin already present")
		return false, nil
	}

	email := domain.NormalizeEmail(input.Email)
	phone := domain.NormalizePhone(input.Phone)
	fullName := validator.Sanitize(input.FullName)
	if err := validateRegistration(email, phone, input.Password, fullName); err != nil {
		return false, fmt.Errorf("superadmin settings: %w", err)
	}

	user, err := s.createUser(ctx, email, phone, input.Password, fullName, domain.RoleSuperAdmin)
	if err != nil {
		return false, fmt.Errorf("create superadmin: %w", err)
	}

	s.logger.InfoContext(ctx, "superadmin created", slog.String("user_id", user.ID))
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, email, phone, password, fullName, role string) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.InvalidInput("password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		IsSuspended:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func validateRegistration(email, phone, password, fullName string) error {
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.InvalidInput("a valid email is required")
	}
	if !domain.IsValidPhone(phone) {
		return apperrors.InvalidInput("phone must be +216 followed by 8 digits")
	}
	if n := utf8.RuneCountInString(password); n < domain.MinPasswordLength || n > domain.MaxPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be between %d and %d characters",
			domain.MinPasswordLength, domain.MaxPasswordLength))
	}
	if n := utf8.RuneCountInString(fullName); n < domain.MinFullNameLength || n > domain.MaxFullNameLength {
		return apperrors.InvalidInput(fmt.Sprintf("full name must be between %d and %d characters",
			domain.MinFullNameLength, domain.MaxFullNameLength))
	}
	return nil
}
