package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/propconnect/propconnect/internal/domain"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/logger"
	"github.com/propconnect/propconnect/pkg/middleware"
)

// TokenVerifier verifies a raw session token.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// UserFinder loads the live account behind a token.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionGuard turns a raw token into a Principal. Every rejection looks
// the same to the caller; the reason is only logged and counted.
type SessionGuard struct {
	tokens TokenVerifier
	users  UserFinder
	logger *slog.Logger
}

// NewSessionGuard creates a session guard.
func NewSessionGuard(tokens TokenVerifier, users UserFinder, logger *slog.Logger) *SessionGuard {
	return &SessionGuard{tokens: tokens, users: users, logger: logger}
}

// Authenticate resolves rawToken to the principal it was issued for. Store
// failures other than not-found are returned as internal errors.
func (g *SessionGuard) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	if rawToken == "" {
		return nil, g.reject(ctx, RejectNoToken, "")
	}

	claims, err := g.tokens.Verify(rawToken)
	if err != nil {
		return nil, g.reject(ctx, RejectInvalidToken, "")
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, g.reject(ctx, RejectAccountMissing, claims.Subject)
		}
		return nil, fmt.Errorf("resolve session principal: %w", err)
	}
	if !user.CanAuthenticate() {
		return nil, g.reject(ctx, RejectAccountInactive, user.ID)
	}
	if !domain.IsValidRole(user.Role) {
		return nil, g.reject(ctx, RejectUnknownRole, user.ID)
	}

	return &domain.Principal{UserID: user.ID, Role: user.Role}, nil
}

// Validator adapts the guard to the HTTP auth middleware.
func (g *SessionGuard) Validator() middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Claims, error) {
		p, err := g.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: p.UserID, Role: p.Role}, nil
	}
}

func (g *SessionGuard) reject(ctx context.Context, reason, subject string) error {
	recordRejection(reason)
	attrs := []any{slog.String("reason", reason)}
	if subject != "" {
		attrs = append(attrs, slog.String("subject", subject))
	}
	logger.WithContext(ctx, g.logger).DebugContext(ctx, "session rejected", attrs...)
	return domain.Unauthenticated()
}
