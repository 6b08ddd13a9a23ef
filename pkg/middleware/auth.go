package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/httputil"
	"github.com/propconnect/propconnect/pkg/logger"
)

// AuthCookieName is the cookie that carries the session token.
const AuthCookieName = "auth_token"

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	roleKey   contextKeyType = "role"
)

// Claims is the principal a TokenValidator resolves a token to.
type Claims struct {
	UserID string
	Role   string
}

// TokenValidator resolves a raw token to a principal. An error in the
// ErrUnauthorized family rejects the request with 401; any other error is
// treated as an internal failure. An empty token must be rejected by the
// validator itself.
type TokenValidator func(ctx context.Context, token string) (*Claims, error)

// TokenFromRequest returns the session token from the auth cookie, falling
// back to an "Authorization: Bearer" header. It returns "" when neither is
// present.
func TokenFromRequest(r *http.Request) string {
	if token := cookieToken(r); token != "" {
		return token
	}
	return bearerToken(r)
}

func cookieToken(r *http.Request) string {
	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value
	}
	return ""
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// resolve validates the request's token. A rejected cookie token is retried
// with the Bearer header, so a stale cookie does not mask a valid header.
func resolve(r *http.Request, validate TokenValidator) (*Claims, error) {
	claims, err := validate(r.Context(), TokenFromRequest(r))
	if err == nil || apperrors.HTTPStatus(err) != http.StatusUnauthorized {
		return claims, err
	}
	cookie, bearer := cookieToken(r), bearerToken(r)
	if cookie == "" || bearer == "" || bearer == cookie {
		return claims, err
	}
	return validate(r.Context(), bearer)
}

// Auth rejects requests that do not carry a valid session token and
// attaches the resolved principal to the request context otherwise.
func Auth(validate TokenValidator, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := resolve(r, validate)
			if err != nil {
				httputil.WriteError(w, r, err, fallback)
				return
			}
			if claims == nil || claims.UserID == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), fallback)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches a principal when the request carries a valid token
// and lets it through anonymously when it carries none or a rejected one.
// Internal validator failures still answer 500.
func OptionalAuth(validate TokenValidator, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TokenFromRequest(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := resolve(r, validate)
			switch {
			case err == nil && claims != nil && claims.UserID != "":
				r = r.WithContext(withPrincipal(r.Context(), claims))
			case err != nil && apperrors.HTTPStatus(err) != http.StatusUnauthorized:
				httputil.WriteError(w, r, err, fallback)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 403 unless the principal holds one of roles. It must
// run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[RoleFromContext(r.Context())]; !ok {
				httputil.WriteError(w, r, apperrors.Forbidden("insufficient permissions"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withPrincipal stores the principal and re-scopes the request logger so
// later log lines carry user_id.
func withPrincipal(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, c.UserID)
	ctx = context.WithValue(ctx, roleKey, c.Role)
	ctx = logger.WithUserID(ctx, c.UserID)
	if l := logger.FromContext(ctx); l != slog.Default() {
		ctx = logger.NewContext(ctx, l.With(slog.String("user_id", c.UserID)))
	}
	return ctx
}

// WithPrincipal returns ctx carrying userID and role, as Auth would.
func WithPrincipal(ctx context.Context, userID, role string) context.Context {
	return withPrincipal(ctx, &Claims{UserID: userID, Role: role})
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RoleFromContext returns the authenticated role, or "".
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
