package http

import (
	"log/slog"
	"net/http"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/service"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/httputil"
	"github.com/propconnect/propconnect/pkg/middleware"
	"github.com/propconnect/propconnect/pkg/validator"
)

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	cookie  CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,tnphone"`
	Password string `json:"password" validate:"required,min=8,max=55"`
	FullName string `json:"full_name" validate:"required,min=3,max=100"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// AuthResponse is returned by register and login. The token is also set
// as the auth cookie.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	setAuthCookie(w, h.cookie, result.Token)
	httputil.WriteData(w, http.StatusCreated, AuthResponse{User: result.User, AccessToken: result.Token})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	setAuthCookie(w, h.cookie, result.Token)
	httputil.WriteData(w, http.StatusOK, AuthResponse{User: result.User, AccessToken: result.Token})
}

// Logout handles POST /api/v1/auth/logout. Tokens are not revoked; the
// cookie is cleared so the browser stops sending it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, h.cookie)
	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}
