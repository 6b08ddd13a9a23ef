package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/service"
	"github.com/propconnect/propconnect/pkg/httputil"
	"github.com/propconnect/propconnect/pkg/middleware"
	"github.com/propconnect/propconnect/pkg/validator"
)

// AdminHandler serves superadmin account management.
type AdminHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// UpdateStatusRequest is the JSON request body for an account status change.
type UpdateStatusRequest struct {
	IsActive    *bool `json:"is_active"`
	IsSuspended *bool `json:"is_suspended"`
}

// UserStatusResponse exposes the status flags the user resource hides.
type UserStatusResponse struct {
	*domain.User
	IsActive    bool `json:"is_active"`
	IsSuspended bool `json:"is_suspended"`
}

// UpdateStatus handles PATCH /api/v1/admin/users/{id}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	actor := &domain.Principal{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
	user, err := h.service.UpdateAccountStatus(r.Context(), actor, id.String(),
		domain.AccountStatus{IsActive: req.IsActive, IsSuspended: req.IsSuspended},
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, UserStatusResponse{
		User:        user,
		IsActive:    user.IsActive,
		IsSuspended: user.IsSuspended,
	})
}
