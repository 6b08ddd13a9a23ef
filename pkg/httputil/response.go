package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/logger"
	"github.com/propconnect/propconnect/pkg/pagination"
	"github.com/propconnect/propconnect/pkg/validator"
)

// Response is the JSON envelope for every API reply.
type Response struct {
	Data  any              `json:"data,omitempty"`
	Meta  *pagination.Meta `json:"meta,omitempty"`
	Error *ErrorResponse   `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

const codeValidation = "VALIDATION_ERROR"

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps data in the envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WritePage writes a paginated listing with its meta block.
func WritePage[T any](w http.ResponseWriter, page pagination.Page[T]) {
	WriteJSON(w, http.StatusOK, Response{Data: page.Data, Meta: &page.Meta})
}

// WriteError maps err onto the error envelope. AppErrors carry their own
// status and code; validation failures report per-field messages; anything
// unrecognised becomes a logged 500 with a generic message. The
// request-scoped logger from the RequestLogger middleware is preferred over
// fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      codeValidation,
			Message:   "request validation failed",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		}})
		return
	}

	status, code, message := http.StatusInternalServerError, apperrors.CodeInternal, "an internal error occurred"

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		status, code, message = appErr.Status, appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, apperrors.CodeNotFound, "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		status, code, message = http.StatusConflict, apperrors.CodeAlreadyExists, "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, apperrors.CodeInvalidInput, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, apperrors.CodeUnauthorized, "authentication required"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code, message = http.StatusForbidden, apperrors.CodeForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrRateLimited):
		status, code, message = http.StatusTooManyRequests, apperrors.CodeRateLimited, "too many requests"
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

// WriteDecodeError reports a request body that could not be decoded or
// validated.
func WriteDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteError(w, r, err, nil)
		return
	}
	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{
			Code:      apperrors.CodeInvalidInput,
			Message:   "malformed request body",
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

// ParseUUID parses a path parameter. On failure it writes a 400 and returns
// false so the caller can return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid UUID: " + param,
			},
		})
		return uuid.Nil, false
	}
	return id, true
}
