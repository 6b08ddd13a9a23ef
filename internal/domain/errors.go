package domain

import (
	"fmt"
	"net/http"

	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

// Codes for the auth-specific error kinds. The generic kinds reuse the
// pkg/errors codes.
const (
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
)

// Each sentinel wraps the generic kind it belongs to, so errors.Is matches
// both ErrDuplicateIdentity and apperrors.ErrAlreadyExists.
var (
	ErrDuplicateIdentity  = fmt.Errorf("duplicate identity: %w", apperrors.ErrAlreadyExists)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("account inactive: %w", apperrors.ErrForbidden)
	ErrUnauthenticated    = fmt.Errorf("unauthenticated: %w", apperrors.ErrUnauthorized)
	ErrNotOwner           = fmt.Errorf("not the owner: %w", apperrors.ErrForbidden)
)

// DuplicateIdentity reports that the email or the phone is already taken.
// The message does not say which.
func DuplicateIdentity() *apperrors.AppError {
	return apperrors.New(http.StatusConflict, CodeDuplicateIdentity,
		"an account with this email or phone already exists", ErrDuplicateIdentity)
}

// InvalidCredentials covers both an unknown email and a wrong password.
func InvalidCredentials() *apperrors.AppError {
	return apperrors.New(http.StatusUnauthorized, CodeInvalidCredentials,
		"invalid email or password", ErrInvalidCredentials)
}

// AccountInactive is returned at login for deactivated or suspended accounts.
func AccountInactive() *apperrors.AppError {
	return apperrors.New(http.StatusForbidden, CodeAccountInactive,
		"account is inactive or suspended", ErrAccountInactive)
}

// Unauthenticated is the single outward form of every session rejection.
func Unauthenticated() *apperrors.AppError {
	return apperrors.New(http.StatusUnauthorized, apperrors.CodeUnauthorized,
		"authentication required", ErrUnauthenticated)
}

// NotOwner is returned when a principal mutates a resource it does not own.
func NotOwner() *apperrors.AppError {
	return apperrors.New(http.StatusForbidden, apperrors.CodeForbidden,
		"You are not authorized to perform this action", ErrNotOwner)
}

// PropertyNotFound is returned for absent properties and for hidden ones
// read by anyone but their owner.
func PropertyNotFound() *apperrors.AppError {
	return apperrors.New(http.StatusNotFound, apperrors.CodeNotFound,
		"Property not found", apperrors.ErrNotFound)
}
