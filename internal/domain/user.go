package domain

import (
	"regexp"
	"strings"
	"time"
)

// Credential and profile limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 55
	MinFullNameLength = 3
	MaxFullNameLength = 100
)

// phonePattern accepts Tunisian numbers in international form.
var phonePattern = regexp.MustCompile(`^\+216\d{8}$`)

// IsValidPhone reports whether phone is +216 followed by eight digits.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// User is a registered principal. PasswordHash never leaves the service.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"-"`
	IsSuspended  bool       `json:"-"`
	LastLoginAt  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"-"`
}

// CanAuthenticate reports whether the account may log in or hold a session.
func (u *User) CanAuthenticate() bool {
	return u.IsActive && !u.IsSuspended
}

// AccountStatus is a partial update of a user's activation flags. Nil
// fields are left unchanged.
type AccountStatus struct {
	IsActive    *bool `json:"is_active,omitempty"`
	IsSuspended *bool `json:"is_suspended,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (s AccountStatus) IsEmpty() bool {
	return s.IsActive == nil && s.IsSuspended == nil
}

// NormalizeEmail trims and lower-cases an email address for storage and
// lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone trims a phone number.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}
