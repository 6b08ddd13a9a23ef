package repository

import (
	"context"
	"time"

	"github.com/propconnect/propconnect/internal/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a new user. A taken email or phone yields
	// domain.ErrDuplicateIdentity.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByEmailOrPhone returns any user holding either identifier.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error)

	// UpdateLastLogin stamps the user's last successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// UpdateStatus applies a partial status change and returns the result.
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.User, error)

	// ExistsWithRole reports whether any user holds role.
	ExistsWithRole(ctx context.Context, role string) (bool, error)
}

// PropertyFilter narrows a property listing. Nil fields do not filter.
type PropertyFilter struct {
	OwnerID *string
	Status  *string
	Limit   int
	Offset  int
}

// PropertyRepository persists owned property listings. Returned properties
// carry their owner projection.
type PropertyRepository interface {
	// Create inserts p and refreshes it from the store.
	Create(ctx context.Context, p *domain.Property) error

	// GetByID retrieves a property by id.
	GetByID(ctx context.Context, id string) (*domain.Property, error)

	// List returns a page of properties, newest first, with the total count.
	List(ctx context.Context, filter PropertyFilter) ([]domain.Property, int, error)

	// Update persists the mutable fields of p. The owner never changes.
	Update(ctx context.Context, p *domain.Property) error

	// Delete removes a property by id.
	Delete(ctx context.Context, id string) error
}

// ListingCache caches public listing pages. Implementations report misses
// with a nil page and nil error.
type ListingCache interface {
	Get(ctx context.Context, page, limit int) (*ListingPage, error)
	Set(ctx context.Context, page, limit int, value *ListingPage) error
	Invalidate(ctx context.Context) error
}

// ListingPage is the cached form of one page of public listings.
type ListingPage struct {
	Properties []domain.Property `json:"properties"`
	Total      int               `json:"total"`
}
