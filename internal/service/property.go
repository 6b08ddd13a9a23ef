package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/propconnect/propconnect/internal/auth"
	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/repository"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/logger"
	"github.com/propconnect/propconnect/pkg/pagination"
	"github.com/propconnect/propconnect/pkg/validator"
)

// PropertyEvents publishes property lifecycle events.
type PropertyEvents interface {
	PublishPropertyCreated(ctx context.Context, p *domain.Property) error
	PublishPropertyUpdated(ctx context.Context, p *domain.Property) error
	PublishPropertyDeleted(ctx context.Context, p *domain.Property) error
}

// PropertyService implements owned-resource CRUD for property listings.
type PropertyService struct {
	repo   repository.PropertyRepository
	cache  repository.ListingCache
	events PropertyEvents
	tasks  *DetachedTasks
	logger *slog.Logger
	now    func() time.Time
}

// NewPropertyService creates a property service. cache and events may be
// nil.
func NewPropertyService(
	repo repository.PropertyRepository,
	cache repository.ListingCache,
	events PropertyEvents,
	tasks *DetachedTasks,
	logger *slog.Logger,
) *PropertyService {
	return &PropertyService{
		repo:   repo,
		cache:  cache,
		events: events,
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// CreatePropertyInput holds the parameters for a new listing.
type CreatePropertyInput struct {
	Title            string
	Description      string
	PropertyType     string
	Category         string
	Address          string
	City             string
	Region           string
	Latitude         *float64
	Longitude        *float64
	Price            float64
	Currency         string
	PricePeriod      string
	IsNegotiable     bool
	SizeSqm          float64
	Bedrooms         *int
	Bathrooms        *int
	AvailabilityDate *time.Time
	ListedBy         string
}

// UpdatePropertyInput is a partial update. Nil fields are left unchanged.
type UpdatePropertyInput struct {
	Title            *string
	Description      *string
	PropertyType     *string
	Category         *string
	Address          *string
	City             *string
	Region           *string
	Latitude         *float64
	Longitude        *float64
	Price            *float64
	Currency         *string
	PricePeriod      *string
	IsNegotiable     *bool
	SizeSqm          *float64
	Bedrooms         *int
	Bathrooms        *int
	AvailabilityDate *time.Time
	Status           *string
	ListedBy         *string
}

// Create lists a new property owned by ownerID.
func (s *PropertyService) Create(ctx context.Context, ownerID string, input CreatePropertyInput) (*domain.Property, error) {
	if ownerID == "" {
		return nil, domain.Unauthenticated()
	}

	now := s.now().UTC()
	p := &domain.Property{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Title:            validator.Sanitize(input.Title),
		Description:      validator.Sanitize(input.Description),
		PropertyType:     input.PropertyType,
		Category:         input.Category,
		Address:          strings.TrimSpace(input.Address),
		City:             strings.TrimSpace(input.City),
		Region:           strings.TrimSpace(input.Region),
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		Price:            input.Price,
		Currency:         normalizeCurrency(input.Currency),
		PricePeriod:      input.PricePeriod,
		IsNegotiable:     input.IsNegotiable,
		SizeSqm:          input.SizeSqm,
		Bedrooms:         input.Bedrooms,
		Bathrooms:        input.Bathrooms,
		AvailabilityDate: input.AvailabilityDate,
		Status:           domain.PropertyStatusAvailable,
		ListedBy:         input.ListedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, "create property")
	}

	s.invalidateListings(ctx)
	s.publish(ctx, "publish_property_created", p, s.eventsCreated)

	s.logger.InfoContext(ctx, "property created",
		slog.String("property_id", p.ID),
		slog.String("owner_id", ownerID),
	)
	return p, nil
}

// Get returns a property. Hidden properties are reported as not found to
// anyone but their owner; viewerID is empty for anonymous readers.
func (s *PropertyService) Get(ctx context.Context, id, viewerID string) (*domain.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(viewerID) {
		return nil, domain.PropertyNotFound()
	}
	return p, nil
}

// List returns a page of available properties, newest first. Pages are
// served from the listing cache when one is configured.
func (s *PropertyService) List(ctx context.Context, params pagination.Params) (pagination.Page[domain.Property], error) {
	if cached := s.cachedPage(ctx, params); cached != nil {
		return pagination.NewPage(cached.Properties, cached.Total, params), nil
	}

	status := domain.PropertyStatusAvailable
	properties, total, err := s.repo.List(ctx, repository.PropertyFilter{
		Status: &status,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return pagination.Page[domain.Property]{}, apperrors.Wrap(err, "list properties")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, params.Page, params.Limit, &repository.ListingPage{Properties: properties, Total: total}); err != nil {
			s.cacheError(ctx, "set", err)
		}
	}
	return pagination.NewPage(properties, total, params), nil
}

// ListByOwner returns the owner's properties in every status.
func (s *PropertyService) ListByOwner(ctx context.Context, ownerID string, params pagination.Params) (pagination.Page[domain.Property], error) {
	properties, total, err := s.repo.List(ctx, repository.PropertyFilter{
		OwnerID: &ownerID,
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
	if err != nil {
		return pagination.Page[domain.Property]{}, apperrors.Wrap(err, "list owner properties")
	}
	return pagination.NewPage(properties, total, params), nil
}

// Update applies a partial update on behalf of principalID, who must own
// the property.
func (s *PropertyService) Update(ctx context.Context, principalID, id string, input UpdatePropertyInput) (*domain.Property, error) {
	p, err := s.loadOwned(ctx, principalID, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(p, input)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.PropertyNotFound()
		}
		return nil, apperrors.Wrap(err, "update property")
	}

	s.invalidateListings(ctx)
	s.publish(ctx, "publish_property_updated", p, s.eventsUpdated)

	s.logger.InfoContext(ctx, "property updated", slog.String("property_id", p.ID))
	return p, nil
}

// Delete removes a property on behalf of principalID, who must own it.
func (s *PropertyService) Delete(ctx context.Context, principalID, id string) error {
	p, err := s.loadOwned(ctx, principalID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.PropertyNotFound()
		}
		return apperrors.Wrap(err, "delete property")
	}

	s.invalidateListings(ctx)
	s.publish(ctx, "publish_property_deleted", p, s.eventsDeleted)

	s.logger.InfoContext(ctx, "property deleted", slog.String("property_id", p.ID))
	return nil
}

func (s *PropertyService) load(ctx context.Context, id string) (*domain.Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.PropertyNotFound()
		}
		return nil, apperrors.Wrap(err, "get property")
	}
	return p, nil
}

// loadOwned loads a property for mutation. A hidden property stays
// invisible to non-owners here too, so its existence is not disclosed.
func (s *PropertyService) loadOwned(ctx context.Context, principalID, id string) (*domain.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(principalID) {
		return nil, domain.PropertyNotFound()
	}
	if err := auth.AssertOwner(p.OwnerID, principalID); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "ownership check failed",
			slog.String("property_id", p.ID),
			slog.String("principal_id", principalID),
		)
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) cachedPage(ctx context.Context, params pagination.Params) *repository.ListingPage {
	if s.cache == nil {
		return nil
	}
	page, err := s.cache.Get(ctx, params.Page, params.Limit)
	if err != nil {
		s.cacheError(ctx, "get", err)
		return nil
	}
	return page
}

func (s *PropertyService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cacheError(ctx, "invalidate", err)
	}
}

func (s *PropertyService) cacheError(ctx context.Context, op string, err error) {
	s.logger.WarnContext(ctx, "listing cache unavailable, using database",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

func (s *PropertyService) publish(ctx context.Context, task string, p *domain.Property, fn func(context.Context, *domain.Property) error) {
	if s.events == nil {
		return
	}
	snapshot := *p
	s.tasks.Go(ctx, task, func(ctx context.Context) error {
		return fn(ctx, &snapshot)
	})
}

func (s *PropertyService) eventsCreated(ctx context.Context, p *domain.Property) error {
	return s.events.PublishPropertyCreated(ctx, p)
}

func (s *PropertyService) eventsUpdated(ctx context.Context, p *domain.Property) error {
	return s.events.PublishPropertyUpdated(ctx, p)
}

func (s *PropertyService) eventsDeleted(ctx context.Context, p *domain.Property) error {
	return s.events.PublishPropertyDeleted(ctx, p)
}

func applyUpdate(p *domain.Property, in UpdatePropertyInput) {
	if in.Title != nil {
		p.Title = validator.Sanitize(*in.Title)
	}
	if in.Description != nil {
		p.Description = validator.Sanitize(*in.Description)
	}
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.Region != nil {
		p.Region = strings.TrimSpace(*in.Region)
	}
	if in.Latitude != nil {
		p.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		p.Longitude = in.Longitude
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = normalizeCurrency(*in.Currency)
	}
	if in.PricePeriod != nil {
		p.PricePeriod = *in.PricePeriod
	}
	if in.IsNegotiable != nil {
		p.IsNegotiable = *in.IsNegotiable
	}
	if in.SizeSqm != nil {
		p.SizeSqm = *in.SizeSqm
	}
	if in.Bedrooms != nil {
		p.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = in.Bathrooms
	}
	if in.AvailabilityDate != nil {
		p.AvailabilityDate = in.AvailabilityDate
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.ListedBy != nil {
		p.ListedBy = *in.ListedBy
	}
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return domain.DefaultCurrency
	}
	return c
}
