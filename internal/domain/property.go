package domain

import (
	"fmt"
	"slices"
	"time"

	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

// Property type constants.
const (
	PropertyTypeResidential = "RESIDENTIAL"
	PropertyTypeCommercial  = "COMMERCIAL"
	PropertyTypeMixed       = "MIXED"
)

// Property category constants.
const (
	CategoryHouse     = "HOUSE"
	CategoryApartment = "APARTMENT"
	CategoryOffice    = "OFFICE"
	CategoryShop      = "SHOP"
	CategoryLand      = "LAND"
)

// Price period constants.
const (
	PricePeriodMonth = "MONTH"
	PricePeriodYear  = "YEAR"
	PricePeriodDay   = "DAY"
)

// Property status constants.
const (
	PropertyStatusAvailable = "AVAILABLE"
	PropertyStatusRented    = "RENTED"
	PropertyStatusHidden    = "HIDDEN"
)

// Listed-by constants.
const (
	ListedByOwner = "OWNER"
	ListedByAgent = "AGENT"
)

const (
	DefaultCurrency      = "TND"
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
)

var (
	propertyTypes    = []string{PropertyTypeResidential, PropertyTypeCommercial, PropertyTypeMixed}
	categories       = []string{CategoryHouse, CategoryApartment, CategoryOffice, CategoryShop, CategoryLand}
	pricePeriods     = []string{PricePeriodMonth, PricePeriodYear, PricePeriodDay}
	propertyStatuses = []string{PropertyStatusAvailable, PropertyStatusRented, PropertyStatusHidden}
	listedBy         = []string{ListedByOwner, ListedByAgent}
)

// Owner is the public projection of the user who listed a property.
type Owner struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// Property is a real-estate listing. OwnerID is fixed at creation.
type Property struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"owner_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	PropertyType     string     `json:"property_type"`
	Category         string     `json:"category"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	Region           string     `json:"region"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	Price            float64    `json:"price"`
	Currency         string     `json:"currency"`
	PricePeriod      string     `json:"price_period"`
	IsNegotiable     bool       `json:"is_negotiable"`
	SizeSqm          float64    `json:"size_sqm"`
	Bedrooms         *int       `json:"bedrooms,omitempty"`
	Bathrooms        *int       `json:"bathrooms,omitempty"`
	AvailabilityDate *time.Time `json:"availability_date,omitempty"`
	Status           string     `json:"status"`
	ListedBy         string     `json:"listed_by"`
	Owner            Owner      `json:"owner"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the property.
func (p *Property) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// VisibleTo reports whether viewerID may read the property. Hidden
// listings are visible only to their owner.
func (p *Property) VisibleTo(viewerID string) bool {
	return p.Status != PropertyStatusHidden || p.IsOwnedBy(viewerID)
}

// Validate checks enum membership, ranges and text lengths.
func (p *Property) Validate() error {
	switch {
	case p.Title == "":
		return apperrors.InvalidInput("title is required")
	case len([]rune(p.Title)) > MaxTitleLength:
		return apperrors.InvalidInput(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	case p.Description == "":
		return apperrors.InvalidInput("description is required")
	case len([]rune(p.Description)) > MaxDescriptionLength:
		return apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	case p.Address == "" || p.City == "" || p.Region == "":
		return apperrors.InvalidInput("address, city and region are required")
	case !IsValidPropertyType(p.PropertyType):
		return apperrors.InvalidInput("invalid property type: " + p.PropertyType)
	case !IsValidCategory(p.Category):
		return apperrors.InvalidInput("invalid category: " + p.Category)
	case !IsValidPricePeriod(p.PricePeriod):
		return apperrors.InvalidInput("invalid price period: " + p.PricePeriod)
	case !IsValidPropertyStatus(p.Status):
		return apperrors.InvalidInput("invalid status: " + p.Status)
	case !IsValidListedBy(p.ListedBy):
		return apperrors.InvalidInput("invalid listed_by: " + p.ListedBy)
	case p.Price < 0:
		return apperrors.InvalidInput("price must not be negative")
	case p.SizeSqm < 0:
		return apperrors.InvalidInput("size_sqm must not be negative")
	case p.Bedrooms != nil && *p.Bedrooms < 0:
		return apperrors.InvalidInput("bedrooms must not be negative")
	case p.Bathrooms != nil && *p.Bathrooms < 0:
		return apperrors.InvalidInput("bathrooms must not be negative")
	case p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90):
		return apperrors.InvalidInput("latitude must be between -90 and 90")
	case p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180):
		return apperrors.InvalidInput("longitude must be between -180 and 180")
	}
	return nil
}

// IsValidPropertyType checks t against the known property types.
func IsValidPropertyType(t string) bool { return slices.Contains(propertyTypes, t) }

// IsValidCategory checks c against the known categories.
func IsValidCategory(c string) bool { return slices.Contains(categories, c) }

// IsValidPricePeriod checks p against the known price periods.
func IsValidPricePeriod(p string) bool { return slices.Contains(pricePeriods, p) }

// IsValidPropertyStatus checks s against the known statuses.
func IsValidPropertyStatus(s string) bool { return slices.Contains(propertyStatuses, s) }

// IsValidListedBy checks l against the known listing sources.
func IsValidListedBy(l string) bool { return slices.Contains(listedBy, l) }
