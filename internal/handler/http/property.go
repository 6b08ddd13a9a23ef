package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/propconnect/propconnect/internal/service"
	"github.com/propconnect/propconnect/pkg/httputil"
	"github.com/propconnect/propconnect/pkg/middleware"
	"github.com/propconnect/propconnect/pkg/pagination"
	"github.com/propconnect/propconnect/pkg/validator"
)

// PropertyHandler handles HTTP requests for property endpoints.
type PropertyHandler struct {
	service *service.PropertyService
	logger  *slog.Logger
}

// NewPropertyHandler creates a new property HTTP handler.
func NewPropertyHandler(svc *service.PropertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreatePropertyRequest is the JSON request body for a new listing.
type CreatePropertyRequest struct {
	Title            string     `json:"title" validate:"required,max=100"`
	Description      string     `json:"description" validate:"required,max=5000"`
	PropertyType     string     `json:"property_type" validate:"required,oneof=RESIDENTIAL COMMERCIAL MIXED"`
	Category         string     `json:"category" validate:"required,oneof=HOUSE APARTMENT OFFICE SHOP LAND"`
	Address          string     `json:"address" validate:"required,max=255"`
	City             string     `json:"city" validate:"required,max=100"`
	Region           string     `json:"region" validate:"required,max=100"`
	Latitude         *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Price            *float64   `json:"price" validate:"required,gte=0"`
	Currency         string     `json:"currency" validate:"omitempty,len=3,alpha"`
	PricePeriod      string     `json:"price_period" validate:"required,oneof=MONTH YEAR DAY"`
	IsNegotiable     bool       `json:"is_negotiable"`
	SizeSqm          *float64   `json:"size_sqm" validate:"required,gte=0"`
	Bedrooms         *int       `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms        *int       `json:"bathrooms" validate:"omitempty,gte=0"`
	AvailabilityDate *time.Time `json:"availability_date"`
	ListedBy         string     `json:"listed_by" validate:"required,oneof=OWNER AGENT"`
}

// UpdatePropertyRequest is the JSON request body for a partial update.
type UpdatePropertyRequest struct {
	Title            *string    `json:"title" validate:"omitempty,min=1,max=100"`
	Description      *string    `json:"description" validate:"omitempty,min=1,max=5000"`
	PropertyType     *string    `json:"property_type" validate:"omitempty,oneof=RESIDENTIAL COMMERCIAL MIXED"`
	Category         *string    `json:"category" validate:"omitempty,oneof=HOUSE APARTMENT OFFICE SHOP LAND"`
	Address          *string    `json:"address" validate:"omitempty,min=1,max=255"`
	City             *string    `json:"city" validate:"omitempty,min=1,max=100"`
	Region           *string    `json:"region" validate:"omitempty,min=1,max=100"`
	Latitude         *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Price            *float64   `json:"price" validate:"omitempty,gte=0"`
	Currency         *string    `json:"currency" validate:"omitempty,len=3,alpha"`
	PricePeriod      *string    `json:"price_period" validate:"omitempty,oneof=MONTH YEAR DAY"`
	IsNegotiable     *bool      `json:"is_negotiable"`
	SizeSqm          *float64   `json:"size_sqm" validate:"omitempty,gte=0"`
	Bedrooms         *int       `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms        *int       `json:"bathrooms" validate:"omitempty,gte=0"`
	AvailabilityDate *time.Time `json:"availability_date"`
	Status           *string    `json:"status" validate:"omitempty,oneof=AVAILABLE RENTED HIDDEN"`
	ListedBy         *string    `json:"listed_by" validate:"omitempty,oneof=OWNER AGENT"`
}

// --- Handlers ---

// List handles GET /api/v1/properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, page)
}

// ListMine handles GET /api/v1/properties/mine
func (h *PropertyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	page, err := h.service.ListByOwner(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, page)
}

// Get handles GET /api/v1/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Create handles POST /api/v1/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	p, err := h.service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), service.CreatePropertyInput{
		Title:            req.Title,
		Description:      req.Description,
		PropertyType:     req.PropertyType,
		Category:         req.Category,
		Address:          req.Address,
		City:             req.City,
		Region:           req.Region,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Price:            *req.Price,
		Currency:         req.Currency,
		PricePeriod:      req.PricePeriod,
		IsNegotiable:     req.IsNegotiable,
		SizeSqm:          *req.SizeSqm,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		AvailabilityDate: req.AvailabilityDate,
		ListedBy:         req.ListedBy,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, p)
}

// Update handles PUT /api/v1/properties/{id}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	p, err := h.service.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id.String(), service.UpdatePropertyInput{
		Title:            req.Title,
		Description:      req.Description,
		PropertyType:     req.PropertyType,
		Category:         req.Category,
		Address:          req.Address,
		City:             req.City,
		Region:           req.Region,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Price:            req.Price,
		Currency:         req.Currency,
		PricePeriod:      req.PricePeriod,
		IsNegotiable:     req.IsNegotiable,
		SizeSqm:          req.SizeSqm,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		AvailabilityDate: req.AvailabilityDate,
		Status:           req.Status,
		ListedBy:         req.ListedBy,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/properties/{id}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
