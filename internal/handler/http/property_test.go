package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/repository"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

func storedProperty(status string) *domain.Property {
	now := time.Now().UTC()
	return &domain.Property{
		ID:           propertyID,
		OwnerID:      ownerID,
		Title:        "Sunny apartment",
		Description:  "Close to the beach",
		PropertyType: domain.PropertyTypeResidential,
		Category:     domain.CategoryApartment,
		Address:      "12 Rue de Marseille",
		City:         "Tunis",
		Region:       "Tunis",
		Price:        1200,
		Currency:     domain.DefaultCurrency,
		PricePeriod:  domain.PricePeriodMonth,
		SizeSqm:      95,
		Status:       status,
		ListedBy:     domain.ListedByOwner,
		Owner:        domain.Owner{ID: ownerID, FullName: "Amira Ben Ali"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func createBody() map[string]any {
	return map[string]any{
		"title":         "Sunny apartment",
		"description":   "Close to the beach",
		"property_type": "RESIDENTIAL",
		"category":      "APARTMENT",
		"address":       "12 Rue de Marseille",
		"city":          "Tunis",
		"region":        "Tunis",
		"price":         1200,
		"price_period":  "MONTH",
		"size_sqm":      95,
		"listed_by":     "OWNER",
	}
}

// ============================================================================
// Reads
// ============================================================================

func TestListPropertiesHandler(t *testing.T) {
	env := newTestEnv(t)

	env.properties.On("List", mock.Anything, mock.MatchedBy(func(f repository.PropertyFilter) bool {
		return f.Limit == 5 && f.Offset == 5 && f.Status != nil && *f.Status == domain.PropertyStatusAvailable
	})).Return([]domain.Property{*storedProperty(domain.PropertyStatusAvailable)}, 6, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/properties?page=2&limit=5", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.Property `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	decodeJSON(t, rec, &body)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 5, body.Meta.Limit)
	assert.Equal(t, 6, body.Meta.Total)
	assert.Equal(t, 2, body.Meta.TotalPages)
}

func TestListPropertiesHandler_HugePage(t *testing.T) {
	env := newTestEnv(t)

	env.properties.On("List", mock.Anything, mock.MatchedBy(func(f repository.PropertyFilter) bool {
		return f.Limit == 100 && f.Offset >= 0
	})).Return([]domain.Property{}, 6, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/properties?page=922337203685477581&limit=100", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.Property `json:"data"`
	}
	decodeJSON(t, rec, &body)
	assert.Empty(t, body.Data)
	env.properties.AssertExpectations(t)
}

func TestListMineHandler_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/properties/mine", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListMineHandler(t *testing.T) {
	env := newTestEnv(t)

	env.properties.On("List", mock.Anything, mock.MatchedBy(func(f repository.PropertyFilter) bool {
		return f.OwnerID != nil && *f.OwnerID == ownerID && f.Status == nil
	})).Return([]domain.Property{*storedProperty(domain.PropertyStatusHidden)}, 1, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/properties/mine", ownerID+":user", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.properties.AssertExpectations(t)
}

func TestGetPropertyHandler(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		token      string
		wantStatus int
	}{
		{"public anonymous", domain.PropertyStatusAvailable, "", http.StatusOK},
		{"hidden anonymous", domain.PropertyStatusHidden, "", http.StatusNotFound},
		{"hidden other user", domain.PropertyStatusHidden, otherID + ":user", http.StatusNotFound},
		{"hidden owner", domain.PropertyStatusHidden, ownerID + ":user", http.StatusOK},
		{"bad token reads anonymously", domain.PropertyStatusAvailable, "garbage", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.properties.On("GetByID", mock.Anything, propertyID).Return(storedProperty(tt.status), nil)

			rec := env.do(t, http.MethodGet, "/api/v1/properties/"+propertyID, tt.token, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetPropertyHandler_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/properties/not-a-uuid", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.properties.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// ============================================================================
// Writes
// ============================================================================

func TestCreatePropertyHandler(t *testing.T) {
	env := newTestEnv(t)

	env.properties.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Property) bool {
		return p.OwnerID == ownerID && p.Status == domain.PropertyStatusAvailable
	})).Return(nil)

	rec := env.do(t, http.MethodPost, "/api/v1/properties", ownerID+":user", createBody())

	require.Equal(t, http.StatusCreated, rec.Code)
	var p domain.Property
	decodeEnvelope(t, rec, &p)
	assert.Equal(t, ownerID, p.OwnerID)
	assert.Equal(t, "TND", p.Currency)
}

func TestCreatePropertyHandler_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/properties", "", createBody())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env.properties.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePropertyHandler_Validation(t *testing.T) {
	env := newTestEnv(t)

	body := createBody()
	body["category"] = "CASTLE"
	delete(body, "price")
	rec := env.do(t, http.MethodPost, "/api/v1/properties", ownerID+":user", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec, nil)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Fields, "category")
	assert.Contains(t, resp.Error.Fields, "price")
}

func TestUpdatePropertyHandler(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		env := newTestEnv(t)
		env.properties.On("GetByID", mock.Anything, propertyID).Return(storedProperty(domain.PropertyStatusAvailable), nil)
		env.properties.On("Update", mock.Anything, mock.Anything).Return(nil)

		rec := env.do(t, http.MethodPut, "/api/v1/properties/"+propertyID, ownerID+":user",
			map[string]any{"price": 1500, "status": "RENTED"})

		require.Equal(t, http.StatusOK, rec.Code)
		var p domain.Property
		decodeEnvelope(t, rec, &p)
		assert.Equal(t, 1500.0, p.Price)
		assert.Equal(t, domain.PropertyStatusRented, p.Status)
	})

	t.Run("non-owner", func(t *testing.T) {
		env := newTestEnv(t)
		env.properties.On("GetByID", mock.Anything, propertyID).Return(storedProperty(domain.PropertyStatusAvailable), nil)

		rec := env.do(t, http.MethodPut, "/api/v1/properties/"+propertyID, otherID+":user",
			map[string]any{"price": 1})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		resp := decodeEnvelope(t, rec, nil)
		assert.Equal(t, apperrors.CodeForbidden, resp.Error.Code)
		assert.Equal(t, "You are not authorized to perform this action", resp.Error.Message)
		env.properties.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		env := newTestEnv(t)
		env.properties.On("GetByID", mock.Anything, propertyID).Return(nil, apperrors.ErrNotFound)

		rec := env.do(t, http.MethodPut, "/api/v1/properties/"+propertyID, ownerID+":user",
			map[string]any{"price": 1})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner cannot be reassigned", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPut, "/api/v1/properties/"+propertyID, ownerID+":user",
			map[string]any{"owner_id": otherID})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.properties.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestDeletePropertyHandler(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		env := newTestEnv(t)
		env.properties.On("GetByID", mock.Anything, propertyID).Return(storedProperty(domain.PropertyStatusAvailable), nil)
		env.properties.On("Delete", mock.Anything, propertyID).Return(nil)

		rec := env.do(t, http.MethodDelete, "/api/v1/properties/"+propertyID, ownerID+":user", nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("non-owner", func(t *testing.T) {
		env := newTestEnv(t)
		env.properties.On("GetByID", mock.Anything, propertyID).Return(storedProperty(domain.PropertyStatusAvailable), nil)

		rec := env.do(t, http.MethodDelete, "/api/v1/properties/"+propertyID, otherID+":user", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		env.properties.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodDelete, "/api/v1/properties/"+propertyID, "", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
