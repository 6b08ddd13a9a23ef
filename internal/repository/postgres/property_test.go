package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/repository"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

func newPropertyTestFixture(t *testing.T) (*PropertyRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPropertyRepository(mock), mock
}

func sampleProperty() *domain.Property {
	now := time.Now().UTC().Truncate(time.Microsecond)
	beds := 2
	lat := 36.8782
	return &domain.Property{
		ID:           "7d6c5b4a-3f2e-4d1c-8b0a-9e8f7a6b5c4d",
		OwnerID:      "0b9e4a1e-6c55-4b1f-9a57-2f0d3c1e8a11",
		Title:        "Sunny flat in La Marsa",
		Description:  "Two bedrooms, sea view.",
		PropertyType: domain.PropertyTypeResidential,
		Category:     domain.CategoryApartment,
		Address:      "12 Rue de Carthage",
		City:         "Tunis",
		Region:       "La Marsa",
		Latitude:     &lat,
		Price:        1200,
		Currency:     domain.DefaultCurrency,
		PricePeriod:  domain.PricePeriodMonth,
		SizeSqm:      95,
		Bedrooms:     &beds,
		Status:       domain.PropertyStatusAvailable,
		ListedBy:     domain.ListedByOwner,
		Owner:        domain.Owner{ID: "0b9e4a1e-6c55-4b1f-9a57-2f0d3c1e8a11", FullName: "Amira Ben Salah"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

var propertyRowColumns = []string{
	"id", "owner_id", "title", "description", "property_type", "category",
	"address", "city", "region", "latitude", "longitude",
	"price", "currency", "price_period", "is_negotiable", "size_sqm",
	"bedrooms", "bathrooms", "availability_date", "status", "listed_by",
	"created_at", "updated_at", "owner_id_2", "full_name",
}

func addPropertyRow(rows *pgxmock.Rows, p *domain.Property) *pgxmock.Rows {
	return rows.AddRow(
		p.ID, p.OwnerID, p.Title, p.Description, p.PropertyType, p.Category,
		p.Address, p.City, p.Region, p.Latitude, p.Longitude,
		p.Price, p.Currency, p.PricePeriod, p.IsNegotiable, p.SizeSqm,
		p.Bedrooms, p.Bathrooms, p.AvailabilityDate, p.Status, p.ListedBy,
		p.CreatedAt, p.UpdatedAt, p.Owner.ID, p.Owner.FullName,
	)
}

func propertyRow(p *domain.Property) *pgxmock.Rows {
	return addPropertyRow(pgxmock.NewRows(propertyRowColumns), p)
}

func TestPropertyRepository_Create(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	stored := sampleProperty()
	input := *stored
	input.Owner = domain.Owner{}

	mock.ExpectQuery("INSERT INTO properties").
		WillReturnRows(propertyRow(stored))

	require.NoError(t, repo.Create(context.Background(), &input))
	assert.Equal(t, "Amira Ben Salah", input.Owner.FullName)
	assert.Equal(t, stored.OwnerID, input.Owner.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_Create_UnknownOwner(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)

	mock.ExpectQuery("INSERT INTO properties").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), sampleProperty())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPropertyRepository_GetByID(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	p := sampleProperty()

	mock.ExpectQuery("SELECT .+ FROM properties p JOIN users u ON u.id = p.owner_id\\s+WHERE p.id =").
		WithArgs(p.ID).
		WillReturnRows(propertyRow(p))

	got, err := repo.GetByID(context.Background(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPropertyRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPropertyRepository_List_AvailableNewestFirst(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	a, b := sampleProperty(), sampleProperty()
	b.ID = "8e7d6c5b-4a3f-4e2d-9c1b-0a9f8e7d6c5b"
	status := domain.PropertyStatusAvailable

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM properties p WHERE p.status = \\$1").
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("ORDER BY p.created_at DESC").
		WithArgs(status, 10, 10).
		WillReturnRows(addPropertyRow(propertyRow(a), b))

	got, total, err := repo.List(context.Background(), repository.PropertyFilter{Status: &status, Limit: 10, Offset: 10})

	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_List_ByOwner(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	p := sampleProperty()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM properties p WHERE p.owner_id = \\$1").
		WithArgs(p.OwnerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("WHERE p.owner_id = \\$1\\s+ORDER BY").
		WithArgs(p.OwnerID, 20, 0).
		WillReturnRows(propertyRow(p))

	got, total, err := repo.List(context.Background(), repository.PropertyFilter{OwnerID: &p.OwnerID, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, got, 1)
}

func TestPropertyRepository_List_PastTheEnd(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	got, total, err := repo.List(context.Background(), repository.PropertyFilter{Limit: 10, Offset: 10})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_List_CountError(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("timeout"))

	_, _, err := repo.List(context.Background(), repository.PropertyFilter{Limit: 10})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "count properties")
}

func TestPropertyRepository_Update(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)
	p := sampleProperty()
	p.Status = domain.PropertyStatusHidden

	mock.ExpectQuery("UPDATE properties").
		WithArgs(
			p.Title, p.Description, p.PropertyType, p.Category,
			p.Address, p.City, p.Region, p.Latitude, p.Longitude,
			p.Price, p.Currency, p.PricePeriod, p.IsNegotiable,
			p.SizeSqm, p.Bedrooms, p.Bathrooms, p.AvailabilityDate,
			p.Status, p.ListedBy, p.UpdatedAt, p.ID,
		).
		WillReturnRows(propertyRow(p))

	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, domain.PropertyStatusHidden, p.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_Update_NotFound(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)

	mock.ExpectQuery("UPDATE properties").WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), sampleProperty())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPropertyRepository_Delete(t *testing.T) {
	repo, mock := newPropertyTestFixture(t)

	mock.ExpectExec("DELETE FROM properties").
		WithArgs("p-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM properties").
		WithArgs("p-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), "p-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p-2"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
