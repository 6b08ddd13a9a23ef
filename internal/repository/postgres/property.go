package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/repository"
	"github.com/propconnect/propconnect/pkg/database"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

// propertyColumns selects a property with its owner projection from p
// joined to users u.
const propertyColumns = `
	p.id, p.owner_id, p.title, p.description, p.property_type, p.category,
	p.address, p.city, p.region, p.latitude, p.longitude,
	p.price, p.currency, p.price_period, p.is_negotiable, p.size_sqm,
	p.bedrooms, p.bathrooms, p.availability_date, p.status, p.listed_by,
	p.created_at, p.updated_at, u.id, u.full_name`

const (
	qInsertProperty = `
		WITH p AS (
			INSERT INTO properties (id, owner_id, title, description, property_type, category,
				address, city, region, latitude, longitude, price, currency, price_period,
				is_negotiable, size_sqm, bedrooms, bathrooms, availability_date, status, listed_by,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
			RETURNING *
		)
		SELECT ` + propertyColumns + `
		FROM p JOIN users u ON u.id = p.owner_id`

	qPropertyByID = `
		SELECT ` + propertyColumns + `
		FROM properties p JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1`

	qUpdateProperty = `
		WITH p AS (
			UPDATE properties
			SET title = $1, description = $2, property_type = $3, category = $4,
			    address = $5, city = $6, region = $7, latitude = $8, longitude = $9,
			    price = $10, currency = $11, price_period = $12, is_negotiable = $13,
			    size_sqm = $14, bedrooms = $15, bathrooms = $16, availability_date = $17,
			    status = $18, listed_by = $19, updated_at = $20
			WHERE id = $21
			RETURNING *
		)
		SELECT ` + propertyColumns + `
		FROM p JOIN users u ON u.id = p.owner_id`

	qDeleteProperty = `DELETE FROM properties WHERE id = $1`
)

// PropertyRepository implements repository.PropertyRepository on
// PostgreSQL.
type PropertyRepository struct {
	db database.DBTX
}

// NewPropertyRepository creates a PostgreSQL-backed property repository.
func NewPropertyRepository(db database.DBTX) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts p and refreshes it, owner projection included, from the
// inserted row.
func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProperty", qInsertProperty)
	defer func() { end(err) }()

	created, err := scanProperty(r.db.QueryRow(ctx, qInsertProperty,
		p.ID, p.OwnerID, p.Title, p.Description, p.PropertyType, p.Category,
		p.Address, p.City, p.Region, p.Latitude, p.Longitude,
		p.Price, p.Currency, p.PricePeriod, p.IsNegotiable, p.SizeSqm,
		p.Bedrooms, p.Bathrooms, p.AvailabilityDate, p.Status, p.ListedBy,
		p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("owner")
		}
		return fmt.Errorf("insert property: %w", err)
	}
	*p = *created
	return nil
}

// GetByID retrieves a property by id.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (p *domain.Property, err error) {
	ctx, end := database.TraceQuery(ctx, "GetPropertyByID", qPropertyByID)
	defer func() { end(spanErr(err)) }()

	return scanProperty(r.db.QueryRow(ctx, qPropertyByID, id))
}

// List returns a page of properties matching filter, newest first, and the
// total number of matches.
func (r *PropertyRepository) List(ctx context.Context, filter repository.PropertyFilter) (_ []domain.Property, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("p.owner_id = $%d", argIndex))
		args = append(args, *filter.OwnerID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM properties p " + where
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM properties p JOIN users u ON u.id = p.owner_id
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`,
		propertyColumns, where, argIndex, argIndex+1,
	)

	ctx, end := database.TraceQuery(ctx, "ListProperties", listQuery)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}
	if total == 0 || filter.Offset >= total {
		return []domain.Property{}, total, nil
	}

	rows, err := r.db.Query(ctx, listQuery, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0, filter.Limit)
	for rows.Next() {
		p, scanErr := scanProperty(rows)
		if scanErr != nil {
			err = scanErr
			return nil, 0, err
		}
		properties = append(properties, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate property rows: %w", err)
	}

	return properties, total, nil
}

// Update persists every mutable field of p and refreshes it from the
// stored row. owner_id is not written.
func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateProperty", qUpdateProperty)
	defer func() { end(spanErr(err)) }()

	updated, err := scanProperty(r.db.QueryRow(ctx, qUpdateProperty,
		p.Title, p.Description, p.PropertyType, p.Category,
		p.Address, p.City, p.Region, p.Latitude, p.Longitude,
		p.Price, p.Currency, p.PricePeriod, p.IsNegotiable,
		p.SizeSqm, p.Bedrooms, p.Bathrooms, p.AvailabilityDate,
		p.Status, p.ListedBy, p.UpdatedAt,
		p.ID,
	))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.PropertyNotFound()
		}
		return fmt.Errorf("update property: %w", err)
	}
	*p = *updated
	return nil
}

// Delete removes a property by id.
func (r *PropertyRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteProperty", qDeleteProperty)
	defer func() { end(spanErr(err)) }()

	ct, err := r.db.Exec(ctx, qDeleteProperty, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.PropertyNotFound()
	}
	return nil
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.PropertyType, &p.Category,
		&p.Address, &p.City, &p.Region, &p.Latitude, &p.Longitude,
		&p.Price, &p.Currency, &p.PricePeriod, &p.IsNegotiable, &p.SizeSqm,
		&p.Bedrooms, &p.Bathrooms, &p.AvailabilityDate, &p.Status, &p.ListedBy,
		&p.CreatedAt, &p.UpdatedAt, &p.Owner.ID, &p.Owner.FullName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan property: %w", err)
	}
	return &p, nil
}
