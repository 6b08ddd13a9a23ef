//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/repository"
	"github.com/propconnect/propconnect/migrations"
	"github.com/propconnect/propconnect/pkg/database"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("propconnect_test"),
		tcpostgres.WithUsername("propconnect"),
		tcpostgres.WithPassword("propconnect"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		panic("start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("connection string: " + err.Error())
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("connect: " + err.Error())
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := database.RunMigrations(ctx, testPool, migrations.FS, logger); err != nil {
		testPool.Close()
		_ = container.Terminate(ctx)
		panic("migrate: " + err.Error())
	}

	code := m.Run()

	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newStoredUser(t *testing.T, email, phone string) *domain.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: "$2a$04$integration",
		FullName:     "Integration User",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), u))
	return u
}

func TestIntegration_UserUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)
	u := newStoredUser(t, "unique@example.com", "+21611111111")

	sameEmail := *u
	sameEmail.ID = uuid.NewString()
	sameEmail.Phone = "+21622222222"
	assert.ErrorIs(t, repo.Create(ctx, &sameEmail), domain.ErrDuplicateIdentity)

	samePhone := *u
	samePhone.ID = uuid.NewString()
	samePhone.Email = "other@example.com"
	assert.ErrorIs(t, repo.Create(ctx, &samePhone), domain.ErrDuplicateIdentity)

	found, err := repo.FindByEmailOrPhone(ctx, "nobody@example.com", u.Phone)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestIntegration_UserStatusAndLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)
	u := newStoredUser(t, "status@example.com", "+21633333333")

	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, time.Now().UTC()))

	suspended := true
	updated, err := repo.UpdateStatus(ctx, u.ID, domain.AccountStatus{IsSuspended: &suspended})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.True(t, updated.IsSuspended)
	assert.NotNil(t, updated.LastLoginAt)

	_, err = repo.UpdateStatus(ctx, uuid.NewString(), domain.AccountStatus{IsSuspended: &suspended})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIntegration_PropertyLifecycle(t *testing.T) {
	ctx := context.Background()
	owner := newStoredUser(t, "owner@example.com", "+21644444444")
	repo := NewPropertyRepository(testPool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &domain.Property{
		ID:           uuid.NewString(),
		OwnerID:      owner.ID,
		Title:        "Villa in Hammamet",
		Description:  "Garden and pool.",
		PropertyType: domain.PropertyTypeResidential,
		Category:     domain.CategoryHouse,
		Address:      "Route de la Plage",
		City:         "Hammamet",
		Region:       "Nabeul",
		Price:        3500,
		Currency:     domain.DefaultCurrency,
		PricePeriod:  domain.PricePeriodMonth,
		SizeSqm:      240,
		Status:       domain.PropertyStatusAvailable,
		ListedBy:     domain.ListedByOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, "Integration User", p.Owner.FullName)

	status := domain.PropertyStatusAvailable
	list, total, err := repo.List(ctx, repository.PropertyFilter{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.NotEmpty(t, list)

	p.Status = domain.PropertyStatusHidden
	p.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, p))
	assert.Equal(t, owner.ID, p.OwnerID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusHidden, got.Status)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
