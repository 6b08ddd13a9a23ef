package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propconnect/propconnect/internal/auth"
	"github.com/propconnect/propconnect/internal/config"
	"github.com/propconnect/propconnect/internal/repository/postgres"
	"github.com/propconnect/propconnect/internal/service"
	"github.com/propconnect/propconnect/migrations"
	"github.com/propconnect/propconnect/pkg/database"
)

// Connect opens the PostgreSQL pool, retrying while the server comes up.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	return pool, nil
}

// Migrate applies the embedded schema migrations and returns.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")
	return nil
}

// SeedSuperAdmin creates the configured superadmin if none exists. It
// reports whether an account was created.
func SeedSuperAdmin(ctx context.Context, cfg *config.Config, logger *slog.Logger) (bool, error) {
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		return false, err
	}
	defer pool.Close()

	hasher, err := auth.NewPasswordHasher(cfg.BcryptRounds)
	if err != nil {
		return false, fmt.Errorf("password hasher: %w", err)
	}
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return false, fmt.Errorf("jwt manager: %w", err)
	}

	tasks := service.NewDetachedTasks(cfg.DetachedTaskTimeout, logger)
	svc := service.NewAuthService(postgres.NewUserRepository(pool), hasher, jwtManager, nil, tasks, logger)
	return svc.EnsureSuperAdmin(ctx, superAdminInput(cfg))
}
