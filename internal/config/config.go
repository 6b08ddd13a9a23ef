package config

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	pkgconfig "github.com/propconnect/propconnect/pkg/config"
	"github.com/propconnect/propconnect/pkg/database"
	"github.com/propconnect/propconnect/pkg/tracing"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minSecretLength = 32
)

// Config holds all configuration for the PropConnect API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// HTTP server
	HTTPPort            int           `env:"HTTP_PORT" envDefault:"5000"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"20s"`
	FrontendURL         string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	PprofAllowedCIDRs   []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
	AuthRateLimitRPS    float64       `env:"AUTH_RATE_LIMIT_RPS" envDefault:"0.5"`
	AuthRateLimitBurst  int           `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
	TrustProxyHeaders   bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	SlowQueryThreshold  int           `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`
	DetachedTaskTimeout time.Duration `env:"DETACHED_TASK_TIMEOUT" envDefault:"5s"`

	// PostgreSQL
	PostgresHost      string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort      int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser      string        `env:"POSTGRES_USER" envDefault:"propconnect"`
	PostgresPass      string        `env:"POSTGRES_PASSWORD" envDefault:"propconnect_secret"`
	PostgresDB        string        `env:"POSTGRES_DB" envDefault:"propconnect"`
	PostgresSSL       string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// Redis
	RedisHost       string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	ListingCacheTTL time.Duration `env:"LISTING_CACHE_TTL" envDefault:"30s"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`
	BcryptRounds int           `env:"BCRYPT_ROUNDS" envDefault:"12"`

	// Superadmin bootstrap
	SuperAdminEnabled  bool   `env:"SUPERADMIN_ENABLED" envDefault:"false"`
	SuperAdminEmail    string `env:"SUPERADMIN_EMAIL"`
	SuperAdminPassword string `env:"SUPERADMIN_PASSWORD"`
	SuperAdminPhone    string `env:"SUPERADMIN_PHONE" envDefault:"+21600000000"`
	SuperAdminName     string `env:"SUPERADMIN_NAME" envDefault:"Super Admin"`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if !c.IsDevelopment() && len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long in %q mode, got %d",
			minSecretLength, c.Environment, len(c.JWTSecret))
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWTExpiresIn)
	}
	if c.BcryptRounds < bcrypt.MinCost || c.BcryptRounds > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_ROUNDS must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptRounds)
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst < 1 {
		return fmt.Errorf("auth rate limit must be positive, got %v rps burst %d",
			c.AuthRateLimitRPS, c.AuthRateLimitBurst)
	}
	if c.SuperAdminEnabled && (c.SuperAdminEmail == "" || c.SuperAdminPassword == "") {
		return fmt.Errorf("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD are required when SUPERADMIN_ENABLED is set")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Postgres returns the connection settings for the primary database.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the listing cache connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry exporter settings.
func (c *Config) Tracing(service string) tracing.Config {
	return tracing.Config{
		Enabled:        c.OTelEnabled,
		ServiceName:    service,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTelEndpoint,
		Insecure:       c.OTelInsecure,
		SampleRate:     c.OTelSampleRate,
	}
}

// SlowQuery returns the slow query logging threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryThreshold) * time.Millisecond
}
