package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `env:"TEST_CFG_PORT" envDefault:"5000"`
	Origins []string      `env:"TEST_CFG_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	TTL     time.Duration `env:"TEST_CFG_TTL" envDefault:"168h"`
	Debug   bool          `env:"TEST_CFG_DEBUG" envDefault:"false"`
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_SECRET,required,notEmpty"`
	DSN    string `env:"TEST_CFG_DSN,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Origins)
	assert.Equal(t, 7*24*time.Hour, cfg.TTL)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "8080")
	t.Setenv("TEST_CFG_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TEST_CFG_TTL", "15m")
	t.Setenv("TEST_CFG_DEBUG", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
	assert.Equal(t, 15*time.Minute, cfg.TTL)
	assert.True(t, cfg.Debug)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_MissingRequiredVarsAreNamed(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_CFG_SECRET")
	assert.Contains(t, err.Error(), "TEST_CFG_DSN")
}

func TestLoad_EmptyRequiredVar(t *testing.T) {
	t.Setenv("TEST_CFG_SECRET", "")
	t.Setenv("TEST_CFG_DSN", "postgres://localhost")

	var cfg requiredConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_CFG_SECRET")
}

func TestLoad_RejectsNonPointer(t *testing.T) {
	assert.Error(t, Load(testConfig{}))
}
