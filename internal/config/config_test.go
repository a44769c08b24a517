package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PIXELMAGS_PRIMARY.ENV", "local")
	t.Setenv("PIXELMAGS_SERVER.PORT", "8080")
	t.Setenv("PIXELMAGS_SERVER.READ_TIMEOUT", "30")
	t.Setenv("PIXELMAGS_SERVER.WRITE_TIMEOUT", "30")
	t.Setenv("PIXELMAGS_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("PIXELMAGS_SERVER.CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

func TestLoadConfig_SQLiteDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PIXELMAGS_STORE.DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "pixelmags.db", cfg.Store.SQLitePath)
	assert.Equal(t, 100, cfg.Search.MaxResults)
	assert.Equal(t, 5, cfg.Sync.MaxRetry)
	assert.False(t, cfg.Sync.RetryEnabled)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, 100*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
}

func TestLoadConfig_PartialObservabilityKeepsDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PIXELMAGS_STORE.DRIVER", "sqlite")
	t.Setenv("PIXELMAGS_OBSERVABILITY.LOGGING.LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Observability.HealthChecks.Interval)
}

func TestLoadConfig_PostgresRequiresDatabase(t *testing.T) {
	setBaseEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PIXELMAGS_STORE.DRIVER", "mysql")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_RetryNeedsRedis(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PIXELMAGS_STORE.DRIVER", "sqlite")
	t.Setenv("PIXELMAGS_SYNC.RETRY_ENABLED", "true")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.address")

	t.Setenv("PIXELMAGS_REDIS.ADDRESS", "localhost:6379")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Sync.RetryEnabled)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Level = "warn"
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_CheckEnabled(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.CheckEnabled("search"))
	assert.False(t, cfg.CheckEnabled("smtp"))

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.CheckEnabled("database"))
}
