// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional config blocks (observability, search, sync).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env, if it exists.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the PIXELMAGS_ prefix. Keys are lowercased with the
	prefix removed, and nesting uses the "." delimiter:

	  PIXELMAGS_SERVER.PORT        -> server.port        -> Config.Server.Port
	  PIXELMAGS_STORE.DRIVER       -> store.driver       -> Config.Store.Driver
	  PIXELMAGS_SEARCH.MAX_RESULTS -> search.max_results -> Config.Search.MaxResults
*/

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "PIXELMAGS_"

// ServiceName tags logs, traces and New Relic data.
const ServiceName = "pixelmags"

// Supported EntityStore drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store"`
	Database      DatabaseConfig       `koanf:"database"`
	Search        SearchConfig         `koanf:"search"`
	Sync          SyncConfig           `koanf:"sync"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// StoreConfig selects the EntityStore backend.
//
// "postgres" uses the Database block; "sqlite" opens SQLitePath
// (":memory:" is accepted for throwaway runs).
type StoreConfig struct {
	Driver     string `koanf:"driver" validate:"omitempty,oneof=postgres sqlite"`
	SQLitePath string `koanf:"sqlite_path"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// It is only required when Store.Driver is "postgres".
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// SearchConfig controls the full-text indexes.
//
// An empty Path keeps every index in memory; it is then rebuilt with
// `pixelmags reindex` or POST /api/v1/admin/reindex after a restart.
type SearchConfig struct {
	Path       string `koanf:"path"`
	MaxResults int    `koanf:"max_results" validate:"omitempty,min=1,max=10000"`
}

// SyncConfig controls the retry queue for failed index writes.
type SyncConfig struct {
	RetryEnabled bool   `koanf:"retry_enabled"`
	MaxRetry     int    `koanf:"max_retry" validate:"omitempty,min=1"`
	Concurrency  int    `koanf:"concurrency" validate:"omitempty,min=1"`
	AlertEmail   string `koanf:"alert_email" validate:"omitempty,email"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port". Redis is required when Sync.RetryEnabled is set.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// AuthConfig stores authentication-related secrets.
// An empty SecretKey leaves the API unauthenticated.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// IntegrationConfig holds keys for third-party services.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config, validates it, applies defaults and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Defaults are set before unmarshalling so a partially configured
	// observability block keeps the remaining default values.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = DriverPostgres
	}
	if c.Store.Driver == DriverSQLite && c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "pixelmags.db"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 100
	}
	if c.Sync.MaxRetry == 0 {
		c.Sync.MaxRetry = 5
	}
	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = 5
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "Pixelmags <onboarding@resend.dev>"
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
}

// Validate runs the struct-tag rules and the cross-block rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Store.Driver == DriverPostgres {
		switch {
		case c.Database.Host == "":
			return fmt.Errorf("database.host is required for the postgres driver")
		case c.Database.Port == 0:
			return fmt.Errorf("database.port is required for the postgres driver")
		case c.Database.User == "":
			return fmt.Errorf("database.user is required for the postgres driver")
		case c.Database.Name == "":
			return fmt.Errorf("database.name is required for the postgres driver")
		}
	}

	if c.Sync.RetryEnabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when sync.retry_enabled is set")
	}

	if c.Observability != nil {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("invalid observability config: %w", err)
		}
	}

	return nil
}
