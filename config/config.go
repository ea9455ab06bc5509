// Package config loads the admission service configuration from defaults,
// an optional YAML file and ADMISSION_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Event bus modes.
const (
	BusSync  = "sync"
	BusAsync = "async"
	BusRedis = "redis"
)

// EnvPrefix prefixes every environment variable, e.g. ADMISSION_HTTP_PORT.
const EnvPrefix = "ADMISSION"

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	EventBus  EventBusConfig  `mapstructure:"eventbus"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Admission AdmissionConfig `mapstructure:"admission"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Environment     Environment   `mapstructure:"environment"`
	Version         string        `mapstructure:"version"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// DatabaseConfig holds PostgreSQL connection settings. Driver "memory"
// keeps every aggregate in process.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`

	// URL takes precedence over the individual settings when set.
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`

	// AutoMigrate applies pending migrations when serving.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection settings. Redis backs the proposition
// read-model cache and the "redis" event bus mode.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// EventBusConfig selects how domain events reach their handlers.
type EventBusConfig struct {
	Mode           string `mapstructure:"mode"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
	Channel        string `mapstructure:"channel"`
}

// HTTPConfig configures the ops server.
type HTTPConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig toggles the Prometheus recorder and command tracing.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Tracing bool `mapstructure:"tracing"`
}

// SchedulerConfig controls the periodic jobs run by serve.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Timezone string `mapstructure:"timezone"`

	// OverdueDocumentsAt is the daily "HH:MM" run time of the overdue
	// document reminder.
	OverdueDocumentsAt string `mapstructure:"overdue_documents_at"`
}

// Location resolves Timezone, UTC when empty.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// AdmissionConfig holds the configurable business constants.
type AdmissionConfig struct {
	MaxPromoters    int `mapstructure:"max_promoters"`
	MaxCAMembers    int `mapstructure:"max_ca_members"`
	MinCAMembers    int `mapstructure:"min_ca_members"`
	MaxPropositions int `mapstructure:"max_propositions"`

	// DeadlineMonths offsets the confirmation exam deadline from admission.
	DeadlineMonths int `mapstructure:"deadline_months"`

	// ReferenceBase seeds the in-memory reference sequence. PostgreSQL
	// uses its own sequence.
	ReferenceBase int64 `mapstructure:"reference_base"`

	CommandTimeout time.Duration `mapstructure:"command_timeout"`

	// CatalogueFile replaces the embedded promoter/doctorate catalogue.
	CatalogueFile string `mapstructure:"catalogue_file"`
}

// New returns a viper instance with every default registered and the
// environment bound. Callers may bind flags on it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "admission")
	v.SetDefault("app.environment", string(EnvDevelopment))
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "admission")
	v.SetDefault("database.user", "admission")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)

	v.SetDefault("eventbus.mode", BusAsync)
	v.SetDefault("eventbus.worker_pool_size", 10)
	v.SetDefault("eventbus.channel", "admission:events")

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.tracing", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.overdue_documents_at", "06:00")

	v.SetDefault("admission.max_promoters", 2)
	v.SetDefault("admission.max_ca_members", 3)
	v.SetDefault("admission.min_ca_members", 0)
	v.SetDefault("admission.max_propositions", 5)
	v.SetDefault("admission.deadline_months", 24)
	v.SetDefault("admission.reference_base", 300000)
	v.SetDefault("admission.command_timeout", 30*time.Second)
	v.SetDefault("admission.catalogue_file", "")
}

// Load reads the configuration. An explicit path must exist; without one an
// admission.yaml is looked up in ./config and the working directory and may
// be absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("admission")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		fail("app.environment %q is not one of development, staging, production", c.App.Environment)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		fail("log.format %q must be json or text", c.Log.Format)
	}

	switch c.Database.Driver {
	case DriverMemory:
		if c.App.Environment == EnvProduction {
			fail("database.driver memory is not allowed in production")
		}
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			fail("database.url or database.host is required for postgres")
		}
	default:
		fail("database.driver %q must be memory or postgres", c.Database.Driver)
	}

	switch c.EventBus.Mode {
	case BusSync, BusAsync:
	case BusRedis:
		if !c.Redis.Enabled {
			fail("eventbus.mode redis requires redis.enabled")
		}
	default:
		fail("eventbus.mode %q must be sync, async or redis", c.EventBus.Mode)
	}
	if c.EventBus.Mode != BusSync && c.EventBus.WorkerPoolSize <= 0 {
		fail("eventbus.worker_pool_size must be positive")
	}

	if c.HTTP.Enabled && (c.HTTP.Port <= 0 || c.HTTP.Port > 65535) {
		fail("http.port must be 1-65535")
	}

	if c.Scheduler.Enabled {
		if _, err := c.Scheduler.Location(); err != nil {
			fail("scheduler.timezone: %v", err)
		}
		if _, err := time.Parse("15:04", c.Scheduler.OverdueDocumentsAt); err != nil {
			fail("scheduler.overdue_documents_at %q must be HH:MM", c.Scheduler.OverdueDocumentsAt)
		}
	}

	a := c.Admission
	if a.MaxPromoters <= 0 {
		fail("admission.max_promoters must be positive")
	}
	if a.MaxCAMembers <= 0 {
		fail("admission.max_ca_members must be positive")
	}
	if a.MinCAMembers < 0 || a.MinCAMembers > a.MaxCAMembers {
		fail("admission.min_ca_members must be between 0 and max_ca_members")
	}
	if a.MaxPropositions <= 0 {
		fail("admission.max_propositions must be positive")
	}
	if a.DeadlineMonths <= 0 {
		fail("admission.deadline_months must be positive")
	}
	if a.ReferenceBase < 0 {
		fail("admission.reference_base must not be negative")
	}

	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
