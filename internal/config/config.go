// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Mattermost MattermostConfig `mapstructure:"mattermost"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for the SQL store and Redis.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // postgres or sqlite
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// DSN returns the connection string for the postgres driver.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the connection URL used by the migration runner.
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// SQLiteConfig contains the SQLite database location.
type SQLiteConfig struct {
	Path string `mapstructure:"path"` // file path or ":memory:"
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr returns host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerConfig contains point awards and the redemption policy.
type LedgerConfig struct {
	ProfileUpdatePoints int  `mapstructure:"profile_update_points"`
	SocialConnectPoints int  `mapstructure:"social_connect_points"`
	ContestEntryPoints  int  `mapstructure:"contest_entry_points"`
	RecomputeOnRedeem   bool `mapstructure:"recompute_on_redeem"`

	// ConfirmationDelay is waited before redemptions and contest entries.
	ConfirmationDelay time.Duration `mapstructure:"confirmation_delay"`

	// SeedFile overrides the embedded seed document when set.
	SeedFile string `mapstructure:"seed_file"`
}

// CacheConfig contains profile and leaderboard cache settings.
type CacheConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	ProfileTTL     int  `mapstructure:"profile_ttl"`     // seconds
	LeaderboardTTL int  `mapstructure:"leaderboard_ttl"` // seconds
}

// MattermostConfig contains Mattermost webhook notification settings.
type MattermostConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// SchedulerConfig contains background job settings.
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	TierRefreshSchedule string `mapstructure:"tier_refresh_schedule"` // cron expression or @every
	Timezone            string `mapstructure:"timezone"`

	// Leaderboard summary posted to Mattermost. Empty SummaryTime disables it.
	SummaryTime  string `mapstructure:"summary_time"` // HH:MM
	SummarySize  int    `mapstructure:"summary_size"`
	SkipWeekends bool   `mapstructure:"skip_weekends"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.sqlite.path", "fanledger.db")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("ledger.profile_update_points", 50)
	v.SetDefault("ledger.social_connect_points", 200)
	v.SetDefault("ledger.contest_entry_points", 25)
	v.SetDefault("ledger.recompute_on_redeem", true)
	v.SetDefault("ledger.confirmation_delay", "0s")

	v.SetDefault("cache.profile_ttl", 300)
	v.SetDefault("cache.leaderboard_ttl", 60)

	v.SetDefault("scheduler.tier_refresh_schedule", "@every 5m")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.summary_size", 10)

	v.SetDefault("metrics.prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fan-ledger/")
	}

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Database configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Ledger configuration
	_ = v.BindEnv("ledger.profile_update_points", "LEDGER_PROFILE_UPDATE_POINTS")
	_ = v.BindEnv("ledger.social_connect_points", "LEDGER_SOCIAL_CONNECT_POINTS")
	_ = v.BindEnv("ledger.contest_entry_points", "LEDGER_CONTEST_ENTRY_POINTS")
	_ = v.BindEnv("ledger.recompute_on_redeem", "LEDGER_RECOMPUTE_ON_REDEEM")
	_ = v.BindEnv("ledger.confirmation_delay", "LEDGER_CONFIRMATION_DELAY")
	_ = v.BindEnv("ledger.seed_file", "LEDGER_SEED_FILE")

	// Cache configuration
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.profile_ttl", "CACHE_PROFILE_TTL")
	_ = v.BindEnv("cache.leaderboard_ttl", "CACHE_LEADERBOARD_TTL")

	// Mattermost configuration
	_ = v.BindEnv("mattermost.webhook_url", "MATTERMOST_WEBHOOK_URL")
	_ = v.BindEnv("mattermost.channel", "MATTERMOST_CHANNEL")
	_ = v.BindEnv("mattermost.enabled", "MATTERMOST_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.tier_refresh_schedule", "SCHEDULER_TIER_REFRESH_SCHEDULE")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")
	_ = v.BindEnv("scheduler.summary_time", "SCHEDULER_SUMMARY_TIME")
	_ = v.BindEnv("scheduler.summary_size", "SCHEDULER_SUMMARY_SIZE")
	_ = v.BindEnv("scheduler.skip_weekends", "SCHEDULER_SKIP_WEEKENDS")

	// Metrics configuration
	_ = v.BindEnv("metrics.prometheus.enabled", "PROMETHEUS_ENABLED")
	_ = v.BindEnv("metrics.prometheus.port", "PROMETHEUS_PORT")
	_ = v.BindEnv("metrics.prometheus.path", "PROMETHEUS_PATH")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Cache.Enabled && c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required when cache is enabled")
	}
	if c.Ledger.ProfileUpdatePoints < 0 || c.Ledger.SocialConnectPoints < 0 || c.Ledger.ContestEntryPoints < 0 {
		return fmt.Errorf("ledger point awards must not be negative")
	}
	if c.Ledger.ConfirmationDelay < 0 {
		return fmt.Errorf("ledger.confirmation_delay must not be negative")
	}
	if c.Mattermost.Enabled && c.Mattermost.WebhookURL == "" {
		return fmt.Errorf("mattermost.webhook_url is required when mattermost is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.TierRefreshSchedule == "" {
		return fmt.Errorf("scheduler.tier_refresh_schedule is required when scheduler is enabled")
	}
	if c.Scheduler.SummaryTime != "" && c.Scheduler.SummarySize <= 0 {
		return fmt.Errorf("scheduler.summary_size must be positive")
	}

	return nil
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ProfileTTLDuration returns the profile cache TTL.
func (c *CacheConfig) ProfileTTLDuration() time.Duration {
	return time.Duration(c.ProfileTTL) * time.Second
}

// LeaderboardTTLDuration returns the leaderboard cache TTL.
func (c *CacheConfig) LeaderboardTTLDuration() time.Duration {
	return time.Duration(c.LeaderboardTTL) * time.Second
}
