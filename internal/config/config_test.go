package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  sqlite:
    path: ":memory:"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.SQLite.Path)
	assert.Equal(t, 50, cfg.Ledger.ProfileUpdatePoints)
	assert.Equal(t, 200, cfg.Ledger.SocialConnectPoints)
	assert.Equal(t, 25, cfg.Ledger.ContestEntryPoints)
	assert.True(t, cfg.Ledger.RecomputeOnRedeem)
	assert.Equal(t, time.Duration(0), cfg.Ledger.ConfirmationDelay)
	assert.Equal(t, "@every 5m", cfg.Scheduler.TierRefreshSchedule)
	assert.Equal(t, "", cfg.Scheduler.SummaryTime)
	assert.Equal(t, 10, cfg.Scheduler.SummarySize)
	assert.Equal(t, "/metrics", cfg.Metrics.Prometheus.Path)
	assert.Equal(t, 300*time.Second, cfg.Cache.ProfileTTLDuration())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  postgres:
    host: db
    database: fans
    user: ledger
    password: secret
ledger:
  confirmation_delay: 1s
  recompute_on_redeem: false
cache:
  enabled: true
`)

	// redis host is required once the cache is on
	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("LEDGER_CONTEST_ENTRY_POINTS", "40")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Ledger.ConfirmationDelay)
	assert.False(t, cfg.Ledger.RecomputeOnRedeem)
	assert.Equal(t, 40, cfg.Ledger.ContestEntryPoints)
	assert.Equal(t, "cache:6379", cfg.Database.Redis.Addr())
	assert.Equal(t, "host=db port=5432 user=ledger password=secret dbname=fans sslmode=disable", cfg.Database.Postgres.DSN())
	assert.Equal(t, "postgres://ledger:secret@db:5432/fans?sslmode=disable", cfg.Database.Postgres.URL())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{
				Driver: DriverSQLite,
				SQLite: SQLiteConfig{Path: ":memory:"},
			},
			Scheduler: SchedulerConfig{TierRefreshSchedule: "@every 5m"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid sqlite", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"postgres without host", func(c *Config) { c.Database.Driver = DriverPostgres }, true},
		{"sqlite without path", func(c *Config) { c.Database.SQLite.Path = "" }, true},
		{"negative award", func(c *Config) { c.Ledger.SocialConnectPoints = -1 }, true},
		{"negative delay", func(c *Config) { c.Ledger.ConfirmationDelay = -time.Second }, true},
		{"mattermost without url", func(c *Config) { c.Mattermost.Enabled = true }, true},
		{"scheduler without schedule", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.TierRefreshSchedule = ""
		}, true},
		{"summary without size", func(c *Config) {
			c.Scheduler.SummaryTime = "09:00"
			c.Scheduler.SummarySize = 0
		}, true},
		{"summary with size", func(c *Config) {
			c.Scheduler.SummaryTime = "09:00"
			c.Scheduler.SummarySize = 5
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
