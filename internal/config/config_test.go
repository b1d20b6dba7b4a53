package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PEOPLE_PRIMARY.ENV", "local")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "people.sqlite", cfg.Database.SQLitePath)
	assert.False(t, cfg.API.RejectDuplicateIDs)
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PEOPLE_PRIMARY.ENV", "production")
	t.Setenv("PEOPLE_SERVER.PORT", "9090")
	t.Setenv("PEOPLE_DATABASE.SQLITE_PATH", "/var/lib/people/db.sqlite")
	t.Setenv("PEOPLE_API.REJECT_DUPLICATE_IDS", "true")
	t.Setenv("PEOPLE_OBSERVABILITY.LOGGING.SLOW_QUERY_THRESHOLD", "250ms")
	t.Setenv("PEOPLE_OBSERVABILITY.LOGGING.LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/var/lib/people/db.sqlite", cfg.Database.SQLitePath)
	assert.True(t, cfg.API.RejectDuplicateIDs)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.Equal(t, "warn", cfg.Observability.GetLogLevel())
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("PEOPLE_DATABASE.DRIVER", "oracle")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Driver")
}

func TestValidatePostgresRequiresHost(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = DriverPostgres

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Host")

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "people"
	cfg.Database.Name = "people"
	require.NoError(t, cfg.Validate())
}

func TestObservabilityValidate(t *testing.T) {
	obs := DefaultObservabilityConfig()
	require.NoError(t, obs.Validate())

	obs.Logging.Level = "verbose"
	assert.Error(t, obs.Validate())

	obs = DefaultObservabilityConfig()
	obs.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, obs.Validate())
}

func TestNewRelicEnabled(t *testing.T) {
	obs := DefaultObservabilityConfig()
	assert.False(t, obs.NewRelicEnabled())

	obs.NewRelic.LicenseKey = "abc"
	assert.True(t, obs.NewRelicEnabled())
}
