package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadSQLiteDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("SLOT_OPEN", "")
	t.Setenv("SLOT_CLOSE", "")
	t.Setenv("SLOT_STEP", "")
	t.Setenv("BOOKINGS_LIST_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data", cfg.SQLitePath)
	assert.Equal(t, "09:00", cfg.Slots.Open)
	assert.Equal(t, "20:00", cfg.Slots.Close)
	assert.Equal(t, 15*time.Minute, cfg.Slots.Step)
	assert.Equal(t, 50, cfg.ListLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadMySQLRequiresConnectionVars(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestLoadReportsAllMissing(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"APP_ENV", "APP_PORT", "JWT_SECRET"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}

func TestLoadEventsConfigURLPrecedence(t *testing.T) {
	t.Setenv("AMQP_URL", "amqp://a")
	t.Setenv("RABBITMQ_URL", "amqp://b")
	assert.Equal(t, "amqp://b", LoadEventsConfig().URL)
}
