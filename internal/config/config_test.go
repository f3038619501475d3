package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "attendance", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 2, cfg.Rebuild.GapThresholdMinutes)
	assert.Equal(t, []string{"0", "1"}, cfg.Rebuild.AllowedStatusCodes)
	assert.Equal(t, "tolerant", cfg.Rebuild.Policy)
	assert.Equal(t, "C", cfg.Rebuild.OvernightShiftCode)

	assert.Equal(t, "attendance:swipes", cfg.Stream.SwipeStream)
	assert.Equal(t, "attendance:records", cfg.Stream.RecordStream)
	assert.Equal(t, "attendance-rebuilder", cfg.Stream.ConsumerGroup)
	assert.Equal(t, int64(10), cfg.Stream.BatchSize)

	assert.Equal(t, "attendance:template:", cfg.Cache.TemplateKeyPrefix)
	assert.Equal(t, 300, cfg.Cache.TemplateTTL)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("REBUILD_GAP_MINUTES", "5")
	os.Setenv("REBUILD_ALLOWED_STATUS_CODES", "0, 1, 2")
	os.Setenv("REBUILD_POLICY", "strict")
	os.Setenv("REBUILD_OVERNIGHT_SHIFT", "N")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Rebuild.GapThresholdMinutes)
	assert.Equal(t, []string{"0", "1", "2"}, cfg.Rebuild.AllowedStatusCodes)
	assert.Equal(t, "strict", cfg.Rebuild.Policy)
	assert.Equal(t, "N", cfg.Rebuild.OvernightShiftCode)
	assert.Equal(t, "debug", cfg.Log.Level)

	os.Clearenv()
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "attendance", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=attendance sslmode=disable",
		c.GetDSN())
}

func TestGetEnvInt_Invalid(t *testing.T) {
	os.Setenv("REBUILD_GAP_MINUTES", "not-a-number")
	defer os.Unsetenv("REBUILD_GAP_MINUTES")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Rebuild.GapThresholdMinutes)
}
