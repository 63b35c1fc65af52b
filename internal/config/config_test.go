package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DATABASE", "equirecords")
	t.Setenv("DB_USER", "equi")
	t.Setenv("AUTHZ_URL", "http://authorizer:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBType)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.Equal(t, "public", cfg.UploadDir)
	assert.Equal(t, 20, cfg.MaxUploadMB)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "horse-status", cfg.KafkaStatusTopic)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("DASHBOARD_CACHE_TTL", "2m")
	t.Setenv("DB_CONNECTION_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
}

func TestLoadRequiresDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DATABASE", "")

	_, err := Load()
	assert.EqualError(t, err, "DB_DATABASE is required")
}

func TestLoadSQLiteWithoutUser(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_USER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBType)
}
