package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "retail-ledger-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "stock.movements", cfg.Kafka.MovementsTopic)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 2*time.Second, cfg.Kafka.PublishTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 300*time.Second, cfg.Redis.PriceCacheTTL)
	assert.True(t, cfg.Policy.ReturnApprovalThreshold.Equal(decimal.NewFromInt(500000)))
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PRICE_CACHE_TTL_SECONDS", "60")
	t.Setenv("RETURN_APPROVAL_THRESHOLD", "250000.50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.PriceCacheTTL)
	assert.Equal(t, "250000.5", cfg.Policy.ReturnApprovalThreshold.String())
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("RETURN_APPROVAL_THRESHOLD", "mucho")

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/x?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
