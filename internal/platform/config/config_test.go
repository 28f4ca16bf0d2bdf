package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CARBONLEDGER_ADDR", "")
	t.Setenv("LEVY_CARBON_PRICE_EUR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 85.0, cfg.LevyPriceEUR)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CARBONLEDGER_ADDR", ":9090")
	t.Setenv("LEVY_CARBON_PRICE_EUR", "92.5")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/carbonledger")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 92.5, cfg.LevyPriceEUR)
	assert.Equal(t, "postgres://localhost/carbonledger", cfg.Postgres.DSN)
}

func TestFromEnvIgnoresBadLevyPrice(t *testing.T) {
	t.Setenv("LEVY_CARBON_PRICE_EUR", "-10")
	assert.Equal(t, 85.0, FromEnv().LevyPriceEUR)

	t.Setenv("LEVY_CARBON_PRICE_EUR", "free")
	assert.Equal(t, 85.0, FromEnv().LevyPriceEUR)
}

func TestFromEnvKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092,broker-a:9092,")
	t.Setenv("KAFKA_AUDIT_TOPIC", "")

	cfg := FromEnv()

	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "carbonledger.audit", cfg.Kafka.Topic)
}
