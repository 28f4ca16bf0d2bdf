package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "carbonledger/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr         string
	Postgres     PostgresConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	LevyPriceEUR float64
}

// PostgresConfig holds the ledger database settings.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds settings for the carbon price cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event sink. Empty brokers means
// the sink is disabled.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CARBONLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	levyPrice := 85.0
	if v := os.Getenv("LEVY_CARBON_PRICE_EUR"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			levyPrice = parsed
		}
	}

	cfg := Server{
		Addr: addr,
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		LevyPriceEUR: levyPrice,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = KafkaConfig{
			Brokers: pstrings.DedupeAndTrim(strings.Split(brokers, ",")),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "carbonledger.audit"),
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
