package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "booking.events", cfg.KafkaBookingTopic)
	assert.False(t, cfg.OverlapSkipRejected)
}

func TestFromEnvPostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestFromEnvRequiresJWTSecret(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/shareit")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BOOKING_OVERLAP_SKIP_REJECTED", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.OverlapSkipRejected)
}

func TestFromEnvInvalidValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")

	t.Run("bad driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("JWT_ACCESS_TOKEN_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "JWT_ACCESS_TOKEN_TTL")
	})

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("BOOKING_OVERLAP_SKIP_REJECTED", "maybe")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "BOOKING_OVERLAP_SKIP_REJECTED")
	})
}

func TestFromEnvMemorySeedFile(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MEMORY_SEED_FILE", "seed.json")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "seed.json", cfg.MemorySeedFile)
}
