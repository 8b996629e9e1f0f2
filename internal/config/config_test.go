package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9091", cfg.Port)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("CORS_ORIGINS", "http://x,http://y")
	t.Setenv("CART_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"http://x", "http://y"}, cfg.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.CartTTL)
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("DB_DRIVER", "dynamo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}
