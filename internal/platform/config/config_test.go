package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"TROUWEN_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "TROUWEN_PUBLIC_URL", "CATALOG_CACHE_TTL"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "trouwen.audit.log", cfg.Kafka.Topic)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "http://trouwen.demo.zaakonline.nl", cfg.PublicBaseURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TROUWEN_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("TROUWEN_PUBLIC_URL", "https://trouwen.example.nl/")
	t.Setenv("TROUWEN_DEV_MODE", "true")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "https://trouwen.example.nl", cfg.PublicBaseURL)
	assert.True(t, cfg.DevMode)
}
