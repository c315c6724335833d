package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.DB.Enabled())
	assert.Equal(t, int64(100), cfg.Logistics.AuthorizationThreshold)
	assert.Equal(t, 2*time.Second, cfg.Logistics.LockTimeout)
	assert.Equal(t, "memory", cfg.Logistics.Locker)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("DB_HOST", "db")
	v.Set("DB_PASSWORD", "p@ss/word")
	v.Set("LOGISTICS_AUTH_THRESHOLD", "250")
	v.Set("LOGISTICS_LOCK_TIMEOUT", "750")
	v.Set("LOGISTICS_BUSY_BACKOFF", "20ms")
	v.Set("LOGISTICS_BUSY_RETRIES", "-4")
	v.Set("LOGISTICS_STOCKABLE_CONDITIONS", "GOOD, NEAR_EXPIRY,")
	v.Set("LOGISTICS_LOCKER", "REDIS")
	v.Set("REDIS_ADDR", "redis:6379")
	v.Set("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, "postgres://postgres:p%40ss%2Fword@db:5432/farmacia?sslmode=disable", cfg.DB.ConnectionString())
	assert.Equal(t, int64(250), cfg.Logistics.AuthorizationThreshold)
	assert.Equal(t, 750*time.Millisecond, cfg.Logistics.LockTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Logistics.BusyBackoff)
	assert.Zero(t, cfg.Logistics.BusyRetries)
	assert.Equal(t, []string{"GOOD", "NEAR_EXPIRY"}, cfg.Logistics.StockableConditions)
	assert.Equal(t, "redis", cfg.Logistics.Locker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestFromViper_DatabaseURLTienePrioridad(t *testing.T) {
	v := viper.New()
	v.Set("DATABASE_URL", "postgres://u:p@h:1/d")
	v.Set("DB_HOST", "ignorado")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h:1/d", cfg.DB.ConnectionString())
}

func TestFromViper_Errores(t *testing.T) {
	v := viper.New()
	v.Set("LOGISTICS_LOCKER", "etcd")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("LOGISTICS_LOCKER", "redis")
	_, err = fromViper(v)
	assert.ErrorContains(t, err, "REDIS_ADDR")
}
