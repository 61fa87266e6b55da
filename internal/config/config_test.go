package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "PREDICT_TIMEOUT", "STORE_DRIVER", "MODEL_URL", "NUMERIC_FIELDS", "MISSING_CAT"} {
		t.Setenv(key, "")
	}
	c := Load()

	assert.Equal(t, "8080", c.HTTPPort)
	assert.Equal(t, 10*time.Second, c.PredictTimeout)
	assert.Equal(t, StoreSQLite, c.StoreDriver)
	assert.Equal(t, "__MISSING__", c.Model.MissingToken)
	assert.False(t, c.Model.IsRemote())
	assert.Empty(t, c.Model.NumericFields)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PREDICT_TIMEOUT", "3")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MODEL_URL", "http://models:8000")
	t.Setenv("MODEL_TIMEOUT_MS", "250")
	t.Setenv("NUMERIC_FIELDS", "minute, vma ,")
	t.Setenv("REDIS_URI", "redis://cache:6379")

	c := Load()
	assert.Equal(t, "9000", c.HTTPPort)
	assert.Equal(t, 3*time.Second, c.PredictTimeout)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Equal(t, StoreMongo, c.StoreDriver)
	assert.True(t, c.Model.IsRemote())
	assert.Equal(t, 250*time.Millisecond, c.Model.Timeout())
	assert.Equal(t, []string{"minute", "vma"}, c.Model.NumericFields)
	assert.Equal(t, "cache:6379", c.RedisAddr())
}

func TestNewLogger(t *testing.T) {
	c := &Config{LogLevel: "debug"}
	logger, err := c.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	c.LogLevel = "chatty"
	_, err = c.NewLogger()
	assert.Error(t, err)
}
