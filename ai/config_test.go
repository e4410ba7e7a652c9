package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.False(t, cfg.Offline)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("https://api.openai.com"),
		WithModel("text-embedding-3-small"),
		WithDimension(1536),
		WithBatchSize(32),
		WithRetryPolicy(5, time.Second),
		WithOffline(false),
	)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api.openai.com/v1", cfg.Host) // normalized
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, 1536, cfg.Dimension)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("strips trailing slash before adding", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("leaves v1 suffix alone", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithHost(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("offline mode does not require host or model", func(t *testing.T) {
		cfg := NewConfig(WithOffline(true), WithHost(""), WithModel(""))
		assert.NoError(t, cfg.Validate())
	})

	t.Run("non-positive dimension", func(t *testing.T) {
		cfg := NewConfig(WithDimension(0))
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive batch size", func(t *testing.T) {
		cfg := NewConfig(WithBatchSize(-1))
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive retries", func(t *testing.T) {
		cfg := NewConfig(WithRetryPolicy(0, time.Second))
		assert.Error(t, cfg.Validate())
	})
}
