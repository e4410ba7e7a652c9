// Copyright 2025 Quillon Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for embedding providers.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string

	// Dimension is the vector length the provider produces for Model.
	// Example: 1536 for text-embedding-3-small
	Dimension int

	// BatchSize is the maximum number of texts sent in one provider request.
	// Larger inputs are split transparently.
	// Default: 64
	BatchSize int

	// MaxRetries is the maximum number of attempts per provider request.
	// Default: 3
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff between
	// attempts. Default: 500ms
	RetryBaseDelay time.Duration

	// Offline selects the deterministic hash-derived embedder instead of a
	// live provider. Intended for development and tests.
	Offline bool
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithDimension sets the expected vector dimension.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithBatchSize sets the provider batch size limit.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithRetryPolicy sets the retry attempt limit and base backoff delay.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryBaseDelay = baseDelay
	}
}

// WithOffline enables or disables offline mode.
func WithOffline(offline bool) ConfigOption {
	return func(c *Config) {
		c.Offline = offline
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible embedding service.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		Model:          "embeddinggemma",
		Dimension:      768,
		BatchSize:      64,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("https://api.openai.com/v1"),
//	    ai.WithModel("text-embedding-3-small"),
//	    ai.WithDimension(1536),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the host if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !c.Offline && c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if !c.Offline && c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Dimension <= 0 {
		return errors.New("ai config: Dimension must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("ai config: BatchSize must be positive")
	}
	if c.MaxRetries <= 0 {
		return errors.New("ai config: MaxRetries must be positive")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("ai config: RetryBaseDelay must be positive")
	}
	return nil
}
