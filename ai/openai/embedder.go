package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quillon/findry/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder  embeddings.Embedder
	dimension int
	batchSize int
	config    *ai.Config
	usage     ai.UsageCounter
	logger    *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder. Provider-side batching is disabled so
	// batch boundaries stay under this package's control.
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(config.BatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:  embedder,
		dimension: config.Dimension,
		batchSize: config.BatchSize,
		config:    config,
		logger:    slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedTexts generates vector embeddings for multiple texts, splitting the
// input into provider-sized batches and reassembling results in input order.
// Each batch is retried with exponential backoff; after retries are
// exhausted the whole call fails with a *ai.ProviderError carrying the
// completed/failed counts so the caller can retry the failed subset.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) (*ai.Result, error) {
	if len(texts) == 0 {
		return &ai.Result{Vectors: [][]float32{}}, nil
	}

	e.logger.Debug("generating embeddings", "count", len(texts))

	vectors := make([][]float32, 0, len(texts))
	completed := 0

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var batchVectors [][]float32
		err := ai.RetryWithBackoff(ctx, func() error {
			e.usage.AddRequest()
			var err error
			batchVectors, err = e.embedder.EmbedDocuments(ctx, batch)
			return err
		}, e.config.MaxRetries, e.config.RetryBaseDelay)

		if err != nil {
			e.usage.AddFailure()
			e.logger.Error("embedding batch failed", "completed", completed, "failed", len(texts)-completed, "err", err)
			return nil, &ai.ProviderError{
				Completed: completed,
				Failed:    len(texts) - completed,
				Attempts:  e.config.MaxRetries,
				Err:       err,
			}
		}

		if len(batchVectors) != len(batch) {
			e.usage.AddFailure()
			return nil, &ai.ProviderError{
				Completed: completed,
				Failed:    len(texts) - completed,
				Attempts:  e.config.MaxRetries,
				Err:       fmt.Errorf("embedding result mismatch: expected %d, received %d", len(batch), len(batchVectors)),
			}
		}

		vectors = append(vectors, batchVectors...)
		completed += len(batch)
	}

	// The embeddings API does not report usage through langchaingo, so the
	// counter carries a whitespace approximation.
	tokens := ai.ApproximateTokens(texts)
	e.usage.AddTokens(tokens)

	return &ai.Result{Vectors: vectors, Tokens: tokens}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	result, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(result.Vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}
	return result.Vectors[0], nil
}

// Dimension returns the configured vector dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Usage returns a snapshot of the running token and request counters.
func (e *Embedder) Usage() ai.Usage {
	return e.usage.Snapshot()
}
