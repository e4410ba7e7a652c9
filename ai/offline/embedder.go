package offline

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"

	"github.com/go-crypt/x/blake2b"
	"github.com/quillon/findry/ai"
)

// Embedder implements ai.Embedder without a live provider. It derives a
// deterministic pseudo-embedding from a BLAKE2b hash of the input text:
// the same text always produces the same unit-length vector. Every Result
// it returns is flagged Offline so callers never conflate these vectors
// with real provider output.
type Embedder struct {
	dimension int
	usage     ai.UsageCounter
	logger    *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Embedder{
		dimension: config.Dimension,
		logger:    slog.Default().With("component", "offline-embedder"),
	}, nil
}

// NewEmbedder creates an offline embedder using the provided configuration.
// Only the Dimension field is consulted.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) (*ai.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, e.dimension)
	}

	tokens := ai.ApproximateTokens(texts)
	e.usage.AddRequest()
	e.usage.AddTokens(tokens)

	return &ai.Result{Vectors: vectors, Offline: true, Tokens: tokens}, nil
}

// EmbedText generates a deterministic embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	result, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
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

// deterministicVector creates a pseudo-embedding from text. A BLAKE2b hash
// of the text seeds a linear congruential generator that fills the vector,
// which is then normalized to unit length for cosine similarity.
func deterministicVector(text string, dim int) []float32 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	seed := binary.LittleEndian.Uint64(h.Sum(nil))

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		// Map to [-1,1) so vectors spread across the whole sphere
		vector[i] = float32(int64(seed%2000)-1000) / 1000.0
	}

	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(float64(sumSquares)))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
