package ai

import "context"

// Result holds the outcome of a successful embedding call.
// Vectors are returned in the same order as the input texts.
type Result struct {
	// Vectors contains one embedding per input text, in input order.
	Vectors [][]float32

	// Offline is true when the vectors were produced by the deterministic
	// offline embedder rather than a live provider. Callers must never mix
	// offline and provider vectors within one collection.
	Offline bool

	// Tokens is the token count attributed to this call, as reported by the
	// provider or approximated when the provider does not report usage.
	Tokens int
}

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts generates embeddings for multiple texts in a batch.
	// A single logical call may trigger several provider requests when the
	// input exceeds the provider's batch size; results are reassembled in
	// input order. On failure after exhausting retries it returns a
	// *ProviderError carrying the completed/failed item counts.
	EmbedTexts(ctx context.Context, texts []string) (*Result, error)

	// EmbedText generates an embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the fixed length of the vectors this embedder
	// produces.
	Dimension() int

	// Usage returns a snapshot of the running token and request counters.
	Usage() Usage
}
