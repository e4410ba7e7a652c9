package mock

import (
	"context"

	"github.com/quillon/findry/ai"
	"github.com/quillon/findry/ai/offline"
)

// Embedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields; when a field is
// nil the call is delegated to an offline deterministic embedder.
type Embedder struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	EmbedTextsFunc func(ctx context.Context, texts []string) (*ai.Result, error)

	// EmbedTextFunc is called by EmbedText if set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	fallback  ai.Embedder
	dimension int
	callCount int
}

// NewEmbedder creates a mock embedder with deterministic default behavior.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewEmbedder(dimension int) *Embedder {
	fallback, err := offline.NewEmbedder(ai.NewConfig(ai.WithOffline(true), ai.WithDimension(dimension)))
	if err != nil {
		panic(err) // config is fully controlled here
	}
	return &Embedder{
		fallback:  fallback,
		dimension: dimension,
	}
}

// EmbedTexts returns injected behavior or deterministic offline vectors.
func (m *Embedder) EmbedTexts(ctx context.Context, texts []string) (*ai.Result, error) {
	m.callCount++
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	return m.fallback.EmbedTexts(ctx, texts)
}

// EmbedText returns injected behavior or a deterministic offline vector.
func (m *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return m.fallback.EmbedText(ctx, text)
}

// Dimension returns the configured vector dimension.
func (m *Embedder) Dimension() int {
	return m.dimension
}

// Usage returns the fallback embedder's counters.
func (m *Embedder) Usage() ai.Usage {
	return m.fallback.Usage()
}

// CallCount returns the number of times any embed method was called.
func (m *Embedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *Embedder) Reset() {
	m.callCount = 0
	m.EmbedTextsFunc = nil
	m.EmbedTextFunc = nil
}
