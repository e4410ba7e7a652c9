package offline

import (
	"context"
	"math"
	"testing"

	"github.com/quillon/findry/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(t *testing.T) ai.Embedder {
	t.Helper()
	embedder, err := NewEmbedder(ai.NewConfig(ai.WithOffline(true), ai.WithDimension(64)))
	require.NoError(t, err)
	return embedder
}

func TestEmbedText_Deterministic(t *testing.T) {
	embedder := newTestEmbedder(t)
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "x")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "x")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestEmbedText_DistinctTexts(t *testing.T) {
	embedder := newTestEmbedder(t)
	ctx := context.Background()

	a, err := embedder.EmbedText(ctx, "redis caching")
	require.NoError(t, err)
	b, err := embedder.EmbedText(ctx, "postgres indexing")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEmbedTexts_FlaggedOffline(t *testing.T) {
	embedder := newTestEmbedder(t)

	result, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, result.Offline)
	assert.Len(t, result.Vectors, 2)
	assert.Positive(t, result.Tokens)
}

func TestEmbedText_UnitLength(t *testing.T) {
	embedder := newTestEmbedder(t)

	vector, err := embedder.EmbedText(context.Background(), "normalize me")
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
}

func TestEmbedTexts_CancelledContext(t *testing.T) {
	embedder := newTestEmbedder(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := embedder.EmbedTexts(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUsageAccumulates(t *testing.T) {
	embedder := newTestEmbedder(t)
	ctx := context.Background()

	_, err := embedder.EmbedTexts(ctx, []string{"one two three", "four"})
	require.NoError(t, err)

	usage := embedder.Usage()
	assert.Equal(t, int64(1), usage.Requests)
	assert.Equal(t, int64(4), usage.Tokens)
}
