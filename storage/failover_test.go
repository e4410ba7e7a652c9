package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/findry/storage"
	"github.com/quillon/findry/storage/memory"
)

// unavailableBackend fails every operation with ErrBackendUnavailable.
type unavailableBackend struct{}

func (unavailableBackend) EnsureCollection(ctx context.Context, name string, vectorDim int) error {
	return storage.ErrBackendUnavailable
}

func (unavailableBackend) DeleteCollection(ctx context.Context, name string) error {
	return storage.ErrBackendUnavailable
}

func (unavailableBackend) CollectionInfo(ctx context.Context, name string) (*storage.CollectionInfo, error) {
	return nil, storage.ErrBackendUnavailable
}

func (unavailableBackend) ListCollections(ctx context.Context) ([]storage.CollectionInfo, error) {
	return nil, storage.ErrBackendUnavailable
}

func (unavailableBackend) Upsert(ctx context.Context, collection string, items []storage.Item) error {
	return storage.ErrBackendUnavailable
}

func (unavailableBackend) Get(ctx context.Context, collection string, ids []string) ([]storage.Item, error) {
	return nil, storage.ErrBackendUnavailable
}

func (unavailableBackend) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	return storage.ErrBackendUnavailable
}

func (unavailableBackend) Query(ctx context.Context, collection string, vector []float32, topK int, filter *storage.Filter) ([]storage.Hit, error) {
	return nil, storage.ErrBackendUnavailable
}

func (unavailableBackend) Health(ctx context.Context) storage.Health {
	return storage.HealthUnavailable
}

func (unavailableBackend) Close() error { return nil }

func TestFailover_HealthyPrimary(t *testing.T) {
	primary := memory.NewBackend()
	fallback := memory.NewBackend()
	f := storage.NewFailover(primary, fallback)
	defer f.Close()

	ctx := context.Background()
	require.NoError(t, f.EnsureCollection(ctx, "wiki-page", 3))

	assert.False(t, f.Degraded())
	assert.Equal(t, storage.HealthHealthy, f.Health(ctx))

	// The write landed on the primary, not the fallback.
	info, err := primary.CollectionInfo(ctx, "wiki-page")
	require.NoError(t, err)
	assert.True(t, info.Exists)

	info, err = fallback.CollectionInfo(ctx, "wiki-page")
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestFailover_SwitchesOnUnavailable(t *testing.T) {
	fallback := memory.NewBackend()
	f := storage.NewFailover(unavailableBackend{}, fallback)
	defer f.Close()

	ctx := context.Background()

	// The first failing call degrades the wrapper and retries on the
	// fallback transparently.
	require.NoError(t, f.EnsureCollection(ctx, "ticket", 3))
	assert.True(t, f.Degraded())
	assert.Equal(t, storage.HealthDegraded, f.Health(ctx))

	// Subsequent operations serve from the fallback.
	items := []storage.Item{{
		ID:      "chunk-1",
		Vector:  []float32{1, 0, 0},
		Payload: storage.Payload{DocumentID: "doc-1", TotalChunks: 1, Text: "hello"},
	}}
	require.NoError(t, f.Upsert(ctx, "ticket", items))

	hits, err := f.Query(ctx, "ticket", []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-1", hits[0].ID)
}

func TestFailover_StructuralErrorPassesThrough(t *testing.T) {
	primary := memory.NewBackend()
	fallback := memory.NewBackend()
	f := storage.NewFailover(primary, fallback)
	defer f.Close()

	ctx := context.Background()
	require.NoError(t, f.EnsureCollection(ctx, "wiki-page", 3))

	// A dimension conflict is a caller error and must not flip the
	// wrapper into degraded mode.
	err := f.EnsureCollection(ctx, "wiki-page", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	assert.False(t, f.Degraded())
	assert.Equal(t, storage.HealthHealthy, f.Health(ctx))
}
