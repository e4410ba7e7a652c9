package storage

import (
	"context"
	"math"
)

// Health describes a backend's availability.
type Health int

const (
	// HealthHealthy means the backend serves all operations normally.
	HealthHealthy Health = iota
	// HealthDegraded means the backend serves operations through a
	// fallback with reduced guarantees (no persistence).
	HealthDegraded
	// HealthUnavailable means the backend cannot serve operations.
	HealthUnavailable
)

// String returns the wire representation of the health state.
func (h Health) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthDegraded:
		return "degraded"
	case HealthUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Payload carries the chunk attributes stored alongside each vector.
// It is an explicit typed record; raw provider maps never enter storage.
type Payload struct {
	DocumentID  string
	Title       string
	Ordinal     int
	TotalChunks int
	Text        string
	TokenCount  int
}

// Item is a stored vector with its identity and payload.
type Item struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Hit is one ranked result of a nearest-neighbor query.
// Score is cosine similarity normalized to [0,1].
type Hit struct {
	ID      string
	Score   float32
	Payload Payload
}

// Filter restricts a query to a subset of stored items.
// A nil filter matches everything.
type Filter struct {
	// DocumentIDs limits hits to chunks of these documents when non-empty.
	DocumentIDs []string

	// ExcludeDocumentIDs drops chunks of these documents.
	ExcludeDocumentIDs []string
}

// CollectionInfo reports the durable facts about one collection.
type CollectionInfo struct {
	Name       string
	Exists     bool
	ChunkCount int
	VectorDim  int
}

// Backend is the uniform capability interface over a vector store.
// Implementations must be thread-safe and support concurrent access.
type Backend interface {
	// EnsureCollection creates the collection if it does not exist.
	// Idempotent; concurrent creation attempts are tolerated. Returns a
	// *DimensionMismatchError if the collection exists with a different
	// vector dimension.
	EnsureCollection(ctx context.Context, name string, vectorDim int) error

	// DeleteCollection removes a collection and all of its items.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// CollectionInfo reports existence, chunk count and vector dimension.
	// A missing collection yields Exists=false, not an error.
	CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)

	// ListCollections enumerates every stored collection with its chunk
	// count and vector dimension, so callers can rediscover durable
	// state after a restart.
	ListCollections(ctx context.Context) ([]CollectionInfo, error)

	// Upsert stores the items, replacing any existing items with the same
	// ID. Returns a *DimensionMismatchError if an item's vector length does
	// not match the collection dimension, without storing any item of the
	// batch. Returns ErrCollectionNotFound for a missing collection.
	Upsert(ctx context.Context, collection string, items []Item) error

	// Get retrieves items by ID. Missing IDs are skipped without error.
	Get(ctx context.Context, collection string, ids []string) ([]Item, error)

	// DeleteByDocument removes all chunks of a document. Removing a
	// document with no stored chunks is not an error.
	DeleteByDocument(ctx context.Context, collection, documentID string) error

	// Query returns up to topK items ranked by cosine similarity to the
	// vector, normalized to [0,1] via (cosine+1)/2. Ties break by item ID
	// ascending for determinism.
	Query(ctx context.Context, collection string, vector []float32, topK int, filter *Filter) ([]Hit, error)

	// Health reports the backend's availability.
	Health(ctx context.Context) Health

	// Close releases resources held by the backend.
	Close() error
}

// CosineScore converts a cosine similarity in [-1,1] to the normalized
// [0,1] score all backends report.
func CosineScore(cosine float32) float32 {
	score := (cosine + 1) / 2
	// Clamp against float drift at the boundaries
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Cosine computes the cosine similarity between two vectors of equal
// length. Vectors need not be normalized. A zero vector yields 0.
func Cosine(a, b []float32) float32 {
	var dot, normA, normB float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (sqrt32(normA) * sqrt32(normB))
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
