package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/quillon/findry/storage"
)

// Backend is a map-backed vector store. It implements storage.Backend
// with full query semantics and serves two roles: the test double for
// storage-dependent packages and the degraded-mode fallback behind the
// failover wrapper.
type Backend struct {
	mu          sync.RWMutex
	collections map[string]*collection
	closed      bool
}

type collection struct {
	dim   int
	items map[string]storage.Item
	// byDoc indexes chunk IDs by document for DeleteByDocument.
	byDoc map[string]map[string]struct{}
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{collections: make(map[string]*collection)}
}

func (b *Backend) EnsureCollection(ctx context.Context, name string, vectorDim int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return storage.ErrStorageClosed
	}
	if col, ok := b.collections[name]; ok {
		if col.dim != vectorDim {
			return &storage.DimensionMismatchError{Collection: name, Expected: col.dim, Actual: vectorDim}
		}
		return nil
	}
	b.collections[name] = &collection{
		dim:   vectorDim,
		items: make(map[string]storage.Item),
		byDoc: make(map[string]map[string]struct{}),
	}
	return nil
}

func (b *Backend) DeleteCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return storage.ErrStorageClosed
	}
	delete(b.collections, name)
	return nil
}

func (b *Backend) CollectionInfo(ctx context.Context, name string) (*storage.CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, storage.ErrStorageClosed
	}
	col, ok := b.collections[name]
	if !ok {
		return &storage.CollectionInfo{Name: name}, nil
	}
	return &storage.CollectionInfo{
		Name:       name,
		Exists:     true,
		ChunkCount: len(col.items),
		VectorDim:  col.dim,
	}, nil
}

func (b *Backend) ListCollections(ctx context.Context) ([]storage.CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, storage.ErrStorageClosed
	}
	infos := make([]storage.CollectionInfo, 0, len(b.collections))
	for name, col := range b.collections {
		infos = append(infos, storage.CollectionInfo{
			Name:       name,
			Exists:     true,
			ChunkCount: len(col.items),
			VectorDim:  col.dim,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (b *Backend) Upsert(ctx context.Context, collectionName string, items []storage.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return storage.ErrStorageClosed
	}
	col, ok := b.collections[collectionName]
	if !ok {
		return storage.ErrCollectionNotFound
	}
	// Validate the whole batch before touching the maps so a mismatch
	// stores nothing.
	for _, item := range items {
		if len(item.Vector) != col.dim {
			return &storage.DimensionMismatchError{
				Collection: collectionName,
				Expected:   col.dim,
				Actual:     len(item.Vector),
			}
		}
	}
	for _, item := range items {
		if prev, ok := col.items[item.ID]; ok {
			col.unindex(prev)
		}
		col.items[item.ID] = item
		col.index(item)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, collectionName string, ids []string) ([]storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, storage.ErrStorageClosed
	}
	col, ok := b.collections[collectionName]
	if !ok {
		return nil, storage.ErrCollectionNotFound
	}
	items := make([]storage.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := col.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (b *Backend) DeleteByDocument(ctx context.Context, collectionName, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return storage.ErrStorageClosed
	}
	col, ok := b.collections[collectionName]
	if !ok {
		return nil
	}
	for id := range col.byDoc[documentID] {
		delete(col.items, id)
	}
	delete(col.byDoc, documentID)
	return nil
}

func (b *Backend) Query(ctx context.Context, collectionName string, vector []float32, topK int, filter *storage.Filter) ([]storage.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, storage.ErrStorageClosed
	}
	col, ok := b.collections[collectionName]
	if !ok {
		return nil, storage.ErrCollectionNotFound
	}
	if topK <= 0 {
		return nil, nil
	}

	hits := make([]storage.Hit, 0, len(col.items))
	for _, item := range col.items {
		if !matches(filter, item.Payload.DocumentID) {
			continue
		}
		hits = append(hits, storage.Hit{
			ID:      item.ID,
			Score:   storage.CosineScore(storage.Cosine(vector, item.Vector)),
			Payload: item.Payload,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (b *Backend) Health(ctx context.Context) storage.Health {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return storage.HealthUnavailable
	}
	return storage.HealthHealthy
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.collections = nil
	return nil
}

func (c *collection) index(item storage.Item) {
	doc := item.Payload.DocumentID
	if c.byDoc[doc] == nil {
		c.byDoc[doc] = make(map[string]struct{})
	}
	c.byDoc[doc][item.ID] = struct{}{}
}

func (c *collection) unindex(item storage.Item) {
	doc := item.Payload.DocumentID
	delete(c.byDoc[doc], item.ID)
	if len(c.byDoc[doc]) == 0 {
		delete(c.byDoc, doc)
	}
}

func matches(f *storage.Filter, documentID string) bool {
	if f == nil {
		return true
	}
	for _, excluded := range f.ExcludeDocumentIDs {
		if documentID == excluded {
			return false
		}
	}
	if len(f.DocumentIDs) == 0 {
		return true
	}
	for _, wanted := range f.DocumentIDs {
		if documentID == wanted {
			return true
		}
	}
	return false
}
