package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/quillon/findry/ai"
	"github.com/quillon/findry/chunker"
	"github.com/quillon/findry/core"
	"github.com/quillon/findry/storage"
)

// Registry coordinates document indexing across collections. Each source
// type maps to one collection whose name is the source type string.
// Indexing a document replaces all of its previous chunks: partial
// updates never survive, so a document is always either fully indexed at
// one version or absent.
type Registry struct {
	backend  storage.Backend
	embedder ai.Embedder
	chunker  *chunker.Chunker
	pool     *ants.Pool
	logger   *slog.Logger

	mu sync.RWMutex
	// collections tracks every collection this registry has ensured.
	collections map[string]struct{}
	// docMeta holds per-document metadata keyed by collection then document ID.
	docMeta map[string]map[string]core.DocumentMetadata
	// chunkDocs resolves a chunk ID back to its document.
	chunkDocs map[string]chunkRef

	lockMu   sync.Mutex
	docLocks map[string]*sync.Mutex
}

type chunkRef struct {
	collection string
	documentID string
}

// Option configures a Registry.
type Option func(*Registry) error

// WithChunker sets a custom chunker. Default is chunker.New().
func WithChunker(c *chunker.Chunker) Option {
	return func(r *Registry) error {
		if c != nil {
			r.chunker = c
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for bulk indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Registry) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// New creates a registry over the given backend and embedder.
func New(backend storage.Backend, embedder ai.Embedder, opts ...Option) (*Registry, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		backend:     backend,
		embedder:    embedder,
		chunker:     chunker.New(),
		pool:        pool,
		logger:      slog.Default().With("component", "registry"),
		collections: make(map[string]struct{}),
		docMeta:     make(map[string]map[string]core.DocumentMetadata),
		chunkDocs:   make(map[string]chunkRef),
		docLocks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}

	// Rediscover collections already stored by a previous process, so
	// durable data stays searchable across restarts.
	infos, err := backend.ListCollections(context.Background())
	if err != nil {
		r.Release()
		return nil, err
	}
	for _, info := range infos {
		r.collections[info.Name] = struct{}{}
	}
	return r, nil
}

// Release frees the worker pool. The registry should not be used after
// calling Release.
func (r *Registry) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// IndexRequest describes one document to index.
type IndexRequest struct {
	SourceType core.SourceType
	DocumentID string
	Content    string
	Metadata   core.DocumentMetadata

	// MaxTokens and OverlapTokens override the chunker defaults when
	// positive.
	MaxTokens     int
	OverlapTokens int
}

// IndexResult reports the outcome of indexing one document.
type IndexResult struct {
	Collection    string
	DocumentID    string
	ChunksIndexed int

	// Offline is true when the chunk vectors came from the deterministic
	// offline embedder.
	Offline bool
}

// IndexDocument chunks, embeds and stores one document. Re-indexing the
// same document ID replaces every previously stored chunk. Concurrent
// calls for the same document are serialized; different documents index
// in parallel. Empty content removes the document's chunks entirely.
func (r *Registry) IndexDocument(ctx context.Context, req IndexRequest) (*IndexResult, error) {
	if err := core.ValidateIndexRequest(req.SourceType, req.DocumentID); err != nil {
		return nil, err
	}
	collection := string(req.SourceType)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = chunker.DefaultMaxTokens
	}
	overlap := req.OverlapTokens
	if overlap <= 0 {
		overlap = chunker.DefaultOverlapTokens
	}

	chunks, err := r.chunker.Chunk(req.Content, maxTokens, overlap)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].ID = core.ChunkIDFor(req.DocumentID, chunks[i].Ordinal)
		chunks[i].DocumentID = req.DocumentID
	}

	// Embed before touching storage so an embedding failure leaves the
	// previous version of the document fully searchable.
	var (
		items   []storage.Item
		offline bool
	)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		result, err := r.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		offline = result.Offline
		items = make([]storage.Item, len(chunks))
		for i, chunk := range chunks {
			items[i] = storage.Item{
				ID:     chunk.ID,
				Vector: result.Vectors[i],
				Payload: storage.Payload{
					DocumentID:  chunk.DocumentID,
					Title:       req.Metadata.Title,
					Ordinal:     chunk.Ordinal,
					TotalChunks: chunk.TotalChunks,
					Text:        chunk.Text,
					TokenCount:  chunk.TokenCount,
				},
			}
		}
	}

	unlock := r.lockDocument(collection, req.DocumentID)
	defer unlock()

	if err := r.backend.EnsureCollection(ctx, collection, r.embedder.Dimension()); err != nil {
		return nil, err
	}
	r.trackCollection(collection)

	if err := r.backend.DeleteByDocument(ctx, collection, req.DocumentID); err != nil {
		return nil, err
	}
	r.forgetDocument(collection, req.DocumentID)

	if len(items) > 0 {
		if err := r.backend.Upsert(ctx, collection, items); err != nil {
			// Leave no partial version behind. The document drops out of
			// search until a retry succeeds.
			if cleanupErr := r.backend.DeleteByDocument(ctx, collection, req.DocumentID); cleanupErr != nil {
				r.logger.Error("failed to clean up after partial upsert",
					"collection", collection,
					"document_id", req.DocumentID,
					"error", cleanupErr)
			}
			return nil, fmt.Errorf("upsert failed for document %s: %w", req.DocumentID, err)
		}
		r.rememberDocument(collection, req.DocumentID, req.Metadata, items)
	}

	r.logger.Debug("indexed document",
		"collection", collection,
		"document_id", req.DocumentID,
		"chunks", len(items),
		"offline", offline)

	return &IndexResult{
		Collection:    collection,
		DocumentID:    req.DocumentID,
		ChunksIndexed: len(items),
		Offline:       offline,
	}, nil
}

// IndexDocuments indexes a batch of documents concurrently on the worker
// pool. Per-document failures are collected; the returned error joins
// them all and the results slice holds an entry per successful document.
func (r *Registry) IndexDocuments(ctx context.Context, reqs []IndexRequest) ([]*IndexResult, error) {
	results := make([]*IndexResult, len(reqs))
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = r.IndexDocument(ctx, req)
		})
		if submitErr != nil {
			errs[i] = submitErr
			wg.Done()
		}
	}
	wg.Wait()

	var ok []*IndexResult
	for _, res := range results {
		if res != nil {
			ok = append(ok, res)
		}
	}
	return ok, errors.Join(errs...)
}

// RemoveDocument deletes every chunk of a document. Removing a document
// that was never indexed is not an error.
func (r *Registry) RemoveDocument(ctx context.Context, sourceType core.SourceType, documentID string) error {
	if err := core.ValidateIndexRequest(sourceType, documentID); err != nil {
		return err
	}
	collection := string(sourceType)

	unlock := r.lockDocument(collection, documentID)
	defer unlock()

	if err := r.backend.DeleteByDocument(ctx, collection, documentID); err != nil {
		return err
	}
	r.forgetDocument(collection, documentID)
	return nil
}

// ListCollections reports every collection the registry has created,
// sorted by name, with live chunk counts from the backend.
func (r *Registry) ListCollections(ctx context.Context) ([]*storage.CollectionInfo, error) {
	r.mu.RLock()
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	infos := make([]*storage.CollectionInfo, 0, len(names))
	for _, name := range names {
		info, err := r.backend.CollectionInfo(ctx, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ActiveCollections returns the collection names to search for the given
// source types. An empty slice selects every known collection.
func (r *Registry) ActiveCollections(sourceTypes []core.SourceType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	if len(sourceTypes) == 0 {
		for name := range r.collections {
			names = append(names, name)
		}
	} else {
		for _, st := range sourceTypes {
			if _, ok := r.collections[string(st)]; ok {
				names = append(names, string(st))
			}
		}
	}
	sort.Strings(names)
	return names
}

// ResolveMetadata returns the document ID and metadata for a chunk.
func (r *Registry) ResolveMetadata(chunkID string) (string, core.DocumentMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.chunkDocs[chunkID]
	if !ok {
		return "", core.DocumentMetadata{}, false
	}
	meta := r.docMeta[ref.collection][ref.documentID]
	return ref.documentID, meta, true
}

// DocumentVector fetches the stored vector of a document's first chunk,
// used to seed similarity search.
func (r *Registry) DocumentVector(ctx context.Context, sourceType core.SourceType, documentID string) ([]float32, error) {
	if err := core.ValidateIndexRequest(sourceType, documentID); err != nil {
		return nil, err
	}
	collection := string(sourceType)

	items, err := r.backend.Get(ctx, collection, []string{core.ChunkIDFor(documentID, 0)})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrDocumentNotFound, documentID, collection)
	}
	return items[0].Vector, nil
}

// lockDocument serializes operations on one document. The returned
// function releases the lock.
func (r *Registry) lockDocument(collection, documentID string) func() {
	key := collection + "\x00" + documentID
	r.lockMu.Lock()
	lock, ok := r.docLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.docLocks[key] = lock
	}
	r.lockMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (r *Registry) trackCollection(collection string) {
	r.mu.Lock()
	r.collections[collection] = struct{}{}
	r.mu.Unlock()
}

// rememberDocument records metadata and the chunk-to-document mapping for
// a freshly indexed version.
func (r *Registry) rememberDocument(collection, documentID string, meta core.DocumentMetadata, items []storage.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.docMeta[collection] == nil {
		r.docMeta[collection] = make(map[string]core.DocumentMetadata)
	}
	r.docMeta[collection][documentID] = meta
	for _, item := range items {
		r.chunkDocs[item.ID] = chunkRef{collection: collection, documentID: documentID}
	}
}

// forgetDocument drops metadata and chunk mappings of a removed version.
func (r *Registry) forgetDocument(collection, documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.docMeta[collection], documentID)
	for chunkID, ref := range r.chunkDocs {
		if ref.collection == collection && ref.documentID == documentID {
			delete(r.chunkDocs, chunkID)
		}
	}
}
