package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/quillon/findry/ai"
	"github.com/quillon/findry/core"
	"github.com/quillon/findry/registry"
	"github.com/quillon/findry/storage"
)

const (
	// DefaultTopK is the result limit applied when a request leaves it unset.
	DefaultTopK = 10

	// DefaultSemanticWeight and DefaultKeywordWeight blend the two
	// relevance signals into the combined score.
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3

	// DefaultOverfetchFactor controls how many candidates each collection
	// returns relative to the requested limit, so fusion and per-document
	// dedup still have enough material to fill topK.
	DefaultOverfetchFactor = 3

	minOverfetchFactor = 2
)

// Searcher runs hybrid semantic and keyword search across collections.
type Searcher struct {
	registry       *registry.Registry
	backend        storage.Backend
	embedder       ai.Embedder
	semanticWeight float32
	keywordWeight  float32
	overfetch      int
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWeights overrides the semantic/keyword blend. Weights are
// normalized so they always sum to 1.
func WithWeights(semantic, keyword float32) Option {
	return func(s *Searcher) error {
		total := semantic + keyword
		if total <= 0 {
			return nil
		}
		s.semanticWeight = semantic / total
		s.keywordWeight = keyword / total
		return nil
	}
}

// WithOverfetchFactor sets the per-collection candidate multiplier.
// Values below 2 are clamped to 2.
func WithOverfetchFactor(factor int) Option {
	return func(s *Searcher) error {
		if factor < minOverfetchFactor {
			factor = minOverfetchFactor
		}
		s.overfetch = factor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(reg *registry.Registry, backend storage.Backend, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		registry:       reg,
		backend:        backend,
		embedder:       embedder,
		semanticWeight: DefaultSemanticWeight,
		keywordWeight:  DefaultKeywordWeight,
		overfetch:      DefaultOverfetchFactor,
		logger:         slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Request describes one search.
type Request struct {
	Query       string
	SourceTypes []core.SourceType // empty means every collection
	TopK        int               // defaults to DefaultTopK when zero
	MinScore    float32           // floor on the combined score

	// HybridEnabled toggles the keyword signal. Unset means enabled;
	// when disabled the combined score is the semantic score alone.
	HybridEnabled *bool

	// AllChunks returns every matching chunk instead of collapsing to
	// the best chunk per document.
	AllChunks bool
}

func (r Request) hybrid() bool {
	return r.HybridEnabled == nil || *r.HybridEnabled
}

// CollectionError reports a collection that failed to answer a search.
type CollectionError struct {
	Collection string
	Err        error
}

// Response carries ranked results plus the per-collection outcome of the
// fan-out, so callers can tell a complete answer from a partial one.
type Response struct {
	Results             []core.SearchResult
	TotalResults        int
	CollectionsSearched []string
	CollectionsErrored  []CollectionError
	Elapsed             time.Duration
}

// Search runs the query across the selected collections concurrently and
// fuses the per-collection hits into one ranking. Collections that fail
// are reported in the response; the call only errors when validation
// fails, the query cannot be embedded, or every collection failed.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor is Search with observation hooks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor Monitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	start := time.Now()

	if req.TopK == 0 {
		req.TopK = DefaultTopK
	}
	if err := core.ValidateSearchRequest(req.Query, req.TopK, req.MinScore, req.SourceTypes); err != nil {
		return nil, err
	}

	collections := s.registry.ActiveCollections(req.SourceTypes)
	monitor.Start(req.Query, collections)
	if len(collections) == 0 {
		resp := &Response{Results: []core.SearchResult{}, Elapsed: time.Since(start)}
		monitor.Finish(resp.Results)
		return resp, nil
	}

	vector, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(vector))

	searched, errored, hits := s.fanOut(ctx, collections, vector, req.TopK*s.overfetch, nil, monitor)
	if len(searched) == 0 {
		errs := make([]error, 0, len(errored))
		for _, ce := range errored {
			errs = append(errs, ce.Err)
		}
		s.logger.Error("all collections failed", "collections", len(collections))
		return nil, joinUnavailable(errs)
	}

	results := s.fuse(hits, req.Query, req.TopK, req.MinScore, req.hybrid(), req.AllChunks)

	resp := &Response{
		Results:             results,
		TotalResults:        len(results),
		CollectionsSearched: searched,
		CollectionsErrored:  errored,
		Elapsed:             time.Since(start),
	}
	monitor.Finish(results)
	return resp, nil
}

// FindSimilar ranks documents similar to an already-indexed document,
// seeded from its stored vector. The seed document itself is excluded
// from the results.
func (s *Searcher) FindSimilar(ctx context.Context, sourceType core.SourceType, documentID string, topK int) (*Response, error) {
	start := time.Now()

	if topK <= 0 {
		topK = DefaultTopK
	}
	vector, err := s.registry.DocumentVector(ctx, sourceType, documentID)
	if err != nil {
		return nil, err
	}

	collections := s.registry.ActiveCollections(nil)
	filter := &storage.Filter{ExcludeDocumentIDs: []string{documentID}}
	searched, errored, hits := s.fanOut(ctx, collections, vector, topK*s.overfetch, filter, &noopMonitor{})
	if len(searched) == 0 {
		errs := make([]error, 0, len(errored))
		for _, ce := range errored {
			errs = append(errs, ce.Err)
		}
		return nil, joinUnavailable(errs)
	}

	// No query text, so the keyword signal is absent and the combined
	// score is purely semantic.
	results := s.fuse(hits, "", topK, 0, false, false)

	return &Response{
		Results:             results,
		TotalResults:        len(results),
		CollectionsSearched: searched,
		CollectionsErrored:  errored,
		Elapsed:             time.Since(start),
	}, nil
}

// collectionHit pairs a storage hit with the collection it came from.
type collectionHit struct {
	collection string
	hit        storage.Hit
}

// fanOut queries every collection concurrently and partitions the
// outcome into searched names, errored names, and the combined hits.
func (s *Searcher) fanOut(ctx context.Context, collections []string, vector []float32, fetch int, filter *storage.Filter, monitor Monitor) ([]string, []CollectionError, []collectionHit) {
	type outcome struct {
		collection string
		hits       []storage.Hit
		err        error
	}
	outcomes := make([]outcome, len(collections))

	var wg sync.WaitGroup
	for i, collection := range collections {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, err := s.backend.Query(ctx, collection, vector, fetch, filter)
			outcomes[i] = outcome{collection: collection, hits: hits, err: err}
		}()
	}
	wg.Wait()

	var (
		searched []string
		errored  []CollectionError
		hits     []collectionHit
	)
	for _, out := range outcomes {
		monitor.CollectionSearched(out.collection, len(out.hits), out.err)
		if out.err != nil {
			s.logger.Warn("collection search failed", "collection", out.collection, "err", out.err)
			errored = append(errored, CollectionError{Collection: out.collection, Err: out.err})
			continue
		}
		searched = append(searched, out.collection)
		for _, h := range out.hits {
			hits = append(hits, collectionHit{collection: out.collection, hit: h})
		}
	}
	return searched, errored, hits
}

// fuse scores, dedups per document, filters and ranks the raw hits.
// With hybrid off the keyword signal is skipped and the combined score
// is the semantic score itself. With allChunks every hit survives
// instead of only the best chunk per document.
func (s *Searcher) fuse(hits []collectionHit, query string, topK int, minScore float32, hybrid, allChunks bool) []core.SearchResult {
	type candidate struct {
		result core.SearchResult
	}
	// Keep only the best-scoring chunk of each document.
	best := make(map[string]candidate)

	for _, ch := range hits {
		var kw, combined float32
		if hybrid {
			kw = keywordScore(ch.hit.Payload.Text, query)
			combined = s.semanticWeight*ch.hit.Score + s.keywordWeight*kw
		} else {
			combined = ch.hit.Score
		}

		result := core.SearchResult{
			ChunkID:       ch.hit.ID,
			DocumentID:    ch.hit.Payload.DocumentID,
			Title:         ch.hit.Payload.Title,
			SourceType:    core.SourceType(ch.collection),
			SemanticScore: ch.hit.Score,
			KeywordScore:  kw,
			CombinedScore: combined,
		}
		if docID, meta, ok := s.registry.ResolveMetadata(ch.hit.ID); ok {
			result.DocumentID = docID
			result.Title = meta.Title
		}
		result.Snippet = buildSnippet(ch.hit.Payload.Text, query)

		// Dedup key includes the collection: the same document ID under
		// two source types is two distinct documents.
		key := ch.collection + "\x00" + result.DocumentID
		if allChunks {
			key = key + "\x00" + result.ChunkID
		}
		prev, seen := best[key]
		if !seen || lessResult(prev.result, result) {
			best[key] = candidate{result: result}
		}
	}

	results := make([]core.SearchResult, 0, len(best))
	for _, cand := range best {
		if cand.result.CombinedScore < minScore {
			continue
		}
		results = append(results, cand.result)
	}

	// Deterministic ordering: combined desc, then semantic desc, then
	// document ID asc, then chunk ID asc.
	sort.Slice(results, func(i, j int) bool {
		return lessResult(results[j], results[i])
	})

	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// lessResult reports whether a ranks strictly below b.
func lessResult(a, b core.SearchResult) bool {
	if a.CombinedScore != b.CombinedScore {
		return a.CombinedScore < b.CombinedScore
	}
	if a.SemanticScore != b.SemanticScore {
		return a.SemanticScore < b.SemanticScore
	}
	if a.DocumentID != b.DocumentID {
		return a.DocumentID > b.DocumentID
	}
	return a.ChunkID > b.ChunkID
}

// joinUnavailable wraps the per-collection failures so errors.Is matches
// ErrSearchUnavailable while the causes stay inspectable.
func joinUnavailable(errs []error) error {
	if len(errs) == 0 {
		return ErrSearchUnavailable
	}
	return fmt.Errorf("%w: %w", ErrSearchUnavailable, errors.Join(errs...))
}
