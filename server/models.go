package server

import (
	"time"

	"github.com/quillon/findry/core"
)

// IndexRequest is the body of POST /api/v1/index.
type IndexRequest struct {
	SourceType string            `json:"source_type"`
	DocumentID string            `json:"document_id"`
	Content    string            `json:"content"`
	Title      string            `json:"title,omitempty"`
	SourceID   string            `json:"source_id,omitempty"`
	Author     string            `json:"author,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// IndexResponse reports the outcome of an indexing call.
type IndexResponse struct {
	Collection    string `json:"collection"`
	DocumentID    string `json:"document_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Offline       bool   `json:"offline"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query       string   `json:"query"`
	SourceTypes []string `json:"source_types,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	MinScore    float32  `json:"min_score,omitempty"`

	// HybridEnabled omitted or true blends semantic and keyword scores;
	// false ranks on the semantic score alone.
	HybridEnabled *bool `json:"hybrid_enabled,omitempty"`

	// AllChunks returns every matching chunk rather than the best chunk
	// per document.
	AllChunks bool `json:"all_chunks,omitempty"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	Title         string  `json:"title,omitempty"`
	Snippet       string  `json:"snippet"`
	SourceType    string  `json:"source_type"`
	SemanticScore float32 `json:"semantic_score"`
	KeywordScore  float32 `json:"keyword_score"`
	CombinedScore float32 `json:"combined_score"`
	Rank          int     `json:"rank"`
}

// CollectionErrorInfo reports a collection that failed during a search.
type CollectionErrorInfo struct {
	Collection string `json:"collection"`
	Error      string `json:"error"`
}

// SearchResponse is the body returned by search and similarity calls.
type SearchResponse struct {
	Results             []SearchResult        `json:"results"`
	TotalResults        int                   `json:"total_results"`
	CollectionsSearched []string              `json:"collections_searched"`
	CollectionsErrored  []CollectionErrorInfo `json:"collections_errored,omitempty"`
	ElapsedMS           int64                 `json:"elapsed_ms"`
}

// CollectionInfo describes one collection.
type CollectionInfo struct {
	Name       string `json:"name"`
	Exists     bool   `json:"exists"`
	ChunkCount int    `json:"chunk_count"`
	VectorDim  int    `json:"vector_dim"`
}

// CollectionsResponse is the body of GET /api/v1/collections.
type CollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
}

// UsageInfo reports running embedding counters.
type UsageInfo struct {
	Tokens   int64 `json:"tokens"`
	Requests int64 `json:"requests"`
	Failures int64 `json:"failures"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status   string    `json:"status"`
	Degraded bool      `json:"degraded"`
	Usage    UsageInfo `json:"usage"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toSourceTypes(raw []string) []core.SourceType {
	if len(raw) == 0 {
		return nil
	}
	types := make([]core.SourceType, len(raw))
	for i, s := range raw {
		types[i] = core.SourceType(s)
	}
	return types
}

func toSearchResponse(results []core.SearchResult, searched []string, errored []CollectionErrorInfo, elapsed time.Duration) *SearchResponse {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ChunkID:       r.ChunkID,
			DocumentID:    r.DocumentID,
			Title:         r.Title,
			Snippet:       r.Snippet,
			SourceType:    string(r.SourceType),
			SemanticScore: r.SemanticScore,
			KeywordScore:  r.KeywordScore,
			CombinedScore: r.CombinedScore,
			Rank:          r.Rank,
		}
	}
	if searched == nil {
		searched = []string{}
	}
	return &SearchResponse{
		Results:             out,
		TotalResults:        len(out),
		CollectionsSearched: searched,
		CollectionsErrored:  errored,
		ElapsedMS:           elapsed.Milliseconds(),
	}
}
