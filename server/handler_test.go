package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/findry"
	"github.com/quillon/findry/ai"
)

func newTestServer(t *testing.T) *restful.Container {
	t.Helper()
	engine, err := findry.Open("",
		findry.WithInMemory(),
		findry.WithAIConfig(ai.NewConfig(ai.WithOffline(true), ai.WithDimension(32))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	container := restful.NewContainer()
	container.Filter(RequestLogger)
	container.Filter(RecoverPanic)
	RegisterRoutes(container, NewHandler(engine))
	return container
}

func doJSON(t *testing.T, container *restful.Container, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	container.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func indexDoc(t *testing.T, container *restful.Container, sourceType, docID, content, title string) {
	t.Helper()
	rec := doJSON(t, container, http.MethodPost, "/api/v1/index", IndexRequest{
		SourceType: sourceType,
		DocumentID: docID,
		Content:    content,
		Title:      title,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestIndexEndpoint(t *testing.T) {
	container := newTestServer(t)

	rec := doJSON(t, container, http.MethodPost, "/api/v1/index", IndexRequest{
		SourceType: "wiki-page",
		DocumentID: "doc-1",
		Content:    "Redis is often used as a cache in front of a slower database.",
		Title:      "Caching with Redis",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[IndexResponse](t, rec)
	assert.Equal(t, "wiki-page", body.Collection)
	assert.Equal(t, "doc-1", body.DocumentID)
	assert.Greater(t, body.ChunksIndexed, 0)
	assert.True(t, body.Offline)

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestIndexEndpoint_Validation(t *testing.T) {
	container := newTestServer(t)

	rec := doJSON(t, container, http.MethodPost, "/api/v1/index", IndexRequest{
		SourceType: "bogus",
		DocumentID: "doc-1",
		Content:    "text",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Contains(t, body.Error, "unknown source type")

	rec = doJSON(t, container, http.MethodPost, "/api/v1/index", IndexRequest{
		SourceType: "ticket",
		Content:    "text",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-redis",
		"Redis is often used as a cache in front of a slower database.", "Caching with Redis")
	indexDoc(t, container, "ticket", "T-1",
		"Login fails with a 500 when the session cookie is expired.", "Login bug")

	rec := doJSON(t, container, http.MethodPost, "/api/v1/search", SearchRequest{
		Query: "Redis is often used as a cache in front of a slower database.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[SearchResponse](t, rec)
	require.NotEmpty(t, body.Results)
	assert.Equal(t, body.TotalResults, len(body.Results))
	assert.Equal(t, "doc-redis", body.Results[0].DocumentID)
	assert.Equal(t, "Caching with Redis", body.Results[0].Title)
	assert.Equal(t, 1, body.Results[0].Rank)
	assert.ElementsMatch(t, []string{"wiki-page", "ticket"}, body.CollectionsSearched)
	assert.Empty(t, body.CollectionsErrored)
	assert.GreaterOrEqual(t, body.ElapsedMS, int64(0))
}

func TestSearchEndpoint_SemanticOnly(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-redis",
		"Redis is often used as a cache in front of a slower database.", "")

	disabled := false
	rec := doJSON(t, container, http.MethodPost, "/api/v1/search", SearchRequest{
		Query:         "Redis is often used as a cache in front of a slower database.",
		HybridEnabled: &disabled,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[SearchResponse](t, rec)
	require.NotEmpty(t, body.Results)
	assert.Zero(t, body.Results[0].KeywordScore)
	assert.Equal(t, body.Results[0].SemanticScore, body.Results[0].CombinedScore)
}

func TestSearchEndpoint_Validation(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-1", "Some content.", "")

	rec := doJSON(t, container, http.MethodPost, "/api/v1/search", SearchRequest{Query: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, container, http.MethodPost, "/api/v1/search", SearchRequest{Query: "x", TopK: -2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimilarEndpoint(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-redis",
		"Redis is often used as a cache in front of a slower database.", "")
	indexDoc(t, container, "wiki-page", "doc-redis-twin",
		"Redis is often used as a cache in front of a slower database.", "")

	rec := doJSON(t, container, http.MethodGet,
		"/api/v1/similar/doc-redis?source_type=wiki-page&top_k=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[SearchResponse](t, rec)
	require.NotEmpty(t, body.Results)
	for _, r := range body.Results {
		assert.NotEqual(t, "doc-redis", r.DocumentID)
	}
	assert.Equal(t, "doc-redis-twin", body.Results[0].DocumentID)
}

func TestSimilarEndpoint_NotFound(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-1", "Some content.", "")

	rec := doJSON(t, container, http.MethodGet,
		"/api/v1/similar/ghost?source_type=wiki-page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveEndpoint(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-1",
		"Content that will be deleted.", "")

	rec := doJSON(t, container, http.MethodDelete, "/api/v1/index/wiki-page/doc-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The document no longer appears in search results.
	rec = doJSON(t, container, http.MethodPost, "/api/v1/search", SearchRequest{
		Query: "Content that will be deleted.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[SearchResponse](t, rec)
	assert.Empty(t, body.Results)

	// Unknown source type is a validation error.
	rec = doJSON(t, container, http.MethodDelete, "/api/v1/index/bogus/doc-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectionsEndpoint(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-1", "Wiki content.", "")
	indexDoc(t, container, "ticket", "T-1", "Ticket content.", "")

	rec := doJSON(t, container, http.MethodGet, "/api/v1/collections", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[CollectionsResponse](t, rec)
	require.Len(t, body.Collections, 2)
	assert.Equal(t, "ticket", body.Collections[0].Name)
	assert.Equal(t, "wiki-page", body.Collections[1].Name)
	for _, col := range body.Collections {
		assert.True(t, col.Exists)
		assert.Equal(t, 1, col.ChunkCount)
		assert.Equal(t, 32, col.VectorDim)
	}
}

func TestHealthEndpoint(t *testing.T) {
	container := newTestServer(t)
	indexDoc(t, container, "wiki-page", "doc-1", "Some content.", "")

	rec := doJSON(t, container, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.False(t, body.Degraded)
	assert.Greater(t, body.Usage.Requests, int64(0))
}
