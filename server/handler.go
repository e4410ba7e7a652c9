package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/emicklei/go-restful/v3"

	"github.com/quillon/findry"
	"github.com/quillon/findry/ai"
	"github.com/quillon/findry/core"
	"github.com/quillon/findry/registry"
	"github.com/quillon/findry/search"
	"github.com/quillon/findry/storage"
)

// Engine is the subset of the findry engine the handlers need.
// *findry.Engine satisfies it.
type Engine interface {
	IndexDocument(ctx context.Context, req registry.IndexRequest) (*registry.IndexResult, error)
	RemoveDocument(ctx context.Context, sourceType core.SourceType, documentID string) error
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	FindSimilar(ctx context.Context, sourceType core.SourceType, documentID string, topK int) (*search.Response, error)
	ListCollections(ctx context.Context) ([]*storage.CollectionInfo, error)
	Status(ctx context.Context) findry.Status
}

// Handler serves the HTTP API on top of an engine facade.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler creates a handler over the engine.
func NewHandler(engine Engine) *Handler {
	return &Handler{
		engine: engine,
		logger: slog.Default().With("component", "http-handler"),
	}
}

func (h *Handler) Index(req *restful.Request, resp *restful.Response) {
	var body IndexRequest
	if err := req.ReadEntity(&body); err != nil {
		h.writeError(resp, http.StatusBadRequest, err)
		return
	}

	result, err := h.engine.IndexDocument(req.Request.Context(), registry.IndexRequest{
		SourceType: core.SourceType(body.SourceType),
		DocumentID: body.DocumentID,
		Content:    body.Content,
		Metadata: core.DocumentMetadata{
			Title:      body.Title,
			SourceType: core.SourceType(body.SourceType),
			SourceID:   body.SourceID,
			Author:     body.Author,
			Tags:       body.Tags,
			UpdatedAt:  time.Now().UTC(),
			Extra:      body.Extra,
		},
	})
	if err != nil {
		h.writeMappedError(resp, err)
		return
	}

	h.logger.Info("indexed document",
		"collection", result.Collection,
		"document_id", result.DocumentID,
		"chunks", result.ChunksIndexed)

	resp.WriteHeaderAndEntity(http.StatusOK, IndexResponse{
		Collection:    result.Collection,
		DocumentID:    result.DocumentID,
		ChunksIndexed: result.ChunksIndexed,
		Offline:       result.Offline,
	})
}

func (h *Handler) Remove(req *restful.Request, resp *restful.Response) {
	sourceType := req.PathParameter("source_type")
	documentID := req.PathParameter("document_id")

	err := h.engine.RemoveDocument(req.Request.Context(), core.SourceType(sourceType), documentID)
	if err != nil {
		h.writeMappedError(resp, err)
		return
	}
	resp.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Search(req *restful.Request, resp *restful.Response) {
	var body SearchRequest
	if err := req.ReadEntity(&body); err != nil {
		h.writeError(resp, http.StatusBadRequest, err)
		return
	}

	result, err := h.engine.Search(req.Request.Context(), search.Request{
		Query:         body.Query,
		SourceTypes:   toSourceTypes(body.SourceTypes),
		TopK:          body.TopK,
		MinScore:      body.MinScore,
		HybridEnabled: body.HybridEnabled,
		AllChunks:     body.AllChunks,
	})
	if err != nil {
		h.writeMappedError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, toSearchResponse(
		result.Results,
		result.CollectionsSearched,
		toErrorInfos(result.CollectionsErrored),
		result.Elapsed,
	))
}

func (h *Handler) Similar(req *restful.Request, resp *restful.Response) {
	documentID := req.PathParameter("document_id")
	sourceType := req.QueryParameter("source_type")

	topK := 0
	if raw := req.QueryParameter("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(resp, http.StatusBadRequest, errors.New("top_k must be an integer"))
			return
		}
		topK = parsed
	}

	result, err := h.engine.FindSimilar(req.Request.Context(), core.SourceType(sourceType), documentID, topK)
	if err != nil {
		h.writeMappedError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, toSearchResponse(
		result.Results,
		result.CollectionsSearched,
		toErrorInfos(result.CollectionsErrored),
		result.Elapsed,
	))
}

func (h *Handler) Collections(req *restful.Request, resp *restful.Response) {
	infos, err := h.engine.ListCollections(req.Request.Context())
	if err != nil {
		h.writeMappedError(resp, err)
		return
	}

	out := CollectionsResponse{Collections: make([]CollectionInfo, 0, len(infos))}
	for _, info := range infos {
		out.Collections = append(out.Collections, CollectionInfo{
			Name:       info.Name,
			Exists:     info.Exists,
			ChunkCount: info.ChunkCount,
			VectorDim:  info.VectorDim,
		})
	}
	resp.WriteHeaderAndEntity(http.StatusOK, out)
}

func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	status := h.engine.Status(req.Request.Context())
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:   status.Health.String(),
		Degraded: status.Degraded,
		Usage: UsageInfo{
			Tokens:   status.Usage.Tokens,
			Requests: status.Usage.Requests,
			Failures: status.Usage.Failures,
		},
	})
}

func toErrorInfos(errored []search.CollectionError) []CollectionErrorInfo {
	if len(errored) == 0 {
		return nil
	}
	infos := make([]CollectionErrorInfo, len(errored))
	for i, ce := range errored {
		infos[i] = CollectionErrorInfo{Collection: ce.Collection, Error: ce.Err.Error()}
	}
	return infos
}

// writeMappedError translates domain errors onto HTTP status codes.
func (h *Handler) writeMappedError(resp *restful.Response, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		h.writeError(resp, http.StatusBadRequest, err)
	case errors.Is(err, registry.ErrDocumentNotFound):
		h.writeError(resp, http.StatusNotFound, err)
	case errors.Is(err, search.ErrSearchUnavailable):
		h.writeError(resp, http.StatusServiceUnavailable, err)
	case errors.Is(err, ai.ErrProvider):
		h.writeError(resp, http.StatusBadGateway, err)
	case errors.Is(err, storage.ErrDimensionMismatch):
		h.writeError(resp, http.StatusConflict, err)
	default:
		h.logger.Error("request failed", "err", err)
		h.writeError(resp, http.StatusInternalServerError, err)
	}
}

func (h *Handler) writeError(resp *restful.Response, status int, err error) {
	if writeErr := resp.WriteHeaderAndEntity(status, ErrorResponse{Error: err.Error()}); writeErr != nil {
		h.logger.Error("failed to write error response", "err", writeErr)
	}
}
