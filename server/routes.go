package server

import (
	"github.com/emicklei/go-restful/v3"
)

// RegisterRoutes mounts the API on the container under /api/v1.
func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Storage health and embedding usage").
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/index").
			To(handler.Index).
			Doc("Index one document").
			Reads(IndexRequest{}).
			Writes(IndexResponse{}).
			Returns(200, "OK", IndexResponse{}).
			Returns(400, "Bad Request", ErrorResponse{}).
			Returns(502, "Embedding Provider Error", ErrorResponse{}).
			Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.
		Route(ws.DELETE("/index/{source_type}/{document_id}").
			To(handler.Remove).
			Doc("Remove a document and all of its chunks").
			Param(ws.PathParameter("source_type", "Source type (wiki-page, ticket, repository-file, uploaded-file, generic)").DataType("string")).
			Param(ws.PathParameter("document_id", "Document identifier").DataType("string")).
			Returns(204, "No Content", nil).
			Returns(400, "Bad Request", ErrorResponse{}))

	ws.
		Route(ws.POST("/search").
			To(handler.Search).
			Doc("Hybrid search across collections").
			Reads(SearchRequest{}).
			Writes(SearchResponse{}).
			Returns(200, "OK", SearchResponse{}).
			Returns(400, "Bad Request", ErrorResponse{}).
			Returns(503, "Search Unavailable", ErrorResponse{}))

	ws.
		Route(ws.GET("/similar/{document_id}").
			To(handler.Similar).
			Doc("Documents similar to an indexed one").
			Param(ws.PathParameter("document_id", "Seed document identifier").DataType("string")).
			Param(ws.QueryParameter("source_type", "Source type of the seed document").DataType("string")).
			Param(ws.QueryParameter("top_k", "Result limit (default 10)").DataType("integer").Required(false)).
			Writes(SearchResponse{}).
			Returns(200, "OK", SearchResponse{}).
			Returns(404, "Document Not Found", ErrorResponse{}))

	ws.
		Route(ws.GET("/collections").
			To(handler.Collections).
			Doc("List collections with chunk counts").
			Writes(CollectionsResponse{}).
			Returns(200, "OK", CollectionsResponse{}))

	container.Add(ws)
}
