package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestLogger logs each request with a generated request ID and the
// elapsed handling time. The ID is echoed back in the response headers.
func RequestLogger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestID := req.HeaderParameter(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	resp.AddHeader(requestIDHeader, requestID)

	start := time.Now()
	chain.ProcessFilter(req, resp)

	slog.Info("http request",
		"request_id", requestID,
		"method", req.Request.Method,
		"path", req.Request.URL.Path,
		"status", resp.StatusCode(),
		"elapsed_ms", time.Since(start).Milliseconds())
}

// RecoverPanic converts handler panics into 500 responses.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic handling request",
				"method", req.Request.Method,
				"path", req.Request.URL.Path,
				"panic", r)
			resp.WriteHeaderAndEntity(http.StatusInternalServerError,
				ErrorResponse{Error: "internal server error"})
		}
	}()
	chain.ProcessFilter(req, resp)
}
