// Package offline provides a deterministic ai.Embedder for development and
// tests without a live embedding provider. Same text, same vector, always.
package offline
