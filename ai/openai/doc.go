// Package openai provides the production ai.Embedder implementation for
// OpenAI-compatible embedding APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// Requests are batched up to the configured provider limit and retried
// with exponential backoff; callers see a single logical call regardless
// of how many provider requests it took.
package openai
