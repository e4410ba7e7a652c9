// Package chunker splits raw document text into bounded-size,
// sentence-aligned segments suitable for embedding.
//
// Splitting prefers sentence boundaries; a sentence longer than the chunk
// budget is hard-split at token boundaries as a fallback. Adjacent chunks
// can share a configurable token overlap so context is not lost at chunk
// boundaries. Token counting uses the provider-consistent tiktoken encoding
// when available and degrades to a deterministic whitespace approximation
// otherwise.
package chunker
