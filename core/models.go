package core

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SourceType identifies the logical category a document came from.
// Each source type is backed by exactly one vector collection.
type SourceType string

const (
	SourceTypeWikiPage       SourceType = "wiki-page"
	SourceTypeTicket         SourceType = "ticket"
	SourceTypeRepositoryFile SourceType = "repository-file"
	SourceTypeUploadedFile   SourceType = "uploaded-file"
	SourceTypeGeneric        SourceType = "generic"
)

// AllSourceTypes returns every valid source type in a fixed order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeWikiPage,
		SourceTypeTicket,
		SourceTypeRepositoryFile,
		SourceTypeUploadedFile,
		SourceTypeGeneric,
	}
}

// Valid reports whether the source type is one of the known values.
func (s SourceType) Valid() bool {
	switch s {
	case SourceTypeWikiPage, SourceTypeTicket, SourceTypeRepositoryFile,
		SourceTypeUploadedFile, SourceTypeGeneric:
		return true
	}
	return false
}

// ChunkIDFor generates a deterministic chunk ID from the document ID and
// the chunk's ordinal position using BLAKE2b hashing. Re-indexing the same
// document always produces the same chunk IDs.
func ChunkIDFor(documentID string, ordinal int) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(documentID))
	h.Write([]byte("#"))
	h.Write([]byte(strconv.Itoa(ordinal)))
	return hex.EncodeToString(h.Sum(nil))
}

// Chunk is a contiguous span of a document's text, the unit of embedding
// and storage.
type Chunk struct {
	ID          string
	DocumentID  string
	Ordinal     int // 0-based position within the document
	TotalChunks int // total chunk count for the parent document
	Text        string
	TokenCount  int
	Vector      []float32 // embedding, populated after the chunking step
}

// DocumentMetadata carries the descriptive attributes attached to a
// document at indexing time. It is owned by the collection registry and
// referenced, never duplicated, by the document's chunks.
type DocumentMetadata struct {
	Title      string
	SourceType SourceType
	SourceID   string // external identifier in the source system
	Author     string
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Extra      map[string]string
}

// SearchResult is an ephemeral, per-query ranked hit. It is never persisted.
type SearchResult struct {
	ChunkID       string
	DocumentID    string
	Title         string
	Snippet       string
	SourceType    SourceType
	SemanticScore float32
	KeywordScore  float32
	CombinedScore float32
	Rank          int // 1-based position in the final ranking
}
