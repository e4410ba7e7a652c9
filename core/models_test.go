package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkIDFor(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := ChunkIDFor("doc-1", 0)
		id2 := ChunkIDFor("doc-1", 0)
		assert.Equal(t, id1, id2)
		assert.Len(t, id1, 32) // 16 bytes hex-encoded
	})

	t.Run("distinct per ordinal", func(t *testing.T) {
		assert.NotEqual(t, ChunkIDFor("doc-1", 0), ChunkIDFor("doc-1", 1))
	})

	t.Run("distinct per document", func(t *testing.T) {
		assert.NotEqual(t, ChunkIDFor("doc-1", 0), ChunkIDFor("doc-2", 0))
	})

	t.Run("no collision between doc-1 ordinal 12 and doc-11 ordinal 2", func(t *testing.T) {
		// The separator between document ID and ordinal prevents
		// concatenation ambiguity.
		assert.NotEqual(t, ChunkIDFor("doc-1", 12), ChunkIDFor("doc-11", 2))
	})
}

func TestSourceTypeValid(t *testing.T) {
	for _, st := range AllSourceTypes() {
		assert.True(t, st.Valid(), "expected %q to be valid", st)
	}

	assert.False(t, SourceType("").Valid())
	assert.False(t, SourceType("email").Valid())
	assert.False(t, SourceType("Wiki-Page").Valid())
}
