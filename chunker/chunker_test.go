package chunker

import (
	"strings"
	"testing"

	"github.com/quillon/findry/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newWordChunker builds a chunker on the whitespace tokenizer so token
// counts in tests are simply word counts.
func newWordChunker() *Chunker {
	return New(WithTokenizer(whitespaceTokenizer{}))
}

func TestChunk_EmptyText(t *testing.T) {
	c := newWordChunker()

	for _, text := range []string{"", "   ", "\n\t\n"} {
		chunks, err := c.Chunk(text, 100, 0)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunk_InvalidMaxTokens(t *testing.T) {
	c := newWordChunker()

	_, err := c.Chunk("some text", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMaxTokens)
}

func TestChunk_SingleChunk(t *testing.T) {
	c := newWordChunker()

	chunks, err := c.Chunk("Redis caching improves read latency. It uses an in-memory store.", 100, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, 0, chunk.Ordinal)
	assert.Equal(t, 1, chunk.TotalChunks)
	assert.Equal(t, 11, chunk.TokenCount)
	assert.Contains(t, chunk.Text, "Redis caching")
	assert.Contains(t, chunk.Text, "in-memory store")
}

func TestChunk_OrdinalsAndTotals(t *testing.T) {
	c := newWordChunker()

	// Ten sentences of five words each, four-sentence budget per chunk.
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("one two three four five. ")
	}

	chunks, err := c.Chunk(b.String(), 20, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, 3, chunk.TotalChunks)
		assert.LessOrEqual(t, chunk.TokenCount, 20)
	}
}

func TestChunk_CoversAllContent(t *testing.T) {
	c := newWordChunker()

	text := "Alpha bravo charlie. Delta echo foxtrot golf. Hotel india juliett. " +
		"Kilo lima mike november. Oscar papa quebec. Romeo sierra tango uniform."

	chunks, err := c.Chunk(text, 8, 0)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(collectTexts(chunks), " ")
	for _, word := range strings.Fields(strings.ReplaceAll(text, ".", "")) {
		assert.Contains(t, joined, word)
	}
}

func TestChunk_Overlap(t *testing.T) {
	c := newWordChunker()

	text := "one two three four five. six seven eight nine ten. eleven twelve thirteen fourteen fifteen."
	chunks, err := c.Chunk(text, 10, 3)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Text)
		tail := strings.Join(prevWords[len(prevWords)-3:], " ")
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
			"chunk %d %q does not start with overlap %q", i, chunks[i].Text, tail)
		assert.LessOrEqual(t, chunks[i].TokenCount, 10)
	}
}

func TestChunk_LongSentenceHardSplit(t *testing.T) {
	c := newWordChunker()

	// A single 30-word sentence with a 10-token budget.
	words := make([]string, 30)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ") + "."

	chunks, err := c.Chunk(text, 10, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.TokenCount, 10)
	}
}

func TestChunk_OverlapClampedToBudget(t *testing.T) {
	c := newWordChunker()

	// Overlap larger than the budget must not wedge the chunker.
	text := "one two three. four five six. seven eight nine."
	chunks, err := c.Chunk(text, 4, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.TokenCount, 4)
	}
}

func TestSplitSentences(t *testing.T) {
	t.Run("terminators", func(t *testing.T) {
		got := splitSentences("First one. Second one! Third one? Fourth")
		assert.Equal(t, []string{"First one.", "Second one!", "Third one?", "Fourth"}, got)
	})

	t.Run("line breaks", func(t *testing.T) {
		got := splitSentences("heading\nbody line one\nbody line two")
		assert.Len(t, got, 3)
	})

	t.Run("decimal points do not split", func(t *testing.T) {
		got := splitSentences("Pi is 3.14 roughly. Next sentence.")
		assert.Equal(t, []string{"Pi is 3.14 roughly.", "Next sentence."}, got)
	})
}

func collectTexts(chunks []core.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
