package chunker

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/quillon/findry/core"
)

// DefaultMaxTokens is the default chunk size in tokens.
const DefaultMaxTokens = 512

// DefaultOverlapTokens is the default overlap between adjacent chunks.
const DefaultOverlapTokens = 64

// Chunker splits raw document text into bounded-size, sentence-aligned
// segments suitable for embedding.
type Chunker struct {
	tokenizer Tokenizer
	logger    *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTokenizer sets a custom tokenizer.
// Default is NewTokenizer().
func WithTokenizer(tokenizer Tokenizer) Option {
	return func(c *Chunker) {
		if tokenizer != nil {
			c.tokenizer = tokenizer
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a new chunker.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		tokenizer: NewTokenizer(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokenizer returns the tokenizer the chunker counts with.
func (c *Chunker) Tokenizer() Tokenizer {
	return c.tokenizer
}

// Chunk splits text into chunks of at most maxTokens tokens, preferring
// sentence boundaries. A sentence longer than maxTokens is hard-split at
// token boundaries. When overlapTokens > 0, each chunk after the first
// starts with the last overlapTokens tokens of its predecessor.
//
// Chunks are returned without vectors, with Ordinal assigned in document
// order starting at 0 and TotalChunks set on every chunk. ID and DocumentID
// are left empty for the caller to assign. Empty or whitespace-only text
// yields an empty sequence and no error.
func (c *Chunker) Chunk(text string, maxTokens, overlapTokens int) ([]core.Chunk, error) {
	if maxTokens <= 0 {
		return nil, ErrInvalidMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	// Overlap must leave room for new content
	if overlapTokens >= maxTokens {
		overlapTokens = maxTokens / 4
	}

	if strings.TrimSpace(text) == "" {
		return []core.Chunk{}, nil
	}

	// Sentence pieces first; oversized sentences fall back to token splits.
	var pieces []string
	for _, sentence := range splitSentences(text) {
		if c.tokenizer.Count(sentence) > maxTokens {
			pieces = append(pieces, c.tokenizer.Split(sentence, maxTokens)...)
		} else {
			pieces = append(pieces, sentence)
		}
	}

	var chunks []core.Chunk
	var cur []string
	curTokens := 0
	carried := false // cur currently holds only overlap carried from the previous chunk

	flush := func() {
		chunkText := strings.Join(cur, " ")
		chunks = append(chunks, core.Chunk{
			Text:       chunkText,
			TokenCount: c.tokenizer.Count(chunkText),
		})
	}

	for _, piece := range pieces {
		pc := c.tokenizer.Count(piece)

		if curTokens+pc > maxTokens {
			if carried {
				// The carried overlap alone does not leave room for this
				// piece; drop it rather than emit an overlap-only chunk.
				cur = nil
				curTokens = 0
			} else if len(cur) > 0 {
				flush()
				cur = nil
				curTokens = 0
				if overlapTokens > 0 {
					tail := c.tokenizer.Tail(chunks[len(chunks)-1].Text, overlapTokens)
					if tail != "" && c.tokenizer.Count(tail)+pc <= maxTokens {
						cur = []string{tail}
						curTokens = c.tokenizer.Count(tail)
						carried = true
					}
				}
			}
		}

		cur = append(cur, piece)
		curTokens += pc
		carried = false
	}
	if len(cur) > 0 {
		flush()
	}

	for i := range chunks {
		chunks[i].Ordinal = i
		chunks[i].TotalChunks = len(chunks)
	}

	c.logger.Debug("chunked text", "chunks", len(chunks), "maxTokens", maxTokens, "overlapTokens", overlapTokens)
	return chunks, nil
}

// splitSentences splits text into trimmed sentences. A sentence ends at
// '.', '!' or '?' followed by whitespace, or at a line break.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	emit := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		switch {
		case r == '\n':
			emit()
		case r == '.' || r == '!' || r == '?':
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				emit()
			}
		}
	}
	emit()

	return sentences
}
