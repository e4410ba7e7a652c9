package chunker

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName selects the BPE encoding used for token counting. It matches
// the tokenizer of the OpenAI embedding model family.
const encodingName = "cl100k_base"

// Tokenizer counts and splits text in token units.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Tail returns the text of the last n tokens, used to carry overlap
	// between adjacent chunks.
	Tail(text string, n int) string

	// Split hard-splits text at token boundaries into pieces of at most
	// maxTokens tokens each.
	Split(text string, maxTokens int) []string

	// Approximate reports whether token counts are an approximation rather
	// than exact provider-consistent counts.
	Approximate() bool
}

// NewTokenizer returns a provider-consistent tiktoken tokenizer, falling
// back to a deterministic whitespace approximation when the encoding is
// unavailable (for example without network access to fetch the BPE data).
func NewTokenizer() Tokenizer {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		slog.Warn("tiktoken encoding unavailable, using whitespace approximation", "encoding", encodingName, "err", err)
		return whitespaceTokenizer{}
	}
	return &tiktokenTokenizer{enc: enc}
}

// tiktokenTokenizer counts tokens with the provider's BPE encoding.
type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var _ Tokenizer = (*tiktokenTokenizer)(nil)

func (t *tiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *tiktokenTokenizer) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) <= n {
		return text
	}
	return t.enc.Decode(ids[len(ids)-n:])
}

func (t *tiktokenTokenizer) Split(text string, maxTokens int) []string {
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return []string{text}
	}
	pieces := make([]string, 0, len(ids)/maxTokens+1)
	for start := 0; start < len(ids); start += maxTokens {
		end := start + maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		pieces = append(pieces, t.enc.Decode(ids[start:end]))
	}
	return pieces
}

func (t *tiktokenTokenizer) Approximate() bool {
	return false
}

// whitespaceTokenizer approximates tokens as whitespace-separated words.
// Counts are deterministic but not provider-exact.
type whitespaceTokenizer struct{}

var _ Tokenizer = whitespaceTokenizer{}

func (whitespaceTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (whitespaceTokenizer) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}

func (whitespaceTokenizer) Split(text string, maxTokens int) []string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return []string{text}
	}
	pieces := make([]string, 0, len(words)/maxTokens+1)
	for start := 0; start < len(words); start += maxTokens {
		end := start + maxTokens
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
	}
	return pieces
}

func (whitespaceTokenizer) Approximate() bool {
	return true
}
