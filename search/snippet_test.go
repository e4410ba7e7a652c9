package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildSnippet(t *testing.T) {
	text := "Redis is an in-memory data store. It is often used as a cache in front of a slower database to cut read latency."

	t.Run("highlights full phrase", func(t *testing.T) {
		snippet := buildSnippet(text, "in-memory data store")
		assert.Contains(t, snippet, "<em>in-memory data store</em>")
	})

	t.Run("phrase match is case-insensitive", func(t *testing.T) {
		snippet := buildSnippet(text, "REDIS")
		assert.Contains(t, snippet, "<em>Redis</em>")
	})

	t.Run("falls back to first term", func(t *testing.T) {
		snippet := buildSnippet(text, "latency nonsenseterm")
		assert.Contains(t, snippet, "<em>latency</em>")
	})

	t.Run("falls back to leading characters", func(t *testing.T) {
		snippet := buildSnippet(text, "zzyzx")
		assert.NotContains(t, snippet, "<em>")
		assert.True(t, strings.HasPrefix(snippet, "Redis is an in-memory"))
	})

	t.Run("long text is windowed around the match", func(t *testing.T) {
		long := strings.Repeat("padding words here ", 50) + "needle" + strings.Repeat(" more padding", 50)
		snippet := buildSnippet(long, "needle")
		assert.Contains(t, snippet, "<em>needle</em>")
		assert.Less(t, len(snippet), len(long))
		assert.True(t, strings.HasPrefix(snippet, "…"))
		assert.True(t, strings.HasSuffix(snippet, "…"))
	})

	t.Run("short text returned whole", func(t *testing.T) {
		snippet := buildSnippet("tiny", "zzyzx")
		assert.Equal(t, "tiny", snippet)
	})

	t.Run("multibyte text never splits a rune", func(t *testing.T) {
		accented := strings.Repeat("café au lait, s'il vous plaît — très bien. ", 10) +
			"The résumé mentions Redis." + strings.Repeat(" Ещё немного текста для объёма.", 10)
		snippet := buildSnippet(accented, "résumé")
		assert.Contains(t, snippet, "<em>résumé</em>")
		assert.True(t, utf8.ValidString(snippet))
	})

	t.Run("uppercase multibyte match is found", func(t *testing.T) {
		snippet := buildSnippet("Der STRASSENPLAN zeigt die Müllerstraße im Detail.", "müllerstraße")
		assert.Contains(t, snippet, "<em>Müllerstraße</em>")
		assert.True(t, utf8.ValidString(snippet))
	})

	t.Run("windowed multibyte text stays valid", func(t *testing.T) {
		long := strings.Repeat("объём данных растёт ", 30) + "needle" + strings.Repeat(" ещё текст", 30)
		snippet := buildSnippet(long, "needle")
		assert.Contains(t, snippet, "<em>needle</em>")
		assert.True(t, utf8.ValidString(snippet))
	})
}

func TestKeywordScore(t *testing.T) {
	text := "Redis is often used as a cache in front of a slower database."

	tests := []struct {
		name  string
		query string
		want  float32
	}{
		{"all terms present", "redis cache database", 1.0},
		{"partial overlap", "redis kafka", 0.5},
		{"no overlap", "kubernetes scheduling", 0.0},
		{"stop words ignored", "the a of", 0.0},
		{"punctuation trimmed", "redis, cache!", 1.0},
		{"case-insensitive", "REDIS CACHE", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, keywordScore(text, tt.query), 1e-6)
		})
	}
}

func TestTokenizeAndFilter(t *testing.T) {
	got := tokenizeAndFilter("The quick, brown FOX jumps over the lazy dog!")
	assert.Equal(t, []string{"quick", "brown", "fox", "jumps", "over", "lazy", "dog"}, got)

	assert.Empty(t, tokenizeAndFilter("the a an of"))
	assert.Empty(t, tokenizeAndFilter(""))
}
