package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	snippetMaxLen  = 200
	highlightOpen  = "<em>"
	highlightClose = "</em>"
)

// buildSnippet extracts a window of the chunk text around the query match
// and wraps matched terms in highlight markers. Preference order: the full
// query phrase, then the first substantive query term, then the leading
// characters of the chunk with no highlighting.
func buildSnippet(text, query string) string {
	phrase := strings.TrimSpace(strings.ToLower(query))
	if phrase != "" {
		if start, length := indexFold(text, phrase); start >= 0 {
			return highlightWindow(text, start, length)
		}
	}

	for _, term := range tokenizeAndFilter(query) {
		if start, length := indexFold(text, term); start >= 0 {
			return highlightWindow(text, start, length)
		}
	}

	return truncate(text, snippetMaxLen)
}

// indexFold finds the first case-insensitive match of needle (already
// lowercased) in text and returns the match's start and length as byte
// offsets valid on text itself. Lowercasing can change a rune's encoded
// width, so offsets found on a lowered copy are mapped back per rune.
func indexFold(text, needle string) (start, length int) {
	if needle == "" {
		return -1, 0
	}
	lower := strings.ToLower(text)
	if len(lower) == len(text) {
		idx := strings.Index(lower, needle)
		if idx < 0 {
			return -1, 0
		}
		return idx, len(needle)
	}

	var b strings.Builder
	b.Grow(len(text))
	// offsets[i] is the original-text offset for byte i of the lowered copy.
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		lr := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lr); j++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(text))

	idx := strings.Index(b.String(), needle)
	if idx < 0 {
		return -1, 0
	}
	matchStart := offsets[idx]
	matchEnd := offsets[idx+len(needle)]
	return matchStart, matchEnd - matchStart
}

// highlightWindow cuts a snippet window centered on the match at
// [start, start+length) and wraps the match in highlight markers. Window
// edges are snapped to rune boundaries so multibyte text never slices
// mid-rune.
func highlightWindow(text string, start, length int) string {
	windowStart := start - (snippetMaxLen-length)/2
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := windowStart + snippetMaxLen
	if windowEnd > len(text) {
		windowEnd = len(text)
		windowStart = windowEnd - snippetMaxLen
		if windowStart < 0 {
			windowStart = 0
		}
	}
	// Do not split the match itself.
	if windowStart > start {
		windowStart = start
	}
	if windowEnd < start+length {
		windowEnd = start + length
	}
	windowStart = snapRuneStart(text, windowStart)
	windowEnd = snapRuneEnd(text, windowEnd)

	var b strings.Builder
	if windowStart > 0 {
		b.WriteString("…")
	}
	b.WriteString(text[windowStart:start])
	b.WriteString(highlightOpen)
	b.WriteString(text[start : start+length])
	b.WriteString(highlightClose)
	b.WriteString(text[start+length : windowEnd])
	if windowEnd < len(text) {
		b.WriteString("…")
	}
	return b.String()
}

// snapRuneStart moves a byte offset left onto the nearest rune boundary.
func snapRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// snapRuneEnd moves a byte offset right onto the nearest rune boundary.
func snapRuneEnd(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := text[:snapRuneStart(text, maxLen)]
	// Break on a word boundary when one is close enough.
	if idx := strings.LastIndexByte(cut, ' '); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
