// Package layout fits text into fixed terminal column widths without
// breaking grapheme clusters.
package layout

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Adjust pads or shortens text so its rendered width is exactly width
// columns. Overlong text is cut at word boundaries first; if the result is
// still too wide it is truncated at a grapheme cluster boundary and ended
// with an ellipsis. When not even the first word fits, that word is kept in
// full and the result may exceed width.
//
// width must be at least 1.
func Adjust(text string, width int) string {
	if width < 1 {
		panic("layout: minimal width is 1")
	}

	actual := runewidth.StringWidth(text)
	if actual == width {
		return text
	}
	if actual < width {
		return text + strings.Repeat(" ", width-actual)
	}

	words := splitWords(text)
	var b strings.Builder
	for _, w := range words {
		if runewidth.StringWidth(b.String())+runewidth.StringWidth(w) > width {
			break
		}
		b.WriteString(w)
		b.WriteString(" ")
	}
	result := b.String()
	if result == "" && len(words) > 0 {
		result = words[0]
	}

	actual = runewidth.StringWidth(result)
	if actual > width {
		return truncateGraphemes(result, width-1) + "…"
	}
	return result + strings.Repeat(" ", width-actual)
}

// splitWords returns the word segments of text that carry at least one
// letter or digit, dropping whitespace and bare punctuation.
func splitWords(text string) []string {
	var words []string
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if strings.ContainsFunc(word, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			words = append(words, word)
		}
	}
	return words
}

// truncateGraphemes keeps the first n grapheme clusters of text. This counts
// clusters, not columns, so a run of wide glyphs can still come up short.
func truncateGraphemes(text string, n int) string {
	var b strings.Builder
	state := -1
	rest := text
	for i := 0; i < n && len(rest) > 0; i++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		b.WriteString(cluster)
	}
	return b.String()
}
