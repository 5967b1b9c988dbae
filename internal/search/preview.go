package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// previewContext is how many bytes of surrounding value text a preview
// keeps on each side of the matched substring.
const previewContext = 20

// ellipsis marks a preview clamped away from a value boundary.
const ellipsis = "..."

// collapser flattens newlines and tabs to spaces so previews stay on one
// line. Values are frequently JSON strings, so the two-character escape
// sequences are collapsed as well as the raw control characters.
var collapser = strings.NewReplacer(
	`\r\n`, " ",
	`\n`, " ",
	`\r`, " ",
	`\t`, " ",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// valueMatch performs a case-insensitive substring containment test and,
// on a hit, builds the preview snippet around the first occurrence.
//
// Lower-casing can change a rune's encoded length, so an index into the
// lowered value is not an index into the original. The fold keeps a byte
// offset map and the match is translated back before slicing.
func valueMatch(value, query string) (string, bool) {
	lowered, offsets := foldWithOffsets(value)
	loweredQuery := strings.ToLower(query)

	idx := strings.Index(lowered, loweredQuery)
	if idx < 0 {
		return "", false
	}
	return buildPreview(value, offsets[idx], offsets[idx+len(loweredQuery)]), true
}

// foldWithOffsets lower-cases value rune by rune and records, for every
// byte of the lowered form, the offset of the original rune it came from.
// One trailing entry maps the lowered end to len(value), so any match end
// translates back to a valid slice bound.
func foldWithOffsets(value string) (string, []int) {
	var b strings.Builder
	b.Grow(len(value))
	offsets := make([]int, 0, len(value)+1)

	for i, r := range value {
		lower := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lower); j++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(lower)
	}
	offsets = append(offsets, len(value))
	return b.String(), offsets
}

// buildPreview cuts the snippet spanning previewContext bytes before the
// match start through previewContext after the match end, clamped to the
// value bounds and widened to rune boundaries, with ellipsis markers
// wherever the snippet was clamped away from a boundary.
func buildPreview(value string, start, end int) string {
	from := start - previewContext
	if from < 0 {
		from = 0
	}
	for from > 0 && !utf8.RuneStart(value[from]) {
		from--
	}

	to := end + previewContext
	if to > len(value) {
		to = len(value)
	}
	for to < len(value) && !utf8.RuneStart(value[to]) {
		to++
	}

	snippet := collapser.Replace(value[from:to])
	if from > 0 {
		snippet = ellipsis + snippet
	}
	if to < len(value) {
		snippet += ellipsis
	}
	return snippet
}
