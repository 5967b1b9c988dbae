package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMatchShortValue(t *testing.T) {
	// The whole value fits inside the context window: no ellipsis.
	preview, ok := valueMatch("the quick brown fox jumps", "brown")
	require.True(t, ok)
	assert.Equal(t, "the quick brown fox jumps", preview)
}

func TestValueMatchLeadingEllipsis(t *testing.T) {
	value := strings.Repeat("x", 40) + "needle"
	preview, ok := valueMatch(value, "needle")
	require.True(t, ok)
	assert.Equal(t, "..."+strings.Repeat("x", 20)+"needle", preview)
}

func TestValueMatchTrailingEllipsis(t *testing.T) {
	value := "needle" + strings.Repeat("x", 40)
	preview, ok := valueMatch(value, "needle")
	require.True(t, ok)
	assert.Equal(t, "needle"+strings.Repeat("x", 20)+"...", preview)
}

func TestValueMatchBothEllipses(t *testing.T) {
	value := strings.Repeat("a", 30) + "needle" + strings.Repeat("b", 30)
	preview, ok := valueMatch(value, "needle")
	require.True(t, ok)
	assert.Equal(t, "..."+strings.Repeat("a", 20)+"needle"+strings.Repeat("b", 20)+"...", preview)
}

func TestValueMatchCaseInsensitive(t *testing.T) {
	_, ok := valueMatch(`{"name":"Alice"}`, "ALICE")
	assert.True(t, ok)
}

func TestValueMatchMiss(t *testing.T) {
	_, ok := valueMatch("the quick brown fox", "purple")
	assert.False(t, ok)
}

func TestValueMatchLowercasingGrowsBytes(t *testing.T) {
	// Ⱥ (U+023A, two bytes) lowers to ⱥ (U+2C65, three bytes), so indexes
	// into the lowered value run past the original's length.
	value := strings.Repeat("Ⱥ", 40) + "needle"
	preview, ok := valueMatch(value, "needle")
	require.True(t, ok)
	assert.Contains(t, preview, "needle")
	assert.True(t, strings.HasPrefix(preview, ellipsis))
}

func TestValueMatchLowercasingShrinksBytes(t *testing.T) {
	// İ (U+0130, two bytes) lowers to i (one byte): the window must still
	// land on the match rather than drift toward the front of the value.
	value := strings.Repeat("İ", 40) + "needle"
	preview, ok := valueMatch(value, "needle")
	require.True(t, ok)
	assert.Contains(t, preview, "needle")
}

func TestValueMatchMultibyteQuery(t *testing.T) {
	value := strings.Repeat("x", 30) + "grüße" + strings.Repeat("y", 30)
	preview, ok := valueMatch(value, "GRÜSSE")
	assert.False(t, ok, "sharp s does not fold to SS under simple case mapping")

	preview, ok = valueMatch(value, "GRÜßE")
	require.True(t, ok)
	assert.Contains(t, preview, "grüße")
}

func TestPreviewWindowKeepsRuneBoundaries(t *testing.T) {
	// Three-byte runes put the raw window edges mid-rune; the snippet must
	// widen to rune boundaries instead of emitting broken UTF-8.
	value := strings.Repeat("世", 30) + "needle" + strings.Repeat("界", 30)
	preview, ok := valueMatch(value, "needle")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(preview, ellipsis))
	assert.True(t, strings.HasSuffix(preview, ellipsis))
	assert.Contains(t, preview, "needle")
	assert.True(t, utf8.ValidString(preview))
}

func TestPreviewCollapsesNewlines(t *testing.T) {
	preview, ok := valueMatch("line one\nneedle\nline three", "needle")
	require.True(t, ok)
	assert.Equal(t, "line one needle line three", preview)
}

func TestPreviewCollapsesEscapeSequences(t *testing.T) {
	// JSON-encoded values carry the two-character escape sequences.
	preview, ok := valueMatch(`first\nneedle\tlast`, "needle")
	require.True(t, ok)
	assert.Equal(t, "first needle last", preview)
}
