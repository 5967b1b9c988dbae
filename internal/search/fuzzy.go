package search

import "strings"

// Match reports whether query fuzzy-matches key: every character of the
// lower-cased query must appear in the lower-cased key in order, not
// necessarily contiguously. The scan is greedy left-to-right with no
// backtracking. An empty query matches everything; callers are expected to
// treat empty input as "clear search" before getting here.
func Match(query, key string) bool {
	if query == "" {
		return true
	}

	q := []rune(strings.ToLower(query))
	qi := 0
	for _, r := range strings.ToLower(key) {
		if r == q[qi] {
			qi++
			if qi == len(q) {
				return true
			}
		}
	}
	return false
}
