package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatExpiration(t *testing.T) {
	// Expirations are stored as epoch milliseconds, not seconds.
	assert.Equal(t, "2026-01-01T00:00:00Z", formatExpiration(1767225600000))
	assert.Equal(t, "1970-01-01T00:00:01Z", formatExpiration(1000))
}
