package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDeliversDebouncedEvent(t *testing.T) {
	dir := t.TempDir()

	w, err := New(nil, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	w.Add(dir)

	// A burst of writes collapses into a single notification.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "wrangler.toml"), []byte("name = \"x\""), 0o644))
	}

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case <-w.Events():
		t.Fatal("burst should have been debounced into one notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := New(nil, time.Millisecond)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcherAddMissingPathIsNonFatal(t *testing.T) {
	w, err := New(nil, time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	w.Add(filepath.Join(t.TempDir(), "does-not-exist"))
}
