package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvpeek/kvpeek/pkg/types"
)

// applyRecorder collects applied passes in order.
type applyRecorder struct {
	mu      sync.Mutex
	queries []string
	results [][]types.SearchResult
}

func (r *applyRecorder) apply(query string, results []types.SearchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	r.results = append(r.results, results)
}

func (r *applyRecorder) applied() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestLiveDebounceSupersedesPendingPass(t *testing.T) {
	project := t.TempDir()
	seedNamespace(t, project, "ns1", "db1.sqlite", map[string]string{
		"alpha": "v",
		"beta":  "v",
	})
	projects := []types.Project{{
		Name:     "api",
		Path:     project,
		Bindings: []types.NamespaceBinding{{Binding: "CACHE", ID: "ns1"}},
	}}

	index, _ := newTestIndex(t)
	rec := &applyRecorder{}
	live := NewLive(index, 20*time.Millisecond, rec.apply)
	defer live.Stop()

	// Two keystrokes inside the debounce window: only the second pass
	// may ever apply.
	live.Update(t.Context(), "alp", projects)
	live.Update(t.Context(), "bet", projects)

	waitFor(t, func() bool { return len(rec.applied()) == 1 })
	time.Sleep(50 * time.Millisecond) // the superseded pass must stay dead

	applied := rec.applied()
	require.Equal(t, []string{"bet"}, applied)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.results[0], 1)
	assert.Equal(t, "beta", rec.results[0][0].Key)
}

func TestLiveEmptyQueryAppliesImmediately(t *testing.T) {
	index, _ := newTestIndex(t)
	rec := &applyRecorder{}
	live := NewLive(index, time.Hour, rec.apply) // debounce must not matter
	defer live.Stop()

	live.Update(t.Context(), "", nil)

	applied := rec.applied()
	require.Equal(t, []string{""}, applied)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Nil(t, rec.results[0])
}

func TestLiveStopDiscardsPending(t *testing.T) {
	project := t.TempDir()
	seedNamespace(t, project, "ns1", "db1.sqlite", map[string]string{"alpha": "v"})
	projects := []types.Project{{
		Name:     "api",
		Path:     project,
		Bindings: []types.NamespaceBinding{{Binding: "CACHE", ID: "ns1"}},
	}}

	index, _ := newTestIndex(t)
	rec := &applyRecorder{}
	live := NewLive(index, 10*time.Millisecond, rec.apply)

	live.Update(t.Context(), "alp", projects)
	live.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.applied())
}
