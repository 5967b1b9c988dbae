package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kvpeek/kvpeek/pkg/types"
)

// DefaultDebounce is the delay between the last keystroke and the search
// pass it triggers.
const DefaultDebounce = 500 * time.Millisecond

// Live runs debounced searches for live-typed queries. Each Update bumps a
// generation counter and restarts the debounce timer; when a pass finally
// runs, its results are applied only if no newer Update has arrived in the
// meantime. In-flight passes are not aborted, just discarded when
// superseded.
type Live struct {
	index    *Index
	apply    func(query string, results []types.SearchResult)
	debounce time.Duration
	log      *zap.Logger

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// NewLive creates a live searcher. apply receives the results of each
// non-superseded pass; an empty query is applied immediately with nil
// results, meaning "clear search".
func NewLive(index *Index, debounce time.Duration, apply func(string, []types.SearchResult)) *Live {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Live{
		index:    index,
		apply:    apply,
		debounce: debounce,
		log:      index.log,
	}
}

// Update registers new input. The pending timer, if any, is cancelled and
// restarted; the previous in-flight pass, if any, is superseded.
func (l *Live) Update(ctx context.Context, query string, projects []types.Project) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if query == "" {
		l.mu.Unlock()
		l.apply("", nil)
		return
	}
	l.timer = time.AfterFunc(l.debounce, func() {
		l.run(ctx, gen, query, projects)
	})
	l.mu.Unlock()
}

// Stop cancels any pending pass. Results of a pass already running are
// discarded because its generation can no longer match.
func (l *Live) Stop() {
	l.mu.Lock()
	l.gen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.mu.Unlock()
}

func (l *Live) run(ctx context.Context, gen uint64, query string, projects []types.Project) {
	if !l.current(gen) {
		return
	}

	results, err := l.index.Search(ctx, query, projects, Options{})
	if err != nil {
		l.log.Debug("live search pass aborted", zap.Error(err))
		return
	}

	// Re-check after the pass: a keystroke may have superseded us while
	// values were being fetched.
	if !l.current(gen) {
		return
	}
	l.apply(query, results)
}

func (l *Live) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen
}
