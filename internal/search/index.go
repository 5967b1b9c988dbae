package search

import (
	"context"
	"crypto/sha256"
	"errors"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kvpeek/kvpeek/internal/kv"
	"github.com/kvpeek/kvpeek/pkg/types"
)

// searchWorkers bounds the per-project fan-out of a search pass.
const searchWorkers = 4

// Options tunes a single search pass.
type Options struct {
	Limit    int  // maximum results; 0 means unlimited
	UseCache bool // serve repeated identical queries from cache
	CacheTTL time.Duration
}

// cacheEntry is a cached result set with an expiration time.
type cacheEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// Index searches keys and values across all namespaces of all discovered
// projects. Keys are matched with ordered fuzzy matching; values with
// case-insensitive substring containment, attempted only when the key did
// not already match.
type Index struct {
	store *kv.Store
	log   *zap.Logger

	cacheMu sync.Mutex
	cache   *lru.Cache[[32]byte, *cacheEntry]
}

// New creates an Index backed by store.
func New(store *kv.Store, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New[[32]byte, *cacheEntry](256)
	if err != nil {
		// Only reachable with an invalid size parameter.
		panic(err)
	}
	return &Index{store: store, log: log, cache: cache}
}

// Search runs one full pass over the given projects. Results are grouped
// by project, then namespace, then key ascending within a namespace; there
// is no relevance scoring beyond match/no-match. An empty query returns no
// results: callers treat it as "clear search", not "match all". The only
// error returned is context cancellation; all data-level failures degrade
// to absent results upstream.
func (i *Index) Search(ctx context.Context, query string, projects []types.Project, opts Options) ([]types.SearchResult, error) {
	if query == "" {
		return nil, nil
	}

	if opts.UseCache {
		if cached, ok := i.checkCache(query, projects); ok {
			return clamp(cached, opts.Limit), nil
		}
	}

	// Fan out one worker per project, but keep the output grouped in
	// input order by collecting into a per-project slot.
	perProject := make([][]types.SearchResult, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchWorkers)

	for idx, project := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perProject[idx] = i.searchProject(gctx, query, project)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0)
	for _, group := range perProject {
		results = append(results, group...)
	}

	if opts.UseCache {
		i.storeInCache(query, projects, results, opts.CacheTTL)
	}

	return clamp(results, opts.Limit), nil
}

// searchProject scans every namespace binding of one project in order.
func (i *Index) searchProject(ctx context.Context, query string, project types.Project) []types.SearchResult {
	storageRoot := kv.StorageRoot(project.Path)
	results := make([]types.SearchResult, 0)

	for _, binding := range project.Bindings {
		dbPath, err := i.store.Resolve(ctx, storageRoot, binding.ID)
		if err != nil {
			// No data for this namespace yet; nothing to search.
			continue
		}

		for _, entry := range i.store.ListEntries(ctx, dbPath) {
			if ctx.Err() != nil {
				return results
			}

			result := types.SearchResult{
				Project:     project.Name,
				ProjectPath: project.Path,
				Namespace:   binding.Binding,
				NamespaceID: binding.ID,
				Key:         entry.Key,
			}

			if Match(query, entry.Key) {
				result.MatchedKey = true
				results = append(results, result)
				continue
			}

			value, err := i.store.GetValue(ctx, project.Path, binding.ID, entry.Key)
			if err != nil {
				if !errors.Is(err, kv.ErrNotFound) {
					i.log.Warn("failed to fetch value during search",
						zap.String("namespace", binding.ID),
						zap.String("key", entry.Key),
						zap.Error(err))
				}
				continue
			}
			if preview, ok := valueMatch(value, query); ok {
				result.MatchedValue = true
				result.Preview = preview
				results = append(results, result)
			}
		}
	}

	return results
}

func clamp(results []types.SearchResult, limit int) []types.SearchResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// cacheKey hashes the query together with the project identity set, so a
// re-discovery that changes projects never serves stale groupings.
func cacheKey(query string, projects []types.Project) [32]byte {
	var b strings.Builder
	b.WriteString(query)
	for _, p := range projects {
		b.WriteString("|")
		b.WriteString(p.Path)
		for _, binding := range p.Bindings {
			b.WriteString(";")
			b.WriteString(binding.ID)
		}
	}
	return sha256.Sum256([]byte(b.String()))
}

func (i *Index) checkCache(query string, projects []types.Project) ([]types.SearchResult, bool) {
	key := cacheKey(query, projects)

	i.cacheMu.Lock()
	defer i.cacheMu.Unlock()

	entry, ok := i.cache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		i.cache.Remove(key)
		return nil, false
	}
	return entry.results, true
}

func (i *Index) storeInCache(query string, projects []types.Project, results []types.SearchResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	entry := &cacheEntry{results: results, expiresAt: time.Now().Add(ttl)}

	i.cacheMu.Lock()
	i.cache.Add(cacheKey(query, projects), entry)
	i.cacheMu.Unlock()
}

// InvalidateCache drops every cached result set. Called after
// re-discovery or storage invalidation.
func (i *Index) InvalidateCache() {
	i.cacheMu.Lock()
	i.cache.Purge()
	i.cacheMu.Unlock()
}
