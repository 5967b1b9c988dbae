// Package kv reads the local KV state that wrangler's dev runtime
// (miniflare v3) persists for Workers KV namespaces.
//
// The runtime stores each namespace's entries in one of several SQLite
// files inside a shared directory, and nothing on disk records which file
// belongs to which namespace id. The Store infers the mapping by probing:
// it samples a few blob ids from a candidate database and checks whether
// they exist as content files under the namespace's blobs directory. The
// blobs directory is the only cross-checkable signal linking a database to
// a namespace.
//
// # Basic Usage
//
//	store := kv.NewStore(logger)
//	defer store.Dispose()
//
//	dbPath, err := store.Resolve(ctx, kv.StorageRoot(projectPath), namespaceID)
//	if errors.Is(err, kv.ErrNotFound) {
//	    // The runtime has not written any data for this namespace yet.
//	}
//
//	for _, entry := range store.ListEntries(ctx, dbPath) {
//	    fmt.Println(entry.Key)
//	}
//
//	value, err := store.GetValue(ctx, projectPath, namespaceID, "user:42")
//
// # Caching
//
// Successful resolutions are cached for the life of the process. A cached
// path is re-verified against the disk on every Resolve; if the file has
// been deleted the entry and its open handle are evicted and a full probe
// runs again. Database handles are opened read-only, at most once per
// file, and closed only on invalidation or Dispose.
//
// # Known limitation
//
// Resolution accepts the first matching candidate without checking whether
// a second candidate would also match. If the runtime ever reuses blob ids
// across namespaces, two candidates could both appear valid and the wrong
// one could win. Observed runtime behavior makes this collision unlikely.
//
// All reads are pure with respect to the runtime's files: this package
// never creates, mutates, or deletes anything the runtime owns.
package kv
