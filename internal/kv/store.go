package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrNotFound is returned for every expected-absence condition: the local
// runtime has not written any data yet, no candidate database matched the
// namespace, the key does not exist, or the backing content file is gone.
// Callers render it as an empty state, never as a failure.
var ErrNotFound = errors.New("not found")

// Store resolves namespace ids to their backing database files and reads
// entries out of them. It owns two process-wide caches: resolved paths per
// namespace id, and one open database handle per resolved file. Both are
// mutex-guarded; Store is safe for concurrent use.
type Store struct {
	log *zap.Logger

	mu       sync.Mutex
	resolved map[string]string  // namespace id -> database file path
	handles  map[string]*sql.DB // database file path -> open handle
	disposed bool

	// probes counts full probing passes, for diagnostics and tests.
	probes atomic.Uint64
}

// NewStore creates a Store. Callers must arrange for Dispose to run on
// shutdown so no database handle leaks.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		log:      log,
		resolved: make(map[string]string),
		handles:  make(map[string]*sql.DB),
	}
}

// openDatabase opens a SQLite database read-only with a single connection.
// The file belongs to the local runtime; this tool never writes to it.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable query_only mode: %w", err)
	}

	return db, nil
}

// handle returns the open handle for a database file, opening it lazily on
// first access. Handles stay open until invalidation or disposal.
func (s *Store) handle(dbPath string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, errors.New("store is disposed")
	}
	if db, ok := s.handles[dbPath]; ok {
		return db, nil
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	s.handles[dbPath] = db
	return db, nil
}

// Invalidate drops the cached resolution for a namespace id and closes the
// open handle for its database file, if any. The next Resolve re-probes.
func (s *Store) Invalidate(namespaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbPath, ok := s.resolved[namespaceID]
	if !ok {
		return
	}
	delete(s.resolved, namespaceID)

	if db, ok := s.handles[dbPath]; ok {
		delete(s.handles, dbPath)
		if err := db.Close(); err != nil {
			s.log.Warn("failed to close database handle",
				zap.String("path", dbPath), zap.Error(err))
		}
	}
}

// Dispose closes every open handle and clears both caches. It is
// idempotent and must run exactly once per shutdown path.
func (s *Store) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for dbPath, db := range s.handles {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s: %w", dbPath, err)
		}
	}
	s.handles = make(map[string]*sql.DB)
	s.resolved = make(map[string]string)
	s.disposed = true
	return firstErr
}

func (s *Store) cachedPath(namespaceID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.resolved[namespaceID]
	return path, ok
}

func (s *Store) remember(namespaceID, dbPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.disposed {
		s.resolved[namespaceID] = dbPath
	}
}

// ProbeCount reports how many full probing passes have run. Resolutions
// served from cache do not increment it.
func (s *Store) ProbeCount() uint64 {
	return s.probes.Load()
}
