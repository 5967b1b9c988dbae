package kv

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// sampleLimit bounds how many blob ids are probed per candidate database.
const sampleLimit = 3

const (
	countEntriesQuery  = `SELECT COUNT(*) FROM _mf_entries`
	sampleBlobIDsQuery = `SELECT blob_id FROM _mf_entries LIMIT ?`
)

// Resolve determines which database file under storageRoot backs the given
// namespace id. The runtime records no mapping from file to namespace, so
// resolution probes: a candidate matches when a bounded sample of its blob
// ids all exist under the namespace's blobs directory. The first matching
// candidate wins and is cached; nothing is cached on failure, so a failed
// resolution is retried in full on the next call.
//
// Every absence condition (state never written, no blobs for the
// namespace, no matching candidate) returns ErrNotFound. Genuine I/O
// errors are logged and also reported as ErrNotFound so callers can render
// an empty state instead of failing.
func (s *Store) Resolve(ctx context.Context, storageRoot, namespaceID string) (string, error) {
	if cached, ok := s.cachedPath(namespaceID); ok {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
		// The resolved file disappeared from disk. Drop the cache entry
		// and its handle, then fall through to a full probe.
		s.Invalidate(namespaceID)
	}

	dir := candidateDir(storageRoot)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		s.log.Debug("no candidate database directory",
			zap.String("dir", dir), zap.String("namespace", namespaceID))
		return "", ErrNotFound
	}

	blobs := blobsDir(storageRoot, namespaceID)
	if fi, err := os.Stat(blobs); err != nil || !fi.IsDir() {
		s.log.Debug("no blobs written for namespace",
			zap.String("namespace", namespaceID))
		return "", ErrNotFound
	}

	candidates, err := candidateDatabases(dir)
	if err != nil {
		s.log.Warn("failed to enumerate candidate databases",
			zap.String("dir", dir), zap.Error(err))
		return "", ErrNotFound
	}

	s.probes.Add(1)
	for _, candidate := range candidates {
		if s.candidateMatches(ctx, candidate, blobs) {
			s.remember(namespaceID, candidate)
			return candidate, nil
		}
	}

	return "", ErrNotFound
}

// candidateMatches probes one candidate database against a namespace's
// blobs directory. A candidate matches iff it holds at least one entry and
// every sampled blob id exists as a content file. Sampling stops at the
// first miss, which keeps the common non-matching case cheap. A candidate
// that errors during probing never matches.
func (s *Store) candidateMatches(ctx context.Context, dbPath, blobs string) bool {
	db, err := s.handle(dbPath)
	if err != nil {
		s.log.Warn("failed to open candidate database",
			zap.String("path", dbPath), zap.Error(err))
		return false
	}

	var total int
	if err := db.QueryRowContext(ctx, countEntriesQuery).Scan(&total); err != nil {
		s.log.Warn("failed to count entries in candidate",
			zap.String("path", dbPath), zap.Error(err))
		return false
	}
	if total == 0 {
		return false
	}

	rows, err := db.QueryContext(ctx, sampleBlobIDsQuery, sampleLimit)
	if err != nil {
		s.log.Warn("failed to sample blob ids from candidate",
			zap.String("path", dbPath), zap.Error(err))
		return false
	}
	defer func() { _ = rows.Close() }()

	sampled := 0
	for rows.Next() {
		var blobID string
		if err := rows.Scan(&blobID); err != nil {
			s.log.Warn("failed to scan sampled blob id",
				zap.String("path", dbPath), zap.Error(err))
			return false
		}
		sampled++
		if _, err := os.Stat(filepath.Join(blobs, blobID)); err != nil {
			return false
		}
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("error iterating sampled blob ids",
			zap.String("path", dbPath), zap.Error(err))
		return false
	}

	return sampled > 0
}
