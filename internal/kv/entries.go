package kv

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/kvpeek/kvpeek/pkg/types"
)

const (
	listEntriesQuery = `SELECT key, blob_id, expiration, metadata FROM _mf_entries ORDER BY key`
	entryByKeyQuery  = `SELECT blob_id FROM _mf_entries WHERE key = ?`
)

// ListEntries returns every entry in a resolved database file, sorted by
// key ascending. Query failures degrade to an empty slice: the caller
// treats "no entries" and "query failed" identically for display, so the
// failure is logged here rather than propagated.
func (s *Store) ListEntries(ctx context.Context, dbPath string) []types.Entry {
	db, err := s.handle(dbPath)
	if err != nil {
		s.log.Warn("failed to open entry database",
			zap.String("path", dbPath), zap.Error(err))
		return []types.Entry{}
	}

	rows, err := db.QueryContext(ctx, listEntriesQuery)
	if err != nil {
		s.log.Warn("failed to list entries",
			zap.String("path", dbPath), zap.Error(err))
		return []types.Entry{}
	}
	defer func() { _ = rows.Close() }()

	entries := make([]types.Entry, 0)
	for rows.Next() {
		var entry types.Entry
		var expiration sql.NullInt64
		var metadata sql.NullString

		if err := rows.Scan(&entry.Key, &entry.BlobID, &expiration, &metadata); err != nil {
			s.log.Warn("failed to scan entry",
				zap.String("path", dbPath), zap.Error(err))
			return []types.Entry{}
		}
		if expiration.Valid {
			exp := expiration.Int64
			entry.Expiration = &exp
		}
		if metadata.Valid {
			meta := metadata.String
			entry.Metadata = &meta
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("error iterating entries",
			zap.String("path", dbPath), zap.Error(err))
		return []types.Entry{}
	}

	return entries
}

// GetValue fetches one entry's full content by exact key. It resolves the
// namespace, looks up the entry's blob id, and reads the content file as
// UTF-8 text. Binary values are unsupported and come back garbled rather
// than erroring. A missing key, unresolvable namespace, or missing content
// file all return ErrNotFound.
func (s *Store) GetValue(ctx context.Context, projectPath, namespaceID, key string) (string, error) {
	storageRoot := StorageRoot(projectPath)

	dbPath, err := s.Resolve(ctx, storageRoot, namespaceID)
	if err != nil {
		return "", err
	}

	db, err := s.handle(dbPath)
	if err != nil {
		s.log.Warn("failed to open entry database",
			zap.String("path", dbPath), zap.Error(err))
		return "", ErrNotFound
	}

	var blobID string
	err = db.QueryRowContext(ctx, entryByKeyQuery, key).Scan(&blobID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		s.log.Warn("failed to look up entry by key",
			zap.String("path", dbPath), zap.String("key", key), zap.Error(err))
		return "", ErrNotFound
	}

	content, err := os.ReadFile(blobPath(storageRoot, namespaceID, blobID))
	if err != nil {
		// The entry references a content file that is gone. That is a
		// consistency violation in the runtime's store, not ours.
		s.log.Debug("content file missing for entry",
			zap.String("namespace", namespaceID),
			zap.String("key", key),
			zap.String("blob", blobID))
		return "", ErrNotFound
	}

	return string(content), nil
}
