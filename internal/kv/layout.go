package kv

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// On-disk layout written by wrangler's local runtime (miniflare v3). The
// layout is fixed, not configurable: candidate databases live in a shared
// directory with nothing tying a file to a namespace id, and each
// namespace's values live under its own blobs directory.
//
//	<project>/.wrangler/state/v3/kv/miniflare-KVNamespaceObject/*.sqlite
//	<project>/.wrangler/state/v3/kv/<namespaceID>/blobs/<blobID>
const (
	stateDirName     = ".wrangler"
	stateVersionPath = "state/v3"
	kvDirName        = "kv"
	candidateDirName = "miniflare-KVNamespaceObject"
	databaseExt      = ".sqlite"
	blobsDirName     = "blobs"
)

// StorageRoot returns the directory holding all local KV state for a
// worker project.
func StorageRoot(projectPath string) string {
	return filepath.Join(projectPath, stateDirName, stateVersionPath, kvDirName)
}

// candidateDir returns the shared directory of candidate database files.
func candidateDir(storageRoot string) string {
	return filepath.Join(storageRoot, candidateDirName)
}

// blobsDir returns the content-addressed blob directory for a namespace.
func blobsDir(storageRoot, namespaceID string) string {
	return filepath.Join(storageRoot, namespaceID, blobsDirName)
}

// blobPath returns the content file for a blob id within a namespace.
func blobPath(storageRoot, namespaceID, blobID string) string {
	return filepath.Join(blobsDir(storageRoot, namespaceID), blobID)
}

// candidateDatabases enumerates the primary database files under dir in a
// stable order. SQLite side files append -wal, -shm, or -journal after
// the full database name, so requiring the .sqlite suffix excludes them.
func candidateDatabases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), databaseExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
