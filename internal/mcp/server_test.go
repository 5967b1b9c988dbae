package mcp

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvpeek/kvpeek/internal/config"
	"github.com/kvpeek/kvpeek/internal/kv"
)

func writeProject(t *testing.T, root, name string, bindings map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	content := fmt.Sprintf("name = %q\n", name)
	for binding, id := range bindings {
		content += fmt.Sprintf("\n[[kv_namespaces]]\nbinding = %q\nid = %q\n", binding, id)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrangler.toml"), []byte(content), 0o644))
	return dir
}

// writeNamespace provisions local KV state for one namespace: a candidate
// database plus one content file per entry.
func writeNamespace(t *testing.T, projectPath, namespaceID string, entries map[string]string) {
	t.Helper()
	storageRoot := kv.StorageRoot(projectPath)
	candidates := filepath.Join(storageRoot, "miniflare-KVNamespaceObject")
	blobs := filepath.Join(storageRoot, namespaceID, "blobs")
	require.NoError(t, os.MkdirAll(candidates, 0o755))
	require.NoError(t, os.MkdirAll(blobs, 0o755))

	db, err := sql.Open(kv.DriverName, filepath.Join(candidates, namespaceID+".sqlite"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE _mf_entries (
		key TEXT PRIMARY KEY,
		blob_id TEXT NOT NULL,
		expiration INTEGER,
		metadata TEXT
	)`)
	require.NoError(t, err)

	for key, value := range entries {
		blobID := "blob-" + key
		_, err = db.Exec(`INSERT INTO _mf_entries (key, blob_id) VALUES (?, ?)`, key, blobID)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(blobs, blobID), []byte(value), 0o644))
	}
}

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	cfg := &config.Config{Root: root}
	cfg.Search.Limit = 100

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Dispose() })
	return s
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultJSON decodes the text payload of a tool result.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestNewServerScansProjects(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "api", map[string]string{"CACHE": "ns-api"})
	writeProject(t, root, "web", map[string]string{"SESSIONS": "ns-web"})

	s := newTestServer(t, root)
	require.Len(t, s.Projects(), 2)

	result, err := s.handleListProjects(t.Context(), toolRequest(nil))
	require.NoError(t, err)
	response := resultJSON(t, result)
	assert.Equal(t, float64(2), response["count"])
}

func TestListKeysTool(t *testing.T) {
	root := t.TempDir()
	dir := writeProject(t, root, "api", map[string]string{"CACHE": "ns-api"})
	writeNamespace(t, dir, "ns-api", map[string]string{
		"user:1": `{"id":1}`,
		"user:2": `{"id":2}`,
	})

	s := newTestServer(t, root)
	result, err := s.handleListKeys(t.Context(), toolRequest(map[string]interface{}{
		"project_path": dir,
		"namespace_id": "ns-api",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, true, response["provisioned"])
	assert.Equal(t, float64(2), response["count"])

	keys := response["keys"].([]interface{})
	first := keys[0].(map[string]interface{})
	assert.Equal(t, "user:1", first["key"])
}

func TestListKeysUnprovisionedNamespace(t *testing.T) {
	root := t.TempDir()
	dir := writeProject(t, root, "api", map[string]string{"CACHE": "ns-api"})

	s := newTestServer(t, root)
	result, err := s.handleListKeys(t.Context(), toolRequest(map[string]interface{}{
		"project_path": dir,
		"namespace_id": "ns-api",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, false, response["provisioned"])
	assert.Equal(t, float64(0), response["count"])
}

func TestListKeysRejectsMissingArgs(t *testing.T) {
	root := t.TempDir()
	s := newTestServer(t, root)

	_, err := s.handleListKeys(t.Context(), toolRequest(map[string]interface{}{
		"namespace_id": "ns-api",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGetValueTool(t *testing.T) {
	root := t.TempDir()
	dir := writeProject(t, root, "api", map[string]string{"CACHE": "ns-api"})
	writeNamespace(t, dir, "ns-api", map[string]string{"user:42": `{"name":"amy"}`})

	s := newTestServer(t, root)

	result, err := s.handleGetValue(t.Context(), toolRequest(map[string]interface{}{
		"project_path": dir,
		"namespace_id": "ns-api",
		"key":          "user:42",
	}))
	require.NoError(t, err)
	response := resultJSON(t, result)
	assert.Equal(t, true, response["found"])
	assert.Equal(t, `{"name":"amy"}`, response["value"])

	result, err = s.handleGetValue(t.Context(), toolRequest(map[string]interface{}{
		"project_path": dir,
		"namespace_id": "ns-api",
		"key":          "user:404",
	}))
	require.NoError(t, err)
	assert.Equal(t, false, resultJSON(t, result)["found"])
}

func TestSearchKVTool(t *testing.T) {
	root := t.TempDir()
	dir := writeProject(t, root, "api", map[string]string{"CACHE": "ns-api"})
	writeNamespace(t, dir, "ns-api", map[string]string{
		"user:1":    `{"role":"admin"}`,
		"session:9": `{"role":"guest"}`,
	})

	s := newTestServer(t, root)
	result, err := s.handleSearchKV(t.Context(), toolRequest(map[string]interface{}{
		"query": "usr",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(1), response["count"])
	hit := response["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "user:1", hit["key"])
	assert.Equal(t, "key", hit["matched"])
}

func TestSearchKVRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	_, err := s.handleSearchKV(t.Context(), toolRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestRefreshProjectsPicksUpNewProject(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "api", map[string]string{"CACHE": "ns-api"})

	s := newTestServer(t, root)
	require.Len(t, s.Projects(), 1)

	writeProject(t, root, "web", map[string]string{"SESSIONS": "ns-web"})

	result, err := s.handleRefreshProjects(t.Context(), toolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, float64(2), resultJSON(t, result)["count"])
	assert.Len(t, s.Projects(), 2)
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, validatePath(dir))
	assert.ErrorIs(t, validatePath("relative/path"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(dir, "missing")), ErrPathNotFound)

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.ErrorIs(t, validatePath(file), ErrNotDirectory)
}
