package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kvpeek/kvpeek/internal/kv"
	"github.com/kvpeek/kvpeek/internal/search"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32001 // Query parameter is empty
)

// handleListProjects handles the list_projects tool invocation
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects := s.Projects()

	out := make([]map[string]interface{}, 0, len(projects))
	for _, project := range projects {
		bindings := make([]map[string]interface{}, 0, len(project.Bindings))
		for _, binding := range project.Bindings {
			bindings = append(bindings, map[string]interface{}{
				"binding":      binding.Binding,
				"namespace_id": binding.ID,
			})
		}
		out = append(out, map[string]interface{}{
			"name":     project.Name,
			"path":     project.Path,
			"bindings": bindings,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"root":     s.cfg.Root,
		"count":    len(projects),
		"projects": out,
	})), nil
}

// handleListKeys handles the list_keys tool invocation
func (s *Server) handleListKeys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	projectPath, namespaceID, err := projectArgs(args)
	if err != nil {
		return nil, err
	}

	dbPath, err := s.store.Resolve(ctx, kv.StorageRoot(projectPath), namespaceID)
	if errors.Is(err, kv.ErrNotFound) {
		// The namespace has no local data yet. Not an error: the UI
		// shows an empty listing.
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"namespace_id": namespaceID,
			"provisioned":  false,
			"count":        0,
			"keys":         []interface{}{},
		})), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to resolve namespace", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := s.store.ListEntries(ctx, dbPath)
	keys := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		item := map[string]interface{}{"key": entry.Key}
		if entry.Expiration != nil {
			item["expiration"] = *entry.Expiration
		}
		if entry.Metadata != nil {
			item["metadata"] = *entry.Metadata
		}
		keys = append(keys, item)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"namespace_id": namespaceID,
		"provisioned":  true,
		"count":        len(keys),
		"keys":         keys,
	})), nil
}

// handleGetValue handles the get_value tool invocation
func (s *Server) handleGetValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	projectPath, namespaceID, err := projectArgs(args)
	if err != nil {
		return nil, err
	}

	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "key parameter is required", map[string]interface{}{
			"param":  "key",
			"reason": "missing or empty",
		})
	}

	value, err := s.store.GetValue(ctx, projectPath, namespaceID, key)
	if errors.Is(err, kv.ErrNotFound) {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"namespace_id": namespaceID,
			"key":          key,
			"found":        false,
		})), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read value", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"namespace_id": namespaceID,
		"key":          key,
		"found":        true,
		"value":        value,
	})), nil
}

// handleSearchKV handles the search_kv tool invocation
func (s *Server) handleSearchKV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", s.cfg.Search.Limit)
	if limit < 1 || limit > 1000 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 1000", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.index.Search(ctx, query, s.Projects(), search.Options{
		Limit:    limit,
		UseCache: getBoolDefault(args, "use_cache", true),
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		item := map[string]interface{}{
			"project":      r.Project,
			"project_path": r.ProjectPath,
			"binding":      r.Namespace,
			"namespace_id": r.NamespaceID,
			"key":          r.Key,
		}
		if r.MatchedKey {
			item["matched"] = "key"
		} else if r.MatchedValue {
			item["matched"] = "value"
			item["preview"] = r.Preview
		}
		out = append(out, item)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"count":   len(out),
		"results": out,
	})), nil
}

// handleRefreshProjects handles the refresh_projects tool invocation
func (s *Server) handleRefreshProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.Refresh()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"root":  s.cfg.Root,
		"count": len(projects),
	})), nil
}

// projectArgs extracts and validates the project_path and namespace_id
// parameters shared by the per-namespace tools.
func projectArgs(args map[string]interface{}) (projectPath, namespaceID string, err error) {
	projectPath, ok := args["project_path"].(string)
	if !ok || projectPath == "" {
		return "", "", newMCPError(ErrorCodeInvalidParams, "project_path parameter is required", map[string]interface{}{
			"param":  "project_path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(projectPath); err != nil {
		return "", "", newMCPError(ErrorCodeInvalidParams, "invalid project_path", map[string]interface{}{
			"param":  "project_path",
			"reason": err.Error(),
		})
	}

	namespaceID, ok = args["namespace_id"].(string)
	if !ok || namespaceID == "" {
		return "", "", newMCPError(ErrorCodeInvalidParams, "namespace_id parameter is required", map[string]interface{}{
			"param":  "namespace_id",
			"reason": "missing or empty",
		})
	}
	return projectPath, namespaceID, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that a path names an existing, readable directory
func validatePath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
