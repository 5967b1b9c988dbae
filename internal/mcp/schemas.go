package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// listProjectsTool returns the tool definition for list_projects
func listProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_projects",
		Description: "List worker projects discovered in the monorepo and their KV namespace bindings",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// listKeysTool returns the tool definition for list_keys
func listKeysTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_keys",
		Description: "List the keys stored in one KV namespace of a worker project, sorted ascending",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the worker project directory (contains wrangler.toml or wrangler.json)",
				},
				"namespace_id": map[string]interface{}{
					"type":        "string",
					"description": "KV namespace id from the wrangler configuration",
				},
			},
			Required: []string{"project_path", "namespace_id"},
		},
	}
}

// getValueTool returns the tool definition for get_value
func getValueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_value",
		Description: "Fetch the stored value for a key in a KV namespace",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the worker project directory",
				},
				"namespace_id": map[string]interface{}{
					"type":        "string",
					"description": "KV namespace id from the wrangler configuration",
				},
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Exact key to fetch",
				},
			},
			Required: []string{"project_path", "namespace_id", "key"},
		},
	}
}

// searchKVTool returns the tool definition for search_kv
func searchKVTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_kv",
		Description: "Search keys (fuzzy) and values (substring) across every namespace of every project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query. Keys match by subsequence, values by case-insensitive substring",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-1000)",
					"default":     100,
					"minimum":     1,
					"maximum":     1000,
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If false, bypass the query result cache",
					"default":     true,
				},
			},
			Required: []string{"query"},
		},
	}
}

// refreshProjectsTool returns the tool definition for refresh_projects
func refreshProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "refresh_projects",
		Description: "Rescan the monorepo for worker projects and drop cached namespace resolutions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
