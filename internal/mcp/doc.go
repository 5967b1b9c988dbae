// Package mcp implements the Model Context Protocol (MCP) server for kvpeek.
//
// The server exposes five tools for browsing locally persisted Workers KV
// data:
//   - list_projects: List discovered worker projects and their KV bindings
//   - list_keys: List the keys in one namespace, sorted ascending
//   - get_value: Fetch the stored value for a key
//   - search_kv: Fuzzy key and substring value search across all projects
//   - refresh_projects: Rescan the monorepo and drop cached resolutions
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout is reserved for protocol messages; all logging goes to stderr.
//
// # Basic Usage
//
// The server is typically started via the serve command:
//
//	kvpeek serve --root /path/to/monorepo
//
// While serving, project directories are watched and a debounced
// filesystem change triggers a rescan, so data written by a running
// wrangler dev session shows up without restarting the server.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "kvpeek": {
//	      "command": "/usr/local/bin/kvpeek",
//	      "args": ["serve", "--root", "/path/to/monorepo"]
//	    }
//	  }
//	}
//
// # Error Handling
//
// Absence is not an error: an unprovisioned namespace yields an empty key
// listing and a missing key yields {"found": false}. JSON-RPC errors are
// reserved for malformed arguments and genuine failures:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem)
//   - -32001: Empty search query
package mcp
