// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

// tools returns the five tool schemas advertised by tools/list (§6.2).
func (s *rpcServer) tools() []mcpTool {
	return []mcpTool{
		{
			Name:        "read",
			Description: "Read a Python file from the project at a chosen level of detail. Small files are returned verbatim; larger files are parsed and returned as a list of nodes (classes, functions, methods) at the requested level: skeleton (names and dependents only), summary (plus signature and docstring), or full (plus complete source).",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":   map[string]any{"type": "string", "description": "Path to the file, absolute or relative to the project root."},
					"level":  map[string]any{"type": "string", "enum": []string{"skeleton", "summary", "full"}, "description": "Detail level. Defaults to skeleton."},
					"format": map[string]any{"type": "string", "enum": []string{"standard", "compact"}, "description": "Field naming. compact uses short keys and relative ids."},
					"fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Restrict the returned fields to this list. Ignored unless field selection is enabled in the project configuration."},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "find",
			Description: "Find nodes (functions, classes, methods, imports) whose name contains the given pattern, case-insensitively. Only searches nodes already loaded into memory by a prior read.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"pattern": map[string]any{"type": "string", "description": "Substring to match against node names."}},
				"required":   []string{"pattern"},
			},
		},
		{
			Name:        "get_dependencies",
			Description: "Walk the dependency graph from a node id. By default follows reverse edges (who depends on this node) breadth-first to depth 1. Forward call edges are not stored; use get_calls for those.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"node_id":   map[string]any{"type": "string", "description": "The node id to start from, e.g. '/path/to/file.py::ClassName.method'."},
					"depth":     map[string]any{"type": "integer", "description": "Maximum traversal depth. depth=0 returns no results. Defaults to 1."},
					"strategy":  map[string]any{"type": "string", "enum": []string{"bfs", "dfs"}, "description": "Traversal order. Defaults to bfs."},
					"direction": map[string]any{"type": "string", "enum": []string{"forward", "reverse", "both"}, "description": "Edge direction. Defaults to reverse."},
					"kinds":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Restrict results to these node kinds (function, method, class, module, import, constant, variable)."},
				},
				"required": []string{"node_id"},
			},
		},
		{
			Name:        "get_calls",
			Description: "List the names a function or method calls, by reparsing its stored source in isolation. Not cached: costs roughly 150 tokens each call.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"node_id": map[string]any{"type": "string", "description": "The node id of the function or method to inspect."}},
				"required":   []string{"node_id"},
			},
		},
		{
			Name:        "stats",
			Description: "Report cache hit rate, files parsed, and the number of nodes currently held in memory.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
	}
}
