// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/auzoom/internal/config"
	"github.com/kraklabs/auzoom/internal/errors"
	"github.com/kraklabs/auzoom/pkg/graph"
	"github.com/kraklabs/auzoom/pkg/query"
)

const (
	serverName    = "auzoom"
	serverVersion = "0.1.0"
	mcpProtocol   = "2024-11-05"
)

var serveInstructions = `auzoom exposes five tools for navigating a Python codebase at the
granularity an agent actually needs, instead of dumping whole files into
context.

  read              Read a file at skeleton/summary/full detail.
  find              Find nodes by name (substring, case-insensitive).
  get_dependencies  Walk the reverse call/import graph from a node.
  get_calls         List the names a function/method calls (reparsed, uncached).
  stats             Report cache hit rate and index size.

Start with read at level=skeleton to see what's in a file cheaply, then
re-read specific nodes at level=full once you know what you need.`

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type mcpServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type mcpCapabilities struct {
	Tools map[string]any `json:"tools,omitempty"`
}

type mcpInitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    mcpCapabilities `json:"capabilities"`
	ServerInfo      mcpServerInfo   `json:"serverInfo"`
	Instructions    string          `json:"instructions"`
}

type mcpTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type mcpToolsListResult struct {
	Tools []mcpTool `json:"tools"`
}

type mcpToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type mcpToolResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// rpcServer holds the state of a running stdio JSON-RPC server (§6.4).
type rpcServer struct {
	svc    *query.Service
	warmer *graph.Warmer
	logger *slog.Logger
}

// runServe builds the graph/query stack rooted at root and serves the
// five tools over stdin/stdout until stdin closes. Returns the process
// exit code (§6.4: 0 on clean EOF, 1 on a fatal transport error).
func runServe(root, configPath string, globals GlobalFlags) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{}))

	cfgPath := config.Path(root, configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		ue := errors.NewInternalError(
			"Cannot load auzoom configuration",
			"project.yaml is missing or invalid",
			"Run 'auzoom init' to create one; falling back to defaults.",
			err,
		)
		fmt.Fprintf(os.Stderr, "%s\n", ue.Format(globals.NoColor))
		cfg = config.Default("")
	}

	g, err := graph.New(root, logger)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot initialize code graph",
			err.Error(),
			"Check that the project root is readable.",
			err,
		), globals.JSON)
	}

	svc := query.NewService(g, cfg.Graph.SmallFileThreshold, cfg.Graph.CompactFormatEnabled, cfg.Graph.FieldSelectionEnabled)

	var warmer *graph.Warmer
	if cfg.AutoWarm {
		warmer = graph.NewWarmer(g, graph.WarmerConfig{
			EntryPointScanLimit:  cfg.Warmer.EntryPointScanLimit,
			DiscoveryPreloadSize: cfg.Warmer.DiscoveryPreloadSize,
			WarmDelay:            0,
		}, logger)
		warmer.RunBackground()
	}

	server := &rpcServer{svc: svc, warmer: warmer, logger: logger}
	return server.serveLoop(os.Stdin, os.Stdout)
}

// serveLoop reads one JSON-RPC request per line from r and writes one
// response per line to w, per the line-delimited-JSON-RPC transport (§6.4).
func (s *rpcServer) serveLoop(r *os.File, w *os.File) int {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.writeResponse(w, jsonRPCResponse{
				JSONRPC: "2.0",
				Error:   &rpcError{Code: -32700, Message: "Parse error", Data: err.Error()},
			})
			continue
		}

		resp := s.handleRequest(context.Background(), req)
		if resp.ID == nil && resp.Result == nil && resp.Error == nil {
			continue
		}
		s.writeResponse(w, resp)
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("serve.stdin_read_failed", "err", err)
		return 1
	}
	return 0
}

func (s *rpcServer) writeResponse(w *os.File, resp jsonRPCResponse) {
	resp.JSONRPC = "2.0"
	b, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("serve.marshal_failed", "err", err)
		return
	}
	fmt.Fprintf(w, "%s\n", b)
}

func (s *rpcServer) handleRequest(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{
			ID: req.ID,
			Result: mcpInitializeResult{
				ProtocolVersion: mcpProtocol,
				Capabilities:    mcpCapabilities{Tools: map[string]any{"listChanged": false}},
				ServerInfo:      mcpServerInfo{Name: serverName, Version: serverVersion},
				Instructions:    serveInstructions,
			},
		}

	case "notifications/initialized":
		return jsonRPCResponse{}

	case "tools/list":
		return jsonRPCResponse{ID: req.ID, Result: mcpToolsListResult{Tools: s.tools()}}

	case "tools/call":
		var params mcpToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return jsonRPCResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: "Invalid params", Data: err.Error()}}
		}
		result, rpcErr := s.dispatch(params.Name, params.Arguments)
		if rpcErr != nil {
			return jsonRPCResponse{ID: req.ID, Error: rpcErr}
		}
		return jsonRPCResponse{ID: req.ID, Result: result}

	default:
		return jsonRPCResponse{ID: req.ID, Error: &rpcError{Code: -32601, Message: "Method not found", Data: req.Method}}
	}
}

// dispatch routes a tools/call to the matching pkg/query.Service method,
// wrapping its result (or ErrorResult/ParseFailedResult) in an mcpToolResult
// text block (§4.7).
func (s *rpcServer) dispatch(name string, args map[string]any) (*mcpToolResult, *rpcError) {
	var result any

	switch name {
	case "read":
		result = s.svc.Read(query.ReadArgs{
			Path:   stringArg(args, "path"),
			Level:  stringArg(args, "level"),
			Format: stringArg(args, "format"),
			Fields: stringSliceArg(args, "fields"),
		})

	case "find":
		result = s.svc.Find(stringArg(args, "pattern"))

	case "get_dependencies":
		result = s.svc.GetDependencies(query.GetDependenciesArgs{
			NodeID:    stringArg(args, "node_id"),
			Depth:     intPtrArg(args, "depth"),
			Strategy:  stringArg(args, "strategy"),
			Direction: stringArg(args, "direction"),
			Kinds:     stringSliceArg(args, "kinds"),
		})

	case "get_calls":
		result = s.svc.GetCalls(stringArg(args, "node_id"))

	case "stats":
		result = s.svc.Stats()

	default:
		// An unknown tool name is a query-layer concern, not a transport
		// fault: it surfaces as an {error, type} tool result on the normal
		// content channel (§4.7/§6.2), the same path missing_argument and
		// file_not_found already use, rather than a JSON-RPC-level error.
		result = query.ErrorResult{Error: "unknown tool: " + name, Type: "unknown_tool"}
		text, err := json.Marshal(result)
		if err != nil {
			return nil, &rpcError{Code: -32603, Message: "Internal error", Data: err.Error()}
		}
		return &mcpToolResult{Content: []mcpContent{{Type: "text", Text: string(text)}}, IsError: true}, nil
	}

	text, err := json.Marshal(result)
	if err != nil {
		return nil, &rpcError{Code: -32603, Message: "Internal error", Data: err.Error()}
	}
	return &mcpToolResult{Content: []mcpContent{{Type: "text", Text: string(text)}}}, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intPtrArg(args map[string]any, key string) *int {
	v, ok := args[key]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}
