// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query implements the five user-facing operations of the
// code-navigation service (C8): read, find, get_dependencies, get_calls,
// and stats. It is the only layer that translates pkg/graph errors into
// the {error, type} shape the transport returns to the client.
package query

import (
	"bufio"
	"os"
	"strings"

	"github.com/kraklabs/auzoom/pkg/graph"
)

// ErrorResult is the uniform failure shape for every tool (§4.7/§6.2).
type ErrorResult struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// SmallFileBypass is returned by Read when a file's estimated token count
// falls below the configured threshold.
type SmallFileBypass struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Level   string `json:"level"`
}

// Service wires a graph.Graph to the five tools, applying the small-file
// bypass and the configured default format/field-selection policy.
type Service struct {
	Graph                 *graph.Graph
	SmallFileThreshold    int
	CompactFormatEnabled  bool
	FieldSelectionEnabled bool
}

// NewService builds a Service over g with the given policy knobs.
func NewService(g *graph.Graph, smallFileThreshold int, compactDefault, fieldSelectionEnabled bool) *Service {
	return &Service{
		Graph:                 g,
		SmallFileThreshold:    smallFileThreshold,
		CompactFormatEnabled:  compactDefault,
		FieldSelectionEnabled: fieldSelectionEnabled,
	}
}

// ReadArgs are the arguments to Read.
type ReadArgs struct {
	Path   string
	Level  string
	Format string
	Fields []string
}

// Read implements tool `read`: the small-file bypass, then the standard
// file-read response (§4.7.1).
func (s *Service) Read(args ReadArgs) any {
	if args.Path == "" {
		return ErrorResult{Error: "missing required argument: path"}
	}

	abs := args.Path
	if !pathIsAbs(abs) {
		abs = s.Graph.Root() + string(os.PathSeparator) + abs
	}

	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		if estimateTokens(abs) < s.threshold() {
			content, err := os.ReadFile(abs)
			if err != nil {
				return ErrorResult{Error: err.Error()}
			}
			return SmallFileBypass{Type: "small_file_bypass", Content: string(content), Level: "full"}
		}
	} else if err != nil {
		return ErrorResult{Error: "file not found: " + args.Path}
	}

	level := graph.Level(args.Level)
	if level == "" {
		level = graph.LevelSkeleton
	}
	format := s.resolveFormat(args.Format)
	fields := args.Fields
	if !s.FieldSelectionEnabled {
		fields = nil
	}

	result, err := s.Graph.GetFile(args.Path, graph.SerializeOptions{
		Level:       level,
		Format:      format,
		Fields:      fields,
		ProjectRoot: s.Graph.Root(),
	})
	if err != nil {
		return errorFor(err)
	}
	return result
}

func (s *Service) threshold() int {
	if s.SmallFileThreshold > 0 {
		return s.SmallFileThreshold
	}
	return 300
}

func (s *Service) resolveFormat(requested string) graph.Format {
	switch requested {
	case "compact":
		return graph.FormatCompact
	case "standard":
		return graph.FormatStandard
	default:
		if s.CompactFormatEnabled {
			return graph.FormatCompact
		}
		return graph.FormatStandard
	}
}

func pathIsAbs(p string) bool {
	return strings.HasPrefix(p, "/")
}

// estimateTokens approximates a file's token count as lines * 4 (§4.7.1).
func estimateTokens(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return maxInt()
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)
	for scanner.Scan() {
		lines++
	}
	return lines * 4
}

func maxInt() int { return int(^uint(0) >> 1) }

// FindResult is the result shape of tool `find`.
type FindResult struct {
	Matches []map[string]any `json:"matches"`
	Count   int              `json:"count"`
}

// Find implements tool `find` (§4.7.2).
func (s *Service) Find(pattern string) any {
	if pattern == "" {
		return ErrorResult{Error: "missing required argument: pattern"}
	}
	matches := s.Graph.FindByName(pattern)
	return FindResult{Matches: matches, Count: len(matches)}
}

// DependenciesResult is the result shape of tool `get_dependencies`.
type DependenciesResult struct {
	NodeID       string                   `json:"node_id"`
	Dependencies []graph.TraversalResult  `json:"dependencies"`
	Count        int                      `json:"count"`
	Strategy     string                   `json:"strategy"`
	Direction    string                   `json:"direction"`
}

// GetDependenciesArgs are the arguments to GetDependencies. Depth is a
// pointer so an explicit 0 (§8: "get_dependencies(id, depth=0) -> empty
// list") can be told apart from "not provided" (defaults to 1).
type GetDependenciesArgs struct {
	NodeID    string
	Depth     *int
	Strategy  string
	Direction string
	Kinds     []string
}

// GetDependencies implements tool `get_dependencies` (§4.7.3).
func (s *Service) GetDependencies(args GetDependenciesArgs) any {
	if args.NodeID == "" {
		return ErrorResult{Error: "missing required argument: node_id"}
	}

	depth := 1
	if args.Depth != nil {
		depth = *args.Depth
	}
	strategy := graph.Strategy(args.Strategy)
	if strategy == "" {
		strategy = graph.StrategyBFS
	}
	direction := graph.Direction(args.Direction)
	if direction == "" {
		direction = graph.DirectionReverse
	}

	var kindFilter map[graph.Kind]bool
	if len(args.Kinds) > 0 {
		kindFilter = make(map[graph.Kind]bool, len(args.Kinds))
		for _, k := range args.Kinds {
			if kind, ok := graph.ParseKind(k); ok {
				kindFilter[kind] = true
			}
		}
	}

	// Traverse only ever reads the in-memory graph; if the starting node
	// hasn't been loaded by a prior read, it has no dependents recorded yet
	// and the walk would silently return nothing. Load it first.
	if _, ok := s.Graph.NodeByID(args.NodeID); !ok {
		if _, err := s.Graph.GetNode(args.NodeID, graph.LevelSkeleton); err != nil {
			return ErrorResult{Error: "node not found: " + args.NodeID}
		}
	}

	results := s.Graph.Traverse(args.NodeID, graph.TraverseOptions{
		Strategy:   strategy,
		Direction:  direction,
		Depth:      depth,
		KindFilter: kindFilter,
		BatchLoad:  strategy == graph.StrategyBFS,
	})
	if results == nil {
		results = []graph.TraversalResult{}
	}

	return DependenciesResult{
		NodeID:       args.NodeID,
		Dependencies: results,
		Count:        len(results),
		Strategy:     string(strategy),
		Direction:    string(direction),
	}
}

// CallsResult is the result shape of tool `get_calls`.
type CallsResult struct {
	NodeID             string   `json:"node_id"`
	Calls              []string `json:"calls"`
	Count              int      `json:"count"`
	CostEstimateTokens int      `json:"cost_estimate_tokens"`
	Note               string   `json:"note"`
}

// GetCalls implements tool `get_calls`: reparses the node's stored source
// in isolation to recover its forward call names, with no caching (§4.7.4).
func (s *Service) GetCalls(nodeID string) any {
	if nodeID == "" {
		return ErrorResult{Error: "missing required argument: node_id"}
	}

	n, ok := s.Graph.NodeByID(nodeID)
	if !ok {
		nodeData, err := s.Graph.GetNode(nodeID, graph.LevelFull)
		if err != nil {
			return ErrorResult{Error: "node not found: " + nodeID}
		}
		src, _ := nodeData["source"].(string)
		return s.callsFromSource(nodeID, src)
	}
	return s.callsFromSource(nodeID, n.Source)
}

func (s *Service) callsFromSource(nodeID, source string) CallsResult {
	calls := graph.ExtractCalleeNames(source)
	return CallsResult{
		NodeID:             nodeID,
		Calls:              calls,
		Count:              len(calls),
		CostEstimateTokens: 150,
		Note:               "Forward calls are not cached; this reparses the node's source on every call.",
	}
}

// Stats implements tool `stats` (§4.7.5).
func (s *Service) Stats() graph.Stats {
	return s.Graph.Stats()
}

// ParseFailedResult is returned by Read when the parser could not process
// a file; the raw text is included so the agent has a fallback (§7).
type ParseFailedResult struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

func errorFor(err error) any {
	if pe, ok := err.(*graph.ParseError); ok {
		return ParseFailedResult{Type: "python_fallback", Content: pe.Content, Error: pe.Err.Error()}
	}
	if _, ok := err.(*graph.NotFoundError); ok {
		return ErrorResult{Error: err.Error()}
	}
	return ErrorResult{Error: err.Error()}
}
