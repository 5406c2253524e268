// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileReadResult is the standard (non-bypass) shape of a file read.
type FileReadResult struct {
	Type        string           `json:"type"`
	FilePath    string           `json:"file_path"`
	Level       Level            `json:"level"`
	Format      Format           `json:"format"`
	Imports     []string         `json:"imports"`
	Nodes       []map[string]any `json:"nodes"`
	NodeCount   int              `json:"node_count"`
	ImportCount int              `json:"import_count"`
	Cached      bool             `json:"cached"`
}

// Stats is the result of C6's stats() operation.
type Stats struct {
	CacheHits        int64   `json:"cache_hits"`
	CacheMisses      int64   `json:"cache_misses"`
	HitRate          string  `json:"hit_rate"`
	FilesParsed      int64   `json:"files_parsed"`
	FilesIndexed     int     `json:"files_indexed"`
	FilesDiscovered  int     `json:"files_discovered"`
	NodesInMemory    int     `json:"nodes_in_memory"`
}

// Graph is the lazy, in-memory code graph (C6). It exclusively owns all
// Node values and the file index for the life of the process, and
// orchestrates the parser, cache, and resolver behind a single coarse
// lock (§5).
type Graph struct {
	root     string
	cache    *Cache
	parser   Parser
	resolver *Resolver
	metrics  *metrics
	logger   *slog.Logger

	mu    sync.Mutex
	nodes map[string]*Node
}

// New builds a Graph rooted at projectRoot. It loads the on-disk index but
// does not parse anything until the first get_file call.
func New(projectRoot string, logger *slog.Logger) (*Graph, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	cache := NewCache(absRoot, logger)
	if err := cache.LoadIndex(); err != nil {
		return nil, err
	}

	return &Graph{
		root:     absRoot,
		cache:    cache,
		parser:   NewPythonParser(logger),
		resolver: NewResolver(absRoot),
		metrics:  newMetrics(),
		logger:   logger,
		nodes:    make(map[string]*Node),
	}, nil
}

// Root returns the canonical project root.
func (g *Graph) Root() string { return g.root }

func fileHash(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Hash(content), nil
}

func (g *Graph) canonicalize(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Abs(filepath.Join(g.root, path))
}

// GetFile implements C6's get_file(path, level, format, fields).
func (g *Graph) GetFile(path string, opts SerializeOptions) (*FileReadResult, error) {
	abs, err := g.canonicalize(path)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	currentHash, hashErr := fileHash(abs)

	if entry, ok := g.cache.Entry(abs); ok && entry.Indexed && g.allNodesLoaded(entry.NodeIDs) &&
		hashErr == nil && currentHash == entry.ContentHash {
		g.metrics.recordHit()
		return g.serializeFile(abs, entry.NodeIDs, entry.Imports, opts, true), nil
	}

	if record, ok, err := g.cache.Load(abs); err == nil && ok {
		g.metrics.recordHit()
		nodeIDs := g.hydrate(record.Nodes)
		return g.serializeFile(abs, nodeIDs, record.Imports, opts, true), nil
	}

	g.metrics.recordMiss()
	g.metrics.recordParse()

	content, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: abs}
		}
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	nodes, err := g.parser.Parse(abs, content)
	if err != nil {
		return nil, err
	}

	nodeIDs := g.register(nodes)
	imports := g.resolver.ResolveAll(nodes, abs)

	if err := g.cache.Save(abs, Hash(content), nodes, imports); err != nil {
		g.logger.Warn("graph.cache.save_failed", "path", abs, "err", err)
	}
	for _, imp := range imports {
		if err := g.cache.Discover(imp); err != nil {
			g.logger.Warn("graph.cache.discover_failed", "path", imp, "err", err)
		}
	}

	return g.serializeFile(abs, nodeIDs, imports, opts, false), nil
}

// allNodesLoaded reports whether every id is currently present in the
// in-memory map (the get_file fast path per §4.5).
func (g *Graph) allNodesLoaded(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return false
		}
	}
	return true
}

// register installs nodes into the in-memory map, overwriting any
// previous node at the same id (§4.5 registration semantics).
func (g *Graph) register(nodes []*Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		g.nodes[n.ID] = n
		ids = append(ids, n.ID)
	}
	return ids
}

// hydrate installs nodes loaded from an on-disk cache record into memory
// and returns their ids.
func (g *Graph) hydrate(nodes []*Node) []string {
	return g.register(nodes)
}

// serializeFile builds the public FileReadResult, separating collapsed
// imports from code nodes per invariant I4 (no Import nodes in `nodes`).
func (g *Graph) serializeFile(path string, nodeIDs []string, imports []string, opts SerializeOptions, cached bool) *FileReadResult {
	var serialized []map[string]any
	codeCount := 0
	for _, id := range nodeIDs {
		n, ok := g.nodes[id]
		if !ok || n.Kind == KindImport {
			continue
		}
		codeCount++
		serialized = append(serialized, Serialize(n, opts))
	}
	if serialized == nil {
		serialized = []map[string]any{}
	}
	if imports == nil {
		imports = []string{}
	}

	return &FileReadResult{
		Type:        "file",
		FilePath:    path,
		Level:       opts.Level,
		Format:      opts.Format,
		Imports:     imports,
		Nodes:       serialized,
		NodeCount:   codeCount,
		ImportCount: len(imports),
		Cached:      cached,
	}
}

// NotFoundError reports a path or node id that could not be resolved.
type NotFoundError struct {
	Path string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("node not found: %s", e.ID)
	}
	return fmt.Sprintf("file not found: %s", e.Path)
}

// GetNode implements get_node(id, level): if id is absent from memory, its
// file is derived from the id prefix and loaded at skeleton level first.
func (g *Graph) GetNode(id string, level Level) (map[string]any, error) {
	g.mu.Lock()
	n, ok := g.nodes[id]
	g.mu.Unlock()

	if !ok {
		filePath := fileFromNodeID(id)
		if filePath == "" {
			return nil, &NotFoundError{ID: id}
		}
		if _, err := g.GetFile(filePath, SerializeOptions{Level: LevelSkeleton, Format: FormatStandard}); err != nil {
			return nil, err
		}
		g.mu.Lock()
		n, ok = g.nodes[id]
		g.mu.Unlock()
		if !ok {
			return nil, &NotFoundError{ID: id}
		}
	}

	return Serialize(n, SerializeOptions{Level: level, Format: FormatStandard}), nil
}

// fileFromNodeID recovers the file path prefix of a node id of the form
// "<path>::<qualified_name>" or "<path>::import::<module>".
func fileFromNodeID(id string) string {
	if i := strings.Index(id, "::"); i >= 0 {
		return id[:i]
	}
	return ""
}

// FindByName implements find_by_name(pattern): case-insensitive substring
// match over loaded node names. The core does not load new files to search.
func (g *Graph) FindByName(pattern string) []map[string]any {
	lower := strings.ToLower(pattern)

	g.mu.Lock()
	defer g.mu.Unlock()

	var matches []map[string]any
	for _, n := range g.nodes {
		if strings.Contains(strings.ToLower(n.Name), lower) {
			matches = append(matches, Serialize(n, SerializeOptions{Level: LevelSkeleton, Format: FormatStandard}))
		}
	}
	if matches == nil {
		matches = []map[string]any{}
	}
	return matches
}

// NodeByID returns the loaded node for id, without triggering a load.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// DependentsOf returns the stored reverse edges for id.
func (g *Graph) DependentsOf(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return n.Dependents
}

// Stats implements stats() (§4.5/§6.2).
func (g *Graph) Stats() Stats {
	hits, misses, parses := g.metrics.snapshot()
	indexed, discovered := g.cache.Counts()

	g.mu.Lock()
	nodeCount := len(g.nodes)
	g.mu.Unlock()

	total := hits + misses
	rate := "0.0%"
	if total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(hits)/float64(total)*100)
	}

	return Stats{
		CacheHits:       hits,
		CacheMisses:     misses,
		HitRate:         rate,
		FilesParsed:     parses,
		FilesIndexed:    indexed,
		FilesDiscovered: discovered,
		NodesInMemory:   nodeCount,
	}
}
