// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps a textual import reference to a concrete file path inside
// the project (C4). It never reads the target file — only checks that it
// exists — leaving parsing to the graph's discovery set.
type Resolver struct {
	projectRoot string
}

// NewResolver builds a Resolver rooted at projectRoot.
func NewResolver(projectRoot string) *Resolver {
	return &Resolver{projectRoot: projectRoot}
}

// Resolve maps an Import node's reference text, given the file it appeared
// in, to a resolved absolute path, or ("", false) if none exists (§4.3).
func (r *Resolver) Resolve(ref string, fromFile string) (string, bool) {
	if ref == "" {
		return "", false
	}

	if strings.HasPrefix(ref, ".") {
		rel := strings.TrimLeft(ref, ".")
		rel = strings.ReplaceAll(rel, ".", string(filepath.Separator))
		dir := filepath.Dir(fromFile)
		candidate := filepath.Join(dir, rel+".py")
		if fileExists(candidate) {
			return candidate, true
		}
		return "", false
	}

	relPath := strings.ReplaceAll(ref, ".", string(filepath.Separator)) + ".py"

	if candidate := filepath.Join(r.projectRoot, "src", relPath); fileExists(candidate) {
		return candidate, true
	}
	if candidate := filepath.Join(r.projectRoot, relPath); fileExists(candidate) {
		return candidate, true
	}
	return "", false
}

// ResolveAll resolves every Import node in nodes, returning the
// de-duplicated list of resolved absolute paths.
func (r *Resolver) ResolveAll(nodes []*Node, fromFile string) []string {
	seen := make(map[string]bool)
	var resolved []string
	for _, n := range nodes {
		if n.Kind != KindImport {
			continue
		}
		path, ok := r.Resolve(n.Name, fromFile)
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		resolved = append(resolved, path)
	}
	return resolved
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
