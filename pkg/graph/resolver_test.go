// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
}

func TestResolveRelativeImport(t *testing.T) {
	root := t.TempDir()
	sibling := filepath.Join(root, "pkg", "sibling.py")
	touch(t, sibling)

	r := NewResolver(root)
	fromFile := filepath.Join(root, "pkg", "a.py")

	got, ok := r.Resolve(".sibling", fromFile)
	assert.True(t, ok)
	assert.Equal(t, sibling, got)
}

func TestResolveAbsoluteImportUnderSrc(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "src", "pkg", "mod.py")
	touch(t, target)

	r := NewResolver(root)
	got, ok := r.Resolve("pkg.mod", filepath.Join(root, "other.py"))
	assert.True(t, ok)
	assert.Equal(t, target, got)
}

func TestResolveAbsoluteImportAtRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "pkg", "mod.py")
	touch(t, target)

	r := NewResolver(root)
	got, ok := r.Resolve("pkg.mod", filepath.Join(root, "other.py"))
	assert.True(t, ok)
	assert.Equal(t, target, got)
}

func TestResolveUnresolvableImport(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root)
	_, ok := r.Resolve("numpy", filepath.Join(root, "a.py"))
	assert.False(t, ok, "third-party imports with no matching file resolve to nothing")
}

func TestResolveAllDeduplicatesAndSkipsNonImports(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "b.py")
	touch(t, target)

	r := NewResolver(root)
	fromFile := filepath.Join(root, "a.py")
	nodes := []*Node{
		{Kind: KindImport, Name: "b"},
		{Kind: KindImport, Name: "b"},
		{Kind: KindFunction, Name: "f"},
	}
	resolved := r.ResolveAll(nodes, fromFile)
	assert.Equal(t, []string{target}, resolved)
}
