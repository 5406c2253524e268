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

func TestHashIsSixteenHexChars(t *testing.T) {
	h := Hash([]byte("hello"))
	assert.Len(t, h, 16)
}

func TestCacheSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "a.py")
	content := []byte("def f():\n    pass\n")
	require.NoError(t, os.WriteFile(filePath, content, 0o644))

	c := NewCache(root, nil)
	require.NoError(t, c.LoadIndex())

	nodes := []*Node{{ID: filePath + "::f", Name: "f", Kind: KindFunction}}
	hash := Hash(content)
	require.NoError(t, c.Save(filePath, hash, nodes, []string{"/proj/b.py"}))

	rec, ok, err := c.Load(filePath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, hash, rec.Hash)
	assert.Len(t, rec.Nodes, 1)
	assert.Equal(t, "f", rec.Nodes[0].Name)
	assert.Equal(t, []string{"/proj/b.py"}, rec.Imports)
}

func TestCacheLoadMissAfterContentChanges(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "a.py")
	original := []byte("def f():\n    pass\n")
	require.NoError(t, os.WriteFile(filePath, original, 0o644))

	c := NewCache(root, nil)
	require.NoError(t, c.LoadIndex())
	require.NoError(t, c.Save(filePath, Hash(original), nil, nil))

	changed := []byte("def f():\n    return 1\n")
	require.NoError(t, os.WriteFile(filePath, changed, 0o644))

	_, ok, err := c.Load(filePath)
	require.NoError(t, err)
	assert.False(t, ok, "a content change must invalidate the cache entry")
}

func TestCacheDiscoverDoesNotOverwriteIndexed(t *testing.T) {
	root := t.TempDir()
	c := NewCache(root, nil)
	require.NoError(t, c.LoadIndex())

	path := filepath.Join(root, "b.py")
	require.NoError(t, c.Save(path, "deadbeefdeadbeef", nil, nil))
	require.NoError(t, c.Discover(path))

	entry, ok := c.Entry(path)
	require.True(t, ok)
	assert.True(t, entry.Indexed, "Discover must not downgrade an already-indexed entry")
}

func TestCacheIndexPersistsAcrossInstances(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "c.py")

	c1 := NewCache(root, nil)
	require.NoError(t, c1.LoadIndex())
	require.NoError(t, c1.Discover(path))

	c2 := NewCache(root, nil)
	require.NoError(t, c2.LoadIndex())

	entry, ok := c2.Entry(path)
	require.True(t, ok)
	assert.False(t, entry.Indexed)
}

func TestCacheCounts(t *testing.T) {
	root := t.TempDir()
	c := NewCache(root, nil)
	require.NoError(t, c.LoadIndex())

	require.NoError(t, c.Save(filepath.Join(root, "a.py"), "deadbeefdeadbeef", nil, nil))
	require.NoError(t, c.Discover(filepath.Join(root, "b.py")))
	require.NoError(t, c.Discover(filepath.Join(root, "c.py")))

	indexed, discovered := c.Counts()
	assert.Equal(t, 1, indexed)
	assert.Equal(t, 2, discovered)
}

func TestSlugifyPath(t *testing.T) {
	assert.Equal(t, "_proj_a_py", slugifyPath("/proj/a.py"))
}
