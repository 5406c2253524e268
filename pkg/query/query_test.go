// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/auzoom/pkg/graph"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestService(t *testing.T, threshold int) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	g, err := graph.New(root, nil)
	require.NoError(t, err)
	return NewService(g, threshold, false, true), root
}

func TestReadMissingPathIsError(t *testing.T) {
	svc, _ := newTestService(t, 300)
	res := svc.Read(ReadArgs{})
	errRes, ok := res.(ErrorResult)
	require.True(t, ok)
	assert.Contains(t, errRes.Error, "path")
}

func TestReadFileNotFound(t *testing.T) {
	svc, _ := newTestService(t, 300)
	res := svc.Read(ReadArgs{Path: "missing.py"})
	errRes, ok := res.(ErrorResult)
	require.True(t, ok)
	assert.Contains(t, errRes.Error, "not found")
}

func TestReadSmallFileBypassesParsing(t *testing.T) {
	svc, root := newTestService(t, 300)
	path := filepath.Join(root, "tiny.py")
	writeFile(t, path, "x = 1\n")

	res := svc.Read(ReadArgs{Path: "tiny.py"})
	bypass, ok := res.(SmallFileBypass)
	require.True(t, ok)
	assert.Equal(t, "small_file_bypass", bypass.Type)
	assert.Equal(t, "x = 1\n", bypass.Content)
}

func TestReadLargeFileParsesNormally(t *testing.T) {
	svc, root := newTestService(t, 1) // threshold of 1 token forces the parsed path
	path := filepath.Join(root, "big.py")
	writeFile(t, path, "def f():\n    pass\n\n\ndef g():\n    pass\n")

	res := svc.Read(ReadArgs{Path: "big.py", Level: "skeleton"})
	result, ok := res.(*graph.FileReadResult)
	require.True(t, ok)
	assert.Equal(t, "file", result.Type)
	assert.Equal(t, 2, result.NodeCount)
}

func TestReadFieldSelectionDisabledIgnoresFields(t *testing.T) {
	root := t.TempDir()
	g, err := graph.New(root, nil)
	require.NoError(t, err)
	svc := NewService(g, 1, false, false) // field selection disabled

	path := filepath.Join(root, "big.py")
	writeFile(t, path, "def f():\n    pass\n")

	res := svc.Read(ReadArgs{Path: "big.py", Level: "full", Fields: []string{"id"}})
	result, ok := res.(*graph.FileReadResult)
	require.True(t, ok)
	require.Len(t, result.Nodes, 1)
	assert.Contains(t, result.Nodes[0], "source", "field selection is disabled, so unfiltered fields come back")
}

func TestFindMissingPatternIsError(t *testing.T) {
	svc, _ := newTestService(t, 300)
	res := svc.Find("")
	_, ok := res.(ErrorResult)
	assert.True(t, ok)
}

func TestFindMatchesLoadedNodes(t *testing.T) {
	svc, root := newTestService(t, 1)
	path := filepath.Join(root, "a.py")
	writeFile(t, path, "def handle_request():\n    pass\n")
	_, err := svc.Graph.GetFile(path, graph.SerializeOptions{Level: graph.LevelSkeleton})
	require.NoError(t, err)

	res := svc.Find("handle")
	found, ok := res.(FindResult)
	require.True(t, ok)
	assert.Equal(t, 1, found.Count)
}

func TestGetDependenciesMissingNodeIDIsError(t *testing.T) {
	svc, _ := newTestService(t, 300)
	res := svc.GetDependencies(GetDependenciesArgs{})
	_, ok := res.(ErrorResult)
	assert.True(t, ok)
}

func TestGetDependenciesExplicitZeroDepthIsEmpty(t *testing.T) {
	svc, root := newTestService(t, 1)
	path := filepath.Join(root, "a.py")
	writeFile(t, path, "def a():\n    pass\n\n\ndef b():\n    return a()\n")
	_, err := svc.Graph.GetFile(path, graph.SerializeOptions{Level: graph.LevelFull})
	require.NoError(t, err)

	zero := 0
	res := svc.GetDependencies(GetDependenciesArgs{NodeID: graph.FunctionNodeID(path, "a"), Depth: &zero})
	deps, ok := res.(DependenciesResult)
	require.True(t, ok)
	assert.Equal(t, 0, deps.Count)
	assert.Empty(t, deps.Dependencies)
}

func TestGetDependenciesDefaultsToDepthOne(t *testing.T) {
	svc, root := newTestService(t, 1)
	path := filepath.Join(root, "a.py")
	writeFile(t, path, "def a():\n    pass\n\n\ndef b():\n    return a()\n")
	_, err := svc.Graph.GetFile(path, graph.SerializeOptions{Level: graph.LevelFull})
	require.NoError(t, err)

	res := svc.GetDependencies(GetDependenciesArgs{NodeID: graph.FunctionNodeID(path, "a")})
	deps, ok := res.(DependenciesResult)
	require.True(t, ok)
	assert.Equal(t, 1, deps.Count)
}

// TestGetDependenciesLoadsUnvisitedStartNode covers a valid node ID whose
// file has never been read via Read/GetFile in this process: the node has
// no in-memory entry yet, so get_dependencies must load it before
// traversing rather than silently returning an empty result.
func TestGetDependenciesLoadsUnvisitedStartNode(t *testing.T) {
	svc, root := newTestService(t, 1)
	path := filepath.Join(root, "a.py")
	writeFile(t, path, "def a():\n    pass\n\n\ndef b():\n    return a()\n")

	res := svc.GetDependencies(GetDependenciesArgs{NodeID: graph.FunctionNodeID(path, "a")})
	deps, ok := res.(DependenciesResult)
	require.True(t, ok)
	assert.Equal(t, 1, deps.Count)
}

func TestGetDependenciesUnknownNodeIsError(t *testing.T) {
	svc, root := newTestService(t, 300)
	res := svc.GetDependencies(GetDependenciesArgs{NodeID: filepath.Join(root, "missing.py") + "::nope"})
	_, ok := res.(ErrorResult)
	assert.True(t, ok)
}

func TestGetCallsReparsesSource(t *testing.T) {
	svc, root := newTestService(t, 1)
	path := filepath.Join(root, "a.py")
	writeFile(t, path, "def a():\n    pass\n\n\ndef b():\n    return a()\n")
	_, err := svc.Graph.GetFile(path, graph.SerializeOptions{Level: graph.LevelFull})
	require.NoError(t, err)

	res := svc.GetCalls(graph.FunctionNodeID(path, "b"))
	calls, ok := res.(CallsResult)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, calls.Calls)
	assert.Equal(t, 150, calls.CostEstimateTokens)
}

func TestGetCallsMissingNodeIDIsError(t *testing.T) {
	svc, _ := newTestService(t, 300)
	res := svc.GetCalls("")
	_, ok := res.(ErrorResult)
	assert.True(t, ok)
}

func TestGetCallsUnknownNodeIsError(t *testing.T) {
	svc, _ := newTestService(t, 300)
	res := svc.GetCalls("/nowhere.py::missing")
	_, ok := res.(ErrorResult)
	assert.True(t, ok)
}

func TestStatsDelegatesToGraph(t *testing.T) {
	svc, _ := newTestService(t, 300)
	stats := svc.Stats()
	assert.Equal(t, "0.0%", stats.HitRate)
}
