// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainGraph builds a.py with c -> b -> a (b calls a, c calls b), so
// get_dependencies(a, reverse) should surface b at depth 1 and c at depth 2.
func chainGraph(t *testing.T) (*Graph, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "chain.py")
	writeFile(t, path, `def a():
    return 1


def b():
    return a()


def c():
    return b()
`)
	g, err := New(root, nil)
	require.NoError(t, err)
	_, err = g.GetFile(path, SerializeOptions{Level: LevelFull, Format: FormatStandard})
	require.NoError(t, err)
	return g, path
}

func TestTraverseBFSReverseDepthOne(t *testing.T) {
	g, path := chainGraph(t)
	aID := FunctionNodeID(path, "a")

	results := g.Traverse(aID, TraverseOptions{Strategy: StrategyBFS, Direction: DirectionReverse, Depth: 1})
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Node["name"])
	assert.Equal(t, 1, results[0].Depth)
}

func TestTraverseBFSReverseDepthTwoIncludesTransitive(t *testing.T) {
	g, path := chainGraph(t)
	aID := FunctionNodeID(path, "a")

	results := g.Traverse(aID, TraverseOptions{Strategy: StrategyBFS, Direction: DirectionReverse, Depth: 2})
	require.Len(t, results, 2)

	names := map[string]int{}
	for _, r := range results {
		names[r.Node["name"].(string)] = r.Depth
	}
	assert.Equal(t, 1, names["b"])
	assert.Equal(t, 2, names["c"])
}

func TestTraverseDepthZeroReturnsNothing(t *testing.T) {
	g, path := chainGraph(t)
	aID := FunctionNodeID(path, "a")

	results := g.Traverse(aID, TraverseOptions{Depth: 0})
	assert.Nil(t, results)
}

func TestTraverseForwardIsAlwaysEmpty(t *testing.T) {
	g, path := chainGraph(t)
	cID := FunctionNodeID(path, "c")

	results := g.Traverse(cID, TraverseOptions{Direction: DirectionForward, Depth: 3})
	assert.Empty(t, results, "forward edges are not stored; get_calls is the on-demand alternative")
}

func TestTraverseDFSVisitsSameNodesAsBFS(t *testing.T) {
	g, path := chainGraph(t)
	aID := FunctionNodeID(path, "a")

	dfsResults := g.Traverse(aID, TraverseOptions{Strategy: StrategyDFS, Direction: DirectionReverse, Depth: 2})
	names := map[string]bool{}
	for _, r := range dfsResults {
		names[r.Node["name"].(string)] = true
	}
	assert.True(t, names["b"])
	assert.True(t, names["c"])
}

func TestTraverseKindFilter(t *testing.T) {
	g, path := chainGraph(t)
	aID := FunctionNodeID(path, "a")

	results := g.Traverse(aID, TraverseOptions{
		Direction:  DirectionReverse,
		Depth:      2,
		KindFilter: map[Kind]bool{KindClass: true},
	})
	assert.Empty(t, results, "filtering to a kind with no matches yields nothing")
}
