// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNode() *Node {
	return &Node{
		ID:         "/proj/a.py::Foo.bar",
		Name:       "Foo.bar",
		Kind:       KindMethod,
		FilePath:   "/proj/a.py",
		LineStart:  10,
		LineEnd:    20,
		Dependents: []string{"/proj/a.py::Foo.baz"},
		Children:   nil,
		Docstring:  strings.Repeat("x", 150),
		Signature:  "def bar(self)",
		Source:     "def bar(self):\n    pass\n",
	}
}

func TestSerializeSkeletonOmitsDetail(t *testing.T) {
	n := sampleNode()
	out := Serialize(n, SerializeOptions{Level: LevelSkeleton})
	assert.ElementsMatch(t, []string{"id", "name", "kind", "dependents"}, keysOf(out))
	assert.Equal(t, n.ID, out["id"])
}

func TestSerializeSummaryTruncatesDocstring(t *testing.T) {
	n := sampleNode()
	out := Serialize(n, SerializeOptions{Level: LevelSummary})
	doc, ok := out["docstring"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(doc, "..."))
	assert.Len(t, doc, 103)
}

func TestSerializeFullIncludesSourceAndUntruncatedDocstring(t *testing.T) {
	n := sampleNode()
	out := Serialize(n, SerializeOptions{Level: LevelFull})
	assert.Equal(t, n.Source, out["source"])
	assert.Equal(t, n.Docstring, out["docstring"])
	assert.Equal(t, n.FilePath, out["file_path"])
}

func TestSerializeFieldSelection(t *testing.T) {
	n := sampleNode()
	out := Serialize(n, SerializeOptions{Level: LevelFull, Fields: []string{"id", "source"}})
	assert.ElementsMatch(t, []string{"id", "source"}, keysOf(out))
}

func TestSerializeCompactRemapsKeysAndID(t *testing.T) {
	n := sampleNode()
	out := Serialize(n, SerializeOptions{Level: LevelSkeleton, Format: FormatCompact, ProjectRoot: "/proj"})
	assert.Equal(t, "a.py::Foo.bar", out["i"])
	assert.Equal(t, "m", out["t"])
	assert.Contains(t, out, "r")
	assert.NotContains(t, out, "id")
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
