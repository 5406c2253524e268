// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import "strings"

// Level is a node's serialization detail level.
type Level string

const (
	LevelSkeleton Level = "skeleton"
	LevelSummary  Level = "summary"
	LevelFull     Level = "full"
)

// Format selects between long-key and short-key output.
type Format string

const (
	FormatStandard Format = "standard"
	FormatCompact  Format = "compact"
)

const docstringTruncateLen = 100

// SerializeOptions controls a single call to Serialize.
type SerializeOptions struct {
	Level       Level
	Format      Format
	Fields      []string // optional field-selection filter; empty means "all"
	ProjectRoot string   // used to rewrite id as a relative path in compact format
}

// Serialize projects a Node to the requested level and format (C5). Field
// selection, when Fields is non-empty, is applied after the level chooses
// the full field set (§4.4).
func Serialize(n *Node, opts SerializeOptions) map[string]any {
	fields := fieldsForLevel(n, opts.Level)

	if len(opts.Fields) > 0 {
		allowed := make(map[string]bool, len(opts.Fields))
		for _, f := range opts.Fields {
			allowed[f] = true
		}
		for k := range fields {
			if !allowed[k] {
				delete(fields, k)
			}
		}
	}

	if opts.Format == FormatCompact {
		return toCompact(fields, n.Kind, opts.ProjectRoot)
	}
	return fields
}

func fieldsForLevel(n *Node, level Level) map[string]any {
	out := map[string]any{
		"id":         n.ID,
		"name":       n.Name,
		"kind":       string(n.Kind),
		"dependents": nonNilStrings(n.Dependents),
	}
	if level == LevelSkeleton {
		return out
	}

	if n.Signature != "" {
		out["signature"] = n.Signature
	}
	out["docstring"] = truncateDocstring(n.Docstring)
	out["line_start"] = n.LineStart
	out["line_end"] = n.LineEnd
	if level == LevelSummary {
		return out
	}

	// full
	out["docstring"] = n.Docstring
	out["children"] = nonNilStrings(n.Children)
	out["file_path"] = n.FilePath
	out["source"] = n.Source
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func truncateDocstring(doc string) string {
	if len(doc) <= docstringTruncateLen {
		return doc
	}
	return doc[:docstringTruncateLen] + "..."
}

// longToShortKey maps standard-format field names to the compact format's
// short keys (§4.4).
var longToShortKey = map[string]string{
	"id":         "i",
	"name":       "n",
	"kind":       "t",
	"dependents": "r",
	"children":   "c",
	"signature":  "s",
	"docstring":  "doc",
	"line_start": "ls",
	"line_end":   "le",
	"file_path":  "fp",
	"source":     "src",
}

func toCompact(fields map[string]any, kind Kind, projectRoot string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		short, ok := longToShortKey[k]
		if !ok {
			short = k
		}
		if k == "id" && projectRoot != "" {
			if id, ok := v.(string); ok {
				v = relativeID(id, projectRoot)
			}
		}
		out[short] = v
	}
	out["t"] = string(rune(kind.Shortcode()))
	return out
}

func relativeID(id, projectRoot string) string {
	if rest, ok := strings.CutPrefix(id, projectRoot); ok {
		return strings.TrimPrefix(rest, "/")
	}
	return id
}
