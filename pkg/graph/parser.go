// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ParseError carries the raw file text alongside the underlying failure so
// the caller can still hand the agent something useful (§7, parse_failed).
type ParseError struct {
	FilePath string
	Content  string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.FilePath, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser converts source bytes into a flat list of Nodes (C2). It is
// purely syntactic, deterministic over byte-identical input, and does no
// I/O beyond the bytes it is handed.
type Parser interface {
	Parse(filePath string, content []byte) ([]*Node, error)
}

// PythonParser drives the tree-sitter Python grammar. One grammar at a
// time, matching the core's scope boundary — see SPEC_FULL.md DOMAIN STACK.
type PythonParser struct {
	logger *slog.Logger
	mu     sync.Mutex // sitter.Parser is not safe for concurrent Parse calls
}

// NewPythonParser builds a PythonParser. A nil logger falls back to
// slog.Default().
func NewPythonParser(logger *slog.Logger) *PythonParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &PythonParser{logger: logger}
}

// Parse implements Parser.
func (p *PythonParser) Parse(filePath string, content []byte) ([]*Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())

	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{FilePath: filePath, Content: string(content), Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("parser.python.syntax_errors", "path", filePath)
	}

	var nodes []*Node
	localNameToID := make(map[string]string)
	type pendingBody struct {
		node   *sitter.Node
		nodeID string
	}
	var bodies []pendingBody

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement", "import_from_statement":
			nodes = append(nodes, extractImports(child, content, filePath)...)

		case "function_definition":
			fn := extractFunction(child, content, filePath, "")
			if fn != nil {
				nodes = append(nodes, fn)
				localNameToID[fn.Name] = fn.ID
				bodies = append(bodies, pendingBody{node: child, nodeID: fn.ID})
			}

		case "class_definition":
			classNode, methods, methodBodies := extractClass(child, content, filePath)
			if classNode != nil {
				nodes = append(nodes, classNode)
				for i, m := range methods {
					nodes = append(nodes, m)
					localNameToID[shortName(m.Name)] = m.ID
					bodies = append(bodies, pendingBody{node: methodBodies[i], nodeID: m.ID})
				}
			}
		}
	}

	for _, b := range bodies {
		walkCallExpressions(b.node, content, b.nodeID, localNameToID, nodes)
	}

	return nodes, nil
}

func shortName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

func lineRange(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// extractImports produces one Import node per bare module name referenced
// by a top-level import statement (§4.1).
func extractImports(n *sitter.Node, content []byte, filePath string) []*Node {
	start, end := lineRange(n)
	source := nodeText(n, content)

	var names []string
	switch n.Type() {
	case "import_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "dotted_name":
				names = append(names, nodeText(c, content))
			case "aliased_import":
				if dn := c.ChildByFieldName("name"); dn != nil {
					names = append(names, nodeText(dn, content))
				}
			}
		}
	case "import_from_statement":
		if mod := n.ChildByFieldName("module_name"); mod != nil {
			if name := strings.TrimLeft(nodeText(mod, content), "."); name != "" {
				names = append(names, name)
				break
			}
			// `from . import x`: each imported name is itself a module.
			for i := 0; i < int(n.ChildCount()); i++ {
				c := n.Child(i)
				switch c.Type() {
				case "dotted_name":
					names = append(names, nodeText(c, content))
				case "aliased_import":
					if dn := c.ChildByFieldName("name"); dn != nil {
						names = append(names, nodeText(dn, content))
					}
				}
			}
		}
	}

	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		nodes = append(nodes, &Node{
			ID:        ImportNodeID(filePath, name),
			Name:      name,
			Kind:      KindImport,
			FilePath:  filePath,
			LineStart: start,
			LineEnd:   end,
			Source:    source,
		})
	}
	return nodes
}

// extractFunction builds a Function or Method node from a function_definition.
// classPrefix is empty for a top-level function.
func extractFunction(n *sitter.Node, content []byte, filePath, classPrefix string) *Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	fullName := name
	kind := KindFunction
	if classPrefix != "" {
		fullName = classPrefix + "." + name
		kind = KindMethod
	}

	var params string
	if p := n.ChildByFieldName("parameters"); p != nil {
		params = nodeText(p, content)
	}
	signature := fmt.Sprintf("def %s%s", name, params)
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		signature += " -> " + nodeText(rt, content)
	}

	start, end := lineRange(n)
	id := FunctionNodeID(filePath, fullName)
	if kind == KindMethod {
		id = MethodNodeID(filePath, classPrefix, name)
	}

	return &Node{
		ID:        id,
		Name:      fullName,
		Kind:      kind,
		FilePath:  filePath,
		LineStart: start,
		LineEnd:   end,
		Docstring: extractDocstring(n, content),
		Signature: signature,
		Source:    nodeText(n, content),
	}
}

// extractDocstring returns the first string-literal expression statement in
// a function/class body, with outer quotes stripped.
func extractDocstring(n *sitter.Node, content []byte) string {
	block := n.ChildByFieldName("body")
	if block == nil {
		return ""
	}
	for i := 0; i < int(block.ChildCount()); i++ {
		stmt := block.Child(i)
		if stmt.Type() != "expression_statement" || stmt.ChildCount() == 0 {
			continue
		}
		expr := stmt.Child(0)
		if expr.Type() != "string" {
			continue
		}
		text := nodeText(expr, content)
		return stripQuotes(text)
	}
	return ""
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return s
}

// extractClass builds the Class node and its direct Method nodes (in
// lexical order). Nested classes/functions are not walked further — a
// documented scope boundary.
func extractClass(n *sitter.Node, content []byte, filePath string) (*Node, []*Node, []*sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil, nil
	}
	className := nodeText(nameNode, content)
	start, end := lineRange(n)

	classNode := &Node{
		ID:        FunctionNodeID(filePath, className),
		Name:      className,
		Kind:      KindClass,
		FilePath:  filePath,
		LineStart: start,
		LineEnd:   end,
		Docstring: extractDocstring(n, content),
		Source:    nodeText(n, content),
	}

	var methods []*Node
	var bodies []*sitter.Node
	block := n.ChildByFieldName("body")
	if block != nil {
		for i := 0; i < int(block.ChildCount()); i++ {
			child := block.Child(i)
			if child.Type() != "function_definition" {
				continue
			}
			m := extractFunction(child, content, filePath, className)
			if m == nil {
				continue
			}
			methods = append(methods, m)
			bodies = append(bodies, child)
			classNode.Children = append(classNode.Children, m.ID)
		}
	}

	return classNode, methods, bodies
}

// walkCallExpressions records a dependents edge on the callee of every call
// expression found under n, restricted to same-file Functions and Methods
// (§4.1 local call resolution).
func walkCallExpressions(n *sitter.Node, content []byte, callerID string, localNameToID map[string]string, nodes []*Node) {
	if n == nil {
		return
	}

	if n.Type() == "call" {
		if fn := n.ChildByFieldName("function"); fn != nil {
			if name := calleeName(fn, content); name != "" {
				if calleeID, ok := localNameToID[name]; ok && calleeID != callerID {
					addDependent(nodes, calleeID, callerID)
				}
			}
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		walkCallExpressions(n.Child(i), content, callerID, localNameToID, nodes)
	}
}

func calleeName(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case "identifier":
		return nodeText(n, content)
	case "attribute":
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			return nodeText(attr, content)
		}
	}
	return ""
}

// ExtractCalleeNames reparses a single node's source in isolation and
// returns every call-expression callee name it finds, in source order
// (duplicates included) — the forward-calls operation of C8, reparsed on
// demand and never cached (§4.7.4, §9).
func ExtractCalleeNames(source string) []string {
	if strings.TrimSpace(source) == "" {
		return []string{}
	}

	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())

	tree, err := sp.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		return []string{}
	}
	defer tree.Close()

	var calls []string
	content := []byte(source)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				if name := calleeName(fn, content); name != "" {
					calls = append(calls, name)
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	if calls == nil {
		calls = []string{}
	}
	return calls
}

func addDependent(nodes []*Node, nodeID, dependentID string) {
	for _, n := range nodes {
		if n.ID == nodeID {
			n.AddDependent(dependentID)
			return
		}
	}
}
