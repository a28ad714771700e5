// Package pysource extracts top-level function signatures from Python source
// using the tree-sitter Python grammar.
//
// Only the module's direct children are inspected. Methods, nested functions,
// and anything inside compound statements are never recorded.
package pysource

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Signature is a top-level function's name and its declared parameter names.
type Signature struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
}

// ParseError reports source that is not valid Python. Line and Column are
// 1-based and point at the first error or missing node in the tree.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Extract returns one Signature per top-level function definition in src, in
// source order. Source with no functions yields an empty slice and a nil error.
func Extract(src []byte) ([]Signature, error) {
	if !utf8.Valid(src) {
		return nil, invalidUTF8(src)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("pysource: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, firstSyntaxError(root, src)
	}
	if n := findLegacyStatement(root); n != nil {
		pt := n.StartPoint()
		return nil, &ParseError{
			Line:   int(pt.Row) + 1,
			Column: int(pt.Column) + 1,
			Msg:    fmt.Sprintf("%s is not valid in Python 3", n.Type()),
		}
	}

	sigs := []Signature{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		fn := functionNode(root.NamedChild(i))
		if fn == nil {
			continue
		}
		nameNode := fn.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		sigs = append(sigs, Signature{
			Name:   nameNode.Content(src),
			Params: paramNames(fn.ChildByFieldName("parameters"), src),
		})
	}
	return sigs, nil
}

// functionNode returns the function_definition for a module-level statement,
// unwrapping decorators. Class definitions and async functions return nil.
func functionNode(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "function_definition":
		if isAsync(n) {
			return nil
		}
		return n
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			return functionNode(def)
		}
	}
	return nil
}

func isAsync(fn *sitter.Node) bool {
	return fn.ChildCount() > 0 && fn.Child(0).Type() == "async"
}

// paramNames records plain, typed and defaulted parameters. Splat patterns
// and the bare * and / separators are skipped.
func paramNames(params *sitter.Node, src []byte) []string {
	names := []string{}
	if params == nil {
		return names
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			names = append(names, p.Content(src))
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				names = append(names, name.Content(src))
			}
		case "typed_parameter":
			if p.NamedChildCount() > 0 && p.NamedChild(0).Type() == "identifier" {
				names = append(names, p.NamedChild(0).Content(src))
			}
		}
	}
	return names
}

func firstSyntaxError(root *sitter.Node, src []byte) *ParseError {
	bad := findError(root)
	if bad == nil {
		return &ParseError{Line: 1, Column: 1, Msg: "invalid syntax"}
	}
	pt := bad.StartPoint()
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("missing %q", bad.Type())
	} else if text := bad.Content(src); text != "" {
		msg = fmt.Sprintf("unexpected %q", truncate(text, 40))
	}
	return &ParseError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Msg: msg}
}

// findError walks the tree depth-first and returns the first ERROR or
// missing node, or nil.
func findError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// The grammar still accepts Python 2 print and exec statements.
var legacyStatements = map[string]bool{
	"print_statement": true,
	"exec_statement":  true,
}

func findLegacyStatement(n *sitter.Node) *sitter.Node {
	if legacyStatements[n.Type()] {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := findLegacyStatement(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// invalidUTF8 points at the first byte that does not start a valid UTF-8
// sequence. Column counts bytes.
func invalidUTF8(src []byte) *ParseError {
	off := 0
	for off < len(src) {
		r, size := utf8.DecodeRune(src[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		off += size
	}
	line := bytes.Count(src[:off], []byte("\n")) + 1
	col := off - (bytes.LastIndexByte(src[:off], '\n') + 1) + 1
	return &ParseError{Line: line, Column: col, Msg: fmt.Sprintf("invalid utf-8 byte 0x%02x", src[off])}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
