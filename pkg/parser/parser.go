// Package parser wraps tree-sitter for parsing Rust source files.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser wraps a tree-sitter parser configured for Rust.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed syntax tree and the source it was built from.
// The tree is read-only once built and is discarded after the file's records
// are produced.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{parser: p}
}

// ParseFile reads and parses a Rust source file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if !IsRustFile(path) {
		return nil, fmt.Errorf("not a Rust source file: %s", path)
	}

	return p.Parse(source, path)
}

// Parse parses Rust source code. A file whose tree contains syntax errors is
// rejected as a whole; the caller gets zero spans for it, never a partial
// analysis.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	if tree.RootNode().HasError() {
		tree.Close()
		return nil, fmt.Errorf("syntax error in %s", path)
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// IsRustFile reports whether the path names a Rust source file.
func IsRustFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".rs"
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node. Returning false from
// the visitor prunes the subtree.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type() // Cache the type once per node
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// Close releases the parse tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}
