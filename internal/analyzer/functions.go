package analyzer

import (
	"github.com/onah/fnloc/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionSpan identifies one function-like definition: its qualified name,
// the inclusive 1-indexed line range from the signature through the body's
// closing brace, and a reference into the syntax tree for the body.
// Attributes preceding the signature are outside the span.
type FunctionSpan struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Body      *sitter.Node
}

// ExtractSpans returns the spans for every function-like definition in the
// file, in source order: free functions, methods inside impl blocks
// (qualified by the implementing type), default methods in traits, functions
// nested in modules, and closures (qualified as parent::{closure}, owned by
// but distinct from their enclosing span).
func ExtractSpans(result *parser.ParseResult) []FunctionSpan {
	var spans []FunctionSpan
	collectItems(result.Tree.RootNode(), result.Source, "", &spans)
	return spans
}

// collectItems walks item-level declarations, tracking the qualification
// prefix built from enclosing modules, impl types, and traits.
func collectItems(node *sitter.Node, source []byte, prefix string, out *[]FunctionSpan) {
	if node == nil {
		return
	}

	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_item":
			collectFunction(child, source, prefix, out)
		case "mod_item":
			name := parser.GetNodeText(child.ChildByFieldName("name"), source)
			collectItems(child.ChildByFieldName("body"), source, qualify(prefix, name), out)
		case "impl_item":
			name := parser.GetNodeText(child.ChildByFieldName("type"), source)
			collectItems(child.ChildByFieldName("body"), source, qualify(prefix, name), out)
		case "trait_item":
			// Only default methods carry a body; bare signatures are skipped
			// by the nil-body check in collectFunction.
			name := parser.GetNodeText(child.ChildByFieldName("name"), source)
			collectItems(child.ChildByFieldName("body"), source, qualify(prefix, name), out)
		}
	}
}

// collectFunction records one function definition and any callable units
// nested inside its body. Definitions without a body (trait or extern
// signatures) and definitions whose body cannot be resolved contribute no
// span; the rest of the file is unaffected.
func collectFunction(node *sitter.Node, source []byte, prefix string, out *[]FunctionSpan) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}

	name := qualify(prefix, parser.GetNodeText(node.ChildByFieldName("name"), source))
	*out = append(*out, FunctionSpan{
		Name:      name,
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		Body:      body,
	})

	collectNested(body, source, name, out)
}

// collectNested finds closures and nested named functions inside a body.
// Each becomes its own span; containment is parent→child only, the child
// holds no reference back to its parent.
func collectNested(body *sitter.Node, source []byte, parent string, out *[]FunctionSpan) {
	parser.Walk(body, source, func(n *sitter.Node, src []byte) bool {
		if n == body {
			return true
		}
		switch n.Type() {
		case "closure_expression":
			collectClosure(n, src, parent, out)
			return false
		case "function_item":
			collectFunction(n, src, parent, out)
			return false
		case "macro_invocation":
			// Unexpanded macro arguments are opaque.
			return false
		}
		return true
	})
}

// collectClosure records a closure span. A closure whose body is itself a
// closure (|x| |y| ...) yields a further child span.
func collectClosure(n *sitter.Node, source []byte, parent string, out *[]FunctionSpan) {
	cb := n.ChildByFieldName("body")
	if cb == nil {
		return
	}

	name := parent + "::{closure}"
	*out = append(*out, FunctionSpan{
		Name:      name,
		StartLine: n.StartPoint().Row + 1,
		EndLine:   n.EndPoint().Row + 1,
		Body:      cb,
	})

	if cb.Type() == "closure_expression" {
		collectClosure(cb, source, name, out)
		return
	}
	collectNested(cb, source, name, out)
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}
