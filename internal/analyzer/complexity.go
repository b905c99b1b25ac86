package analyzer

import (
	"github.com/onah/fnloc/pkg/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// Metrics computes cyclomatic complexity and maximum nesting depth for one
// function body. Complexity starts at 1 for the base path; nesting starts at
// 0 at the body's outermost block. Closure bodies and nested named functions
// are independent units: their decision points are charged to their own
// records, never to the enclosing function. Macro invocations are opaque
// leaves with default metrics.
func Metrics(body *sitter.Node, source []byte) models.ComplexityMetrics {
	if body == nil {
		return models.ComplexityMetrics{Cyclomatic: 1}
	}

	return models.ComplexityMetrics{
		Cyclomatic: 1 + countDecisionPoints(body, source, trailingReturn(body)),
		Nesting:    nestingOf(body),
	}
}

// loopTypes are counted once per loop header.
var loopTypes = map[string]bool{
	"loop_expression":  true,
	"while_expression": true,
	"for_expression":   true,
}

// conditionalTypes cover plain if, if let, and else if (an else-if chain is
// a nested if_expression inside the else clause). A bare else introduces no
// new decision. Older grammars emit if_let_expression as its own kind.
var conditionalTypes = map[string]bool{
	"if_expression":     true,
	"if_let_expression": true,
}

// countDecisionPoints folds the decision points of a body subtree. The sum
// is order-independent, so this is a plain recursive fold. trailing is the
// body's own fall-through return, which is the implicit single exit and
// contributes nothing.
func countDecisionPoints(node *sitter.Node, source []byte, trailing *sitter.Node) uint32 {
	var count uint32
	countDecisions(node, source, trailing, &count)
	return count
}

func countDecisions(node *sitter.Node, source []byte, trailing *sitter.Node, count *uint32) {
	nodeType := node.Type()

	switch nodeType {
	case "closure_expression", "function_item", "macro_invocation":
		// Independent units and opaque macros; a body that is nothing but a
		// macro invocation keeps the base complexity of 1.
		return
	}

	switch {
	case conditionalTypes[nodeType]:
		*count++
	case loopTypes[nodeType]:
		*count++
	case nodeType == "match_arm":
		// Every arm counts, default arms included; a guard is an extra
		// decision on top of its arm.
		*count++
		if armGuard(node) != nil {
			*count++
		}
	case nodeType == "return_expression":
		if node != trailing {
			*count++
		}
	case nodeType == "break_expression" || nodeType == "continue_expression":
		*count++
	case nodeType == "try_expression":
		*count++
	case nodeType == "binary_expression":
		if op := shortCircuitOperator(node); op != "" {
			*count++
		}
	}

	for i := range int(node.ChildCount()) {
		countDecisions(node.Child(i), source, trailing, count)
	}
}

// armGuard returns the guard condition of a match arm, if any. The guard
// hangs off the arm's pattern in current grammars and off the arm itself in
// older ones.
func armGuard(arm *sitter.Node) *sitter.Node {
	if cond := arm.ChildByFieldName("condition"); cond != nil {
		return cond
	}
	if pat := arm.ChildByFieldName("pattern"); pat != nil {
		return pat.ChildByFieldName("condition")
	}
	return nil
}

// shortCircuitOperator returns "&&" or "||" when the binary expression's
// operator is one of the short-circuit pair, else "". One occurrence means
// one increment; operand complexity is accounted by recursion.
func shortCircuitOperator(node *sitter.Node) string {
	for i := range int(node.ChildCount()) {
		t := node.Child(i).Type()
		if t == "&&" || t == "||" {
			return t
		}
	}
	return ""
}

// trailingReturn finds the body's final fall-through return, if the last
// statement is an explicit return. Only block bodies can carry one;
// expression-bodied closures have no return statements at all.
func trailingReturn(body *sitter.Node) *sitter.Node {
	if body.Type() != "block" {
		return nil
	}

	var last *sitter.Node
	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		t := child.Type()
		if t == "line_comment" || t == "block_comment" {
			continue
		}
		last = child
	}
	if last == nil {
		return nil
	}

	if last.Type() == "expression_statement" && last.NamedChildCount() > 0 {
		last = last.NamedChild(0)
	}
	if last.Type() == "return_expression" {
		return last
	}
	return nil
}

// nestingTypes add one level for the duration of their subtree. Loop bodies,
// conditionals, matches, closures, and async/unsafe blocks all count; their
// own body block is structural and does not double the level.
var nestingTypes = map[string]bool{
	"if_expression":      true,
	"if_let_expression":  true,
	"match_expression":   true,
	"while_expression":   true,
	"for_expression":     true,
	"loop_expression":    true,
	"closure_expression": true,
	"async_block":        true,
	"unsafe_block":       true,
	"try_block":          true,
}

// structuralBlockParents own their block child: the block is the construct's
// body, already covered by the construct's own level (or by the function
// itself). Any other block is a free-standing block expression and adds a
// level of its own. An else clause shares the if's level; only an else-if
// nests deeper.
var structuralBlockParents = map[string]bool{
	"function_item":      true,
	"if_expression":      true,
	"if_let_expression":  true,
	"else_clause":        true,
	"while_expression":   true,
	"for_expression":     true,
	"loop_expression":    true,
	"closure_expression": true,
	"async_block":        true,
	"unsafe_block":       true,
	"try_block":          true,
}

// nestingOf measures a body. Block bodies start at depth 0; an expression
// body that is itself a nesting construct (a closure whose body is a bare
// if or match) already sits one level in.
func nestingOf(body *sitter.Node) int {
	if body.Type() != "block" && nestingTypes[body.Type()] {
		return maxNesting(body, 1)
	}
	return maxNesting(body, 0)
}

// maxNesting returns the maximum depth reached anywhere below node. Sibling
// branches are measured independently and the maximum kept. Unlike
// complexity, the measurement recurses through closures: a closure at depth
// d with an if inside reaches d+2 for the enclosing function.
func maxNesting(node *sitter.Node, depth int) int {
	maxDepth := depth

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childType := child.Type()

		var d int
		switch {
		case childType == "function_item" || childType == "macro_invocation":
			continue
		case nestingTypes[childType]:
			d = maxNesting(child, depth+1)
		case childType == "block" && blockAddsNesting(child):
			d = maxNesting(child, depth+1)
		default:
			d = maxNesting(child, depth)
		}

		if d > maxDepth {
			maxDepth = d
		}
	}

	return maxDepth
}

// blockAddsNesting reports whether a block node is a free-standing block
// expression (match-arm bodies, let initializers, statement blocks) rather
// than the structural body of an already-counted construct.
func blockAddsNesting(block *sitter.Node) bool {
	parent := block.Parent()
	if parent == nil {
		return false
	}
	return !structuralBlockParents[parent.Type()]
}
