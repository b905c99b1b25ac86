package analyzer

import (
	"bytes"

	"github.com/onah/fnloc/pkg/models"
	"github.com/onah/fnloc/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// LineClass is the classification of one physical source line.
type LineClass uint8

const (
	LineBlank LineClass = iota
	LineCode
	LineComment
)

// ClassifyLines classifies every line of a parsed file. Classification is
// token-based, never substring-based: a line is code when any non-comment
// token touches it, so comment markers inside string or char literals stay
// code, and a block-comment boundary line that also carries code counts as
// code. A whitespace-only line is blank even inside a comment region.
func ClassifyLines(result *parser.ParseResult) []LineClass {
	lineCount := bytes.Count(result.Source, []byte{'\n'}) + 1
	hasCode := make([]bool, lineCount)
	hasComment := make([]bool, lineCount)

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if n.ChildCount() > 0 {
			return true
		}

		start, end := tokenRows(n)
		comment := nodeType == "line_comment" || nodeType == "block_comment"
		for row := start; row <= end && row < uint32(lineCount); row++ {
			if comment {
				hasComment[row] = true
			} else {
				hasCode[row] = true
			}
		}
		return true
	})

	classes := make([]LineClass, lineCount)
	for row, line := range bytes.Split(result.Source, []byte{'\n'}) {
		switch {
		case len(bytes.TrimSpace(line)) == 0:
			classes[row] = LineBlank
		case hasCode[row]:
			classes[row] = LineCode
		case hasComment[row]:
			classes[row] = LineComment
		default:
			classes[row] = LineCode
		}
	}
	return classes
}

// tokenRows returns the inclusive row range a token occupies. A token whose
// end point sits at column 0 stops at the preceding line break and does not
// occupy the following row.
func tokenRows(n *sitter.Node) (uint32, uint32) {
	start := n.StartPoint().Row
	end := n.EndPoint().Row
	if end > start && n.EndPoint().Column == 0 {
		end--
	}
	return start, end
}

// CountRange tallies the classes over an inclusive, 1-indexed line range.
// The result always satisfies Total == Code + Comment + Blank and
// Total == end - start + 1.
func CountRange(classes []LineClass, start, end uint32) models.LineCounts {
	counts := models.LineCounts{}
	if start == 0 || end < start {
		return counts
	}

	for line := start; line <= end; line++ {
		counts.Total++
		row := int(line) - 1
		if row >= len(classes) {
			counts.Code++
			continue
		}
		switch classes[row] {
		case LineBlank:
			counts.Blank++
		case LineComment:
			counts.Comment++
		default:
			counts.Code++
		}
	}
	return counts
}
