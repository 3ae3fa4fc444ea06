package service

import (
	"bytes"
	"strings"

	"javadocgen/internal/domain/valueobject"
)

// Comment node types produced by the Java grammar. Older grammar releases
// report every comment as "comment".
const (
	nodeLineComment  = "line_comment"
	nodeBlockComment = "block_comment"
	nodeComment      = "comment"
)

// TriviaClass classifies the text immediately preceding a declaration.
type TriviaClass int

const (
	// TriviaNone means code or the start of a scope precedes the declaration.
	TriviaNone TriviaClass = iota
	// TriviaAttachedDoc means a doc comment directly documents the declaration.
	TriviaAttachedDoc
	// TriviaDetachedDoc means a doc comment precedes the declaration across blank lines.
	TriviaDetachedDoc
	// TriviaPlainComment means a line or block comment that is not a doc comment precedes the declaration.
	TriviaPlainComment
)

// String returns a short name for the class.
func (c TriviaClass) String() string {
	switch c {
	case TriviaAttachedDoc:
		return "attached_doc"
	case TriviaDetachedDoc:
		return "detached_doc"
	case TriviaPlainComment:
		return "plain_comment"
	default:
		return "none"
	}
}

// TriviaPolicy configures when a doc comment counts as attached.
type TriviaPolicy struct {
	// BlankLineThreshold is the number of fully blank lines between a doc
	// comment and a declaration at which the comment stops documenting it.
	BlankLineThreshold int
}

// DefaultTriviaPolicy detaches a doc comment separated by a single blank line.
func DefaultTriviaPolicy() TriviaPolicy {
	return TriviaPolicy{BlankLineThreshold: 1}
}

// Trivia describes the whitespace and comment span before a declaration.
type Trivia struct {
	Class      TriviaClass
	Span       valueobject.Span
	Comment    *valueobject.ParseNode
	BlankLines int
}

// ClassifyTrivia decides how the sibling prev relates to a declaration starting
// at nodeStart. This is the single place the doc comment attachment policy lives:
//
//   - only the first non-whitespace span before the declaration is considered;
//   - it must be a block comment opening with "/**" to count as a doc comment;
//   - a doc comment separated by BlankLineThreshold or more blank lines is detached.
func ClassifyTrivia(
	src []byte,
	prev *valueobject.ParseNode,
	nodeStart uint32,
	policy TriviaPolicy,
) TriviaClass {
	return classify(src, prev, nodeStart, policy).Class
}

// HasAttachedDocComment reports whether node is already documented.
func HasAttachedDocComment(tree *valueobject.ParseTree, node *valueobject.ParseNode, policy TriviaPolicy) bool {
	return InspectTrivia(tree, node, policy).Class == TriviaAttachedDoc
}

// InspectTrivia classifies the trivia before node and reports its span.
func InspectTrivia(tree *valueobject.ParseTree, node *valueobject.ParseNode, policy TriviaPolicy) Trivia {
	return classify(tree.Source(), precedingNode(node), node.StartByte, policy)
}

func classify(src []byte, prev *valueobject.ParseNode, nodeStart uint32, policy TriviaPolicy) Trivia {
	gapStart := lineIndentStart(src, nodeStart)
	if prev != nil && prev.EndByte <= nodeStart {
		gapStart = prev.EndByte
	}
	trivia := Trivia{Class: TriviaNone, Span: valueobject.Span{Start: gapStart, End: nodeStart}}

	if prev == nil || !isCommentNode(prev) || prev.EndByte > nodeStart {
		return trivia
	}

	gap := src[prev.EndByte:nodeStart]
	if len(bytes.TrimSpace(gap)) != 0 {
		return trivia
	}

	trivia.Comment = prev
	trivia.Span.Start = prev.StartByte
	trivia.BlankLines = max(0, bytes.Count(gap, []byte("\n"))-1)

	if !isDocComment(src[prev.StartByte:prev.EndByte]) {
		trivia.Class = TriviaPlainComment
		return trivia
	}

	threshold := policy.BlankLineThreshold
	if threshold < 1 {
		threshold = DefaultTriviaPolicy().BlankLineThreshold
	}
	if trivia.BlankLines >= threshold {
		trivia.Class = TriviaDetachedDoc
	} else {
		trivia.Class = TriviaAttachedDoc
	}
	return trivia
}

// precedingNode returns the syntax node that ends closest before node.
// A comment the parser folded into the end of the previous sibling is
// returned in place of that sibling.
func precedingNode(node *valueobject.ParseNode) *valueobject.ParseNode {
	prev := node.PrevSibling()
	if prev == nil {
		parent := node.Parent()
		if parent != nil && parent.StartByte == node.StartByte && parent.Parent() != nil {
			return precedingNode(parent)
		}
		return nil
	}

	for len(prev.Children) > 0 {
		last := prev.Children[len(prev.Children)-1]
		if last.EndByte != prev.EndByte {
			break
		}
		if isCommentNode(last) {
			return last
		}
		prev = last
	}
	return node.PrevSibling()
}

func isCommentNode(node *valueobject.ParseNode) bool {
	switch node.Type {
	case nodeLineComment, nodeBlockComment, nodeComment:
		return true
	default:
		return false
	}
}

// isDocComment reports whether text is a "/** ... */" block. "/**/" is an
// empty block comment, not a doc comment.
func isDocComment(text []byte) bool {
	s := string(text)
	return strings.HasPrefix(s, "/**") && !strings.HasPrefix(s, "/**/") && strings.HasSuffix(s, "*/")
}

// lineIndentStart returns the offset just after the last newline before offset.
func lineIndentStart(src []byte, offset uint32) uint32 {
	idx := bytes.LastIndexByte(src[:offset], '\n')
	return uint32(idx + 1) //nolint:gosec // idx+1 is within [0, offset]
}
