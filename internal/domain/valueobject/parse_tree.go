package valueobject

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"javadocgen/internal/application/common/slogger"
)

// Tree-sitter node types for syntax errors.
const (
	NodeTypeError   = "ERROR"
	NodeTypeMissing = "MISSING"
)

// ParseTree is a navigable syntax tree whose spans index into the source it was built from.
// Spans are only meaningful against that unmodified source.
type ParseTree struct {
	language Language
	rootNode *ParseNode
	source   []byte
	metadata ParseMetadata
}

// ParseNode represents a node in the parse tree.
type ParseNode struct {
	Type      string
	StartByte uint32
	EndByte   uint32
	StartPos  Position
	EndPos    Position
	Children  []*ParseNode
	// Missing is set for zero-width nodes the parser inserted to recover from an error.
	Missing bool

	parent *ParseNode
	index  int
}

// Position represents a position in source code.
type Position struct {
	Row    uint32
	Column uint32
}

// ParseMetadata contains metadata about the parse operation.
type ParseMetadata struct {
	ParseDuration  time.Duration
	GrammarVersion string
	NodeCount      int
	MaxDepth       int
	ErrorCount     int
}

// NewParseTree validates the node spans against source and links parents and siblings.
func NewParseTree(
	ctx context.Context,
	language Language,
	rootNode *ParseNode,
	source []byte,
	metadata ParseMetadata,
) (*ParseTree, error) {
	if rootNode == nil {
		return nil, errors.New("root node cannot be nil")
	}

	if len(source) == 0 {
		return nil, errors.New("source code cannot be empty")
	}

	if int64(rootNode.EndByte) > int64(len(source)) {
		slogger.Error(ctx, "Root node end byte exceeds source length", slogger.Fields{
			"language":      language.Name(),
			"source_length": len(source),
			"root_end_byte": rootNode.EndByte,
		})
		return nil, errors.New("root node end byte exceeds source length")
	}

	pt := &ParseTree{
		language: language,
		rootNode: rootNode,
		source:   source,
		metadata: metadata,
	}

	rootNode.parent = nil
	rootNode.index = 0
	if err := pt.link(rootNode); err != nil {
		return nil, err
	}

	if pt.metadata.NodeCount == 0 {
		pt.metadata.NodeCount = pt.GetTotalNodeCount()
	}
	if pt.metadata.MaxDepth == 0 {
		pt.metadata.MaxDepth = pt.GetTreeDepth()
	}

	slogger.Debug(ctx, "ParseTree created", slogger.Fields{
		"language":       language.Name(),
		"node_count":     pt.metadata.NodeCount,
		"max_depth":      pt.metadata.MaxDepth,
		"error_count":    pt.metadata.ErrorCount,
		"source_length":  len(source),
		"parse_duration": metadata.ParseDuration.String(),
	})

	return pt, nil
}

// link wires parent and sibling indexes while validating each span.
func (pt *ParseTree) link(node *ParseNode) error {
	if node.StartByte > node.EndByte {
		return fmt.Errorf("node %s start byte %d is greater than end byte %d", node.Type, node.StartByte, node.EndByte)
	}
	if int64(node.EndByte) > int64(len(pt.source)) {
		return fmt.Errorf("node %s end byte %d exceeds source length", node.Type, node.EndByte)
	}

	for i, child := range node.Children {
		if child == nil {
			return fmt.Errorf("node %s has a nil child at index %d", node.Type, i)
		}
		child.parent = node
		child.index = i
		if err := pt.link(child); err != nil {
			return err
		}
	}
	return nil
}

// Language returns the language of the parse tree.
func (pt *ParseTree) Language() Language {
	return pt.language
}

// RootNode returns the root node of the parse tree.
func (pt *ParseTree) RootNode() *ParseNode {
	return pt.rootNode
}

// Source returns the source code of the parse tree.
func (pt *ParseTree) Source() []byte {
	return pt.source
}

// Metadata returns the metadata of the parse tree.
func (pt *ParseTree) Metadata() ParseMetadata {
	return pt.metadata
}

// Walk visits every node depth-first in source order. Returning false from fn
// skips the node's children; the walk continues with its siblings.
func (pt *ParseTree) Walk(fn func(node *ParseNode) bool) {
	var visit func(node *ParseNode)
	visit = func(node *ParseNode) {
		if node == nil || !fn(node) {
			return
		}
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(pt.rootNode)
}

// GetNodesByType returns all nodes of a specific type.
func (pt *ParseTree) GetNodesByType(nodeType string) []*ParseNode {
	var result []*ParseNode
	pt.Walk(func(node *ParseNode) bool {
		if node.Type == nodeType {
			result = append(result, node)
		}
		return true
	})
	return result
}

// GetNodeAtByteOffset returns the innermost node spanning offset.
func (pt *ParseTree) GetNodeAtByteOffset(offset uint32) *ParseNode {
	return findNodeAtByteOffset(pt.rootNode, offset)
}

func findNodeAtByteOffset(node *ParseNode, offset uint32) *ParseNode {
	if node == nil || offset < node.StartByte || offset > node.EndByte {
		return nil
	}
	for _, child := range node.Children {
		if found := findNodeAtByteOffset(child, offset); found != nil {
			return found
		}
	}
	return node
}

// GetNodeText returns the source text covered by node.
func (pt *ParseTree) GetNodeText(node *ParseNode) string {
	if node == nil || int64(node.EndByte) > int64(len(pt.source)) || node.StartByte > node.EndByte {
		return ""
	}
	return string(pt.source[node.StartByte:node.EndByte])
}

// GetTreeDepth returns the maximum depth of the parse tree, counting the root as 1.
func (pt *ParseTree) GetTreeDepth() int {
	return nodeDepth(pt.rootNode)
}

func nodeDepth(node *ParseNode) int {
	if node == nil {
		return 0
	}
	deepest := 0
	for _, child := range node.Children {
		deepest = max(deepest, nodeDepth(child))
	}
	return deepest + 1
}

// GetTotalNodeCount returns the number of nodes in the tree.
func (pt *ParseTree) GetTotalNodeCount() int {
	return nodeCount(pt.rootNode)
}

func nodeCount(node *ParseNode) int {
	if node == nil {
		return 0
	}
	count := 1
	for _, child := range node.Children {
		count += nodeCount(child)
	}
	return count
}

// HasSyntaxErrors reports whether the tree contains error or missing nodes.
// Such trees are still usable; error nodes never match a documentable kind.
func (pt *ParseTree) HasSyntaxErrors() bool {
	found := false
	pt.Walk(func(node *ParseNode) bool {
		if node.IsError() {
			found = true
		}
		return !found
	})
	return found
}

// ToSExpression converts the parse tree to S-expression format.
func (pt *ParseTree) ToSExpression() string {
	return nodeToSExpression(pt.rootNode)
}

func nodeToSExpression(node *ParseNode) string {
	if node == nil {
		return ""
	}
	if len(node.Children) == 0 {
		return fmt.Sprintf("(%s)", node.Type)
	}

	parts := make([]string, 0, len(node.Children)+1)
	parts = append(parts, node.Type)
	for _, child := range node.Children {
		parts = append(parts, nodeToSExpression(child))
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Parent returns the enclosing node, or nil for the root.
func (n *ParseNode) Parent() *ParseNode {
	return n.parent
}

// PrevSibling returns the sibling immediately before n, or nil.
func (n *ParseNode) PrevSibling() *ParseNode {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.Children[n.index-1]
}

// NextSibling returns the sibling immediately after n, or nil.
func (n *ParseNode) NextSibling() *ParseNode {
	if n.parent == nil || n.index+1 >= len(n.parent.Children) {
		return nil
	}
	return n.parent.Children[n.index+1]
}

// FirstChildOfType returns the first direct child whose type is one of types.
func (n *ParseNode) FirstChildOfType(types ...string) *ParseNode {
	for _, child := range n.Children {
		for _, t := range types {
			if child.Type == t {
				return child
			}
		}
	}
	return nil
}

// IsError reports whether the node is an error or parser-inserted node.
func (n *ParseNode) IsError() bool {
	return n.Type == NodeTypeError || n.Type == NodeTypeMissing || n.Missing
}

// Len returns the byte length of the node's span.
func (n *ParseNode) Len() uint32 {
	return n.EndByte - n.StartByte
}
