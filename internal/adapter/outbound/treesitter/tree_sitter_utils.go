package treesitter

import (
	"javadocgen/internal/domain/valueobject"

	"fortio.org/safecast"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// conversionStats accumulates counts while converting a tree.
type conversionStats struct {
	nodeCount  int
	maxDepth   int
	errorCount int
}

// convertTreeSitterNode converts a tree-sitter node to domain ParseNode recursively.
func convertTreeSitterNode(node tree_sitter.Node, depth int, stats *conversionStats) *valueobject.ParseNode {
	if node.IsNull() {
		return nil
	}

	parseNode := &valueobject.ParseNode{
		Type:      node.Type(),
		StartByte: toUint32(node.StartByte()),
		EndByte:   toUint32(node.EndByte()),
		StartPos: valueobject.Position{
			Row:    toUint32(node.StartPoint().Row),
			Column: toUint32(node.StartPoint().Column),
		},
		EndPos: valueobject.Position{
			Row:    toUint32(node.EndPoint().Row),
			Column: toUint32(node.EndPoint().Column),
		},
		Missing: node.IsMissing(),
	}

	stats.nodeCount++
	stats.maxDepth = max(stats.maxDepth, depth)
	if node.IsError() || node.IsMissing() {
		stats.errorCount++
	}

	childCount := int(node.ChildCount())
	if childCount > 0 {
		parseNode.Children = make([]*valueobject.ParseNode, 0, childCount)
	}
	for i := range childCount {
		childNode := node.Child(uint32(i)) //nolint:gosec // i < ChildCount
		if child := convertTreeSitterNode(childNode, depth+1, stats); child != nil {
			parseNode.Children = append(parseNode.Children, child)
		}
	}

	return parseNode
}

// toUint32 converts a tree-sitter offset, saturating at the maximum uint32.
func toUint32(val uint) uint32 {
	out, err := safecast.Conv[uint32](val)
	if err != nil {
		return valueobject.MaxUint32
	}
	return out
}
