package valueobject

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleClass = "class A {\n    void m() {}\n}\n"

// sampleTree builds the tree-sitter shape of sampleClass by hand.
func sampleTree() *ParseNode {
	method := &ParseNode{
		Type: "method_declaration", StartByte: 14, EndByte: 25,
		StartPos: Position{Row: 1, Column: 4}, EndPos: Position{Row: 1, Column: 15},
		Children: []*ParseNode{
			{Type: "void_type", StartByte: 14, EndByte: 18},
			{Type: "identifier", StartByte: 19, EndByte: 20},
			{Type: "formal_parameters", StartByte: 20, EndByte: 22},
			{Type: "block", StartByte: 23, EndByte: 25},
		},
	}
	body := &ParseNode{
		Type: "class_body", StartByte: 8, EndByte: 27,
		Children: []*ParseNode{
			{Type: "{", StartByte: 8, EndByte: 9},
			method,
			{Type: "}", StartByte: 26, EndByte: 27},
		},
	}
	class := &ParseNode{
		Type: "class_declaration", StartByte: 0, EndByte: 27,
		Children: []*ParseNode{
			{Type: "class", StartByte: 0, EndByte: 5},
			{Type: "identifier", StartByte: 6, EndByte: 7},
			body,
		},
	}
	return &ParseNode{Type: "program", StartByte: 0, EndByte: 28, Children: []*ParseNode{class}}
}

func TestNewParseTree(t *testing.T) {
	tests := []struct {
		name     string
		root     *ParseNode
		source   []byte
		errorMsg string
	}{
		{name: "valid tree", root: sampleTree(), source: []byte(sampleClass)},
		{name: "nil root", root: nil, source: []byte(sampleClass), errorMsg: "root node cannot be nil"},
		{name: "empty source", root: sampleTree(), source: nil, errorMsg: "source code cannot be empty"},
		{
			name:     "root exceeds source",
			root:     &ParseNode{Type: "program", EndByte: 100},
			source:   []byte(sampleClass),
			errorMsg: "root node end byte exceeds source length",
		},
		{
			name: "inverted child span",
			root: &ParseNode{Type: "program", EndByte: 5, Children: []*ParseNode{
				{Type: "identifier", StartByte: 4, EndByte: 2},
			}},
			source:   []byte(sampleClass),
			errorMsg: "start byte 4 is greater than end byte 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := NewParseTree(context.Background(), Java(), tt.root, tt.source, ParseMetadata{
				ParseDuration: time.Millisecond,
			})
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, tree)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, LanguageJava, tree.Language().Name())
			assert.Equal(t, 12, tree.Metadata().NodeCount)
			assert.Equal(t, 5, tree.Metadata().MaxDepth)
		})
	}
}

func TestParseTree_Navigation(t *testing.T) {
	tree, err := NewParseTree(context.Background(), Java(), sampleTree(), []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)

	methods := tree.GetNodesByType("method_declaration")
	require.Len(t, methods, 1)
	method := methods[0]

	assert.Equal(t, "void m() {}", tree.GetNodeText(method))
	assert.Equal(t, "class_body", method.Parent().Type)
	assert.Equal(t, "class_declaration", method.Parent().Parent().Type)
	assert.Equal(t, "{", method.PrevSibling().Type)
	assert.Equal(t, "}", method.NextSibling().Type)
	assert.Nil(t, tree.RootNode().PrevSibling())
	assert.Nil(t, tree.RootNode().Parent())

	name := method.FirstChildOfType("identifier")
	require.NotNil(t, name)
	assert.Equal(t, "m", tree.GetNodeText(name))
	assert.Equal(t, "block", method.FirstChildOfType("constructor_body", "block").Type)
	assert.Nil(t, method.FirstChildOfType("class_body"))
}

func TestParseTree_NodeCountAndDepth(t *testing.T) {
	tree, err := NewParseTree(context.Background(), Java(), sampleTree(), []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)

	assert.Equal(t, 12, tree.GetTotalNodeCount())
	assert.Equal(t, 5, tree.GetTreeDepth())

	leaf := &ParseNode{Type: "program", StartByte: 0, EndByte: 28}
	single, err := NewParseTree(context.Background(), Java(), leaf, []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)
	assert.Equal(t, 1, single.GetTotalNodeCount())
	assert.Equal(t, 1, single.GetTreeDepth())
}

func TestNewParseTree_KeepsReportedMetadata(t *testing.T) {
	tree, err := NewParseTree(context.Background(), Java(), sampleTree(), []byte(sampleClass), ParseMetadata{
		NodeCount: 40,
		MaxDepth:  9,
	})
	require.NoError(t, err)

	assert.Equal(t, 40, tree.Metadata().NodeCount)
	assert.Equal(t, 9, tree.Metadata().MaxDepth)
}

func TestParseTree_GetNodeAtByteOffset(t *testing.T) {
	tree, err := NewParseTree(context.Background(), Java(), sampleTree(), []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)

	assert.Equal(t, "identifier", tree.GetNodeAtByteOffset(19).Type)
	assert.Equal(t, "class", tree.GetNodeAtByteOffset(2).Type)
	assert.Nil(t, tree.GetNodeAtByteOffset(500))
}

func TestParseTree_WalkCanPruneSubtrees(t *testing.T) {
	tree, err := NewParseTree(context.Background(), Java(), sampleTree(), []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)

	var visited []string
	tree.Walk(func(node *ParseNode) bool {
		visited = append(visited, node.Type)
		return node.Type != "class_body"
	})

	assert.Equal(t, []string{"program", "class_declaration", "class", "identifier", "class_body"}, visited)
}

func TestParseTree_HasSyntaxErrors(t *testing.T) {
	clean, err := NewParseTree(context.Background(), Java(), sampleTree(), []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)
	assert.False(t, clean.HasSyntaxErrors())

	broken := sampleTree()
	broken.Children = append(broken.Children, &ParseNode{Type: NodeTypeError, StartByte: 27, EndByte: 28})
	withError, err := NewParseTree(context.Background(), Java(), broken, []byte(sampleClass), ParseMetadata{})
	require.NoError(t, err)
	assert.True(t, withError.HasSyntaxErrors())
}

func TestParseTree_ToSExpression(t *testing.T) {
	root := &ParseNode{Type: "program", EndByte: 1, Children: []*ParseNode{{Type: "line_comment", EndByte: 1}}}
	tree, err := NewParseTree(context.Background(), Java(), root, []byte("x"), ParseMetadata{})
	require.NoError(t, err)

	assert.Equal(t, "(program (line_comment))", tree.ToSExpression())
}
