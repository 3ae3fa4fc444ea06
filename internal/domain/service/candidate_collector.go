package service

import (
	"bytes"
	"context"

	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/domain/valueobject"
)

const nodeIdentifier = "identifier"

// Node types that end the search for an enclosing type name: a declaration
// nested under one of these is anonymous or local.
var enclosingNameBarriers = map[string]bool{
	"object_creation_expression":           true,
	"enum_constant":                        true,
	valueobject.NodeMethodDeclaration:      true,
	valueobject.NodeConstructorDeclaration: true,
	valueobject.NodeCompactConstructor:     true,
	"lambda_expression":                    true,
	"static_initializer":                   true,
}

// CollectorConfig configures which declarations the collector considers.
type CollectorConfig struct {
	Kinds  []valueobject.DeclarationKind
	Policy TriviaPolicy
}

// DefaultCollectorConfig collects every documentable kind with the default trivia policy.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Kinds:  valueobject.DocumentableKinds(),
		Policy: DefaultTriviaPolicy(),
	}
}

// CollectStats summarizes one collection pass.
type CollectStats struct {
	NodesVisited int
	Declarations int
	Candidates   int
	Documented   []valueobject.SkippedDeclaration
}

// CandidateCollector finds documentable declarations that lack a doc comment.
type CandidateCollector struct {
	kinds  map[valueobject.DeclarationKind]bool
	policy TriviaPolicy
}

// NewCandidateCollector creates a collector. An empty kind list selects every documentable kind.
func NewCandidateCollector(cfg CollectorConfig) *CandidateCollector {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = valueobject.DocumentableKinds()
	}

	set := make(map[valueobject.DeclarationKind]bool, len(kinds))
	for _, k := range kinds {
		if k.IsDocumentable() {
			set[k] = true
		}
	}

	return &CandidateCollector{kinds: set, policy: cfg.Policy}
}

// Collect walks tree depth-first and returns every undocumented declaration in
// source order. Nested declarations are judged independently of their parents.
// Collect never modifies the tree; repeated calls return the same candidates.
func (c *CandidateCollector) Collect(
	ctx context.Context,
	tree *valueobject.ParseTree,
) ([]valueobject.Candidate, CollectStats) {
	var (
		candidates []valueobject.Candidate
		stats      CollectStats
	)
	src := tree.Source()

	tree.Walk(func(node *valueobject.ParseNode) bool {
		stats.NodesVisited++

		kind := valueobject.KindOfNodeType(node.Type)
		if !c.kinds[kind] || node.Missing {
			return true
		}
		stats.Declarations++

		name := DeclarationName(tree, node)
		enclosing := EnclosingTypeName(tree, node)
		trivia := InspectTrivia(tree, node, c.policy)

		if trivia.Class == TriviaAttachedDoc {
			stats.Documented = append(stats.Documented, valueobject.SkippedDeclaration{
				Kind:          kind,
				Name:          name,
				EnclosingName: enclosing,
				Line:          int(node.StartPos.Row) + 1,
				Reason:        valueobject.SkipDocumented,
			})
			return true
		}

		indent, atLineStart := lineIndentation(src, node.StartByte)
		candidates = append(candidates, valueobject.Candidate{
			ID:              len(candidates),
			Kind:            kind,
			NodeType:        node.Type,
			Name:            name,
			EnclosingName:   enclosing,
			Span:            valueobject.Span{Start: node.StartByte, End: node.EndByte},
			StartPos:        node.StartPos,
			PrecedingTrivia: trivia.Span,
			Indentation:     indent,
			AtLineStart:     atLineStart,
			Node:            node,
		})
		return true
	})

	stats.Candidates = len(candidates)

	slogger.Debug(ctx, "Collected documentation candidates", slogger.Fields{
		"nodes_visited": stats.NodesVisited,
		"declarations":  stats.Declarations,
		"candidates":    stats.Candidates,
		"documented":    len(stats.Documented),
	})

	return candidates, stats
}

// DeclarationName returns the identifier naming a declaration, or "".
func DeclarationName(tree *valueobject.ParseTree, node *valueobject.ParseNode) string {
	if id := node.FirstChildOfType(nodeIdentifier); id != nil {
		return tree.GetNodeText(id)
	}
	return ""
}

// EnclosingTypeName returns the name of the nearest enclosing class, interface
// or enum. Declarations inside anonymous classes, lambdas or method bodies
// have no stable enclosing name and get "".
func EnclosingTypeName(tree *valueobject.ParseTree, node *valueobject.ParseNode) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if valueobject.KindOfNodeType(p.Type).IsTypeDeclaration() {
			return DeclarationName(tree, p)
		}
		if enclosingNameBarriers[p.Type] {
			return ""
		}
	}
	return ""
}

// lineIndentation returns the leading whitespace of the line containing offset,
// and whether only whitespace precedes offset on that line.
func lineIndentation(src []byte, offset uint32) (string, bool) {
	lineStart := lineIndentStart(src, offset)
	line := src[lineStart:offset]

	end := 0
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	return string(line[:end]), len(bytes.TrimSpace(line)) == 0
}
